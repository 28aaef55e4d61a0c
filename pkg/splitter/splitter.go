package splitter

import (
	"log/slog"
	"strings"

	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	"github.com/google/uuid"
)

type SplitterConfig struct {
	SplitLength  int // sentences per chunk
	SplitOverlap int // sentences shared between consecutive chunks
	Logger       *slog.Logger
}

type Splitter struct {
	config SplitterConfig
	logger *slog.Logger
}

func NewWithConfig(config SplitterConfig) Splitter {
	if config.SplitLength < 1 {
		config.SplitLength = 10
	}
	if config.SplitOverlap < 0 {
		config.SplitOverlap = 0
	}
	if config.SplitOverlap >= config.SplitLength {
		config.SplitOverlap = config.SplitLength - 1
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return Splitter{
		config: config,
		logger: config.Logger,
	}
}

func New() Splitter {
	return NewWithConfig(SplitterConfig{})
}

// Split groups the document's sentences into chunks of SplitLength
// sentences each; the final chunk takes whatever remains. Every chunk
// inherits the document's metadata and URL.
func (s Splitter) Split(doc models.Document) []models.Chunk {
	sentences := splitSentences(doc.Content)
	if len(sentences) == 0 {
		return nil
	}

	step := s.config.SplitLength - s.config.SplitOverlap
	var chunks []models.Chunk

	for start := 0; start < len(sentences); start += step {
		end := start + s.config.SplitLength
		if end > len(sentences) {
			end = len(sentences)
		}

		chunks = append(chunks, models.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			URL:        doc.URL,
			Content:    strings.Join(sentences[start:end], " "),
			Index:      len(chunks),
			Metadata:   copyMetadata(doc.Metadata),
		})

		if end == len(sentences) {
			break
		}
	}

	return chunks
}

// SplitAll splits every document, keeping document order and sentence order
// within each document.
func (s Splitter) SplitAll(docs []models.Document) []models.Chunk {
	chunks := make([]models.Chunk, 0)
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	s.logger.Debug("split documents", "documents", len(docs), "chunks", len(chunks))
	return chunks
}

// splitSentences breaks text on . ! ? when followed by whitespace or end of
// text. Terminators stay attached to their sentence, so joining the
// sentences back with single spaces reproduces the normalized text.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	var current []rune

	for i, r := range runes {
		current = append(current, r)
		if !isTerminator(r) {
			continue
		}
		if i+1 == len(runes) || isBoundary(runes[i+1]) {
			if sentence := strings.TrimSpace(string(current)); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current = current[:0]
		}
	}

	if sentence := strings.TrimSpace(string(current)); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	copied := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	return copied
}
