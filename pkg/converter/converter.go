package converter

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	readability "github.com/go-shiori/go-readability"
	"github.com/google/uuid"
)

const (
	ModeAuto        = "auto"
	ModeReadability = "readability"

	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Selectors tried in order when locating the main content area.
var contentSelectors = []string{
	"main",
	"article",
	"[role=main]",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

var blankLines = regexp.MustCompile(`\n{3,}`)

type ConverterConfig struct {
	Mode   string // auto or readability
	Format string // text or markdown
	Logger *slog.Logger
}

type Converter struct {
	config   ConverterConfig
	markdown *md.Converter
	logger   *slog.Logger
}

func NewWithConfig(config ConverterConfig) (*Converter, error) {
	if config.Mode == "" {
		config.Mode = ModeAuto
	}
	if config.Format == "" {
		config.Format = FormatText
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Mode {
	case ModeAuto, ModeReadability:
	default:
		return nil, fmt.Errorf("unknown converter mode: %s", config.Mode)
	}
	switch config.Format {
	case FormatText, FormatMarkdown:
	default:
		return nil, fmt.Errorf("unknown converter format: %s", config.Format)
	}

	markdown := md.NewConverter("", true, nil)
	markdown.Use(plugin.GitHubFlavored())

	return &Converter{
		config:   config,
		markdown: markdown,
		logger:   config.Logger,
	}, nil
}

func New() *Converter {
	c, _ := NewWithConfig(ConverterConfig{})
	return c
}

// Convert turns one fetched resource into a plain-text or markdown Document.
// Resources whose fetch failed, or whose markup yields no textual content,
// produce an error and no Document.
func (c *Converter) Convert(resource models.FetchedResource) (*models.Document, error) {
	if resource.Err != nil {
		return nil, fmt.Errorf("resource %s was not fetched: %w", resource.URL, resource.Err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resource.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", resource.URL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	var content string
	if c.config.Mode == ModeReadability {
		content = c.extractReadable(resource)
	}
	if content == "" {
		content, err = c.extractMainContent(doc)
		if err != nil {
			return nil, fmt.Errorf("extracting content of %s: %w", resource.URL, err)
		}
	}

	if content == "" {
		return nil, fmt.Errorf("no textual content in %s", resource.URL)
	}

	return &models.Document{
		ID:      uuid.NewString(),
		URL:     resource.URL,
		Title:   title,
		Content: content,
		Metadata: map[string]interface{}{
			"url":          resource.URL,
			"title":        title,
			"content_type": resource.ContentType,
		},
	}, nil
}

// ConvertAll converts every successfully fetched resource, preserving input
// order. Failed fetches and empty documents are skipped with a log line.
func (c *Converter) ConvertAll(resources []models.FetchedResource) []models.Document {
	docs := make([]models.Document, 0, len(resources))

	for _, resource := range resources {
		if resource.Err != nil {
			c.logger.Debug("skipping failed resource", "url", resource.URL)
			continue
		}
		doc, err := c.Convert(resource)
		if err != nil {
			c.logger.Warn("conversion failed", "url", resource.URL, "error", err)
			continue
		}
		docs = append(docs, *doc)
	}

	return docs
}

// extractReadable runs readability extraction and returns "" when the page
// does not yield an article, so the caller can fall back to selector-based
// extraction.
func (c *Converter) extractReadable(resource models.FetchedResource) string {
	pageURL, err := url.Parse(resource.URL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(resource.Body), pageURL)
	if err != nil {
		c.logger.Debug("readability extraction failed", "url", resource.URL, "error", err)
		return ""
	}

	if c.config.Format == FormatMarkdown {
		rendered, err := c.markdown.ConvertString(article.Content)
		if err != nil {
			return ""
		}
		return cleanMarkdown(rendered)
	}

	return cleanText(article.TextContent)
}

func (c *Converter) extractMainContent(doc *goquery.Document) (string, error) {
	doc.Find("script, style, noscript, iframe").Remove()

	selection := doc.Find("body")
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			selection = selected.First()
			break
		}
	}

	if c.config.Format == FormatMarkdown {
		html, err := selection.Html()
		if err != nil {
			return "", err
		}
		rendered, err := c.markdown.ConvertString(html)
		if err != nil {
			return "", err
		}
		return cleanMarkdown(rendered), nil
	}

	return cleanText(selection.Text()), nil
}

func cleanText(content string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(content), " "))
}

func cleanMarkdown(content string) string {
	return strings.TrimSpace(blankLines.ReplaceAllString(content, "\n\n"))
}
