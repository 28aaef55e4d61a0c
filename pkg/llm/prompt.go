package llm

import (
	"github.com/ahmedennaifer/aoc-haystack/internal/models"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultTemplate instructs the model to answer strictly from the supplied
// context and to cite the document links it used.
const DefaultTemplate = `Given the information below, answer the query. Only use the provided context to generate the answer and output the used document links
Context:
{{ range .documents }}{{ .Content }}
URL: {{ .URL }}
{{ end }}Question: {{ .query }}
Answer:`

// PromptConfig represents the configuration for the prompt builder.
type PromptConfig struct {
	Template string
}

// PromptBuilder renders ranked chunks and a query into the final prompt.
type PromptBuilder struct {
	template prompts.PromptTemplate
}

func NewPromptBuilder(config PromptConfig) PromptBuilder {
	if config.Template == "" {
		config.Template = DefaultTemplate
	}

	return PromptBuilder{
		template: prompts.NewPromptTemplate(config.Template, []string{"documents", "query"}),
	}
}

type promptDocument struct {
	Content string
	URL     string
}

// BuildPrompt renders the template with the chunks in their given order.
// With no chunks the context section comes out empty and the query stands
// alone.
func (p PromptBuilder) BuildPrompt(chunks []models.Chunk, query string) (string, error) {
	documents := make([]promptDocument, 0, len(chunks))
	for _, chunk := range chunks {
		documents = append(documents, promptDocument{
			Content: chunk.Content,
			URL:     chunk.URL,
		})
	}

	return p.template.Format(map[string]any{
		"documents": documents,
		"query":     query,
	})
}
