// Package assistant translates natural-language questions into SQL against
// the warehouse schema and runs the reviewed queries read-only.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You are a PostgreSQL expert who generates accurate SQL queries based on natural language questions."

var sqlFenceRe = regexp.MustCompile("(?im)^```sql\\s*|\\s*```$")

// Generator turns questions into PostgreSQL queries via a chat model.
type Generator struct {
	client openai.Client
	model  string
}

func NewGenerator(apiKey, model string) *Generator {
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// GenerateSQL asks the model for a single PostgreSQL query answering the
// question against the warehouse schema.
func (g *Generator) GenerateSQL(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(`You are a PostgreSQL expert. Given the following database schema and a user's question, generate a valid PostgreSQL query.

%s

User Question: %s

Requirements:
1. Generate ONLY the SQL query that I can directly use. No other response.
2. Use proper JOINs to get descriptive names from lookup tables
3. Use appropriate aggregations (COUNT, AVG, SUM, etc.) when needed
4. Add LIMIT clauses for queries that might return many rows (default LIMIT 100)
5. Use proper date/time functions for TIMESTAMP columns
6. Make sure the query is syntactically correct for PostgreSQL
7. Add helpful column aliases using AS

Generate the SQL query:`, warehouseSchema, question)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return extractSQL(resp.Choices[0].Message.Content), nil
}

// extractSQL strips markdown code fences the model tends to wrap queries in.
func extractSQL(response string) string {
	return strings.TrimSpace(sqlFenceRe.ReplaceAllString(response, ""))
}
