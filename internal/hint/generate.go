package hint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahulj/hintloop/internal/llm"
	"github.com/rahulj/hintloop/internal/segment"
)

// Defaults for the generative tier.
const (
	DefaultGenTimeout = 4 * time.Second
	DefaultMaxWords   = 60
)

const generateSystem = `You are a math tutor helping a stuck student.
Give one concrete hint that addresses their specific difficulty.
Guide their thinking; never state the final answer.
Do not use markdown or bullet points.`

// hintSchema is the structured shape every generated hint must follow.
// The worked example applies the same method to different numbers so
// the student still does their own problem.
var hintSchema = &llm.Schema{
	Name:        "hint-body",
	Description: "One tutoring hint with an optional worked example.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "The hint text. Guides the method, never the final answer.",
			},
			"worked_example": map[string]any{
				"type":        "string",
				"description": "The same method applied to different numbers. Empty when no example helps.",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}

// generatedConfidence is assigned to every generative hint. The backend
// gives no usable self-assessment, so a single mid-range value keeps
// generated hints comparable with templated ones.
const generatedConfidence = 0.75

// Generator produces hints through a generative backend, bounded by a
// hard per-call timeout. A timeout or backend error is a tier failure
// and the pipeline falls through to the static tier.
type Generator struct {
	provider llm.Provider
	timeout  time.Duration
	maxWords int
}

// NewGenerator creates a Generator. Zero timeout and word limit select
// the defaults.
func NewGenerator(provider llm.Provider, timeout time.Duration, maxWords int) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenTimeout
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &Generator{provider: provider, timeout: timeout, maxWords: maxWords}
}

// Generate requests one hint for the question and struggle. The call is
// bounded by the generator's timeout regardless of the parent context.
func (g *Generator) Generate(ctx context.Context, q segment.Question, struggle string) (*Hint, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(ctx, llm.Request{
		System:      generateSystem,
		Prompt:      g.buildPrompt(q, struggle),
		Schema:      hintSchema,
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		Hint          string `json:"hint"`
		WorkedExample string `json:"worked_example"`
	}
	if err := json.Unmarshal(resp.Content, &body); err != nil {
		return nil, &llm.GenerationError{Err: fmt.Errorf("malformed hint body: %w", err)}
	}

	text := strings.TrimSpace(body.Hint)
	if text == "" {
		return nil, &llm.GenerationError{Err: errors.New("empty hint body")}
	}
	return &Hint{
		Text:          text,
		WorkedExample: strings.TrimSpace(body.WorkedExample),
		Confidence:    generatedConfidence,
		Source:        SourceGenerated,
		Model:         resp.Model,
		Tokens:        resp.Usage.TotalTokens,
	}, nil
}

func (g *Generator) buildPrompt(q segment.Question, struggle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem (%s): %s\n", q.Type, q.Text)
	if len(q.Params) > 0 {
		b.WriteString("Known values:")
		for name, v := range q.Params {
			fmt.Fprintf(&b, " %s=%s", name, formatNum(v))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "The student is stuck on: %s\n", struggle)
	fmt.Fprintf(&b, "Keep the hint to at most %d words.", g.maxWords)
	return b.String()
}
