package domain

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// Generator is the shared text-generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerationResult carries the generated text and token usage through the decorator chain.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}

// PromptTemplate renders a natural-language instruction around user input.
// The template sees the trimmed input as {{.Input}}.
type PromptTemplate struct {
	tmpl *template.Template
	text string
}

// NewPromptTemplate parses a prompt template.
func NewPromptTemplate(name, text string) (*PromptTemplate, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %q: %w", name, err)
	}
	return &PromptTemplate{tmpl: tmpl, text: text}, nil
}

// MustPromptTemplate is NewPromptTemplate for built-in templates.
func MustPromptTemplate(name, text string) *PromptTemplate {
	t, err := NewPromptTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render builds the instruction for input.
func (t *PromptTemplate) Render(input string) (string, error) {
	var sb strings.Builder
	data := struct{ Input string }{Input: strings.TrimSpace(input)}
	if err := t.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", t.tmpl.Name(), err)
	}
	return sb.String(), nil
}

// Text returns the raw template source.
func (t *PromptTemplate) Text() string { return t.text }

// TemplateGenerator is a domain decorator that wraps raw input in a prompt template before generation.
type TemplateGenerator struct {
	inner    Generator
	template *PromptTemplate
}

// NewTemplateGenerator creates a decorator that renders the template around the input.
func NewTemplateGenerator(inner Generator, tmpl *PromptTemplate) *TemplateGenerator {
	return &TemplateGenerator{inner: inner, template: tmpl}
}

// Generate renders the prompt and delegates to the inner generator.
func (g *TemplateGenerator) Generate(ctx context.Context, input string) (GenerationResult, error) {
	prompt, err := g.template.Render(input)
	if err != nil {
		return GenerationResult{}, err
	}
	result, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("templated generate: %w", err)
	}
	return result, nil
}
