// Package tool describes the four tool pages: their prompts, response shapes,
// failure messages and particle presets.
package tool

import (
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/particle"
	"github.com/kailas-cloud/boostube/internal/domain/shape"
)

// ID identifies a tool page.
type ID string

// Tool ids.
const (
	Ideas    ID = "ideas"
	Script   ID = "script"
	Titles   ID = "titles"
	Keywords ID = "keywords"
)

// Kind selects the remote service a tool talks to.
type Kind string

// Tool kinds.
const (
	KindText    Kind = "text"
	KindKeyword Kind = "keyword"
)

// Tool is the static description of a tool page.
type Tool struct {
	ID          ID
	Title       string
	Description string
	Placeholder string
	Kind        Kind
	// Prompt wraps the user input for text tools; nil for keyword tools.
	Prompt  *domain.PromptTemplate
	Shape   shape.Shape
	Failure string
	Preset  particle.Preset
}

const (
	ideasPrompt   = "Give me 10 viral YouTube ideas in the niche: {{.Input}}. Return them as a numbered list. Don't try to bold anything"
	scriptPrompt  = `Write a detailed, engaging YouTube video script for the title: "{{.Input}}". Make it professional but entertaining, structured like an actual YouTube video. Don't try to bold anything in the script`
	titlesPrompt  = `Give me 5 trending, catchy YouTube titles for the following idea: "{{.Input}}". Make them short, viral, and engaging with strong hooks. Return them one per line. Don't try to bold anything`
	canvasFrame   = 16 * time.Millisecond
	domFrame      = 30 * time.Millisecond
	canvasHitSize = 20
)

func builtins() []Tool {
	return []Tool{
		{
			ID:          Ideas,
			Title:       "YouTube Idea Generator",
			Description: "Viral video ideas for a niche",
			Placeholder: "Enter your niche (e.g. fitness, tech)",
			Kind:        KindText,
			Prompt:      domain.MustPromptTemplate(string(Ideas), ideasPrompt),
			Shape:       shape.IdeaList{},
			Failure:     "Failed to fetch ideas. Please try again.",
			Preset: particle.Preset{
				Count: 40, Speed: 0.3, MinRadius: 2, MaxRadius: 6,
				Hit: particle.Circle{}, FrameInterval: domFrame,
			},
		},
		{
			ID:          Script,
			Title:       "YouTube Script Generator",
			Description: "A full video script for a title",
			Placeholder: "Enter your video title",
			Kind:        KindText,
			Prompt:      domain.MustPromptTemplate(string(Script), scriptPrompt),
			Shape:       shape.Verbatim{},
			Failure:     "Failed to generate script. Please try again.",
			Preset: particle.Preset{
				Count: 50, Speed: 0.25, MinRadius: 1, MaxRadius: 4,
				Hit: particle.Circle{Radius: canvasHitSize}, FrameInterval: canvasFrame,
			},
		},
		{
			ID:          Titles,
			Title:       "YouTube Title Generator",
			Description: "Catchy titles for a video idea",
			Placeholder: "Describe your video idea",
			Kind:        KindText,
			Prompt:      domain.MustPromptTemplate(string(Titles), titlesPrompt),
			Shape:       shape.TitleList{},
			Failure:     "Failed to generate titles. Please try again.",
			Preset: particle.Preset{
				Count: 50, Speed: 0.25, MinRadius: 1, MaxRadius: 4,
				Hit: particle.Circle{Radius: canvasHitSize}, FrameInterval: canvasFrame,
			},
		},
		{
			ID:          Keywords,
			Title:       "YouTube Keyword Analyzer",
			Description: "Popularity and search volume for a keyword",
			Placeholder: "Enter a keyword",
			Kind:        KindKeyword,
			Failure:     "Failed to fetch keyword data. Please try again.",
			Preset: particle.Preset{
				Count: 80, Speed: 0.5, MinRadius: 2, MaxRadius: 5,
				Hit: particle.Box{}, FrameInterval: canvasFrame,
			},
		},
	}
}

// Override replaces parts of a built-in tool. Zero fields keep the default.
type Override struct {
	Prompt string
	// Shape names a shape.Shape (see shape.ByName).
	Shape string
	Count int
}

// Registry is an ordered, immutable set of tools.
type Registry struct {
	tools []Tool
}

// NewRegistry builds the registry from the built-in tools with overrides applied.
func NewRegistry(overrides map[ID]Override) (*Registry, error) {
	tools := builtins()
	for id, o := range overrides {
		i := slices.IndexFunc(tools, func(t Tool) bool { return t.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("override %q: %w", id, domain.ErrUnknownTool)
		}
		if o.Prompt != "" {
			if tools[i].Kind != KindText {
				return nil, fmt.Errorf("override %q: prompt set on a %s tool", id, tools[i].Kind)
			}
			tmpl, err := domain.NewPromptTemplate(string(id), o.Prompt)
			if err != nil {
				return nil, fmt.Errorf("override %q: %w", id, err)
			}
			tools[i].Prompt = tmpl
		}
		if o.Shape != "" {
			if tools[i].Kind != KindText {
				return nil, fmt.Errorf("override %q: shape set on a %s tool", id, tools[i].Kind)
			}
			s, ok := shape.ByName(o.Shape)
			if !ok {
				return nil, fmt.Errorf("override %q: unknown shape %q", id, o.Shape)
			}
			tools[i].Shape = s
		}
		if o.Count < 0 {
			return nil, fmt.Errorf("override %q: negative particle count", id)
		}
		if o.Count > 0 {
			tools[i].Preset.Count = o.Count
		}
	}
	return &Registry{tools: tools}, nil
}

// Default returns the registry with no overrides.
func Default() *Registry {
	r, err := NewRegistry(nil)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the tool with the given id.
func (r *Registry) Lookup(id ID) (Tool, error) {
	for _, t := range r.tools {
		if t.ID == id {
			return t, nil
		}
	}
	return Tool{}, fmt.Errorf("tool %q: %w", id, domain.ErrUnknownTool)
}

// All returns the tools in display order.
func (r *Registry) All() []Tool {
	return slices.Clone(r.tools)
}

// IDs returns the tool ids in display order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.tools))
	for i, t := range r.tools {
		ids[i] = t.ID
	}
	return ids
}
