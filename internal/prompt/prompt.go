// Package prompt renders the generation request from a weather Summary.
// The wording lives in embedded assets so it can change without touching code.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/kjstillabower/weather-narrator/internal/models"
)

//go:embed assets
var assets embed.FS

// Message is a role-tagged message sent to the generation provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Builder renders system and user messages from the embedded assets.
type Builder struct {
	system string
	dark   string
	user   *template.Template
}

// NewBuilder parses the embedded prompt assets.
func NewBuilder() (*Builder, error) {
	system, err := assets.ReadFile("assets/system.txt")
	if err != nil {
		return nil, fmt.Errorf("read system prompt: %w", err)
	}
	dark, err := assets.ReadFile("assets/dark.txt")
	if err != nil {
		return nil, fmt.Errorf("read dark prompt: %w", err)
	}
	user, err := template.ParseFS(assets, "assets/user.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse user template: %w", err)
	}
	return &Builder{
		system: strings.TrimSpace(string(system)),
		dark:   strings.TrimSpace(string(dark)),
		user:   user,
	}, nil
}

// Build returns the [system, user] message pair for s.
func (b *Builder) Build(s models.Summary) ([]Message, error) {
	system := b.system
	if !s.Daylight {
		system += "\n\n" + b.dark
	}

	var buf bytes.Buffer
	if err := b.user.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("render user prompt: %w", err)
	}

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: strings.TrimSpace(buf.String())},
	}, nil
}
