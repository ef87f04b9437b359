package mcp

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result es la respuesta de tools/call.
type Result struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError,omitempty"`
}

func TextResult(text string) Result {
	return Result{Content: []Content{{Type: "text", Text: text}}}
}

// StructuredResult devuelve el mismo dato como JSON legible y como structuredContent.
func StructuredResult(v any) Result {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ErrorResult("failed to encode result: " + err.Error())
	}
	return Result{
		Content:           []Content{{Type: "text", Text: strings.TrimRight(buf.String(), "\n")}},
		StructuredContent: v,
	}
}

func ErrorResult(msg string) Result {
	return Result{Content: []Content{{Type: "text", Text: msg}}, IsError: true}
}

// Text concatena el contenido textual.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}
