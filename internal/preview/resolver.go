// Package preview fetches stored file content and decides how it should be
// rendered. Classification routes presentation only; a wrong mode degrades
// readability, never data.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Mode selects the rendering of a preview.
type Mode string

const (
	// ModePlain renders unformatted text.
	ModePlain Mode = "plain"
	// ModeHighlighted renders syntax-highlighted source, with the file
	// type as the language tag.
	ModeHighlighted Mode = "highlighted"
)

// highlightedTypes is the fixed allow-list of extensions rendered with
// structured presentation.
var highlightedTypes = map[string]struct{}{
	"js":   {},
	"java": {},
	"c":    {},
	"html": {},
	"css":  {},
}

// State is the outcome of one preview request.
type State struct {
	Content  string `json:"content"`
	FileType string `json:"file_type"`
	Mode     Mode   `json:"mode"`
}

// Classify returns the rendering mode and lowercased file type for a
// filename. The file type is the substring after the final dot, or the whole
// name when there is none.
func Classify(name string) (Mode, string) {
	fileType := strings.ToLower(name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		fileType = strings.ToLower(name[idx+1:])
	}
	if _, ok := highlightedTypes[fileType]; ok {
		return ModeHighlighted, fileType
	}
	return ModePlain, fileType
}

// Resolver fetches preview content over a file's download reference.
type Resolver struct {
	httpClient *http.Client
}

// NewResolver constructs a resolver.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch retrieves the file's full content as text and classifies it.
func (r *Resolver) Fetch(ctx context.Context, name, downloadRef string) (State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadRef, nil)
	if err != nil {
		return State{}, fmt.Errorf("build preview request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("fetch preview content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return State{}, fmt.Errorf("fetch preview content: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return State{}, fmt.Errorf("read preview content: %w", err)
	}

	mode, fileType := Classify(name)
	return State{Content: string(body), FileType: fileType, Mode: mode}, nil
}
