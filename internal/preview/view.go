package preview

import (
	"context"
	"sync"
)

// View holds at most one active preview. A new request replaces the current
// state wholesale; a failed request leaves the previous state displayed.
// Requests are sequenced so that a slow fetch cannot overwrite the result of
// a request issued after it.
type View struct {
	resolver *Resolver

	mu      sync.Mutex
	seq     uint64
	current State
	has     bool
}

// NewView wraps a resolver in preview state.
func NewView(resolver *Resolver) *View {
	return &View{resolver: resolver}
}

// Show fetches a preview and makes it current unless a newer request has been
// issued meanwhile. On error the previous state is returned alongside it.
func (v *View) Show(ctx context.Context, name, downloadRef string) (State, error) {
	v.mu.Lock()
	v.seq++
	id := v.seq
	v.mu.Unlock()

	state, err := v.resolver.Fetch(ctx, name, downloadRef)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		return v.current, err
	}
	if id != v.seq {
		// A newer request won the race; drop this result.
		return v.current, nil
	}

	v.current = state
	v.has = true
	return state, nil
}

// Current returns the displayed preview, if any.
func (v *View) Current() (State, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.has
}

// Clear empties the preview state.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = State{}
	v.has = false
}
