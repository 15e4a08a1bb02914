package repository

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/junhak/teamfiles/internal/blob"
	"github.com/junhak/teamfiles/internal/preview"
)

const previewFetchTimeout = 30 * time.Second

// Hub hands out one Manager per team, created lazily on first use.
type Hub struct {
	store blob.ObjectStore
	audit auditRecorder
	log   *zap.Logger

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewHub constructs a manager hub. auditRec may be nil to disable the audit
// trail.
func NewHub(store blob.ObjectStore, auditRec auditRecorder, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		store:    store,
		audit:    auditRec,
		log:      log,
		managers: make(map[string]*Manager),
	}
}

// Team returns the manager owning the given team's repository.
func (h *Hub) Team(teamID string) *Manager {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.managers[teamID]; ok {
		return m
	}

	view := preview.NewView(preview.NewResolver(previewFetchTimeout))
	m := NewManager(h.store, view, h.audit, h.log, teamID)
	h.managers[teamID] = m
	return m
}
