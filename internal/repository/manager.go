package repository

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/junhak/teamfiles/internal/audit"
	"github.com/junhak/teamfiles/internal/blob"
	"github.com/junhak/teamfiles/internal/preview"
	"github.com/junhak/teamfiles/internal/provenance"
)

// auditRecorder abstracts the audit trail. Recording is best-effort.
type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Manager owns the authoritative file list for one team. All mutations go
// through it: a completed listing replaces the list wholesale, a completed
// upload job appends, a confirmed deletion removes by path. Across concurrent
// completions the last writer wins.
type Manager struct {
	store   blob.ObjectStore
	preview *preview.View
	audit   auditRecorder
	log     *zap.Logger
	teamID  string
	nowFunc func() time.Time

	mu       sync.Mutex
	files    []StoredFile
	progress float64
}

// NewManager constructs the repository manager for a team.
func NewManager(store blob.ObjectStore, previewView *preview.View, auditRec auditRecorder, log *zap.Logger, teamID string) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:   store,
		preview: previewView,
		audit:   auditRec,
		log:     log,
		teamID:  teamID,
		nowFunc: time.Now,
	}
}

// TeamID returns the owning team identifier.
func (m *Manager) TeamID() string { return m.teamID }

func (m *Manager) prefix() string {
	return fmt.Sprintf("teams/%s/", m.teamID)
}

// ListFiles lists every object under the team namespace, joining each with
// its decoded provenance and a fresh download reference. A metadata failure
// on one object is logged and defaulted, never fatal; a download-reference
// failure aborts the listing. On success the authoritative list is replaced
// wholesale.
func (m *Manager) ListFiles(ctx context.Context) ([]StoredFile, error) {
	objects, err := m.store.ListByPrefix(ctx, m.prefix())
	if err != nil {
		return nil, err
	}

	files := make([]StoredFile, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	for i, obj := range objects {
		i, obj := i, obj
		g.Go(func() error {
			ref, err := m.store.DownloadRef(gctx, obj.Path)
			if err != nil {
				return err
			}

			rec := provenance.Record{UploadedBy: provenance.Unknown, UploadedAt: provenance.Unknown}
			md, err := m.store.Metadata(gctx, obj.Path)
			if err != nil {
				m.log.Warn("read object metadata",
					zap.String("team", m.teamID),
					zap.String("path", obj.Path),
					zap.Error(err))
			} else {
				rec = provenance.Decode(md)
			}

			files[i] = StoredFile{
				Name:        path.Base(obj.Path),
				Path:        obj.Path,
				DownloadRef: ref,
				UploadedBy:  rec.UploadedBy,
				UploadedAt:  rec.UploadedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.files = append([]StoredFile(nil), files...)
	m.mu.Unlock()

	return files, nil
}

// UploadFiles runs one concurrent job per upload. Progress events stream on
// progressCh (dropped, not blocked on, when the receiver lags); per-job
// outcomes come back in input order. A failing job leaves no trace and does
// not cancel its siblings.
func (m *Manager) UploadFiles(ctx context.Context, uploads []Upload, actor Identity, progressCh chan<- Progress) []UploadResult {
	results := make([]UploadResult, len(uploads))

	var wg sync.WaitGroup
	for i := range uploads {
		wg.Add(1)
		go func(i int, up Upload) {
			defer wg.Done()
			results[i] = m.runJob(ctx, up, actor, progressCh)
		}(i, uploads[i])
	}
	wg.Wait()

	return results
}

func (m *Manager) runJob(ctx context.Context, up Upload, actor Identity, progressCh chan<- Progress) UploadResult {
	jobID := uuid.NewString()
	result := UploadResult{JobID: jobID, FileName: up.Name}

	if err := validateName(up.Name); err != nil {
		result.Err = err
		return result
	}

	objectPath := m.prefix() + up.Name

	report := func(transferred, total int64) {
		if total > 0 {
			m.mu.Lock()
			m.progress = float64(transferred) / float64(total)
			m.mu.Unlock()
		}
		if progressCh != nil {
			select {
			case progressCh <- Progress{JobID: jobID, FileName: up.Name, Transferred: transferred, Total: total}:
			default:
			}
		}
	}

	if err := m.store.Upload(ctx, objectPath, up.Content, up.Size, report); err != nil {
		result.Err = err
		return result
	}

	// Provenance is a post-step of the byte upload, not atomic with it. A
	// crash in between leaves an object that later listings surface with
	// defaulted fields.
	rec := provenance.NewRecord(actor.Nickname, m.nowFunc())
	if err := m.store.SetMetadata(ctx, objectPath, rec.Encode()); err != nil {
		result.Err = fmt.Errorf("attach provenance to %q: %w", objectPath, err)
		return result
	}

	ref, err := m.store.DownloadRef(ctx, objectPath)
	if err != nil {
		result.Err = err
		return result
	}

	file := StoredFile{
		Name:        up.Name,
		Path:        objectPath,
		DownloadRef: ref,
		UploadedBy:  rec.UploadedBy,
		UploadedAt:  rec.UploadedAt,
	}
	m.appendFile(file)
	m.recordAudit(ctx, objectPath, rec.UploadedBy, audit.ActionUpload)

	result.File = file
	return result
}

// appendFile adds a completed upload to the list, superseding any entry that
// already holds the same path so one batch never introduces duplicates.
func (m *Manager) appendFile(file StoredFile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.files[:0]
	for _, f := range m.files {
		if f.Path != file.Path {
			kept = append(kept, f)
		}
	}
	m.files = append(kept, file)
}

// DeleteFile removes the backend object, then the matching list entries. A
// failed backend delete leaves the list untouched.
func (m *Manager) DeleteFile(ctx context.Context, objectPath string) error {
	if err := m.store.Remove(ctx, objectPath); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	m.mu.Lock()
	kept := m.files[:0]
	for _, f := range m.files {
		if f.Path != objectPath {
			kept = append(kept, f)
		}
	}
	m.files = kept
	m.mu.Unlock()

	m.recordAudit(ctx, objectPath, "", audit.ActionDelete)
	return nil
}

// Preview fetches the file's content and routes its rendering. The file must
// be present in the authoritative list; its download reference is re-derived
// first since listing-time references may have expired.
func (m *Manager) Preview(ctx context.Context, objectPath string) (preview.State, error) {
	m.mu.Lock()
	var file StoredFile
	found := false
	for _, f := range m.files {
		if f.Path == objectPath {
			file = f
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return preview.State{}, ErrFileNotFound
	}

	ref, err := m.store.DownloadRef(ctx, objectPath)
	if err != nil {
		return preview.State{}, err
	}

	return m.preview.Show(ctx, file.Name, ref)
}

// Files returns a snapshot of the authoritative list.
func (m *Manager) Files() []StoredFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StoredFile(nil), m.files...)
}

// Progress reports the most recently observed job ratio. With several jobs
// in flight this is last-writer-wins, not a weighted aggregate; exact
// per-job numbers travel on the progress channel.
func (m *Manager) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

func (m *Manager) recordAudit(ctx context.Context, objectPath, actor string, action audit.Action) {
	if m.audit == nil {
		return
	}
	entry := audit.Entry{
		TeamID:     m.teamID,
		Path:       objectPath,
		Actor:      actor,
		Action:     action,
		OccurredAt: m.nowFunc(),
	}
	if err := m.audit.Record(ctx, entry); err != nil {
		m.log.Warn("record audit entry",
			zap.String("team", m.teamID),
			zap.String("path", objectPath),
			zap.Error(err))
	}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
