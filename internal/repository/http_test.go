package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/junhak/teamfiles/internal/auth"
	"github.com/junhak/teamfiles/internal/config"
	"github.com/junhak/teamfiles/internal/provenance"
	"github.com/junhak/teamfiles/internal/roster"
)

type fakeRoster struct {
	members []roster.Member
	err     error
}

func (f *fakeRoster) TeamMembers(ctx context.Context, teamID, bearerToken string) ([]roster.Member, error) {
	return f.members, f.err
}

func newTestRouter(t *testing.T, store *fakeStore, rosterClient rosterLookup) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := auth.NewService(config.AuthConfig{
		AccessTokenSecret: "http-test-secret-with-enough-bytes",
		AccessTokenTTL:    15 * time.Minute,
	})
	token, _, err := authService.IssueAccessToken(uuid.New(), "mino")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	router := gin.New()
	group := router.Group("/v1")
	group.Use(auth.AuthMiddleware(authService))
	RegisterRoutes(group, NewHub(store, nil, nil), rosterClient, nil)

	return router, token
}

func TestUploadAndListOverHTTP(t *testing.T) {
	store := newFakeStore()
	router, token := newTestRouter(t, store, &fakeRoster{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "notes.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("hello world")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/teams/T1/files", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/teams/T1/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var listResp struct {
		Files []StoredFile `json:"files"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(listResp.Files))
	}
	if listResp.Files[0].UploadedBy != "mino" {
		t.Fatalf("expected uploadedBy mino, got %q", listResp.Files[0].UploadedBy)
	}
}

func TestUploadRequiresToken(t *testing.T) {
	store := newFakeStore()
	router, _ := newTestRouter(t, store, &fakeRoster{})

	req := httptest.NewRequest(http.MethodPost, "/v1/teams/T1/files", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestDeleteMissingFileReturns404(t *testing.T) {
	store := newFakeStore()
	router, token := newTestRouter(t, store, &fakeRoster{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/teams/T1/files/ghost.txt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListMembersSwallowsRosterFailure(t *testing.T) {
	store := newFakeStore()
	router, token := newTestRouter(t, store, &fakeRoster{err: errors.New("board service down")})

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/T1/members", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Members []roster.Member `json:"members"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode members response: %v", err)
	}
	if len(resp.Members) != 0 {
		t.Fatalf("expected empty roster, got %+v", resp.Members)
	}
}

func TestListFilesDefaultsMissingProvenanceOverHTTP(t *testing.T) {
	store := newFakeStore()
	store.seed("teams/T1/orphan.txt", []byte("x"), nil)
	router, token := newTestRouter(t, store, &fakeRoster{})

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/T1/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var listResp struct {
		Files []StoredFile `json:"files"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Files) != 1 || listResp.Files[0].UploadedBy != provenance.Unknown {
		t.Fatalf("expected defaulted provenance, got %+v", listResp.Files)
	}
}
