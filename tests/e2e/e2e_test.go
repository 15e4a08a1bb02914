package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junhak/teamfiles/internal/auth"
	"github.com/junhak/teamfiles/internal/config"
)

// The suite runs against a live stack (API + MinIO + Postgres) and is skipped
// unless TEAMFILES_E2E_BASE_URL points at one.
func e2eSetup(t *testing.T) (string, string) {
	t.Helper()

	baseURL := os.Getenv("TEAMFILES_E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("TEAMFILES_E2E_BASE_URL not set")
	}

	secret := os.Getenv("TEAMFILES_JWT_SECRET")
	if secret == "" {
		secret = "change-me-to-a-32-byte-secret"
	}
	authService := auth.NewService(config.AuthConfig{
		AccessTokenSecret: secret,
		AccessTokenTTL:    15 * time.Minute,
	})
	token, _, err := authService.IssueAccessToken(uuid.New(), "e2e-runner")
	require.NoError(t, err)

	return baseURL, token
}

func TestTeamFilesFullWorkflow(t *testing.T) {
	baseURL, authToken := e2eSetup(t)
	client := &http.Client{Timeout: 30 * time.Second}
	teamID := fmt.Sprintf("e2e-%d", time.Now().UnixNano())

	// 1. Upload a batch of files
	fileNames := []string{"notes.txt", "main.js", "readme.md"}
	fileContents := []string{"meeting notes", "console.log(1)", "# readme"}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for i, name := range fileNames {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContents[i]))
		require.NoError(t, err)
	}
	writer.Close()

	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/v1/teams/%s/files", baseURL, teamID), &buf)
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// 2. List and verify provenance
	req, _ = http.NewRequest("GET", fmt.Sprintf("%s/v1/teams/%s/files", baseURL, teamID), nil)
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var filesResp struct {
		Files []struct {
			Name        string `json:"name"`
			Path        string `json:"path"`
			DownloadRef string `json:"download_ref"`
			UploadedBy  string `json:"uploaded_by"`
			UploadedAt  string `json:"uploaded_at"`
		} `json:"files"`
	}
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &filesResp))
	resp.Body.Close()

	require.Len(t, filesResp.Files, 3)
	for _, f := range filesResp.Files {
		assert.Equal(t, "e2e-runner", f.UploadedBy)
		assert.NotEmpty(t, f.UploadedAt)
		assert.NotEmpty(t, f.DownloadRef)
	}

	// 3. Download via the presigned reference
	for _, f := range filesResp.Files {
		resp, err = client.Get(f.DownloadRef)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		content, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.NotEmpty(t, content)
	}

	// 4. Preview: main.js highlighted, notes.txt plain
	previewModes := map[string]string{"main.js": "highlighted", "notes.txt": "plain"}
	for name, wantMode := range previewModes {
		req, _ = http.NewRequest("GET", fmt.Sprintf("%s/v1/teams/%s/files/%s/preview", baseURL, teamID, name), nil)
		req.Header.Set("Authorization", "Bearer "+authToken)

		resp, err = client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var previewResp struct {
			Content  string `json:"content"`
			FileType string `json:"file_type"`
			Mode     string `json:"mode"`
		}
		body, _ = io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(body, &previewResp))
		resp.Body.Close()

		assert.Equal(t, wantMode, previewResp.Mode, name)
		assert.NotEmpty(t, previewResp.Content)
	}

	// 5. Delete everything
	for _, name := range fileNames {
		req, _ = http.NewRequest("DELETE", fmt.Sprintf("%s/v1/teams/%s/files/%s", baseURL, teamID, name), nil)
		req.Header.Set("Authorization", "Bearer "+authToken)

		resp, err = client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	// 6. Deleting again must report not found
	req, _ = http.NewRequest("DELETE", fmt.Sprintf("%s/v1/teams/%s/files/%s", baseURL, teamID, fileNames[0]), nil)
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
