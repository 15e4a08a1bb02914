package repository

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junhak/teamfiles/internal/audit"
	"github.com/junhak/teamfiles/internal/auth"
	"github.com/junhak/teamfiles/internal/metrics"
	"github.com/junhak/teamfiles/internal/roster"
)

// rosterLookup abstracts the board service membership client.
type rosterLookup interface {
	TeamMembers(ctx context.Context, teamID, bearerToken string) ([]roster.Member, error)
}

// auditIndex reads back the recorded audit trail.
type auditIndex interface {
	ListRecent(ctx context.Context, teamID string, limit int) ([]audit.Entry, error)
}

// RegisterRoutes mounts team file operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, hub *Hub, rosterClient rosterLookup, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{hub: hub, roster: rosterClient, log: log}
	group.GET("/teams/:teamID/files", handler.listFiles)
	group.POST("/teams/:teamID/files", handler.uploadFiles)
	group.DELETE("/teams/:teamID/files/:fileName", handler.deleteFile)
	group.GET("/teams/:teamID/files/:fileName/preview", handler.previewFile)
	group.GET("/teams/:teamID/members", handler.listMembers)
}

type httpHandler struct {
	hub    *Hub
	roster rosterLookup
	log    *zap.Logger
}

func (h *httpHandler) listFiles(c *gin.Context) {
	manager := h.hub.Team(c.Param("teamID"))

	files, err := manager.ListFiles(c.Request.Context())
	if err != nil {
		h.log.Error("list files", zap.String("team", manager.TeamID()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *httpHandler) uploadFiles(c *gin.Context) {
	_, user, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files field is required"})
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file payload"})
			return
		}
		defer file.Close()
		uploads = append(uploads, Upload{
			Name:    filepath.Base(header.Filename),
			Content: file,
			Size:    header.Size,
		})
	}

	manager := h.hub.Team(c.Param("teamID"))
	results := manager.UploadFiles(c.Request.Context(), uploads, Identity{Nickname: user.Nickname}, nil)

	payload := make([]gin.H, 0, len(results))
	for i, result := range results {
		metrics.ObserveUpload(uploads[i].Size, result.Err == nil)
		if result.Err != nil {
			h.log.Warn("upload job failed",
				zap.String("team", manager.TeamID()),
				zap.String("file", result.FileName),
				zap.Error(result.Err))
			payload = append(payload, gin.H{
				"name":  result.FileName,
				"error": uploadErrorMessage(result.Err),
			})
			continue
		}
		payload = append(payload, gin.H{
			"name":         result.File.Name,
			"path":         result.File.Path,
			"download_ref": result.File.DownloadRef,
			"uploaded_by":  result.File.UploadedBy,
			"uploaded_at":  result.File.UploadedAt,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"results": payload})
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	manager := h.hub.Team(c.Param("teamID"))
	objectPath := manager.prefix() + c.Param("fileName")

	if err := manager.DeleteFile(c.Request.Context(), objectPath); err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			h.log.Error("delete file", zap.String("path", objectPath), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to delete file"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *httpHandler) previewFile(c *gin.Context) {
	manager := h.hub.Team(c.Param("teamID"))
	objectPath := manager.prefix() + c.Param("fileName")

	state, err := manager.Preview(c.Request.Context(), objectPath)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			h.log.Error("preview file", zap.String("path", objectPath), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch preview"})
		}
		return
	}

	c.JSON(http.StatusOK, state)
}

// listMembers proxies the board service roster. Upstream failures leave the
// roster empty rather than failing the page.
func (h *httpHandler) listMembers(c *gin.Context) {
	teamID := c.Param("teamID")
	token := extractBearer(c.GetHeader("Authorization"))

	members, err := h.roster.TeamMembers(c.Request.Context(), teamID, token)
	if err != nil {
		h.log.Warn("fetch team members", zap.String("team", teamID), zap.Error(err))
		members = []roster.Member{}
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// RegisterAuditRoutes mounts the audit-trail read endpoint. Registered only
// when an audit store is configured.
func RegisterAuditRoutes(group *gin.RouterGroup, index auditIndex, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	group.GET("/teams/:teamID/audit", func(c *gin.Context) {
		teamID := c.Param("teamID")

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		entries, err := index.ListRecent(c.Request.Context(), teamID, limit)
		if err != nil {
			log.Error("list audit entries", zap.String("team", teamID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit entries"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"entries": entries})
	})
}

func uploadErrorMessage(err error) string {
	if errors.Is(err, ErrInvalidName) {
		return "invalid file name"
	}
	return "upload failed"
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
