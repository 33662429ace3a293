package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/export"
	"github.com/JBK2116/CollaBoard/pkg/services"
)

// errorEnvelope is the coarse failure body of the summarize and export
// routes. Detailed causes stay in the server log.
var errorEnvelope = gin.H{"type": "error"}

// summarizeHandler handles POST /api/:meeting_id/summarize/. It runs the
// whole summarization pipeline synchronously and answers with an empty
// object on success.
func (s *Server) summarizeHandler(c *gin.Context) {
	meeting, ok := s.ownedMeeting(c)
	if !ok {
		return
	}

	if err := s.summaries.Summarize(c.Request.Context(), meeting.ID); err != nil {
		slog.Error("Summarization failed", "meeting_id", meeting.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorEnvelope)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// exportHandler handles POST /api/:meeting_id/export/. The body selects the
// format; the response carries the download URL.
func (s *Server) exportHandler(c *gin.Context) {
	meeting, ok := s.ownedMeeting(c)
	if !ok {
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Type == "" {
		c.JSON(http.StatusBadRequest, errorEnvelope)
		return
	}

	url, err := s.exports.Export(c.Request.Context(), meeting.ID, req.Type)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case services.IsValidationError(err), errors.Is(err, services.ErrSummaryMissing):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrNotFound):
			status = http.StatusNotFound
		}
		slog.Error("Export failed", "meeting_id", meeting.ID, "format", req.Type, "error", err)
		c.JSON(status, errorEnvelope)
		return
	}

	c.JSON(http.StatusOK, gin.H{"type": "success", "download_url": url})
}

// downloadHandler handles GET /download/:filename, streaming a rendered
// export as an attachment. Only names matching the export scheme are
// served, which also keeps path traversal out.
func (s *Server) downloadHandler(c *gin.Context) {
	filename := c.Param("filename")
	if !validExportFilename(filename) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	path := filepath.Join(s.cfg.Export.Dir, filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	c.FileAttachment(path, filename)
}

// ownedMeeting resolves the :meeting_id route param and enforces that the
// caller directs that meeting. Failures are answered with the coarse error
// envelope; ok=false means the response has been written.
func (s *Server) ownedMeeting(c *gin.Context) (*ownedMeetingInfo, bool) {
	meetingID, err := uuid.Parse(c.Param("meeting_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorEnvelope)
		return nil, false
	}

	m, _, err := s.meetings.GetMeetingWithQuestions(c.Request.Context(), meetingID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotFound) {
			status = http.StatusNotFound
		} else {
			slog.Error("Failed to load meeting", "meeting_id", meetingID, "error", err)
		}
		c.JSON(status, errorEnvelope)
		return nil, false
	}

	user := currentUser(c)
	if m.DirectorID != user.ID {
		// Same shape as a missing meeting so IDs stay unguessable.
		c.JSON(http.StatusNotFound, errorEnvelope)
		return nil, false
	}

	return &ownedMeetingInfo{ID: m.ID}, true
}

// ownedMeetingInfo is what the summarize/export handlers need from the
// ownership check.
type ownedMeetingInfo struct {
	ID uuid.UUID
}

// validExportFilename reports whether name is exactly
// "meeting_<uuid>.<pdf|docx>".
func validExportFilename(name string) bool {
	rest, found := strings.CutPrefix(name, "meeting_")
	if !found {
		return false
	}
	var id string
	switch {
	case strings.HasSuffix(rest, "."+export.FormatPDF):
		id = strings.TrimSuffix(rest, "."+export.FormatPDF)
	case strings.HasSuffix(rest, "."+export.FormatDOCX):
		id = strings.TrimSuffix(rest, "."+export.FormatDOCX)
	default:
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
