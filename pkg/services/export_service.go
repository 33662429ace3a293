package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/export"
	"github.com/JBK2116/CollaBoard/pkg/models"
)

// ExportService turns a persisted meeting summary into a downloadable
// document.
type ExportService struct {
	store   *database.Store
	cfg     *config.ExportConfig
	baseURL string
}

// NewExportService creates a new ExportService. baseURL is the externally
// visible server root used to build download links.
func NewExportService(store *database.Store, cfg *config.ExportConfig, baseURL string) *ExportService {
	if store == nil {
		panic("NewExportService: store must not be nil")
	}
	if cfg == nil {
		panic("NewExportService: cfg must not be nil")
	}
	return &ExportService{store: store, cfg: cfg, baseURL: baseURL}
}

// Export renders the meeting's summary in the requested format and returns
// the download URL. The file is overwritten if it already exists.
func (s *ExportService) Export(ctx context.Context, meetingID uuid.UUID, format string) (string, error) {
	if format != export.FormatPDF && format != export.FormatDOCX {
		return "", NewValidationError("type", fmt.Sprintf("unsupported export format %q", format))
	}

	meeting, err := s.store.GetMeetingByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to fetch meeting: %w", err)
	}
	if !meeting.HasSummary() {
		return "", fmt.Errorf("meeting %s: %w", meetingID, ErrSummaryMissing)
	}

	var blob models.SummaryBlob
	if err := json.Unmarshal(meeting.Summary, &blob); err != nil {
		return "", fmt.Errorf("stored summary is unreadable: %w: %v", ErrExport, err)
	}
	if err := blob.Validate(); err != nil {
		return "", fmt.Errorf("stored summary failed validation: %w: %v", ErrExport, err)
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := export.Filename(meetingID, format)
	outPath := filepath.Join(s.cfg.Dir, filename)
	switch format {
	case export.FormatPDF:
		err = export.RenderPDF(&blob, outPath, s.cfg.FontDir)
	case export.FormatDOCX:
		err = export.RenderDOCX(&blob, outPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w: %v", format, ErrExport, err)
	}

	slog.Info("Summary exported", "meeting_id", meetingID, "format", format, "file", filename)
	return s.baseURL + "/download/" + filename, nil
}
