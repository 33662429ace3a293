package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/config"
)

func TestValidExportFilename(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		file string
		want bool
	}{
		{"pdf export", "meeting_" + id.String() + ".pdf", true},
		{"docx export", "meeting_" + id.String() + ".docx", true},
		{"wrong prefix", "summary_" + id.String() + ".pdf", false},
		{"wrong extension", "meeting_" + id.String() + ".txt", false},
		{"not a uuid", "meeting_hello.pdf", false},
		{"traversal attempt", "meeting_../../etc/passwd.pdf", false},
		{"empty", "", false},
		{"bare prefix", "meeting_.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validExportFilename(tt.file))
		})
	}
}

func TestDownloadHandler(t *testing.T) {
	dir := t.TempDir()
	s := &Server{cfg: &config.Config{Export: &config.ExportConfig{Dir: dir}}}

	r := gin.New()
	r.GET("/download/:filename", s.downloadHandler)

	id := uuid.New()
	filename := "meeting_" + id.String() + ".pdf"
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte("%PDF-1.7 test"), 0o644))

	t.Run("serves existing export as attachment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/"+filename, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), filename)
		assert.Equal(t, "%PDF-1.7 test", rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/meeting_"+uuid.NewString()+".pdf", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/download/notes.txt", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSummarizeHandler_InvalidMeetingID(t *testing.T) {
	// A malformed meeting id fails before any service call.
	s := &Server{}
	r := gin.New()
	r.POST("/api/:meeting_id/summarize/", s.summarizeHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/not-a-uuid/summarize/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"type":"error"}`, rec.Body.String())
}
