// Package export renders persisted meeting summaries into downloadable
// documents. Both renderers are deterministic: identical input produces
// identical bytes, embedded format timestamps included.
package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Supported export formats.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// fixedTimestamp is stamped into document metadata instead of the wall
// clock so re-exports of an unchanged summary are byte-identical.
var fixedTimestamp = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Filename returns the canonical export file name for a meeting.
// Format: "meeting_<meeting_id>.<ext>"
func Filename(meetingID uuid.UUID, format string) string {
	return fmt.Sprintf("meeting_%s.%s", meetingID, format)
}
