package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const bytesPerMB = 1024 * 1024

// FileAttachment describes an uploaded file. Storage lives elsewhere; only the
// metadata needed for validation is kept here.
type FileAttachment struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Extension returns the lower-cased file extension without the leading dot.
func (f FileAttachment) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
}

func (f FileAttachment) ExceedsSize(maxMB int) bool {
	return f.Size > int64(maxMB)*bytesPerMB
}

func cloneAttachments(files []FileAttachment) []FileAttachment {
	if files == nil {
		return []FileAttachment{}
	}
	return append([]FileAttachment(nil), files...)
}
