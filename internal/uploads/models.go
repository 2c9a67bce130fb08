package uploads

import (
	"github.com/google/uuid"
)

// Attachment represents the metadata of an uploaded evidence file. The URL
// (or key) is what a form's file field stores as its value.
type Attachment struct {
	ID       uuid.UUID `json:"id"`
	TenantID string    `json:"tenantId"`
	Name     string    `json:"name"`
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type"`
}
