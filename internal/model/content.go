package model

import "time"

// Content types understood by the player clients.
const (
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
	ContentTypePDF   = "pdf"
)

// Content is an uploaded media record. A paginated document expands into one
// ContentItem per page; images and videos expand into exactly one.
type Content struct {
	ID        int       `db:"id"          json:"id"`
	Title     string    `db:"title"       json:"title"`
	Type      string    `db:"type"        json:"type"`
	URL       string    `db:"url"         json:"url"`
	MimeType  *string   `db:"mime_type"   json:"mime_type,omitempty"`
	Duration  int       `db:"duration"    json:"duration"`
	PageCount *int      `db:"page_count"  json:"page_count,omitempty"`
	CreatedBy int       `db:"created_by"  json:"created_by"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time `db:"updated_at"  json:"updated_at"`

	Items []ContentItem `db:"-" json:"items,omitempty"`
}

// ContentItem is one renderable unit: an image, a video, or a single page of
// a paginated document. It carries its own intrinsic display duration.
type ContentItem struct {
	ID         int       `db:"id"           json:"id"`
	ContentID  int       `db:"content_id"   json:"content_id"`
	ItemNumber int       `db:"item_number"  json:"item_number"`
	URL        string    `db:"url"          json:"url"`
	MimeType   *string   `db:"mime_type"    json:"mime_type,omitempty"`
	Duration   int       `db:"duration"     json:"duration"`
	CreatedAt  time.Time `db:"created_at"   json:"created_at"`
}
