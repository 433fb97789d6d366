package model

import "time"

type Playlist struct {
	ID          int       `db:"id"           json:"id"`
	Name        string    `db:"name"         json:"name"`
	Description *string   `db:"description"  json:"description,omitempty"`
	Loop        bool      `db:"loop"         json:"loop"`
	Shuffle     bool      `db:"shuffle"      json:"shuffle"`
	CreatedBy   int       `db:"created_by"   json:"created_by"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`

	Items []PlaylistItem `db:"-" json:"items,omitempty"`
}

// PlaylistItem places a content item at a position inside a playlist.
// Positions are dense: for N items the set of positions is exactly 0..N-1.
type PlaylistItem struct {
	ID               int       `db:"id"                json:"id"`
	PlaylistID       int       `db:"playlist_id"       json:"playlist_id"`
	ContentItemID    int       `db:"content_item_id"   json:"content_item_id"`
	Position         int       `db:"position"          json:"position"`
	DurationOverride *int      `db:"duration_override" json:"duration_override,omitempty"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`

	ContentItem *ContentItem `db:"-" json:"content_item,omitempty"`
}

// EffectiveDuration returns the display time in seconds: the override when
// present, otherwise the content item's intrinsic duration.
func (it PlaylistItem) EffectiveDuration() int {
	if it.DurationOverride != nil {
		return *it.DurationOverride
	}
	if it.ContentItem != nil {
		return it.ContentItem.Duration
	}
	return 0
}
