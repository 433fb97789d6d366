package packets

type RegisterScreenResponse struct {
	ScreenID    int    `json:"screen_id"`
	DeviceToken string `json:"device_token"`
}

type CurrentItem struct {
	ContentItemID int     `json:"content_item_id"`
	URL           string  `json:"url"`
	MimeType      *string `json:"mime_type,omitempty"`
	Duration      int     `json:"duration"` // effective seconds
}

// CurrentResponse is the player's polled view of what to show right now.
// PlaylistID is nil when nothing is eligible and the screen should go blank.
type CurrentResponse struct {
	PlaylistID *int          `json:"playlist_id"`
	Name       string        `json:"name,omitempty"`
	Loop       bool          `json:"loop,omitempty"`
	Shuffle    bool          `json:"shuffle,omitempty"`
	Items      []CurrentItem `json:"items,omitempty"`
}
