package packets

type ContentItemResponse struct {
	ID         int    `json:"id"`
	ItemNumber int    `json:"item_number"`
	URL        string `json:"url"`
	Duration   int    `json:"duration"`
}

type ContentResponse struct {
	ID        int                   `json:"id"`
	Title     string                `json:"title"`
	Type      string                `json:"type"`
	URL       string                `json:"url"`
	Duration  int                   `json:"duration"`
	PageCount *int                  `json:"page_count,omitempty"`
	CreatedAt string                `json:"created_at"`
	Items     []ContentItemResponse `json:"items"`
}

type PlaylistItemResponse struct {
	ID               int                  `json:"id"`
	ContentItemID    int                  `json:"content_item_id"`
	Position         int                  `json:"position"`
	DurationOverride *int                 `json:"duration_override,omitempty"`
	Duration         int                  `json:"duration"` // effective seconds
	ContentItem      *ContentItemResponse `json:"content_item,omitempty"`
}

type PlaylistResponse struct {
	ID          int                    `json:"id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	Loop        bool                   `json:"loop"`
	Shuffle     bool                   `json:"shuffle"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
	Items       []PlaylistItemResponse `json:"items"`
}

type ScheduleResponse struct {
	ID         int    `json:"id"`
	PlaylistID int    `json:"playlist_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`

	IsActive bool `json:"is_active"`
}

// ScreenResponse mirrors model.Screen but flattens times to RFC3339 and adds
// derived liveness.
type ScreenResponse struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Location           *string `json:"location,omitempty"`
	AssignedPlaylistID *int    `json:"assigned_playlist_id,omitempty"`
	Online             bool    `json:"online"`
	PlaybackState      *string `json:"playback_state,omitempty"`
	LastSeen           *string `json:"last_seen,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}
