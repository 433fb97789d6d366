package packets

// CreateContentRequest accompanies the multipart upload form. Duration is the
// intrinsic per-item display time in seconds.
type CreateContentRequest struct {
	Title    string `form:"title" binding:"required"`
	Type     string `form:"type" binding:"required,oneof=image video pdf"`
	Duration int    `form:"duration" binding:"required,gt=0"`
}

// RegisterPageRequest registers one rendered page of a paginated document.
type RegisterPageRequest struct {
	ItemNumber int  `form:"item_number" binding:"required,gt=0"`
	Duration   *int `form:"duration"`
}

type CreatePlaylistRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Loop        bool    `json:"loop"`
	Shuffle     bool    `json:"shuffle"`
}

type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Loop        *bool   `json:"loop"`
	Shuffle     *bool   `json:"shuffle"`
}

type AddPlaylistItemRequest struct {
	ContentItemID int  `json:"content_item_id" binding:"required"`
	Duration      *int `json:"duration"` // seconds; nil = use the content item's duration
}

// ReorderEntry assigns one existing playlist item its new position.
type ReorderEntry struct {
	ID    int `json:"id" binding:"required"`
	Order int `json:"order"`
}

type ReorderPlaylistRequest struct {
	Ordering []ReorderEntry `json:"ordering" binding:"required"`
}

type CreateScheduleRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`

	IsActive *bool `json:"is_active"`
}

type UpdateScheduleRequest = CreateScheduleRequest

type CreateScreenRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
}

type UpdateScreenRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

type AssignPlaylistToScreenRequest struct {
	PlaylistID int `json:"playlist_id" binding:"required"`
}
