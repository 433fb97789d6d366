package model

import "time"

// Screen represents a physical display device in the system.
type Screen struct {
	ID                 int        `db:"id"                   json:"id"`
	Name               string     `db:"name"                 json:"name"`
	Location           *string    `db:"location"             json:"location,omitempty"`
	DeviceToken        *string    `db:"device_token"         json:"device_token,omitempty"`
	AssignedPlaylistID *int       `db:"assigned_playlist_id" json:"assigned_playlist_id,omitempty"`
	IsActive           bool       `db:"is_active"            json:"is_active"`
	LastSeen           *time.Time `db:"last_seen"            json:"last_seen,omitempty"`
	CreatedBy          int        `db:"created_by"           json:"created_by"`
	CreatedAt          time.Time  `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updated_at"`
}

// Online reports whether the screen heartbeated within the liveness window.
// Liveness is derived, never stored.
func (s Screen) Online(now time.Time, window time.Duration) bool {
	return s.LastSeen != nil && now.Sub(*s.LastSeen) <= window
}
