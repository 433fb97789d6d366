package packets

// RegisterScreenRequest pairs a player device with a screen the admin already
// created. The screen is looked up by its unique name.
type RegisterScreenRequest struct {
	Name string `json:"name" binding:"required"`
}
