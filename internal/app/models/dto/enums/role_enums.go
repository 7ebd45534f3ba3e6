package enums

// RoleType defines the role carried in access tokens
type RoleType string

const (
	// RoleOrganizer may read submitted registrations.
	RoleOrganizer RoleType = "ORGANIZER"
)
