package models

// Fallback tag assigned when no keyword matches.
const (
	DefaultTagID   = "default"
	DefaultTagName = "Sonstige"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionExportFile = 0644
)
