package model

import (
	"strings"
	"time"
)

const (
	// DefaultFolderID is reserved for the implicit Favourites folder.
	// It is never sent to create or delete calls.
	DefaultFolderID = "default"

	// DefaultFolderName is the fixed display name of the default folder.
	DefaultFolderName = "Favourites"
)

// Folder represents a named collection of saved places.
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsDefault   bool      `json:"isDefault"`
	ItemCount   int       `json:"itemCount"`
	LatestPhoto *string   `json:"latestPhoto"` // nil = no photo in folder
	CreatedAt   time.Time `json:"createdAt"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name string
}

// NewFolder creates a user Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:        GenerateUUID(),
		Name:      strings.TrimSpace(params.Name),
		CreatedAt: time.Now(),
	}
}

// NewDefaultFolder returns the synthesized default folder with no derived fields set.
func NewDefaultFolder() Folder {
	return Folder{
		ID:        DefaultFolderID,
		Name:      DefaultFolderName,
		IsDefault: true,
	}
}

// IsDefaultID reports whether id names the reserved default folder.
func IsDefaultID(id string) bool {
	return id == DefaultFolderID
}
