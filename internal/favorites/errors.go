package favorites

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/favs/internal/gateway"
)

var (
	// ErrInvalidName is returned for empty or whitespace-only folder names.
	ErrInvalidName = errors.New("folder name must not be empty")
	// ErrInvalidPlace is returned when a place carries no ID.
	ErrInvalidPlace = errors.New("place id must not be empty")
	// ErrDefaultFolder is returned when renaming or deleting the default folder.
	ErrDefaultFolder = errors.New("the default folder cannot be renamed or deleted")
	// ErrUnknownFolder is returned when a folder is not in the cache.
	ErrUnknownFolder = errors.New("unknown folder")
	// ErrFolderNotEmpty is the conflict returned when deleting a folder that
	// still holds favorites.
	ErrFolderNotEmpty = gateway.ErrFolderNotEmpty
	// ErrNotAuthenticated is returned by writes while signed out.
	ErrNotAuthenticated = errors.New("not signed in")

	ErrSessionBusy       = errors.New("edit session is busy")
	ErrSessionClosed     = errors.New("edit session is closed")
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrCascadeFailed is returned when the folder delete still fails after
	// its contents were removed.
	ErrCascadeFailed = errors.New("folder could not be deleted after removing its contents")
)

// WriteError is a failed gateway write.
type WriteError struct {
	Op       string
	FolderID string
	PlaceID  string
	Err      error
}

func (e *WriteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.FolderID != "" {
		fmt.Fprintf(&b, " folder=%s", e.FolderID)
	}
	if e.PlaceID != "" {
		fmt.Fprintf(&b, " place=%s", e.PlaceID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
