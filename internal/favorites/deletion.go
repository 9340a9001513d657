package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

// DeletionState is a step of the folder deletion workflow.
type DeletionState int

const (
	DeletionPending DeletionState = iota
	DeletionDone
	// DeletionNeedsChoice means the folder is not empty; call KeepList or DeleteAll.
	DeletionNeedsChoice
	DeletionAborted
	DeletionFailed
)

func (s DeletionState) String() string {
	switch s {
	case DeletionPending:
		return "pending"
	case DeletionDone:
		return "done"
	case DeletionNeedsChoice:
		return "needs-choice"
	case DeletionAborted:
		return "aborted"
	case DeletionFailed:
		return "failed"
	}
	return fmt.Sprintf("DeletionState(%d)", int(s))
}

// Deletion tracks one folder deletion request.
type Deletion struct {
	c        *Controller
	folderID string

	mu     sync.Mutex
	state  DeletionState
	err    error
	failed []string
}

// RequestDelete tries to delete folderID. A conflict leaves the Deletion in
// DeletionNeedsChoice with a nil error. Any other failure aborts it and is
// returned.
func (c *Controller) RequestDelete(ctx context.Context, folderID string) (*Deletion, error) {
	d := &Deletion{c: c, folderID: folderID, state: DeletionPending}

	err := c.DeleteFolder(ctx, folderID)
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case err == nil:
		d.state = DeletionDone
	case errors.Is(err, ErrFolderNotEmpty):
		d.state = DeletionNeedsChoice
		d.err = err
		return d, nil
	default:
		d.state = DeletionAborted
		d.err = err
		return d, err
	}
	return d, nil
}

// FolderID returns the folder being deleted.
func (d *Deletion) FolderID() string { return d.folderID }

// State returns the current step.
func (d *Deletion) State() DeletionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the error that moved the deletion out of DeletionPending, if any.
func (d *Deletion) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// FailedRemovals lists the places DeleteAll could not remove.
func (d *Deletion) FailedRemovals() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.failed...)
}

// KeepList abandons the deletion and leaves the folder untouched.
func (d *Deletion) KeepList() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeletionNeedsChoice {
		return fmt.Errorf("%w: keep list from %s", ErrInvalidTransition, d.state)
	}
	d.state = DeletionAborted
	return nil
}

// DeleteAll removes every membership of the folder one by one, then retries
// the folder delete. Failed removals are logged and skipped. If the retry
// fails the result wraps ErrCascadeFailed and the folder stays.
func (d *Deletion) DeleteAll(ctx context.Context) error {
	d.mu.Lock()
	if d.state != DeletionNeedsChoice {
		state := d.state
		d.mu.Unlock()
		return fmt.Errorf("%w: delete all from %s", ErrInvalidTransition, state)
	}
	d.state = DeletionPending
	d.mu.Unlock()

	failed, err := d.c.cascadeDelete(ctx, d.folderID)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed = failed
	if err != nil {
		d.state = DeletionFailed
		d.err = err
		return err
	}
	d.state = DeletionDone
	d.err = nil
	return nil
}

// DeleteFolderWithContents deletes folderID and, when it is not empty, its
// memberships too.
func (c *Controller) DeleteFolderWithContents(ctx context.Context, folderID string) error {
	d, err := c.RequestDelete(ctx, folderID)
	if err != nil {
		return err
	}
	if d.State() == DeletionNeedsChoice {
		return d.DeleteAll(ctx)
	}
	return nil
}

// cascadeDelete removes the folder's memberships and retries the delete,
// refreshing once at the end. It returns the place IDs that failed to be removed.
func (c *Controller) cascadeDelete(ctx context.Context, folderID string) ([]string, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	placeIDs := c.folderPlaceIDs(ctx, folderID)
	var failed []string
	for _, placeID := range placeIDs {
		if err := c.members.removeFromFolder(ctx, c.gw, placeID, folderID); err != nil {
			c.log.Warn().Err(err).
				Str("folder_id", folderID).
				Str("place_id", placeID).
				Msg("cascade removal failed, skipping")
			failed = append(failed, placeID)
		}
	}

	err := c.deleteFolder(ctx, folderID)
	c.refreshAfterWrite(ctx, "delete folder with contents")
	if err != nil {
		return failed, fmt.Errorf("%w: %w", ErrCascadeFailed, err)
	}
	return failed, nil
}

// folderPlaceIDs lists the places filed under folderID, asking the gateway
// first and falling back to the cache.
func (c *Controller) folderPlaceIDs(ctx context.Context, folderID string) []string {
	favs, err := fetchAll(ctx, c.pageSize, favoriteKey, func(ctx context.Context, page gateway.Page) ([]model.Favorite, error) {
		return c.gw.ListFavoritesByFolder(ctx, folderID, page)
	})
	if err != nil {
		c.log.Debug().Err(err).Str("folder_id", folderID).Msg("enumerating folder from cache")
		c.mu.Lock()
		favs = c.members.inFolder(folderID)
		c.mu.Unlock()
	}

	seen := make(map[string]bool, len(favs))
	var ids []string
	for _, f := range favs {
		if !seen[f.PlaceID] {
			seen[f.PlaceID] = true
			ids = append(ids, f.PlaceID)
		}
	}
	return ids
}
