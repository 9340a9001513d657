package favorites

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nikbrunner/favs/internal/model"
)

// SessionState is a step of a folder edit session.
type SessionState int

const (
	SessionClosed SessionState = iota
	SessionClean
	SessionDirty
	SessionSaving
	SessionDiscardConfirm
)

func (s SessionState) String() string {
	switch s {
	case SessionClosed:
		return "closed"
	case SessionClean:
		return "clean"
	case SessionDirty:
		return "dirty"
	case SessionSaving:
		return "saving"
	case SessionDiscardConfirm:
		return "discard-confirm"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// RemovalFailure is a pending removal that failed during Save.
type RemovalFailure struct {
	PlaceID string
	Err     error
}

// SaveReport describes what a Save committed.
type SaveReport struct {
	Renamed bool
	Removed []string
	Failed  []RemovalFailure
}

// EditSession stages a new name and removals for one folder until Save or Discard.
// It accepts one mutation at a time.
type EditSession struct {
	c *Controller

	mu        sync.Mutex
	folder    model.Folder
	state     SessionState
	nameDraft string
	pending   []string
}

// OpenSession starts editing the cached folder folderID.
func (c *Controller) OpenSession(folderID string) (*EditSession, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	folder, ok := c.folders.get(folderID)
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFolder, folderID)
	}
	return &EditSession{
		c:         c,
		folder:    folder,
		state:     SessionClean,
		nameDraft: folder.Name,
	}, nil
}

// Folder returns the folder as last committed.
func (s *EditSession) Folder() model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

// State returns the current step.
func (s *EditSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NameDraft returns the uncommitted name.
func (s *EditSession) NameDraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameDraft
}

// PendingRemovals returns the places marked for removal, in marking order.
func (s *EditSession) PendingRemovals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pending...)
}

// IsPending reports whether placeID is marked for removal.
func (s *EditSession) IsPending(placeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.pending, placeID)
}

// editable checks that the session accepts edits. Caller holds s.mu.
func (s *EditSession) editable() error {
	switch s.state {
	case SessionClosed:
		return ErrSessionClosed
	case SessionSaving:
		return ErrSessionBusy
	case SessionDiscardConfirm:
		return fmt.Errorf("%w: edit while confirming discard", ErrInvalidTransition)
	}
	return nil
}

// settle recomputes clean or dirty. Caller holds s.mu.
func (s *EditSession) settle() {
	if s.nameDraft != s.folder.Name || len(s.pending) > 0 {
		s.state = SessionDirty
		return
	}
	s.state = SessionClean
}

// SetNameDraft stages a new folder name. The default folder cannot be renamed.
func (s *EditSession) SetNameDraft(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if s.folder.IsDefault {
		return ErrDefaultFolder
	}
	s.nameDraft = name
	s.settle()
	return nil
}

// MarkPendingRemoval stages the removal of placeID from the folder.
func (s *EditSession) MarkPendingRemoval(placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if !slices.Contains(s.pending, placeID) {
		s.pending = append(s.pending, placeID)
	}
	s.settle()
	return nil
}

// UnmarkPendingRemoval drops placeID from the staged removals.
func (s *EditSession) UnmarkPendingRemoval(placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.pending = slices.DeleteFunc(s.pending, func(id string) bool { return id == placeID })
	s.settle()
	return nil
}

// TogglePendingRemoval marks placeID if unmarked and unmarks it otherwise.
func (s *EditSession) TogglePendingRemoval(placeID string) error {
	if s.IsPending(placeID) {
		return s.UnmarkPendingRemoval(placeID)
	}
	return s.MarkPendingRemoval(placeID)
}

// RequestClose closes a clean session, or asks for discard confirmation
// when there are staged changes. It returns the resulting state.
func (s *EditSession) RequestClose() (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case SessionClosed:
		return s.state, ErrSessionClosed
	case SessionSaving:
		return s.state, ErrSessionBusy
	case SessionClean:
		s.state = SessionClosed
	case SessionDirty:
		s.state = SessionDiscardConfirm
	}
	return s.state, nil
}

// Discard drops staged changes and closes the session.
func (s *EditSession) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionDiscardConfirm {
		return fmt.Errorf("%w: discard from %s", ErrInvalidTransition, s.state)
	}
	s.reset()
	s.state = SessionClosed
	return nil
}

// KeepEditing returns from discard confirmation to editing.
func (s *EditSession) KeepEditing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionDiscardConfirm {
		return fmt.Errorf("%w: keep editing from %s", ErrInvalidTransition, s.state)
	}
	s.state = SessionDirty
	return nil
}

func (s *EditSession) reset() {
	s.nameDraft = s.folder.Name
	s.pending = nil
}

// Save commits the rename first, then each staged removal in order. A failed
// removal is logged, recorded in the report and skipped. The caches are
// refreshed once and the session closes even after partial failure. The
// returned error is the rename failure, if any.
//
// An invalid name draft fails with ErrInvalidName before any gateway call and
// leaves the session open.
func (s *EditSession) Save(ctx context.Context) (SaveReport, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return SaveReport{}, err
	}
	if err := s.c.requireAuth(); err != nil {
		s.mu.Unlock()
		return SaveReport{}, err
	}
	folder := s.folder
	draft := strings.TrimSpace(s.nameDraft)
	rename := !folder.IsDefault && draft != folder.Name
	if rename && draft == "" {
		s.state = SessionDirty
		s.mu.Unlock()
		return SaveReport{}, ErrInvalidName
	}
	pending := append([]string(nil), s.pending...)
	s.state = SessionSaving
	s.mu.Unlock()

	c := s.c
	var (
		report    SaveReport
		renameErr error
	)
	if rename {
		if _, err := c.folders.rename(ctx, c.gw, folder.ID, draft); err != nil {
			renameErr = err
		} else {
			report.Renamed = true
			folder.Name = draft
		}
	}

	for _, placeID := range pending {
		if err := c.members.removeFromFolder(ctx, c.gw, placeID, folder.ID); err != nil {
			c.log.Warn().Err(err).
				Str("folder_id", folder.ID).
				Str("place_id", placeID).
				Msg("pending removal failed, skipping")
			report.Failed = append(report.Failed, RemovalFailure{PlaceID: placeID, Err: err})
			continue
		}
		report.Removed = append(report.Removed, placeID)
	}

	if report.Renamed || len(report.Removed) > 0 {
		c.refreshAfterWrite(ctx, "save folder")
	}

	s.mu.Lock()
	s.folder = folder
	s.reset()
	s.state = SessionClosed
	s.mu.Unlock()

	return report, renameErr
}
