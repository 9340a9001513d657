package favorites

import (
	"context"
	"strings"
	"sync"

	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/model"
)

// commit runs call without holding lock and, on success, applies its result
// under lock. On failure nothing is applied.
func commit[T any](lock sync.Locker, call func() (T, error), apply func(T)) (T, error) {
	v, err := call()
	if err != nil {
		var zero T
		return zero, err
	}
	lock.Lock()
	defer lock.Unlock()
	apply(v)
	return v, nil
}

// folderStore caches user folders. The default folder is synthesized on list.
type folderStore struct {
	lock    sync.Locker
	folders []model.Folder
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// list returns the default folder followed by the user folders, with counts
// and photos derived from members. Caller holds lock.
func (s *folderStore) list(members []model.Favorite) []model.Folder {
	out := make([]model.Folder, 0, len(s.folders)+1)

	def := model.NewDefaultFolder()
	def.ItemCount, def.LatestPhoto = model.FolderStats(members, def.ID)
	out = append(out, def)

	for _, f := range s.folders {
		f.ItemCount, f.LatestPhoto = model.FolderStats(members, f.ID)
		out = append(out, f)
	}
	return out
}

// get returns the cached folder id. Caller holds lock.
func (s *folderStore) get(id string) (model.Folder, bool) {
	if model.IsDefaultID(id) {
		return model.NewDefaultFolder(), true
	}
	for _, f := range s.folders {
		if f.ID == id {
			return f, true
		}
	}
	return model.Folder{}, false
}

// replace swaps the cache for a fresh listing. Caller holds lock.
func (s *folderStore) replace(folders []model.Folder) {
	kept := make([]model.Folder, 0, len(folders))
	for _, f := range folders {
		if f.IsDefault || model.IsDefaultID(f.ID) {
			continue
		}
		kept = append(kept, f)
	}
	s.folders = kept
}

func (s *folderStore) upsert(folder model.Folder) {
	for i := range s.folders {
		if s.folders[i].ID == folder.ID {
			s.folders[i] = folder
			return
		}
	}
	s.folders = append(s.folders, folder)
}

func (s *folderStore) remove(id string) {
	for i := range s.folders {
		if s.folders[i].ID == id {
			s.folders = append(s.folders[:i], s.folders[i+1:]...)
			return
		}
	}
}

func (s *folderStore) create(ctx context.Context, gw gateway.Gateway, name string) (model.Folder, error) {
	name, err := validateName(name)
	if err != nil {
		return model.Folder{}, err
	}
	folder, err := commit(s.lock,
		func() (model.Folder, error) { return gw.CreateFolder(ctx, name) },
		s.upsert,
	)
	if err != nil {
		return model.Folder{}, &WriteError{Op: "create folder", Err: err}
	}
	return folder, nil
}

func (s *folderStore) rename(ctx context.Context, gw gateway.Gateway, id, name string) (model.Folder, error) {
	if model.IsDefaultID(id) {
		return model.Folder{}, ErrDefaultFolder
	}
	name, err := validateName(name)
	if err != nil {
		return model.Folder{}, err
	}
	folder, err := commit(s.lock,
		func() (model.Folder, error) { return gw.RenameFolder(ctx, id, name) },
		func(f model.Folder) {
			// Keep the cached entry when the response omits fields
			if cached, ok := s.get(id); ok {
				cached.Name = name
				s.upsert(cached)
				return
			}
			s.upsert(f)
		},
	)
	if err != nil {
		return model.Folder{}, &WriteError{Op: "rename folder", FolderID: id, Err: err}
	}
	folder.Name = name
	return folder, nil
}

// delete removes folder id. onDeleted runs under lock after the cache entry
// is dropped.
func (s *folderStore) delete(ctx context.Context, gw gateway.Gateway, id string, onDeleted func()) error {
	if model.IsDefaultID(id) {
		return ErrDefaultFolder
	}
	_, err := commit(s.lock,
		func() (struct{}, error) { return struct{}{}, gw.DeleteFolder(ctx, id) },
		func(struct{}) {
			s.remove(id)
			onDeleted()
		},
	)
	if err != nil {
		return &WriteError{Op: "delete folder", FolderID: id, Err: err}
	}
	return nil
}
