package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/favs/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migration version recorded in the database.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY NOT NULL,
			place_id TEXT NOT NULL,
			folder_id TEXT,
			place_name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (folder_id) REFERENCES folders(id)
		);

		CREATE INDEX IF NOT EXISTS idx_favorites_folder_id ON favorites(folder_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_membership
			ON favorites(place_id, IFNULL(folder_id, ''));

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the place rating column.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE favorites ADD COLUMN rating REAL NOT NULL DEFAULT 0;
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Store, error) {
	store := model.NewStore()

	rows, err := s.db.Query(`
		SELECT id, name, created_at
		FROM folders
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Folder
		var createdAtStr string

		if err := rows.Scan(&f.ID, &f.Name, &createdAtStr); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)

		store.Folders = append(store.Folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT id, place_id, folder_id, place_name, address, photo_url, url, rating, created_at
		FROM favorites
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Favorite
		var folderID sql.NullString
		var createdAtStr string

		if err := rows.Scan(
			&f.ID, &f.PlaceID, &folderID,
			&f.Place.Name, &f.Place.Address, &f.Place.PhotoURL, &f.Place.URL, &f.Place.Rating,
			&createdAtStr,
		); err != nil {
			return nil, err
		}

		if folderID.Valid {
			f.FolderID = &folderID.String
		}
		f.Place.ID = f.PlaceID
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)

		store.Favorites = append(store.Favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store, nil
}

// Save writes the store to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(store *model.Store) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Favorites reference folders, so clear them first
	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM folders"); err != nil {
		return err
	}

	folderStmt, err := tx.Prepare(`
		INSERT INTO folders (id, name, created_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	for _, f := range store.Folders {
		if _, err := folderStmt.Exec(f.ID, f.Name, f.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	favoriteStmt, err := tx.Prepare(`
		INSERT INTO favorites (id, place_id, folder_id, place_name, address, photo_url, url, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer favoriteStmt.Close()

	for _, f := range store.Favorites {
		if _, err := favoriteStmt.Exec(
			f.ID, f.PlaceID, f.FolderID,
			f.Place.Name, f.Place.Address, f.Place.PhotoURL, f.Place.URL, f.Place.Rating,
			f.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
