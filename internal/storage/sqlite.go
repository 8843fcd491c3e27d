package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/quill/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStorage implements Storage using a SQLite database.
// Each node is a row; sibling order is kept in the position column.
type SQLiteStorage struct {
	db   *sql.DB
	path string
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

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema %d is newer than supported %d", version, currentSchemaVersion)
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			collection TEXT NOT NULL CHECK (collection IN ('binder', 'trunk')),
			parent_id TEXT,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			synopsis TEXT NOT NULL DEFAULT '',
			synopsis_image TEXT,
			status TEXT NOT NULL DEFAULT 'Draft',
			is_folder INTEGER NOT NULL DEFAULT 0,
			corkboard TEXT,
			file_data TEXT,
			file_type TEXT,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(collection, parent_id, position);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// nodeRow is a node as stored, before it is linked into a tree.
type nodeRow struct {
	node       *model.Node
	collection string
	parentID   sql.NullString
}

// Load reads all nodes and rebuilds both collections into p.
func (s *SQLiteStorage) Load(p *model.Project) error {
	rows, err := s.db.Query(`
		SELECT id, collection, parent_id, title, body, synopsis, synopsis_image,
		       status, is_folder, corkboard, file_data, file_type
		FROM nodes
		ORDER BY position, rowid
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var loaded []nodeRow
	byID := make(map[string]*model.Node)

	for rows.Next() {
		n := &model.Node{Children: []*model.Node{}}
		var r nodeRow
		var synopsisImage, corkboard, fileData, fileType sql.NullString
		var isFolder int

		if err := rows.Scan(
			&n.ID, &r.collection, &r.parentID, &n.Title, &n.Body, &n.Synopsis, &synopsisImage,
			&n.Status, &isFolder, &corkboard, &fileData, &fileType,
		); err != nil {
			return err
		}

		n.SynopsisImage = synopsisImage.String
		n.FileData = fileData.String
		n.FileType = fileType.String
		n.IsFolder = isFolder == 1

		if corkboard.Valid {
			var opts model.CorkboardOptions
			if err := json.Unmarshal([]byte(corkboard.String), &opts); err != nil {
				return fmt.Errorf("node %q: corkboard options: %w", n.ID, err)
			}
			n.CorkboardOptions = &opts
		}

		r.node = n
		loaded = append(loaded, r)
		byID[n.ID] = n
	}
	if err := rows.Err(); err != nil {
		return err
	}

	snap := model.Snapshot{Binder: []*model.Node{}, Trunk: []*model.Node{}}
	for _, r := range loaded {
		if r.parentID.Valid {
			parent, ok := byID[r.parentID.String]
			if !ok {
				return fmt.Errorf("node %q: parent %q: %w", r.node.ID, r.parentID.String, model.ErrNotFound)
			}
			parent.Children = append(parent.Children, r.node)
			continue
		}
		if r.collection == model.CollectionTrunk.String() {
			snap.Trunk = append(snap.Trunk, r.node)
		} else {
			snap.Binder = append(snap.Binder, r.node)
		}
	}

	return p.Restore(snap)
}

// Save writes the project to the database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(p *model.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, collection, parent_id, position, title, body, synopsis,
		                   synopsis_image, status, is_folder, corkboard, file_data, file_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Parents are inserted before their children so foreign keys hold
	var insert func(c model.Collection, list []*model.Node, parentID *string) error
	insert = func(c model.Collection, list []*model.Node, parentID *string) error {
		for i, n := range list {
			var corkboard *string
			if n.CorkboardOptions != nil {
				data, err := json.Marshal(n.CorkboardOptions)
				if err != nil {
					return fmt.Errorf("encode corkboard of node %q: %w", n.ID, err)
				}
				v := string(data)
				corkboard = &v
			}

			isFolder := 0
			if n.IsFolder {
				isFolder = 1
			}

			if _, err := stmt.Exec(
				n.ID, c.String(), parentID, i, n.Title, n.Body, n.Synopsis,
				nullIfEmpty(n.SynopsisImage), string(n.Status), isFolder, corkboard,
				nullIfEmpty(n.FileData), nullIfEmpty(n.FileType),
			); err != nil {
				return fmt.Errorf("insert node %q: %w", n.ID, err)
			}

			id := n.ID
			if err := insert(c, n.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}

	snap := p.Snapshot()
	if err := insert(model.CollectionBinder, snap.Binder, nil); err != nil {
		return err
	}
	if err := insert(model.CollectionTrunk, snap.Trunk, nil); err != nil {
		return err
	}

	return tx.Commit()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/quill/project.db
func DefaultSQLitePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "project.db"), nil
}
