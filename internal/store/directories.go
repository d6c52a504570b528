package store

import (
	"database/sql"
	"strings"

	"github.com/sgracey/lattice/internal/apperr"
)

// CreateDirectory inserts a directory, optionally nested under a parent.
func (s *Store) CreateDirectory(title, iconEmoji string, parentID *int64) (*Directory, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.New("Empty title", "a directory needs a title")
	}

	if parentID != nil {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM directories WHERE id = ?", *parentID).Scan(&n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, apperr.New("No such directory", "directory %d does not exist", *parentID)
		}
	}

	d := Directory{
		Title:     title,
		IconEmoji: iconEmoji,
		ParentID:  parentID,
		CreatedAt: nowMillis(),
	}
	res, err := s.db.Exec(`
		INSERT INTO directories (title, icon_emoji, parent_id, created_at)
		VALUES (?, ?, ?, ?)`, d.Title, d.IconEmoji, d.ParentID, d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDirectory fetches a directory by id.
func (s *Store) GetDirectory(id int64) (*Directory, error) {
	var d Directory
	err := s.db.QueryRow(`
		SELECT id, title, icon_emoji, cover_id, parent_id, created_at
		FROM directories WHERE id = ?`, id).
		Scan(&d.ID, &d.Title, &d.IconEmoji, &d.CoverID, &d.ParentID, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDirectories returns the children of parentID, or the roots when
// parentID is nil.
func (s *Store) ListDirectories(parentID *int64) ([]Directory, error) {
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = s.db.Query(`
			SELECT id, title, icon_emoji, cover_id, parent_id, created_at
			FROM directories WHERE parent_id IS NULL ORDER BY title`)
	} else {
		rows, err = s.db.Query(`
			SELECT id, title, icon_emoji, cover_id, parent_id, created_at
			FROM directories WHERE parent_id = ? ORDER BY title`, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirs []Directory
	for rows.Next() {
		var d Directory
		if err := rows.Scan(&d.ID, &d.Title, &d.IconEmoji, &d.CoverID, &d.ParentID, &d.CreatedAt); err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

// DeleteDirectory removes a directory and, through the schema's cascade,
// its subdirectories. Objects filed under them fall back to the root via
// SET NULL.
func (s *Store) DeleteDirectory(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM directories WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.New("No such directory", "directory %d does not exist", id)
		}
		return nil
	})
}
