package store

import (
	"database/sql"
	"strings"

	"github.com/sgracey/lattice/internal/apperr"
	"github.com/sgracey/lattice/internal/doc"
)

// ObjectParams carries everything needed to create an object. Values maps
// class property ids to initial values and must cover every property the
// class declares.
type ObjectParams struct {
	Title       string
	ClassID     int64
	DirectoryID *int64
	IconEmoji   string
	CoverID     *int64
	Values      map[int64]Value
}

// CreateObject inserts an object with a full set of property values. Any
// dangling links addressed to the new title are promoted to resolved links
// in the same transaction.
func (s *Store) CreateObject(params ObjectParams) (*Object, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, apperr.New("Empty title", "an object needs a title")
	}

	var obj Object
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM objects WHERE title = ?", title).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return apperr.New("Duplicate title", "an object titled %q already exists", title)
		}

		var classIcon string
		err := tx.QueryRow("SELECT icon_emoji FROM classes WHERE id = ?", params.ClassID).Scan(&classIcon)
		if err == sql.ErrNoRows {
			return apperr.New("No such class", "class %d does not exist", params.ClassID)
		}
		if err != nil {
			return err
		}

		if params.DirectoryID != nil {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM directories WHERE id = ?", *params.DirectoryID).Scan(&n); err != nil {
				return err
			}
			if n == 0 {
				return apperr.New("No such directory", "directory %d does not exist", *params.DirectoryID)
			}
		}

		// New objects inherit the class icon unless they bring their own.
		icon := params.IconEmoji
		if icon == "" {
			icon = classIcon
		}

		now := nowMillis()
		res, err := tx.Exec(`
			INSERT INTO objects (title, class_id, directory_id, icon_emoji, cover_id, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			title, params.ClassID, params.DirectoryID, icon, params.CoverID, now, now)
		if err != nil {
			return err
		}
		objectID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		obj = Object{
			ID:          objectID,
			Title:       title,
			ClassID:     params.ClassID,
			DirectoryID: params.DirectoryID,
			IconEmoji:   icon,
			CoverID:     params.CoverID,
			CreatedAt:   now,
			ModifiedAt:  now,
		}

		classProps, err := listClassPropsTx(tx, params.ClassID)
		if err != nil {
			return err
		}
		for _, cp := range classProps {
			value, ok := params.Values[cp.ID]
			if !ok {
				return apperr.New("Missing property",
					"no value given for property %q", cp.Title)
			}
			if _, err := savePropertyTx(tx, &obj, cp.ID, value); err != nil {
				return err
			}
		}
		for id := range params.Values {
			found := false
			for _, cp := range classProps {
				if cp.ID == id {
					found = true
					break
				}
			}
			if !found {
				return apperr.New("Unknown property",
					"class property %d is not declared by the object's class", id)
			}
		}

		return promoteDanglingLinks(tx, objectID, title)
	})
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// GetObject fetches an object by id.
func (s *Store) GetObject(id int64) (*Object, error) {
	var obj *Object
	err := s.withTx(func(tx *sql.Tx) error {
		o, err := getObjectTx(tx, id)
		if err != nil {
			return err
		}
		obj = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// GetObjectByTitle fetches an object by its unique title.
func (s *Store) GetObjectByTitle(title string) (*Object, error) {
	row := s.db.QueryRow(`
		SELECT id, title, class_id, directory_id, icon_emoji, cover_id, created_at, modified_at
		FROM objects WHERE title = ?`, title)
	return scanObject(row)
}

func getObjectTx(tx *sql.Tx, id int64) (*Object, error) {
	row := tx.QueryRow(`
		SELECT id, title, class_id, directory_id, icon_emoji, cover_id, created_at, modified_at
		FROM objects WHERE id = ?`, id)
	obj, err := scanObject(row)
	if err == ErrNotFound {
		return nil, apperr.New("No such object", "object %d does not exist", id)
	}
	return obj, err
}

func scanObject(row rowScanner) (*Object, error) {
	var obj Object
	err := row.Scan(&obj.ID, &obj.Title, &obj.ClassID, &obj.DirectoryID,
		&obj.IconEmoji, &obj.CoverID, &obj.CreatedAt, &obj.ModifiedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// ListObjects returns all objects ordered by title. classID filters by class
// when non-zero.
func (s *Store) ListObjects(classID int64) ([]Object, error) {
	query := `
		SELECT id, title, class_id, directory_id, icon_emoji, cover_id, created_at, modified_at
		FROM objects`
	var args []any
	if classID != 0 {
		query += " WHERE class_id = ?"
		args = append(args, classID)
	}
	query += " ORDER BY title"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, *obj)
	}
	return objects, rows.Err()
}

// RenameObject changes an object's title and rewrites every stored document
// that references the old title so references keep pointing at the object by
// its new name. Dangling links waiting for the new title are promoted. All
// of it commits atomically.
func (s *Store) RenameObject(id int64, newTitle string) (*Object, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, apperr.New("Empty title", "an object needs a title")
	}

	var obj *Object
	err := s.withTx(func(tx *sql.Tx) error {
		o, err := getObjectTx(tx, id)
		if err != nil {
			return err
		}
		if o.Title == newTitle {
			obj = o
			return nil
		}

		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM objects WHERE title = ?", newTitle).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return apperr.New("Duplicate title", "an object titled %q already exists", newTitle)
		}

		if _, err := tx.Exec("UPDATE objects SET title = ? WHERE id = ?", newTitle, id); err != nil {
			return err
		}

		if err := rewriteReferringDocs(tx, id, o.Title, newTitle); err != nil {
			return err
		}
		if err := promoteDanglingLinks(tx, id, newTitle); err != nil {
			return err
		}
		if err := touchObject(tx, id); err != nil {
			return err
		}

		o.Title = newTitle
		obj = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// rewriteReferringDocs updates the stored document of every property holding
// a resolved link to the renamed object, swapping the reference titles and
// refreshing the search index rows whose flattened text changed. The link
// rows themselves are keyed by object id and stay put.
func rewriteReferringDocs(tx *sql.Tx, objectID int64, oldTitle, newTitle string) error {
	rows, err := tx.Query(`
		SELECT p.id, p.object_id, p.class_prop_title, p.value_text
		FROM links l JOIN properties p ON p.id = l.from_property_id
		WHERE l.to_object_id = ? AND p.value_text IS NOT NULL`, objectID)
	if err != nil {
		return err
	}
	type referrer struct {
		propID    int64
		objectID  int64
		propTitle string
		text      string
	}
	var referrers []referrer
	for rows.Next() {
		var r referrer
		if err := rows.Scan(&r.propID, &r.objectID, &r.propTitle, &r.text); err != nil {
			rows.Close()
			return err
		}
		referrers = append(referrers, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range referrers {
		d, err := doc.Parse([]byte(r.text))
		if err != nil {
			return err
		}
		renamed := doc.RenameRefs(d, oldTitle, newTitle)
		raw, err := doc.Serialize(renamed)
		if err != nil {
			return err
		}
		text := string(raw)

		if _, err := tx.Exec("UPDATE properties SET value_text = ? WHERE id = ?", text, r.propID); err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO property_changes (object_id, prop_id, prop_title, created_at, value_text)
			VALUES (?, ?, ?, ?, ?)`,
			r.objectID, r.propID, r.propTitle, nowMillis(), text)
		if err != nil {
			return err
		}
		if err := syncSearchIndex(tx, r.propID, r.objectID, r.propTitle, doc.PlainText(renamed)); err != nil {
			return err
		}
	}
	return nil
}

// UpdateObjectMeta changes icon, cover and directory without touching the
// title or properties.
func (s *Store) UpdateObjectMeta(id int64, iconEmoji string, coverID, directoryID *int64) (*Object, error) {
	var obj *Object
	err := s.withTx(func(tx *sql.Tx) error {
		o, err := getObjectTx(tx, id)
		if err != nil {
			return err
		}
		if directoryID != nil {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM directories WHERE id = ?", *directoryID).Scan(&n); err != nil {
				return err
			}
			if n == 0 {
				return apperr.New("No such directory", "directory %d does not exist", *directoryID)
			}
		}
		_, err = tx.Exec(`
			UPDATE objects SET icon_emoji = ?, cover_id = ?, directory_id = ? WHERE id = ?`,
			iconEmoji, coverID, directoryID, id)
		if err != nil {
			return err
		}
		if err := touchObject(tx, id); err != nil {
			return err
		}
		o.IconEmoji = iconEmoji
		o.CoverID = coverID
		o.DirectoryID = directoryID
		obj = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// DeleteObject removes an object. Its properties, change log, outgoing links
// and incoming links go with it; references held in other objects' documents
// are simply lost, they do not reappear as dangling links. Search index rows
// are removed explicitly since the virtual table carries no foreign keys.
func (s *Store) DeleteObject(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := getObjectTx(tx, id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM properties_fts WHERE object_id = ?", id); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM objects WHERE id = ?", id)
		return err
	})
}

func touchObject(tx *sql.Tx, id int64) error {
	_, err := tx.Exec("UPDATE objects SET modified_at = ? WHERE id = ?", nowMillis(), id)
	return err
}
