package store

import (
	"database/sql"
	"strings"

	"github.com/sgracey/lattice/internal/apperr"
)

// CreateClass inserts a class and its property declarations.
func (s *Store) CreateClass(title, iconEmoji string, props []ClassProp) (*Class, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.New("Empty title", "a class needs a title")
	}

	var cls Class
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM classes WHERE title = ?", title).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return apperr.New("Duplicate class", "a class titled %q already exists", title)
		}

		res, err := tx.Exec("INSERT INTO classes (title, icon_emoji) VALUES (?, ?)", title, iconEmoji)
		if err != nil {
			return err
		}
		classID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		cls = Class{ID: classID, Title: title, IconEmoji: iconEmoji}
		for _, cp := range props {
			if _, err := insertClassProp(tx, classID, cp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cls, nil
}

func insertClassProp(tx *sql.Tx, classID int64, cp ClassProp) (int64, error) {
	cp.Title = strings.TrimSpace(cp.Title)
	if cp.Title == "" {
		return 0, apperr.New("Empty title", "a class property needs a title")
	}
	if _, ok := propTypeNames[cp.Type]; !ok {
		return 0, apperr.New("Bad property type", "unknown property type %d", int(cp.Type))
	}
	if cp.Type == PropSelect && len(cp.SelectOptions) == 0 {
		return 0, apperr.New("Missing options", "select property %q declares no options", cp.Title)
	}

	res, err := tx.Exec(`
		INSERT INTO class_props (class_id, title, type, description, select_options)
		VALUES (?, ?, ?, ?, ?)`,
		classID, cp.Title, int(cp.Type), cp.Description, strings.Join(cp.SelectOptions, "\n"))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddClassProp declares a new property on an existing class. Existing objects
// of the class do not gain a value; callers backfill with SaveProperty.
func (s *Store) AddClassProp(classID int64, cp ClassProp) (*ClassProp, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", classID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return apperr.New("No such class", "class %d does not exist", classID)
		}
		id, err := insertClassProp(tx, classID, cp)
		if err != nil {
			return err
		}
		cp.ID = id
		cp.ClassID = classID
		return nil
	})
	if err != nil {
		return nil, err
	}
	cp.TypeName = cp.Type.String()
	return &cp, nil
}

// UpdateClass changes a class's title and icon.
func (s *Store) UpdateClass(id int64, title, iconEmoji string) (*Class, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.New("Empty title", "a class needs a title")
	}

	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		var taken int
		if err := tx.QueryRow("SELECT COUNT(*) FROM classes WHERE title = ? AND id <> ?", title, id).Scan(&taken); err != nil {
			return err
		}
		if taken > 0 {
			return apperr.New("Duplicate class", "a class titled %q already exists", title)
		}
		_, err := tx.Exec("UPDATE classes SET title = ?, icon_emoji = ? WHERE id = ?", title, iconEmoji, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Class{ID: id, Title: title, IconEmoji: iconEmoji}, nil
}

// DeleteClass removes a class together with its property declarations and
// every object of the class. Runs in one transaction so the link graph and
// search index never observe a half-deleted class.
func (s *Store) DeleteClass(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM classes WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		// The FTS virtual table has no foreign keys; clear its rows for the
		// cascade-deleted properties by hand, like DeleteObject does.
		if _, err := tx.Exec(`
			DELETE FROM properties_fts
			WHERE object_id IN (SELECT id FROM objects WHERE class_id = ?)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM objects WHERE class_id = ?", id); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM classes WHERE id = ?", id)
		return err
	})
}

// DeleteClassProp removes a property declaration and, via the cascade, the
// stored values of every object of the class. The change log rows survive
// with a null property id.
func (s *Store) DeleteClassProp(classID, propID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRow("SELECT class_id FROM class_props WHERE id = ?", propID).Scan(&owner)
		if err == sql.ErrNoRows || (err == nil && owner != classID) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`
			DELETE FROM properties_fts
			WHERE property_id IN (SELECT id FROM properties WHERE class_prop_id = ?)`, propID); err != nil {
			return err
		}
		_, err = tx.Exec("DELETE FROM class_props WHERE id = ?", propID)
		return err
	})
}

// GetClass fetches a class by id.
func (s *Store) GetClass(id int64) (*Class, error) {
	var cls Class
	err := s.db.QueryRow("SELECT id, title, icon_emoji FROM classes WHERE id = ?", id).
		Scan(&cls.ID, &cls.Title, &cls.IconEmoji)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cls, nil
}

// GetClassByTitle fetches a class by its unique title.
func (s *Store) GetClassByTitle(title string) (*Class, error) {
	var cls Class
	err := s.db.QueryRow("SELECT id, title, icon_emoji FROM classes WHERE title = ?", title).
		Scan(&cls.ID, &cls.Title, &cls.IconEmoji)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cls, nil
}

// ListClasses returns all classes ordered by title.
func (s *Store) ListClasses() ([]Class, error) {
	rows, err := s.db.Query("SELECT id, title, icon_emoji FROM classes ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []Class
	for rows.Next() {
		var cls Class
		if err := rows.Scan(&cls.ID, &cls.Title, &cls.IconEmoji); err != nil {
			return nil, err
		}
		classes = append(classes, cls)
	}
	return classes, rows.Err()
}

// ListClassProps returns the property declarations of a class in declaration
// order.
func (s *Store) ListClassProps(classID int64) ([]ClassProp, error) {
	rows, err := s.db.Query(`
		SELECT id, class_id, title, type, description, select_options
		FROM class_props WHERE class_id = ? ORDER BY id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClassProps(rows)
}

func listClassPropsTx(tx *sql.Tx, classID int64) ([]ClassProp, error) {
	rows, err := tx.Query(`
		SELECT id, class_id, title, type, description, select_options
		FROM class_props WHERE class_id = ? ORDER BY id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClassProps(rows)
}

func scanClassProps(rows *sql.Rows) ([]ClassProp, error) {
	var props []ClassProp
	for rows.Next() {
		var cp ClassProp
		var typ int
		var options string
		if err := rows.Scan(&cp.ID, &cp.ClassID, &cp.Title, &typ, &cp.Description, &options); err != nil {
			return nil, err
		}
		cp.Type = PropType(typ)
		cp.TypeName = cp.Type.String()
		if options != "" {
			cp.SelectOptions = strings.Split(options, "\n")
		}
		props = append(props, cp)
	}
	return props, rows.Err()
}
