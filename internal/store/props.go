package store

import (
	"database/sql"
	"slices"
	"strings"

	"github.com/sgracey/lattice/internal/apperr"
	"github.com/sgracey/lattice/internal/doc"
)

// SaveProperty writes a new value for one property of an object. The value
// must match the declared type of the class property. Rich-text values are
// parsed, schema-checked and normalized before storage; their reference set
// is reconciled and the search index updated, all in the same transaction.
func (s *Store) SaveProperty(objectID, classPropID int64, value Value) (*Property, error) {
	var prop *Property
	err := s.withTx(func(tx *sql.Tx) error {
		obj, err := getObjectTx(tx, objectID)
		if err != nil {
			return err
		}
		p, err := savePropertyTx(tx, obj, classPropID, value)
		if err != nil {
			return err
		}
		prop = p
		return touchObject(tx, objectID)
	})
	if err != nil {
		return nil, err
	}
	return prop, nil
}

func savePropertyTx(tx *sql.Tx, obj *Object, classPropID int64, value Value) (*Property, error) {
	var cp ClassProp
	var typ int
	var options string
	err := tx.QueryRow(`
		SELECT id, class_id, title, type, select_options
		FROM class_props WHERE id = ?`, classPropID).
		Scan(&cp.ID, &cp.ClassID, &cp.Title, &typ, &options)
	if err == sql.ErrNoRows {
		return nil, apperr.New("No such property", "class property %d does not exist", classPropID)
	}
	if err != nil {
		return nil, err
	}
	cp.Type = PropType(typ)
	if cp.ClassID != obj.ClassID {
		return nil, apperr.New("Wrong class", "property %q belongs to another class", cp.Title)
	}

	value, err = checkValue(tx, cp, options, value)
	if err != nil {
		return nil, err
	}

	var plain string
	var refs []string
	if cp.Type == PropRichText {
		d, err := doc.Parse([]byte(*value.Text))
		if err != nil {
			return nil, apperr.New("Malformed document", "%v", err)
		}
		if err := doc.Validate(d); err != nil {
			return nil, apperr.New("Invalid document", "%v", err)
		}
		d = doc.Normalize(d)
		raw, err := doc.Serialize(d)
		if err != nil {
			return nil, err
		}
		text := string(raw)
		value.Text = &text
		plain = doc.PlainText(d)
		refs = doc.ExtractRefs(d)
	}

	_, err = tx.Exec(`
		INSERT INTO properties
			(class_prop_id, class_prop_title, class_prop_type, object_id,
			 value_text, value_file, value_bool, value_select, value_link, value_links)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (object_id, class_prop_id) DO UPDATE SET
			value_text = excluded.value_text,
			value_file = excluded.value_file,
			value_bool = excluded.value_bool,
			value_select = excluded.value_select,
			value_link = excluded.value_link,
			value_links = excluded.value_links`,
		cp.ID, cp.Title, int(cp.Type), obj.ID,
		value.Text, value.File, boolCol(value.Bool), value.Select, value.Link, encodeLinks(value.Links))
	if err != nil {
		return nil, err
	}

	// LastInsertId is not reliable across the upsert's conflict path, so the
	// row id is read back explicitly.
	var propID int64
	err = tx.QueryRow(`
		SELECT id FROM properties WHERE object_id = ? AND class_prop_id = ?`,
		obj.ID, cp.ID).Scan(&propID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		INSERT INTO property_changes
			(object_id, prop_id, prop_title, created_at,
			 value_text, value_file, value_bool, value_select, value_link, value_links)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obj.ID, propID, cp.Title, nowMillis(),
		value.Text, value.File, boolCol(value.Bool), value.Select, value.Link, encodeLinks(value.Links))
	if err != nil {
		return nil, err
	}

	if cp.Type == PropRichText {
		if err := reconcileLinks(tx, obj.ID, propID, obj.Title, refs); err != nil {
			return nil, err
		}
		if err := syncSearchIndex(tx, propID, obj.ID, cp.Title, plain); err != nil {
			return nil, err
		}
	}

	return &Property{
		ID:            propID,
		ClassPropID:   cp.ID,
		ClassPropName: cp.Title,
		Type:          cp.Type,
		TypeName:      cp.Type.String(),
		ObjectID:      obj.ID,
		Value:         value,
	}, nil
}

// checkValue enforces that exactly the fields matching the declared type are
// set, and that referenced rows exist.
func checkValue(tx *sql.Tx, cp ClassProp, selectOptions string, v Value) (Value, error) {
	variants := 0
	if v.Text != nil {
		variants++
	}
	if v.File != nil {
		variants++
	}
	if v.Bool != nil {
		variants++
	}
	if v.Select != nil {
		variants++
	}
	if v.Link != nil {
		variants++
	}
	if v.Links != nil {
		variants++
	}
	if variants > 1 {
		return Value{}, apperr.New("Bad value", "property %q got more than one value variant", cp.Title)
	}

	wrongVariant := func() (Value, error) {
		return Value{}, apperr.New("Bad value",
			"property %q has type %s and cannot hold this value", cp.Title, cp.Type)
	}

	switch cp.Type {
	case PropRichText:
		if v.Text == nil {
			return wrongVariant()
		}
	case PropFile:
		if variants == 1 && v.File == nil {
			return wrongVariant()
		}
		if v.File != nil {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM files WHERE id = ?", *v.File).Scan(&n); err != nil {
				return Value{}, err
			}
			if n == 0 {
				return Value{}, apperr.New("No such file", "file %d does not exist", *v.File)
			}
		}
	case PropBoolean:
		if v.Bool == nil {
			return wrongVariant()
		}
	case PropSelect:
		if variants == 1 && v.Select == nil {
			return wrongVariant()
		}
		if v.Select != nil {
			opts := splitOptions(selectOptions)
			if !slices.Contains(opts, *v.Select) {
				return Value{}, apperr.New("Bad option",
					"%q is not an option of property %q", *v.Select, cp.Title)
			}
		}
	case PropLink:
		if variants == 1 && v.Link == nil {
			return wrongVariant()
		}
		if v.Link != nil {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM objects WHERE id = ?", *v.Link).Scan(&n); err != nil {
				return Value{}, err
			}
			if n == 0 {
				return Value{}, apperr.New("No such object", "object %d does not exist", *v.Link)
			}
		}
	case PropLinks:
		if variants == 1 && v.Links == nil {
			return wrongVariant()
		}
		for _, id := range v.Links {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM objects WHERE id = ?", id).Scan(&n); err != nil {
				return Value{}, err
			}
			if n == 0 {
				return Value{}, apperr.New("No such object", "object %d does not exist", id)
			}
		}
	}
	return v, nil
}

func splitOptions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// boolCol maps *bool onto the integer column SQLite stores booleans as.
func boolCol(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

// GetProperty fetches one property row.
func (s *Store) GetProperty(id int64) (*Property, error) {
	row := s.db.QueryRow(`
		SELECT id, class_prop_id, class_prop_title, class_prop_type, object_id,
		       value_text, value_file, value_bool, value_select, value_link, value_links
		FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns the properties of an object in class declaration
// order.
func (s *Store) ListProperties(objectID int64) ([]Property, error) {
	rows, err := s.db.Query(`
		SELECT id, class_prop_id, class_prop_title, class_prop_type, object_id,
		       value_text, value_file, value_bool, value_select, value_link, value_links
		FROM properties WHERE object_id = ? ORDER BY class_prop_id`, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	return props, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*Property, error) {
	var p Property
	var typ int
	var boolVal *int64
	var linksVal *string
	err := row.Scan(&p.ID, &p.ClassPropID, &p.ClassPropName, &typ, &p.ObjectID,
		&p.Value.Text, &p.Value.File, &boolVal, &p.Value.Select, &p.Value.Link, &linksVal)
	if err != nil {
		return nil, err
	}
	p.Type = PropType(typ)
	p.TypeName = p.Type.String()
	if boolVal != nil {
		b := *boolVal != 0
		p.Value.Bool = &b
	}
	links, err := decodeLinks(linksVal)
	if err != nil {
		return nil, err
	}
	p.Value.Links = links
	return &p, nil
}
