package store

import (
	"database/sql"
)

// reconcileLinks brings the link rows of one rich-text property in line with
// the set of titles referenced by its current document. refs is the distinct
// reference set extracted from the document; ownTitle is the title of the
// object the property belongs to, so self references can be dropped.
//
// The diff against the stored rows is computed per property, so a reference
// kept across an edit keeps its row and only additions and removals touch the
// tables. A referenced title resolves to a link row when an object with that
// title exists, and to a dangling_links row otherwise.
func reconcileLinks(tx *sql.Tx, fromObjectID, fromPropertyID int64, ownTitle string, refs []string) error {
	wanted := make(map[string]bool, len(refs))
	for _, title := range refs {
		if title == ownTitle {
			continue
		}
		wanted[title] = true
	}

	// Existing resolved links, keyed by the target's current title.
	resolved := make(map[string]int64)
	rows, err := tx.Query(`
		SELECT o.title, l.id
		FROM links l JOIN objects o ON o.id = l.to_object_id
		WHERE l.from_property_id = ?`, fromPropertyID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var title string
		var id int64
		if err := rows.Scan(&title, &id); err != nil {
			rows.Close()
			return err
		}
		resolved[title] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Existing dangling links, keyed by target title.
	dangling := make(map[string]int64)
	rows, err = tx.Query(`
		SELECT to_object_title, id FROM dangling_links
		WHERE from_property_id = ?`, fromPropertyID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var title string
		var id int64
		if err := rows.Scan(&title, &id); err != nil {
			rows.Close()
			return err
		}
		dangling[title] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Removals first.
	for title, id := range resolved {
		if !wanted[title] {
			if _, err := tx.Exec("DELETE FROM links WHERE id = ?", id); err != nil {
				return err
			}
		}
	}
	for title, id := range dangling {
		if !wanted[title] {
			if _, err := tx.Exec("DELETE FROM dangling_links WHERE id = ?", id); err != nil {
				return err
			}
		}
	}

	// Additions, preserving the document's reference order.
	for _, title := range refs {
		if !wanted[title] {
			continue
		}
		if _, ok := resolved[title]; ok {
			continue
		}
		if _, ok := dangling[title]; ok {
			continue
		}

		var toObjectID int64
		err := tx.QueryRow("SELECT id FROM objects WHERE title = ?", title).Scan(&toObjectID)
		switch {
		case err == sql.ErrNoRows:
			_, err = tx.Exec(`
				INSERT INTO dangling_links (from_object_id, from_property_id, to_object_title)
				VALUES (?, ?, ?)`, fromObjectID, fromPropertyID, title)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			_, err = tx.Exec(`
				INSERT INTO links (from_object_id, from_property_id, to_object_id)
				VALUES (?, ?, ?)`, fromObjectID, fromPropertyID, toObjectID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// promoteDanglingLinks resolves every dangling link addressed to title
// against the object that now carries it. Runs on object creation and after
// a rename. A dangling link whose source object is the target itself is a
// self reference and is dropped instead of promoted.
func promoteDanglingLinks(tx *sql.Tx, objectID int64, title string) error {
	rows, err := tx.Query(`
		SELECT id, from_object_id, from_property_id FROM dangling_links
		WHERE to_object_title = ?`, title)
	if err != nil {
		return err
	}
	var pending []DanglingLink
	for rows.Next() {
		var dl DanglingLink
		if err := rows.Scan(&dl.ID, &dl.FromObjectID, &dl.FromPropertyID); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, dl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, dl := range pending {
		if _, err := tx.Exec("DELETE FROM dangling_links WHERE id = ?", dl.ID); err != nil {
			return err
		}
		if dl.FromObjectID == objectID {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO links (from_object_id, from_property_id, to_object_id)
			VALUES (?, ?, ?)
			ON CONFLICT (from_property_id, to_object_id) DO NOTHING`,
			dl.FromObjectID, dl.FromPropertyID, objectID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetBacklinks returns the titles of objects holding a resolved link to the
// given object, deduplicated across properties and sorted.
func (s *Store) GetBacklinks(objectID int64) ([]Backlink, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT o.title
		FROM links l JOIN objects o ON o.id = l.from_object_id
		WHERE l.to_object_id = ?
		ORDER BY o.title`, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backlinks []Backlink
	for rows.Next() {
		var bl Backlink
		if err := rows.Scan(&bl.Title); err != nil {
			return nil, err
		}
		backlinks = append(backlinks, bl)
	}
	return backlinks, rows.Err()
}

// ListLinksFrom returns the resolved links originating at a property.
func (s *Store) ListLinksFrom(propertyID int64) ([]Link, error) {
	rows, err := s.db.Query(`
		SELECT id, from_object_id, from_property_id, to_object_id
		FROM links WHERE from_property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.FromObjectID, &l.FromPropertyID, &l.ToObjectID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ListDanglingFrom returns the unresolved links originating at a property.
func (s *Store) ListDanglingFrom(propertyID int64) ([]DanglingLink, error) {
	rows, err := s.db.Query(`
		SELECT id, from_object_id, from_property_id, to_object_title
		FROM dangling_links WHERE from_property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []DanglingLink
	for rows.Next() {
		var dl DanglingLink
		if err := rows.Scan(&dl.ID, &dl.FromObjectID, &dl.FromPropertyID, &dl.ToObjectTitle); err != nil {
			return nil, err
		}
		links = append(links, dl)
	}
	return links, rows.Err()
}

// ListDanglingTo returns every unresolved link addressed to a title.
func (s *Store) ListDanglingTo(title string) ([]DanglingLink, error) {
	rows, err := s.db.Query(`
		SELECT id, from_object_id, from_property_id, to_object_title
		FROM dangling_links WHERE to_object_title = ? ORDER BY id`, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []DanglingLink
	for rows.Next() {
		var dl DanglingLink
		if err := rows.Scan(&dl.ID, &dl.FromObjectID, &dl.FromPropertyID, &dl.ToObjectTitle); err != nil {
			return nil, err
		}
		links = append(links, dl)
	}
	return links, rows.Err()
}
