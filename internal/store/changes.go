package store

// ListChanges returns the change log of one property, newest first. The log
// is append-only; every SaveProperty and every rename-driven rewrite adds an
// entry.
func (s *Store) ListChanges(propertyID int64) ([]PropertyChange, error) {
	rows, err := s.db.Query(`
		SELECT id, object_id, prop_id, prop_title, created_at,
		       value_text, value_file, value_bool, value_select, value_link, value_links
		FROM property_changes WHERE prop_id = ? ORDER BY id DESC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []PropertyChange
	for rows.Next() {
		var c PropertyChange
		var boolVal *int64
		var linksVal *string
		err := rows.Scan(&c.ID, &c.ObjectID, &c.PropID, &c.PropTitle, &c.CreatedAt,
			&c.Value.Text, &c.Value.File, &boolVal, &c.Value.Select, &c.Value.Link, &linksVal)
		if err != nil {
			return nil, err
		}
		if boolVal != nil {
			b := *boolVal != 0
			c.Value.Bool = &b
		}
		links, err := decodeLinks(linksVal)
		if err != nil {
			return nil, err
		}
		c.Value.Links = links
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
