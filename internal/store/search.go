package store

import (
	"database/sql"
	"strings"
)

// syncSearchIndex replaces the index row for one property with the current
// flattened text. Called from the same transaction as the property write so
// the index can never lag a committed edit. Blank content still gets a row:
// every stored rich-text property has exactly one index entry.
func syncSearchIndex(tx *sql.Tx, propertyID, objectID int64, propTitle, content string) error {
	if _, err := tx.Exec("DELETE FROM properties_fts WHERE property_id = ?", propertyID); err != nil {
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO properties_fts (property_id, object_id, prop_title, content)
		VALUES (?, ?, ?, ?)`, propertyID, objectID, propTitle, content)
	return err
}

// buildMatchQuery turns user input into an FTS5 MATCH expression. Each term
// is quoted to defuse FTS operator syntax and given a prefix star so partial
// words match while typing.
func buildMatchQuery(input string) string {
	terms := strings.Fields(input)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		term = strings.ReplaceAll(term, `"`, `""`)
		quoted[i] = `"` + term + `"*`
	}
	return strings.Join(quoted, " ")
}

// Search finds objects by query. Title substring matches come first, then
// full-text matches in stored rich-text content ordered by relevance, each
// with a highlighted snippet. A zero PropertyID marks a title match.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var results []SearchResult

	rows, err := s.db.Query(`
		SELECT id, title, class_id, directory_id, icon_emoji, cover_id, created_at, modified_at
		FROM objects WHERE title LIKE ? ESCAPE '\' ORDER BY title LIMIT ?`,
		"%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, SearchResult{Object: *obj, Snippet: obj.Title})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	match := buildMatchQuery(query)
	if match == "" || len(results) >= limit {
		return results, nil
	}

	rows, err = s.db.Query(`
		SELECT f.property_id, f.prop_title,
		       snippet(properties_fts, 3, '[', ']', '…', 12),
		       o.id, o.title, o.class_id, o.directory_id, o.icon_emoji, o.cover_id,
		       o.created_at, o.modified_at
		FROM properties_fts f JOIN objects o ON o.id = f.object_id
		WHERE properties_fts MATCH ?
		ORDER BY rank LIMIT ?`, match, limit-len(results))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r SearchResult
		err := rows.Scan(&r.PropertyID, &r.PropTitle, &r.Snippet,
			&r.Object.ID, &r.Object.Title, &r.Object.ClassID, &r.Object.DirectoryID,
			&r.Object.IconEmoji, &r.Object.CoverID, &r.Object.CreatedAt, &r.Object.ModifiedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
