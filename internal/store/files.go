package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/sgracey/lattice/internal/apperr"
)

// SaveFile stores an uploaded blob with its metadata. The MIME type is
// sniffed from the content rather than trusted from the client.
func (s *Store) SaveFile(filename string, data []byte) (*File, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, apperr.New("Empty filename", "a file needs a filename")
	}
	if len(data) == 0 {
		return nil, apperr.New("Empty file", "refusing to store an empty file")
	}

	sum := sha256.Sum256(data)
	f := File{
		Filename:  filename,
		MimeType:  http.DetectContentType(data),
		Size:      int64(len(data)),
		Hash:      hex.EncodeToString(sum[:]),
		CreatedAt: nowMillis(),
	}

	res, err := s.db.Exec(`
		INSERT INTO files (filename, mime_type, size, hash, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.Filename, f.MimeType, f.Size, f.Hash, f.CreatedAt, data)
	if err != nil {
		return nil, err
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFile fetches a file's metadata.
func (s *Store) GetFile(id int64) (*File, error) {
	var f File
	err := s.db.QueryRow(`
		SELECT id, filename, mime_type, size, hash, created_at
		FROM files WHERE id = ?`, id).
		Scan(&f.ID, &f.Filename, &f.MimeType, &f.Size, &f.Hash, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFileData fetches a file's metadata and content.
func (s *Store) GetFileData(id int64) (*File, []byte, error) {
	var f File
	var data []byte
	err := s.db.QueryRow(`
		SELECT id, filename, mime_type, size, hash, created_at, data
		FROM files WHERE id = ?`, id).
		Scan(&f.ID, &f.Filename, &f.MimeType, &f.Size, &f.Hash, &f.CreatedAt, &data)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &f, data, nil
}

// DeleteFile removes a file. Columns referencing it go null via the schema's
// SET NULL rules.
func (s *Store) DeleteFile(id int64) error {
	res, err := s.db.Exec("DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
