package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/sgracey/lattice/internal/apperr"
	"github.com/sgracey/lattice/internal/store"
)

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperr.New("Bad id", "%q is not a valid id", r.PathValue(name))
	}
	return id, nil
}

// objectView is the detail representation: the object plus everything a
// client needs to render its page.
type objectView struct {
	Object     store.Object     `json:"object"`
	Properties []store.Property `json:"properties"`
	Backlinks  []store.Backlink `json:"backlinks"`
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	var classID int64
	if raw := r.URL.Query().Get("class"); raw != "" {
		var err error
		if classID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			s.writeError(w, apperr.New("Bad id", "%q is not a valid class id", raw))
			return
		}
	}
	objects, err := s.store.ListObjects(classID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, objects)
}

type createObjectRequest struct {
	Title       string                `json:"title"`
	ClassID     int64                 `json:"class_id"`
	DirectoryID *int64                `json:"directory_id"`
	IconEmoji   string                `json:"icon_emoji"`
	CoverID     *int64                `json:"cover_id"`
	Values      map[int64]store.Value `json:"values"`
}

func (s *Server) handleCreateObject(w http.ResponseWriter, r *http.Request) {
	var req createObjectRequest
	if !s.decode(w, r, &req) {
		return
	}
	obj, err := s.store.CreateObject(store.ObjectParams{
		Title:       req.Title,
		ClassID:     req.ClassID,
		DirectoryID: req.DirectoryID,
		IconEmoji:   req.IconEmoji,
		CoverID:     req.CoverID,
		Values:      req.Values,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, obj)
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	obj, err := s.store.GetObject(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	props, err := s.store.ListProperties(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	backlinks, err := s.store.GetBacklinks(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, objectView{Object: *obj, Properties: props, Backlinks: backlinks})
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteObject(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleRenameObject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	obj, err := s.store.RenameObject(id, req.Title)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, obj)
}

func (s *Server) handleUpdateObjectMeta(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		IconEmoji   string `json:"icon_emoji"`
		CoverID     *int64 `json:"cover_id"`
		DirectoryID *int64 `json:"directory_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	obj, err := s.store.UpdateObjectMeta(id, req.IconEmoji, req.CoverID, req.DirectoryID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, obj)
}

func (s *Server) handleSaveProperty(w http.ResponseWriter, r *http.Request) {
	objectID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	classPropID, err := pathID(r, "propId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Value store.Value `json:"value"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	prop, err := s.store.SaveProperty(objectID, classPropID, req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, prop)
}

func (s *Server) handleListChanges(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetProperty(id); err != nil {
		s.writeError(w, err)
		return
	}
	changes, err := s.store.ListChanges(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, changes)
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := s.store.ListClasses()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, classes)
}

type createClassRequest struct {
	Title      string `json:"title"`
	IconEmoji  string `json:"icon_emoji"`
	Properties []struct {
		Title         string   `json:"title"`
		Type          string   `json:"type"`
		Description   string   `json:"description"`
		SelectOptions []string `json:"select_options"`
	} `json:"properties"`
}

func (s *Server) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if !s.decode(w, r, &req) {
		return
	}
	props := make([]store.ClassProp, 0, len(req.Properties))
	for _, p := range req.Properties {
		typ, err := store.ParsePropType(p.Type)
		if err != nil {
			s.writeError(w, apperr.New("Bad property type", "%v", err))
			return
		}
		props = append(props, store.ClassProp{
			Title:         p.Title,
			Type:          typ,
			Description:   p.Description,
			SelectOptions: p.SelectOptions,
		})
	}
	cls, err := s.store.CreateClass(req.Title, req.IconEmoji, props)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, cls)
}

func (s *Server) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Title     string `json:"title"`
		IconEmoji string `json:"icon_emoji"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	cls, err := s.store.UpdateClass(id, req.Title, req.IconEmoji)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, cls)
}

func (s *Server) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteClass(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleDeleteClassProp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	propID, err := pathID(r, "propId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteClassProp(id, propID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListClassProps(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	props, err := s.store.ListClassProps(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, props)
}

func (s *Server) handleAddClassProp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Title         string   `json:"title"`
		Type          string   `json:"type"`
		Description   string   `json:"description"`
		SelectOptions []string `json:"select_options"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	typ, err := store.ParsePropType(req.Type)
	if err != nil {
		s.writeError(w, apperr.New("Bad property type", "%v", err))
		return
	}
	cp, err := s.store.AddClassProp(id, store.ClassProp{
		Title:         req.Title,
		Type:          typ,
		Description:   req.Description,
		SelectOptions: req.SelectOptions,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, cp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, apperr.New("Bad limit", "%q is not a valid limit", raw))
			return
		}
	}
	results, err := s.store.Search(query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	s.writeData(w, http.StatusOK, results)
}

// maxUploadBytes caps file uploads at 32 MiB.
const maxUploadBytes = 32 << 20

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, apperr.New("Bad upload", "could not parse multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apperr.New("Bad upload", "missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(data) > maxUploadBytes {
		s.writeError(w, apperr.New("File too large", "uploads are limited to 32 MiB"))
		return
	}

	f, err := s.store.SaveFile(header.Filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, f)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	f, data, err := s.store.GetFileData(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+f.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteFile(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListDirectories(w http.ResponseWriter, r *http.Request) {
	var parentID *int64
	if raw := r.URL.Query().Get("parent"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, apperr.New("Bad id", "%q is not a valid directory id", raw))
			return
		}
		parentID = &id
	}
	dirs, err := s.store.ListDirectories(parentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, dirs)
}

func (s *Server) handleCreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string `json:"title"`
		IconEmoji string `json:"icon_emoji"`
		ParentID  *int64 `json:"parent_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	dir, err := s.store.CreateDirectory(req.Title, req.IconEmoji, req.ParentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, dir)
}

func (s *Server) handleDeleteDirectory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteDirectory(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, stats)
}
