package store

import (
	"fmt"
	"strconv"
	"strings"
)

// PropType enumerates the class property types.
type PropType int

const (
	PropRichText PropType = iota
	PropFile
	PropBoolean
	PropSelect
	PropLink
	PropLinks
)

var propTypeNames = map[PropType]string{
	PropRichText: "rich_text",
	PropFile:     "file",
	PropBoolean:  "boolean",
	PropSelect:   "select",
	PropLink:     "link",
	PropLinks:    "links",
}

func (t PropType) String() string {
	if name, ok := propTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// ParsePropType parses the wire name of a property type.
func ParsePropType(name string) (PropType, error) {
	for t, n := range propTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown property type %q", name)
}

// HasText reports whether values of this type feed the search index.
func (t PropType) HasText() bool {
	return t == PropRichText
}

// Class is a user-defined object type.
type Class struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IconEmoji string `json:"icon_emoji"`
}

// ClassProp is a property declared by a class.
type ClassProp struct {
	ID            int64    `json:"id"`
	ClassID       int64    `json:"class_id"`
	Title         string   `json:"title"`
	Type          PropType `json:"-"`
	TypeName      string   `json:"type"`
	Description   string   `json:"description"`
	SelectOptions []string `json:"select_options,omitempty"`
}

// Object is a titled page. Titles are unique; cross-references address
// objects by title, ids are surrogate.
type Object struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ClassID     int64  `json:"class_id"`
	DirectoryID *int64 `json:"directory_id"`
	IconEmoji   string `json:"icon_emoji"`
	CoverID     *int64 `json:"cover_id"`
	CreatedAt   int64  `json:"created_at"`
	ModifiedAt  int64  `json:"modified_at"`
}

// Value is the tagged union of property values. Exactly the fields matching
// the property's type are set; the rest stay nil.
type Value struct {
	Text   *string `json:"text,omitempty"`
	File   *int64  `json:"file,omitempty"`
	Bool   *bool   `json:"bool,omitempty"`
	Select *string `json:"select,omitempty"`
	Link   *int64  `json:"link,omitempty"`
	Links  []int64 `json:"links,omitempty"`
}

// Property is one value of one class property on one object. The class
// property's title and type are snapshotted at creation so history remains
// readable after class edits.
type Property struct {
	ID            int64    `json:"id"`
	ClassPropID   int64    `json:"class_prop_id"`
	ClassPropName string   `json:"class_prop_title"`
	Type          PropType `json:"-"`
	TypeName      string   `json:"type"`
	ObjectID      int64    `json:"object_id"`
	Value         Value    `json:"value"`
}

// PropertyChange is one entry of the append-only property log. PropID is nil
// once the property itself has been deleted.
type PropertyChange struct {
	ID        int64  `json:"id"`
	ObjectID  int64  `json:"object_id"`
	PropID    *int64 `json:"prop_id"`
	PropTitle string `json:"prop_title"`
	CreatedAt int64  `json:"created_at"`
	Value     Value  `json:"value"`
}

// Link is a resolved reference: the referenced title currently names an
// object, and the row points at it by id.
type Link struct {
	ID             int64 `json:"id"`
	FromObjectID   int64 `json:"from_object_id"`
	FromPropertyID int64 `json:"from_property_id"`
	ToObjectID     int64 `json:"to_object_id"`
}

// DanglingLink is an unresolved reference: no object currently has the
// target title. Creation or rename of a matching object promotes it.
type DanglingLink struct {
	ID             int64  `json:"id"`
	FromObjectID   int64  `json:"from_object_id"`
	FromPropertyID int64  `json:"from_property_id"`
	ToObjectTitle  string `json:"to_object_title"`
}

// File is an uploaded blob's metadata.
type File struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	Hash      string `json:"hash"`
	CreatedAt int64  `json:"created_at"`
}

// Directory is a node of the filing tree.
type Directory struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IconEmoji string `json:"icon_emoji"`
	CoverID   *int64 `json:"cover_id"`
	ParentID  *int64 `json:"parent_id"`
	CreatedAt int64  `json:"created_at"`
}

// Backlink is the display form of an incoming link.
type Backlink struct {
	Title string `json:"title"`
}

// SearchResult is one hit of a search query. PropertyID is zero for title
// matches, which have no matching property.
type SearchResult struct {
	Object     Object `json:"object"`
	PropertyID int64  `json:"property_id,omitempty"`
	PropTitle  string `json:"prop_title,omitempty"`
	Snippet    string `json:"snippet"`
}

// encodeLinks and decodeLinks store the Links value variant as a
// comma-joined id list.
func encodeLinks(ids []int64) *string {
	if ids == nil {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	joined := strings.Join(parts, ",")
	return &joined
}

func decodeLinks(s *string) ([]int64, error) {
	if s == nil {
		return nil, nil
	}
	if *s == "" {
		return []int64{}, nil
	}
	parts := strings.Split(*s, ",")
	ids := make([]int64, len(parts))
	for i, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed links value %q: %w", *s, err)
		}
		ids[i] = id
	}
	return ids, nil
}
