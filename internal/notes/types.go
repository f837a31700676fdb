package notes

import (
	"encoding/json"
	"time"
)

const (
	// DefaultTitle names notes created without a title.
	DefaultTitle = "Untitled Note"
	// UntitledLabel is shown in lists for notes whose title is empty.
	UntitledLabel   = "Untitled"
	DefaultCategory = "General"
	// PreviewLength is the excerpt length of list previews, in runes.
	PreviewLength = 100
	// LegacyBlockID identifies the implicit text block of plain-text
	// content until the note is saved in block form.
	LegacyBlockID = "legacy"
)

// Note is a titled block document. Content is always stored as a
// serialized block sequence, except for legacy plain-text notes that have
// not been edited since.
type Note struct {
	ID       int64  `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Content  string `bson:"content" json:"content"`
	Date     string `bson:"date" json:"date"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}

func (n Note) EntryID() int64    { return n.ID }
func (n Note) EntryDate() string { return n.Date }

// DisplayTitle is the title as list views show it.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledLabel
	}
	return n.Title
}

// Summary is a note as listed, with a preview of its content.
type Summary struct {
	Note
	Preview string `json:"preview"`
}

// Category represents aggregated category info
type Category struct {
	Name     string `json:"name"`
	Count    int64  `json:"count"`
	LastNote string `json:"lastNote"`
}

// CreateNoteInput is the input for creating a note
type CreateNoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Date     *string `json:"date"`
	Category *string `json:"category"`
}

// SaveInput is what the editor submits: the note id when editing an
// existing note, its title and its blocks in stored form.
type SaveInput struct {
	ID     *int64          `json:"id"`
	Title  string          `json:"title"`
	Blocks json.RawMessage `json:"blocks"`
}

// ListQuery represents list parameters
type ListQuery struct {
	Category string
	Query    string // case-insensitive match on title and text
	Limit    int
	Offset   int
}

// BlockInput carries a block kind and its content in stored form.
type BlockInput struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// CellInput addresses one cell of a table block.
type CellInput struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
