// Package blocks implements the note content model: an ordered sequence of
// typed blocks persisted as a JSON array.
package blocks

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Kind tags the variant of a block.
type Kind string

const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindDrawing Kind = "drawing"
	KindChart   Kind = "chart"
	KindTable   Kind = "table"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindDrawing, KindChart, KindTable:
		return true
	}
	return false
}

var (
	ErrBlockNotFound  = errors.New("block not found")
	ErrNotTable       = errors.New("block is not a table")
	ErrEmptyTable     = errors.New("table has no rows")
	ErrCellOutOfRange = errors.New("table cell out of range")
	ErrInvalidContent = errors.New("invalid block content")
)

// Content is the payload of a block. The set of implementations is closed:
// Text, Image, Drawing, Chart and Table.
type Content interface {
	Kind() Kind
	content()
}

// Text is a plain string block.
type Text string

// Image is an uploaded picture, held as a self-contained data URI.
type Image string

// Drawing is a picture produced by the in-app canvas, held as a data URI.
type Drawing string

// Point is one labelled value of a chart.
type Point struct {
	Label string
	Value float64
}

// Chart is an ordered list of labelled values. Values may be any finite
// number.
type Chart []Point

// Table is a rectangular grid of cell strings. Every row has the same
// number of columns.
type Table [][]string

func (Text) Kind() Kind    { return KindText }
func (Image) Kind() Kind   { return KindImage }
func (Drawing) Kind() Kind { return KindDrawing }
func (Chart) Kind() Kind   { return KindChart }
func (Table) Kind() Kind   { return KindTable }

func (Text) content()    {}
func (Image) content()   {}
func (Drawing) content() {}
func (Chart) content()   {}
func (Table) content()   {}

// Columns returns the column count of the table, taken from row 0.
func (t Table) Columns() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Block is one unit of note content. ID is unique within its document.
type Block struct {
	ID      string
	Content Content
}

// Kind returns the kind of the block's content.
func (b Block) Kind() Kind {
	if b.Content == nil {
		return ""
	}
	return b.Content.Kind()
}

// Document is the ordered block sequence of one note.
type Document []Block

// Find returns the index of the block with the given id, or -1.
func (d Document) Find(id string) int {
	for i, b := range d {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func newID() string {
	return uuid.NewString()
}

// normalize validates c and returns an independent copy in canonical form:
// text is valid UTF-8, charts and tables are non-nil, table rows are padded
// to a common width.
func normalize(c Content) (Content, error) {
	switch v := c.(type) {
	case Text:
		return Text(strings.ToValidUTF8(string(v), "�")), nil
	case Image:
		return Image(strings.ToValidUTF8(string(v), "�")), nil
	case Drawing:
		return Drawing(strings.ToValidUTF8(string(v), "�")), nil
	case Chart:
		out := make(Chart, len(v))
		for i, p := range v {
			if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				return nil, ErrInvalidContent
			}
			out[i] = Point{Label: strings.ToValidUTF8(p.Label, "�"), Value: p.Value}
		}
		return out, nil
	case Table:
		width := 0
		for _, row := range v {
			width = max(width, len(row))
		}
		out := make(Table, len(v))
		for i, row := range v {
			r := make([]string, width)
			for j, cell := range row {
				r[j] = strings.ToValidUTF8(cell, "�")
			}
			out[i] = r
		}
		return out, nil
	}
	return nil, ErrInvalidContent
}

// Empty returns the content a freshly inserted block of kind k starts with.
// Tables start as a two-by-two grid with header row, charts with two sample
// slices, everything else empty.
func Empty(k Kind) (Content, error) {
	switch k {
	case KindText:
		return Text(""), nil
	case KindImage:
		return Image(""), nil
	case KindDrawing:
		return Drawing(""), nil
	case KindChart:
		return Chart{{Label: "Item A", Value: 50}, {Label: "Item B", Value: 30}}, nil
	case KindTable:
		return Table{{"Header 1", "Header 2"}, {"Data 1", "Data 2"}}, nil
	}
	return nil, ErrInvalidContent
}
