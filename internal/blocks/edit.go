package blocks

import (
	"fmt"
	"strings"
)

// The edit functions never modify their input document. On failure they
// return the input unchanged together with the error, so callers may treat
// a failed edit as a no-op.

// Add appends a block holding c under a fresh id.
func Add(d Document, c Content) (Document, error) {
	nc, err := normalize(c)
	if err != nil {
		return d, err
	}
	out := make(Document, len(d), len(d)+1)
	copy(out, d)
	return append(out, Block{ID: newID(), Content: nc}), nil
}

// UpdateContent replaces the content of the block with the given id. The
// new content must be of the same kind as the old.
func UpdateContent(d Document, id string, c Content) (Document, error) {
	i := d.Find(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	if c == nil || c.Kind() != d[i].Kind() {
		return d, fmt.Errorf("%w: block %s holds %s content", ErrInvalidContent, id, d[i].Kind())
	}
	nc, err := normalize(c)
	if err != nil {
		return d, err
	}
	out := clone(d)
	out[i].Content = nc
	return out, nil
}

// Remove deletes the block with the given id, keeping the order of the
// rest.
func Remove(d Document, id string) (Document, error) {
	i := d.Find(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	out := make(Document, 0, len(d)-1)
	out = append(out, d[:i]...)
	return append(out, d[i+1:]...), nil
}

// AppendTableRow adds a row of empty cells to a table block, as wide as
// row 0. It fails with ErrNotTable when the block is not a table and with
// ErrEmptyTable when the table has no row to take the width from.
func AppendTableRow(d Document, id string) (Document, error) {
	i, t, err := tableAt(d, id)
	if err != nil {
		return d, err
	}
	if len(t) == 0 {
		return d, fmt.Errorf("%w: %s", ErrEmptyTable, id)
	}
	nt := make(Table, len(t), len(t)+1)
	copy(nt, t)
	nt = append(nt, make([]string, t.Columns()))

	out := clone(d)
	out[i].Content = nt
	return out, nil
}

// UpdateTableCell sets one cell of a table block. Coordinates outside the
// grid fail with ErrCellOutOfRange; the table never grows.
func UpdateTableCell(d Document, id string, row, col int, value string) (Document, error) {
	i, t, err := tableAt(d, id)
	if err != nil {
		return d, err
	}
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return d, fmt.Errorf("%w: (%d, %d) in %dx%d table", ErrCellOutOfRange, row, col, len(t), t.Columns())
	}
	nt := make(Table, len(t))
	copy(nt, t)
	r := make([]string, len(t[row]))
	copy(r, t[row])
	r[col] = strings.ToValidUTF8(value, "�")
	nt[row] = r

	out := clone(d)
	out[i].Content = nt
	return out, nil
}

// PrepareForSave drops text blocks that are empty or whitespace-only. When
// that would leave nothing, the document is returned as given and
// hasContent is false.
func PrepareForSave(d Document) (out Document, hasContent bool) {
	kept := make(Document, 0, len(d))
	for _, b := range d {
		if t, ok := b.Content.(Text); ok && strings.TrimSpace(string(t)) == "" {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		return d, false
	}
	return kept, true
}

func tableAt(d Document, id string) (int, Table, error) {
	i := d.Find(id)
	if i < 0 {
		return -1, nil, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	t, ok := d[i].Content.(Table)
	if !ok {
		return -1, nil, fmt.Errorf("%w: %s is %s", ErrNotTable, id, d[i].Kind())
	}
	return i, t, nil
}

func clone(d Document) Document {
	out := make(Document, len(d))
	copy(out, d)
	return out
}
