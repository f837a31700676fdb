package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type wireBlock struct {
	ID      string          `json:"id"`
	Type    Kind            `json:"type"`
	Content json.RawMessage `json:"content"`
}

type wirePoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Parse decodes a persisted content string. Content that is not a block
// array (legacy plain-text notes, malformed JSON, unknown block kinds) comes
// back as a single text block holding the raw string verbatim. The empty
// string yields an empty document. Parse never fails.
func Parse(raw string) Document {
	if raw == "" {
		return Document{}
	}
	doc, err := decode(raw)
	if err != nil {
		return Document{{ID: newID(), Content: Text(raw)}}
	}
	return doc
}

// Decode is Parse without the plain-text fallback.
func Decode(raw string) (Document, error) {
	return decode(raw)
}

func decode(raw string) (Document, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: not a block array", ErrInvalidContent)
	}
	var wire []wireBlock
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	taken := make(map[string]bool, len(wire))
	for _, w := range wire {
		if w.ID != "" {
			taken[w.ID] = true
		}
	}

	doc := make(Document, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for i, w := range wire {
		c, err := DecodeContent(w.Type, w.Content)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		id := w.ID
		if id == "" || seen[id] {
			id = positionalID(i, taken)
		}
		seen[id] = true
		doc = append(doc, Block{ID: id, Content: c})
	}
	return doc, nil
}

// positionalID names a stored block that has no usable id after its
// position, so repeated reads of the same content agree on it.
func positionalID(i int, taken map[string]bool) string {
	id := fmt.Sprintf("block-%d", i)
	for n := 1; taken[id]; n++ {
		id = fmt.Sprintf("block-%d-%d", i, n)
	}
	taken[id] = true
	return id
}

// DecodeContent decodes the JSON payload of a block of the given kind. A
// missing or null payload decodes to the empty value of the kind.
func DecodeContent(kind Kind, raw json.RawMessage) (Content, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("null")
	}
	var c Content
	switch kind {
	case KindText, KindImage, KindDrawing:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s content: %v", ErrInvalidContent, kind, err)
		}
		switch kind {
		case KindText:
			c = Text(s)
		case KindImage:
			c = Image(s)
		default:
			c = Drawing(s)
		}
	case KindChart:
		var pts []wirePoint
		if err := json.Unmarshal(raw, &pts); err != nil {
			return nil, fmt.Errorf("%w: chart content: %v", ErrInvalidContent, err)
		}
		chart := make(Chart, len(pts))
		for i, p := range pts {
			chart[i] = Point{Label: p.Name, Value: p.Value}
		}
		c = chart
	case KindTable:
		var rows [][]string
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("%w: table content: %v", ErrInvalidContent, err)
		}
		c = Table(rows)
	default:
		return nil, fmt.Errorf("%w: unknown block type %q", ErrInvalidContent, kind)
	}
	return normalize(c)
}

// Serialize encodes the document as a JSON array of
// {"id", "type", "content"} objects. The encoding is deterministic.
func Serialize(d Document) (string, error) {
	wire := make([]wireBlock, 0, len(d))
	for _, b := range d {
		raw, err := encodeContent(b.Content)
		if err != nil {
			return "", fmt.Errorf("block %s: %w", b.ID, err)
		}
		wire = append(wire, wireBlock{ID: b.ID, Type: b.Kind(), Content: raw})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func encodeContent(c Content) (json.RawMessage, error) {
	var v any
	switch c := c.(type) {
	case Text:
		v = string(c)
	case Image:
		v = string(c)
	case Drawing:
		v = string(c)
	case Chart:
		pts := make([]wirePoint, len(c))
		for i, p := range c {
			pts[i] = wirePoint{Name: p.Label, Value: p.Value}
		}
		v = pts
	case Table:
		rows := make([][]string, len(c))
		for i, row := range c {
			if row == nil {
				row = []string{}
			}
			rows[i] = row
		}
		v = rows
	default:
		return nil, ErrInvalidContent
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return json.RawMessage(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
