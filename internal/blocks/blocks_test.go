package blocks

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAdd(t *testing.T, d Document, c Content) Document {
	t.Helper()
	out, err := Add(d, c)
	require.NoError(t, err)
	return out
}

func last(d Document) string { return d[len(d)-1].ID }

func roundTrip(t *testing.T, d Document) Document {
	t.Helper()
	s, err := Serialize(d)
	require.NoError(t, err)
	got, err := Decode(s)
	require.NoError(t, err, "serialized form must decode: %s", s)
	return got
}

func TestRoundTripAllKinds(t *testing.T) {
	var d Document
	d = mustAdd(t, d, Text("Hello <b>world</b> & \"quotes\"\n\ttabbed ✓"))
	d = mustAdd(t, d, Image("data:image/png;base64,iVBORw0KGgo="))
	d = mustAdd(t, d, Drawing("data:image/png;base64,AAAA"))
	d = mustAdd(t, d, Chart{{"Rent", 1200.5}, {"Refund", -30}, {"Tiny", 1e-9}})
	d = mustAdd(t, d, Chart{})
	d = mustAdd(t, d, Table{{"h1", "h2"}, {"a", ""}})
	d = mustAdd(t, d, Text(""))

	assert.Equal(t, d, roundTrip(t, d))
}

func TestRoundTripRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"", " ", "milk", "eggs\n", "naïve", "a\"b", "<script>", "100%"}

	for iter := 0; iter < 200; iter++ {
		var d Document
		for step := 0; step < 20; step++ {
			var err error
			switch op := rng.Intn(6); {
			case op == 0 || len(d) == 0:
				var c Content
				switch rng.Intn(5) {
				case 0:
					c = Text(words[rng.Intn(len(words))])
				case 1:
					c = Image("data:image/jpeg;base64," + words[rng.Intn(len(words))])
				case 2:
					c = Drawing("data:image/png;base64,xyz")
				case 3:
					c = Chart{{Label: words[rng.Intn(len(words))], Value: rng.NormFloat64() * 100}}
				default:
					c = Table{{"h1", "h2", "h3"}}
				}
				d, err = Add(d, c)
			case op == 1:
				b := d[rng.Intn(len(d))]
				if b.Kind() == KindText {
					d, err = UpdateContent(d, b.ID, Text(words[rng.Intn(len(words))]))
				}
			case op == 2:
				d, err = Remove(d, d[rng.Intn(len(d))].ID)
			case op == 3:
				d, _ = AppendTableRow(d, d[rng.Intn(len(d))].ID)
			default:
				b := d[rng.Intn(len(d))]
				d, _ = UpdateTableCell(d, b.ID, rng.Intn(3), rng.Intn(4), words[rng.Intn(len(words))])
			}
			require.NoError(t, err)
		}
		require.Equal(t, d, roundTrip(t, d), "iteration %d", iter)
	}
}

func TestParseNeverFails(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := []string{
		"plain legacy note",
		"[",
		"[1, 2, 3]",
		"{\"type\":\"text\"}",
		"null",
		"[{\"id\":\"1\",\"type\":\"video\",\"content\":\"x\"}]",
		"[{\"id\":\"1\",\"type\":\"table\",\"content\":\"x\"}]",
		"   [not json",
		"\x00\xff\xfe",
	}
	for i := 0; i < 50; i++ {
		b := make([]byte, rng.Intn(64)+1)
		rng.Read(b)
		inputs = append(inputs, string(b))
	}

	for _, in := range inputs {
		d := Parse(in)
		require.Len(t, d, 1, "input %q", in)
		require.Equal(t, Text(in), d[0].Content, "fallback keeps the raw string verbatim")
		require.NotEmpty(t, d[0].ID)
	}

	assert.Empty(t, Parse(""))
	assert.NotNil(t, Parse(""))
	assert.Empty(t, Parse("[]"))
}

func TestParseLegacyFormat(t *testing.T) {
	raw := `[{"id":"1","type":"text","content":"New UI design"},{"id":"2","type":"chart","content":[{"name":"Item A","value":50}]},{"id":"3","type":"table","content":[["a","b"],["c"]]}]`
	d := Parse(raw)
	require.Len(t, d, 3)
	assert.Equal(t, Block{ID: "1", Content: Text("New UI design")}, d[0])
	assert.Equal(t, Chart{{Label: "Item A", Value: 50}}, d[1].Content)
	assert.Equal(t, Table{{"a", "b"}, {"c", ""}}, d[2].Content, "ragged rows are padded")
}

func TestParseAssignsMissingAndDuplicateIDs(t *testing.T) {
	d := Parse(`[{"type":"text","content":"a"},{"id":"x","type":"text","content":"b"},{"id":"x","type":"text","content":"c"}]`)
	require.Len(t, d, 3)
	assert.NotEmpty(t, d[0].ID)
	assert.Equal(t, "x", d[1].ID)
	assert.NotEqual(t, "x", d[2].ID)
	assert.NotEqual(t, d[0].ID, d[2].ID)
}

func TestParseAssignsStableIDs(t *testing.T) {
	raw := `[{"type":"text","content":"a"},{"id":"block-2","type":"text","content":"b"},{"id":"block-2","type":"text","content":"c"}]`
	first, second := Parse(raw), Parse(raw)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "block-0", first[0].ID)
	assert.Equal(t, "block-2", first[1].ID)
	assert.Equal(t, "block-2-1", first[2].ID, "an id already present in the content is never reused")
}

func TestEditsDoNotMutateInput(t *testing.T) {
	d := mustAdd(t, nil, Table{{"h1", "h2"}, {"a", "b"}})
	d = mustAdd(t, d, Text("keep"))
	before := roundTrip(t, d)

	_, err := UpdateTableCell(d, d[0].ID, 1, 1, "changed")
	require.NoError(t, err)
	_, err = AppendTableRow(d, d[0].ID)
	require.NoError(t, err)
	_, err = Remove(d, d[1].ID)
	require.NoError(t, err)
	_, err = UpdateContent(d, d[1].ID, Text("other"))
	require.NoError(t, err)

	assert.Equal(t, before, d)
}

func TestUpdateContent(t *testing.T) {
	d := mustAdd(t, nil, Text("a"))
	id := last(d)

	out, err := UpdateContent(d, id, Text("b"))
	require.NoError(t, err)
	assert.Equal(t, Text("b"), out[0].Content)
	assert.Equal(t, id, out[0].ID)

	out, err = UpdateContent(d, "missing", Text("b"))
	assert.ErrorIs(t, err, ErrBlockNotFound)
	assert.Equal(t, d, out)

	out, err = UpdateContent(d, id, Image("data:image/png;base64,"))
	assert.ErrorIs(t, err, ErrInvalidContent)
	assert.Equal(t, d, out)
}

func TestRemovePreservesOrder(t *testing.T) {
	var d Document
	for _, s := range []string{"a", "b", "c", "d"} {
		d = mustAdd(t, d, Text(s))
	}
	out, err := Remove(d, d[1].ID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []Content{Text("a"), Text("c"), Text("d")}, []Content{out[0].Content, out[1].Content, out[2].Content})

	_, err = Remove(d, "missing")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestAppendTableRow(t *testing.T) {
	d := mustAdd(t, nil, Table{{"h1", "h2"}})
	d = mustAdd(t, d, Text("not a table"))

	out, err := AppendTableRow(d, d[0].ID)
	require.NoError(t, err)
	assert.Equal(t, Table{{"h1", "h2"}, {"", ""}}, out[0].Content)

	out, err = AppendTableRow(d, d[1].ID)
	assert.ErrorIs(t, err, ErrNotTable)
	assert.Equal(t, d, out)

	empty := mustAdd(t, nil, Table{})
	_, err = AppendTableRow(empty, empty[0].ID)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestUpdateTableCell(t *testing.T) {
	d := mustAdd(t, nil, Table{{"h1", "h2"}, {"a", "b"}})
	id := d[0].ID

	out, err := UpdateTableCell(d, id, 1, 0, "x")
	require.NoError(t, err)
	assert.Equal(t, Table{{"h1", "h2"}, {"x", "b"}}, out[0].Content)

	for _, rc := range [][2]int{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		out, err = UpdateTableCell(d, id, rc[0], rc[1], "x")
		assert.ErrorIs(t, err, ErrCellOutOfRange, "%v", rc)
		assert.Equal(t, d, out)
	}
}

func TestAddRejectsNonFiniteChartValues(t *testing.T) {
	_, err := Add(nil, Chart{{Label: "x", Value: math.NaN()}})
	assert.ErrorIs(t, err, ErrInvalidContent)
	_, err = Add(nil, Chart{{Label: "x", Value: math.Inf(1)}})
	assert.ErrorIs(t, err, ErrInvalidContent)
	_, err = Add(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestAddNormalizesTables(t *testing.T) {
	d := mustAdd(t, nil, Table{{"a"}, {"b", "c", "d"}})
	assert.Equal(t, Table{{"a", "", ""}, {"b", "c", "d"}}, d[0].Content)
}

func TestPrepareForSave(t *testing.T) {
	d := mustAdd(t, nil, Text(""))
	d = mustAdd(t, d, Text("Hello"))
	d = mustAdd(t, d, Text("  \n "))

	out, ok := PrepareForSave(d)
	assert.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, Text("Hello"), out[0].Content)

	blank := mustAdd(t, nil, Text(" "))
	out, ok = PrepareForSave(blank)
	assert.False(t, ok)
	assert.Equal(t, blank, out)

	media := mustAdd(t, nil, Image("data:image/png;base64,"))
	_, ok = PrepareForSave(media)
	assert.True(t, ok)
}

func TestPreview(t *testing.T) {
	textOnly, _ := Serialize(mustAdd(t, mustAdd(t, nil, Text("  ")), Text("Groceries for the week")))
	mediaOnly, _ := Serialize(mustAdd(t, nil, Image("data:image/png;base64,")))
	both, _ := Serialize(mustAdd(t, mustAdd(t, nil, Chart{}), Text("Budget")))

	assert.Equal(t, "Groceries for the week", Preview(textOnly, 0))
	assert.Equal(t, "Groceries…", Preview(textOnly, 9))
	assert.Equal(t, MediaPlaceholder, Preview(mediaOnly, 10))
	assert.Equal(t, "Budget "+MediaPlaceholder, Preview(both, 0))
	assert.Equal(t, "legacy plain text", Preview("legacy plain text", 0))
	assert.Equal(t, "[broken", Preview("[broken", 0))
	assert.Equal(t, "", Preview("", 10))
	assert.Equal(t, "héllo…", Preview("héllo wörld", 5))
}

func TestRendererHTML(t *testing.T) {
	d := mustAdd(t, nil, Text("# Title\n\n*hi* <script>alert(1)</script>"))
	d = mustAdd(t, d, Image("javascript:alert(1)"))
	d = mustAdd(t, d, Table{{"<h>", "b"}, {"1", "2"}})
	d = mustAdd(t, d, Chart{{Label: "A", Value: 2.5}})

	out, err := NewRenderer().HTML(d)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>hi</em>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<th>&lt;h&gt;</th>")
	assert.Contains(t, out, "<span>2.5</span>")
	assert.Equal(t, 4, strings.Count(out, "<section"))
}

func TestPlainText(t *testing.T) {
	d := mustAdd(t, nil, Text("hello"))
	d = mustAdd(t, d, Drawing("data:image/png;base64,"))
	d = mustAdd(t, d, Table{{"a", "b"}})
	assert.Equal(t, "hello\n[drawing]\n[table]\na | b", PlainText(d))
}

func TestEmptyContent(t *testing.T) {
	for _, k := range []Kind{KindText, KindImage, KindDrawing, KindChart, KindTable} {
		c, err := Empty(k)
		require.NoError(t, err)
		assert.Equal(t, k, c.Kind())
	}
	_, err := Empty("video")
	assert.ErrorIs(t, err, ErrInvalidContent)
}
