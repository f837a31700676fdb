package notes

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"synergy/internal/blocks"
	"synergy/internal/calendar"
	"synergy/internal/entries"
	"synergy/internal/store"
)

type Service struct {
	repo  *store.Repo[Note]
	clock calendar.Clock
	r     *blocks.Renderer

	// edits serialises the load-modify-store cycle of block edits.
	edits sync.Mutex
}

func NewService(repo *store.Repo[Note], clock calendar.Clock) *Service {
	if clock == nil {
		clock = calendar.SystemClock
	}
	return &Service{repo: repo, clock: clock, r: blocks.NewRenderer()}
}

// NewRepo wraps a collection of notes.
func NewRepo(coll store.Collection[Note], ids *store.IDGen) *store.Repo[Note] {
	return store.NewRepo(coll, ids, func(n *Note, id int64) { n.ID = id })
}

// List returns notes most recent first, each with a preview.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	all = entries.MostRecentFirst(all)

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	out := []Summary{}
	for _, n := range all {
		if q.Category != "" && n.Category != q.Category {
			continue
		}
		if needle != "" && !s.matches(n, needle) {
			continue
		}
		out = append(out, Summary{Note: n, Preview: blocks.Preview(n.Content, PreviewLength)})
	}

	if q.Offset > 0 {
		out = out[min(q.Offset, len(out)):]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Service) matches(n Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(blocks.PlainText(Document(n))), needle)
}

// Categories returns every category with its note count and the date of
// its latest note, most recently used first.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := map[string]*Category{}
	var order []*Category
	for _, n := range all {
		name := cmp.Or(n.Category, DefaultCategory)
		c, ok := byName[name]
		if !ok {
			c = &Category{Name: name}
			byName[name] = c
			order = append(order, c)
		}
		c.Count++
		if n.Date > c.LastNote {
			c.LastNote = n.Date
		}
	}
	slices.SortStableFunc(order, func(a, b *Category) int {
		return cmp.Compare(b.LastNote, a.LastNote)
	})
	out := make([]Category, len(order))
	for i, c := range order {
		out[i] = *c
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Note, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a note. Content is normalized to a block sequence.
func (s *Service) Create(ctx context.Context, input CreateNoteInput) (Note, error) {
	content, err := normalizeContent(input.Content)
	if err != nil {
		return Note{}, err
	}
	date := input.Date
	if date == "" {
		date = timestamp(s.clock.Now())
	} else if err := checkDate(date); err != nil {
		return Note{}, err
	}
	return s.repo.Create(ctx, Note{
		Title:    cmp.Or(strings.TrimSpace(input.Title), DefaultTitle),
		Content:  content,
		Date:     date,
		Category: cmp.Or(strings.TrimSpace(input.Category), DefaultCategory),
	})
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Note, error) {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		content, err := normalizeContent(*p.Content)
		if err != nil {
			return Note{}, err
		}
		fields["content"] = content
	}
	if p.Date != nil {
		if err := checkDate(*p.Date); err != nil {
			return Note{}, err
		}
		fields["date"] = *p.Date
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Save stores what the editor holds. Empty text blocks are dropped first.
// A note with a blank title and no remaining content is discarded: saved
// reports false and nothing is written, for new and existing notes alike.
func (s *Service) Save(ctx context.Context, input SaveInput) (n Note, saved bool, err error) {
	doc := blocks.Document{}
	if len(input.Blocks) > 0 && string(input.Blocks) != "null" {
		doc, err = blocks.Decode(string(input.Blocks))
		if err != nil {
			return Note{}, false, err
		}
	}

	doc, hasContent := blocks.PrepareForSave(doc)
	if !hasContent && strings.TrimSpace(input.Title) == "" {
		return Note{}, false, nil
	}
	content, err := blocks.Serialize(doc)
	if err != nil {
		return Note{}, false, err
	}
	now := timestamp(s.clock.Now())

	if input.ID == nil {
		n, err = s.repo.Create(ctx, Note{
			Title:    cmp.Or(strings.TrimSpace(input.Title), DefaultTitle),
			Content:  content,
			Date:     now,
			Category: DefaultCategory,
		})
		return n, err == nil, err
	}
	n, err = s.repo.Update(ctx, *input.ID, map[string]any{
		"title":   strings.TrimSpace(input.Title),
		"content": content,
		"date":    now,
	})
	return n, err == nil, err
}

// Blocks returns the parsed content of a note.
func (s *Service) Blocks(ctx context.Context, id int64) (blocks.Document, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Document(n), nil
}

// AddBlock appends a block of the given kind. Without content the block
// starts with the kind's empty value.
func (s *Service) AddBlock(ctx context.Context, id int64, in BlockInput) (blocks.Document, error) {
	kind := blocks.Kind(in.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown block type %q", blocks.ErrInvalidContent, in.Type)
	}
	var (
		c   blocks.Content
		err error
	)
	if len(in.Content) == 0 {
		c, err = blocks.Empty(kind)
	} else {
		c, err = blocks.DecodeContent(kind, in.Content)
	}
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, id, func(d blocks.Document) (blocks.Document, error) {
		return blocks.Add(d, c)
	})
}

// UpdateBlock replaces the content of one block. The payload is decoded
// as the block's current kind.
func (s *Service) UpdateBlock(ctx context.Context, id int64, blockID string, raw []byte) (blocks.Document, error) {
	return s.edit(ctx, id, func(d blocks.Document) (blocks.Document, error) {
		i := d.Find(blockID)
		if i < 0 {
			return d, fmt.Errorf("%w: %s", blocks.ErrBlockNotFound, blockID)
		}
		c, err := blocks.DecodeContent(d[i].Kind(), raw)
		if err != nil {
			return d, err
		}
		return blocks.UpdateContent(d, blockID, c)
	})
}

func (s *Service) RemoveBlock(ctx context.Context, id int64, blockID string) (blocks.Document, error) {
	return s.edit(ctx, id, func(d blocks.Document) (blocks.Document, error) {
		return blocks.Remove(d, blockID)
	})
}

func (s *Service) AppendTableRow(ctx context.Context, id int64, blockID string) (blocks.Document, error) {
	return s.edit(ctx, id, func(d blocks.Document) (blocks.Document, error) {
		return blocks.AppendTableRow(d, blockID)
	})
}

func (s *Service) UpdateTableCell(ctx context.Context, id int64, blockID string, in CellInput) (blocks.Document, error) {
	return s.edit(ctx, id, func(d blocks.Document) (blocks.Document, error) {
		return blocks.UpdateTableCell(d, blockID, in.Row, in.Col, in.Value)
	})
}

// HTML renders a note for export.
func (s *Service) HTML(ctx context.Context, id int64) (Note, string, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, "", err
	}
	body, err := s.r.HTML(Document(n))
	if err != nil {
		return Note{}, "", err
	}
	return n, body, nil
}

// PlainText renders a note as text, one line per block.
func (s *Service) PlainText(ctx context.Context, id int64) (Note, string, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, "", err
	}
	return n, blocks.PlainText(Document(n)), nil
}

// edit applies fn to the note's blocks and stores the result. A legacy
// note is stored in block form from here on.
func (s *Service) edit(ctx context.Context, id int64, fn func(blocks.Document) (blocks.Document, error)) (blocks.Document, error) {
	s.edits.Lock()
	defer s.edits.Unlock()

	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := fn(Document(n))
	if err != nil {
		return nil, err
	}
	content, err := blocks.Serialize(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Update(ctx, id, map[string]any{
		"content": content,
		"date":    timestamp(s.clock.Now()),
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Document parses the content of n. Plain-text content reads as a single
// text block with the stable id LegacyBlockID, so it can be edited by id
// before it has ever been stored in block form.
func Document(n Note) blocks.Document {
	if n.Content == "" {
		return blocks.Document{}
	}
	doc, err := blocks.Decode(n.Content)
	if err != nil {
		return blocks.Document{{ID: LegacyBlockID, Content: blocks.Text(n.Content)}}
	}
	return doc
}

// normalizeContent turns any content string into a serialized block
// sequence.
func normalizeContent(raw string) (string, error) {
	return blocks.Serialize(blocks.Parse(raw))
}

func checkDate(date string) error {
	if _, err := entries.KeyOfDate(date, nil); err != nil {
		return fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	return nil
}
