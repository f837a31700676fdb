package blocks

import (
	"strings"
)

// MediaPlaceholder stands in for non-text blocks in previews.
const MediaPlaceholder = "[Rich Media]"

// Preview summarizes persisted note content for list views: the first
// non-empty text block, cut to maxLen runes (maxLen <= 0 means no limit),
// followed by MediaPlaceholder when the note also holds non-text blocks.
// Content that is not a block array previews as the raw string.
func Preview(raw string, maxLen int) string {
	doc, err := Decode(raw)
	if err != nil {
		return truncate(raw, maxLen)
	}

	var excerpt string
	hasMedia := false
	for _, b := range doc {
		t, ok := b.Content.(Text)
		if !ok {
			hasMedia = true
			continue
		}
		if excerpt == "" && strings.TrimSpace(string(t)) != "" {
			excerpt = strings.TrimSpace(string(t))
		}
	}

	excerpt = truncate(excerpt, maxLen)
	switch {
	case hasMedia && excerpt == "":
		return MediaPlaceholder
	case hasMedia:
		return excerpt + " " + MediaPlaceholder
	}
	return excerpt
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "…"
}
