package workspace

import (
	"strings"

	"github.com/gravitrone/quill/internal/api"
)

// Ciphertext tokens produced by the server's Fernet encryption start with
// this prefix. An encrypted empty string is a short single-line token.
const (
	ciphertextPrefix = "gAAAAA"
	minEmptyCipher   = 30
	maxEmptyCipher   = 200
)

// UncategorizedLabel names the bucket for notes without a folder or tag.
const UncategorizedLabel = "Uncategorized"

// LooksLikeEmptyCiphertext reports whether content appears to be the
// ciphertext of an empty string. This is a heuristic: short real
// ciphertexts match too, and other encodings do not.
func LooksLikeEmptyCiphertext(content string) bool {
	return strings.HasPrefix(content, ciphertextPrefix) &&
		!strings.Contains(content, "\n") &&
		len(content) > minEmptyCipher &&
		len(content) < maxEmptyCipher
}

// DisplayContent returns the text the editor should show for content.
func DisplayContent(content string) string {
	if LooksLikeEmptyCiphertext(content) {
		return ""
	}
	return content
}

// Matches reports whether query occurs in the note's title or content,
// ignoring case. A blank query matches everything.
func Matches(n api.Note, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

// Filter returns the notes matching query, preserving order.
func Filter(notes []api.Note, query string) []api.Note {
	if strings.TrimSpace(query) == "" {
		return append([]api.Note(nil), notes...)
	}
	out := make([]api.Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, query) {
			out = append(out, n)
		}
	}
	return out
}

// TagGroup is a set of notes sharing a first tag.
type TagGroup struct {
	Tag   string
	Notes []api.Note
}

// GroupByFirstTag buckets notes by their first tag, in first-seen order.
// Untagged notes go to UncategorizedLabel.
func GroupByFirstTag(notes []api.Note) []TagGroup {
	index := make(map[string]int)
	groups := make([]TagGroup, 0)
	for _, n := range notes {
		tag := UncategorizedLabel
		if len(n.Tags) > 0 && strings.TrimSpace(n.Tags[0]) != "" {
			tag = n.Tags[0]
		}
		i, ok := index[tag]
		if !ok {
			i = len(groups)
			index[tag] = i
			groups = append(groups, TagGroup{Tag: tag})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	return groups
}
