package workspace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/quill/internal/api"
)

func TestFilterMatchesTitleOrContentIgnoringCase(t *testing.T) {
	notes := []api.Note{
		{ID: 1, Title: "Todo list"},
		{ID: 2, Title: "Shopping"},
		{ID: 3, Content: "finish todo"},
	}
	assert.Equal(t, []int64{1, 3}, noteIDs(Filter(notes, "todo")))
	assert.Equal(t, []int64{1, 3}, noteIDs(Filter(notes, "TODO")))
}

func TestFilterBlankQueryReturnsEverything(t *testing.T) {
	notes := []api.Note{{ID: 1}, {ID: 2}}
	assert.Equal(t, []int64{1, 2}, noteIDs(Filter(notes, "")))
	assert.Equal(t, []int64{1, 2}, noteIDs(Filter(notes, "  \t")))
	assert.Empty(t, Filter(nil, "x"))
}

func TestLooksLikeEmptyCiphertext(t *testing.T) {
	token := "gAAAAA" + strings.Repeat("x", 40)
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"short token", token, true},
		{"plain text", "hello world", false},
		{"too short", "gAAAAAabc", false},
		{"multiline", "gAAAAA" + strings.Repeat("x", 20) + "\n" + strings.Repeat("y", 20), false},
		{"too long", "gAAAAA" + strings.Repeat("x", 250), false},
		{"wrong prefix", "hAAAAA" + strings.Repeat("x", 40), false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LooksLikeEmptyCiphertext(tc.content))
		})
	}
}

func TestDisplayContentHidesEmptyCiphertext(t *testing.T) {
	assert.Equal(t, "", DisplayContent("gAAAAA"+strings.Repeat("q", 40)))
	assert.Equal(t, "real text", DisplayContent("real text"))
}

func TestGroupByFirstTag(t *testing.T) {
	notes := []api.Note{
		{ID: 1, Tags: []string{"work", "urgent"}},
		{ID: 2},
		{ID: 3, Tags: []string{"home"}},
		{ID: 4, Tags: []string{"work"}},
		{ID: 5, Tags: []string{""}},
	}
	groups := GroupByFirstTag(notes)
	if assert.Len(t, groups, 3) {
		assert.Equal(t, "work", groups[0].Tag)
		assert.Equal(t, []int64{1, 4}, noteIDs(groups[0].Notes))
		assert.Equal(t, UncategorizedLabel, groups[1].Tag)
		assert.Equal(t, []int64{2, 5}, noteIDs(groups[1].Notes))
		assert.Equal(t, "home", groups[2].Tag)
	}
}
