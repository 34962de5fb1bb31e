package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/quill/internal/ui/components"
)

func TestSplitLinesSplitsOnNewlines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitLines("\na\nb\nc\n"))
}

func TestRenderBannerIncludesSubtitleAndNoOSC(t *testing.T) {
	out := RenderBanner()
	assert.NotContains(t, out, "\x1b]")

	clean := components.SanitizeText(out)
	assert.Contains(t, clean, "Encrypted notes")
	assert.True(t, strings.Contains(clean, "─"))
}

func TestCenterBlock(t *testing.T) {
	out := centerBlock("hi", 10)
	assert.True(t, strings.HasPrefix(out, " "))
	assert.Equal(t, "hi", centerBlock("hi", 0))
}

func TestPluralNotes(t *testing.T) {
	assert.Equal(t, "1 note", pluralNotes(1))
	assert.Equal(t, "3 notes", pluralNotes(3))
}
