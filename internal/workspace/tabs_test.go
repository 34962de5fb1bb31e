package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func activeOf(t *testing.T, tabs *Tabs) int64 {
	t.Helper()
	id, ok := tabs.Active()
	if !ok {
		t.Fatalf("expected an active tab")
	}
	note, ok := tabs.ActiveNote()
	assert.True(t, ok)
	assert.Equal(t, id, note)
	return id
}

func TestTabsOpenIsDistinctAndKeepsFirstOpenOrder(t *testing.T) {
	var tabs Tabs
	for _, id := range []int64{3, 1, 3, 2, 1, 3} {
		tabs.Open(id)
	}
	assert.Equal(t, []int64{3, 1, 2}, tabs.IDs())
	assert.Equal(t, int64(3), activeOf(t, &tabs))
}

func TestTabsCloseActivePrefersLeftNeighbour(t *testing.T) {
	var tabs Tabs
	tabs.Open(1)
	tabs.Open(2)
	tabs.Open(3)
	tabs.Activate(2)

	assert.True(t, tabs.Close(2))
	assert.Equal(t, []int64{1, 3}, tabs.IDs())
	assert.Equal(t, int64(1), activeOf(t, &tabs))
}

func TestTabsCloseLeftmostActiveFallsBackToFirst(t *testing.T) {
	var tabs Tabs
	tabs.Open(1)
	tabs.Open(2)
	tabs.Open(3)
	tabs.Activate(1)

	tabs.Close(1)
	assert.Equal(t, int64(2), activeOf(t, &tabs))
}

func TestTabsCloseRightmostActive(t *testing.T) {
	var tabs Tabs
	tabs.Open(1)
	tabs.Open(2)
	tabs.Open(3)

	tabs.Close(3)
	assert.Equal(t, int64(2), activeOf(t, &tabs))
}

func TestTabsCloseInactiveKeepsSelection(t *testing.T) {
	var tabs Tabs
	tabs.Open(1)
	tabs.Open(2)
	tabs.Open(3)

	tabs.Close(1)
	assert.Equal(t, int64(3), activeOf(t, &tabs))
	assert.False(t, tabs.Close(42))
}

func TestTabsCloseLastClearsSelection(t *testing.T) {
	var tabs Tabs
	tabs.Open(7)
	tabs.Close(7)

	_, ok := tabs.Active()
	assert.False(t, ok)
	_, ok = tabs.ActiveNote()
	assert.False(t, ok)
	assert.Equal(t, 0, tabs.Len())
}

func TestTabsActivateRequiresOpenTab(t *testing.T) {
	var tabs Tabs
	tabs.Open(1)
	assert.False(t, tabs.Activate(2))
	assert.Equal(t, int64(1), activeOf(t, &tabs))
}

func TestTabsCycleWraps(t *testing.T) {
	var tabs Tabs
	_, ok := tabs.Cycle(1)
	assert.False(t, ok)

	tabs.Open(1)
	tabs.Open(2)
	tabs.Open(3)

	id, ok := tabs.Cycle(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, _ = tabs.Cycle(-1)
	assert.Equal(t, int64(3), id)
}
