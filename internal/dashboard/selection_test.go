package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retailops/loadboard/internal/domain/entities"
)

func TestSelection(t *testing.T) {
	visible := []entities.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	s := NewSelection()

	assert.False(t, s.AllSelected(visible))
	assert.False(t, s.AllSelected(nil))

	s.Toggle("b")
	s.Toggle("a")
	assert.True(t, s.Has("a"))
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	s.Toggle("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, 1, s.Len())

	s.SelectAll(visible)
	assert.True(t, s.AllSelected(visible))
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())

	// a narrower view does not drop hidden ids
	assert.False(t, s.AllSelected(visible[:2]))
	assert.Equal(t, 3, s.Len())

	s.Set("c", false)
	s.Set("c", false)
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.IDs())
}
