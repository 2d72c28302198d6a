package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPush_NewestFirst(t *testing.T) {
	h := New[int](5)

	h.Push(1)
	h.Push(2)
	h.Push(3)

	assert.Equal(t, []int{3, 2, 1}, h.Items())
}

func TestPush_DropsOldestAtBound(t *testing.T) {
	h := New[int](3)

	for i := 1; i <= 10; i++ {
		h.Push(i)
		assert.LessOrEqual(t, h.Len(), 3)
	}

	assert.Equal(t, []int{10, 9, 8}, h.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	h := New[int](3)
	h.Push(1)
	h.Push(2)

	items := h.Items()
	items[0] = 99

	assert.Equal(t, []int{2, 1}, h.Items())
}

func TestClear(t *testing.T) {
	h := New[int](3)
	h.Push(1)

	h.Clear()

	assert.Zero(t, h.Len())
	assert.Empty(t, h.Items())
}

func TestReplace(t *testing.T) {
	h := New[int](3)
	h.Push(1)

	h.Replace([]int{9, 8})
	assert.Equal(t, []int{9, 8}, h.Items())

	h.Replace([]int{5, 4, 3, 2, 1})
	assert.Equal(t, []int{5, 4, 3}, h.Items())
}

func TestMax(t *testing.T) {
	assert.Equal(t, 20, New[string](20).Max())
}
