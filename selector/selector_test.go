package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	name     string
	weight   int
	current  int
	disabled bool
}

func (i *testItem) IsDisabled() bool       { return i.disabled }
func (i *testItem) GetName() string        { return i.name }
func (i *testItem) GetConfigWeight() int   { return i.weight }
func (i *testItem) GetCurrentWeight() int  { return i.current }
func (i *testItem) SetCurrentWeight(w int) { i.current = w }

func selectN(t *testing.T, s Selector[*testItem], n int) []string {
	t.Helper()
	names := make([]string, 0, n)
	for range n {
		item, err := s.Select()
		require.NoError(t, err)
		names = append(names, item.GetName())
	}
	return names
}

func TestWeightedRoundRobin(t *testing.T) {
	s := NewWeightedRoundRobinSelector[*testItem]()
	s.AddItem(&testItem{name: "a", weight: 5})
	s.AddItem(&testItem{name: "b", weight: 1})
	s.AddItem(&testItem{name: "c", weight: 1})

	assert.Equal(t, 7, s.TotalConfigWeight())
	assert.Equal(t, WRR, s.GetType())
	assert.Equal(t,
		[]string{"a", "a", "b", "a", "c", "a", "a"},
		selectN(t, s, 7))
}

func TestWeightedRoundRobinSkipsDisabled(t *testing.T) {
	s := NewWeightedRoundRobinSelector[*testItem]()
	a := &testItem{name: "a", weight: 1}
	b := &testItem{name: "b", weight: 1, disabled: true}
	s.AddItem(a)
	s.AddItem(b)

	assert.Equal(t, []string{"a", "a", "a"}, selectN(t, s, 3))

	a.disabled = true
	_, err := s.Select()
	assert.Error(t, err)
}

func TestWeightedRoundRobinEmpty(t *testing.T) {
	_, err := NewWeightedRoundRobinSelector[*testItem]().Select()
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	s := NewFallbackSelector[*testItem]()
	_, err := s.Select()
	assert.Error(t, err)

	primary := &testItem{name: "primary"}
	s.AddItem(primary)
	s.AddItem(&testItem{name: "secondary"})

	assert.Equal(t, FALLBACK, s.GetType())
	assert.Equal(t, 0, s.TotalConfigWeight())
	assert.Equal(t, []string{"primary", "primary"}, selectN(t, s, 2))

	primary.disabled = true
	assert.Equal(t, []string{"secondary"}, selectN(t, s, 1))
}

func TestNew(t *testing.T) {
	s, ok := New[*testItem](WRR)
	require.True(t, ok)
	assert.Equal(t, WRR, s.GetType())

	s, ok = New[*testItem](FALLBACK)
	require.True(t, ok)
	assert.Equal(t, FALLBACK, s.GetType())

	_, ok = New[*testItem]("random")
	assert.False(t, ok)
}
