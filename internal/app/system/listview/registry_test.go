package listview_test

import (
	"testing"
	"time"

	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_GetReturnsSameOrchestrator(t *testing.T) {
	r := listview.NewRegistry(time.Minute)
	mk := func() *listview.Orchestrator[row] { return listview.New[row](10) }

	a := listview.Get(r, "s1", "leads:company", mk)
	b := listview.Get(r, "s1", "leads:company", mk)
	c := listview.Get(r, "s2", "leads:company", mk)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepAndDrop(t *testing.T) {
	r := listview.NewRegistry(time.Minute)
	mk := func() *listview.Orchestrator[row] { return listview.New[row](10) }

	listview.Get(r, "s1", "a", mk)
	listview.Get(r, "s1", "b", mk)
	listview.Get(r, "s2", "a", mk)

	assert.Equal(t, 0, r.Sweep(time.Now()))
	assert.Equal(t, 3, r.Sweep(time.Now().Add(2*time.Minute)))

	listview.Get(r, "s1", "a", mk)
	listview.Get(r, "s2", "a", mk)
	assert.Equal(t, 1, r.DropSession("s1"))
	assert.Equal(t, 1, r.Len())
}
