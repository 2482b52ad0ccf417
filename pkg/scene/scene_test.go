package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/freelist/pkg/pool"
)

func TestScene_Reparent(t *testing.T) {
	s := New()
	holder := s.NewNode("holder")
	a := s.NewNode("a")

	s.Reparent(a, holder)
	assert.Same(t, holder, a.Parent())
	assert.Equal(t, []*Node{holder}, s.Roots())
	assert.Equal(t, []*Node{a}, holder.Children())

	s.Reparent(a, holder)
	assert.Len(t, holder.Children(), 1, "reparenting to the same parent is a no-op")

	s.Reparent(a, nil)
	assert.Nil(t, a.Parent())
	assert.Empty(t, holder.Children())
	assert.Equal(t, []*Node{holder, a}, s.Roots())
}

func TestScene_ActiveCount(t *testing.T) {
	s := New()
	c := s.NewContainer("[Pool] test").(*Node)
	a := s.NewNode("a")
	b := s.NewNode("b")
	s.Reparent(b, c)

	assert.False(t, c.Active())
	assert.Equal(t, 1, s.ActiveCount(), "b is hidden by its inactive container")
	assert.False(t, b.ActiveInHierarchy())
	assert.True(t, a.ActiveInHierarchy())

	s.SetActive(a, false)
	assert.Zero(t, s.ActiveCount())
}

func TestScene_DestroyContainer(t *testing.T) {
	t.Run("immediate", func(t *testing.T) {
		s := New()
		c := s.NewContainer("holder")
		child := s.NewNode("child")
		s.Reparent(child, c)

		s.DestroyContainer(c, true)
		assert.True(t, child.Destroyed())
		assert.True(t, c.(*Node).Destroyed())
		assert.Zero(t, s.Len())
		assert.Empty(t, s.Roots())
	})

	t.Run("deferred", func(t *testing.T) {
		s := New()
		c := s.NewContainer("holder")
		child := s.NewNode("child")
		s.Reparent(child, c)

		s.DestroyContainer(c, false)
		assert.False(t, child.Destroyed())
		assert.Equal(t, 1, s.Pending())

		assert.Equal(t, 2, s.Flush())
		assert.True(t, child.Destroyed())
		assert.Zero(t, s.Pending())
		assert.Zero(t, s.Flush())
	})
}

func TestScene_MisusePanics(t *testing.T) {
	s := New()
	other := New()
	n := s.NewNode("n")
	foreign := other.NewNode("foreign")

	assert.Panics(t, func() { s.SetActive(foreign, true) })
	assert.Panics(t, func() { s.Reparent(n, foreign) })

	s.Destroy(n)
	assert.Panics(t, func() { s.SetActive(n, true) })
}

// TestScene_ContainerPool exercises the scene as a pool host end to end.
func TestScene_ContainerPool(t *testing.T) {
	s := New()
	sprites := pool.NewContainerPool[*Node](
		pool.FactoryFunc[*Node](func() *Node { return s.NewNode("sprite") }),
		s,
		pool.WithName("sprites"),
		pool.WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, sprites.Prewarm(4))

	container := sprites.Container().(*Node)
	assert.Len(t, container.Children(), 4)
	assert.Zero(t, s.ActiveCount())

	held := sprites.AllocateN(3)
	assert.Equal(t, 3, s.ActiveCount())
	for _, n := range held {
		assert.Nil(t, n.Parent())
		assert.True(t, n.Active())
	}
	assert.Len(t, container.Children(), 1)

	sprites.FreeAll(held[:2])
	assert.Len(t, container.Children(), 3)
	assert.Equal(t, 1, s.ActiveCount())

	sprites.Dispose()
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 4, s.Flush(), "container and its three parked sprites")
	assert.False(t, held[2].Destroyed(), "outstanding sprites are not the pool's to destroy")

	sprites.Free(held[2])
	assert.NotSame(t, container, held[2].Parent())
	assert.Len(t, sprites.Container().(*Node).Children(), 1)
}
