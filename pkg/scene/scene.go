// Package scene is a small in-memory scene graph that serves as the host
// runtime for container-aware pools. Nodes can be shown or hidden, moved
// between parents and destroyed together with their subtree.
//
// Destruction requested with immediate=false is queued and carried out by
// Flush, the way an engine defers object destruction to the end of a frame.
package scene

import (
	"fmt"

	"github.com/ajitpratap0/freelist/pkg/pool"
)

// Node is a scene entity. The zero value is not usable; create nodes with
// Scene.NewNode.
type Node struct {
	name      string
	tag       string
	active    bool
	destroyed bool
	parent    *Node
	children  []*Node
	scene     *Scene
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// Tag returns the free-form label attached to the node.
func (n *Node) Tag() string {
	return n.tag
}

// SetTag attaches a free-form label to the node.
func (n *Node) SetTag(tag string) {
	n.tag = tag
}

// Active reports the node's own active flag.
func (n *Node) Active() bool {
	return n.active
}

// ActiveInHierarchy reports whether the node and all of its ancestors are
// active.
func (n *Node) ActiveInHierarchy() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.active {
			return false
		}
	}
	return true
}

// Destroyed reports whether the node was destroyed.
func (n *Node) Destroyed() bool {
	return n.destroyed
}

// Parent returns the parent node, or nil for a root node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's children in attach order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.name
}

// Scene owns a forest of nodes and implements pool.Host for *Node.
// Like the pools it serves, a Scene is not safe for concurrent use.
type Scene struct {
	roots   []*Node
	pending []*Node
	live    int
}

var _ pool.Host[*Node] = (*Scene)(nil)

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// NewNode creates an active root node.
func (s *Scene) NewNode(name string) *Node {
	n := &Node{name: name, active: true, scene: s}
	s.roots = append(s.roots, n)
	s.live++
	return n
}

// Roots returns a copy of the root nodes in creation order.
func (s *Scene) Roots() []*Node {
	out := make([]*Node, len(s.roots))
	copy(out, s.roots)
	return out
}

// Len returns the number of live (not destroyed) nodes.
func (s *Scene) Len() int {
	return s.live
}

// ActiveCount returns the number of live nodes that are active in the
// hierarchy.
func (s *Scene) ActiveCount() int {
	count := 0
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if !n.active {
				continue
			}
			count++
			walk(n.children)
		}
	}
	walk(s.roots)
	return count
}

// SetActive shows or hides n.
func (s *Scene) SetActive(n *Node, active bool) {
	s.mustOwn(n)
	n.active = active
}

// Reparent moves n under parent, or to the root level when parent is nil.
// parent must be a *Node of this scene.
func (s *Scene) Reparent(n *Node, parent pool.Container) {
	s.mustOwn(n)

	var target *Node
	if parent != nil {
		p, ok := parent.(*Node)
		if !ok {
			panic(fmt.Sprintf("scene: cannot parent under %T", parent))
		}
		s.mustOwn(p)
		target = p
	}
	if n.parent == target {
		return
	}

	s.detach(n)
	n.parent = target
	if target == nil {
		s.roots = append(s.roots, n)
	} else {
		target.children = append(target.children, n)
	}
}

// NewContainer creates an inactive root node to hold pooled nodes.
func (s *Scene) NewContainer(name string) pool.Container {
	n := s.NewNode(name)
	n.active = false
	return n
}

// DestroyContainer destroys c and its subtree now, or queues it for the next
// Flush when immediate is false.
func (s *Scene) DestroyContainer(c pool.Container, immediate bool) {
	n, ok := c.(*Node)
	if !ok {
		panic(fmt.Sprintf("scene: cannot destroy %T", c))
	}
	if immediate {
		s.Destroy(n)
		return
	}
	s.pending = append(s.pending, n)
}

// Destroy removes n and its whole subtree from the scene.
func (s *Scene) Destroy(n *Node) {
	if n.destroyed {
		return
	}
	s.detach(n)
	s.destroyTree(n)
}

// Pending returns the number of nodes queued for destruction.
func (s *Scene) Pending() int {
	return len(s.pending)
}

// Flush destroys every queued node and returns how many nodes were
// destroyed in total, subtrees included.
func (s *Scene) Flush() int {
	before := s.live
	for _, n := range s.pending {
		s.Destroy(n)
	}
	clear(s.pending)
	s.pending = s.pending[:0]
	return before - s.live
}

func (s *Scene) destroyTree(n *Node) {
	for _, child := range n.children {
		child.parent = nil
		s.destroyTree(child)
	}
	n.children = nil
	n.parent = nil
	n.active = false
	n.destroyed = true
	s.live--
}

func (s *Scene) detach(n *Node) {
	if n.parent != nil {
		n.parent.children = removeNode(n.parent.children, n)
		n.parent = nil
		return
	}
	s.roots = removeNode(s.roots, n)
}

func (s *Scene) mustOwn(n *Node) {
	if n == nil || n.scene != s {
		panic("scene: node belongs to another scene")
	}
	if n.destroyed {
		panic(fmt.Sprintf("scene: node %q was destroyed", n.name))
	}
}

func removeNode(nodes []*Node, n *Node) []*Node {
	for i, cur := range nodes {
		if cur == n {
			copy(nodes[i:], nodes[i+1:])
			nodes[len(nodes)-1] = nil
			return nodes[:len(nodes)-1]
		}
	}
	return nodes
}
