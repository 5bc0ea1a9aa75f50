package searcher

import (
	"math"

	"gomoku/game"
)

// handle indexes a node in the tree's arena. Handles stay valid until the
// node's subtree is released.
type handle int32

const noHandle handle = -1

type edge struct {
	move  game.Move
	child handle
}

type node struct {
	parent handle
	edges  []edge // in evaluator order; empty for a leaf
	visits int
	q      float64 // mean value for the player who moved into this node
	prior  float64
}

// Stats are a node's search statistics.
type Stats struct {
	Visits int
	Q      float64
	Prior  float64
}

// tree keeps all nodes in one slice. Released nodes go on a free list and
// are reused by later expansions.
type tree struct {
	nodes []node
	free  []handle
	root  handle
}

func newTree() *tree {
	t := &tree{}
	t.root = t.alloc(noHandle, 1.0)
	return t
}

func (t *tree) alloc(parent handle, prior float64) handle {
	if n := len(t.free); n > 0 {
		h := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[h] = node{parent: parent, prior: prior, edges: t.nodes[h].edges[:0]}
		return h
	}
	t.nodes = append(t.nodes, node{parent: parent, prior: prior})
	return handle(len(t.nodes) - 1)
}

// release frees h and all of its descendants.
func (t *tree) release(h handle) {
	stack := []handle{h}
	for len(stack) > 0 {
		h = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range t.nodes[h].edges {
			stack = append(stack, e.child)
		}
		t.nodes[h].parent = noHandle
		t.free = append(t.free, h)
	}
}

func (t *tree) size() int {
	return len(t.nodes) - len(t.free)
}

func (t *tree) isLeaf(h handle) bool {
	return len(t.nodes[h].edges) == 0
}

// expand creates one child of h per prior.
func (t *tree) expand(h handle, priors []Prior) {
	for _, p := range priors {
		child := t.alloc(h, p.P)
		// alloc may grow the arena, so index again after it
		t.nodes[h].edges = append(t.nodes[h].edges, edge{move: p.Move, child: child})
	}
}

// selectChild returns the child of h with the highest PUCT score. Ties go
// to the earliest edge.
func (t *tree) selectChild(h handle, cPuct float64) (game.Move, handle) {
	parent := &t.nodes[h]
	if len(parent.edges) == 0 {
		panic("node has no children")
	}

	policy := newPUCT(cPuct, parent.visits)
	best := parent.edges[0]
	bestScore := math.Inf(-1)
	for _, e := range parent.edges {
		child := &t.nodes[e.child]
		score := policy.evaluate(child.q, child.prior, child.visits)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best.move, best.child
}

// backup updates every node on path, root first, with the leaf's value for
// the player to move at the leaf. The sign flips at each step up.
func (t *tree) backup(path []handle, leafValue float64) {
	value := -leafValue
	for i := len(path) - 1; i >= 0; i-- {
		n := &t.nodes[path[i]]
		n.visits++
		n.q += (value - n.q) / float64(n.visits)
		value = -value
	}
}

func (t *tree) child(h handle, m game.Move) handle {
	for _, e := range t.nodes[h].edges {
		if e.move == m {
			return e.child
		}
	}
	return noHandle
}

// reroot makes the child reached by m the new root and releases everything
// else. It reports false and starts a fresh root when m was never expanded.
func (t *tree) reroot(m game.Move) bool {
	old := t.root
	next := t.child(old, m)
	if next == noHandle {
		t.release(old)
		t.root = t.alloc(noHandle, 1.0)
		return false
	}

	for _, e := range t.nodes[old].edges {
		if e.child != next {
			t.release(e.child)
		}
	}
	t.nodes[old].edges = t.nodes[old].edges[:0]
	t.release(old)

	t.nodes[next].parent = noHandle
	t.root = next
	return true
}

func (t *tree) stats(h handle) Stats {
	n := &t.nodes[h]
	return Stats{Visits: n.visits, Q: n.q, Prior: n.prior}
}
