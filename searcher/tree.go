package searcher

import "sync"

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode is the parent of turn roots.
const NoNode NodeID = -1

// Tree is the arena owning every node of a search. Nodes refer to each other by
// NodeID only, so dropping the Tree releases the whole search at once.
type Tree struct {
	mu    sync.RWMutex
	nodes []*TreeNode
}

func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) newNode(parent NodeID) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := &TreeNode{
		id:     NodeID(len(t.nodes)),
		parent: parent,
		tree:   t,
	}
	t.nodes = append(t.nodes, node)
	return node
}

// Node returns nil for NoNode or an unknown ID.
func (t *Tree) Node(id NodeID) *TreeNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func (t *Tree) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.nodes)
}
