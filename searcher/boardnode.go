package searcher

import (
	"sync"

	"github.com/arixlin/hearthstone-ai/game"
)

type boardEntry struct {
	snapshot game.Snapshot
	node     *TreeNode
}

// BoardNodeMap is the transposition table of a search: equal snapshots taken
// between main actions share one main-action node.
type BoardNodeMap struct {
	mu      sync.Mutex
	tree    *Tree
	buckets map[game.StateHash][]boardEntry
	size    int
}

func NewBoardNodeMap(tree *Tree) *BoardNodeMap {
	return &BoardNodeMap{
		tree:    tree,
		buckets: make(map[game.StateHash][]boardEntry),
	}
}

// GetOrCreateNode returns the node for snapshot and whether it was just created.
func (m *BoardNodeMap) GetOrCreateNode(snapshot game.Snapshot) (*TreeNode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := snapshot.Hash()
	if node := m.findLocked(hash, snapshot); node != nil {
		return node, false
	}

	node := m.tree.newNode(NoNode)
	m.buckets[hash] = append(m.buckets[hash], boardEntry{snapshot: snapshot, node: node})
	m.size++
	return node, true
}

// Find returns nil if the snapshot was never seen.
func (m *BoardNodeMap) Find(snapshot game.Snapshot) *TreeNode {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.findLocked(snapshot.Hash(), snapshot)
}

func (m *BoardNodeMap) findLocked(hash game.StateHash, snapshot game.Snapshot) *TreeNode {
	for _, entry := range m.buckets[hash] {
		if entry.snapshot.Equal(snapshot) {
			return entry.node
		}
	}
	return nil
}

func (m *BoardNodeMap) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.size
}
