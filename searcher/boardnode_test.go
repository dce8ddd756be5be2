package searcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoardNodeMap(t *testing.T) {
	t.Run("equal snapshots share a node", func(t *testing.T) {
		turnNodes := NewBoardNodeMap(NewTree())

		first, created := turnNodes.GetOrCreateNode(mockSnapshot{key: 4})
		require.True(t, created)
		second, created := turnNodes.GetOrCreateNode(mockSnapshot{key: 4})
		require.False(t, created)
		require.Same(t, first, second)
		require.Same(t, first, turnNodes.Find(mockSnapshot{key: 4}))
	})

	t.Run("hash collisions are told apart by equality", func(t *testing.T) {
		turnNodes := NewBoardNodeMap(NewTree())

		first, _ := turnNodes.GetOrCreateNode(mockSnapshot{key: 1})
		second, created := turnNodes.GetOrCreateNode(mockSnapshot{key: 3})
		require.True(t, created)
		require.NotSame(t, first, second)
		require.Equal(t, 2, turnNodes.Size())
	})

	t.Run("unknown snapshot is not found", func(t *testing.T) {
		turnNodes := NewBoardNodeMap(NewTree())
		turnNodes.GetOrCreateNode(mockSnapshot{key: 1})

		require.Nil(t, turnNodes.Find(mockSnapshot{key: 3}))
		require.Equal(t, 1, turnNodes.Size())
	})

	t.Run("concurrent lookups create one node", func(t *testing.T) {
		tree := NewTree()
		turnNodes := NewBoardNodeMap(tree)

		nodes := make([]*TreeNode, 16)
		createdFlags := make([]bool, 16)
		var wg sync.WaitGroup
		for i := range nodes {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				nodes[i], createdFlags[i] = turnNodes.GetOrCreateNode(mockSnapshot{key: 6})
			}()
		}
		wg.Wait()

		created := 0
		for i := range nodes {
			require.Same(t, nodes[0], nodes[i])
			if createdFlags[i] {
				created++
			}
		}
		require.Equal(t, 1, created, "Exactly one lookup should create the node")
		require.Equal(t, 1, tree.Size())
	})
}
