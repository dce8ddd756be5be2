package searcher

import (
	"sync"
	"testing"

	"github.com/arixlin/hearthstone-ai/game"
	"github.com/stretchr/testify/require"
)

func TestTreeNode(t *testing.T) {
	t.Run("update accumulates edge statistics", func(t *testing.T) {
		node := NewTree().newNode(NoNode)
		node.Update(1, WIN)
		node.Update(1, LOSS)
		node.Update(0, DRAW)

		stats, ok := node.Edge(1)
		require.True(t, ok)
		require.Equal(t, EdgeStats{Visits: 2, Credit: WIN + LOSS}, stats)
		require.Equal(t, 3, node.Visits())

		_, ok = node.Edge(2)
		require.False(t, ok, "Unvisited choice should have no edge")
	})

	t.Run("select takes a virtual loss that backup replaces", func(t *testing.T) {
		node := NewTree().newNode(NoNode)

		choice, err := node.Select(game.MainAction, game.NewRangeChoices(2), fixedPolicy(1))
		require.NoError(t, err)
		require.Equal(t, 1, choice)

		stats, _ := node.Edge(1)
		require.Equal(t, EdgeStats{Visits: 1, Credit: LOSS}, stats, "In-flight choice should count as a loss")
		require.Equal(t, 1, node.Visits())

		node.backup(1, WIN)
		stats, _ = node.Edge(1)
		require.Equal(t, EdgeStats{Visits: 1, Credit: WIN}, stats, "Backup should replace the virtual loss")
		require.Equal(t, 1, node.Visits())
	})

	t.Run("released virtual loss leaves the edge as before", func(t *testing.T) {
		node := NewTree().newNode(NoNode)
		node.Update(1, WIN)

		_, err := node.Select(game.MainAction, game.NewRangeChoices(2), fixedPolicy(1))
		require.NoError(t, err)
		node.releaseLoss(1)

		stats, _ := node.Edge(1)
		require.Equal(t, EdgeStats{Visits: 1, Credit: WIN}, stats)
		require.Equal(t, 1, node.Visits())
	})

	t.Run("virtual loss spreads concurrent selections", func(t *testing.T) {
		node := NewTree().newNode(NoNode)
		policy := NewUCT(CSquared)

		first, err := node.Select(game.MainAction, game.NewRangeChoices(2), policy)
		require.NoError(t, err)
		second, err := node.Select(game.MainAction, game.NewRangeChoices(2), policy)
		require.NoError(t, err)
		require.NotEqual(t, first, second, "Second selection should avoid the in-flight choice")
	})

	t.Run("invalid policy result takes no virtual loss", func(t *testing.T) {
		node := NewTree().newNode(NoNode)

		_, err := node.Select(game.MainAction, game.NewRangeChoices(2), fixedPolicy(2))
		require.ErrorIs(t, err, ErrInvalidChoice)
		require.Equal(t, 0, node.Visits())
	})

	t.Run("best choice is the most visited", func(t *testing.T) {
		node := NewTree().newNode(NoNode)
		_, ok := node.BestChoice(game.NewRangeChoices(3))
		require.False(t, ok, "Unvisited node should have no best choice")

		node.Update(0, WIN)
		node.Update(2, LOSS)
		node.Update(2, LOSS)
		choice, ok := node.BestChoice(game.NewRangeChoices(3))
		require.True(t, ok)
		require.Equal(t, 2, choice)

		choice, ok = node.BestChoice(game.NewRangeChoices(2))
		require.True(t, ok)
		require.Equal(t, 0, choice, "Choices beyond the range should be ignored")
	})

	t.Run("children and redirects are exclusive per choice", func(t *testing.T) {
		tree := NewTree()
		node := tree.newNode(NoNode)

		child, created, err := node.nextNode(0)
		require.NoError(t, err)
		require.True(t, created)
		require.Same(t, child, node.Child(0))
		require.Same(t, child, tree.Node(child.ID()))

		again, created, err := node.nextNode(0)
		require.NoError(t, err)
		require.False(t, created)
		require.Same(t, child, again)

		require.NoError(t, node.redirect(1))
		require.True(t, node.IsRedirect(1))
		require.Nil(t, node.Child(1))
		require.Equal(t, 1, node.ChildCount())

		require.ErrorIs(t, node.redirect(0), ErrInconsistentNode)
		_, _, err = node.nextNode(1)
		require.ErrorIs(t, err, ErrInconsistentNode)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		node := NewTree().newNode(NoNode)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					node.Update(j%3, WIN)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 800, node.Visits())
	})
}

func TestTree(t *testing.T) {
	tree := NewTree()
	root := tree.newNode(NoNode)
	child := tree.newNode(root.ID())

	require.Equal(t, 2, tree.Size())
	require.Equal(t, NoNode, root.Parent())
	require.Equal(t, root.ID(), child.Parent())
	require.Nil(t, tree.Node(NoNode))
	require.Nil(t, tree.Node(2))
	require.Equal(t, game.InvalidAction, child.ActionType(), "Unvisited node should have no action type")
}

func TestTraversedNodeInfo(t *testing.T) {
	t.Run("choice can be made once", func(t *testing.T) {
		info := newTraversedNodeInfo(NewTree().newNode(NoNode))
		require.False(t, info.HasMadeChoice())
		require.Equal(t, -1, info.GetChoice())

		info.MakeChoice(2)
		require.True(t, info.HasMadeChoice())
		require.Equal(t, 2, info.GetChoice())
		require.Panics(t, func() { info.MakeChoice(1) })
	})

	t.Run("negative choice panics", func(t *testing.T) {
		info := newTraversedNodeInfo(NewTree().newNode(NoNode))
		require.Panics(t, func() { info.MakeChoice(-1) })
	})

	t.Run("constructing without a choice panics", func(t *testing.T) {
		info := newTraversedNodeInfo(NewTree().newNode(NoNode))
		require.Panics(t, func() { info.ConstructNextNode() })
		require.Panics(t, func() { info.ConstructRedirectNode() })
	})
}

func TestConsistencyChecker(t *testing.T) {
	var checker ConsistencyChecker
	_, ok := checker.Recorded()
	require.False(t, ok)

	require.NoError(t, checker.SetAndCheck(mockView(1), game.ChooseHandCard, game.NewCardChoices([]game.CardID{game.Spark, game.Bloom})))
	require.NoError(t, checker.SetAndCheck(mockView(1), game.ChooseHandCard, game.NewCardChoices([]game.CardID{game.Spark, game.Bloom})))

	err := checker.SetAndCheck(mockView(1), game.ChooseHandCard, game.NewCardChoices([]game.CardID{game.Spark, game.Strike}))
	require.ErrorIs(t, err, ErrInconsistentNode)

	recorded, ok := checker.Recorded()
	require.True(t, ok)
	require.True(t, recorded.Choices.Equal(game.NewCardChoices([]game.CardID{game.Spark, game.Bloom})), "Mismatch should not overwrite the fingerprint")
}
