package searcher

// TraversedNodeInfo is one step of a selection path: a node and the choice made
// at it during the current iteration.
type TraversedNodeInfo struct {
	node       *TreeNode
	choice     int
	madeChoice bool
}

func newTraversedNodeInfo(node *TreeNode) TraversedNodeInfo {
	return TraversedNodeInfo{node: node, choice: -1}
}

func (t *TraversedNodeInfo) GetNode() *TreeNode {
	return t.node
}

func (t *TraversedNodeInfo) HasMadeChoice() bool {
	return t.madeChoice
}

// GetChoice returns -1 until a choice is made.
func (t *TraversedNodeInfo) GetChoice() int {
	return t.choice
}

func (t *TraversedNodeInfo) MakeChoice(choice int) {
	if t.madeChoice {
		panic("choice already made at this node")
	}
	if choice < 0 {
		panic("cannot commit a negative choice")
	}
	t.choice = choice
	t.madeChoice = true
}

// ConstructNextNode returns the node behind the committed choice, creating it if
// this is the first time the choice leads to another sub-action.
func (t *TraversedNodeInfo) ConstructNextNode() (*TreeNode, bool, error) {
	if !t.madeChoice {
		panic("no choice made at this node")
	}
	return t.node.nextNode(t.choice)
}

// ConstructRedirectNode marks the committed choice as the end of a main action.
func (t *TraversedNodeInfo) ConstructRedirectNode() error {
	if !t.madeChoice {
		panic("no choice made at this node")
	}
	return t.node.redirect(t.choice)
}
