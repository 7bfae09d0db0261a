package router

import (
	"slices"

	"github.com/cannon-dev/cannon/pkg/abi"
)

// DefaultMaxLeafWidth is the largest number of selectors placed in one
// switch block.
const DefaultMaxLeafWidth = 9

// Node is a node of the dispatch tree. A leaf holds an ascending run of
// selectors; an internal node holds exactly two children and no selectors.
// Nodes are immutable once built.
type Node struct {
	selectors   []abi.Selector
	left, right *Node
}

// BuildTree sorts selectors ascending and splits them by count until no
// leaf holds more than width selectors. The left child of a split receives
// the first (n+1)/2 selectors. A width below 1 is treated as 1.
//
// An empty input yields a single empty leaf.
func BuildTree(selectors []abi.Selector, width int) *Node {
	if width < 1 {
		width = 1
	}
	sorted := slices.Clone(selectors)
	abi.SortSelectors(sorted)
	sorted = slices.Compact(sorted)
	return split(sorted, width)
}

func split(selectors []abi.Selector, width int) *Node {
	if len(selectors) <= width {
		return &Node{selectors: selectors}
	}
	mid := (len(selectors) + 1) / 2
	return &Node{
		left:  split(selectors[:mid:mid], width),
		right: split(selectors[mid:], width),
	}
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.left == nil && n.right == nil
}

// Left returns the child holding selectors below the threshold.
func (n *Node) Left() *Node { return n.left }

// Right returns the child holding selectors at or above the threshold.
func (n *Node) Right() *Node { return n.right }

// Selectors returns a copy of the selectors of a leaf. Internal nodes
// return nil.
func (n *Node) Selectors() []abi.Selector {
	return slices.Clone(n.selectors)
}

// Threshold returns the smallest selector of the right subtree. ok is false
// for leaves.
func (n *Node) Threshold() (sel abi.Selector, ok bool) {
	if n.IsLeaf() {
		return sel, false
	}
	cur := n.right
	for !cur.IsLeaf() {
		cur = cur.left
	}
	if len(cur.selectors) == 0 {
		return sel, false
	}
	return cur.selectors[0], true
}

// Leaves returns the leaves in ascending selector order.
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	return append(n.left.Leaves(), n.right.Leaves()...)
}

// Len returns the number of selectors under the node.
func (n *Node) Len() int {
	if n.IsLeaf() {
		return len(n.selectors)
	}
	return n.left.Len() + n.right.Len()
}

// Depth returns the number of internal nodes on the longest path to a leaf.
func (n *Node) Depth() int {
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(n.left.Depth(), n.right.Depth())
}
