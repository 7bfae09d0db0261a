package router

import (
	"fmt"
	"strings"
)

// EntryFunc renders the case entry of one binding inside a switch block.
type EntryFunc func(Binding) string

// RenderOptions controls the layout of the rendered tree.
type RenderOptions struct {
	// BaseDepth is the indentation depth of the outermost lines.
	BaseDepth int

	// Indent is one level of indentation.
	Indent string
}

// DefaultRenderOptions matches the assembly block of the bundled templates.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{BaseDepth: 4, Indent: "    "}
}

// RenderTree renders the dispatch tree as Yul. Internal nodes become
// `if lt(sig, <threshold>)` guards around the left subtree followed by the
// right subtree at the same depth; leaves become switch blocks whose cases
// come from entry.
func RenderTree(root *Node, set *SelectorSet, entry EntryFunc, opts RenderOptions) (string, error) {
	r := &treeRenderer{set: set, entry: entry, opts: opts}
	if err := r.node(root, opts.BaseDepth); err != nil {
		return "", err
	}
	return strings.Join(r.lines, "\n"), nil
}

type treeRenderer struct {
	set   *SelectorSet
	entry EntryFunc
	opts  RenderOptions
	lines []string
}

func (r *treeRenderer) line(depth int, text string) {
	r.lines = append(r.lines, strings.Repeat(r.opts.Indent, depth)+text)
}

func (r *treeRenderer) node(n *Node, depth int) error {
	if n.IsLeaf() {
		return r.leaf(n, depth)
	}

	threshold, ok := n.Threshold()
	if !ok {
		return fmt.Errorf("render tree: internal node without threshold")
	}

	r.line(depth, "if lt(sig, "+threshold.Hex()+") {")
	if err := r.node(n.left, depth+1); err != nil {
		return err
	}
	r.line(depth, "}")
	return r.node(n.right, depth)
}

func (r *treeRenderer) leaf(n *Node, depth int) error {
	r.line(depth, "switch sig")
	if len(n.selectors) == 0 {
		r.line(depth+1, "default {}")
	}
	for _, sel := range n.selectors {
		b, ok := r.set.Get(sel)
		if !ok {
			return fmt.Errorf("render tree: no binding for selector %s", sel)
		}
		r.line(depth+1, r.entry(b))
	}
	r.line(depth, "leave")
	return nil
}

// caseEntry formats a switch case yielding value for b.
func caseEntry(b Binding, value string) string {
	return fmt.Sprintf("case %s { result := %s } // %s.%s()", b.Selector, value, b.Module.Name, b.Function)
}
