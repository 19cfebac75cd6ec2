// Package tree assembles ordered forests from flat parent-pointer rows.
//
// Rows stay the source of truth: nodes only reference them, and nothing in this
// package touches storage, so the same input always produces the same shape.
package tree

import (
	"sort"
	"strings"
)

// Row is a flat record that knows its identity, its parent and its rank among siblings.
type Row interface {
	NodeID() string
	// ParentKey returns nil for roots.
	ParentKey() *string
	SortOrder() int
	// SortKey breaks ties between siblings sharing the same order, usually a name or title.
	SortKey() string
}

// Node is a row placed in the forest.
type Node[T Row] struct {
	Item     T
	Children []*Node[T]
}

// Build turns rows into a forest. Rows whose parent is not part of the input,
// or whose ancestry loops back onto itself, are promoted to roots; use Orphans
// to report them. Every sibling list, including the roots, is sorted by
// (SortOrder, SortKey, NodeID). Duplicate ids keep their first occurrence.
func Build[T Row](rows []T) []*Node[T] {
	index := make(map[string]*Node[T], len(rows))
	nodes := make([]*Node[T], 0, len(rows))
	for _, row := range rows {
		id := row.NodeID()
		if _, dup := index[id]; dup {
			continue
		}
		node := &Node[T]{Item: row}
		index[id] = node
		nodes = append(nodes, node)
	}

	detached := detachedRows(nodes, index)
	roots := make([]*Node[T], 0)
	for _, node := range nodes {
		if parentID := node.Item.ParentKey(); parentID != nil && !detached[node.Item.NodeID()] {
			index[*parentID].Children = append(index[*parentID].Children, node)
			continue
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	return roots
}

// Orphans returns, in input order, the ids of rows that carry a parent key but
// would be promoted to roots by Build.
func Orphans[T Row](rows []T) []string {
	index := make(map[string]*Node[T], len(rows))
	nodes := make([]*Node[T], 0, len(rows))
	for _, row := range rows {
		if _, dup := index[row.NodeID()]; dup {
			continue
		}
		node := &Node[T]{Item: row}
		index[row.NodeID()] = node
		nodes = append(nodes, node)
	}

	detached := detachedRows(nodes, index)
	var out []string
	for _, node := range nodes {
		if detached[node.Item.NodeID()] {
			out = append(out, node.Item.NodeID())
		}
	}
	return out
}

// detachedRows marks rows with a parent key that cannot be attached: the parent
// is missing, or following parents from the row leads back to the row.
func detachedRows[T Row](nodes []*Node[T], index map[string]*Node[T]) map[string]bool {
	detached := make(map[string]bool)
	for _, node := range nodes {
		id := node.Item.NodeID()
		parentID := node.Item.ParentKey()
		if parentID == nil {
			continue
		}
		if _, ok := index[*parentID]; !ok {
			detached[id] = true
			continue
		}

		visited := map[string]struct{}{id: {}}
		for cursor := parentID; cursor != nil; {
			if _, loop := visited[*cursor]; loop {
				if *cursor == id {
					detached[id] = true
				}
				break
			}
			visited[*cursor] = struct{}{}
			parent, ok := index[*cursor]
			if !ok {
				break
			}
			cursor = parent.Item.ParentKey()
		}
	}
	return detached
}

// Sort orders a flat sibling list in place using the same ranking as Build.
func Sort[T Row](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// Walk visits nodes depth-first, parents before children. Returning false from
// visit skips the node's subtree.
func Walk[T Row](nodes []*Node[T], visit func(node *Node[T], depth int) bool) {
	walk(nodes, 0, visit)
}

func walk[T Row](nodes []*Node[T], depth int, visit func(*Node[T], int) bool) {
	for _, node := range nodes {
		if visit(node, depth) {
			walk(node.Children, depth+1, visit)
		}
	}
}

// Flatten lists the items of a forest in depth-first order.
func Flatten[T Row](nodes []*Node[T]) []T {
	var out []T
	Walk(nodes, func(node *Node[T], _ int) bool {
		out = append(out, node.Item)
		return true
	})
	return out
}

// Descendants returns the ids reachable below rootID through parent links.
// The walk tolerates cycles already present in rows.
func Descendants[T Row](rows []T, rootID string) map[string]struct{} {
	children := make(map[string][]string, len(rows))
	for _, row := range rows {
		if parentID := row.ParentKey(); parentID != nil {
			children[*parentID] = append(children[*parentID], row.NodeID())
		}
	}

	seen := make(map[string]struct{})
	stack := append([]string(nil), children[rootID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok || id == rootID {
			continue
		}
		seen[id] = struct{}{}
		stack = append(stack, children[id]...)
	}
	return seen
}

func sortNodes[T Row](nodes []*Node[T]) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return less(nodes[i].Item, nodes[j].Item)
	})
	for _, node := range nodes {
		sortNodes(node.Children)
	}
}

func less[T Row](a, b T) bool {
	if oa, ob := a.SortOrder(), b.SortOrder(); oa != ob {
		return oa < ob
	}
	if c := strings.Compare(a.SortKey(), b.SortKey()); c != 0 {
		return c < 0
	}
	return a.NodeID() < b.NodeID()
}
