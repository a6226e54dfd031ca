package vdom

import (
	"strconv"
	"strings"
)

// TreePath is a sequence of child indices from the tree root to a node
// (§4.2). It is the only addressing scheme patches use; the applier
// resolves a TreePath by walking from the mounted root.
type TreePath []int

// RootPath returns the empty path, addressing the tree root.
func RootPath() TreePath { return nil }

// Traverse returns the path to the i-th child of the node at p.
func (p TreePath) Traverse(i int) TreePath {
	next := make(TreePath, len(p)+1)
	copy(next, p)
	next[len(p)] = i
	return next
}

// Backtrack returns the path to the parent of the node at p. Calling it
// on the root path returns the root path unchanged.
func (p TreePath) Backtrack() TreePath {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// IsEmpty reports whether p addresses the tree root.
func (p TreePath) IsEmpty() bool { return len(p) == 0 }

// RemoveFirst drops the leading index, re-rooting the path one level
// down; used when an applier recurses into an already-resolved subtree.
func (p TreePath) RemoveFirst() TreePath {
	if len(p) == 0 {
		return p
	}
	return p[1:]
}

// Last returns the final index and whether p is non-empty.
func (p TreePath) Last() (int, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1], true
}

// Clone returns an independent copy, since TreePath is built by
// sharing underlying arrays across Traverse calls.
func (p TreePath) Clone() TreePath {
	out := make(TreePath, len(p))
	copy(out, p)
	return out
}

// String renders a path as "/0/2/1" (root is "/").
func (p TreePath) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Equal compares two paths index-for-index.
func (p TreePath) Equal(o TreePath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
