package vdom

import "strings"

// StyleDecl is a single CSS declaration, e.g. ("color", "red").
type StyleDecl struct {
	Property string
	Value    string
}

// JoinStyles renders declarations in order, separated by "; ", for
// package domjs to assign as the single "style" DOM attribute value.
func JoinStyles(decls []StyleDecl) string { return joinStyles(decls) }

// joinStyles is JoinStyles' unexported core, also used internally by the
// differ to compare two Style values for equality.
func joinStyles(decls []StyleDecl) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
	}
	return b.String()
}
