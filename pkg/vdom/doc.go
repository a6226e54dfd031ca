// Package vdom is the immutable virtual-DOM data model and differ.
//
// Application code builds a Node[MSG] tree on every render. The tree is
// pure data: it carries no references to the real DOM and is safe to
// build, compare, and discard on any goroutine. Diff compares two trees
// produced for the same mount point and returns the ordered list of
// Patch[MSG] values needed to bring the previously-applied real DOM in
// line with the new tree; applying that list is the job of package domjs.
//
// # Element vs leaf
//
// A Node is either an Element (a tag, a namespace, attributes and
// children) or a Leaf (Text, Comment, SafeHtml, DocType, Fragment,
// NodeList, a component, or a templated view). Kind and LeafKind
// together are the discriminator; never type-switch on pointer identity.
//
// # Keys and identity
//
// A child's Key attribute opts its parent's children into keyed
// reconciliation (see Diff). Diff falls back to positional reconciliation
// when no sibling in either the old or the new list carries a key.
//
// # Tree paths
//
// Patches never carry node pointers from the old tree; they carry a
// TreePath, a sequence of child indices from the root. The applier in
// package domjs resolves every path exactly once, before any patch in a
// batch is applied, so that later patches don't see a DOM already
// mutated by earlier ones in the same batch.
package vdom
