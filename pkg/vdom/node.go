package vdom

// Kind discriminates Node's two shapes: a tagged Element, or a Leaf of
// one of LeafKind's variants (§3).
type Kind uint8

const (
	KindElement Kind = iota
	KindLeaf
)

// LeafKind enumerates the Leaf variants.
type LeafKind uint8

const (
	LeafText LeafKind = iota
	LeafComment
	LeafSafeHTML
	LeafDocType
	LeafFragment
	LeafNodeList
	LeafStatelessComponent
	LeafStatefulComponent
	LeafTemplatedView
)

// String names a LeafKind for diagnostics.
func (k LeafKind) String() string {
	switch k {
	case LeafText:
		return "Text"
	case LeafComment:
		return "Comment"
	case LeafSafeHTML:
		return "SafeHtml"
	case LeafDocType:
		return "DocType"
	case LeafFragment:
		return "Fragment"
	case LeafNodeList:
		return "NodeList"
	case LeafStatelessComponent:
		return "StatelessComponent"
	case LeafStatefulComponent:
		return "StatefulComponent"
	case LeafTemplatedView:
		return "TemplatedView"
	default:
		return "Unknown"
	}
}

// Component is anything a StatelessComponent/StatefulComponent leaf can
// carry as its Model; Render produces the subtree to diff against.
// Stateful components additionally satisfy StatefulModel below.
type Component[MSG any] interface {
	Render() *Node[MSG]
}

// StatefulModel is a Component that also owns mutable state the
// differ must *not* compare structurally: two StatefulComponent nodes
// are equal for diff purposes iff they wrap the same Identity.
type StatefulModel[MSG any] interface {
	Component[MSG]
	Identity() any
}

// Node is the virtual DOM tree node: an Element, or a Leaf of one of
// LeafKind's variants (§3). Nodes are built fresh on every render and
// are never mutated after construction.
type Node[MSG any] struct {
	Kind Kind

	// Element fields.
	Namespace   string
	Tag         string
	Attrs       []Attribute[MSG]
	Children    []*Node[MSG]
	SelfClosing bool

	// Leaf fields.
	Leaf LeafKind
	Text string // Text, Comment, SafeHtml, DocType
	List []*Node[MSG]
	Comp Component[MSG] // StatelessComponent, StatefulComponent
	View *Node[MSG]     // TemplatedView: the pre-rendered value

	// key caches the "key" attribute (if any) so hasKeys/sameKey in the
	// differ don't have to scan Attrs on every comparison.
	key    string
	hasKey bool
}

// Elem builds an Element node. attrs are merged by mergeAttrs (same-name
// collisions concatenate for plain/style values, accumulate for
// listeners); children are kept in declared order.
func Elem[MSG any](tag string, attrs []Attribute[MSG], children ...*Node[MSG]) *Node[MSG] {
	n := &Node[MSG]{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    mergeAttrs(attrs),
		Children: children,
	}
	n.cacheKey()
	return n
}

// ElemNS is Elem with an explicit namespace (e.g. for SVG/MathML).
func ElemNS[MSG any](namespace, tag string, attrs []Attribute[MSG], children ...*Node[MSG]) *Node[MSG] {
	n := Elem(tag, attrs, children...)
	n.Namespace = namespace
	return n
}

// SelfClosingElem builds a void Element (e.g. <br/>, <input/>).
func SelfClosingElem[MSG any](tag string, attrs []Attribute[MSG]) *Node[MSG] {
	n := Elem[MSG](tag, attrs)
	n.SelfClosing = true
	return n
}

func (n *Node[MSG]) cacheKey() {
	for _, v := range Get(n.Attrs, NameKey) {
		if v.Kind == AttrSimple {
			n.key = v.Simple.String()
			n.hasKey = true
			return
		}
	}
}

// Key returns the node's reconciliation key and whether one was set.
func (n *Node[MSG]) Key() (string, bool) {
	if n == nil {
		return "", false
	}
	return n.key, n.hasKey
}

// boolAttr reads a boolean-valued attribute's effective truth, false if
// absent.
func (n *Node[MSG]) boolAttr(name string) bool {
	for _, v := range Get(n.Attrs, name) {
		if v.Kind == AttrSimple {
			return v.Simple.Bool()
		}
	}
	return false
}

// ShouldSkip reports whether this (new) node carries skip=true (§3, §4.3).
func (n *Node[MSG]) ShouldSkip() bool { return n != nil && n.Kind == KindElement && n.boolAttr(NameSkip) }

// ForceReplace reports whether this (new) node carries replace=true.
func (n *Node[MSG]) ForceReplace() bool {
	return n != nil && n.Kind == KindElement && n.boolAttr(NameReplace)
}

// Text creates a text leaf.
func Text[MSG any](content string) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafText, Text: content}
}

// Comment creates a comment leaf.
func Comment[MSG any](content string) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafComment, Text: content}
}

// SafeHTML creates a leaf whose Text is raw markup injected verbatim:
// package domjs sets it as the innerHTML of a display:contents wrapper
// element, so it occupies one child slot. It belongs only as the child
// of an Element; package domjs does not reject it as a tree root and
// builds the same wrapper there.
func SafeHTML[MSG any](html string) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafSafeHTML, Text: html}
}

// DocType creates a doctype leaf. Only meaningful from server-side
// rendering (out of scope here); mounting one at runtime makes package
// domjs build a placeholder comment node in its place, and no
// InvalidNodeVariant error is reported.
func DocType[MSG any](decl string) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafDocType, Text: decl}
}

// Fragment groups children without a wrapping element.
func Fragment[MSG any](children ...*Node[MSG]) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafFragment, List: children}
}

// NodeList is like Fragment but used where the distinction matters to
// the caller (e.g. a component's rendered output vs. explicit grouping);
// it diffs identically to Fragment.
func NodeList[MSG any](children ...*Node[MSG]) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafNodeList, List: children}
}

// StatelessComponent wraps a Component whose Render output is diffed
// directly against the previous render's output, with no identity to
// preserve across renders.
func StatelessComponent[MSG any](c Component[MSG]) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafStatelessComponent, Comp: c}
}

// StatefulComponent wraps a StatefulModel. Diff treats two
// StatefulComponent nodes with equal Identity() as the same instance
// (no teardown/recreate); otherwise it replaces.
func StatefulComponent[MSG any](c StatefulModel[MSG]) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafStatefulComponent, Comp: c}
}

// TemplatedView wraps an already-rendered subtree produced by a
// higher-level templating layer (out of scope here); Diff treats it as
// transparent and recurses into View.
func TemplatedView[MSG any](view *Node[MSG]) *Node[MSG] {
	return &Node[MSG]{Kind: KindLeaf, Leaf: LeafTemplatedView, View: view}
}

// If returns node when condition holds, nil otherwise; nil children are
// dropped by Elem/Fragment-building call sites (callers should filter).
func If[MSG any](condition bool, node *Node[MSG]) *Node[MSG] {
	if condition {
		return node
	}
	return nil
}

// Filter drops nil entries, the idiom for conditionally-included
// children built with If.
func Filter[MSG any](nodes []*Node[MSG]) []*Node[MSG] {
	out := make([]*Node[MSG], 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
