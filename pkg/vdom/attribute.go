package vdom

// AttrKind discriminates the payload carried by an AttributeValue.
type AttrKind uint8

const (
	AttrSimple AttrKind = iota
	AttrStyle
	AttrEventListener
	AttrComponentEventListener
	AttrEmpty
)

// Special attribute names recognised by the differ and applier (§6).
const (
	NameKey        = "key"
	NameSkip       = "skip"
	NameReplace    = "replace"
	NameInnerHTML  = "inner_html"
	NameValue      = "value"
	NameOpen       = "open"
	NameChecked    = "checked"
	NameDisabled   = "disabled"
	NameVdomIDAttr = "data-vdom-id"
)

// valueBearingTags are elements whose "value" attribute must also be
// mirrored onto the DOM "value" property (§3).
var valueBearingTags = map[string]bool{
	"input": true, "textarea": true, "select": true, "option": true,
	"button": true, "data": true, "output": true, "param": true,
}

// IsValueBearing reports whether tag requires the value-property mirror.
func IsValueBearing(tag string) bool { return valueBearingTags[tag] }

// booleanPropertyAttrs is the set of attributes that are also DOM
// properties and whose false value must both clear the DOM attribute and
// set the property false (§3, §4.5).
var booleanPropertyAttrs = map[string]bool{
	NameOpen: true, NameChecked: true, NameDisabled: true,
}

// IsBooleanProperty reports whether name is open/checked/disabled.
func IsBooleanProperty(name string) bool { return booleanPropertyAttrs[name] }

// ListenerEntry is one accumulated EventListener handler plus its
// stability token. Diff compares listeners by Token, not by closure
// value (closures are never comparable); two listeners with an equal,
// non-zero Token are treated as unchanged even if their underlying Go
// func differs. A zero Token means "always replace" (the conservative
// default).
type ListenerEntry[MSG any] struct {
	Handler Handler[MSG]
	Token   any
}

// CompListenerEntry is ListenerEntry's ComponentEventListener twin.
type CompListenerEntry[MSG any] struct {
	Handler ComponentHandler[MSG]
	Token   any
}

// AttributeValue is the tagged payload of an Attribute (§3). Listeners
// and CompListeners are slices, not a single handler: merging two
// attributes of the same name and kind (§4.1) accumulates every
// handler so all of them fire on the event, rather than the later one
// silently replacing the earlier.
type AttributeValue[MSG any] struct {
	Kind          AttrKind
	Simple        Value
	Styles        []StyleDecl
	Listeners     []ListenerEntry[MSG]
	CompListeners []CompListenerEntry[MSG]
}

// SimpleValue builds a scalar AttributeValue.
func SimpleValue[MSG any](v Value) AttributeValue[MSG] {
	return AttributeValue[MSG]{Kind: AttrSimple, Simple: v}
}

// StyleValue builds a Style AttributeValue from declarations.
func StyleValue[MSG any](decls ...StyleDecl) AttributeValue[MSG] {
	return AttributeValue[MSG]{Kind: AttrStyle, Styles: decls}
}

// ListenerValue builds an EventListener AttributeValue carrying one
// handler. token, when non-nil and comparable, lets Diff decide the
// listener is unchanged across renders (e.g. a stable per-callsite id);
// pass nil to always replace it.
func ListenerValue[MSG any](h Handler[MSG], token any) AttributeValue[MSG] {
	return AttributeValue[MSG]{Kind: AttrEventListener, Listeners: []ListenerEntry[MSG]{{Handler: h, Token: token}}}
}

// ComponentListenerValue builds a ComponentEventListener AttributeValue
// carrying one handler.
func ComponentListenerValue[MSG any](h ComponentHandler[MSG], token any) AttributeValue[MSG] {
	return AttributeValue[MSG]{Kind: AttrComponentEventListener, CompListeners: []CompListenerEntry[MSG]{{Handler: h, Token: token}}}
}

// EmptyValue is the placeholder variant that carries no payload.
// mergeAttrs drops an Empty attribute only when its Name is also empty;
// a named Empty gives way to any other value merged under that name,
// and the builder sets nothing for it.
func EmptyValue[MSG any]() AttributeValue[MSG] { return AttributeValue[MSG]{Kind: AttrEmpty} }

// IsEmpty reports whether this is the Empty variant.
func (v AttributeValue[MSG]) IsEmpty() bool { return v.Kind == AttrEmpty }

// Attribute is one declared attribute on an Element (§3). Multiple
// Attributes of the same Name on one Element are merged in declaration
// order by mergeAttrs (plain/style values concatenate; listeners
// accumulate).
type Attribute[MSG any] struct {
	Namespace string
	Name      string
	Value     AttributeValue[MSG]
}

// Attr builds a plain-value attribute.
func Attr[MSG any](name string, v Value) Attribute[MSG] {
	return Attribute[MSG]{Name: name, Value: SimpleValue[MSG](v)}
}

// NSAttr builds a namespaced plain-value attribute (e.g. xlink:href).
func NSAttr[MSG any](namespace, name string, v Value) Attribute[MSG] {
	return Attribute[MSG]{Namespace: namespace, Name: name, Value: SimpleValue[MSG](v)}
}

// On builds an event-listener attribute named "on"+event.
func On[MSG any](event string, h Handler[MSG], token any) Attribute[MSG] {
	return Attribute[MSG]{Name: "on" + event, Value: ListenerValue(h, token)}
}

// OnComponent builds a component-event-listener attribute named
// "on"+event whose handler emits out-of-band to the composing parent.
func OnComponent[MSG any](event string, h ComponentHandler[MSG], token any) Attribute[MSG] {
	return Attribute[MSG]{Name: "on" + event, Value: ComponentListenerValue(h, token)}
}

// Styles builds a "style" attribute from declarations.
func Styles[MSG any](decls ...StyleDecl) Attribute[MSG] {
	return Attribute[MSG]{Name: "style", Value: StyleValue[MSG](decls...)}
}

// Key marks a child for keyed reconciliation (§3).
func Key[MSG any](key string) Attribute[MSG] {
	return Attr[MSG](NameKey, StringValue(key))
}

// Skip prunes the subtree from diff when true on the new node (§3).
func Skip[MSG any](skip bool) Attribute[MSG] {
	return Attr[MSG](NameSkip, BoolValue(skip))
}

// Replace forces a hard ReplaceNode even if tags match (§3).
func Replace[MSG any](replace bool) Attribute[MSG] {
	return Attr[MSG](NameReplace, BoolValue(replace))
}

// isListener reports whether an AttrKind carries a callback.
func (k AttrKind) isListener() bool {
	return k == AttrEventListener || k == AttrComponentEventListener
}

// mergeAttributeValue merges b into a per the declaration-order rule in
// §4.1: plain values concatenate with a space, styles concatenate with
// "; ", listeners accumulate (both fire), anything else (kind mismatch)
// keeps the later declaration, matching the source's either-or
// constraint on plain-vs-style collisions (open question, §9).
func mergeAttributeValue[MSG any](a, b AttributeValue[MSG]) AttributeValue[MSG] {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	switch {
	case a.Kind == AttrSimple && b.Kind == AttrSimple:
		return AttributeValue[MSG]{Kind: AttrSimple, Simple: StringValue(a.Simple.String() + " " + b.Simple.String())}
	case a.Kind == AttrStyle && b.Kind == AttrStyle:
		return AttributeValue[MSG]{Kind: AttrStyle, Styles: append(append([]StyleDecl{}, a.Styles...), b.Styles...)}
	case a.Kind == AttrEventListener && b.Kind == AttrEventListener:
		return AttributeValue[MSG]{Kind: AttrEventListener, Listeners: append(append([]ListenerEntry[MSG]{}, a.Listeners...), b.Listeners...)}
	case a.Kind == AttrComponentEventListener && b.Kind == AttrComponentEventListener:
		return AttributeValue[MSG]{Kind: AttrComponentEventListener, CompListeners: append(append([]CompListenerEntry[MSG]{}, a.CompListeners...), b.CompListeners...)}
	default:
		return b
	}
}

// listenerEntriesEqual compares two accumulated EventListener lists by
// Token, position for position; a differing count or any nil/mismatched
// Token means "changed" (§4.3 attribute diff).
func listenerEntriesEqual[MSG any](a, b []ListenerEntry[MSG]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Token == nil || b[i].Token == nil || a[i].Token != b[i].Token {
			return false
		}
	}
	return true
}

// compListenerEntriesEqual is listenerEntriesEqual's ComponentEventListener twin.
func compListenerEntriesEqual[MSG any](a, b []CompListenerEntry[MSG]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Token == nil || b[i].Token == nil || a[i].Token != b[i].Token {
			return false
		}
	}
	return true
}

// mergeAttrs groups attrs by (Namespace, Name) and merges same-named
// entries in declaration order, preserving first-seen order of names.
func mergeAttrs[MSG any](attrs []Attribute[MSG]) []Attribute[MSG] {
	type key struct{ ns, name string }
	order := make([]key, 0, len(attrs))
	merged := make(map[key]AttributeValue[MSG], len(attrs))
	for _, a := range attrs {
		if a.Value.IsEmpty() && a.Name == "" {
			continue
		}
		k := key{a.Namespace, a.Name}
		if existing, ok := merged[k]; ok {
			merged[k] = mergeAttributeValue(existing, a.Value)
		} else {
			merged[k] = a.Value
			order = append(order, k)
		}
	}
	out := make([]Attribute[MSG], 0, len(order))
	for _, k := range order {
		out = append(out, Attribute[MSG]{Namespace: k.ns, Name: k.name, Value: merged[k]})
	}
	return out
}

// Get returns every value fragment declared for name across attrs, in
// declaration order, the way querying an element for an attribute
// returns all matching fragments (§4.1). It does not merge them.
func Get[MSG any](attrs []Attribute[MSG], name string) []AttributeValue[MSG] {
	var out []AttributeValue[MSG]
	for _, a := range attrs {
		if a.Name == name {
			out = append(out, a.Value)
		}
	}
	return out
}
