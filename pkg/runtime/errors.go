package runtime

import "errors"

// Sentinel errors for the error kinds of §7. Program returns a Mount
// error wrapped, and logs any error Apply returns as a warning (see
// applyPatches in program.go).
var (
	// ErrPathNotFound: a patch's TreePath did not resolve against the
	// live DOM. Non-fatal; the offending patch is skipped and logged.
	ErrPathNotFound = errors.New("runtime: patch path not found")

	// ErrTagMismatch: the resolved node's tag does not match the tag the
	// patch was built against. Fatal to the whole batch: continuing
	// would corrupt the listener registry.
	ErrTagMismatch = errors.New("runtime: resolved node tag mismatch")

	// ErrInvalidNodeVariant: a node variant was used somewhere
	// structurally disallowed (SafeHtml as a root, DocType outside
	// server-side rendering). Fatal.
	ErrInvalidNodeVariant = errors.New("runtime: invalid node variant")

	// ErrAttributeValueCoercion: a scalar failed numeric coercion.
	// Non-fatal; the attribute is set in its string form instead.
	// Package domjs handles a failed coercion silently and never
	// returns this error.
	ErrAttributeValueCoercion = errors.New("runtime: attribute value coercion failed")
)
