// Package attr owns the attribute list wire contract used on control-plane
// connections between cooperating mail system processes.
//
// An attribute list is a sequence of named, typed attributes followed by an
// empty line:
//
//	attribute-list := (simple-attr | list-attr)* "\n"
//	simple-attr    := name ":" value "\n"
//	list-attr      := name (":" value)* "\n"
//
// Every name and value travels base64 encoded, so the ':' and '\n'
// delimiters never appear inside decoded content.
//
// Ownership boundary:
// - token scanner and numeric converter
// - want-list driven decoder and its strictness policy
// - encoder (the symmetric counterpart the decoder is tested against)
// - schema-less list reader for inspection tooling
//
// Data-path problems never escape as panics: a decode returns the number of
// want-list entries it satisfied and the caller compares that count against
// what it asked for. Panics are reserved for caller mistakes such as an
// empty want-list or a destination of the wrong type.
package attr
