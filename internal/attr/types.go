package attr

import (
	"fmt"
	"strings"
)

// DefaultLineLimit matches the mail system's default line_length_limit.
const DefaultLineLimit = 2048

// Type identifies the shape of an attribute value.
type Type int

const (
	TypeNum Type = iota + 1
	TypeStr
	TypeNumArray
	TypeStrArray
)

func (t Type) String() string {
	switch t {
	case TypeNum:
		return "num"
	case TypeStr:
		return "str"
	case TypeNumArray:
		return "num_array"
	case TypeStrArray:
		return "str_array"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType is the inverse of Type.String.
func ParseType(raw string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "num", "number":
		return TypeNum, true
	case "str", "string":
		return TypeStr, true
	case "num_array", "number_array":
		return TypeNumArray, true
	case "str_array", "string_array":
		return TypeStrArray, true
	default:
		return 0, false
	}
}

// Want is one want-list entry: the attribute to look for and where to put
// its value. Dest must be *uint64, *string, *[]uint64 or *[]string
// according to Type.
type Want struct {
	Type Type
	Name string
	Dest any
}

func WantNum(name string, dest *uint64) Want {
	return Want{Type: TypeNum, Name: name, Dest: dest}
}

func WantStr(name string, dest *string) Want {
	return Want{Type: TypeStr, Name: name, Dest: dest}
}

func WantNumArray(name string, dest *[]uint64) Want {
	return Want{Type: TypeNumArray, Name: name, Dest: dest}
}

func WantStrArray(name string, dest *[]string) Want {
	return Want{Type: TypeStrArray, Name: name, Dest: dest}
}

func (w Want) String() string {
	return w.Type.String() + " " + w.Name
}

// mustValidate panics on a want-list entry that no input could satisfy.
// These are integration bugs, not peer data problems.
func (w Want) mustValidate() {
	ok := false
	switch w.Type {
	case TypeNum:
		d, isType := w.Dest.(*uint64)
		ok = isType && d != nil
	case TypeStr:
		d, isType := w.Dest.(*string)
		ok = isType && d != nil
	case TypeNumArray:
		d, isType := w.Dest.(*[]uint64)
		ok = isType && d != nil
	case TypeStrArray:
		d, isType := w.Dest.(*[]string)
		ok = isType && d != nil
	default:
		panic(fmt.Sprintf("attr: unknown type code %d for attribute %q", int(w.Type), w.Name))
	}
	if !ok {
		panic(fmt.Sprintf("attr: destination %T does not hold %s for attribute %q", w.Dest, w.Type, w.Name))
	}
	if w.Name == "" {
		panic("attr: empty attribute name in want-list")
	}
}

// Policy holds the two strictness switches of a decode call. The zero
// value skips unrequested attributes and stays quiet about missing ones.
type Policy struct {
	// WarnOnMissing logs when the list ends before every wanted attribute
	// was found. It never changes the result.
	WarnOnMissing bool
	// AbortOnExtra stops decoding at the first attribute that was not
	// requested at that position instead of skipping it.
	AbortOnExtra bool
}

// Outcome is the result of a decode call. Conversions is the number of
// want-list entries that were satisfied; callers detect every kind of
// failure by comparing it with the length of their want-list. Err explains
// why decoding stopped early and is nil when the list terminator was seen.
type Outcome struct {
	Conversions int
	Err         error
}

// Complete reports whether all expected attributes were recovered.
func (o Outcome) Complete(expected int) bool {
	return o.Conversions == expected
}

// Value is an attribute value: Num, Str, NumArray or StrArray.
type Value interface {
	Type() Type
	value()
}

type (
	Num      uint64
	Str      string
	NumArray []uint64
	StrArray []string
)

func (Num) Type() Type      { return TypeNum }
func (Str) Type() Type      { return TypeStr }
func (NumArray) Type() Type { return TypeNumArray }
func (StrArray) Type() Type { return TypeStrArray }

func (Num) value()      {}
func (Str) value()      {}
func (NumArray) value() {}
func (StrArray) value() {}

// Attribute is one named value on the encode side.
type Attribute struct {
	Name  string
	Value Value
}

// Field is an attribute read without a want-list. Values holds the decoded
// tokens. Array is false only for the single value name:value form; a one
// element array is indistinguishable from a scalar on the wire.
type Field struct {
	Name   string
	Values []string
	Array  bool
}
