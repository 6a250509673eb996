// Package attrdoc maps attribute lists to and from YAML/JSON documents so
// operators can author, replay and inspect control-plane exchanges.
package attrdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/attrwire/internal/attr"
	"gopkg.in/yaml.v3"
)

// Entry is one attribute. Type selects which value field is used.
type Entry struct {
	Name string   `yaml:"name" json:"name"`
	Type string   `yaml:"type" json:"type"`
	Num  *uint64  `yaml:"num,omitempty" json:"num,omitempty"`
	Str  *string  `yaml:"str,omitempty" json:"str,omitempty"`
	Nums []uint64 `yaml:"nums,omitempty" json:"nums,omitempty"`
	Strs []string `yaml:"strs,omitempty" json:"strs,omitempty"`
}

type Document struct {
	Attributes []Entry `yaml:"attributes" json:"attributes"`
}

type ValidationError struct {
	Index  int
	Name   string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("attrdoc: attribute[%d]: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("attrdoc: attribute[%d] %q: %s", e.Index, e.Name, e.Reason)
}

func ParseYAML(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("attrdoc: parse yaml: %w", err)
	}
	return doc, nil
}

func ParseJSON(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("attrdoc: parse json: %w", err)
	}
	return doc, nil
}

func (d Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// Attributes validates the document and converts it for encoding.
func (d Document) Attributes() ([]attr.Attribute, error) {
	out := make([]attr.Attribute, 0, len(d.Attributes))
	seen := make(map[string]struct{}, len(d.Attributes))
	for i, e := range d.Attributes {
		t, err := e.validate(i, seen)
		if err != nil {
			return nil, err
		}
		var v attr.Value
		switch t {
		case attr.TypeNum:
			if e.Num == nil {
				return nil, ValidationError{Index: i, Name: e.Name, Reason: "num value required"}
			}
			v = attr.Num(*e.Num)
		case attr.TypeStr:
			if e.Str == nil {
				return nil, ValidationError{Index: i, Name: e.Name, Reason: "str value required"}
			}
			v = attr.Str(*e.Str)
		case attr.TypeNumArray:
			v = attr.NumArray(append([]uint64{}, e.Nums...))
		case attr.TypeStrArray:
			v = attr.StrArray(append([]string{}, e.Strs...))
		}
		out = append(out, attr.Attribute{Name: e.Name, Value: v})
	}
	return out, nil
}

func (e Entry) validate(i int, seen map[string]struct{}) (attr.Type, error) {
	if strings.TrimSpace(e.Name) == "" {
		return 0, ValidationError{Index: i, Reason: "name is required"}
	}
	if _, dup := seen[e.Name]; dup {
		return 0, ValidationError{Index: i, Name: e.Name, Reason: "duplicate name"}
	}
	seen[e.Name] = struct{}{}
	t, ok := attr.ParseType(e.Type)
	if !ok {
		return 0, ValidationError{Index: i, Name: e.Name, Reason: fmt.Sprintf("unknown type %q", e.Type)}
	}
	return t, nil
}

// Wants builds a want-list shaped like the document. collect renders the
// values recovered so far back into a document of the same shape; entries
// past the returned conversion count keep their zero values.
func (d Document) Wants() (wants []attr.Want, collect func() Document, err error) {
	if len(d.Attributes) == 0 {
		return nil, nil, ValidationError{Index: 0, Reason: "document has no attributes"}
	}
	seen := make(map[string]struct{}, len(d.Attributes))
	entries := make([]Entry, len(d.Attributes))
	wants = make([]attr.Want, len(d.Attributes))
	for i, e := range d.Attributes {
		t, err := e.validate(i, seen)
		if err != nil {
			return nil, nil, err
		}
		entries[i] = Entry{Name: e.Name, Type: t.String()}
		switch t {
		case attr.TypeNum:
			entries[i].Num = new(uint64)
			wants[i] = attr.WantNum(e.Name, entries[i].Num)
		case attr.TypeStr:
			entries[i].Str = new(string)
			wants[i] = attr.WantStr(e.Name, entries[i].Str)
		case attr.TypeNumArray:
			wants[i] = attr.WantNumArray(e.Name, &entries[i].Nums)
		case attr.TypeStrArray:
			wants[i] = attr.WantStrArray(e.Name, &entries[i].Strs)
		}
	}
	collect = func() Document {
		return Document{Attributes: append([]Entry(nil), entries...)}
	}
	return wants, collect, nil
}

// FromFields renders a schema-less read. Single values come back as str
// entries because the wire does not carry the numeric/string distinction.
func FromFields(fields []attr.Field) Document {
	doc := Document{Attributes: make([]Entry, 0, len(fields))}
	for _, f := range fields {
		if !f.Array {
			v := f.Values[0]
			doc.Attributes = append(doc.Attributes, Entry{Name: f.Name, Type: attr.TypeStr.String(), Str: &v})
			continue
		}
		doc.Attributes = append(doc.Attributes, Entry{
			Name: f.Name,
			Type: attr.TypeStrArray.String(),
			Strs: append([]string{}, f.Values...),
		})
	}
	return doc
}
