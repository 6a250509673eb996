package attrdoc

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/testutil/testlog"
)

const sampleYAML = `
attributes:
  - name: size
    type: num
    num: 42
  - name: sender
    type: str
    str: a@b
  - name: codes
    type: num_array
    nums: [1, 2, 3]
  - name: rcpt
    type: str_array
`

func TestParseYAMLToAttributes(t *testing.T) {
	testlog.Start(t)
	doc, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	attrs, err := doc.Attributes()
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	want := []attr.Attribute{
		{Name: "size", Value: attr.Num(42)},
		{Name: "sender", Value: attr.Str("a@b")},
		{Name: "codes", Value: attr.NumArray{1, 2, 3}},
		{Name: "rcpt", Value: attr.StrArray{}},
	}
	if !reflect.DeepEqual(attrs, want) {
		t.Fatalf("attributes mismatch:\n got %#v\nwant %#v", attrs, want)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)
	if _, err := ParseYAML([]byte("attributes:\n  - name: a\n    type: num\n    value: 1\n")); err == nil {
		t.Fatalf("expected yaml unknown key error")
	}
	if _, err := ParseJSON([]byte(`{"attributes":[{"name":"a","kind":"num"}]}`)); err == nil {
		t.Fatalf("expected json unknown key error")
	}
}

func TestAttributesValidation(t *testing.T) {
	testlog.Start(t)
	one := uint64(1)
	cases := map[string]Document{
		"empty name":   {Attributes: []Entry{{Type: "num", Num: &one}}},
		"unknown type": {Attributes: []Entry{{Name: "a", Type: "map"}}},
		"missing num":  {Attributes: []Entry{{Name: "a", Type: "num"}}},
		"missing str":  {Attributes: []Entry{{Name: "a", Type: "str"}}},
		"duplicate":    {Attributes: []Entry{{Name: "a", Type: "num", Num: &one}, {Name: "a", Type: "num", Num: &one}}},
	}
	for name, doc := range cases {
		_, err := doc.Attributes()
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestWantsCollectTypedValues(t *testing.T) {
	testlog.Start(t)
	doc, err := ParseJSON([]byte(`{"attributes":[
		{"name":"size","type":"num","num":42},
		{"name":"sender","type":"str","str":"a@b"},
		{"name":"codes","type":"num_array","nums":[1,2,3]},
		{"name":"rcpt","type":"str_array","strs":["x","y"]}
	]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	attrs, err := doc.Attributes()
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	var buf bytes.Buffer
	if err := attr.Encode(&buf, attrs...); err != nil {
		t.Fatalf("encode: %v", err)
	}

	wants, collect, err := doc.Wants()
	if err != nil {
		t.Fatalf("wants: %v", err)
	}
	out := attr.Decode(attr.NewReader(&buf, "doc"), attr.Policy{AbortOnExtra: true}, wants...)
	if !out.Complete(len(wants)) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	got := collect()
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("collected document mismatch:\n got %#v\nwant %#v", got, doc)
	}
}

func TestWantsRejectsEmptyDocument(t *testing.T) {
	testlog.Start(t)
	if _, _, err := (Document{}).Wants(); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestFromFieldsRendersYAML(t *testing.T) {
	testlog.Start(t)
	fields := []attr.Field{
		{Name: "size", Values: []string{"42"}},
		{Name: "rcpt", Values: []string{}, Array: true},
	}
	doc := FromFields(fields)
	out, err := doc.YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	text := string(out)
	for _, want := range []string{"name: size", "type: str", "str: \"42\"", "name: rcpt", "type: str_array"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in yaml:\n%s", want, text)
		}
	}
	back, err := ParseYAML(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(back.Attributes) != 2 || *back.Attributes[0].Str != "42" {
		t.Fatalf("unexpected reparse: %+v", back)
	}
}
