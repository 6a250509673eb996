package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/testutil/testlog"
)

const docYAML = `attributes:
  - name: size
    type: num
    num: 42
  - name: sender
    type: str
    str: a@b
  - name: codes
    type: num_array
    nums: [1, 2, 3]
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestEncodeThenTypedDecode(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	if err := run([]string{"encode"}, strings.NewReader(docYAML), &wire); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasSuffix(wire.String(), "\n\n") {
		t.Fatalf("missing list terminator: %q", wire.String())
	}

	wantPath := writeFile(t, "want.yaml", docYAML)
	var out bytes.Buffer
	if err := run([]string{"decode", "--want", wantPath, "--abort-on-extra"}, &wire, &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	for _, want := range []string{"num: 42", "str: a@b", "- 1", "- 3"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestDecodeReportsIncompleteList(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	if err := attr.Encode(&wire,
		attr.Attribute{Name: "foo", Value: attr.Str("x")},
		attr.Attribute{Name: "size", Value: attr.Num(42)},
	); err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantPath := writeFile(t, "want.yaml", docYAML)

	var out bytes.Buffer
	err := run([]string{"decode", "-w", wantPath, "--abort-on-extra"}, &wire, &out)
	if !errors.Is(err, errIncomplete) || !errors.Is(err, attr.ErrExtraAttribute) {
		t.Fatalf("expected incomplete extra-attribute error, got %v", err)
	}
}

func TestSchemalessDecode(t *testing.T) {
	testlog.Start(t)
	var wire bytes.Buffer
	if err := run([]string{"encode", "-f", writeFile(t, "doc.yaml", docYAML)}, nil, &wire); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out bytes.Buffer
	if err := run([]string{"decode"}, &wire, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.String(), "name: codes") || !strings.Contains(out.String(), "type: str_array") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestConfigTemplateAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "attrwire.toml")
	var out bytes.Buffer
	if err := run([]string{"config", "-o", path}, nil, &out); err != nil {
		t.Fatalf("config: %v", err)
	}
	out.Reset()
	if err := run([]string{"config", "--validate", path}, nil, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "validated") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if err := run([]string{"encode", "--config", path}, strings.NewReader(docYAML), &bytes.Buffer{}); err != nil {
		t.Fatalf("encode with config: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	testlog.Start(t)
	if err := run([]string{"frobnicate"}, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
	if err := run(nil, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for missing command")
	}
}
