package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/attrdoc"
	"github.com/danmuck/attrwire/internal/config"
	"github.com/danmuck/attrwire/internal/inspect"
	"github.com/danmuck/attrwire/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const usage = `usage: attrctl <command> [flags]

commands:
  encode   encode a YAML attribute document to wire format on stdout
  decode   decode one attribute list from stdin and print it as YAML
  serve    run the HTTP inspection server
  config   write a config template
`

// errIncomplete marks a decode that recovered fewer attributes than wanted.
var errIncomplete = errors.New("incomplete attribute list")

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "attrctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		return runEncode(rest, stdin, stdout)
	case "decode":
		return runDecode(rest, stdin, stdout)
	case "serve":
		return runServe(rest)
	case "config":
		return runConfig(rest, stdout)
	case "help", "-h", "--help":
		_, err := io.WriteString(stdout, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newFlagSet(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.StringP("config", "c", "", "TOML config path (defaults when empty)")
	return fs, path
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			zerolog.SetGlobalLevel(lvl)
		}
	}
	return cfg, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("encode")
	file := fs.StringP("file", "f", "-", "YAML attribute document ('-' for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	data, err := readInput(*file, stdin)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := attrdoc.ParseYAML(data)
	if err != nil {
		return err
	}
	attrs, err := doc.Attributes()
	if err != nil {
		return err
	}
	return attr.NewEncoder(cfg.Codec(), log.Logger).Encode(stdout, attrs...)
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("decode")
	wantPath := fs.StringP("want", "w", "", "YAML document whose attributes form the want-list")
	name := fs.String("name", "stdin", "stream name used in diagnostics")
	warnMissing := fs.Bool("warn-on-missing", false, "log attributes missing from the list")
	abortExtra := fs.Bool("abort-on-extra", false, "stop at the first unrequested attribute")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if fs.Changed("warn-on-missing") {
		cfg.Policy.WarnOnMissing = *warnMissing
	}
	if fs.Changed("abort-on-extra") {
		cfg.Policy.AbortOnExtra = *abortExtra
	}

	dec := attr.NewDecoder(cfg.Codec(), log.Logger)
	r := attr.NewReader(stdin, *name)

	if *wantPath == "" {
		fields, readErr := dec.ReadList(r)
		if err := writeYAML(stdout, attrdoc.FromFields(fields)); err != nil {
			return err
		}
		return readErr
	}

	data, err := os.ReadFile(*wantPath)
	if err != nil {
		return fmt.Errorf("read want-list: %w", err)
	}
	want, err := attrdoc.ParseYAML(data)
	if err != nil {
		return err
	}
	wants, collect, err := want.Wants()
	if err != nil {
		return err
	}
	out := dec.Decode(r, cfg.Policy, wants...)
	got := collect()
	got.Attributes = got.Attributes[:out.Conversions]
	if err := writeYAML(stdout, got); err != nil {
		return err
	}
	if !out.Complete(len(wants)) {
		if out.Err != nil {
			return fmt.Errorf("%w: %d of %d: %w", errIncomplete, out.Conversions, len(wants), out.Err)
		}
		return fmt.Errorf("%w: %d of %d", errIncomplete, out.Conversions, len(wants))
	}
	return nil
}

func writeYAML(w io.Writer, doc attrdoc.Document) error {
	out, err := doc.YAML()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(out))
	return err
}

func runServe(args []string) error {
	fs, cfgPath := newFlagSet("serve")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	return inspect.New(cfg, log.Logger).Run()
}

func runConfig(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	output := fs.StringP("output", "o", "", "template path ('' prints to stdout)")
	force := fs.Bool("force", false, "overwrite an existing file")
	validate := fs.String("validate", "", "validate an existing config file instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *validate != "" {
		if _, err := config.Load(*validate); err != nil {
			return err
		}
		_, err := fmt.Fprintf(stdout, "validated %s\n", *validate)
		return err
	}
	if *output == "" {
		_, err := io.WriteString(stdout, config.Template)
		return err
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout, "wrote config template to %s\n", *output)
	return err
}
