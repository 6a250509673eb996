package attr

import (
	"errors"
	"fmt"

	"github.com/danmuck/attrwire/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config carries codec limits shared by the Decoder and Encoder.
type Config struct {
	// LineLimit is the plain text line limit; tokens may carry up to
	// LineLimit*5/4 base64 characters.
	LineLimit int
}

func DefaultConfig() Config {
	return Config{LineLimit: DefaultLineLimit}
}

// Decoder recovers want-lists from attribute streams. A Decoder keeps no
// per-call state and may be shared between goroutines.
type Decoder struct {
	limit int
	log   zerolog.Logger
}

func NewDecoder(cfg Config, logger zerolog.Logger) *Decoder {
	return &Decoder{
		limit: encodedLimit(cfg.LineLimit),
		log:   logger.With().Str("component", "attr_decode").Logger(),
	}
}

// Decode scans r with the package defaults and the global logger.
func Decode(r Reader, policy Policy, wants ...Want) Outcome {
	return NewDecoder(DefaultConfig(), log.Logger).Decode(r, policy, wants...)
}

// Decode recovers wants, in order, from the next attribute list on r.
// Attributes that were not requested at the current position are skipped
// or, under Policy.AbortOnExtra, end the call. The returned Conversions
// counts the satisfied entries; anything short of len(wants) means the
// exchange failed.
//
// Decode panics on an empty want-list, on duplicate names, and on entries
// whose destination does not match their type.
func (d *Decoder) Decode(r Reader, policy Policy, wants ...Want) (out Outcome) {
	if r == nil {
		panic("attr: decode from nil reader")
	}
	if len(wants) == 0 {
		panic("attr: empty want-list")
	}
	seen := make(map[string]struct{}, len(wants))
	for _, w := range wants {
		w.mustValidate()
		if _, dup := seen[w.Name]; dup {
			panic(fmt.Sprintf("attr: duplicate attribute %q in want-list", w.Name))
		}
		seen[w.Name] = struct{}{}
	}
	defer func() {
		observability.RecordDecode(out.Complete(len(wants)), out.Conversions, ViolationKind(out.Err))
	}()

	sc := newScanner(r, d.limit)
	for i := 0; i <= len(wants); i++ {
		var want *Want
		if i < len(wants) {
			want = &wants[i]
		}
		nameTerm, found, err := d.seek(sc, policy, want)
		if err != nil {
			out.Err = err
			return out
		}
		if !found {
			return out
		}
		if err := d.convert(sc, want, nameTerm); err != nil {
			d.logFailure(r, want.Name, err)
			out.Err = err
			return out
		}
		out.Conversions++
	}
	return out
}

// seek advances to the attribute named by want, or to the list terminator
// when want is nil. found is false when the list ended first.
func (d *Decoder) seek(sc *scanner, policy Policy, want *Want) (Terminator, bool, error) {
	wanted := "attribute list terminator"
	if want != nil {
		wanted = want.Name
	}
	for {
		name, term, err := sc.token("attribute name")
		if err != nil {
			d.logFailure(sc.r, wanted, err)
			return 0, false, err
		}
		if name == "" && term == TermEnd {
			if want != nil && policy.WarnOnMissing {
				d.log.Warn().
					Str("stream", sc.r.Name()).
					Str("attribute", want.Name).
					Msg("missing attribute in input")
			}
			return 0, false, nil
		}
		d.log.Trace().
			Str("stream", sc.r.Name()).
			Str("want", wanted).
			Str("found", name).
			Msg("attribute scan")

		if want != nil && name == want.Name {
			return term, true, nil
		}
		if policy.AbortOnExtra {
			d.log.Warn().
				Str("stream", sc.r.Name()).
				Str("attribute", name).
				Msg("spurious attribute in input")
			return 0, false, fmt.Errorf("%w %q in input from %s", ErrExtraAttribute, name, sc.r.Name())
		}
		if term == TermMore {
			if err := sc.skipLine(); err != nil {
				d.logFailure(sc.r, name, err)
				return 0, false, err
			}
		}
	}
}

// convert reads the value(s) of a matched attribute into its destination.
// Destinations are written only when the whole attribute was read.
func (d *Decoder) convert(sc *scanner, want *Want, nameTerm Terminator) error {
	const context = "attribute value"
	switch want.Type {
	case TypeNum:
		if nameTerm == TermEnd {
			return d.missingValue(sc, want)
		}
		v, term, err := sc.number(context)
		if err != nil {
			return err
		}
		if term != TermEnd {
			return d.tooMany(sc, want)
		}
		*want.Dest.(*uint64) = v
	case TypeStr:
		if nameTerm == TermEnd {
			return d.missingValue(sc, want)
		}
		v, term, err := sc.token(context)
		if err != nil {
			return err
		}
		if term != TermEnd {
			return d.tooMany(sc, want)
		}
		*want.Dest.(*string) = v
	case TypeNumArray:
		vals := []uint64{}
		for term := nameTerm; term != TermEnd; {
			var v uint64
			var err error
			if v, term, err = sc.number(context); err != nil {
				return err
			}
			vals = append(vals, v)
		}
		*want.Dest.(*[]uint64) = vals
	case TypeStrArray:
		vals := []string{}
		for term := nameTerm; term != TermEnd; {
			var v string
			var err error
			if v, term, err = sc.token(context); err != nil {
				return err
			}
			vals = append(vals, v)
		}
		*want.Dest.(*[]string) = vals
	default:
		panic(fmt.Sprintf("attr: unknown type code %d", int(want.Type)))
	}
	return nil
}

func (d *Decoder) tooMany(sc *scanner, want *Want) error {
	return fmt.Errorf("%w for attribute %s from %s", ErrTooManyValues, want.Name, sc.r.Name())
}

func (d *Decoder) missingValue(sc *scanner, want *Want) error {
	return fmt.Errorf("%w for attribute %s from %s", ErrMissingValue, want.Name, sc.r.Name())
}

// logFailure logs transport exhaustion quietly and everything else loudly.
func (d *Decoder) logFailure(r Reader, attribute string, err error) {
	event := d.log.Warn()
	if errors.Is(err, ErrPrematureEnd) {
		event = d.log.Debug()
	}
	event.
		Str("stream", r.Name()).
		Str("attribute", attribute).
		Str("kind", ViolationKind(err)).
		Err(err).
		Msg("attribute decode stopped")
}

// ReadList reads one attribute list without a want-list. It returns the
// fields read so far together with the error that stopped it.
func (d *Decoder) ReadList(r Reader) ([]Field, error) {
	sc := newScanner(r, d.limit)
	fields := make([]Field, 0, 8)
	for {
		name, term, err := sc.token("attribute name")
		if err != nil {
			return fields, err
		}
		if name == "" && term == TermEnd {
			return fields, nil
		}
		field := Field{Name: name, Values: []string{}}
		for term != TermEnd {
			var v string
			if v, term, err = sc.token("attribute value"); err != nil {
				return fields, err
			}
			field.Values = append(field.Values, v)
		}
		field.Array = len(field.Values) != 1
		fields = append(fields, field)
	}
}

// Skip discards the rest of the current attribute list, terminator included.
func (d *Decoder) Skip(r Reader) error {
	sc := newScanner(r, d.limit)
	for {
		name, term, err := sc.token("attribute name")
		if err != nil {
			return err
		}
		if name == "" && term == TermEnd {
			return nil
		}
		if term == TermMore {
			if err := sc.skipLine(); err != nil {
				return err
			}
		}
	}
}

// ReadList reads one attribute list with the package defaults.
func ReadList(r Reader) ([]Field, error) {
	return NewDecoder(DefaultConfig(), log.Logger).ReadList(r)
}
