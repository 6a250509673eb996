package attr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"github.com/danmuck/attrwire/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Encoder writes attribute lists. Like Decoder it holds no per-call state.
type Encoder struct {
	limit int
	log   zerolog.Logger
}

func NewEncoder(cfg Config, logger zerolog.Logger) *Encoder {
	return &Encoder{
		limit: encodedLimit(cfg.LineLimit),
		log:   logger.With().Str("component", "attr_encode").Logger(),
	}
}

// Encode writes attrs with the package defaults.
func Encode(w io.Writer, attrs ...Attribute) error {
	return NewEncoder(DefaultConfig(), log.Logger).Encode(w, attrs...)
}

// Encode writes attrs followed by the list terminator. The list is built
// in memory first, so nothing reaches w when a token is over the limit.
// If w has a Flush method it is flushed after the write.
//
// Encode panics on an empty attribute name, which would read back as the
// list terminator, and on a nil or foreign Value.
func (e *Encoder) Encode(w io.Writer, attrs ...Attribute) (err error) {
	defer func() {
		observability.RecordEncode(err == nil)
	}()

	var buf bytes.Buffer
	for _, a := range attrs {
		if a.Name == "" {
			panic("attr: encode attribute with empty name")
		}
		if err := e.appendToken(&buf, a.Name); err != nil {
			return err
		}
		switch v := a.Value.(type) {
		case Num:
			buf.WriteByte(':')
			if err := e.appendToken(&buf, strconv.FormatUint(uint64(v), 10)); err != nil {
				return err
			}
		case Str:
			buf.WriteByte(':')
			if err := e.appendToken(&buf, string(v)); err != nil {
				return err
			}
		case NumArray:
			for _, n := range v {
				buf.WriteByte(':')
				if err := e.appendToken(&buf, strconv.FormatUint(n, 10)); err != nil {
					return err
				}
			}
		case StrArray:
			for _, s := range v {
				buf.WriteByte(':')
				if err := e.appendToken(&buf, s); err != nil {
					return err
				}
			}
		case nil:
			panic(fmt.Sprintf("attr: nil value for attribute %q", a.Name))
		default:
			panic(fmt.Sprintf("attr: unknown value type %T for attribute %q", a.Value, a.Name))
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	if _, err := w.Write(buf.Bytes()); err != nil {
		e.log.Warn().Err(err).Msg("attribute list write failed")
		return fmt.Errorf("attr: write attribute list: %w", err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			e.log.Warn().Err(err).Msg("attribute list flush failed")
			return fmt.Errorf("attr: flush attribute list: %w", err)
		}
	}
	return nil
}

func (e *Encoder) appendToken(buf *bytes.Buffer, plain string) error {
	n := base64.StdEncoding.EncodedLen(len(plain))
	if n > e.limit {
		return fmt.Errorf("%w: %d encoded characters exceeds limit %d", ErrTokenTooLong, n, e.limit)
	}
	buf.WriteString(base64.StdEncoding.EncodeToString([]byte(plain)))
	return nil
}
