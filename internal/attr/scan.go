package attr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Terminator is the delimiter that ended a token.
type Terminator int

const (
	// TermMore is ':' and means another value follows.
	TermMore Terminator = iota + 1
	// TermEnd is '\n' and ends the attribute (or the list, after an empty name).
	TermEnd
)

func (t Terminator) String() string {
	switch t {
	case TermMore:
		return "colon"
	case TermEnd:
		return "newline"
	default:
		return "none"
	}
}

// encodedLimit bounds one base64 token for a plain line limit.
func encodedLimit(lineLimit int) int {
	if lineLimit <= 0 {
		lineLimit = DefaultLineLimit
	}
	return lineLimit * 5 / 4
}

// scanner holds the scratch state of a single decode call.
type scanner struct {
	r     Reader
	limit int
	raw   []byte
	plain []byte
}

func newScanner(r Reader, limit int) *scanner {
	return &scanner{r: r, limit: limit, raw: make([]byte, 0, 64)}
}

// token reads one base64 field up to ':' or '\n' and decodes it. At most
// limit encoded bytes are buffered.
func (s *scanner) token(context string) (string, Terminator, error) {
	s.raw = s.raw[:0]
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", 0, fmt.Errorf("%w from %s while reading %s", ErrPrematureEnd, s.r.Name(), context)
			}
			return "", 0, fmt.Errorf("%w from %s while reading %s: %w", ErrPrematureEnd, s.r.Name(), context, err)
		}
		switch c {
		case ':':
			return s.decode(TermMore, context)
		case '\n':
			return s.decode(TermEnd, context)
		}
		if len(s.raw) >= s.limit {
			return "", 0, fmt.Errorf("%w: length > %d characters from %s while reading %s",
				ErrTokenTooLong, s.limit, s.r.Name(), context)
		}
		s.raw = append(s.raw, c)
	}
}

func (s *scanner) decode(term Terminator, context string) (string, Terminator, error) {
	if len(s.raw) == 0 {
		return "", term, nil
	}
	need := base64.StdEncoding.DecodedLen(len(s.raw))
	if cap(s.plain) < need {
		s.plain = make([]byte, need)
	}
	n, err := base64.StdEncoding.Decode(s.plain[:need], s.raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w from %s while reading %s: %v", ErrBadEncoding, s.r.Name(), context, err)
	}
	return string(s.plain[:n]), term, nil
}

// number reads one token and requires it to be a plain unsigned decimal.
func (s *scanner) number(context string) (uint64, Terminator, error) {
	text, term, err := s.token(context)
	if err != nil {
		return 0, 0, err
	}
	v, ok := parseNumber(text)
	if !ok {
		return 0, 0, &NumberError{Stream: s.r.Name(), Context: context, Text: text}
	}
	return v, term, nil
}

func parseNumber(text string) (uint64, bool) {
	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// skipLine discards input through the next newline.
func (s *scanner) skipLine() error {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return fmt.Errorf("%w from %s while skipping attribute", ErrPrematureEnd, s.r.Name())
		}
		if c == '\n' {
			return nil
		}
	}
}
