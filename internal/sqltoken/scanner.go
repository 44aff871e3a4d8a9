// internal/sqltoken/scanner.go
package sqltoken

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnterminatedString     = errors.New("unterminated string literal")
	ErrUnterminatedIdentifier = errors.New("unterminated quoted identifier")
	ErrUnterminatedComment    = errors.New("unterminated block comment")
)

// Scan splits sql into a flat token sequence. Concatenating the Text of every
// returned token reproduces sql exactly.
//
// The scanner is dialect tolerant: it accepts double-quoted, backtick and
// bracket identifiers, T-SQL #temp and @variable names, and both '' and
// backslash escapes inside string literals. Parentheses are not balanced here;
// nesting is left to the consumers of the stream.
func Scan(sql string) ([]Token, error) {
	s := &scanner{src: sql}
	for s.pos < len(s.src) {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		s.tokens = append(s.tokens, tok)
	}
	return s.tokens, nil
}

// Meaningful returns tokens without whitespace and comments.
func Meaningful(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsSpace() {
			out = append(out, t)
		}
	}
	return out
}

type scanner struct {
	src    string
	pos    int
	tokens []Token
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *scanner) emit(kind Kind, start int) Token {
	return Token{Kind: kind, Text: s.src[start:s.pos], Pos: start}
}

func (s *scanner) next() (Token, error) {
	start := s.pos
	c := s.src[s.pos]

	switch {
	case isSpace(c):
		for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
			s.pos++
		}
		return s.emit(Whitespace, start), nil

	case c == '-' && s.peek(1) == '-':
		end := strings.IndexByte(s.src[s.pos:], '\n')
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += end
		}
		return s.emit(Comment, start), nil

	case c == '/' && s.peek(1) == '*':
		end := strings.Index(s.src[s.pos+2:], "*/")
		if end < 0 {
			return Token{}, fmt.Errorf("%w at offset %d", ErrUnterminatedComment, start)
		}
		s.pos += end + 4
		return s.emit(Comment, start), nil

	case c == '\'':
		if err := s.skipString(); err != nil {
			return Token{}, err
		}
		return s.emit(Literal, start), nil

	case c == '"' || c == '`' || c == '[':
		if err := s.skipQuoted(); err != nil {
			return Token{}, err
		}
		s.scanQualifier()
		return s.emit(Name, start), nil

	case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
		s.scanNumber()
		return s.emit(Literal, start), nil

	case c == '$' && isDigit(s.peek(1)):
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		return s.emit(Literal, start), nil

	case c == '(' || c == ')' || c == ',' || c == ';' || c == '.':
		s.pos++
		return s.emit(Punctuation, start), nil

	case (c == '#' || c == '@') && s.isWordStartAt(s.pos+1):
		s.pos++
		return s.scanWord(start)

	case s.isWordStartAt(s.pos):
		return s.scanWord(start)

	case strings.IndexByte("<>=!|&:~^", c) >= 0:
		for s.pos < len(s.src) && strings.IndexByte("<>=!|&:~^", s.src[s.pos]) >= 0 {
			s.pos++
		}
		return s.emit(Operator, start), nil

	default:
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		s.pos += size
		return s.emit(Operator, start), nil
	}
}

func (s *scanner) scanWord(start int) (Token, error) {
	s.skipWord()
	word := s.src[start:s.pos]

	// N'...', E'...', X'...', B'...' prefixed string literals.
	if len(word) == 1 && strings.ContainsAny(word, "NnEeXxBb") && s.peek(0) == '\'' {
		if err := s.skipString(); err != nil {
			return Token{}, err
		}
		return s.emit(Literal, start), nil
	}

	if s.scanQualifier() || word[0] == '#' || word[0] == '@' {
		return s.emit(Name, start), nil
	}

	upper := strings.ToUpper(word)
	if _, ok := keywords[upper]; ok {
		if _, keep := structural[upper]; keep || s.peek(0) != '(' {
			return s.emit(Keyword, start), nil
		}
	}
	return s.emit(Name, start), nil
}

// scanQualifier consumes ".part" continuations of a dotted name and reports
// whether any were found.
func (s *scanner) scanQualifier() bool {
	found := false
	for s.peek(0) == '.' {
		n := s.peek(1)
		switch {
		case n == '*':
			s.pos += 2
			return true
		case n == '"' || n == '`' || n == '[':
			save := s.pos
			s.pos++
			if err := s.skipQuoted(); err != nil {
				s.pos = save
				return found
			}
		case s.isWordStartAt(s.pos + 1):
			s.pos++
			s.skipWord()
		default:
			return found
		}
		found = true
	}
	return found
}

func (s *scanner) skipWord() {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if r == '_' || r == '$' || r == '#' || r == '@' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			s.pos += size
			continue
		}
		break
	}
}

func (s *scanner) skipString() error {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case '\'':
			if s.peek(1) == '\'' {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return fmt.Errorf("%w at offset %d", ErrUnterminatedString, start)
}

func (s *scanner) skipQuoted() error {
	start := s.pos
	closing := s.src[s.pos]
	if closing == '[' {
		closing = ']'
	}
	s.pos++
	for s.pos < len(s.src) {
		if s.src[s.pos] == closing {
			if closing != ']' && s.peek(1) == closing {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return fmt.Errorf("%w at offset %d", ErrUnterminatedIdentifier, start)
}

func (s *scanner) scanNumber() {
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	if c := s.peek(0); c == 'e' || c == 'E' {
		off := 1
		if sign := s.peek(1); sign == '+' || sign == '-' {
			off = 2
		}
		if isDigit(s.peek(off)) {
			s.pos += off
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		}
	}
}

func (s *scanner) isWordStartAt(i int) bool {
	if i >= len(s.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s.src[i:])
	return r == '_' || unicode.IsLetter(r)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
