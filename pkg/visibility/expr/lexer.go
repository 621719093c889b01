package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokKind uint8

const (
	tokIdent tokKind = iota
	tokSelf
	tokString
	tokNumber
	tokTrue
	tokFalse
	tokNull
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

const selfRef = "$self"

type tok struct {
	kind tokKind
	text string
	pos  int
}

// Longer operators first so "<=" wins over "<".
var operators = []struct {
	text string
	kind tokKind
}{
	{"==", tokEq}, {"!=", tokNeq}, {"<=", tokLte}, {">=", tokGte},
	{"&&", tokAnd}, {"||", tokOr},
	{"<", tokLt}, {">", tokGt}, {"!", tokNot}, {"(", tokLParen}, {")", tokRParen},
}

const wordStop = "()!=<>&|\"'"

func lex(src string) ([]tok, error) {
	var out []tok
	pos := 0
scan:
	for pos < len(src) {
		ch := src[pos]
		if isSpace(ch) {
			pos++
			continue
		}
		if ch == '"' || ch == '\'' {
			text, end, err := lexQuoted(src, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, tok{kind: tokString, text: text, pos: pos})
			pos = end
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(src[pos:], op.text) {
				out = append(out, tok{kind: op.kind, text: op.text, pos: pos})
				pos += len(op.text)
				continue scan
			}
		}
		if strings.IndexByte("=&|", ch) >= 0 {
			return nil, fmt.Errorf("expr: unexpected %q at %d; use %q", ch, pos, string([]byte{ch, ch}))
		}

		end := pos
		for end < len(src) && !isSpace(src[end]) && strings.IndexByte(wordStop, src[end]) < 0 {
			end++
		}
		out = append(out, word(src[pos:end], pos))
		pos = end
	}
	return out, nil
}

// lexQuoted reads the string literal starting at src[start]. A backslash
// keeps the next character as is.
func lexQuoted(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for pos := start + 1; pos < len(src); pos++ {
		switch src[pos] {
		case '\\':
			pos++
			if pos < len(src) {
				b.WriteByte(src[pos])
			}
		case quote:
			return b.String(), pos + 1, nil
		default:
			b.WriteByte(src[pos])
		}
	}
	return "", 0, errors.New("expr: unterminated string literal")
}

func word(text string, pos int) tok {
	switch strings.ToLower(text) {
	case "true":
		return tok{kind: tokTrue, text: text, pos: pos}
	case "false":
		return tok{kind: tokFalse, text: text, pos: pos}
	case "null", "nil":
		return tok{kind: tokNull, text: text, pos: pos}
	}
	if rest, ok := strings.CutPrefix(text, selfRef); ok && (rest == "" || rest[0] == '.' || rest[0] == '[') {
		return tok{kind: tokSelf, text: rest, pos: pos}
	}
	if isNumber(text) {
		return tok{kind: tokNumber, text: text, pos: pos}
	}
	return tok{kind: tokIdent, text: text, pos: pos}
}

func isNumber(text string) bool {
	digits := strings.TrimLeft(text, "+-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return false
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
