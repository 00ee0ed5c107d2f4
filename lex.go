// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Reading of PDF tokens from a raw byte stream.

package pdfread

import (
	"fmt"
	"strconv"

	"github.com/cwnourse/pdfread/logger"
)

// A tokenKind identifies the grammatical class of a token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokReal
	tokStrLit
	tokStrHex
	tokName
	tokBool
	tokNull
	tokComment
	tokDictBegin
	tokDictEnd
	tokArrBegin
	tokArrEnd
	tokFnBegin
	tokFnEnd
	tokObjBegin
	tokObjEnd
	tokObjRef
	tokStream
	tokXrefBegin
	tokXrefFree
	tokXrefInUse
	tokTrailerBegin
	tokXrefLoc
)

var tokenKindNames = map[tokenKind]string{
	tokEOF:          "EOF",
	tokInt:          "INT",
	tokReal:         "REAL",
	tokStrLit:       "STR_LIT",
	tokStrHex:       "STR_HEX",
	tokName:         "NAME",
	tokBool:         "BOOL",
	tokNull:         "NULL",
	tokComment:      "COMMENT",
	tokDictBegin:    "DICT_BEGIN",
	tokDictEnd:      "DICT_END",
	tokArrBegin:     "ARR_BEGIN",
	tokArrEnd:       "ARR_END",
	tokFnBegin:      "FN_BEGIN",
	tokFnEnd:        "FN_END",
	tokObjBegin:     "OBJ_BEGIN",
	tokObjEnd:       "OBJ_END",
	tokObjRef:       "OBJ_REF",
	tokStream:       "STREAM",
	tokXrefBegin:    "XREF_BEGIN",
	tokXrefFree:     "XREF_FREE",
	tokXrefInUse:    "XREF_INUSE",
	tokTrailerBegin: "TRAILER_BEGIN",
	tokXrefLoc:      "XREF_LOC",
}

func (k tokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("tokenKind(%d)", int(k))
}

// A token is one lexical unit of the PDF grammar. pos is the byte offset
// of the token's first byte. The payload lives in num, real, flag, or
// raw depending on kind; raw holds undecoded bytes for strings, names,
// comments, and stream bodies. Whitespace is consumed, never emitted.
type token struct {
	kind tokenKind
	pos  int64
	num  int64
	real float64
	flag bool
	raw  []byte
}

func (t token) String() string {
	return t.kind.String()
}

// A lexer turns the byte feed into a lazy sequence of tokens. It keeps a
// small pushback buffer of bytes returned to the stream (the deepest
// user is the endstream lookahead plus its terminator byte) and a queue
// of unread tokens for the builder's lookback.
type lexer struct {
	src    *source
	back   []byte // pushed-back bytes; last element is returned first
	unread []token
}

func newLexer(src *source) *lexer {
	return &lexer{src: src, back: make([]byte, 0, 16)}
}

// seek repositions the lexer, dropping any pushed-back bytes and unread
// tokens.
func (l *lexer) seek(off int64) error {
	if err := l.src.seek(off); err != nil {
		return err
	}
	l.back = l.back[:0]
	l.unread = l.unread[:0]
	return nil
}

// pos reports the file offset of the next byte the lexer will deliver.
func (l *lexer) pos() int64 {
	return l.src.pos - int64(len(l.back))
}

// nextByte returns the next byte, preferring pushed-back bytes. The
// second result is false at end of file.
func (l *lexer) nextByte() (byte, bool) {
	if n := len(l.back); n > 0 {
		b := l.back[n-1]
		l.back = l.back[:n-1]
		return b, true
	}
	b, err := l.src.next()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (l *lexer) unreadByte(b byte) {
	l.back = append(l.back, b)
}

func (l *lexer) unreadToken(t token) {
	l.unread = append(l.unread, t)
}

// isSpace reports whether b is one of the six whitespace characters
// defined by ISO 32000-2 §7.2.3 for PDF syntax: 00, 09, 0A, 0C, 0D, 20.
func isSpace(b byte) bool {
	switch b {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isEOL(b byte) bool {
	return b == '\n' || b == '\r'
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// isRegular reports whether b can continue a keyword or name token.
func isRegular(b byte) bool {
	return !isSpace(b) && !isDelim(b)
}

// next returns the next token. Clean end of input yields a tokEOF token
// with a nil error; end of input inside a token is an error.
func (l *lexer) next() (token, error) {
	if n := len(l.unread); n > 0 {
		t := l.unread[n-1]
		l.unread = l.unread[:n-1]
		return t, nil
	}

	// Consume and discard whitespace.
	var b byte
	for {
		var ok bool
		b, ok = l.nextByte()
		if !ok {
			return token{kind: tokEOF, pos: l.pos()}, nil
		}
		if !isSpace(b) {
			break
		}
	}
	pos := l.pos() - 1

	switch {
	case isDigit(b) || b == '+' || b == '-' || b == '.':
		return l.lexNumber(b, pos)
	case b == '%':
		return l.lexComment(pos)
	case b == '(':
		return l.lexLiteralString(pos)
	case b == '/':
		return l.lexName(pos)
	case b == '<':
		c, ok := l.nextByte()
		if !ok {
			return token{}, &LexError{Pos: pos, Detail: "unterminated hex string"}
		}
		if c == '<' {
			return token{kind: tokDictBegin, pos: pos}, nil
		}
		l.unreadByte(c)
		return l.lexHexString(pos)
	case b == '>':
		c, ok := l.nextByte()
		if !ok || c != '>' {
			return token{}, &LexError{Pos: pos, Detail: "single > when >> expected"}
		}
		return token{kind: tokDictEnd, pos: pos}, nil
	case b == '[':
		return token{kind: tokArrBegin, pos: pos}, nil
	case b == ']':
		return token{kind: tokArrEnd, pos: pos}, nil
	case b == '{':
		return token{kind: tokFnBegin, pos: pos}, nil
	case b == '}':
		return token{kind: tokFnEnd, pos: pos}, nil
	case isDelim(b):
		return token{}, &LexError{Pos: pos, Detail: fmt.Sprintf("unexpected delimiter %q", rune(b))}
	}
	return l.lexKeyword(b, pos)
}

// lexNumber scans a number starting with b. The token is REAL if and
// only if a '.' is followed by another digit; a '.' not followed by a
// digit ends the token, which stays INT.
func (l *lexer) lexNumber(b byte, pos int64) (token, error) {
	buf := make([]byte, 0, 16)
	isReal := false

	dot := func() bool {
		c, ok := l.nextByte()
		if !ok {
			return false
		}
		if isDigit(c) {
			buf = append(buf, '.', c)
			isReal = true
			return true
		}
		l.unreadByte(c)
		return false
	}

	if b == '.' {
		if !dot() {
			return token{}, &LexError{Pos: pos, Detail: "invalid number ."}
		}
	} else {
		buf = append(buf, b)
	}
	for {
		c, ok := l.nextByte()
		if !ok {
			break
		}
		if c == '.' {
			if dot() {
				continue
			}
			break
		}
		if isDigit(c) || c == '+' || c == '-' {
			buf = append(buf, c)
			continue
		}
		l.unreadByte(c)
		break
	}

	if isReal {
		x, err := strconv.ParseFloat(string(buf), 64)
		if err != nil {
			return token{}, &LexError{Pos: pos, Detail: "invalid real " + string(buf)}
		}
		return token{kind: tokReal, pos: pos, real: x}, nil
	}
	x, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return token{}, &LexError{Pos: pos, Detail: "invalid integer " + string(buf)}
	}
	return token{kind: tokInt, pos: pos, num: x}, nil
}

// lexComment reads bytes until end of line. The EOL byte is returned to
// the stream; the payload excludes the leading %.
func (l *lexer) lexComment(pos int64) (token, error) {
	var buf []byte
	for {
		c, ok := l.nextByte()
		if !ok {
			break
		}
		if isEOL(c) {
			l.unreadByte(c)
			break
		}
		buf = append(buf, c)
	}
	return token{kind: tokComment, pos: pos, raw: buf}, nil
}

// lexLiteralString reads a ( ) delimited string. Unescaped parentheses
// must balance; a backslash makes the following byte verbatim, so the
// payload carries resolved escapes but is otherwise raw.
func (l *lexer) lexLiteralString(pos int64) (token, error) {
	var buf []byte
	depth := 1
	for {
		c, ok := l.nextByte()
		if !ok {
			return token{}, &LexError{Pos: pos, Detail: "unterminated literal string"}
		}
		switch c {
		case '\\':
			e, ok := l.nextByte()
			if !ok {
				return token{}, &LexError{Pos: pos, Detail: "unterminated literal string"}
			}
			buf = append(buf, e)
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return token{kind: tokStrLit, pos: pos, raw: buf}, nil
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
}

// lexName reads a /Name token. The leading slash is stripped; the token
// ends at the first non-regular character.
func (l *lexer) lexName(pos int64) (token, error) {
	var buf []byte
	for {
		c, ok := l.nextByte()
		if !ok {
			break
		}
		if !isRegular(c) {
			l.unreadByte(c)
			break
		}
		buf = append(buf, c)
	}
	return token{kind: tokName, pos: pos, raw: buf}, nil
}

// lexHexString reads bytes until >. The payload keeps the hex digits
// exactly as written; decoding is left to consumers.
func (l *lexer) lexHexString(pos int64) (token, error) {
	var buf []byte
	for {
		c, ok := l.nextByte()
		if !ok {
			return token{}, &LexError{Pos: pos, Detail: "unterminated hex string"}
		}
		if c == '>' {
			return token{kind: tokStrHex, pos: pos, raw: buf}, nil
		}
		buf = append(buf, c)
	}
}

// lexKeyword reads a run of regular characters and matches it against
// the fixed keyword set.
func (l *lexer) lexKeyword(b byte, pos int64) (token, error) {
	buf := []byte{b}
	for {
		c, ok := l.nextByte()
		if !ok {
			break
		}
		if !isRegular(c) {
			l.unreadByte(c)
			break
		}
		buf = append(buf, c)
	}
	switch string(buf) {
	case "obj":
		return token{kind: tokObjBegin, pos: pos}, nil
	case "endobj":
		return token{kind: tokObjEnd, pos: pos}, nil
	case "R":
		return token{kind: tokObjRef, pos: pos}, nil
	case "true":
		return token{kind: tokBool, pos: pos, flag: true}, nil
	case "false":
		return token{kind: tokBool, pos: pos}, nil
	case "null":
		return token{kind: tokNull, pos: pos}, nil
	case "stream":
		return l.lexStream(pos)
	case "xref":
		return token{kind: tokXrefBegin, pos: pos}, nil
	case "f":
		return token{kind: tokXrefFree, pos: pos}, nil
	case "n":
		return token{kind: tokXrefInUse, pos: pos}, nil
	case "trailer":
		return token{kind: tokTrailerBegin, pos: pos}, nil
	case "startxref":
		return token{kind: tokXrefLoc, pos: pos}, nil
	case "endstream":
		return token{}, &LexError{Pos: pos, Detail: "endstream outside stream body"}
	}
	return token{}, &LexError{Pos: pos, Detail: fmt.Sprintf("unrecognized keyword %q", buf)}
}

var endstreamWord = []byte("ndstream")

// lexStream collects the raw body following the stream keyword. The
// keyword is followed by LF or CRLF, never a bare CR. The body runs to
// an EOL followed by endstream as a standalone token; /Length is not
// consulted because it is occasionally wrong in real files.
func (l *lexer) lexStream(pos int64) (token, error) {
	b, ok := l.nextByte()
	if !ok {
		return token{}, &LexError{Pos: pos, Detail: "unterminated stream"}
	}
	if b == '\r' {
		c, ok := l.nextByte()
		if !ok || c != '\n' {
			return token{}, &LexError{Pos: pos, Detail: "stream keyword not followed by newline"}
		}
	} else if b != '\n' {
		return token{}, &LexError{Pos: pos, Detail: "stream keyword not followed by newline"}
	}

	var body []byte
	for {
		c, ok := l.nextByte()
		if !ok {
			return token{}, &LexError{Pos: pos, Detail: "unterminated stream"}
		}
		if !isEOL(c) {
			body = append(body, c)
			continue
		}
		eol := []byte{c}
		if c == '\r' {
			if c2, ok := l.nextByte(); ok {
				if c2 == '\n' {
					eol = append(eol, c2)
				} else {
					l.unreadByte(c2)
				}
			}
		}
		if l.matchEndstream() {
			logger.Debug(fmt.Sprintf("stream: scanned %d body bytes at offset %d", len(body), pos))
			return token{kind: tokStream, pos: pos, raw: body}, nil
		}
		body = append(body, eol...)
	}
}

// matchEndstream consumes "endstream" (as a standalone word) if it is
// next in the stream. On a failed match all lookahead bytes are pushed
// back.
func (l *lexer) matchEndstream() bool {
	var got []byte
	giveBack := func() {
		for i := len(got) - 1; i >= 0; i-- {
			l.unreadByte(got[i])
		}
	}
	c, ok := l.nextByte()
	if !ok {
		return false
	}
	got = append(got, c)
	if c != 'e' {
		giveBack()
		return false
	}
	for _, want := range endstreamWord {
		c, ok := l.nextByte()
		if !ok {
			giveBack()
			return false
		}
		got = append(got, c)
		if c != want {
			giveBack()
			return false
		}
	}
	// Standalone: the next byte must not continue the keyword.
	if c, ok := l.nextByte(); ok {
		if isRegular(c) {
			got = append(got, c)
			giveBack()
			return false
		}
		l.unreadByte(c)
	}
	return true
}
