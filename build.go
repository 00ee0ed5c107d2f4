// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Composing tokens into PDF values.

package pdfread

import (
	"fmt"

	"github.com/cwnourse/pdfread/logger"
)

// A builder composes the lexer's token stream into values. Inside arrays
// and dictionaries scalars are held on a per-nesting-level stack, and R
// pops its two operands from it when it arrives. At the top level,
// readFromInt reads up to two tokens past an integer to recognize
// "N G R" and "N G obj" and returns unused tokens to the lexer's unread
// queue.
type builder struct {
	lx  *lexer
	cur objptr // indirect object currently being built, if any
}

func newBuilder(lx *lexer) *builder {
	return &builder{lx: lx}
}

// nextToken returns the next non-comment token.
func (b *builder) nextToken() (token, error) {
	for {
		tok, err := b.lx.next()
		if err != nil {
			return token{}, err
		}
		if tok.kind == tokComment {
			continue
		}
		return tok, nil
	}
}

// readValue parses one complete value from the token stream: a scalar,
// array, dictionary, stream, reference, or indirect object definition.
func (b *builder) readValue() (object, error) {
	tok, err := b.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokEOF {
		return nil, fmt.Errorf("parsing value at offset %d: %w", tok.pos, ErrUnexpectedEOF)
	}

	switch tok.kind {
	case tokNull:
		return nil, nil
	case tokBool:
		return tok.flag, nil
	case tokReal:
		return tok.real, nil
	case tokStrLit, tokStrHex:
		return string(tok.raw), nil
	case tokName:
		return name(tok.raw), nil
	case tokDictBegin:
		d, err := b.readDictBody(tok.pos)
		if err != nil {
			return nil, err
		}
		return b.maybeAttachStream(d)
	case tokArrBegin:
		return b.readArrayBody(tok.pos)
	case tokInt:
		return b.readFromInt(tok)
	case tokStream:
		return nil, &ParseError{Pos: tok.pos, Detail: "stream body without a preceding dictionary"}
	}
	return nil, &ParseError{Pos: tok.pos, Detail: "unexpected token " + tok.kind.String()}
}

// readFromInt handles the lookback cases: a lone integer, N G R, and
// N G obj.
func (b *builder) readFromInt(t1 token) (object, error) {
	t2, err := b.nextToken()
	if err != nil {
		return nil, err
	}
	if t2.kind != tokInt {
		b.lx.unreadToken(t2)
		return t1.num, nil
	}
	t3, err := b.nextToken()
	if err != nil {
		return nil, err
	}
	switch t3.kind {
	case tokObjRef:
		ptr, err := makePtr(t1, t2, t3.pos)
		if err != nil {
			return nil, err
		}
		return ptr, nil
	case tokObjBegin:
		ptr, err := makePtr(t1, t2, t3.pos)
		if err != nil {
			return nil, err
		}
		return b.readIndirectBody(ptr, t1.pos)
	}
	b.lx.unreadToken(t3)
	b.lx.unreadToken(t2)
	return t1.num, nil
}

func makePtr(t1, t2 token, pos int64) (objptr, error) {
	if t1.num < 0 || int64(uint32(t1.num)) != t1.num {
		return objptr{}, &ParseError{Pos: pos, Detail: fmt.Sprintf("object number %d out of range", t1.num)}
	}
	if t2.num < 0 || int64(uint16(t2.num)) != t2.num {
		return objptr{}, &ParseError{Pos: pos, Detail: fmt.Sprintf("generation number %d out of range", t2.num)}
	}
	return objptr{id: uint32(t1.num), gen: uint16(t2.num)}, nil
}

// readIndirectBody parses the body of N G obj ... endobj. The first
// value before endobj is the indirect object's value.
func (b *builder) readIndirectBody(ptr objptr, pos int64) (object, error) {
	old := b.cur
	b.cur = ptr
	obj, err := b.readValue()
	b.cur = old
	if err != nil {
		return nil, err
	}
	tok, err := b.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokObjEnd {
		return nil, &ParseError{Pos: tok.pos, Detail: "missing endobj after indirect object definition"}
	}
	return objdef{ptr: ptr, obj: obj}, nil
}

// readArrayBody consumes tokens after [ until the matching ].
func (b *builder) readArrayBody(pos int64) (object, error) {
	var stack array
	for {
		tok, err := b.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			return nil, fmt.Errorf("array open at offset %d: %w", pos, ErrUnexpectedEOF)
		case tokArrEnd:
			return stack, nil
		case tokInt:
			stack = append(stack, tok.num)
		case tokReal:
			stack = append(stack, tok.real)
		case tokBool:
			stack = append(stack, tok.flag)
		case tokNull:
			stack = append(stack, nil)
		case tokStrLit, tokStrHex:
			stack = append(stack, string(tok.raw))
		case tokName:
			stack = append(stack, name(tok.raw))
		case tokArrBegin:
			v, err := b.readArrayBody(tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)
		case tokDictBegin:
			d, err := b.readDictBody(tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack, d)
		case tokObjRef:
			ptr, err := popPtr(stack, tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack[:len(stack)-2], ptr)
		default:
			return nil, &ParseError{Pos: tok.pos, Detail: "unexpected token " + tok.kind.String() + " in array"}
		}
	}
}

// readDictBody consumes tokens after << until the matching >>, then
// pairs adjacent stack items as key and value.
func (b *builder) readDictBody(pos int64) (*dict, error) {
	var stack array
	for {
		tok, err := b.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			return nil, fmt.Errorf("dictionary open at offset %d: %w", pos, ErrUnexpectedEOF)
		case tokDictEnd:
			return pairDict(stack, tok.pos)
		case tokInt:
			stack = append(stack, tok.num)
		case tokReal:
			stack = append(stack, tok.real)
		case tokBool:
			stack = append(stack, tok.flag)
		case tokNull:
			stack = append(stack, nil)
		case tokStrLit, tokStrHex:
			stack = append(stack, string(tok.raw))
		case tokName:
			stack = append(stack, name(tok.raw))
		case tokArrBegin:
			v, err := b.readArrayBody(tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)
		case tokDictBegin:
			d, err := b.readDictBody(tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack, d)
		case tokObjRef:
			ptr, err := popPtr(stack, tok.pos)
			if err != nil {
				return nil, err
			}
			stack = append(stack[:len(stack)-2], ptr)
		default:
			return nil, &ParseError{Pos: tok.pos, Detail: "unexpected token " + tok.kind.String() + " in dictionary"}
		}
	}
}

// popPtr validates that the two most recent stack entries are integers
// in range for an object reference.
func popPtr(stack array, pos int64) (objptr, error) {
	if len(stack) < 2 {
		return objptr{}, &ParseError{Pos: pos, Detail: "R with fewer than two integer operands"}
	}
	n1, ok1 := stack[len(stack)-2].(int64)
	n2, ok2 := stack[len(stack)-1].(int64)
	if !ok1 || !ok2 {
		return objptr{}, &ParseError{Pos: pos, Detail: "R operands are not integers"}
	}
	return makePtr(token{num: n1}, token{num: n2}, pos)
}

func pairDict(stack array, pos int64) (*dict, error) {
	if len(stack)%2 != 0 {
		return nil, &ParseError{Pos: pos, Detail: "dictionary with odd element count"}
	}
	d := newDict()
	for i := 0; i < len(stack); i += 2 {
		k, ok := stack[i].(name)
		if !ok {
			return nil, &ParseError{Pos: pos, Detail: fmt.Sprintf("dictionary key %s is not a name", objfmt(stack[i]))}
		}
		if _, dup := d.get(k); dup {
			logger.Debug(fmt.Sprintf("duplicate dictionary key /%s near offset %d, last value wins", k, pos))
		}
		d.set(k, stack[i+1])
	}
	return d, nil
}

// maybeAttachStream attaches a following stream body, if any, to the
// dictionary just built.
func (b *builder) maybeAttachStream(d *dict) (object, error) {
	tok, err := b.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokStream {
		b.lx.unreadToken(tok)
		return d, nil
	}
	if v, ok := d.get(name("Length")); ok {
		if n, isInt := v.(int64); isInt && n != int64(len(tok.raw)) {
			logger.Debug(fmt.Sprintf("stream at offset %d: /Length %d disagrees with scanned body of %d bytes", tok.pos, n, len(tok.raw)))
		}
	} else {
		logger.Debug(fmt.Sprintf("stream at offset %d: missing /Length, recording scanned body length %d", tok.pos, len(tok.raw)))
		d.set(name("Length"), int64(len(tok.raw)))
	}
	return stream{hdr: d, body: tok.raw, ptr: b.cur}, nil
}
