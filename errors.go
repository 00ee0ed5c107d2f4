// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF reports that the file ended where a value, or the
// rest of an array or dictionary, was expected. End of file inside a
// single token is a LexError instead.
var ErrUnexpectedEOF = errors.New("unexpected end of file")

// A LexError reports a malformed token at a known byte offset.
type LexError struct {
	Pos    int64
	Detail string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Detail)
}

// A ParseError reports malformed object syntax at a known byte offset.
type ParseError struct {
	Pos    int64
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Detail)
}

// An XRefError reports a malformed or unusable cross-reference section.
type XRefError struct {
	Detail string
	Cause  error
}

func (e *XRefError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("xref: %s: %v", e.Detail, e.Cause)
	}
	return "xref: " + e.Detail
}

func (e *XRefError) Unwrap() error { return e.Cause }

// An UnsupportedFilter error reports a stream filter the reader cannot
// decode.
type UnsupportedFilter struct {
	Name string
}

func (e *UnsupportedFilter) Error() string {
	return "unsupported filter " + e.Name
}

// An UnsupportedPredictor error reports a PNG predictor row tag outside
// the supported set {0, 2}, or predictor parameters the reader cannot
// reverse.
type UnsupportedPredictor struct {
	Code int
}

func (e *UnsupportedPredictor) Error() string {
	return fmt.Sprintf("unsupported predictor %d", e.Code)
}

// A MissingObject error reports an object id with no entry in any
// reachable xref section.
type MissingObject struct {
	Num uint32
	Gen uint16
}

func (e *MissingObject) Error() string {
	return fmt.Sprintf("missing object %d %d", e.Num, e.Gen)
}

// A CorruptStream error reports stream data that could not be decoded.
type CorruptStream struct {
	Detail string
	Cause  error
}

func (e *CorruptStream) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt stream: %s: %v", e.Detail, e.Cause)
	}
	return "corrupt stream: " + e.Detail
}

func (e *CorruptStream) Unwrap() error { return e.Cause }
