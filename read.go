// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pdfread implements reading of PDF files.
//
// # Overview
//
// A PDF document is a complex data format built on a fairly simple
// structure. This package parses an ISO 32000-2:2020 file into an
// in-memory object graph suitable for inspection, modification, and
// re-serialization. It exposes that structure as a graph of Values,
// each of which has one of the following Kinds:
//
//	Null, for the null object.
//	Bool, for a boolean value.
//	Integer, for an integer.
//	Real, for a floating-point number.
//	String, for a string constant (raw bytes; hex strings keep their digits).
//	Name, for a name constant (as in /Helvetica).
//	Dict, for a dictionary of name-value pairs, insertion order preserved.
//	Array, for an array of values.
//	Stream, for a parameter dictionary and the raw stream body bytes.
//	Reference, for an unresolved indirect reference.
//
// The accessors on Value—Int64, Float64, Bool, Name, and so on—return
// a view of the data as the given type. When there is no appropriate
// view, the accessor returns a zero result, which makes it possible to
// traverse a PDF quickly without writing any error checking. The Key
// and Index accessors resolve indirect references through the document
// on the way.
//
// Indirect objects are materialized on demand through the
// cross-reference table and installed in the document's object table
// for its lifetime. Both the classic tabular xref form and the
// compressed XRef stream form are supported, including update chains
// through /Prev and /XRefStm and objects packed into object streams.
//
// Parsing is deliberately tolerant: PDFs are machine-generated, so the
// reader skips optional whitespace aggressively and scans for the
// endstream terminator instead of trusting /Length. It does not guess
// at genuinely malformed syntax; errors carry the byte position when
// one is known.
package pdfread

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwnourse/pdfread/logger"
)

// A Document is a single PDF file open for reading: the object table,
// the ordered list of xref sections, the merged trailer, and the main
// xref byte offset. A Document is confined to a single goroutine; see
// Processor for concurrent batch work.
type Document struct {
	f          io.Closer // non-nil when the document owns the file handle
	src        *source
	lx         *lexer
	bld        *builder
	size       int64
	startxref  int64
	sections   []*Section
	visited    map[int64]bool
	visitedIDs map[objptr]bool
	trailer    *dict
	objects    map[objptr]object
	objstms    map[uint32]*objStm
}

// Open opens a PDF file for reading. The returned Document owns the
// file handle; release it with Close.
func Open(file string) (*Document, error) {
	logger.Debug("Open file", true)
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	logger.Debug(fmt.Sprintf("document: file:%s -- opened (size=%d)", file, fi.Size()), true)
	d, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	d.f = f
	return d, nil
}

// NewReader opens a document for reading, using the data in f with the
// given total size. The header, the %%EOF marker, and the full xref
// chain are checked up front, so the effective trailer is established
// before any object lookup.
func NewReader(f io.ReaderAt, size int64) (*Document, error) {
	logger.Debug("Checking header", true)
	if err := CheckHeader(f); err != nil {
		return nil, err
	}

	logger.Debug("Checking end-of-file marker", true)
	if err := ValidateEOFMarker(f, size); err != nil {
		return nil, err
	}

	src := newSource(f, size)
	lx := newLexer(src)
	d := &Document{
		src:        src,
		lx:         lx,
		bld:        newBuilder(lx),
		size:       size,
		visited:    make(map[int64]bool),
		visitedIDs: make(map[objptr]bool),
		trailer:    newDict(),
		objects:    make(map[objptr]object),
		objstms:    make(map[uint32]*objStm),
	}

	logger.Debug("Checking xref chain", true)
	if err := d.loadAllXref(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close releases the underlying file handle, if the Document owns one.
func (d *Document) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

// CheckHeader validates the PDF header at the beginning of the file.
// It ensures the file starts with "%PDF-x.y" and the version is within
// 1.0–1.7 or 2.0. Some producers put a BOM or other junk before the
// header; that is tolerated.
func CheckHeader(f io.ReaderAt) error {
	buf := make([]byte, 32)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		logger.Error(fmt.Sprintf("failed to read initial bytes for header check: %v", err))
		return err
	}
	if n == 0 {
		logger.Error("not a PDF file: empty")
		return errors.New("not a PDF file: empty")
	}
	buf = buf[:n]
	p := bytes.Index(buf, []byte("%PDF-"))
	if p < 0 {
		logger.Error("not a PDF file: missing %PDF- header")
		return errors.New("not a PDF file: missing %PDF- header")
	}
	line := buf[p:]
	if lineEnd := bytes.IndexAny(line, "\r\n"); lineEnd >= 0 {
		line = line[:lineEnd]
	}
	line = bytes.TrimRight(line, " \t\x00")

	var major, minor int
	if _, err := fmt.Sscanf(string(line), "%%PDF-%d.%d", &major, &minor); err != nil {
		logger.Error("not a PDF file: malformed version")
		return errors.New("not a PDF file: malformed version")
	}
	if !((major == 1 && minor >= 0 && minor <= 7) || (major == 2 && minor == 0)) {
		logger.Error(fmt.Sprintf("unsupported PDF version %d.%d", major, minor))
		return fmt.Errorf("unsupported PDF version %d.%d", major, minor)
	}
	logger.Debug(fmt.Sprintf("header: PDF-%d.%d", major, minor), true)
	return nil
}

// Version reports the header version of the file, such as "1.7".
func (d *Document) Version() string {
	buf := make([]byte, 16)
	n, _ := d.src.r.ReadAt(buf, 0)
	if p := bytes.Index(buf[:n], []byte("%PDF-")); p >= 0 {
		v := buf[p+5:]
		if end := bytes.IndexAny(v, "\r\n \t\x00"); end >= 0 {
			v = v[:end]
		}
		return string(v)
	}
	return ""
}

// ValidateEOFMarker checks the last chunk of the file for the "%%EOF"
// marker, ensuring the file is properly terminated.
func ValidateEOFMarker(f io.ReaderAt, size int64) error {
	const endChunk = 100
	n := int64(endChunk)
	if n > size {
		n = size
	}
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, size-n); err != nil && err != io.EOF {
		return err
	}
	buf = bytes.TrimRight(buf, "\r\n\t ")
	if !bytes.HasSuffix(buf, []byte("%%EOF")) {
		logger.Error("not a PDF file: missing %%EOF")
		return errors.New("not a PDF file: missing %%EOF")
	}
	return nil
}

// Trailer returns the document's effective trailer: the superposition
// of every section's trailer, established before any object lookup.
func (d *Document) Trailer() Value {
	return Value{d, d.trailer}
}

// Root returns the document catalog dictionary, dereferencing the
// trailer's /Root entry.
func (d *Document) Root() (Value, error) {
	root := d.Trailer().Key("Root")
	if root.Kind() != Dict {
		return Value{}, &XRefError{Detail: "trailer has no /Root dictionary"}
	}
	return root, nil
}

// MainXref returns the cross-reference section the startxref offset
// points at, the first section in discovery order.
func (d *Document) MainXref() *Section {
	if len(d.sections) == 0 {
		return nil
	}
	return d.sections[0]
}

// Sections returns every parsed xref section in discovery order.
func (d *Document) Sections() []*Section {
	return d.sections
}

// StartXref returns the byte offset of the main xref, as recovered from
// the end of the file.
func (d *Document) StartXref() int64 {
	return d.startxref
}

// lookupEntry scans the parsed sections in discovery order for a
// location entry. The first match wins, so an entry from a later update
// shadows the one it replaced.
func (d *Document) lookupEntry(ptr objptr) (xrefEntry, bool) {
	for _, sec := range d.sections {
		if e, ok := sec.entries[ptr]; ok {
			return e, true
		}
	}
	return xrefEntry{}, false
}

// GetObject materializes the indirect object (num, gen). The object
// table is consulted first; otherwise the xref locates the object and
// it is parsed from the file or unpacked from its object stream and
// installed in the table. A free entry yields Null, as the PDF spec
// directs; an id with no entry anywhere in the chain is a
// MissingObject error.
func (d *Document) GetObject(num uint32, gen uint16) (Value, error) {
	ptr := objptr{id: num, gen: gen}
	if obj, ok := d.objects[ptr]; ok {
		return Value{d, obj}, nil
	}
	ent, ok := d.lookupEntry(ptr)
	if !ok {
		return Value{}, &MissingObject{Num: num, Gen: gen}
	}
	switch ent.kind {
	case xrefFree:
		return Value{}, nil
	case xrefInUse:
		if err := d.lx.seek(ent.offset); err != nil {
			return Value{}, &ParseError{Pos: ent.offset, Detail: "object offset outside file"}
		}
		obj, err := d.bld.readValue()
		if err != nil {
			return Value{}, err
		}
		def, ok := obj.(objdef)
		if !ok {
			return Value{}, &ParseError{Pos: ent.offset, Detail: fmt.Sprintf("loading %d %d: found %s instead of an indirect object", num, gen, objfmt(obj))}
		}
		if def.ptr != ptr {
			return Value{}, &ParseError{Pos: ent.offset, Detail: fmt.Sprintf("loading %d %d: found %d %d", num, gen, def.ptr.id, def.ptr.gen)}
		}
		d.objects[ptr] = def.obj
		return Value{d, def.obj}, nil
	case xrefInStream:
		obj, err := d.objFromStm(ent.container, ent.idx, num)
		if err != nil {
			return Value{}, err
		}
		d.objects[ptr] = obj
		return Value{d, obj}, nil
	}
	return Value{}, &MissingObject{Num: num, Gen: gen}
}

// GetObjectParam returns the value under key in the dictionary or
// stream parameters of the indirect object (num, gen). A key that is
// not present yields a null Value, as the accessor style directs.
func (d *Document) GetObjectParam(num uint32, gen uint16, key string) (Value, error) {
	v, err := d.GetObject(num, gen)
	if err != nil {
		return Value{}, err
	}
	return v.Key(key), nil
}

// resolve follows an internal object through an indirect reference. A
// reference that cannot be resolved becomes a null Value; traversal
// code built on Key and Index should not have to error-check.
func (d *Document) resolve(x object) Value {
	if ptr, ok := x.(objptr); ok {
		if d == nil {
			return Value{data: ptr}
		}
		v, err := d.GetObject(ptr.id, ptr.gen)
		if err != nil {
			logger.Debug(fmt.Sprintf("resolve %d %d R: %v", ptr.id, ptr.gen, err))
			return Value{}
		}
		return v
	}
	return Value{d, x}
}
