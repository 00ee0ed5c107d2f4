// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Cross-reference resolution: locating startxref, parsing the classic
// tabular and stream xref forms, following the update chain, and
// unpacking object streams.

package pdfread

import (
	"bytes"
	"fmt"

	"github.com/cwnourse/pdfread/logger"
)

// An xrefKind discriminates the three entry forms of a cross-reference
// section.
type xrefKind int

const (
	xrefFree xrefKind = iota
	xrefInUse
	xrefInStream
)

// An xrefEntry records where one object lives. For in-use entries
// offset is the absolute byte offset of the object; for free entries it
// is the next free object number; for in-stream entries container and
// idx locate the object inside an object stream.
type xrefEntry struct {
	kind      xrefKind
	ptr       objptr
	offset    int64
	container uint32
	idx       int
}

// A Section is one cross-reference section: its entries keyed by
// (object number, generation number), the trailer dictionary that
// accompanies it, and the section's own location. Sections are appended
// to the document in discovery order and never mutated thereafter.
type Section struct {
	entries map[objptr]xrefEntry
	order   []objptr
	trailer *dict
	offset  int64
	ptr     objptr // id of the XRef stream object; zero for the classic form
	stream  bool
	loc     int64 // classic form: the trailing startxref value, redundant but retained
}

// NumEntries returns the number of entries in the section.
func (s *Section) NumEntries() int { return len(s.order) }

// IsStream reports whether the section came from an XRef stream rather
// than a classic table.
func (s *Section) IsStream() bool { return s.stream }

// Offset returns the byte offset the section was parsed from.
func (s *Section) Offset() int64 { return s.offset }

// add records an entry unless the section already has one for the same
// key; within a single section the first record wins.
func (s *Section) add(e xrefEntry) {
	if _, ok := s.entries[e.ptr]; ok {
		return
	}
	s.entries[e.ptr] = e
	s.order = append(s.order, e.ptr)
}

// findStartXref scans the file in reverse from EOF, skipping non-digit
// bytes until the first digit run, and interprets that run (reversed)
// as the decimal byte offset of the main xref.
func (d *Document) findStartXref() (int64, error) {
	iter := d.src.reverseIter()
	var digits []byte
	for {
		b, ok := iter()
		if !ok {
			return 0, &XRefError{Detail: "no startxref offset found at end of file"}
		}
		if isDigit(b) {
			digits = append(digits, b)
			break
		}
	}
	for {
		b, ok := iter()
		if !ok || !isDigit(b) {
			break
		}
		digits = append(digits, b)
	}
	var off int64
	for i := len(digits) - 1; i >= 0; i-- {
		off = off*10 + int64(digits[i]-'0')
	}
	if off >= d.size {
		return 0, &XRefError{Detail: fmt.Sprintf("startxref offset %d outside file of size %d", off, d.size)}
	}
	logger.Debug(fmt.Sprintf("xref: startxref=%d", off), true)
	return off, nil
}

// loadAllXref parses the main xref section and every update reachable
// from it, /XRefStm before /Prev. Revisiting a location or stream id
// terminates that branch of the chain cleanly, which bounds traversal
// on malformed loops.
func (d *Document) loadAllXref() error {
	start, err := d.findStartXref()
	if err != nil {
		return err
	}
	d.startxref = start
	queue := []int64{start}
	for len(queue) > 0 {
		off := queue[0]
		queue = queue[1:]
		next, err := d.loadXref(off)
		if err != nil {
			return err
		}
		// depth-first so a section's own updates are parsed before
		// anything queued behind it
		queue = append(next, queue...)
	}
	if len(d.sections) == 0 {
		return &XRefError{Detail: "no cross-reference sections found"}
	}
	return nil
}

// loadXref parses one xref section at off and returns the follow-up
// locations named by its trailer, XRefStm first.
func (d *Document) loadXref(off int64) ([]int64, error) {
	if d.visited[off] {
		logger.Debug(fmt.Sprintf("xref: offset %d already parsed, terminating chain", off))
		return nil, nil
	}
	d.visited[off] = true

	if err := d.lx.seek(off); err != nil {
		return nil, &XRefError{Detail: "seeking xref section", Cause: err}
	}
	tok, err := d.lx.next()
	if err != nil {
		return nil, err
	}

	var sec *Section
	switch tok.kind {
	case tokXrefBegin:
		logger.Debug(fmt.Sprintf("xref: classic table at offset %d", off), true)
		sec, err = d.parseClassicXref(off)
	case tokInt:
		logger.Debug(fmt.Sprintf("xref: stream form at offset %d", off), true)
		d.lx.unreadToken(tok)
		sec, err = d.parseXrefStream(off)
	default:
		return nil, &XRefError{Detail: fmt.Sprintf("neither xref table nor stream at offset %d, found %s", off, tok.kind)}
	}
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, nil
	}

	d.sections = append(d.sections, sec)
	d.mergeTrailer(sec.trailer)

	var next []int64
	if v, ok := sec.trailer.get(name("XRefStm")); ok {
		if n, isInt := v.(int64); isInt {
			next = append(next, n)
		} else {
			return nil, &XRefError{Detail: fmt.Sprintf("XRefStm is not an integer: %s", objfmt(v))}
		}
	}
	if v, ok := sec.trailer.get(name("Prev")); ok {
		if n, isInt := v.(int64); isInt {
			next = append(next, n)
		} else {
			return nil, &XRefError{Detail: fmt.Sprintf("Prev is not an integer: %s", objfmt(v))}
		}
	}
	return next, nil
}

// mergeTrailer folds a newly discovered section trailer into the
// document trailer; later sections override earlier ones on identical
// keys.
func (d *Document) mergeTrailer(t *dict) {
	for _, k := range t.keys {
		d.trailer.set(k, t.m[k])
	}
}

// parseClassicXref reads the subsections and 20-byte entries of a
// tabular xref, the trailer dictionary, and the redundant trailing
// startxref value.
func (d *Document) parseClassicXref(off int64) (*Section, error) {
	sec := &Section{entries: make(map[objptr]xrefEntry), offset: off}
	for {
		tok, err := d.lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokTrailerBegin {
			break
		}
		if tok.kind != tokInt {
			return nil, &XRefError{Detail: fmt.Sprintf("malformed xref subsection header at offset %d: %s", tok.pos, tok.kind)}
		}
		first := tok.num
		tok, err = d.lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokInt || first < 0 || tok.num < 0 {
			return nil, &XRefError{Detail: fmt.Sprintf("malformed xref subsection header at offset %d", tok.pos)}
		}
		count := tok.num
		for i := int64(0); i < count; i++ {
			f1, err := d.lx.next()
			if err != nil {
				return nil, err
			}
			f2, err := d.lx.next()
			if err != nil {
				return nil, err
			}
			alloc, err := d.lx.next()
			if err != nil {
				return nil, err
			}
			if f1.kind != tokInt || f2.kind != tokInt {
				return nil, &XRefError{Detail: fmt.Sprintf("malformed xref entry in subsection starting at %d", first)}
			}
			num := uint32(first + i)
			gen := uint16(f2.num)
			switch alloc.kind {
			case tokXrefInUse:
				sec.add(xrefEntry{kind: xrefInUse, ptr: objptr{num, gen}, offset: f1.num})
			case tokXrefFree:
				sec.add(xrefEntry{kind: xrefFree, ptr: objptr{num, gen}, offset: f1.num})
			default:
				return nil, &XRefError{Detail: fmt.Sprintf("xref entry not terminated by n or f at offset %d", alloc.pos)}
			}
		}
	}

	trailer, err := d.bld.readValue()
	if err != nil {
		return nil, &XRefError{Detail: "reading trailer", Cause: err}
	}
	td, ok := trailer.(*dict)
	if !ok {
		return nil, &XRefError{Detail: "xref table not followed by trailer dictionary"}
	}
	sec.trailer = td

	// startxref INT after the trailer restates this section's location.
	tok, err := d.lx.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokXrefLoc {
		tok, err = d.lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokInt {
			return nil, &XRefError{Detail: fmt.Sprintf("startxref not followed by integer at offset %d", tok.pos)}
		}
		sec.loc = tok.num
	} else {
		d.lx.unreadToken(tok)
	}
	logger.Debug(fmt.Sprintf("xref: parsed classic table with %d entries", sec.NumEntries()), true)
	return sec, nil
}

// decodeInt interprets b as a big-endian unsigned integer.
func decodeInt(b []byte) int64 {
	var x int64
	for _, c := range b {
		x = x<<8 | int64(c)
	}
	return x
}

// parseXrefStream reads the stream-form xref: an indirect stream object
// with /Type /XRef whose decompressed body is fixed-width binary
// records consumed in /Index order.
func (d *Document) parseXrefStream(off int64) (*Section, error) {
	obj, err := d.bld.readValue()
	if err != nil {
		return nil, err
	}
	def, ok := obj.(objdef)
	if !ok {
		return nil, &XRefError{Detail: fmt.Sprintf("no indirect object at xref offset %d", off)}
	}
	if d.visitedIDs[def.ptr] {
		logger.Debug(fmt.Sprintf("xref: stream %d %d already parsed, terminating chain", def.ptr.id, def.ptr.gen))
		return nil, nil
	}
	d.visitedIDs[def.ptr] = true

	strm, ok := def.obj.(stream)
	if !ok {
		return nil, &XRefError{Detail: fmt.Sprintf("object at xref offset %d is not a stream", off)}
	}
	hdr := strm.hdr
	if t, _ := hdr.lookup(name("Type")).(name); t != "XRef" {
		return nil, &XRefError{Detail: "xref stream does not have /Type /XRef"}
	}

	size, ok := hdr.lookup(name("Size")).(int64)
	if !ok {
		return nil, &XRefError{Detail: "xref stream missing /Size"}
	}

	w, err := xrefFieldWidths(hdr)
	if err != nil {
		return nil, err
	}

	index, err := xrefIndex(hdr, size)
	if err != nil {
		return nil, err
	}

	data, err := decodeXrefBody(strm)
	if err != nil {
		return nil, err
	}

	sec := &Section{
		entries: make(map[objptr]xrefEntry),
		offset:  off,
		ptr:     def.ptr,
		stream:  true,
		trailer: hdr,
	}
	recWidth := w[0] + w[1] + w[2]
	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := int64(0); j < count; j++ {
			if pos+recWidth > len(data) {
				return nil, &XRefError{Detail: fmt.Sprintf("xref stream truncated after %d records", pos/recWidth)}
			}
			rec := data[pos : pos+recWidth]
			pos += recWidth
			typ := int64(1)
			if w[0] > 0 {
				typ = decodeInt(rec[:w[0]])
			}
			f2 := decodeInt(rec[w[0] : w[0]+w[1]])
			f3 := decodeInt(rec[w[0]+w[1]:])
			num := uint32(first + j)
			switch typ {
			case 0:
				sec.add(xrefEntry{kind: xrefFree, ptr: objptr{num, uint16(f3)}, offset: f2})
			case 1:
				sec.add(xrefEntry{kind: xrefInUse, ptr: objptr{num, uint16(f3)}, offset: f2})
			case 2:
				sec.add(xrefEntry{kind: xrefInStream, ptr: objptr{num, 0}, container: uint32(f2), idx: int(f3)})
			default:
				logger.Debug(fmt.Sprintf("xref: skipping record of unknown type %d for object %d", typ, num))
			}
		}
	}
	logger.Debug(fmt.Sprintf("xref: parsed stream %d %d with %d entries", def.ptr.id, def.ptr.gen, sec.NumEntries()), true)
	return sec, nil
}

// xrefFieldWidths validates /W. A zero first width defaults the record
// type to 1; a zero second width leaves no way to encode a location and
// is rejected.
func xrefFieldWidths(hdr *dict) ([3]int, error) {
	var w [3]int
	ww, ok := hdr.lookup(name("W")).(array)
	if !ok || len(ww) < 3 {
		return w, &XRefError{Detail: "xref stream missing /W [w1 w2 w3]"}
	}
	for i := 0; i < 3; i++ {
		n, ok := ww[i].(int64)
		if !ok || n < 0 {
			return w, &XRefError{Detail: fmt.Sprintf("invalid /W array %s", objfmt(ww))}
		}
		w[i] = int(n)
	}
	if w[1] == 0 {
		return w, &XRefError{Detail: "xref stream /W has w2 == 0, no way to encode a location"}
	}
	return w, nil
}

// xrefIndex returns the flattened (first, count) pairs of /Index,
// defaulting to [0 Size].
func xrefIndex(hdr *dict, size int64) ([]int64, error) {
	v, ok := hdr.get(name("Index"))
	if !ok {
		return []int64{0, size}, nil
	}
	arr, ok := v.(array)
	if !ok || len(arr)%2 != 0 {
		return nil, &XRefError{Detail: fmt.Sprintf("invalid /Index array %s", objfmt(v))}
	}
	out := make([]int64, len(arr))
	for i, e := range arr {
		n, ok := e.(int64)
		if !ok || n < 0 {
			return nil, &XRefError{Detail: fmt.Sprintf("invalid /Index array %s", objfmt(v))}
		}
		out[i] = n
	}
	return out, nil
}

// decodeXrefBody decompresses an xref or object stream body. Only
// FlateDecode (plus predictor) is accepted on this path; an absent
// /Filter means the body is stored raw.
func decodeXrefBody(strm stream) ([]byte, error) {
	names, parms, err := filterChain(strm.hdr)
	if err != nil {
		return nil, err
	}
	switch len(names) {
	case 0:
		return strm.body, nil
	case 1:
		if names[0] != "FlateDecode" && names[0] != "Fl" {
			return nil, &UnsupportedFilter{Name: names[0]}
		}
		return flateDecode(strm.body, parms[0])
	}
	return nil, &UnsupportedFilter{Name: fmt.Sprint(names)}
}

// An objStm caches one parsed object stream: the inflated body plus the
// id and offset tables from its header, so child lookups do not
// re-inflate the container.
type objStm struct {
	data  []byte
	ids   []uint32
	offs  []int64
	first int64
}

// loadObjStm fetches and parses the object stream held in container,
// caching the result.
func (d *Document) loadObjStm(container uint32) (*objStm, error) {
	if stm, ok := d.objstms[container]; ok {
		return stm, nil
	}
	v, err := d.GetObject(container, 0)
	if err != nil {
		return nil, err
	}
	strm, ok := v.data.(stream)
	if !ok {
		return nil, &XRefError{Detail: fmt.Sprintf("object stream container %d is not a stream", container)}
	}
	if t, _ := strm.hdr.lookup(name("Type")).(name); t != "ObjStm" {
		return nil, &XRefError{Detail: fmt.Sprintf("object stream container %d does not have /Type /ObjStm", container)}
	}
	n, ok := strm.hdr.lookup(name("N")).(int64)
	if !ok || n < 0 {
		return nil, &XRefError{Detail: fmt.Sprintf("object stream %d missing /N", container)}
	}
	first, ok := strm.hdr.lookup(name("First")).(int64)
	if !ok || first < 0 {
		return nil, &XRefError{Detail: fmt.Sprintf("object stream %d missing /First", container)}
	}
	data, err := decodeXrefBody(strm)
	if err != nil {
		return nil, err
	}

	// The body begins with N (object number, offset) integer pairs.
	src := newSource(bytes.NewReader(data), int64(len(data)))
	lx := newLexer(src)
	stm := &objStm{data: data, first: first}
	for i := int64(0); i < n; i++ {
		t1, err := lx.next()
		if err != nil {
			return nil, err
		}
		t2, err := lx.next()
		if err != nil {
			return nil, err
		}
		if t1.kind != tokInt || t2.kind != tokInt {
			return nil, &XRefError{Detail: fmt.Sprintf("object stream %d has a malformed header", container)}
		}
		stm.ids = append(stm.ids, uint32(t1.num))
		stm.offs = append(stm.offs, t2.num)
	}
	d.objstms[container] = stm
	logger.Debug(fmt.Sprintf("objstm: parsed container %d with %d objects", container, len(stm.ids)), true)
	return stm, nil
}

// objFromStm materializes the idx'th object of an object stream. All
// contained objects have generation number 0.
func (d *Document) objFromStm(container uint32, idx int, num uint32) (object, error) {
	stm, err := d.loadObjStm(container)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(stm.ids) {
		return nil, &XRefError{Detail: fmt.Sprintf("index %d outside object stream %d of %d objects", idx, container, len(stm.ids))}
	}
	if stm.ids[idx] != num {
		return nil, &XRefError{Detail: fmt.Sprintf("object stream %d entry %d holds object %d, expected %d", container, idx, stm.ids[idx], num)}
	}
	src := newSource(bytes.NewReader(stm.data), int64(len(stm.data)))
	lx := newLexer(src)
	if err := lx.seek(stm.first + stm.offs[idx]); err != nil {
		return nil, &XRefError{Detail: "seeking into object stream", Cause: err}
	}
	return newBuilder(lx).readValue()
}
