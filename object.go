// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"bytes"
	"fmt"
	"strconv"
)

// An object is the internal representation of a single PDF value, one of
// the following Go types:
//
//	nil, the null object
//	bool, a boolean
//	int64, an integer
//	float64, a real
//	string, a string (raw bytes, literal or hex form, never decoded)
//	name, a name without the leading slash
//	array, an array of objects
//	*dict, a dictionary with insertion order preserved
//	stream, a stream header dictionary plus its raw body bytes
//	objptr, an indirect reference
//	objdef, an indirect object definition
type object interface{}

// A name is a PDF name constant, as in /Helvetica, with the slash stripped.
type name string

// An array is an ordered sequence of objects.
type array []object

// An objptr is a reference to an indirect object: the pair of object
// number and generation number written N G R.
type objptr struct {
	id  uint32
	gen uint16
}

// An objdef is a top-level indirect object definition: N G obj ... endobj.
type objdef struct {
	ptr objptr
	obj object
}

// A stream pairs a parameter dictionary with the raw, undecoded bytes of
// the stream body as scanned by the lexer.
type stream struct {
	hdr  *dict
	body []byte
	ptr  objptr
}

// A dict is a dictionary of name-object pairs. Keys are unique and their
// insertion order is preserved, so the original key order of a trailer or
// object can be recovered when re-emitting the file.
type dict struct {
	keys []name
	m    map[name]object
}

func newDict() *dict {
	return &dict{m: make(map[name]object)}
}

// set inserts or replaces the value for k. A replaced key keeps its
// original position in the key order.
func (d *dict) set(k name, v object) {
	if _, ok := d.m[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.m[k] = v
}

func (d *dict) get(k name) (object, bool) {
	v, ok := d.m[k]
	return v, ok
}

func (d *dict) lookup(k name) object {
	return d.m[k]
}

func (d *dict) len() int {
	return len(d.keys)
}

// A Value is a single PDF value, such as an integer, dictionary, or
// array. The zero Value is a PDF null (Kind() == Null, IsNull() == true).
type Value struct {
	d    *Document
	data object
}

// IsNull reports whether the value is a null. It is equivalent to Kind() == Null.
func (v Value) IsNull() bool {
	return v.data == nil
}

// A ValueKind specifies the kind of data underlying a Value.
type ValueKind int

// The PDF value kinds.
const (
	Null ValueKind = iota
	Bool
	Integer
	Real
	String
	Name
	Dict
	Array
	Stream
	Reference
)

var valueKindNames = [...]string{
	Null:      "Null",
	Bool:      "Bool",
	Integer:   "Integer",
	Real:      "Real",
	String:    "String",
	Name:      "Name",
	Dict:      "Dict",
	Array:     "Array",
	Stream:    "Stream",
	Reference: "Reference",
}

func (k ValueKind) String() string {
	if k >= 0 && int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Kind reports the kind of value underlying v.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	default:
		return Null
	case bool:
		return Bool
	case int64:
		return Integer
	case float64:
		return Real
	case string:
		return String
	case name:
		return Name
	case *dict:
		return Dict
	case array:
		return Array
	case stream:
		return Stream
	case objptr:
		return Reference
	}
}

// String returns a textual representation of the value v.
// Note that String is not the accessor for values with Kind() == String.
// To access such values, see RawString.
func (v Value) String() string {
	return objfmt(v.data)
}

func objfmt(x object) string {
	switch x := x.(type) {
	default:
		return fmt.Sprint(x)
	case string:
		return strconv.Quote(x)
	case name:
		return "/" + string(x)
	case *dict:
		var buf bytes.Buffer
		buf.WriteString("<<")
		for i, k := range x.keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("/")
			buf.WriteString(string(k))
			buf.WriteString(" ")
			buf.WriteString(objfmt(x.m[k]))
		}
		buf.WriteString(">>")
		return buf.String()

	case array:
		var buf bytes.Buffer
		buf.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(objfmt(elem))
		}
		buf.WriteString("]")
		return buf.String()

	case stream:
		return fmt.Sprintf("%v + %d body bytes", objfmt(x.hdr), len(x.body))

	case objptr:
		return fmt.Sprintf("%d %d R", x.id, x.gen)

	case objdef:
		return fmt.Sprintf("{%d %d obj}%v", x.ptr.id, x.ptr.gen, objfmt(x.obj))
	}
}

// Bool returns v's boolean value.
// If v.Kind() != Bool, Bool returns false.
func (v Value) Bool() bool {
	x, ok := v.data.(bool)
	if !ok {
		return false
	}
	return x
}

// Int64 returns v's int64 value.
// If v.Kind() != Integer, Int64 returns 0.
func (v Value) Int64() int64 {
	x, ok := v.data.(int64)
	if !ok {
		return 0
	}
	return x
}

// Float64 returns v's float64 value, converting from integer if necessary.
// If v.Kind() != Real and v.Kind() != Integer, Float64 returns 0.
func (v Value) Float64() float64 {
	x, ok := v.data.(float64)
	if !ok {
		x, ok := v.data.(int64)
		if ok {
			return float64(x)
		}
		return 0
	}
	return x
}

// RawString returns v's string value as raw bytes. In literal strings
// each backslash is dropped and the byte after it kept verbatim (so \(
// yields "(" and \n yields "n"); hex strings keep their hex digits
// undecoded.
// If v.Kind() != String, RawString returns the empty string.
func (v Value) RawString() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	return x
}

// Text returns v's string value interpreted as a "text string" (defined
// in the PDF spec) and converted to UTF-8.
// If v.Kind() != String, Text returns the empty string.
func (v Value) Text() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	return decodeTextString(x)
}

// Name returns v's name value.
// If v.Kind() != Name, Name returns the empty string.
// The returned name does not include the leading slash:
// if v corresponds to the name written using the syntax /Helvetica,
// Name() == "Helvetica".
func (v Value) Name() string {
	x, ok := v.data.(name)
	if !ok {
		return ""
	}
	return string(x)
}

// Ptr returns the object and generation numbers of the reference v.
// If v.Kind() != Reference, Ptr returns (0, 0).
func (v Value) Ptr() (uint32, uint16) {
	x, ok := v.data.(objptr)
	if !ok {
		return 0, 0
	}
	return x.id, x.gen
}

// Key returns the value associated with the given name key in the
// dictionary v, resolving indirect references through the document.
// Like the result of the Name method, the key should not include a
// leading slash.
// If v is a stream, Key applies to the stream's parameter dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Key returns a null Value.
func (v Value) Key(key string) Value {
	x, ok := v.data.(*dict)
	if !ok {
		strm, ok := v.data.(stream)
		if !ok {
			return Value{}
		}
		x = strm.hdr
	}
	return v.d.resolve(x.lookup(name(key)))
}

// Keys returns the keys of the dictionary v in insertion order.
// If v is a stream, Keys applies to the stream's parameter dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Keys returns nil.
func (v Value) Keys() []string {
	x, ok := v.data.(*dict)
	if !ok {
		strm, ok := v.data.(stream)
		if !ok {
			return nil
		}
		x = strm.hdr
	}
	keys := make([]string, 0, len(x.keys))
	for _, k := range x.keys {
		keys = append(keys, string(k))
	}
	return keys
}

// Index returns the i'th element in the array v, resolving indirect
// references through the document.
// If v.Kind() != Array or if i is outside the array bounds,
// Index returns a null Value.
func (v Value) Index(i int) Value {
	x, ok := v.data.(array)
	if !ok || i < 0 || i >= len(x) {
		return Value{}
	}
	return v.d.resolve(x[i])
}

// Len returns the length of the array v.
// If v.Kind() != Array, Len returns 0.
func (v Value) Len() int {
	x, ok := v.data.(array)
	if !ok {
		return 0
	}
	return len(x)
}

// Body returns the raw, undecoded body bytes of the stream v.
// If v.Kind() != Stream, Body returns nil.
func (v Value) Body() []byte {
	x, ok := v.data.(stream)
	if !ok {
		return nil
	}
	return x.body
}

// Resolve replaces the reference v with the object it names. Only one
// reference is followed: if that object is itself a reference, the
// result is a Reference value. Non-reference values resolve to
// themselves.
func (v Value) Resolve() Value {
	if _, ok := v.data.(objptr); !ok {
		return v
	}
	return v.d.resolve(v.data)
}
