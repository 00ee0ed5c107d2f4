// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOf(data string) *builder {
	return newBuilder(lexOf(data))
}

func TestBuildScalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want object
	}{
		{"int", "42", int64(42)},
		{"real", "2.5", float64(2.5)},
		{"bool", "true", true},
		{"null", "null", nil},
		{"string", "(hi)", "hi"},
		{"name", "/N", name("N")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := buildOf(tt.in).readValue()
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj)
		})
	}
}

func TestBuildArray(t *testing.T) {
	obj, err := buildOf("[1 2.5 (s) /N [true null]]").readValue()
	require.NoError(t, err)
	arr, ok := obj.(array)
	require.True(t, ok)
	require.Len(t, arr, 5)
	assert.Equal(t, int64(1), arr[0])
	assert.Equal(t, 2.5, arr[1])
	assert.Equal(t, "s", arr[2])
	assert.Equal(t, name("N"), arr[3])
	inner, ok := arr[4].(array)
	require.True(t, ok)
	assert.Equal(t, array{true, nil}, inner)
}

func TestBuildDict(t *testing.T) {
	obj, err := buildOf("<</A 1/B 2.5>>").readValue()
	require.NoError(t, err)
	d, ok := obj.(*dict)
	require.True(t, ok)
	assert.Equal(t, 2, d.len())
	assert.Equal(t, int64(1), d.lookup(name("A")))
	assert.Equal(t, 2.5, d.lookup(name("B")))
}

func TestBuildDictKeyOrderPreserved(t *testing.T) {
	obj, err := buildOf("<</Z 1/A 2/M 3>>").readValue()
	require.NoError(t, err)
	d := obj.(*dict)
	assert.Equal(t, []name{"Z", "A", "M"}, d.keys)
}

func TestBuildDictDuplicateKeyLastWins(t *testing.T) {
	obj, err := buildOf("<</A 1/A 2>>").readValue()
	require.NoError(t, err)
	d := obj.(*dict)
	assert.Equal(t, 1, d.len(), "duplicate key must not appear twice")
	assert.Equal(t, int64(2), d.lookup(name("A")))
}

func TestBuildDictOddElements(t *testing.T) {
	_, err := buildOf("<</A 1/B>>").readValue()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestBuildDictNonNameKey(t *testing.T) {
	_, err := buildOf("<<1 2>>").readValue()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestBuildReference(t *testing.T) {
	obj, err := buildOf("7 0 R").readValue()
	require.NoError(t, err)
	assert.Equal(t, objptr{id: 7, gen: 0}, obj)
}

func TestBuildReferenceInContainers(t *testing.T) {
	obj, err := buildOf("<</Parent 3 1 R /Kids [4 0 R 5 0 R]>>").readValue()
	require.NoError(t, err)
	d := obj.(*dict)
	assert.Equal(t, objptr{id: 3, gen: 1}, d.lookup(name("Parent")))
	kids := d.lookup(name("Kids")).(array)
	assert.Equal(t, array{objptr{id: 4}, objptr{id: 5}}, kids)
}

func TestBuildReferenceUnderflow(t *testing.T) {
	_, err := buildOf("[1 R]").readValue()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestBuildLoneIntNotConsumedByLookback(t *testing.T) {
	// two plain integers in an array stay two integers
	obj, err := buildOf("[1 2]").readValue()
	require.NoError(t, err)
	assert.Equal(t, array{int64(1), int64(2)}, obj)
}

func TestBuildIndirectObject(t *testing.T) {
	obj, err := buildOf("10 0 obj<</A 1/B 2.5>>endobj").readValue()
	require.NoError(t, err)
	def, ok := obj.(objdef)
	require.True(t, ok)
	assert.Equal(t, objptr{id: 10, gen: 0}, def.ptr)
	d := def.obj.(*dict)
	assert.Equal(t, int64(1), d.lookup(name("A")))
	assert.Equal(t, 2.5, d.lookup(name("B")))
}

func TestBuildIndirectString(t *testing.T) {
	obj, err := buildOf(`5 0 obj(Hello \(world\))endobj`).readValue()
	require.NoError(t, err)
	def := obj.(objdef)
	s, ok := def.obj.(string)
	require.True(t, ok)
	assert.Equal(t, "Hello (world)", s)
	assert.Len(t, s, 13)
}

func TestBuildIndirectScalar(t *testing.T) {
	obj, err := buildOf("6 0 obj 42 endobj").readValue()
	require.NoError(t, err)
	def := obj.(objdef)
	assert.Equal(t, int64(42), def.obj)
}

func TestBuildMissingEndobj(t *testing.T) {
	_, err := buildOf("6 0 obj 42 43").readValue()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestBuildStream(t *testing.T) {
	obj, err := buildOf("3 0 obj<</Length 4>>stream\nABCD\nendstream endobj").readValue()
	require.NoError(t, err)
	def := obj.(objdef)
	strm, ok := def.obj.(stream)
	require.True(t, ok)
	assert.Equal(t, []byte("ABCD"), strm.body)
	assert.Equal(t, int64(4), strm.hdr.lookup(name("Length")))
	assert.Equal(t, objptr{id: 3, gen: 0}, strm.ptr)
}

func TestBuildStreamMissingLengthRecorded(t *testing.T) {
	obj, err := buildOf("3 0 obj<</Type /X>>stream\nABCD\nendstream endobj").readValue()
	require.NoError(t, err)
	strm := obj.(objdef).obj.(stream)
	assert.Equal(t, int64(4), strm.hdr.lookup(name("Length")))
}

func TestBuildCommentsIgnored(t *testing.T) {
	obj, err := buildOf("[1 % comment\n2]").readValue()
	require.NoError(t, err)
	assert.Equal(t, array{int64(1), int64(2)}, obj)
}

func TestBuildPrematureEOF(t *testing.T) {
	for _, in := range []string{"[1 2", "<</A 1", ""} {
		t.Run(in, func(t *testing.T) {
			_, err := buildOf(in).readValue()
			require.ErrorIs(t, err, ErrUnexpectedEOF)
		})
	}
}
