// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, Null, v.Kind())
	assert.Equal(t, int64(0), v.Int64())
	assert.Equal(t, "", v.Name())
	assert.Nil(t, v.Keys())
	assert.Equal(t, 0, v.Len())
}

func TestValueAccessorsZeroOnWrongKind(t *testing.T) {
	v := Value{data: int64(7)}
	assert.Equal(t, Integer, v.Kind())
	assert.Equal(t, "", v.RawString())
	assert.False(t, v.Bool())
	assert.True(t, v.Key("A").IsNull())
	assert.True(t, v.Index(0).IsNull())
}

func TestValueFloat64FromInteger(t *testing.T) {
	v := Value{data: int64(3)}
	assert.Equal(t, 3.0, v.Float64())
}

func TestValueKindString(t *testing.T) {
	assert.Equal(t, "Stream", Stream.String())
	assert.Equal(t, "Reference", Reference.String())
}

func TestDictInsertionOrder(t *testing.T) {
	d := newDict()
	d.set(name("Z"), int64(1))
	d.set(name("A"), int64(2))
	d.set(name("Z"), int64(3))
	assert.Equal(t, []name{"Z", "A"}, d.keys, "replaced key keeps its position")
	assert.Equal(t, int64(3), d.lookup(name("Z")))
}

func TestValueStringFormatting(t *testing.T) {
	d := newDict()
	d.set(name("A"), int64(1))
	d.set(name("B"), array{objptr{id: 4, gen: 0}, true})
	v := Value{data: d}
	assert.Equal(t, "<</A 1 /B [4 0 R true]>>", v.String())
}

func TestValuePtr(t *testing.T) {
	v := Value{data: objptr{id: 12, gen: 3}}
	require.Equal(t, Reference, v.Kind())
	num, gen := v.Ptr()
	assert.Equal(t, uint32(12), num)
	assert.Equal(t, uint16(3), gen)
}

func TestValueResolveDirect(t *testing.T) {
	v := Value{data: int64(5)}
	assert.Equal(t, v, v.Resolve(), "non-references resolve to themselves")
}
