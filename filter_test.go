// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deflate compresses data with zlib for use as stream bodies in tests.
// The trailing space keeps the endstream scan away from the compressed
// bytes (a body ending in CR would otherwise lose it to the CR LF
// terminator); the inflater never reads past the checksum.
func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	buf.WriteByte(' ')
	return buf.Bytes()
}

func TestInflate(t *testing.T) {
	want := []byte("hello stream world")
	got, err := inflate(deflate(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInflateCorrupt(t *testing.T) {
	_, err := inflate([]byte("not zlib data"))
	var cs *CorruptStream
	require.ErrorAs(t, err, &cs)
}

func TestUnpredictNone(t *testing.T) {
	data := []byte{1, 2, 3}
	got, err := unpredict(data, predictorParams{predictor: 1, columns: 1, colors: 1, bpc: 8})
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestUnpredictUp(t *testing.T) {
	// two columns, three rows, all tagged Up; the synthetic row above
	// the first is zero, so the first row passes through
	in := []byte{
		2, 10, 20,
		2, 1, 1,
		2, 255, 0,
	}
	got, err := unpredict(in, predictorParams{predictor: 12, columns: 2, colors: 1, bpc: 8})
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 11, 21, 10, 21}, got, "Up adds the previous row modulo 256")
}

func TestUnpredictTagZero(t *testing.T) {
	in := []byte{
		0, 5, 6,
		2, 1, 1,
	}
	got, err := unpredict(in, predictorParams{predictor: 12, columns: 2, colors: 1, bpc: 8})
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6, 6, 7}, got)
}

func TestUnpredictUnsupportedTag(t *testing.T) {
	in := []byte{1, 5, 6}
	_, err := unpredict(in, predictorParams{predictor: 12, columns: 2, colors: 1, bpc: 8})
	var up *UnsupportedPredictor
	require.ErrorAs(t, err, &up)
	assert.Equal(t, 1, up.Code)
}

func TestUnpredictUnsupportedParams(t *testing.T) {
	t.Run("colors", func(t *testing.T) {
		_, err := unpredict([]byte{0, 1}, predictorParams{predictor: 12, columns: 1, colors: 3, bpc: 8})
		assert.Error(t, err)
	})
	t.Run("bits per component", func(t *testing.T) {
		_, err := unpredict([]byte{0, 1}, predictorParams{predictor: 12, columns: 1, colors: 1, bpc: 1})
		assert.Error(t, err)
	})
	t.Run("tiff predictor", func(t *testing.T) {
		_, err := unpredict([]byte{0, 1}, predictorParams{predictor: 2, columns: 1, colors: 1, bpc: 8})
		var up *UnsupportedPredictor
		assert.ErrorAs(t, err, &up)
	})
}

func TestUnpredictRaggedRows(t *testing.T) {
	_, err := unpredict([]byte{2, 1, 1, 2}, predictorParams{predictor: 12, columns: 2, colors: 1, bpc: 8})
	var cs *CorruptStream
	require.ErrorAs(t, err, &cs)
}

func TestPredictorFromParms(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := predictorFromParms(nil)
		assert.Equal(t, predictorParams{predictor: 1, columns: 1, colors: 1, bpc: 8}, p)
	})
	t.Run("explicit", func(t *testing.T) {
		d := newDict()
		d.set(name("Predictor"), int64(12))
		d.set(name("Columns"), int64(4))
		p := predictorFromParms(d)
		assert.Equal(t, 12, p.predictor)
		assert.Equal(t, 4, p.columns)
	})
}

func streamOf(hdr *dict, body []byte) stream {
	return stream{hdr: hdr, body: body}
}

func TestDecodeStreamFlate(t *testing.T) {
	want := []byte("content bytes")
	hdr := newDict()
	hdr.set(name("Filter"), name("FlateDecode"))
	got, err := decodeStream(streamOf(hdr, deflate(t, want)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeStreamFlateWithPredictor(t *testing.T) {
	raw := []byte{
		2, 10, 20,
		2, 1, 1,
	}
	hdr := newDict()
	hdr.set(name("Filter"), name("FlateDecode"))
	parms := newDict()
	parms.set(name("Predictor"), int64(12))
	parms.set(name("Columns"), int64(2))
	hdr.set(name("DecodeParms"), parms)
	got, err := decodeStream(streamOf(hdr, deflate(t, raw)))
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 11, 21}, got)
}

func TestDecodeStreamASCII85(t *testing.T) {
	want := []byte("some plain data")
	var buf bytes.Buffer
	enc := ascii85.NewEncoder(&buf)
	_, err := enc.Write(want)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	buf.WriteString("~>")

	hdr := newDict()
	hdr.set(name("Filter"), name("ASCII85Decode"))
	got, err := decodeStream(streamOf(hdr, buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeStreamFilterArray(t *testing.T) {
	want := []byte("twice encoded")
	inner := deflate(t, want)
	var buf bytes.Buffer
	enc := ascii85.NewEncoder(&buf)
	_, err := enc.Write(inner)
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	hdr := newDict()
	hdr.set(name("Filter"), array{name("ASCII85Decode"), name("FlateDecode")})
	got, err := decodeStream(streamOf(hdr, buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeStreamUnsupportedFilter(t *testing.T) {
	hdr := newDict()
	hdr.set(name("Filter"), name("DCTDecode"))
	_, err := decodeStream(streamOf(hdr, []byte("jpeg bits")))
	var uf *UnsupportedFilter
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "DCTDecode", uf.Name)
}

func TestDecodeStreamNoFilter(t *testing.T) {
	hdr := newDict()
	got, err := decodeStream(streamOf(hdr, []byte("raw")))
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), got)
}
