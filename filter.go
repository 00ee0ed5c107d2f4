// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Stream decoding: zlib inflate, PNG predictor reversal, and the
// general filter chain exposed through Value.Reader.

package pdfread

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"

	"github.com/cwnourse/pdfread/logger"
	"github.com/hhrutter/lzw"
)

// inflate decompresses RFC 1950/1951 zlib data.
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &CorruptStream{Detail: "zlib header", Cause: err}
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, &CorruptStream{Detail: "inflate", Cause: err}
	}
	return out, nil
}

// predictorParams carries the /DecodeParms fields that drive predictor
// reversal.
type predictorParams struct {
	predictor int
	columns   int
	colors    int
	bpc       int
}

// predictorFromParms reads Predictor, Columns, Colors, and
// BitsPerComponent out of a DecodeParms dictionary, applying the
// defaults 1, 1, 1, 8.
func predictorFromParms(parms *dict) predictorParams {
	p := predictorParams{predictor: 1, columns: 1, colors: 1, bpc: 8}
	if parms == nil {
		return p
	}
	if v, ok := parms.lookup(name("Predictor")).(int64); ok {
		p.predictor = int(v)
	}
	if v, ok := parms.lookup(name("Columns")).(int64); ok {
		p.columns = int(v)
	}
	if v, ok := parms.lookup(name("Colors")).(int64); ok {
		p.colors = int(v)
	}
	if v, ok := parms.lookup(name("BitsPerComponent")).(int64); ok {
		p.bpc = int(v)
	}
	return p
}

// unpredict reverses the PNG-family predictor (Predictor >= 10): the
// data is rows of columns+1 bytes, the first byte of each row a per-row
// tag. Tag 0 is no prediction; tag 2 is Up, each byte the sum of the
// input byte and the byte in the same column of the previous row modulo
// 256, with an all-zero row above the first. Other tags, Colors != 1,
// and BitsPerComponent != 8 are unsupported.
func unpredict(data []byte, p predictorParams) ([]byte, error) {
	if p.predictor <= 1 {
		return data, nil
	}
	if p.predictor < 10 {
		return nil, &UnsupportedPredictor{Code: p.predictor}
	}
	if p.colors != 1 {
		return nil, fmt.Errorf("predictor: unsupported Colors %d (want 1)", p.colors)
	}
	if p.bpc != 8 {
		return nil, fmt.Errorf("predictor: unsupported BitsPerComponent %d (want 8)", p.bpc)
	}
	if p.columns < 1 {
		return nil, fmt.Errorf("predictor: invalid Columns %d", p.columns)
	}
	rowLen := p.columns + 1
	if len(data)%rowLen != 0 {
		return nil, &CorruptStream{Detail: fmt.Sprintf("predicted data of %d bytes is not a whole number of %d-byte rows", len(data), rowLen)}
	}
	out := make([]byte, 0, len(data)/rowLen*p.columns)
	prev := make([]byte, p.columns)
	for i := 0; i < len(data); i += rowLen {
		row := data[i : i+rowLen]
		switch row[0] {
		case 0:
			copy(prev, row[1:])
		case 2:
			for j, b := range row[1:] {
				prev[j] += b
			}
		default:
			return nil, &UnsupportedPredictor{Code: int(row[0])}
		}
		out = append(out, prev...)
	}
	return out, nil
}

// flateDecode is the one decode path the core itself performs: inflate
// followed by predictor reversal. The xref resolver and the
// object-stream parser both go through here.
func flateDecode(data []byte, parms *dict) ([]byte, error) {
	out, err := inflate(data)
	if err != nil {
		return nil, err
	}
	return unpredict(out, predictorFromParms(parms))
}

// filterChain normalizes /Filter and /DecodeParms into parallel slices.
func filterChain(hdr *dict) (names []string, parms []*dict, err error) {
	switch f := hdr.lookup(name("Filter")).(type) {
	case nil:
	case name:
		names = []string{string(f)}
	case array:
		for _, e := range f {
			n, ok := e.(name)
			if !ok {
				return nil, nil, &CorruptStream{Detail: fmt.Sprintf("non-name filter %s", objfmt(e))}
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, &CorruptStream{Detail: fmt.Sprintf("invalid /Filter %s", objfmt(f))}
	}

	parms = make([]*dict, len(names))
	switch p := hdr.lookup(name("DecodeParms")).(type) {
	case nil:
	case *dict:
		if len(parms) > 0 {
			parms[0] = p
		}
	case array:
		for i := range parms {
			if i < len(p) {
				if d, ok := p[i].(*dict); ok {
					parms[i] = d
				}
			}
		}
	}
	return names, parms, nil
}

// decodeStream applies the full filter chain to a stream body:
// FlateDecode (with predictor), LZWDecode (PDF early-change variant),
// and ASCII85Decode. Anything else is an UnsupportedFilter error.
func decodeStream(s stream) ([]byte, error) {
	names, parms, err := filterChain(s.hdr)
	if err != nil {
		return nil, err
	}
	data := s.body
	for i, fn := range names {
		logger.Debug(fmt.Sprintf("filter: applying %s", fn))
		switch fn {
		case "FlateDecode", "Fl":
			data, err = flateDecode(data, parms[i])
		case "LZWDecode", "LZW":
			data, err = lzwDecode(data, parms[i])
		case "ASCII85Decode", "A85":
			data, err = ascii85Decode(data)
		default:
			return nil, &UnsupportedFilter{Name: fn}
		}
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func lzwDecode(data []byte, parms *dict) ([]byte, error) {
	earlyChange := true
	if parms != nil {
		if v, ok := parms.lookup(name("EarlyChange")).(int64); ok {
			earlyChange = v != 0
		}
	}
	rc := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, &CorruptStream{Detail: "lzw", Cause: err}
	}
	return unpredict(out, predictorFromParms(parms))
}

func ascii85Decode(data []byte) ([]byte, error) {
	dec := ascii85.NewDecoder(newAlphaReader(bytes.NewReader(data)))
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, &CorruptStream{Detail: "ascii85", Cause: err}
	}
	return out, nil
}

// An alphaReader passes through only the ascii85 alphabet, dropping
// whitespace, and stops at the ~ of the ~> terminator, which
// encoding/ascii85 does not accept.
type alphaReader struct {
	r    io.Reader
	done bool
}

func newAlphaReader(r io.Reader) *alphaReader {
	return &alphaReader{r: r}
}

func (a *alphaReader) Read(p []byte) (int, error) {
	if a.done {
		return 0, io.EOF
	}
	buf := make([]byte, len(p))
	n, err := a.r.Read(buf)
	j := 0
	for _, b := range buf[:n] {
		if b == '~' {
			a.done = true
			break
		}
		if (b >= '!' && b <= 'u') || b == 'z' {
			p[j] = b
			j++
		}
	}
	if a.done {
		if j == 0 {
			return 0, io.EOF
		}
		return j, nil
	}
	if j == 0 && n > 0 && err == nil {
		return a.Read(p)
	}
	return j, err
}

type errorReadCloser struct {
	err error
}

func (e *errorReadCloser) Read([]byte) (int, error) {
	return 0, e.err
}

func (e *errorReadCloser) Close() error {
	return e.err
}

// Reader returns the decoded data contained in the stream v.
// If v.Kind() != Stream, Reader returns a ReadCloser that responds to
// all reads with a "stream not present" error; decode failures are
// reported the same way.
func (v Value) Reader() io.ReadCloser {
	x, ok := v.data.(stream)
	if !ok {
		logger.Error("stream not present")
		return &errorReadCloser{fmt.Errorf("stream not present")}
	}
	data, err := decodeStream(x)
	if err != nil {
		logger.Error(err.Error())
		return &errorReadCloser{err}
	}
	return io.NopCloser(bytes.NewReader(data))
}

// DecodedBytes returns the stream body with the filter chain applied.
func (v Value) DecodedBytes() ([]byte, error) {
	x, ok := v.data.(stream)
	if !ok {
		return nil, fmt.Errorf("stream not present")
	}
	return decodeStream(x)
}
