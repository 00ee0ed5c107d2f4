// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func srcOf(data string) *source {
	return newSource(bytes.NewReader([]byte(data)), int64(len(data)))
}

func TestSourceNext(t *testing.T) {
	s := srcOf("abc")
	for _, want := range []byte("abc") {
		b, err := s.next()
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
	_, err := s.next()
	assert.Equal(t, io.EOF, err)
}

func TestSourceOffset(t *testing.T) {
	s := srcOf("abcdef")
	_, _ = s.next()
	_, _ = s.next()
	assert.Equal(t, int64(1), s.offset(), "offset reports the most recently returned byte")
}

func TestSourceSeek(t *testing.T) {
	s := srcOf("abcdef")
	require.NoError(t, s.seek(4))
	b, err := s.next()
	require.NoError(t, err)
	assert.Equal(t, byte('e'), b)

	assert.Error(t, s.seek(100), "seek past end must fail")
	assert.Error(t, s.seek(-1))
}

func TestSourceLineCounting(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		lines int
	}{
		{"no newline", "abc", 1},
		{"lf", "a\nb", 2},
		{"crlf counts once", "a\r\nb", 2},
		{"cr run counts each", "a\r\r\rb", 4},
		{"cr run then crlf", "a\r\r\r\nb", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := srcOf(tt.data)
			for {
				if _, err := s.next(); err != nil {
					break
				}
			}
			assert.Equal(t, tt.lines, s.line)
		})
	}
}

func TestSourceReverseIter(t *testing.T) {
	s := srcOf("abc")
	iter := s.reverseIter()
	var got []byte
	for {
		b, ok := iter()
		if !ok {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []byte("cba"), got)
}

func TestSourceLargeInput(t *testing.T) {
	// cross several chunk boundaries
	data := bytes.Repeat([]byte("x"), 3*sourceChunk+7)
	s := newSource(bytes.NewReader(data), int64(len(data)))
	n := 0
	for {
		if _, err := s.next(); err != nil {
			break
		}
		n++
	}
	assert.Equal(t, len(data), n)
}
