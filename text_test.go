// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTextString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "plain text", "plain text"},
		{"utf16 bom", "\xfe\xff\x00H\x00i", "Hi"},
		{"utf16 non-latin", "\xfe\xff\x30\x42", "あ"},
		{"pdfdoc bullet", "a\x80b", "a•b"},
		{"pdfdoc em dash", "x\x84y", "x—y"},
		{"pdfdoc euro", "\xa0", "€"},
		{"latin-1 range", "caf\xe9", "café"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeTextString(tt.in))
		})
	}
}

func TestValueText(t *testing.T) {
	v := Value{data: "\xfe\xff\x00O\x00K"}
	assert.Equal(t, "OK", v.Text())
	assert.Equal(t, "", Value{data: int64(1)}.Text())
}
