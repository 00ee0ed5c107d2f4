// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Decoding of PDF "text strings": UTF-16BE with a byte order mark, or
// PDFDocEncoding otherwise.

package pdfread

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// decodeTextString converts a raw text string to UTF-8. Strings opening
// with the UTF-16 byte order mark are big-endian UTF-16 per the PDF
// spec; everything else is PDFDocEncoding.
func decodeTextString(s string) string {
	if strings.HasPrefix(s, "\xfe\xff") {
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.String(s[2:])
		if err != nil {
			return s
		}
		return out
	}
	return pdfDocDecode(s)
}

// pdfDocSpecial maps the PDFDocEncoding code points that disagree with
// Unicode (ISO 32000-2 Annex D). Bytes outside the map decode to
// themselves.
var pdfDocSpecial = map[byte]rune{
	0x18: '˘', // breve
	0x19: 'ˇ', // caron
	0x1a: 'ˆ', // circumflex
	0x1b: '˙', // dot above
	0x1c: '˝', // double acute
	0x1d: '˛', // ogonek
	0x1e: '˚', // ring above
	0x1f: '˜', // small tilde
	0x80: '•', // bullet
	0x81: '†', // dagger
	0x82: '‡', // double dagger
	0x83: '…', // ellipsis
	0x84: '—', // em dash
	0x85: '–', // en dash
	0x86: 'ƒ', // florin
	0x87: '⁄', // fraction slash
	0x88: '‹', // single left guillemet
	0x89: '›', // single right guillemet
	0x8a: '−', // minus
	0x8b: '‰', // per mille
	0x8c: '„', // low double quote
	0x8d: '“', // left double quote
	0x8e: '”', // right double quote
	0x8f: '‘', // left single quote
	0x90: '’', // right single quote
	0x91: '‚', // low single quote
	0x92: '™', // trademark
	0x93: 'ﬁ', // fi ligature
	0x94: 'ﬂ', // fl ligature
	0x95: 'Ł', // Lslash
	0x96: 'Œ', // OE
	0x97: 'Š', // Scaron
	0x98: 'Ÿ', // Ydieresis
	0x99: 'Ž', // Zcaron
	0x9a: 'ı', // dotless i
	0x9b: 'ł', // lslash
	0x9c: 'œ', // oe
	0x9d: 'š', // scaron
	0x9e: 'ž', // zcaron
	0xa0: '€', // euro
}

func pdfDocDecode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if r, ok := pdfDocSpecial[b]; ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(rune(b))
	}
	return sb.String()
}
