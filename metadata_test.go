// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInfoPDF() *pdfBuilder {
	p := newPDFBuilder()
	p.obj(1, "<</Type /Catalog /Pages 2 0 R>>")
	p.obj(2, "<</Type /Pages /Kids [] /Count 0>>")
	p.obj(3, `<</Title (A test document) /Author (noursec) /Producer (pdfread)>>`)
	start := p.classicXref("<</Size 4 /Root 1 0 R /Info 3 0 R>>")
	p.finish(start)
	return p
}

func TestMetadata(t *testing.T) {
	d := buildInfoPDF().open(t)
	m := d.Metadata()
	assert.Equal(t, "A test document", m.Title)
	assert.Equal(t, "noursec", m.Author)
	assert.Equal(t, "pdfread", m.Producer)
	assert.Equal(t, "1.7", m.PDFVersion)
	assert.Equal(t, 0, m.NPages)
	assert.False(t, m.Encrypted)
}

func TestMetadataUTF16Title(t *testing.T) {
	p := newPDFBuilder()
	p.obj(1, "<</Type /Catalog>>")
	// UTF-16BE with BOM: "Hi"
	p.obj(3, "<</Title (\xfe\xff\x00H\x00i)>>")
	start := p.classicXref("<</Size 4 /Root 1 0 R /Info 3 0 R>>")
	p.finish(start)
	d := p.open(t)

	assert.Equal(t, "Hi", d.Metadata().Title)
}

func TestMetadataNoInfo(t *testing.T) {
	d := buildBasicPDF().open(t)
	m := d.Metadata()
	assert.Empty(t, m.Title)
	assert.Equal(t, 1, m.NPages)
}

func TestMetadataEncryptedFlag(t *testing.T) {
	p := newPDFBuilder()
	p.obj(1, "<</Type /Catalog>>")
	p.obj(4, "<</Filter /Standard /V 2>>")
	start := p.classicXref("<</Size 5 /Root 1 0 R /Encrypt 4 0 R>>")
	p.finish(start)
	d := p.open(t)

	assert.True(t, d.Metadata().Encrypted, "trailer /Encrypt is noted, not interpreted")
}

func TestMetadataJSON(t *testing.T) {
	d := buildInfoPDF().open(t)
	var buf bytes.Buffer
	require.NoError(t, d.MetadataJSON(&buf))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "A test document", got["title"])
	assert.Equal(t, "noursec", got["author"])
}
