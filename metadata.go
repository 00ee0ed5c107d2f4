// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"encoding/json"
	"io"

	"github.com/cwnourse/pdfread/logger"
)

// Meta is the unified metadata model built from the trailer's /Info
// dictionary plus a few structural facts.
type Meta struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty"`

	PDFVersion string `json:"pdf:PDFVersion,omitempty"`
	NPages     int    `json:"pdf:NPages,omitempty"`
	Encrypted  bool   `json:"pdf:encrypted"`
}

// Metadata collects the document metadata. /Info values are decoded as
// text strings; a trailer /Encrypt entry is noted but otherwise
// ignored, since encryption is not handled.
func (d *Document) Metadata() Meta {
	m := Meta{
		PDFVersion: d.Version(),
		NPages:     d.NumPage(),
		Encrypted:  !d.Trailer().Key("Encrypt").IsNull(),
	}
	info := d.Trailer().Key("Info")
	if info.Kind() != Dict {
		logger.Debug("metadata: no /Info dictionary")
		return m
	}
	m.Title = info.Key("Title").Text()
	m.Author = info.Key("Author").Text()
	m.Subject = info.Key("Subject").Text()
	m.Keywords = info.Key("Keywords").Text()
	m.Creator = info.Key("Creator").Text()
	m.Producer = info.Key("Producer").Text()
	m.CreationDate = info.Key("CreationDate").Text()
	m.ModDate = info.Key("ModDate").Text()
	return m
}

// MetadataJSON writes the document metadata as indented JSON.
func (d *Document) MetadataJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Metadata())
}
