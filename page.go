// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"fmt"

	"github.com/cwnourse/pdfread/logger"
)

// A Page represents a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V Value
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns a Page with p.V.IsNull().
func (d *Document) Page(num int) Page {
	logger.Debug(fmt.Sprintf("Reading page %d", num), true)
	num-- // now 0-indexed
	page := d.Trailer().Key("Root").Key("Pages")
	seen := make(map[string]bool)
Search:
	for page.Key("Type").Name() == "Pages" {
		// the page tree may carry reference cycles; refuse to revisit a node
		id := page.String()
		if seen[id] {
			break
		}
		seen[id] = true
		count := int(page.Key("Count").Int64())
		if count < num {
			return Page{}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{kid}
				}
				num--
			}
		}
		break
	}
	return Page{}
}

// NumPage returns the number of pages in the PDF file.
func (d *Document) NumPage() int {
	return int(d.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// findInherited walks the /Parent chain for an attribute a page may
// inherit from the page tree. The chain may be cyclic, hence the guard.
func (p Page) findInherited(key string) Value {
	seen := make(map[string]bool)
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		id := v.String()
		if seen[id] {
			break
		}
		seen[id] = true
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return Value{}
}

// MediaBox returns the media box associated with the page, possibly
// inherited from the page tree.
func (p Page) MediaBox() Value {
	return p.findInherited("MediaBox")
}

// CropBox returns the crop box associated with the page.
func (p Page) CropBox() Value {
	return p.findInherited("CropBox")
}

// Rotate returns the page rotation in degrees.
func (p Page) Rotate() int {
	return int(p.findInherited("Rotate").Int64())
}

// Resources returns the resources dictionary associated with the page.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}

// Contents returns the page's content stream value, which may be a
// single stream or an array of streams. The content is not interpreted.
func (p Page) Contents() Value {
	return p.V.Key("Contents")
}
