// Package opml imports feed source lists from OPML documents.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// opmlDoc is the root of an OPML document.
type opmlDoc struct {
	XMLName xml.Name  `xml:"opml"`
	Body    []outline `xml:"body>outline"`
}

// outline is a single outline element, either a feed or a grouping.
type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	Outlines []outline `xml:"outline,omitempty"`
}

// Source is one importable feed.
type Source struct {
	Title string
	URL   string
}

// Parse reads an OPML document and returns the feeds it lists, with
// any folder nesting flattened away. Grouping outlines only matter for
// reader UIs; a batch request just needs the URLs.
func Parse(r io.Reader) ([]Source, error) {
	var doc opmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}
	var sources []Source
	var walk func(outlines []outline)
	walk = func(outlines []outline) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				title := o.Title
				if title == "" {
					title = o.Text
				}
				sources = append(sources, Source{Title: title, URL: o.XMLURL})
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body)
	return sources, nil
}
