// Package render turns group data into static HTML pages and terminal markdown.
//
// Pages are assembled as golang.org/x/net/html node trees and serialized with
// html.Render, so every piece of content text is escaped on output.
package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Messages shown in place of content.
const (
	MsgLoadError    = "Error loading sentences."
	MsgMissingGroup = "Error: group id not defined."
	MsgNoGroups     = "Could not load groups."
	MsgEmpty        = "No sentences for this level."
	MsgOpenPractice = "Open practice →"
)

const stylesheet = `body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
.levels a{margin-right:.75rem}.levels a.current{font-weight:bold;text-decoration:none}
.audio-track{margin:.5rem 0}.sentence-block{border-bottom:1px solid #ddd;padding:.75rem 0}
.prompt{color:#555}.chinese{font-size:1.4rem}.empty,.error{color:#a33}
.group-card{border:1px solid #ddd;border-radius:6px;padding:1rem;margin:1rem 0}
.pager{display:flex;justify-content:space-between;margin-top:2rem}`

// el creates an element. attrs are key/value pairs.
func el(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func add(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// textEl creates an element holding a single text node.
func textEl(a atom.Atom, s string, attrs ...string) *html.Node {
	return add(el(a, attrs...), text(s))
}

// Meta is the page-level metadata shared by every page of a build.
type Meta struct {
	Title   string
	BuildID string
}

// document builds <!DOCTYPE html><html><head>..</head><body>..</body></html>
// and returns the document and its body.
func document(m Meta) (doc, body *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := add(el(atom.Head),
		el(atom.Meta, "charset", "utf-8"),
		el(atom.Meta, "name", "viewport", "content", "width=device-width, initial-scale=1"),
		textEl(atom.Title, m.Title),
		textEl(atom.Style, stylesheet),
	)
	if m.BuildID != "" {
		add(head, el(atom.Meta, "name", "build-id", "content", m.BuildID))
	}
	body = el(atom.Body)
	add(doc, add(el(atom.Html, "lang", "en"), head, body))
	return doc, body
}

// Write serializes a page.
func Write(w io.Writer, doc *html.Node) error {
	if doc.Type != html.DocumentNode {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
			return err
		}
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
