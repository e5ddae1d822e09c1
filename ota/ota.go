// Package ota is the document access layer for OTA_HotelRatePlanNotifRQ
// rate plan messages. It exposes the parsed XML as ordered node records
// with named string attributes; the engine packages never touch the XML
// library directly.
package ota

import (
	"fmt"

	"github.com/beevik/etree"
)

// Node is one element of a rate plan message. Element and attribute
// names are matched by local name; AlpineBits messages use a single
// default namespace.
type Node struct {
	el *etree.Element
}

// Name returns the element's local name.
func (n *Node) Name() string {
	return n.el.Tag
}

// Attr returns the named attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	a := n.el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// AttrValue returns the named attribute value, or "" when absent.
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// Children returns the direct child elements with the given local name,
// in document order.
func (n *Node) Children(name string) []*Node {
	var out []*Node
	for _, c := range n.el.ChildElements() {
		if c.Tag == name {
			out = append(out, &Node{el: c})
		}
	}
	return out
}

// AllChildren returns every direct child element in document order.
func (n *Node) AllChildren() []*Node {
	var out []*Node
	for _, c := range n.el.ChildElements() {
		out = append(out, &Node{el: c})
	}
	return out
}

// Descendants returns every element with the given local name below n,
// in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == name {
				out = append(out, &Node{el: c})
			}
			walk(c)
		}
	}
	walk(n.el)
	return out
}

// Document is one parsed rate plan message.
type Document struct {
	root *Node
}

// Parse reads a rate plan message from raw XML bytes.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("not parseable as XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return &Document{root: &Node{el: root}}, nil
}

// Root returns the message's root element.
func (d *Document) Root() *Node {
	return d.root
}

// RatePlans returns all RatePlan elements in document order, at any depth.
func (d *Document) RatePlans() []*Node {
	if d.root.Name() == "RatePlan" {
		return []*Node{d.root}
	}
	return d.root.Descendants("RatePlan")
}

// Hotel returns a display string for the hotel the message refers to:
// "Name (Code)", just the code, just the name, or "".
func (d *Document) Hotel() string {
	var code, name string
	for _, rps := range d.root.Children("RatePlans") {
		if code == "" {
			code = rps.AttrValue("HotelCode")
		}
		if name == "" {
			name = rps.AttrValue("HotelName")
		}
	}
	switch {
	case code != "" && name != "":
		return name + " (" + code + ")"
	case code != "":
		return code
	default:
		return name
	}
}
