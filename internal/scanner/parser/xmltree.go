package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/document"
)

// Element is one node of a parsed XML document.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Element
	Text     string
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// ParseXML builds an Element tree from an XML document and returns its root.
// Comments, processing instructions and directives are dropped.
func ParseXML(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element
	var text []*strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, errors.New("parse xml: no root element")
	}
	return root, nil
}

// step is one segment of a Find path: an element name with an optional
// attribute equality predicate, e.g. node[@class='disk'].
type step struct {
	name  string
	attr  string
	value string
}

func parseStep(s string) (step, error) {
	name, pred, ok := strings.Cut(s, "[")
	if !ok {
		return step{name: name}, nil
	}
	pred, ok = strings.CutSuffix(pred, "]")
	if !ok || !strings.HasPrefix(pred, "@") {
		return step{}, fmt.Errorf("invalid predicate in %q", s)
	}
	attr, value, ok := strings.Cut(pred[1:], "=")
	if !ok {
		return step{}, fmt.Errorf("invalid predicate in %q", s)
	}
	return step{name: name, attr: attr, value: strings.Trim(value, `'"`)}, nil
}

func (s step) matches(e *Element) bool {
	if s.name != "*" && s.name != e.Name {
		return false
	}
	if s.attr == "" {
		return true
	}
	v, ok := e.Attr(s.attr)
	return ok && v == s.value
}

// Find returns the descendants of e selected by a relative path such as
// "node[@class='network']" (children) or "node/node[@class='disk']"
// (grandchildren), in document order.
func (e *Element) Find(path string) ([]*Element, error) {
	current := []*Element{e}
	for _, seg := range strings.Split(path, "/") {
		st, err := parseStep(seg)
		if err != nil {
			return nil, err
		}
		var next []*Element
		for _, c := range current {
			for _, child := range c.Children {
				if st.matches(child) {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current, nil
}

// ToValue converts an element into a document value:
//   - attributes become "@name" keys in document order;
//   - child elements become keys, repeated names collapse into a list;
//   - an element with only text becomes that string;
//   - text alongside attributes or children is stored under "#text";
//   - an empty element becomes nil.
//
// The transform does not depend on the element's name or class.
func ToValue(e *Element) any {
	if len(e.Attrs) == 0 && len(e.Children) == 0 {
		if e.Text == "" {
			return nil
		}
		return e.Text
	}

	m := document.NewMap()
	for _, a := range e.Attrs {
		m.Set("@"+a.Name.Local, a.Value)
	}
	for _, c := range e.Children {
		v := ToValue(c)
		existing, ok := m.Get(c.Name)
		if !ok {
			m.Set(c.Name, v)
			continue
		}
		if list, isList := existing.([]any); isList {
			m.Set(c.Name, append(list, v))
		} else {
			m.Set(c.Name, []any{existing, v})
		}
	}
	if e.Text != "" {
		m.Set("#text", e.Text)
	}
	return m
}
