package htmlutil

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoMatch is returned whenever a selection rule matches nothing.
// Callers are expected to wrap it with their own error kind.
var ErrNoMatch = errors.New("no element matched")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// OwnText collects only the direct text-node children of the first
// element in the selection, skipping text inside nested elements.
func OwnText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var buffer bytes.Buffer
	child := sel.Nodes[0].FirstChild
	for child != nil {
		if child.Type == html.TextNode {
			buffer.WriteString(GetText(child))
		}
		child = child.NextSibling
	}
	return buffer.String()
}

// FindOne returns the first element matching the selector or an error
// naming the rule that failed.
func FindOne(sel *goquery.Selection, selector string) (*goquery.Selection, error) {
	found := sel.Find(selector).First()
	if len(found.Nodes) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, selector)
	}
	if found.Nodes[0].Type != html.ElementNode {
		return nil, fmt.Errorf("%w %q: matched a non-element node", ErrNoMatch, selector)
	}
	return found, nil
}

// FindByText returns the first element matching the selector whose
// trimmed text equals the given text.
func FindByText(sel *goquery.Selection, selector, text string) (*goquery.Selection, error) {
	var found *goquery.Selection
	sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == text {
			found = s
			return false
		}
		return true
	})
	if found == nil || len(found.Nodes) == 0 || found.Nodes[0].Type != html.ElementNode {
		return nil, fmt.Errorf("%w %q with text %q", ErrNoMatch, selector, text)
	}
	return found, nil
}

// NextToLabel finds the element matching the selector whose trimmed
// text equals label and returns its next sibling element, the usual
// layout of "label cell followed by value cell" tables.
func NextToLabel(sel *goquery.Selection, selector, label string) (*goquery.Selection, error) {
	labelled, err := FindByText(sel, selector, label)
	if err != nil {
		return nil, err
	}
	value := labelled.Next()
	if len(value.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no value cell next to label %q", ErrNoMatch, label)
	}
	return value, nil
}
