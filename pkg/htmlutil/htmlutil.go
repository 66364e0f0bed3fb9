// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package htmlutil has small helpers for inspecting parsed HTML documents, such as a rendered
// version report.
package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

// VisitHTML walks the tree rooted at node depth-first, calling before on the way down and after on
// the way up.  Either may be nil.  The walk stops at the first error.
func VisitHTML(node *html.Node, before, after func(*html.Node) error) error {
	if before != nil {
		if err := before(node); err != nil {
			return err
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := VisitHTML(child, before, after); err != nil {
			return err
		}
	}
	if after != nil {
		if err := after(node); err != nil {
			return err
		}
	}
	return nil
}

func GetAttr(node *html.Node, namespace, name string) (val string, ok bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == namespace && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// FindAll returns all elements under node (inclusive) with the given tag name, in document order.
func FindAll(node *html.Node, tag string) []*html.Node {
	var ret []*html.Node
	_ = VisitHTML(node, func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == tag {
			ret = append(ret, n)
		}
		return nil
	}, nil)
	return ret
}

// FindByID returns the element with the given id attribute, or nil.
func FindByID(node *html.Node, id string) *html.Node {
	var ret *html.Node
	_ = VisitHTML(node, func(n *html.Node) error {
		if ret != nil {
			return nil
		}
		if val, ok := GetAttr(n, "", "id"); ok && val == id && n.Type == html.ElementNode {
			ret = n
		}
		return nil
	}, nil)
	return ret
}

// Text returns the concatenated text content of node, with surrounding whitespace trimmed.
func Text(node *html.Node) string {
	var buf strings.Builder
	_ = VisitHTML(node, func(n *html.Node) error {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		return nil
	}, nil)
	return strings.TrimSpace(buf.String())
}

// TableRows returns the text of each cell of each body row of a <table> element.  Header rows
// (rows made only of <th> cells) are skipped.
func TableRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range FindAll(table, "tr") {
		var row []string
		header := true
		for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode {
				continue
			}
			switch cell.Data {
			case "td":
				header = false
				row = append(row, Text(cell))
			case "th":
				row = append(row, Text(cell))
			}
		}
		if !header {
			rows = append(rows, row)
		}
	}
	return rows
}
