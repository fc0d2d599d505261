// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the editable site content model: untyped JSON
// document trees addressed by key/index paths, and their file-backed store.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Document is a per-language content tree as decoded by encoding/json:
// objects are map[string]any, arrays are []any, leaves are strings/numbers/bools.
// No schema is enforced; consumers treat absent keys as "use a default".
type Document map[string]any

// Segment is one step of a path into a Document: either a string key or an
// integer array index.
type Segment struct {
	Key   string
	Index int
	IsKey bool
}

// Key returns a path segment addressing an object key.
func Key(k string) Segment { return Segment{Key: k, IsKey: true} }

// Index returns a path segment addressing an array element.
func Index(i int) Segment { return Segment{Index: i} }

// Path is an ordered sequence of segments identifying a location in a Document.
type Path []Segment

// ParsePath converts a dotted key like "why_us.cards.0.title" into a Path.
// Purely numeric parts become array indices.
func ParsePath(key string) (Path, error) {
	if key == "" {
		return nil, errors.New("empty path")
	}
	var path Path
	for _, part := range strings.Split(key, ".") {
		if part == "" {
			return nil, fmt.Errorf("path %q has an empty segment", key)
		}
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			path = append(path, Index(n))
			continue
		}
		path = append(path, Key(part))
	}
	return path, nil
}

// String renders a path in dotted form for logs and error messages.
func (p Path) String() string {
	s := ""
	for i, seg := range p {
		if seg.IsKey {
			if i > 0 {
				s += "."
			}
			s += seg.Key
		} else {
			s += fmt.Sprintf("[%d]", seg.Index)
		}
	}
	return s
}

// Update writes value at path inside doc, creating missing intermediate
// containers on the way down: an empty object, or an empty array when the next
// segment is an array index. A nil value deletes the target instead: the key
// is removed from an object parent, or the element is spliced out of an array
// parent with later elements shifting left.
//
// Writing through a node whose current shape does not match the path silently
// replaces that node. The admin editor depends on this forgiving behavior for
// edits made mid-typing, so the mismatch is logged rather than rejected.
//
// Update never fails on a missing path; the only errors are an empty path and
// array indices that cannot be satisfied.
func Update(doc Document, path Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("empty path")
	}
	if !path[0].IsKey {
		return fmt.Errorf("document root is an object; path %s starts with an index", path)
	}

	parent, err := descend(doc, path)
	if err != nil {
		return err
	}

	last := path[len(path)-1]
	switch p := parent.(type) {
	case map[string]any:
		if !last.IsKey {
			return fmt.Errorf("path %s: object parent addressed by index", path)
		}
		if value == nil {
			delete(p, last.Key)
			return nil
		}
		p[last.Key] = value
	case []any:
		if last.IsKey {
			return fmt.Errorf("path %s: array parent addressed by key %q", path, last.Key)
		}
		if last.Index < 0 || last.Index >= len(p) {
			if value == nil {
				return nil // deleting a nonexistent element is a no-op
			}
			return fmt.Errorf("path %s: index %d out of range (len %d)", path, last.Index, len(p))
		}
		if value == nil {
			copy(p[last.Index:], p[last.Index+1:])
			// The parent slice header lives in the grandparent; shrink in place.
			return shrinkArray(doc, path[:len(path)-1], len(p)-1)
		}
		p[last.Index] = value
	default:
		return fmt.Errorf("path %s: parent is %T, not a container", path, parent)
	}
	return nil
}

// descend walks path[0..len-2] from the document root, materializing missing
// or mis-shaped intermediates, and returns the parent container of the final
// segment. Arrays grow as needed to make an addressed index reachable.
func descend(doc Document, path Path) (any, error) {
	var cur any = map[string]any(doc)

	for i := 0; i < len(path)-1; i++ {
		seg := path[i]
		next := path[i+1]

		switch node := cur.(type) {
		case map[string]any:
			if !seg.IsKey {
				return nil, fmt.Errorf("path %s: segment %d indexes into an object", path, i)
			}
			child, ok := node[seg.Key]
			if !ok || !isContainer(child) {
				if ok {
					slog.Warn("content path overwrites scalar with container",
						"path", path.String(), "segment", seg.Key)
				}
				child = emptyContainerFor(next)
				node[seg.Key] = child
			}
			// Arrays are grown/replaced through their owning map entry so the
			// new slice header is visible to later reads.
			if arr, ok := child.([]any); ok && !next.IsKey {
				grown := growArray(arr, next.Index)
				node[seg.Key] = grown
				child = grown
			}
			cur = node[seg.Key]
		case []any:
			if seg.IsKey {
				return nil, fmt.Errorf("path %s: segment %d keys into an array", path, i)
			}
			if seg.Index < 0 || seg.Index >= len(node) {
				return nil, fmt.Errorf("path %s: index %d out of range (len %d)", path, seg.Index, len(node))
			}
			child := node[seg.Index]
			if !isContainer(child) {
				if child != nil {
					slog.Warn("content path overwrites scalar with container",
						"path", path.String(), "index", seg.Index)
				}
				child = emptyContainerFor(next)
				node[seg.Index] = child
			}
			if arr, ok := child.([]any); ok && !next.IsKey {
				grown := growArray(arr, next.Index)
				node[seg.Index] = grown
				child = grown
			}
			cur = child
		default:
			return nil, fmt.Errorf("path %s: segment %d descends into %T", path, i, cur)
		}
	}

	return cur, nil
}

// Get reads the value at path, reporting whether it is present. It never
// mutates the document.
func Get(doc Document, path Path) (any, bool) {
	var cur any = map[string]any(doc)
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			if !seg.IsKey {
				return nil, false
			}
			child, ok := node[seg.Key]
			if !ok {
				return nil, false
			}
			cur = child
		case []any:
			if seg.IsKey || seg.Index < 0 || seg.Index >= len(node) {
				return nil, false
			}
			cur = node[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// isContainer reports whether v can be descended into.
func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// emptyContainerFor picks the container shape for a missing intermediate:
// an array when the following segment is numeric, an object otherwise.
func emptyContainerFor(next Segment) any {
	if next.IsKey {
		return map[string]any{}
	}
	return []any{}
}

// growArray pads arr with nils until index is addressable.
func growArray(arr []any, index int) []any {
	for len(arr) <= index {
		arr = append(arr, nil)
	}
	return arr
}

// shrinkArray truncates the array at parentPath to newLen by rewriting the
// slice in its own parent. parentPath is never empty here: the document root
// is an object, so an array always hangs off some container.
func shrinkArray(doc Document, parentPath Path, newLen int) error {
	arr, ok := Get(doc, parentPath)
	if !ok {
		return fmt.Errorf("path %s: array parent vanished during delete", parentPath)
	}
	a, ok := arr.([]any)
	if !ok {
		return fmt.Errorf("path %s: expected array, found %T", parentPath, arr)
	}
	return Update(doc, parentPath, a[:newLen])
}

// Marshal serializes a document to the indented form used both on disk and in
// the raw editing mode.
func Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses raw JSON text into a document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Clone deep-copies a document through a marshal round trip.
func Clone(doc Document) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
