package flatdoc

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Shape is the inferred container kind for a reconstructed result
type Shape int

const (
	// ShapeObject reconstructs rows into a map keyed by name
	ShapeObject Shape = iota
	// ShapeArray reconstructs rows into a slice ordered by numeric name
	ShapeArray
)

// inferShape decides array-vs-object once per reconstruction: a result
// whose row names are all decimal digit runs becomes an array keyed by the
// numeric name, anything else an object.
func inferShape(names []string) Shape {
	for _, name := range names {
		if !isDigits(name) {
			return ShapeObject
		}
		if _, err := strconv.Atoi(name); err != nil {
			return ShapeObject
		}
	}
	return ShapeArray
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Assemble reconstructs a JSON value from the rows a read query returned.
//
// Zero rows yield nil (a missing value is not an error). A single row is
// the stored leaf verbatim. Multiple rows are grouped by name, each group
// rebuilt by deep-assigning its decoded relative paths, and the groups
// combined per inferShape; when only one logical row matched, its value is
// unwrapped rather than surfacing a single-key container.
func Assemble(rows []Row, subPath []Segment) (interface{}, error) {
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return decodeLeaf(rows[0].Data)
	}

	// The literal sub-path prefix is stripped from stored paths before
	// decoding. A sub-path containing wildcards has no literal encoding;
	// rows from the relaxed wildcard match keep their full path instead.
	prefix := ""
	if !containsWildcard(subPath) {
		p, err := EncodePath(subPath)
		if err != nil {
			return nil, err
		}
		prefix = p
	}

	names := make([]string, 0, len(rows))
	groups := make(map[string][]Row, len(rows))
	for _, row := range rows {
		if _, seen := groups[row.Name]; !seen {
			names = append(names, row.Name)
		}
		groups[row.Name] = append(groups[row.Name], row)
	}

	values := make(map[string]interface{}, len(names))
	for _, name := range names {
		v, err := assembleGroup(groups[name], prefix)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	if len(names) == 1 {
		return values[names[0]], nil
	}

	if inferShape(names) == ShapeArray {
		var arr []interface{}
		for _, name := range names {
			idx, _ := strconv.Atoi(name)
			for len(arr) <= idx {
				arr = append(arr, nil)
			}
			arr[idx] = values[name]
		}
		return arr, nil
	}

	object := make(map[string]interface{}, len(names))
	for _, name := range names {
		object[name] = values[name]
	}
	return object, nil
}

// assembleGroup rebuilds the value of one logical row from its leaf rows
func assembleGroup(rows []Row, prefix string) (interface{}, error) {
	var node interface{}
	for _, row := range rows {
		rel := row.Path
		if prefix != "" && strings.HasPrefix(rel, prefix) {
			rel = rel[len(prefix):]
		}
		segments, err := DecodePath(rel)
		if err != nil {
			return nil, err
		}
		value, err := decodeLeaf(row.Data)
		if err != nil {
			return nil, err
		}
		node = assign(node, segments, value)
	}
	return node, nil
}

// assign deep-assigns value at segments under node, creating intermediate
// containers as needed: index segments create arrays, member segments
// objects. An existing node of the wrong kind is replaced, so the last
// assignment wins.
func assign(node interface{}, segments []Segment, value interface{}) interface{} {
	if len(segments) == 0 {
		return value
	}
	seg := segments[0]
	if seg.Kind == SegmentIndex {
		arr, _ := node.([]interface{})
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		arr[seg.Index] = assign(arr[seg.Index], segments[1:], value)
		return arr
	}
	obj, ok := node.(map[string]interface{})
	if !ok {
		obj = make(map[string]interface{})
	}
	obj[seg.Name] = assign(obj[seg.Name], segments[1:], value)
	return obj
}

func decodeLeaf(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, WithContext(ErrNotJSON, map[string]interface{}{
			"reason": "stored leaf is not valid JSON: " + err.Error(),
		})
	}
	return v, nil
}
