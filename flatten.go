package flatdoc

import (
	"encoding/json"
	"sort"
)

// Leaf is one terminal value produced by flattening a JSON tree, together
// with its path relative to the flattened root.
type Leaf struct {
	Path  []Segment
	Value interface{}
}

// normalizeJSON round-trips a value through encoding/json so the flattener
// only ever sees maps, slices and JSON scalars. Cyclic or otherwise
// unserializable input fails here as ErrNotJSON, before any store
// interaction.
func normalizeJSON(value interface{}) (interface{}, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, WithContext(ErrNotJSON, map[string]interface{}{
			"reason": err.Error(),
		})
	}
	var normalized interface{}
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, WithContext(ErrNotJSON, map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return normalized, nil
}

// Flatten decomposes a normalized JSON value into leaf entries, walking
// containers depth-first. Objects contribute one entry per key (in sorted
// order, for deterministic statement batches), arrays one entry per index.
// Scalars, nulls and empty containers are terminal: they yield a single
// entry at the current prefix, so "{}" and "[]" are stored verbatim and
// survive a round trip.
func Flatten(value interface{}) []Leaf {
	return flattenInto(nil, nil, value)
}

func flattenInto(leaves []Leaf, prefix []Segment, value interface{}) []Leaf {
	switch v := value.(type) {
	case map[string]interface{}:
		if len(v) == 0 {
			return append(leaves, Leaf{Path: clonePath(prefix), Value: v})
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			leaves = flattenInto(leaves, appendSegment(prefix, Member(k)), v[k])
		}
	case []interface{}:
		if len(v) == 0 {
			return append(leaves, Leaf{Path: clonePath(prefix), Value: v})
		}
		for i, element := range v {
			leaves = flattenInto(leaves, appendSegment(prefix, Index(i)), element)
		}
	default:
		leaves = append(leaves, Leaf{Path: clonePath(prefix), Value: value})
	}
	return leaves
}

func clonePath(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

func appendSegment(prefix []Segment, seg Segment) []Segment {
	out := make([]Segment, 0, len(prefix)+1)
	out = append(out, prefix...)
	return append(out, seg)
}
