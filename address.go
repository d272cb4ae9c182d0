package flatdoc

import (
	"strconv"
	"strings"
)

const (
	// WildcardKey is the row key produced when the second addressing
	// operation is a wildcard. Reads carrying it match every row in the
	// collection instead of filtering on the name column.
	WildcardKey = "*"

	// ScalarKey is the reserved row key under which a bare scalar write is
	// stored when the addressing expression names only the collection.
	ScalarKey = "$"
)

// Address is the compiled form of an addressing expression. The collection
// names the table, the row key anchors the name column, and everything
// addressed beyond it is encoded into the path column. Addresses are built
// fresh per Set/Get call and never mutated.
type Address struct {
	Collection string
	RowKey     string
	HasRowKey  bool
	SubPath    []Segment
}

// CompileAddress parses an addressing expression such as "users[0].name"
// into an Address.
//
// The expression must contain at least one operation and the first must be a
// plain member access; it becomes the collection. The second operation, when
// present, becomes the row key: members and indexes are stringified, a
// wildcard becomes WildcardKey. Remaining operations form the sub-path.
func CompileAddress(expr string) (Address, error) {
	if strings.TrimSpace(expr) == "" {
		return Address{}, WithContext(ErrInvalidAddress, map[string]interface{}{
			"reason": "expression is empty",
		})
	}

	segments, err := scanSegments(expr, true, ErrInvalidAddress)
	if err != nil {
		return Address{}, err
	}
	if len(segments) == 0 {
		return Address{}, WithContext(ErrInvalidAddress, map[string]interface{}{
			"expression": expr,
			"reason":     "no operations",
		})
	}
	if segments[0].Kind != SegmentMember {
		return Address{}, WithContext(ErrInvalidAddress, map[string]interface{}{
			"expression": expr,
			"reason":     "first operation must be a plain member access",
		})
	}

	addr := Address{Collection: segments[0].Name}
	if len(segments) == 1 {
		return addr, nil
	}

	switch second := segments[1]; second.Kind {
	case SegmentMember:
		addr.RowKey = second.Name
	case SegmentIndex:
		addr.RowKey = strconv.Itoa(second.Index)
	case SegmentWildcard:
		addr.RowKey = WildcardKey
	}
	addr.HasRowKey = true
	addr.SubPath = segments[2:]
	return addr, nil
}
