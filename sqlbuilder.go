package flatdoc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// wildcardSegmentPattern matches exactly one path segment: a bracketed
// token or a dotted member. The dot is optional so the token also matches
// at the start of a path, where the canonical encoding strips it.
const wildcardSegmentPattern = `(\[[^\]]*\]|\.?[^.\[\]]+)`

// segmentBoundary terminates a literal fragment so "address" cannot match
// inside "addressBook"
const segmentBoundary = `(\.|\[|$)`

// QueryBuilder turns compiled addresses into SQL for one dialect.
// It is stateless apart from the dialect and safe for concurrent use.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a builder for the given dialect
func NewQueryBuilder(d Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: d}
}

// CreateCollection returns the DDL that lazily creates a collection table.
// The (name, path) primary key is the uniqueness invariant every upsert
// relies on.
func (qb *QueryBuilder) CreateCollection(collection string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name TEXT NOT NULL, path TEXT NOT NULL, data %s, PRIMARY KEY (name, path))",
		quoteIdent(collection), qb.dialect.DataColumnType,
	)
}

// BuildWrite produces the upsert batch persisting value at the address.
//
// With a row key, the value is flattened directly under the sub-path. With
// no row key, a container value is split per top-level key or index, each
// becoming its own row (so writing an array of records seeds one row per
// record), and a bare scalar is stored under the reserved ScalarKey. The
// returned statements are meant for Database.ExecBatch: one transaction,
// all or nothing.
func (qb *QueryBuilder) BuildWrite(addr Address, value interface{}) ([]Statement, error) {
	if addr.HasRowKey && addr.RowKey == WildcardKey {
		return nil, WithContext(ErrInvalidAddress, map[string]interface{}{
			"collection": addr.Collection,
			"reason":     "cannot write through a wildcard row key",
		})
	}
	if containsWildcard(addr.SubPath) {
		return nil, WithContext(ErrInvalidAddress, map[string]interface{}{
			"collection": addr.Collection,
			"reason":     "cannot write through a wildcard sub-path",
		})
	}

	type pendingRow struct {
		name     string
		segments []Segment
		leaf     interface{}
	}
	var rows []pendingRow

	if addr.HasRowKey {
		for _, leaf := range Flatten(value) {
			segments := append(clonePath(addr.SubPath), leaf.Path...)
			rows = append(rows, pendingRow{addr.RowKey, segments, leaf.Value})
		}
	} else {
		switch v := value.(type) {
		case map[string]interface{}:
			if len(v) == 0 {
				rows = append(rows, pendingRow{ScalarKey, nil, v})
				break
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				for _, leaf := range Flatten(v[k]) {
					rows = append(rows, pendingRow{k, leaf.Path, leaf.Value})
				}
			}
		case []interface{}:
			if len(v) == 0 {
				rows = append(rows, pendingRow{ScalarKey, nil, v})
				break
			}
			for i, element := range v {
				for _, leaf := range Flatten(element) {
					rows = append(rows, pendingRow{strconv.Itoa(i), leaf.Path, leaf.Value})
				}
			}
		default:
			rows = append(rows, pendingRow{ScalarKey, nil, value})
		}
	}

	upsert := fmt.Sprintf(
		"INSERT INTO %s (name, path, data) VALUES (%s, %s, %s) ON CONFLICT (name, path) DO UPDATE SET data = excluded.data",
		quoteIdent(addr.Collection),
		qb.dialect.Placeholder(1), qb.dialect.Placeholder(2), qb.dialect.Placeholder(3),
	)

	stmts := make([]Statement, 0, len(rows))
	for _, r := range rows {
		path, err := EncodePath(r.segments)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(r.leaf)
		if err != nil {
			return nil, WithContext(ErrNotJSON, map[string]interface{}{
				"reason": err.Error(),
			})
		}
		stmts = append(stmts, Statement{
			SQL:  upsert,
			Args: []interface{}{r.name, path, string(data)},
		})
	}
	return stmts, nil
}

// BuildRead produces the query locating the rows the address matches: an
// equality filter on name for a concrete row key, plus a regex over path
// when the sub-path is non-empty. A wildcard row key drops the name filter
// and selects across the whole collection.
func (qb *QueryBuilder) BuildRead(addr Address) (Statement, error) {
	var (
		conds []string
		args  []interface{}
	)
	if addr.HasRowKey && addr.RowKey != WildcardKey {
		conds = append(conds, "name = "+qb.dialect.Placeholder(1))
		args = append(args, addr.RowKey)
	}

	pattern, err := pathPattern(addr.SubPath, addr.RowKey == WildcardKey)
	if err != nil {
		return Statement{}, err
	}
	if pattern != "" {
		conds = append(conds, fmt.Sprintf("path %s %s", qb.dialect.MatchOperator, qb.dialect.Placeholder(len(args)+1)))
		args = append(args, pattern)
	}

	sql := "SELECT name, path, data FROM " + quoteIdent(addr.Collection)
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY name, path"
	return Statement{SQL: sql, Args: args}, nil
}

// BuildScan returns a query selecting every row of a collection, used by
// snapshot tooling rather than Get.
func (qb *QueryBuilder) BuildScan(collection string) Statement {
	return Statement{
		SQL: "SELECT name, path, data FROM " + quoteIdent(collection) + " ORDER BY name, path",
	}
}

// pathPattern compiles a sub-path into a regex over the path column.
// Consecutive member/index segments accumulate into one regex-escaped
// literal fragment; each wildcard contributes a single-segment token.
//
// With a concrete (or absent) row key the pattern is anchored at the path
// root. With a wildcard row key it is left unanchored — any prefix, then
// the fragments, then any suffix — so positional wildcards match regardless
// of leading structure across rows.
func pathPattern(subPath []Segment, relaxed bool) (string, error) {
	if len(subPath) == 0 {
		return "", nil
	}

	var b strings.Builder
	literal := make([]Segment, 0, len(subPath))
	atStart := true
	trailingLiteral := false

	flush := func() error {
		if len(literal) == 0 {
			return nil
		}
		// keepLeadingSeparator only after a wildcard: the stored path has
		// no separator at its very start
		frag, err := encodeSegments(literal, !atStart)
		if err != nil {
			return err
		}
		b.WriteString(regexp.QuoteMeta(frag))
		literal = literal[:0]
		atStart = false
		return nil
	}

	for _, seg := range subPath {
		if seg.Kind == SegmentWildcard {
			if err := flush(); err != nil {
				return "", err
			}
			b.WriteString(wildcardSegmentPattern)
			atStart = false
			trailingLiteral = false
			continue
		}
		literal = append(literal, seg)
		trailingLiteral = true
	}
	if err := flush(); err != nil {
		return "", err
	}

	pattern := b.String()
	if trailingLiteral {
		pattern += segmentBoundary
	}
	if !relaxed {
		pattern = "^" + pattern
	}
	return pattern, nil
}

// quoteIdent double-quotes a collection name for use as a SQL identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
