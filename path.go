package flatdoc

import (
	"regexp"
	"strconv"
	"strings"
)

// pathGrammar holds the pre-compiled path syntax. It is built once at
// process start and shared read-only by every codec and compiler call.
type pathGrammar struct {
	ident         *regexp.Regexp // plain identifier member names
	memberToken   *regexp.Regexp // ".name", or a leading bare "name"
	indexToken    *regexp.Regexp // "[0]"
	quotedToken   *regexp.Regexp // `["escaped name"]`
	wildcardToken *regexp.Regexp // ".*" or "[*]", addressing expressions only
}

var grammar = pathGrammar{
	ident:         regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`),
	memberToken:   regexp.MustCompile(`^\.?([A-Za-z_][A-Za-z0-9_]*)`),
	indexToken:    regexp.MustCompile(`^\[([0-9]+)\]`),
	quotedToken:   regexp.MustCompile(`^\["((?:[^"\\]|\\.)*)"\]`),
	wildcardToken: regexp.MustCompile(`^(?:\.\*|\[\*\])`),
}

// SegmentKind discriminates the three addressing operations
type SegmentKind int

const (
	// SegmentMember is child-member access by name
	SegmentMember SegmentKind = iota
	// SegmentIndex is array access by non-negative index
	SegmentIndex
	// SegmentWildcard matches any single key or index at its position
	SegmentWildcard
)

// Segment is one step of a canonical path or addressing expression
type Segment struct {
	Kind  SegmentKind
	Name  string // member name, set when Kind is SegmentMember
	Index int    // array index, set when Kind is SegmentIndex
}

// Member creates a child-member segment
func Member(name string) Segment {
	return Segment{Kind: SegmentMember, Name: name}
}

// Index creates an array-index segment
func Index(n int) Segment {
	return Segment{Kind: SegmentIndex, Index: n}
}

// Wildcard creates a single-level wildcard segment
func Wildcard() Segment {
	return Segment{Kind: SegmentWildcard}
}

// EncodePath serializes segments into the canonical path string stored in the
// path column. A member encodes as ".name" when the name is a plain
// identifier, otherwise as a bracketed double-quoted string with backslash
// and quote escaped; an index encodes as "[n]". The leading separator is
// stripped, so canonical paths never begin with ".".
//
// Encoding is lossless: DecodePath of the result reproduces the input
// segments exactly. Wildcards have no canonical form and are rejected.
func EncodePath(segments []Segment) (string, error) {
	return encodeSegments(segments, false)
}

// encodeSegments is EncodePath with control over the leading separator.
// Pattern fragments that continue after a wildcard keep it, so ".name"
// still lines up against the stored path.
func encodeSegments(segments []Segment, keepLeadingSeparator bool) (string, error) {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentMember:
			if grammar.ident.MatchString(seg.Name) {
				b.WriteByte('.')
				b.WriteString(seg.Name)
			} else {
				b.WriteString(`["`)
				b.WriteString(escapeMemberName(seg.Name))
				b.WriteString(`"]`)
			}
		case SegmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		default:
			return "", WithContext(ErrMalformedPath, map[string]interface{}{
				"reason": "wildcard has no canonical encoding",
			})
		}
	}
	if keepLeadingSeparator {
		return b.String(), nil
	}
	return strings.TrimPrefix(b.String(), "."), nil
}

// DecodePath tokenizes a canonical path string back into segments.
// Malformed input (unterminated bracket, stray characters, bad escape)
// fails with ErrMalformedPath rather than silently dropping tokens.
func DecodePath(path string) ([]Segment, error) {
	return scanSegments(path, false, ErrMalformedPath)
}

// scanSegments is the shared tokenizer behind DecodePath and CompileAddress.
// Addressing expressions additionally allow wildcard tokens (".*" or "[*]");
// stored canonical paths never contain them.
func scanSegments(s string, allowWildcard bool, errKind error) ([]Segment, error) {
	segments := make([]Segment, 0, 4)
	rest := s
	for len(rest) > 0 {
		if allowWildcard {
			if m := grammar.wildcardToken.FindString(rest); m != "" {
				segments = append(segments, Wildcard())
				rest = rest[len(m):]
				continue
			}
		}
		if m := grammar.quotedToken.FindStringSubmatch(rest); m != nil {
			segments = append(segments, Member(unescapeMemberName(m[1])))
			rest = rest[len(m[0]):]
			continue
		}
		if m := grammar.indexToken.FindStringSubmatch(rest); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, WithContext(errKind, map[string]interface{}{
					"input": s,
					"token": m[0],
				})
			}
			segments = append(segments, Index(n))
			rest = rest[len(m[0]):]
			continue
		}
		if m := grammar.memberToken.FindStringSubmatch(rest); m != nil {
			segments = append(segments, Member(m[1]))
			rest = rest[len(m[0]):]
			continue
		}
		return nil, WithContext(errKind, map[string]interface{}{
			"input": s,
			"at":    rest,
		})
	}
	return segments, nil
}

func escapeMemberName(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, `"`, `\"`)
}

func unescapeMemberName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func containsWildcard(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind == SegmentWildcard {
			return true
		}
	}
	return false
}
