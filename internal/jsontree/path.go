package jsontree

import (
	"strconv"
	"strings"

	"github.com/nibzard/jsonedit/internal/utils"
)

// Segment is one step of a Path: an object key or an array index.
// Segments compare with ==, and an index never equals a key, so
// Index(0) != Key("0").
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object key segment.
func Key(k string) Segment {
	return Segment{Key: k}
}

// Index returns an array index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment as written in a dotted path.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a value from the document root.
type Path []Segment

// ParsePath builds a path from keys and indices. Strings become key
// segments and ints become index segments; other types panic.
func ParsePath(segments ...any) Path {
	p := make(Path, 0, len(segments))
	for _, s := range segments {
		switch s := s.(type) {
		case string:
			p = append(p, Key(s))
		case int:
			p = append(p, Index(s))
		case Segment:
			p = append(p, s)
		default:
			panic("jsontree: unsupported path segment type")
		}
	}
	return p
}

// ParsePointer converts a JSON Pointer into a Path. Tokens made only of
// digits become index segments.
func ParsePointer(ptr string) Path {
	tokens := utils.SplitJSONPointer(ptr)
	p := make(Path, 0, len(tokens))
	for _, tok := range tokens {
		if i, ok := parseIndex(tok); ok {
			p = append(p, Index(i))
			continue
		}
		p = append(p, Key(tok))
	}
	return p
}

// ResolvePointer converts a JSON Pointer into a Path, reading doc to decide
// each token's type: tokens under an object are keys, digit tokens under an
// array are indices. Once doc can no longer be followed, digit tokens become
// indices as in ParsePointer.
func ResolvePointer(doc Value, ptr string) Path {
	tokens := utils.SplitJSONPointer(ptr)
	p := make(Path, 0, len(tokens))
	cur, walkable := doc, true
	for _, tok := range tokens {
		seg := Key(tok)
		if !walkable || cur.Kind != ObjectKind {
			if i, ok := parseIndex(tok); ok {
				seg = Index(i)
			}
		}
		p = append(p, seg)
		if walkable {
			cur, walkable = GetValue(cur, Path{seg})
		}
	}
	return p
}

func parseIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Append returns a new path with seg added. The receiver is never modified,
// so paths held by nodes of other trees stay intact.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Parent returns the path without its last segment. The parent of the root
// is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether p and o address the same location.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders p in dot notation, for example "users[0].name". The root
// renders as "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for _, seg := range p {
		if seg.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Pointer renders p as a JSON Pointer.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		if seg.IsIndex {
			b.WriteString(strconv.Itoa(seg.Index))
			continue
		}
		b.WriteString(utils.EscapeJSONPointerToken(seg.Key))
	}
	return b.String()
}
