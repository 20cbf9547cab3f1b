package vertex

import (
	"fmt"
	"strings"

	"github.com/Faultbox/rx3kit/pkg/rx3"
)

// Usage letters of a declaration element.
const (
	UsagePosition    = 'p'
	UsageNormal      = 'n'
	UsageTangent     = 'g'
	UsageBinormal    = 'b'
	UsageTexCoord    = 't'
	UsageColor       = 'c'
	UsageBoneIndices = 'i'
	UsageBoneWeights = 'w'
)

// Element is one attribute of a vertex declaration.
type Element struct {
	Usage  byte
	Index  int
	Offset uint32
	Type   DataType
	// TypeName is the type as written, kept for unknown types.
	TypeName string
}

// String formats the element the way it appears in a declaration.
func (e Element) String() string {
	return fmt.Sprintf("%c%d:%X:%s", e.Usage, e.Index, e.Offset, e.TypeName)
}

// MaxIndex returns the highest usage index accepted for a usage letter, or
// -1 for letters that carry no attribute.
func MaxIndex(usage byte) int {
	switch usage {
	case UsagePosition, UsageNormal, UsageTangent, UsageBinormal:
		return 0
	case UsageTexCoord, UsageColor:
		return 7
	case UsageBoneIndices, UsageBoneWeights:
		return 1
	}
	return -1
}

// ParseDeclaration splits a declaration string into elements.
//
// Tokens are separated by spaces and parsing stops at the first line break.
// Each token has 3 to 5 colon separated fields: usage (letter plus digit),
// hex byte offset, and the data type name as the last field. Tokens that do
// not fit this shape are skipped. Elements whose usage index is out of range
// for their letter are kept; the mesh assembler ignores them.
func ParseDeclaration(decl string) []Element {
	if i := strings.IndexAny(decl, "\r\n"); i >= 0 {
		decl = decl[:i]
	}

	var elements []Element
	for _, token := range strings.Split(decl, " ") {
		fields := strings.Split(token, ":")
		if len(fields) < 3 || len(fields) > 5 {
			continue
		}

		usage := fields[0]
		if len(usage) != 2 {
			continue
		}
		index := 0
		if usage[1] >= '0' && usage[1] <= '9' {
			index = int(usage[1] - '0')
		}

		typeName := fields[len(fields)-1]
		elements = append(elements, Element{
			Usage:    usage[0],
			Index:    index,
			Offset:   parseHexPrefix(fields[1]),
			Type:     ParseDataType(typeName),
			TypeName: typeName,
		})
	}
	return elements
}

// parseHexPrefix parses the leading hex digits of s, with an optional 0x
// prefix. Strings without hex digits give 0.
func parseHexPrefix(s string) uint32 {
	s = strings.TrimLeft(s, " \t")
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		default:
			return v
		}
		v = v<<4 | d
	}
	return v
}

// ReadDeclaration extracts the declaration string of a vertex format chunk.
//
// Layout: 4 reserved bytes, u32 string length, 8 reserved bytes, string.
// A zero length means the chunk declares no attributes and yields "".
func ReadDeclaration(c *rx3.Chunk) (string, error) {
	r := c.Reader()
	r.Skip(4)
	length := r.U32()
	if err := r.Err(); err != nil {
		return "", fmt.Errorf("reading vertex format header: %w", err)
	}
	if length == 0 {
		return "", nil
	}
	r.Skip(8)
	decl := r.CString()
	if err := r.Err(); err != nil {
		return "", fmt.Errorf("reading vertex declaration: %w", err)
	}
	return decl, nil
}
