package descriptor

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is the declaration site of a descriptor.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether p carries no location.
func (p Position) IsZero() bool {
	return p.File == "" && p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	switch {
	case p.IsZero():
		return "-"
	case p.Line == 0:
		return p.File
	case p.Column == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return nil, nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts "file",
// "file:line" and "file:line:column"; numeric suffixes are peeled off from
// the right so that file names may contain colons.
func (p *Position) UnmarshalText(text []byte) error {
	*p = Position{}
	s := string(text)
	if s == "" || s == "-" {
		return nil
	}

	var nums []int
	for len(nums) < 2 {
		i := strings.LastIndexByte(s, ':')
		if i < 0 {
			break
		}
		n, err := strconv.Atoi(s[i+1:])
		if err != nil {
			break
		}
		nums = append(nums, n)
		s = s[:i]
	}

	p.File = s
	switch len(nums) {
	case 1:
		p.Line = nums[0]
	case 2:
		p.Line, p.Column = nums[1], nums[0]
	}
	return nil
}
