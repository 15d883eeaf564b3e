package interp

import (
	"math"
)

// Command is a line split by position: byte 0 is the action, byte 1
// the sub-target and the rest is the parameter.
type Command struct {
	Line   string
	Action byte
	Target byte
	// Param is the text after the sub-target, empty if the line is
	// shorter than 3 bytes.
	Param string
}

// ParseLine tokenizes a line. It never fails: absent positions are 0.
func ParseLine(line string) Command {
	cmd := Command{Line: line}
	if len(line) > 0 {
		cmd.Action = upper(line[0])
	}
	if len(line) > 1 {
		cmd.Target = upper(line[1])
	}
	if len(line) > 2 {
		cmd.Param = line[2:]
	}
	return cmd
}

// HasParam indicates a parameter is present.
func (c Command) HasParam() bool {
	return c.Param != ""
}

// Value parses Param as a non-negative decimal integer, leniently:
// leading blanks and a '+' sign are skipped, parsing stops at the first
// non-digit, and a parameter without leading digits is 0. A '-' sign
// also yields 0. Values beyond 32 bits saturate at math.MaxUint32.
// This differs from the firmware's atol on purpose: there "-1" wraps to
// 0xFFFFFFFF and overflow caps at 2147483647.
//
// A malformed parameter is deliberately not an error, e.g. "F0abc"
// sets frequency 0 to 0 Hz.
func (c Command) Value() uint32 {
	s := c.Param
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '+' {
		i++
	}
	var v uint64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + uint64(s[i]-'0')
		if v > math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return uint32(v)
}

// Digit returns the first byte of Param.
func (c Command) Digit() byte {
	if c.Param == "" {
		return 0
	}
	return c.Param[0]
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
