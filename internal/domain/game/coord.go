package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a zero-based grid position. Col maps to the letter axis and
// Row to the number axis of the external "D4" rendering.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// String renders the coordinate in LetterNumber form, e.g. {3,3} -> "D4"
func (c Coord) String() string {
	if c.Col < 0 || c.Row < 0 {
		return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
	}
	return letterFor(c.Col) + strconv.Itoa(c.Row+1)
}

// MarshalText lets Coord serve as a JSON map key
func (c Coord) MarshalText() ([]byte, error) {
	if c.Col < 0 || c.Row < 0 {
		return nil, fmt.Errorf("coordinate out of range: (%d,%d)", c.Col, c.Row)
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses the LetterNumber form
func (c *Coord) UnmarshalText(text []byte) error {
	parsed, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoord parses a LetterNumber coordinate such as "D4" or "AA12".
// Letters beyond Z continue bijectively (AA=26, AB=27, ...).
func ParseCoord(s string) (Coord, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Coord{}, fmt.Errorf("empty coordinate")
	}

	split := 0
	for split < len(s) && s[split] >= 'A' && s[split] <= 'Z' {
		split++
	}
	if split == 0 || split == len(s) {
		return Coord{}, fmt.Errorf("malformed coordinate %q", s)
	}

	col := 0
	for i := 0; i < split; i++ {
		col = col*26 + int(s[i]-'A') + 1
	}
	col-- // back to zero-based

	row, err := strconv.Atoi(s[split:])
	if err != nil || row < 1 {
		return Coord{}, fmt.Errorf("malformed coordinate %q", s)
	}

	return Coord{Col: col, Row: row - 1}, nil
}

// Chebyshev returns the chessboard distance between two coordinates
func Chebyshev(a, b Coord) int {
	dc := abs(a.Col - b.Col)
	dr := abs(a.Row - b.Row)
	if dc > dr {
		return dc
	}
	return dr
}

func letterFor(col int) string {
	// bijective base-26: 0->A, 25->Z, 26->AA
	col++
	var sb []byte
	for col > 0 {
		col--
		sb = append([]byte{byte('A' + col%26)}, sb...)
		col /= 26
	}
	return string(sb)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
