package grid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedTileID is returned when a tile id does not match ^[A-Z]+[0-9]+$
	// or its row number is less than 1.
	ErrMalformedTileID = errors.New("malformed tile id")

	// ErrMalformedRange is returned when an Excel-style range cannot be parsed.
	ErrMalformedRange = errors.New("malformed tile range")
)

// maxColumnLetters bounds the letter part so column math cannot overflow.
const maxColumnLetters = 6

var tileIDRegex = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// Coord is a zero-based column/row pair.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// TileID returns the spreadsheet-style id for the coordinate.
func (c Coord) TileID() string {
	return ToTileID(c.Col, c.Row)
}

// ToTileID encodes col as bijective base-26 letters (A..Z, AA, AB, ...)
// followed by row+1. Negative inputs are clamped to zero.
func ToTileID(col, row int) string {
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	return ColumnLetters(col) + strconv.Itoa(row+1)
}

// ColumnLetters returns the letter part of a tile id for a zero-based column.
func ColumnLetters(col int) string {
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// FromTileID parses a tile id such as "K7" into a zero-based coordinate.
func FromTileID(id string) (Coord, error) {
	m := tileIDRegex.FindStringSubmatch(id)
	if m == nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrMalformedTileID, id)
	}
	letters, digits := m[1], m[2]
	if len(letters) > maxColumnLetters {
		return Coord{}, fmt.Errorf("%w: %q has too many column letters", ErrMalformedTileID, id)
	}

	row, err := strconv.Atoi(digits)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q row out of range", ErrMalformedTileID, id)
	}
	if row < 1 {
		return Coord{}, fmt.Errorf("%w: %q row must be at least 1", ErrMalformedTileID, id)
	}

	col := 0
	for _, ch := range letters {
		col = col*26 + int(ch-'A'+1)
	}
	return Coord{Col: col - 1, Row: row - 1}, nil
}

// IsTileID reports whether id is well-formed.
func IsTileID(id string) bool {
	_, err := FromTileID(id)
	return err == nil
}

// InBounds reports whether id is well-formed and lies inside a grid of the
// given dimensions.
func InBounds(id string, rows, cols int) bool {
	c, err := FromTileID(id)
	if err != nil {
		return false
	}
	return c.Col < cols && c.Row < rows
}

// Range is a rectangular block of tiles such as "A1:K7".
type Range struct {
	StartCol int `json:"start_col"`
	StartRow int `json:"start_row"`
	EndCol   int `json:"end_col"`
	EndRow   int `json:"end_row"`
	Cols     int `json:"cols"`
	Rows     int `json:"rows"`
}

// ParseRange parses an Excel-style range. Both corners are inclusive and the
// first corner must be the top-left one.
func ParseRange(expr string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(expr), ":")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformedRange, expr)
	}

	start, err := FromTileID(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", ErrMalformedRange, err)
	}
	end, err := FromTileID(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", ErrMalformedRange, err)
	}
	if end.Col < start.Col || end.Row < start.Row {
		return Range{}, fmt.Errorf("%w: %q is inverted", ErrMalformedRange, expr)
	}

	return Range{
		StartCol: start.Col,
		StartRow: start.Row,
		EndCol:   end.Col,
		EndRow:   end.Row,
		Cols:     end.Col - start.Col + 1,
		Rows:     end.Row - start.Row + 1,
	}, nil
}

// Contains reports whether the coordinate lies inside the range.
func (r Range) Contains(c Coord) bool {
	return c.Col >= r.StartCol && c.Col <= r.EndCol &&
		c.Row >= r.StartRow && c.Row <= r.EndRow
}

// String renders the range back to "A1:K7" form.
func (r Range) String() string {
	return ToTileID(r.StartCol, r.StartRow) + ":" + ToTileID(r.EndCol, r.EndRow)
}
