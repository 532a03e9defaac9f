package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAddress is returned for malformed A1 cell addresses.
var ErrInvalidAddress = errors.New("invalid cell address")

// ColumnLetter converts a 1-based column index to its spreadsheet letters
// using bijective base-26: 1 is "A", 26 is "Z", 27 is "AA". It returns ""
// for indexes below 1.
func ColumnLetter(col int) string {
	if col < 1 {
		return ""
	}

	var buf []byte
	for col > 0 {
		col--
		buf = append(buf, byte('A'+col%26))
		col /= 26
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnIndex converts spreadsheet letters back to a 1-based column index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidAddress)
	}

	col := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidAddress, letters)
		}
		col = col*26 + int(r-'A') + 1
	}
	return col, nil
}

// Address returns the A1 address of the cell at col and row, e.g. "F12".
func Address(col, row int) string {
	return ColumnLetter(col) + strconv.Itoa(row)
}

// ParseAddress splits an A1 address into its 1-based column and row.
func ParseAddress(addr string) (col, row int, err error) {
	i := 0
	for i < len(addr) && isLetter(addr[i]) {
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	col, err = ColumnIndex(addr[:i])
	if err != nil {
		return 0, 0, err
	}

	row, err = strconv.Atoi(addr[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	return col, row, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
