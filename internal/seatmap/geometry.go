// Package seatmap holds the pure seat-addressing logic shared by the write
// path (validating a claim) and the read path (rendering the grid). It keeps
// no state: identical inputs always produce identical outputs.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSeat is wrapped by every validation failure in this package.
// Callers match it with errors.Is and translate it to a client input error.
var ErrInvalidSeat = errors.New("invalid seat")

// NormalizeRow trims and uppercases a row letter. Normalization happens
// before any other processing so that "b" and "B" address the same seat.
func NormalizeRow(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// RowIndex converts a row letter into its 1-based index: A→1, B→2, … Z→26.
// Input is normalized first. Anything that is not exactly one letter A-Z
// fails with ErrInvalidSeat.
func RowIndex(letter string) (uint32, error) {
	l := NormalizeRow(letter)
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return 0, fmt.Errorf("%w: row must be a single letter A-Z, got %q", ErrInvalidSeat, letter)
	}
	return uint32(l[0]-'A') + 1, nil
}

// RowLetter is the inverse of RowIndex: 1→"A", 26→"Z". Indices outside
// 1..26 fail with ErrInvalidSeat.
func RowLetter(index uint32) (string, error) {
	if index < 1 || index > 26 {
		return "", fmt.Errorf("%w: row index %d out of range 1..26", ErrInvalidSeat, index)
	}
	return string(rune('A' + index - 1)), nil
}

// Validate checks a seat address against a session's grid: the row letter
// must map into 1..rows and the seat number into 1..columns. It is the
// single authority on seat validity; both reservation and seat moves go
// through it.
func Validate(rows, columns uint32, letter string, number uint32) error {
	idx, err := RowIndex(letter)
	if err != nil {
		return err
	}
	if idx > rows {
		return fmt.Errorf("%w: row %s does not exist for this session (max %d rows)", ErrInvalidSeat, NormalizeRow(letter), rows)
	}
	if number < 1 || number > columns {
		return fmt.Errorf("%w: seat number must be between 1 and %d", ErrInvalidSeat, columns)
	}
	return nil
}

// Label renders the human readable seat identifier, e.g. "B7". The letter
// is normalized so labels are stable regardless of input casing.
func Label(letter string, number uint32) string {
	return NormalizeRow(letter) + strconv.FormatUint(uint64(number), 10)
}

// ParseLabel splits a label produced by Label back into its row letter and
// seat number. Malformed labels fail with ErrInvalidSeat.
func ParseLabel(label string) (string, uint32, error) {
	l := strings.TrimSpace(label)
	if len(l) < 2 {
		return "", 0, fmt.Errorf("%w: label %q too short", ErrInvalidSeat, label)
	}
	letter := NormalizeRow(l[:1])
	if _, err := RowIndex(letter); err != nil {
		return "", 0, err
	}
	n, err := strconv.ParseUint(l[1:], 10, 32)
	if err != nil || n == 0 {
		return "", 0, fmt.Errorf("%w: bad seat number in label %q", ErrInvalidSeat, label)
	}
	return letter, uint32(n), nil
}
