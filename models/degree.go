// ABOUTME: Three-state connection degree used in patches
// ABOUTME: Distinguishes an absent degree from an explicit zero
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Degree is an optional connection degree. The zero value is absent.
type Degree struct {
	value int
	set   bool
}

// DegreeOf returns an explicitly set degree.
func DegreeOf(n int) Degree {
	return Degree{value: n, set: true}
}

// Get returns the degree and whether it was set.
func (d Degree) Get() (int, bool) {
	return d.value, d.set
}

// IsSet reports whether a degree was supplied.
func (d Degree) IsSet() bool {
	return d.set
}

// IsZero reports whether the degree is absent. Used by the omitzero json option.
func (d Degree) IsZero() bool {
	return !d.set
}

func (d Degree) String() string {
	if !d.set {
		return "unset"
	}
	return strconv.Itoa(d.value)
}

func (d Degree) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(d.value)), nil
}

func (d *Degree) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Degree{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("connectionDegree must be an integer: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("connectionDegree must not be negative, got %d", n)
	}
	*d = DegreeOf(n)
	return nil
}

// ConnectionLabel renders a degree the way LinkedIn does: 1st, 2nd, 3rd, 4th...
func ConnectionLabel(degree int) string {
	switch degree {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	}
	return fmt.Sprintf("%dth", degree)
}
