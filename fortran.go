// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.5
//

package georinex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Base error wrapped by every FieldError
var ErrMalformedField = errors.New("malformed numeric field")

// FieldError reports a fixed-width field that is non-blank but not a
// valid number. Start and End are 0-origin column offsets into the line.
type FieldError struct {
	Line  int
	Start int
	End   int
	Text  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed numeric field %q at line %d cols %d-%d", e.Text, e.Line, e.Start+1, e.End)
}

func (e *FieldError) Unwrap() error {
	return ErrMalformedField
}

// Cut out the field at [start, start+width) clamped to the line length.
// RINEX lines are commonly right-trimmed, so a field past the end of the
// line is the same as a blank field.
func cut(line string, start, width int) string {
	if start >= len(line) {
		return ""
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// Read a real value from a fixed-width field. RINEX floats may carry a
// Fortran D exponent marker and positive exponents may omit the sign.
// A blank field returns ok=false; it is never coerced to zero.
func parseF(line string, lineNum, start, width int) (v float64, ok bool, err error) {
	s := strings.TrimSpace(cut(line, start, width))
	if s == "" {
		return 0, false, nil
	}
	if strings.ContainsAny(s, "Dd") {
		s = strings.Replace(s, "D", "E", 1)
		s = strings.Replace(s, "d", "e", 1)
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, &FieldError{Line: lineNum, Start: start, End: start + width, Text: strings.TrimSpace(cut(line, start, width))}
	}
	return v, true, nil
}

// Read an integer value from a fixed-width field. Blank returns ok=false.
func parseI(line string, lineNum, start, width int) (v int, ok bool, err error) {
	s := strings.TrimSpace(cut(line, start, width))
	if s == "" {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return 0, false, &FieldError{Line: lineNum, Start: start, End: start + width, Text: s}
	}
	return int(i), true, nil
}
