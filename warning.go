// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.4
//

package georinex

import (
	"fmt"
	"strings"
)

// Warning records a recoverable condition found while decoding.
// Decoding continues past a Warning; only the conditions listed as
// fatal abort a file.
type Warning struct {
	Line int    // Line number in the source file (1-origin)
	Msg  string // Description of the condition
}

func (w *Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}

// List of warnings accumulated over one file, attached to the Dataset
type WarningList []*Warning

// Append a warning
func (p *WarningList) Add(line int, format string, a ...any) {
	*p = append(*p, &Warning{Line: line, Msg: fmt.Sprintf(format, a...)})
}

func (p *WarningList) Len() int {
	return len(*p)
}

func (p *WarningList) String() string {
	var sb strings.Builder
	for _, w := range *p {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
