// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.8
//

package georinex

import (
	"fmt"
	"strings"
)

// Decode the three clock fields on the first line of a record.
func parseNavClock(line string, lineNum int, cols [3]int) (vals [3]float64, oks [3]bool, err error) {
	for i := range cols {
		vals[i], oks[i], err = parseF(line, lineNum, cols[i], navValWidth)
		if err != nil {
			return vals, oks, err
		}
	}
	return vals, oks, nil
}

// Read the continuation lines of one record and store the named
// parameters. A nil builder consumes the lines without storing, for
// records dropped by a filter.
func parseNavRows(ls *lineScanner, b *builder, r, c int, rows [][4]string, cols [4]int, recLine int) error {
	for _, row := range rows {
		cl, ok := ls.next()
		if !ok {
			return fmt.Errorf("navigation record at line %d: %w", recLine, ErrTruncated)
		}
		if b == nil {
			continue
		}
		for k, name := range row {
			if name == "" {
				continue
			}
			v, vok, err := parseF(cl, ls.num, cols[k], navValWidth)
			if err != nil {
				return err
			}
			if vok {
				b.putNav(name, r, c, v)
			}
		}
	}
	return nil
}

// nav2Grammar decodes version 2 navigation bodies. The constellation is
// fixed by the file type, records start with a two-column PRN and a
// two-digit year.
type nav2Grammar struct{}

func (p *nav2Grammar) parseHeader(h *Header) error {
	if navParams[h.Sys] == nil {
		return fmt.Errorf("no navigation layout for system %c", h.Sys)
	}
	return nil
}

func (p *nav2Grammar) parseBody(ls *lineScanner, h *Header, b *builder, opt *ReadOpt) error {
	rows := navParams[h.Sys]
	names := navClockNames[h.Sys]

	for {
		line, ok := ls.next()
		if !ok {
			return ls.err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := ls.num
		if cutStr(line, 0, 2) == "" {
			b.warns.Add(n, "stray line in navigation body")
			continue
		}

		prn, _, err := parseI(line, n, 0, 2)
		if err != nil {
			return err
		}
		sat := NewSat(h.Sys, prn)
		vals, oks, err := decodeFields(line, n, navToc2)
		if err != nil {
			return err
		}
		for i := range oks {
			if !oks[i] {
				return fieldErrAt(line, n, navToc2[i])
			}
		}
		t := epochTime(expandYear(int(vals[0])), int(vals[1]), int(vals[2]),
			int(vals[3]), int(vals[4]), vals[5])
		clk, clkOk, err := parseNavClock(line, n, navClockCols2)
		if err != nil {
			return err
		}

		if !opt.keepTime(t) || !opt.wantSat(sat) {
			if err := parseNavRows(ls, nil, 0, 0, rows, navContCols2, n); err != nil {
				return err
			}
			continue
		}

		r := b.row(t, 0, 0, false, n)
		c := b.col(sat)
		b.mark(r, c, n, sat, t)
		for i, name := range names {
			if !clkOk[i] {
				continue
			}
			v := clk[i]
			// GLONASS files store -TauN
			if h.Sys == 'R' && name == "TauN" {
				v = -v
			}
			b.putNav(name, r, c, v)
		}
		if err := parseNavRows(ls, b, r, c, rows, navContCols2, n); err != nil {
			return err
		}
	}
}
