// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.7
//

package georinex

import (
	"fmt"
	"strings"
)

// Observation cells are value, loss-of-lock digit, strength digit.
// A blank value means the cell is absent and the digits are ignored.
func parseObsCell(line string, lineNum, start int) (val, lli, ssi float64, ok bool, err error) {
	val, ok, err = parseF(line, lineNum, start, obsValWidth)
	if err != nil || !ok {
		return 0, 0, 0, false, err
	}
	lli = digitAt(line, start+obsValWidth)
	ssi = digitAt(line, start+obsValWidth+1)
	return val, lli, ssi, true, nil
}

func digitAt(line string, col int) float64 {
	if col < len(line) && line[col] >= '0' && line[col] <= '9' {
		return float64(line[col] - '0')
	}
	return 0
}

// obs2Grammar decodes version 2 observation bodies. Epoch lines carry a
// two-digit year and up to twelve satellite ids, continued on further
// lines, followed by one or more data lines per satellite with five
// cells each.
type obs2Grammar struct{}

func (p *obs2Grammar) parseHeader(h *Header) error {
	if len(h.CodesV2) == 0 {
		return fmt.Errorf("version 2 observation header lists no observation types")
	}
	return nil
}

func (p *obs2Grammar) parseBody(ls *lineScanner, h *Header, b *builder, opt *ReadOpt) error {
	codes := h.CodesV2
	nl := (len(codes) + obsPerLine2 - 1) / obsPerLine2 // data lines per satellite

	for {
		line, ok := ls.next()
		if !ok {
			return ls.err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := ls.num

		vals, oks, err := decodeFields(line, n, obsEpoch2)
		if err != nil {
			return err
		}
		flag := 0
		if oks[6] {
			flag = int(vals[6])
		}
		if !oks[7] {
			return fieldErrAt(line, n, obsEpoch2[7])
		}
		nsat := int(vals[7])

		// Epoch flags above 1 mark events. The satellite count field
		// then holds the number of records to skip.
		if flag > 1 {
			for i := 0; i < nsat; i++ {
				if _, ok := ls.next(); !ok {
					return fmt.Errorf("event record at line %d: %w", n, ErrTruncated)
				}
			}
			continue
		}

		for i := 0; i < 6; i++ {
			if !oks[i] {
				return fieldErrAt(line, n, obsEpoch2[i])
			}
		}
		t := epochTime(expandYear(int(vals[0])), int(vals[1]), int(vals[2]),
			int(vals[3]), int(vals[4]), vals[5])
		if !opt.Te.IsZero() && t.After(opt.Te) {
			return nil
		}
		clk, hasClk, err := parseF(line, n, obsClk2.start, obsClk2.width)
		if err != nil {
			return err
		}

		// ---------------- satellite list ----------------
		sats := make([]SatType, 0, nsat)
		cur, curN := line, n
		for len(sats) < nsat {
			if len(sats) > 0 && len(sats)%satPerLine2 == 0 {
				cur, ok = ls.next()
				if !ok {
					return fmt.Errorf("satellite list at line %d: %w", n, ErrTruncated)
				}
				curN = ls.num
			}
			sat, known, err := parseSat(cur, curN, satListCol2+3*(len(sats)%satPerLine2), h.Sys)
			if err != nil {
				return err
			}
			if !known {
				b.warns.Add(curN, "unknown constellation in %q", string(sat))
				sat = ""
			}
			sats = append(sats, sat)
		}

		// ---------------- data lines ----------------
		keep := opt.keepTime(t)
		r := -1
		for _, sat := range sats {
			use := keep && sat != "" && opt.wantSat(sat)
			var c int
			if use {
				if r < 0 {
					r = b.row(t, flag, clk, hasClk, n)
				}
				c = b.col(sat)
				b.mark(r, c, n, sat, t)
			}
			for li := 0; li < nl; li++ {
				dl, ok := ls.next()
				if !ok {
					return fmt.Errorf("observation record at line %d: %w", n, ErrTruncated)
				}
				if !use {
					continue
				}
				for k := 0; k < obsPerLine2; k++ {
					j := li*obsPerLine2 + k
					if j >= len(codes) {
						break
					}
					if !opt.wantCode(codes[j]) {
						continue
					}
					v, lli, ssi, vok, err := parseObsCell(dl, ls.num, k*obsCellWidth)
					if err != nil {
						return err
					}
					if vok {
						b.put(string(codes[j]), r, c, v, lli, ssi)
					}
				}
			}
		}
	}
}
