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

// obs3Grammar decodes version 3 observation bodies. Epoch lines start
// with '>' and each following line holds one satellite id and the cells
// of its system's observation types.
type obs3Grammar struct{}

func (p *obs3Grammar) parseHeader(h *Header) error {
	if len(h.Codes) == 0 {
		return fmt.Errorf("version 3 observation header lists no observation types")
	}
	return nil
}

func (p *obs3Grammar) parseBody(ls *lineScanner, h *Header, b *builder, opt *ReadOpt) error {
	for {
		line, ok := ls.next()
		if !ok {
			return ls.err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := ls.num
		if line[0] != '>' {
			return fmt.Errorf("expected epoch line at line %d", n)
		}

		vals, oks, err := decodeFields(line, n, obsEpoch3)
		if err != nil {
			return err
		}
		flag := 0
		if oks[6] {
			flag = int(vals[6])
		}
		if !oks[7] {
			return fieldErrAt(line, n, obsEpoch3[7])
		}
		nsat := int(vals[7])

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
				return fieldErrAt(line, n, obsEpoch3[i])
			}
		}
		t := epochTime(int(vals[0]), int(vals[1]), int(vals[2]),
			int(vals[3]), int(vals[4]), vals[5])
		if !opt.Te.IsZero() && t.After(opt.Te) {
			return nil
		}
		clk, hasClk, err := parseF(line, n, obsClk3.start, obsClk3.width)
		if err != nil {
			return err
		}

		keep := opt.keepTime(t)
		r := -1
		for i := 0; i < nsat; i++ {
			dl, ok := ls.next()
			if !ok {
				return fmt.Errorf("observation record at line %d: %w", n, ErrTruncated)
			}
			dn := ls.num
			sat, known, err := parseSat(dl, dn, 0, ' ')
			if err != nil {
				return err
			}
			if !known {
				b.warns.Add(dn, "unknown constellation in %q", string(sat))
				continue
			}
			codes := h.Codes[sat.Sys()]
			if len(codes) == 0 {
				b.warns.Add(dn, "no observation types for system %c", sat.Sys())
				continue
			}
			if !keep || !opt.wantSat(sat) {
				continue
			}
			if r < 0 {
				r = b.row(t, flag, clk, hasClk, n)
			}
			c := b.col(sat)
			b.mark(r, c, dn, sat, t)
			for j, code := range codes {
				if !opt.wantCode(code) {
					continue
				}
				v, lli, ssi, vok, err := parseObsCell(dl, dn, 3+j*obsCellWidth)
				if err != nil {
					return err
				}
				if vok {
					b.put(string(code), r, c, v, lli, ssi)
				}
			}
		}
	}
}
