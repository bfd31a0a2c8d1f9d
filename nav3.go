// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.8
//

package georinex

import (
	"strings"
)

// nav3Grammar decodes version 3 navigation bodies. Files may mix
// constellations, so the record layout is chosen per record from the
// satellite id on its first line.
type nav3Grammar struct{}

func (p *nav3Grammar) parseHeader(h *Header) error {
	return nil
}

func (p *nav3Grammar) parseBody(ls *lineScanner, h *Header, b *builder, opt *ReadOpt) error {
	for {
		line, ok := ls.next()
		if !ok {
			return ls.err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := ls.num
		if line[0] == ' ' {
			b.warns.Add(n, "stray line in navigation body")
			continue
		}

		sat, known, err := parseSat(line, n, 0, ' ')
		if err != nil {
			return err
		}
		if !known || navParams[sat.Sys()] == nil {
			b.warns.Add(n, "unknown constellation in %q", string(sat))
			// The record length is unknown, drop its continuation lines.
			for {
				cl, ok := ls.next()
				if !ok {
					return ls.err()
				}
				if len(cl) > 0 && cl[0] != ' ' {
					ls.unread(cl)
					break
				}
			}
			continue
		}
		sys := sat.Sys()
		rows := navParams[sys]
		names := navClockNames[sys]

		vals, oks, err := decodeFields(line, n, navToc3)
		if err != nil {
			return err
		}
		for i := range oks {
			if !oks[i] {
				return fieldErrAt(line, n, navToc3[i])
			}
		}
		t := epochTime(int(vals[0]), int(vals[1]), int(vals[2]),
			int(vals[3]), int(vals[4]), vals[5])
		clk, clkOk, err := parseNavClock(line, n, navClockCols3)
		if err != nil {
			return err
		}

		if !opt.keepTime(t) || !opt.wantSat(sat) {
			if err := parseNavRows(ls, nil, 0, 0, rows, navContCols3, n); err != nil {
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
			// GLONASS records store -TauN
			if sys == 'R' && name == "TauN" {
				v = -v
			}
			b.putNav(name, r, c, v)
		}
		if err := parseNavRows(ls, b, r, c, rows, navContCols3, n); err != nil {
			return err
		}
	}
}
