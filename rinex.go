// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.9
//

// Package georinex decodes RINEX observation and navigation files,
// versions 2 and 3, into dense per-field grids.
package georinex

// RINEX 3.04 specification
// https://files.igs.org/pub/data/format/rinex304.pdf
//

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

var (
	ErrMissingVersion     = errors.New("missing rinex version")
	ErrUnsupportedVersion = errors.New("unsupported rinex version")
	ErrTruncated          = errors.New("unexpected end of file")
)

// ------------------------------------
// Line scanner
// ------------------------------------

// lineScanner walks a file line by line, counting lines for error
// reports and allowing one line of pushback.
type lineScanner struct {
	sc      *bufio.Scanner
	num     int
	pending string
	hasPend bool
}

func newLineScanner(r io.Reader) *lineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineScanner{sc: sc}
}

func (p *lineScanner) next() (string, bool) {
	if p.hasPend {
		p.hasPend = false
		return p.pending, true
	}
	if !p.sc.Scan() {
		return "", false
	}
	p.num++
	return strings.TrimRight(p.sc.Text(), "\r"), true
}

func (p *lineScanner) unread(line string) {
	p.pending, p.hasPend = line, true
}

func (p *lineScanner) err() error {
	return p.sc.Err()
}

// parseSat reads a three-column satellite id like "G07" or " 12". A
// blank system letter falls back to def. The second return is false
// for a letter outside the known constellations, with the raw id kept
// in the first for the caller's warning.
func parseSat(line string, lineNum, start int, def SysType) (SatType, bool, error) {
	sys := def
	if f := cut(line, start, 1); f != "" {
		sys = SysType(f[0])
	}
	num, ok, err := parseI(line, lineNum, start+1, 2)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, &FieldError{Line: lineNum, Start: start, End: start + 3,
			Text: cut(line, start, 3)}
	}
	if !sys.IsValid() {
		return SatType(fmt.Sprintf("%c%02d", sys, num)), false, nil
	}
	return NewSat(sys, num), true, nil
}

// ------------------------------------
// Read options
// ------------------------------------

// ReadOpt filters records while decoding. The zero value of each field
// keeps everything.
type ReadOpt struct {
	Ts, Te  time.Time  // time window
	Ti      float64    // decimation interval [s]
	Sys     []SysType  // constellations to keep
	Meas    []CodeType // observation codes or code prefixes to keep
	ExSats  []SatType  // satellites to drop
	Workers int        // parallel decoders for ReadFiles
}

// NewReadOpt returns options with default values.
func NewReadOpt() *ReadOpt {
	return &ReadOpt{Workers: 4}
}

func (p *ReadOpt) keepTime(t time.Time) bool {
	if !p.Ts.IsZero() && t.Before(p.Ts) {
		return false
	}
	if !p.Te.IsZero() && t.After(p.Te) {
		return false
	}
	if p.Ti > 0 && !NewGTime(t).Divisible(int(p.Ti)) {
		return false
	}
	return true
}

func (p *ReadOpt) wantSat(sat SatType) bool {
	if slices.Contains(p.ExSats, sat) {
		return false
	}
	return len(p.Sys) == 0 || slices.Contains(p.Sys, sat.Sys())
}

// Measurement names select by prefix, so "L1" keeps L1C, L1P, ...
func (p *ReadOpt) wantCode(code CodeType) bool {
	if len(p.Meas) == 0 {
		return true
	}
	for _, m := range p.Meas {
		if strings.HasPrefix(string(code), string(m)) {
			return true
		}
	}
	return false
}

// ------------------------------------
// Decoders
// ------------------------------------

// Each version and file type pair has its own body decoder behind this
// interface. parseHeader checks that the header holds what the body
// needs before any record is read.
type grammar interface {
	parseHeader(h *Header) error
	parseBody(ls *lineScanner, h *Header, b *builder, opt *ReadOpt) error
}

func selectGrammar(h *Header) (grammar, error) {
	switch maj := int(h.Ver); {
	case h.Type == 'O' && maj == 2:
		return &obs2Grammar{}, nil
	case h.Type == 'O' && maj == 3:
		return &obs3Grammar{}, nil
	case h.Type == 'N' && maj == 2:
		return &nav2Grammar{}, nil
	case h.Type == 'N' && maj == 3:
		return &nav3Grammar{}, nil
	}
	return nil, fmt.Errorf("version %s: %w", h.VerStr, ErrUnsupportedVersion)
}

// Read decodes one RINEX file. A nil opt keeps every record.
func Read(r io.Reader, opt *ReadOpt) (*Dataset, error) {
	if opt == nil {
		opt = NewReadOpt()
	}
	ls := newLineScanner(r)
	h, err := readHeader(ls)
	if err != nil {
		return nil, err
	}
	g, err := selectGrammar(h)
	if err != nil {
		return nil, err
	}
	if err := g.parseHeader(h); err != nil {
		return nil, err
	}
	b := newBuilder(h)
	if err := g.parseBody(ls, h, b, opt); err != nil {
		return nil, err
	}
	d := b.finalize()
	PrintD(1, "read %s\n", d)
	return d, nil
}

// ReadFile decodes the named RINEX file.
func ReadFile(fn string, opt *ReadOpt) (*Dataset, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	d, err := Read(fp, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return d, nil
}

// ReadFiles decodes several files with opt.Workers parallel decoders.
// The datasets come back in argument order. On failure the first error
// is returned along with the datasets that did decode.
func ReadFiles(fns []string, opt *ReadOpt) ([]*Dataset, error) {
	if opt == nil {
		opt = NewReadOpt()
	}
	nw := opt.Workers
	if nw < 1 {
		nw = 1
	}
	if nw > len(fns) {
		nw = len(fns)
	}
	out := make([]*Dataset, len(fns))
	errs := make([]error, len(fns))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], errs[i] = ReadFile(fns[i], opt)
			}
		}()
	}
	for i := range fns {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// ReadHeader decodes only the header of a RINEX file.
func ReadHeader(r io.Reader) (*Header, error) {
	return readHeader(newLineScanner(r))
}

// ScanTimes lists the epoch timestamps of an observation file without
// decoding any observation cells.
func ScanTimes(r io.Reader) ([]time.Time, error) {
	ls := newLineScanner(r)
	h, err := readHeader(ls)
	if err != nil {
		return nil, err
	}
	if h.Type != 'O' {
		return nil, fmt.Errorf("time scan needs an observation file")
	}
	if _, err := selectGrammar(h); err != nil {
		return nil, err
	}

	skip := func(k, n int) error {
		for i := 0; i < k; i++ {
			if _, ok := ls.next(); !ok {
				return fmt.Errorf("record at line %d: %w", n, ErrTruncated)
			}
		}
		return nil
	}

	var out []time.Time
	if int(h.Ver) == 3 {
		for {
			line, ok := ls.next()
			if !ok {
				return out, ls.err()
			}
			if len(line) == 0 || line[0] != '>' {
				continue
			}
			n := ls.num
			vals, oks, err := decodeFields(line, n, obsEpoch3)
			if err != nil {
				return nil, err
			}
			if !oks[7] {
				return nil, fieldErrAt(line, n, obsEpoch3[7])
			}
			nsat := int(vals[7])
			if oks[6] && int(vals[6]) > 1 {
				if err := skip(nsat, n); err != nil {
					return nil, err
				}
				continue
			}
			out = append(out, epochTime(int(vals[0]), int(vals[1]), int(vals[2]),
				int(vals[3]), int(vals[4]), vals[5]))
			if err := skip(nsat, n); err != nil {
				return nil, err
			}
		}
	}

	// version 2: the line count per epoch follows from the satellite
	// count and the number of observation types
	nl := (len(h.CodesV2) + obsPerLine2 - 1) / obsPerLine2
	for {
		line, ok := ls.next()
		if !ok {
			return out, ls.err()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := ls.num
		vals, oks, err := decodeFields(line, n, obsEpoch2)
		if err != nil {
			return nil, err
		}
		if !oks[7] {
			return nil, fieldErrAt(line, n, obsEpoch2[7])
		}
		nsat := int(vals[7])
		if oks[6] && int(vals[6]) > 1 {
			if err := skip(nsat, n); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, epochTime(expandYear(int(vals[0])), int(vals[1]), int(vals[2]),
			int(vals[3]), int(vals[4]), vals[5]))
		extra := (nsat+satPerLine2-1)/satPerLine2 - 1
		if err := skip(extra+nsat*nl, n); err != nil {
			return nil, err
		}
	}
}

// ------------------------------------
// Accuracy indices
// ------------------------------------

// URAIndex returns the URA index for a user range accuracy in meters.
func URAIndex(x float64) int {
	if x > 0 && x <= 2.4 {
		return 0
	} else if x > 2.4 && x <= 3.4 {
		return 1
	} else if x > 3.4 && x <= 4.85 {
		return 2
	} else if x > 4.85 && x <= 6.85 {
		return 3
	} else if x > 6.85 && x <= 9.65 {
		return 4
	} else if x > 9.65 && x <= 13.65 {
		return 5
	} else if x > 13.65 && x <= 24.0 {
		return 6
	} else if x > 24.0 && x <= 48.0 {
		return 7
	} else if x > 48.0 && x <= 96.0 {
		return 8
	} else if x > 96.0 && x <= 192.0 {
		return 9
	} else if x > 192.0 && x <= 384.0 {
		return 10
	} else if x > 384.0 && x <= 768.0 {
		return 11
	} else if x > 768.0 && x <= 1536.0 {
		return 12
	} else if x > 1536.0 && x <= 3072.0 {
		return 13
	} else if x > 3072.0 && x <= 6144.0 {
		return 14
	} else {
		return 15
	}
}

// SISAIndex returns the Galileo SISA index for an accuracy in meters.
func SISAIndex(x float64) int {
	if x >= 0 && x <= 0.5 {
		return int(x / 0.01)
	} else if x > 0.5 && x <= 1.0 {
		return int((x-0.5)/0.02) + 50
	} else if x > 1.0 && x <= 2.0 {
		return int((x-1.0)/0.04) + 75
	} else if x > 2.0 && x <= 6.0 {
		return int((x-2.0)/0.16) + 100
	} else {
		return 255
	}
}
