// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.6
//

package georinex

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeCorr holds one system time correction from the header.
type TimeCorr struct {
	A0, A1  float64
	RefTime int
	RefWeek int
}

// Header holds the fields of a RINEX file header. Labels that carry no
// structured meaning for decoding are kept verbatim in Attrs.
type Header struct {
	Ver    float64 // version number (2.11, 3.04, ...)
	VerStr string  // version as written
	Type   byte    // 'O' or 'N'
	Sys    SysType // file system, 'M' for mixed

	Prog, RunBy, Date string
	Marker            string
	Observer, Agency  string
	RecNum, RecType   string
	RecVers           string
	AntNum, AntType   string

	Pos      PosXYZ // approximate marker position
	HasPos   bool
	AntDelta [3]float64 // antenna height, east and north eccentricity
	WaveFact [2]int

	CodesV2 []CodeType             // version 2 observation types
	Codes   map[SysType][]CodeType // version 3 observation types per system

	Interval   float64 // NaN when not given
	TimeSys    string
	FirstObs   time.Time
	HasFirst   bool
	LastObs    time.Time
	HasLast    bool
	ClkApplied bool
	Leap       int
	HasLeap    bool
	NumSats    int

	IonoCorr map[string][4]float64
	TimeCorr map[string]TimeCorr

	Comments []string
	Attrs    map[string][]string
}

// NewHeader returns a new header with empty tables.
func NewHeader() *Header {
	return &Header{
		Interval: math.NaN(),
		Codes:    map[SysType][]CodeType{},
		IonoCorr: map[string][4]float64{},
		TimeCorr: map[string]TimeCorr{},
		Attrs:    map[string][]string{},
	}
}

// The header label occupies columns 61-80.
func getHeaderLabel(line string) string {
	if len(line) < 61 {
		return ""
	}
	return strings.TrimSpace(line[60:])
}

func cutStr(line string, start, width int) string {
	return strings.TrimSpace(cut(line, start, width))
}

// Fix Beidou B1 observation codes in RINEX 3.02. In RINEX 3.04, the
// B1 (1561.098 MHz) observation codes {C|L|D|S}1{I|Q|X} have been
// changed to {C|L|D|S}2{I|Q|X}. Match 3.04.
func fixRnx302BeidouCode(code CodeType) CodeType {
	if len(code) == 3 && code[1] == '1' &&
		(code[2] == 'I' || code[2] == 'Q' || code[2] == 'X') {
		return code[:1] + "2" + code[2:]
	}
	return code
}

// Read header lines until END OF HEADER and fill h. The version line
// must appear before the end of the header.
func readHeader(ls *lineScanner) (*Header, error) {
	h := NewHeader()
	verSeen := false
	var contSys SysType

	// ---------------- label loop ----------------
	for {
		line, ok := ls.next()
		if !ok {
			if err := ls.err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("header ends before END OF HEADER: %w", ErrTruncated)
		}
		n := ls.num

		switch label := getHeaderLabel(line); label {
		case "RINEX VERSION / TYPE":
			v, vok, err := parseF(line, n, 0, 9)
			if err != nil {
				return nil, err
			}
			if !vok {
				return nil, ErrMissingVersion
			}
			h.Ver = v
			h.VerStr = cutStr(line, 0, 9)
			verSeen = true
			typ := byte(' ')
			if len(line) > 20 {
				typ = line[20]
			}
			sys := SysType(' ')
			if len(line) > 40 {
				sys = SysType(line[40])
			}
			switch typ {
			case 'O':
				h.Type = 'O'
				if sys == ' ' {
					sys = 'G'
				}
				h.Sys = sys
			case 'N':
				h.Type = 'N'
				if sys == ' ' || h.Ver < 3 {
					sys = 'G'
				}
				h.Sys = sys
			case 'G': // version 2 GLONASS navigation
				h.Type, h.Sys = 'N', 'R'
			case 'H': // version 2 GEO navigation
				h.Type, h.Sys = 'N', 'S'
			default:
				return nil, fmt.Errorf("unknown rinex file type %q at line %d", typ, n)
			}

		case "PGM / RUN BY / DATE":
			h.Prog = cutStr(line, 0, 20)
			h.RunBy = cutStr(line, 20, 20)
			h.Date = cutStr(line, 40, 20)

		case "COMMENT":
			h.Comments = append(h.Comments, strings.TrimRight(cut(line, 0, 60), " "))

		case "MARKER NAME":
			h.Marker = cutStr(line, 0, 60)

		case "OBSERVER / AGENCY":
			h.Observer = cutStr(line, 0, 20)
			h.Agency = cutStr(line, 20, 40)

		case "REC # / TYPE / VERS":
			h.RecNum = cutStr(line, 0, 20)
			h.RecType = cutStr(line, 20, 20)
			h.RecVers = cutStr(line, 40, 20)

		case "ANT # / TYPE":
			h.AntNum = cutStr(line, 0, 20)
			h.AntType = cutStr(line, 20, 20)

		case "APPROX POSITION XYZ":
			var xyz [3]float64
			for i := range xyz {
				v, _, err := parseF(line, n, i*14, 14)
				if err != nil {
					return nil, err
				}
				xyz[i] = v
			}
			h.Pos = PosXYZ{X: xyz[0], Y: xyz[1], Z: xyz[2]}
			h.HasPos = true

		case "ANTENNA: DELTA H/E/N":
			for i := range h.AntDelta {
				v, _, err := parseF(line, n, i*14, 14)
				if err != nil {
					return nil, err
				}
				h.AntDelta[i] = v
			}

		case "WAVELENGTH FACT L1/2":
			for i := range h.WaveFact {
				v, vok, err := parseI(line, n, i*6, 6)
				if err != nil {
					return nil, err
				}
				if vok {
					h.WaveFact[i] = v
				}
			}

		case "# / TYPES OF OBSERV":
			for i := 0; i < 9; i++ {
				if c := cutStr(line, 10+6*i, 2); c != "" {
					h.CodesV2 = append(h.CodesV2, CodeType(c))
				}
			}

		case "SYS / # / OBS TYPES":
			sys := contSys
			if len(line) > 0 && line[0] != ' ' {
				sys = SysType(line[0])
				contSys = sys
			}
			for i := 0; i < 13; i++ {
				c := cutStr(line, 7+4*i, 3)
				if c == "" {
					continue
				}
				code := CodeType(c)
				if h.VerStr == "3.02" && sys == 'C' {
					code = fixRnx302BeidouCode(code)
				}
				h.Codes[sys] = append(h.Codes[sys], code)
			}

		case "INTERVAL":
			v, vok, err := parseF(line, n, 0, 10)
			if err != nil {
				return nil, err
			}
			if vok {
				h.Interval = v
			}

		case "TIME OF FIRST OBS", "TIME OF LAST OBS":
			var f [5]int
			for i := range f {
				v, _, err := parseI(line, n, i*6, 6)
				if err != nil {
					return nil, err
				}
				f[i] = v
			}
			sec, _, err := parseF(line, n, 30, 13)
			if err != nil {
				return nil, err
			}
			t := epochTime(f[0], f[1], f[2], f[3], f[4], sec)
			if label == "TIME OF FIRST OBS" {
				h.FirstObs, h.HasFirst = t, true
			} else {
				h.LastObs, h.HasLast = t, true
			}
			if ts := cutStr(line, 48, 3); ts != "" && h.TimeSys == "" {
				h.TimeSys = ts
			}

		case "RCV CLOCK OFFS APPL":
			v, vok, err := parseI(line, n, 0, 6)
			if err != nil {
				return nil, err
			}
			h.ClkApplied = vok && v == 1

		case "LEAP SECONDS":
			v, vok, err := parseI(line, n, 0, 6)
			if err != nil {
				return nil, err
			}
			if vok {
				h.Leap, h.HasLeap = v, true
			}

		case "# OF SATELLITES":
			v, _, err := parseI(line, n, 0, 6)
			if err != nil {
				return nil, err
			}
			h.NumSats = v

		case "ION ALPHA", "ION BETA":
			var c [4]float64
			for i := range c {
				v, _, err := parseF(line, n, 2+12*i, 12)
				if err != nil {
					return nil, err
				}
				c[i] = v
			}
			if label == "ION ALPHA" {
				h.IonoCorr["GPSA"] = c
			} else {
				h.IonoCorr["GPSB"] = c
			}

		case "IONOSPHERIC CORR":
			var c [4]float64
			for i := range c {
				v, _, err := parseF(line, n, 5+12*i, 12)
				if err != nil {
					return nil, err
				}
				c[i] = v
			}
			h.IonoCorr[cutStr(line, 0, 4)] = c

		case "DELTA-UTC: A0,A1,T,W":
			a0, _, err := parseF(line, n, 3, 19)
			if err != nil {
				return nil, err
			}
			a1, _, err := parseF(line, n, 22, 19)
			if err != nil {
				return nil, err
			}
			t, _, err := parseI(line, n, 41, 9)
			if err != nil {
				return nil, err
			}
			w, _, err := parseI(line, n, 50, 9)
			if err != nil {
				return nil, err
			}
			h.TimeCorr["GPUT"] = TimeCorr{A0: a0, A1: a1, RefTime: t, RefWeek: w}

		case "TIME SYSTEM CORR":
			a0, _, err := parseF(line, n, 5, 17)
			if err != nil {
				return nil, err
			}
			a1, _, err := parseF(line, n, 22, 16)
			if err != nil {
				return nil, err
			}
			t, _, err := parseI(line, n, 38, 7)
			if err != nil {
				return nil, err
			}
			w, _, err := parseI(line, n, 45, 5)
			if err != nil {
				return nil, err
			}
			h.TimeCorr[cutStr(line, 0, 4)] = TimeCorr{A0: a0, A1: a1, RefTime: t, RefWeek: w}

		case "END OF HEADER":
			if !verSeen {
				return nil, ErrMissingVersion
			}
			return h, nil

		default:
			if label == "" {
				continue
			}
			h.Attrs[label] = append(h.Attrs[label], strings.TrimRight(cut(line, 0, 60), " "))
		}
	}
}
