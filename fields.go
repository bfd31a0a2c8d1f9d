// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.6
//

package georinex

// Record layouts are tables of fixed-column field descriptors consumed
// by one positional decoder, so the version and constellation quirks
// stay data instead of scattered slicing.

type fieldKind int

const (
	fkFloat fieldKind = iota
	fkInt
)

type fieldDesc struct {
	name  string
	start int
	width int
	kind  fieldKind
}

// Decode one line against a descriptor table. Returns the values and a
// presence flag per descriptor; blank fields are absent, not zero.
func decodeFields(line string, lineNum int, descs []fieldDesc) ([]float64, []bool, error) {
	vals := make([]float64, len(descs))
	oks := make([]bool, len(descs))
	for i, d := range descs {
		switch d.kind {
		case fkInt:
			v, ok, err := parseI(line, lineNum, d.start, d.width)
			if err != nil {
				return nil, nil, err
			}
			vals[i], oks[i] = float64(v), ok
		default:
			v, ok, err := parseF(line, lineNum, d.start, d.width)
			if err != nil {
				return nil, nil, err
			}
			vals[i], oks[i] = v, ok
		}
	}
	return vals, oks, nil
}

// fieldErrAt reports a required field that came up blank.
func fieldErrAt(line string, lineNum int, d fieldDesc) error {
	return &FieldError{Line: lineNum, Start: d.start, End: d.start + d.width,
		Text: cut(line, d.start, d.width)}
}

// ------------------------------------
// Epoch line layouts
// ------------------------------------

// Version 2 observation epoch line (two-digit year)
var obsEpoch2 = []fieldDesc{
	{"year", 1, 2, fkInt},
	{"month", 4, 2, fkInt},
	{"day", 7, 2, fkInt},
	{"hour", 10, 2, fkInt},
	{"min", 13, 2, fkInt},
	{"sec", 15, 11, fkFloat},
	{"flag", 28, 1, fkInt},
	{"nsat", 29, 3, fkInt},
}

// Optional receiver clock offset on the version 2 epoch line
var obsClk2 = fieldDesc{"clk", 68, 12, fkFloat}

// Version 3 observation epoch line ('>' at column 0)
var obsEpoch3 = []fieldDesc{
	{"year", 2, 4, fkInt},
	{"month", 7, 2, fkInt},
	{"day", 10, 2, fkInt},
	{"hour", 13, 2, fkInt},
	{"min", 16, 2, fkInt},
	{"sec", 18, 11, fkFloat},
	{"flag", 31, 1, fkInt},
	{"nsat", 32, 3, fkInt},
}

// Optional receiver clock offset on the version 3 epoch line
var obsClk3 = fieldDesc{"clk", 41, 15, fkFloat}

// Observation data cells are 16 columns wide: value, LLI digit, SSI digit
const (
	obsCellWidth = 16
	obsValWidth  = 14
	obsPerLine2  = 5  // cells per version 2 data line
	satPerLine2  = 12 // satellite ids per version 2 epoch line
	satListCol2  = 32 // first satellite id column
)

// ------------------------------------
// Navigation record layouts
// ------------------------------------

// Time of clock on the first line of a record
var navToc2 = []fieldDesc{
	{"year", 3, 2, fkInt},
	{"month", 6, 2, fkInt},
	{"day", 9, 2, fkInt},
	{"hour", 12, 2, fkInt},
	{"min", 15, 2, fkInt},
	{"sec", 17, 5, fkFloat},
}

var navToc3 = []fieldDesc{
	{"year", 4, 4, fkInt},
	{"month", 9, 2, fkInt},
	{"day", 12, 2, fkInt},
	{"hour", 15, 2, fkInt},
	{"min", 18, 2, fkInt},
	{"sec", 21, 2, fkInt},
}

// Column offsets of the three clock fields on the first line and of the
// four value fields on each continuation line (all D19.12)
var (
	navClockCols2 = [3]int{22, 41, 60}
	navClockCols3 = [3]int{23, 42, 61}
	navContCols2  = [4]int{3, 22, 41, 60}
	navContCols3  = [4]int{4, 23, 42, 61}
)

const navValWidth = 19

// Clock parameter names on the first record line
var navClockNames = map[SysType][3]string{
	'G': {"Af0", "Af1", "Af2"},
	'J': {"Af0", "Af1", "Af2"},
	'E': {"Af0", "Af1", "Af2"},
	'C': {"Af0", "Af1", "Af2"},
	'I': {"Af0", "Af1", "Af2"},
	'R': {"TauN", "GammaN", "Tof"},
	'S': {"Gf0", "Gf1", "Tot"},
}

// Broadcast parameter names per continuation line, four per line.
// Empty names mark spare fields that are not stored. The number of rows
// fixes the continuation line count of the record.
var navParams = map[SysType][][4]string{
	'G': {
		{"Iode", "Crs", "DeltaN", "M0"},
		{"Cuc", "Ecc", "Cus", "SqrtA"},
		{"Toe", "Cic", "Omega0", "Cis"},
		{"I0", "Crc", "Omega", "OmegaD"},
		{"Idot", "Code", "Week", "Flag"},
		{"Sva", "Svh", "Tgd", "Iodc"},
		{"Tot", "Fit", "", ""},
	},
	'J': {
		{"Iode", "Crs", "DeltaN", "M0"},
		{"Cuc", "Ecc", "Cus", "SqrtA"},
		{"Toe", "Cic", "Omega0", "Cis"},
		{"I0", "Crc", "Omega", "OmegaD"},
		{"Idot", "Code", "Week", "Flag"},
		{"Sva", "Svh", "Tgd", "Iodc"},
		{"Tot", "Fit", "", ""},
	},
	'E': {
		{"Iode", "Crs", "DeltaN", "M0"},
		{"Cuc", "Ecc", "Cus", "SqrtA"},
		{"Toe", "Cic", "Omega0", "Cis"},
		{"I0", "Crc", "Omega", "OmegaD"},
		{"Idot", "Code", "Week", ""},
		{"Sva", "Svh", "Tgd", "Tgd2"}, // SISA, health, BGD E5a/E1, BGD E5b/E1
		{"Tot", "", "", ""},
	},
	'C': {
		{"Iode", "Crs", "DeltaN", "M0"}, // AODE
		{"Cuc", "Ecc", "Cus", "SqrtA"},
		{"Toe", "Cic", "Omega0", "Cis"},
		{"I0", "Crc", "Omega", "OmegaD"},
		{"Idot", "", "Week", ""},      // BDT week, stored as written
		{"Sva", "Svh", "Tgd", "Tgd2"}, // TGD1 B1/B3, TGD2 B2/B3
		{"Tot", "Iodc", "", ""},       // AODC
	},
	'I': {
		{"Iode", "Crs", "DeltaN", "M0"},
		{"Cuc", "Ecc", "Cus", "SqrtA"},
		{"Toe", "Cic", "Omega0", "Cis"},
		{"I0", "Crc", "Omega", "OmegaD"},
		{"Idot", "", "Week", ""},
		{"Sva", "Svh", "Tgd", ""},
		{"Tot", "", "", ""},
	},
	'R': {
		{"PosX", "VecX", "AccX", "Svh"},
		{"PosY", "VecY", "AccY", "FreqN"},
		{"PosZ", "VecZ", "AccZ", "Age"},
	},
	'S': {
		{"PosX", "VecX", "AccX", "Svh"},
		{"PosY", "VecY", "AccY", "Sva"}, // URA
		{"PosZ", "VecZ", "AccZ", "Iodn"},
	},
}
