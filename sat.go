// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.5
//

package georinex

import (
	"fmt"
	"strconv"
)

// Type representing satellite name like "G10"
type SatType string

// Type representing satellite system like 'G'
type SysType byte

// Type representing observation codes like C1C (3 or 2 characters)
type CodeType string

// Extract satellite system from satellite name
func (p *SatType) Sys() SysType {
	return SysType((*p)[0])
}

// Check validity of satellite system
func (p *SysType) IsValid() bool {
	return *p == 'G' || *p == 'J' || *p == 'E' || *p == 'R' || *p == 'C' || *p == 'S' || *p == 'I'
}

// Extract satellite number from satellite name
func (p *SatType) Num() int {
	i, err := strconv.Atoi(string((*p)[1:3]))
	if err != nil {
		return 0
	}
	return i
}

// Build a normalized satellite name. Blank-padded numbers found in files
// ("G 7") come out zero-padded ("G07").
func NewSat(sys SysType, num int) SatType {
	return SatType(fmt.Sprintf("%c%02d", sys, num))
}

// Returns observation type (C,L,D,S)
func (p *CodeType) T() byte {
	return (*p)[0]
}

// Returns frequency band and attributes of observation (1C,2P,5I etc.)
func (p *CodeType) NA() CodeType {
	return CodeType(*p)[1:]
}

// Carrier frequency for each observation code
var CODE_FREQS = map[SysType]map[CodeType]float64{
	'G': {
		"1C": 1.57542e9, "1P": 1.57542e9, "1Y": 1.57542e9, "1W": 1.57542e9, // L1
		"1M": 1.57542e9, "1N": 1.57542e9, "1S": 1.57542e9, "1L": 1.57542e9, "1X": 1.57542e9,
		"2C": 1.22760e9, "2P": 1.22760e9, "2Y": 1.22760e9, "2W": 1.22760e9, // L2
		"2M": 1.22760e9, "2N": 1.22760e9, "2D": 1.22760e9, "2L": 1.22760e9, "2S": 1.22760e9, "2X": 1.22760e9,
		"5I": 1.17645e9, "5Q": 1.17645e9, "5X": 1.17645e9, // L5
	},
	'J': {
		"1C": 1.57542e9, "1L": 1.57542e9, "1S": 1.57542e9, // L1
		"1X": 1.57542e9, "1Z": 1.57542e9,
		"2L": 1.22760e9, "2S": 1.22760e9, "2X": 1.22760e9, // L2
		"5I": 1.17645e9, "5Q": 1.17645e9, "5X": 1.17645e9, // L5
		"5D": 1.17645e9, "5P": 1.17645e9, "5Z": 1.17645e9,
	},
	'E': {
		"1C": 1.57542e9, "1A": 1.57542e9, "1B": 1.57542e9, // E1
		"1X": 1.57542e9, "1Z": 1.57542e9,
		"7X": 1.20714e9, "7I": 1.20714e9, "7Q": 1.20714e9,    // E5b
		"5X": 1.17645e9, "5I": 1.17645e9, "5Q": 1.17645e9,    // E5a
		"8I": 1.191795e9, "8Q": 1.191795e9, "8X": 1.191795e9, // E5a+E5b
		"6A": 1.27875e9, "6B": 1.27875e9, "6C": 1.27875e9,    // E6
		"6X": 1.27875e9, "6Z": 1.27875e9,
	},
	'R': {
		"1C": 1.60200e9, "1P": 1.60200e9,                     // G1 FDMA
		"4A": 1.600995e9, "4B": 1.600995e9, "4X": 1.600995e9, // G1a
		"2C": 1.24600e9, "2P": 1.24600e9,                     // G2 FDMA
		"6A": 1.248060e9, "6B": 1.248060e9, "6X": 1.248060e9, // G2a
		"3I": 1.202025e9, "3Q": 1.202025e9, "3X": 1.202025e9, // G3
	},
	'C': {
		"2I": 1.561098e9, "2Q": 1.561098e9, "2X": 1.561098e9, // B1-2
		"1D": 1.57542e9, "1P": 1.57542e9, "1X": 1.57542e9,    // B1
		"1A": 1.57542e9, "1N": 1.57542e9,
		"7I": 1.20714e9, "7Q": 1.20714e9, "7X": 1.20714e9, // B2b
		"7D": 1.20714e9, "7P": 1.20714e9, "7Z": 1.20714e9,
		"6I": 1.26852e9, "6Q": 1.26852e9, "6X": 1.26852e9, // B3
		"6A": 1.26852e9,
		"5D": 1.17645e9, "5P": 1.17645e9, "5X": 1.17645e9,    // B2a
		"8D": 1.191795e9, "8P": 1.191795e9, "8X": 1.191795e9, // B2a+B2b
	},
	'S': {
		"1C": 1.57542e9, // L1
		"5I": 1.17645e9, // L5
		"5Q": 1.17645e9,
		"5X": 1.17645e9,
	},
	'I': {
		"5A": 1.17645e9, "5B": 1.17645e9, "5C": 1.17645e9, "5X": 1.17645e9,     // L5
		"9A": 2.492028e9, "9B": 2.492028e9, "9C": 2.492028e9, "9X": 2.492028e9, // S
	},
}

// Carrier frequency of the code for the given system [Hz].
// Version 2 codes carry the band digit only ("C1","P2"); those resolve
// through any attribute of the same band. Returns 0 when unknown.
// Glonass FDMA codes return the band center; see GloFreq for a channel.
func (p *CodeType) Freq(sys SysType) float64 {
	na := p.NA()
	m, ok := CODE_FREQS[sys]
	if !ok {
		return 0
	}
	if f, ok := m[na]; ok {
		return f
	}
	if len(na) == 1 {
		for k, f := range m {
			if k[0] == na[0] {
				return f
			}
		}
	}
	return 0
}

// Wavelength of the code for the given system [m]
func (p *CodeType) Wavelength(sys SysType) float64 {
	f := p.Freq(sys)
	if f == 0 {
		return 0
	}
	return C / f
}

// Glonass FDMA carrier frequency for frequency channel number k [Hz].
// band is 1 (G1) or 2 (G2).
func GloFreq(band, k int) float64 {
	switch band {
	case 1:
		return G1 + float64(k)*G1d
	case 2:
		return G2 + float64(k)*G2d
	}
	return 0
}
