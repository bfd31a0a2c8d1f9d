// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.11
//

package georinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewSat checks satellite name normalization.
func TestNewSat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(SatType("G07"), NewSat('G', 7))
	assert.Equal(SatType("R24"), NewSat('R', 24))

	sat := NewSat('E', 3)
	assert.Equal(SysType('E'), sat.Sys())
	assert.Equal(3, sat.Num())
}

// TestSysIsValid checks the known constellation letters.
func TestSysIsValid(t *testing.T) {
	assert := assert.New(t)

	for _, sys := range []SysType{'G', 'J', 'E', 'R', 'C', 'S', 'I'} {
		assert.True(sys.IsValid(), "%c", sys)
	}
	for _, sys := range []SysType{'X', 'M', ' ', '0'} {
		assert.False(sys.IsValid(), "%c", sys)
	}
}

// TestCodeFreq checks carrier frequency lookup for version 3 codes and
// the band fallback for two-character version 2 codes.
func TestCodeFreq(t *testing.T) {
	assert := assert.New(t)

	var testData = []struct {
		code CodeType
		sys  SysType
		want float64
	}{
		{"C1C", 'G', 1.57542e9},
		{"L2P", 'G', 1.22760e9},
		{"L5Q", 'J', 1.17645e9},
		{"C7I", 'E', 1.20714e9},
		{"C2I", 'C', 1.561098e9},
		{"C9A", 'I', 2.492028e9},
		{"C1", 'G', 1.57542e9}, // version 2 codes carry the band only
		{"P2", 'G', 1.22760e9},
		{"L1", 'R', 1.60200e9},
		{"C9", 'G', 0},
		{"C1C", 'X', 0},
	}
	for _, d := range testData {
		assert.Equal(d.want, d.code.Freq(d.sys), "%s %c", d.code, d.sys)
	}

	c := CodeType("L1C")
	assert.Equal(byte('L'), c.T())
	assert.Equal(CodeType("1C"), c.NA())
	assert.InDelta(C/1.57542e9, c.Wavelength('G'), 1e-12)
}

// TestGloFreq checks the GLONASS FDMA channel frequencies.
func TestGloFreq(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1602000000.0, GloFreq(1, 0))
	assert.Equal(1598062500.0, GloFreq(1, -7))
	assert.Equal(1248625000.0, GloFreq(2, 6))
	assert.Equal(0.0, GloFreq(3, 0))
}
