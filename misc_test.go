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

// TestSorted checks the constellation ordering of satellite lists.
func TestSorted(t *testing.T) {
	assert := assert.New(t)

	in := []SatType{"C05", "G12", "R01", "G01", "E03"}
	want := []SatType{"G01", "G12", "E03", "R01", "C05"}
	assert.Equal(want, Sorted(in))

	// The input stays untouched
	assert.Equal(SatType("C05"), in[0])
}

// TestFlagVars checks the comma-separated flag values.
func TestFlagVars(t *testing.T) {
	assert := assert.New(t)

	var sys SysVar
	assert.NoError(sys.Set("G,R,C"))
	assert.Equal(SysVar{'G', 'R', 'C'}, sys)
	assert.True(sys.Contains('R'))
	assert.False(sys.Contains('E'))

	var sats SatVar
	assert.NoError(sats.Set("C02,E14"))
	assert.Equal(SatVar{"C02", "E14"}, sats)

	var codes CodeVar
	assert.NoError(codes.Set("C1C,L1"))
	assert.Equal(CodeVar{"C1C", "L1"}, codes)
}

// TestAngles checks degree/radian conversion.
func TestAngles(t *testing.T) {
	assert := assert.New(t)

	assert.InDelta(180.0, ToDeg(PI), 1e-12)
	assert.InDelta(PI, ToRad(180.0), 1e-12)
}
