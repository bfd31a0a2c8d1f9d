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

// TestPosRoundTrip checks geodetic to Cartesian conversion both ways.
func TestPosRoundTrip(t *testing.T) {
	assert := assert.New(t)

	llh := NewPosLLH(ToRad(35.73101206), ToRad(139.7396917), 80.33)
	xyz := llh.ToXYZ()
	back := xyz.ToLLH()

	assert.InDelta(llh.Lat, back.Lat, 1e-11)
	assert.InDelta(llh.Lon, back.Lon, 1e-11)
	assert.InDelta(llh.Hei, back.Hei, 1e-5)
}

// TestPosOrigin checks the conversion of the coordinate origin, which
// appears in headers without a surveyed position.
func TestPosOrigin(t *testing.T) {
	assert := assert.New(t)

	xyz := PosXYZ{}
	llh := xyz.ToLLH()
	assert.Equal(0.0, llh.Lat)
	assert.Equal(0.0, llh.Lon)
	assert.Equal(-Re, llh.Hei)
}

// TestPosString checks the fixed output formats.
func TestPosString(t *testing.T) {
	assert := assert.New(t)

	xyz := NewPosXYZ(-3947762.7496, 3364399.8789, 3699428.5111)
	assert.Equal("-3947762.7496 3364399.8789 3699428.5111", xyz.String())

	llh := NewPosLLH(0.62362461, 2.43912572, 80.33)
	assert.Equal("0.62362461 2.43912572 80.3300", llh.String())
}
