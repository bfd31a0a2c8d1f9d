// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package georinex

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/diff"
	"github.com/stretchr/testify/assert"
)

// A Beidou record whose week and seconds ride on the BDT scale, and a
// GPS record broadcast just before midnight Saturday whose orbit
// reference falls into the next week.
const navWeekFile = `     3.04           N: GNSS NAV DATA    M                   RINEX VERSION / TYPE
                                                            END OF HEADER
C05 2022 01 01 00 00 00 2.271266397070E-04 4.456879961260E-11 0.000000000000E+00
     2.000000000000E+00 7.257812500000E+01 1.180406391970E-09 1.939309126174E+00
     2.389075234532E-06 5.916673550382E-04 1.874789595604E-05 6.493410614014E+03
     5.183860000000E+05 9.988993406296E-08 1.594050292452E+00-4.842877388000E-08
     8.576941162301E-02-2.046718750000E+02-1.431914212890E+00 2.236164394395E-09
    -2.960837355117E-10 0.000000000000E+00 8.340000000000E+02 0.000000000000E+00
     2.000000000000E+00 0.000000000000E+00 1.020000000000E-08-5.800000000000E-09
     5.111860000000E+05 2.000000000000E+00
G01 2022 01 01 23 45 00-3.000000000000E-05 1.000000000000E-11 0.000000000000E+00
     1.000000000000E+01 5.000000000000E+01 4.000000000000E-09 5.000000000000E-01
     1.000000000000E-06 1.000000000000E-02 2.000000000000E-06 5.153700000000E+03
     0.000000000000E+00 0.000000000000E+00 1.000000000000E+00 0.000000000000E+00
     9.500000000000E-01 2.000000000000E+02 1.500000000000E+00-8.000000000000E-09
     0.000000000000E+00 1.000000000000E+00 2.191000000000E+03 0.000000000000E+00
     2.000000000000E+00 0.000000000000E+00 0.000000000000E+00 1.000000000000E+01
     6.030000000000E+05 4.000000000000E+00
`

// TestEphemerides3 lifts the typed records out of the mixed version 3
// file and checks the reference time handling per constellation.
func TestEphemerides3(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav3File), NewReadOpt())
	assert.NoError(err)
	nav, err := d.Ephemerides()
	assert.NoError(err)
	assert.Len(nav, 3)

	g13 := nav["G13"]
	assert.Len(g13, 2)
	// sorted by transmission time, not by epoch order in the file
	assert.Equal(GTime{2190, 511200}, g13[0].Tot)
	assert.Equal(GTime{2190, 518400}, g13[0].Toe)
	assert.Equal(GTime{2190, 518400}, g13[0].Toc)
	assert.Equal(61, g13[0].Iode)
	assert.Equal(61, g13[0].Iodc)
	assert.Equal(2190, g13[0].Week)
	assert.Equal(1, g13[0].Code)
	assert.Equal(0, g13[0].Flag)
	assert.Equal(0, g13[0].Sva) // URA 2 m
	assert.Equal(0, g13[0].Svh)
	assert.InDelta(-1.650445163250e-4, g13[0].Af0, 1e-18)
	assert.InDelta(5153.646215439, g13[0].SqrtA, 1e-8)
	assert.InDelta(-1.117587089539e-8, g13[0].Tgd, 1e-21)
	assert.InDelta(4.0, g13[0].Fit, 1e-9)
	assert.Equal(62, g13[1].Iode)
	assert.Equal(GTime{2190, 518400}, g13[1].Tot)
	assert.Equal(GTime{2190, 525600}, g13[1].Toe)

	r05 := nav["R05"]
	assert.Len(r05, 1)
	r := r05[0]
	// the grid keeps the file units, the record holds meters
	assert.InDelta(-1.378401182592e-5, r.TauN, 1e-18)
	assert.InDelta(9.094947017729e-13, r.GammaN, 1e-26)
	assert.InDelta(-11465674.31641, r.PosX, 1e-5)
	assert.InDelta(-317.0528411865, r.VecX, 1e-9)
	assert.InDelta(9.313225746155e-7, r.AccX, 1e-19)
	assert.InDelta(14104340.82031, r.PosY, 1e-5)
	assert.InDelta(2685.203552246, r.VecY, 1e-9)
	assert.InDelta(-1.862645149231e-6, r.AccZ, 1e-19)
	assert.Equal(5, r.FreqN)
	assert.Equal(0, r.Age)
	assert.Equal(0, r.Svh)
	// UTC reference times shifted onto the GPS scale with the builtin
	// leap seconds, the file has no header entry
	assert.Equal(GTime{2190, 519318}, r.Toe)
	assert.Equal(GTime{2190, 522018}, r.Tot)
	assert.Equal(13, r.Iode)

	e11 := nav["E11"]
	assert.Len(e11, 1)
	e := e11[0]
	assert.Equal(516, e.Code)
	assert.Equal(95, e.Iode)
	assert.Equal(2190, e.Week)
	assert.Equal(GTime{2190, 520200}, e.Toe)
	assert.Equal(GTime{2190, 519300}, e.Tot)
	assert.InDelta(4.656612873077e-10, e.Tgd, 1e-23)
	assert.InDelta(5.122274160385e-9, e.Tgd2, 1e-22)
	assert.Equal(107, e.Sva) // SISA 3.12 m
}

// TestEphemerides2 covers the version 2 layouts of both file kinds.
func TestEphemerides2(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav2File), NewReadOpt())
	assert.NoError(err)
	nav, err := d.Ephemerides()
	assert.NoError(err)
	g13 := nav["G13"]
	assert.Len(g13, 1)
	assert.Equal(GTime{2190, 518400}, g13[0].Toe)
	assert.Equal(GTime{2190, 511200}, g13[0].Tot)
	assert.Equal(61, g13[0].Iode)
	assert.Equal(61, g13[0].Iodc)
	assert.Equal(2190, g13[0].Week)
	assert.InDelta(-1.11758708954e-8, g13[0].Tgd, 1e-21)

	d, err = Read(strings.NewReader(nav2GloFile), NewReadOpt())
	assert.NoError(err)
	nav, err = d.Ephemerides()
	assert.NoError(err)
	r03 := nav["R03"]
	assert.Len(r03, 1)
	assert.InDelta(1.37840118259e-5, r03[0].TauN, 1e-18)
	assert.InDelta(-11465674.3164, r03[0].PosX, 1e-5)
	assert.Equal(5, r03[0].FreqN)
	assert.Equal(GTime{2190, 519318}, r03[0].Toe)
	assert.Equal(GTime{2190, 522018}, r03[0].Tot)
	assert.Equal(13, r03[0].Iode)
}

// TestEphemeridesWeek checks the Beidou time scale shifts and a record
// whose orbit reference crosses the week rollover.
func TestEphemeridesWeek(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(navWeekFile), NewReadOpt())
	assert.NoError(err)
	nav, err := d.Ephemerides()
	assert.NoError(err)
	assert.Len(nav, 2)

	c05 := nav["C05"][0]
	assert.Equal(2190, c05.Week)
	assert.Equal(GTime{2190, 518400}, c05.Toe)
	assert.Equal(GTime{2190, 511200}, c05.Tot)
	assert.Equal(2, c05.Iode)
	assert.Equal(2, c05.Iodc)
	assert.InDelta(1.02e-8, c05.Tgd, 1e-21)
	assert.InDelta(-5.8e-9, c05.Tgd2, 1e-21)

	// the ephemeris refers to the next week, the message time to the
	// broadcast week
	g01 := nav["G01"][0]
	assert.Equal(2191, g01.Week)
	assert.Equal(GTime{2191, 0}, g01.Toe)
	assert.Equal("2022/01/02 00:00:00", g01.Toe.ToTime().UTC().Format("2006/01/02 15:04:05"))
	assert.Equal("2022/01/01 23:30:00", g01.Tot.ToTime().UTC().Format("2006/01/02 15:04:05"))
}

// TestEphemeridesFit checks the fit interval flag mapping and the
// constellations the mixed fixtures leave out.
func TestEphemeridesFit(t *testing.T) {
	assert := assert.New(t)

	b := newBuilder(&Header{Ver: 3.04, Type: 'N', Sys: 'M', Interval: math.NaN()})
	t0 := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	r := b.row(t0, 0, 0, false, 1)

	c := b.col("J02")
	b.mark(r, c, 1, "J02", t0)
	b.putNav("Af0", r, c, 1e-5)
	b.putNav("Fit", r, c, 0)
	c = b.col("J03")
	b.mark(r, c, 1, "J03", t0)
	b.putNav("Af0", r, c, 2e-5)
	b.putNav("Fit", r, c, 1)
	c = b.col("I04")
	b.mark(r, c, 1, "I04", t0)
	b.putNav("Af0", r, c, 3e-5)
	b.putNav("Week", r, c, 2190)
	b.putNav("Toe", r, c, 518400)
	c = b.col("S33")
	b.mark(r, c, 1, "S33", t0)
	b.putNav("Gf0", r, c, 4e-6)
	b.putNav("PosX", r, c, 26000)
	b.putNav("Sva", r, c, 2)
	b.putNav("Tot", r, c, 511200)

	nav, err := b.finalize().Ephemerides()
	assert.NoError(err)
	assert.Len(nav, 4)

	// the QZSS field is a flag, 0 means two hours
	assert.Equal(1.0, nav["J02"][0].Fit)
	assert.Equal(2.0, nav["J03"][0].Fit)

	assert.Equal(GTime{2190, 518400}, nav["I04"][0].Toe)

	s := nav["S33"][0]
	assert.InDelta(4e-6, s.Gf0, 1e-18)
	assert.InDelta(26000000.0, s.PosX, 1e-6)
	assert.Equal(0, s.Sva)
	// the orbit epoch snaps to the 15 minute frame, the clock already
	// runs on GPS time
	assert.Equal(GTime{2190, 518418}, s.Toe)
	assert.Equal(GTime{2190, 511200}, s.Tot)
}

// TestEphemeridesObs rejects observation data.
func TestEphemeridesObs(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(obs3File), NewReadOpt())
	assert.NoError(err)
	_, err = d.Ephemerides()
	assert.Error(err)
	assert.Contains(err.Error(), "navigation")
}

// TestNavSelect steps through the record choice per constellation.
func TestNavSelect(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav3File), NewReadOpt())
	assert.NoError(err)
	nav, err := d.Ephemerides()
	assert.NoError(err)

	// the nearest orbit reference wins
	e, err := nav.Select("G13", time.Date(2022, 1, 1, 0, 30, 0, 0, time.UTC))
	assert.NoError(err)
	assert.Equal(61, e.Iode)
	e, err = nav.Select("G13", time.Date(2022, 1, 1, 1, 45, 0, 0, time.UTC))
	assert.NoError(err)
	assert.Equal(62, e.Iode)

	// outside the fit window
	_, err = nav.Select("G13", time.Date(2022, 1, 1, 4, 5, 0, 0, time.UTC))
	assert.Error(err)
	_, err = nav.Select("R05", time.Date(2022, 1, 1, 3, 15, 0, 0, time.UTC))
	assert.Error(err)

	// a Galileo record is no good before its reference time
	_, err = nav.Select("E11", time.Date(2022, 1, 1, 0, 30, 0, 0, time.UTC))
	assert.Error(err)
	e, err = nav.Select("E11", time.Date(2022, 1, 1, 1, 30, 0, 0, time.UTC))
	assert.NoError(err)
	assert.Equal(95, e.Iode)

	_, err = nav.Select("J07", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(err)

	// the Beidou window is three times the GPS one
	d, err = Read(strings.NewReader(navWeekFile), NewReadOpt())
	assert.NoError(err)
	nav, err = d.Ephemerides()
	assert.NoError(err)
	_, err = nav.Select("C05", time.Date(2022, 1, 1, 5, 59, 0, 0, time.UTC))
	assert.NoError(err)
	_, err = nav.Select("C05", time.Date(2022, 1, 1, 6, 1, 0, 0, time.UTC))
	assert.Error(err)
}

// TestNavString checks the per-satellite summary and the record dump.
func TestNavString(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav3File), NewReadOpt())
	assert.NoError(err)
	nav, err := d.Ephemerides()
	assert.NoError(err)

	want := `G13: 2022/01/01 00:00:00 - 2022/01/01 02:00:00 (2)
E11: 2022/01/01 00:30:00 - 2022/01/01 00:30:00 (1)
R05: 2022/01/01 00:15:00 - 2022/01/01 00:15:00 (1)
`
	if got := nav.String(); got != want {
		t.Error(diff.Diff(want, got))
	}

	assert.Equal("G13 toc 2022/01/01 00:00:00 toe 2022/01/01 00:00:00 iode 61 svh 0",
		nav["G13"][0].String())
}
