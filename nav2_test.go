// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.11
//

package georinex

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// One GPS ephemeris in version 2 layout, with the iono and UTC tables
// in the header and a stray line after the record.
const nav2File = `     2.11           N: GPS NAV DATA                         RINEX VERSION / TYPE
     .1211D-07   .2235D-07  -.1192D-06  -.1192D-06          ION ALPHA
     .1104D+05  -.3277D+05  -.2621D+06   .6554D+06          ION BETA
     .133179128170D-06  .107469588780D-12   552960     1025 DELTA-UTC: A0,A1,T,W
    18                                                      LEAP SECONDS
                                                            END OF HEADER
13 22  1  1  0  0  0.0 -.165044516325D-03 -.227373675443D-11  .000000000000D+00
     .610000000000D+02 -.112031250000D+03  .444590663096D-08  .110995619468D+01
    -.569596886635D-05  .119874754455D-01  .849738717079D-05  .515364621544D+04
     .518400000000D+06 -.108033418655D-06 -.208907664550D+01  .372529029846D-08
     .963811939669D+00  .255406250000D+03  .840173741824D+00 -.808033661006D-08
    -.489306355373D-09  .100000000000D+01  .219000000000D+04  .000000000000D+00
     .200000000000D+01  .000000000000D+00 -.111758708954D-07  .610000000000D+02
     .511200000000D+06  .400000000000D+01
   LEAP SECOND ANNOUNCEMENT
`

// TestReadNav2 decodes a version 2 GPS navigation file and checks the
// header tables and the broadcast parameters by name.
func TestReadNav2(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav2File), NewReadOpt())
	assert.NoError(err)

	assert.Equal(byte('N'), d.Hdr.Type)
	assert.Equal(SysType('G'), d.Hdr.Sys)
	assert.Equal([4]float64{1.211e-8, 2.235e-8, -1.192e-7, -1.192e-7}, d.Hdr.IonoCorr["GPSA"])
	assert.Equal([4]float64{1.104e4, -3.277e4, -2.621e5, 6.554e5}, d.Hdr.IonoCorr["GPSB"])
	tc := d.Hdr.TimeCorr["GPUT"]
	assert.InDelta(1.33179128170e-7, tc.A0, 1e-20)
	assert.InDelta(1.07469588780e-13, tc.A1, 1e-26)
	assert.Equal(552960, tc.RefTime)
	assert.Equal(1025, tc.RefWeek)
	assert.Equal(18, d.Hdr.Leap)

	toc := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal([]time.Time{toc}, d.Times)
	assert.Equal([]SatType{"G13"}, d.Sats)
	assert.Len(d.Fields, 29)

	assert.InDelta(-1.65044516325e-4, d.At("Af0", toc, "G13"), 1e-18)
	assert.InDelta(-2.27373675443e-12, d.At("Af1", toc, "G13"), 1e-25)
	assert.InDelta(61.0, d.At("Iode", toc, "G13"), 1e-9)
	assert.InDelta(-112.03125, d.At("Crs", toc, "G13"), 1e-9)
	assert.InDelta(1.19874754455e-2, d.At("Ecc", toc, "G13"), 1e-15)
	assert.InDelta(5153.64621544, d.At("SqrtA", toc, "G13"), 1e-8)
	assert.InDelta(518400.0, d.At("Toe", toc, "G13"), 1e-6)
	assert.InDelta(2190.0, d.At("Week", toc, "G13"), 1e-9)
	assert.InDelta(-1.11758708954e-8, d.At("Tgd", toc, "G13"), 1e-21)
	assert.InDelta(61.0, d.At("Iodc", toc, "G13"), 1e-9)
	assert.InDelta(511200.0, d.At("Tot", toc, "G13"), 1e-6)
	assert.InDelta(4.0, d.At("Fit", toc, "G13"), 1e-9)

	assert.Equal(1, d.Warns.Len())
	assert.Contains(d.Warns[0].Msg, "stray line")
}

// A GLONASS ephemeris in version 2 layout. The file type letter G on
// the version line marks the constellation.
const nav2GloFile = `     2.11           G: GLONASS NAV DATA                     RINEX VERSION / TYPE
                                                            END OF HEADER
 3 22  1  1  0 15  0.0 -.137840118259D-04  .909494701773D-12  .900000000000D+05
    -.114656743164D+05 -.317052841187D+00  .931322574615D-09  .000000000000D+00
     .141043408203D+05  .268520355225D+01  .000000000000D+00  .500000000000D+01
     .183413330078D+05 -.226023197174D+01 -.186264514923D-08  .000000000000D+00
`

// TestReadNav2Glonass checks the GLONASS record layout and the clock
// bias sign flip.
func TestReadNav2Glonass(t *testing.T) {
	assert := assert.New(t)

	d, err := Read(strings.NewReader(nav2GloFile), NewReadOpt())
	assert.NoError(err)

	assert.Equal(byte('N'), d.Hdr.Type)
	assert.Equal(SysType('R'), d.Hdr.Sys)

	toc := time.Date(2022, 1, 1, 0, 15, 0, 0, time.UTC)
	assert.Equal([]SatType{"R03"}, d.Sats)
	assert.Len(d.Fields, 15)

	// the file stores -TauN
	assert.InDelta(1.37840118259e-5, d.At("TauN", toc, "R03"), 1e-18)
	assert.InDelta(9.09494701773e-13, d.At("GammaN", toc, "R03"), 1e-26)
	assert.InDelta(90000.0, d.At("Tof", toc, "R03"), 1e-6)
	assert.InDelta(-11465.6743164, d.At("PosX", toc, "R03"), 1e-7)
	assert.InDelta(2.68520355225, d.At("VecY", toc, "R03"), 1e-12)
	assert.InDelta(5.0, d.At("FreqN", toc, "R03"), 1e-9)
	assert.InDelta(0.0, d.At("Age", toc, "R03"), 1e-9)
}

// TestReadNav2Truncated checks that a record cut off inside its
// continuation lines is fatal.
func TestReadNav2Truncated(t *testing.T) {
	assert := assert.New(t)

	file := `     2.11           N: GPS NAV DATA                         RINEX VERSION / TYPE
                                                            END OF HEADER
13 22  1  1  0  0  0.0 -.165044516325D-03 -.227373675443D-11  .000000000000D+00
     .610000000000D+02 -.112031250000D+03  .444590663096D-08  .110995619468D+01
    -.569596886635D-05  .119874754455D-01  .849738717079D-05  .515364621544D+04
`
	_, err := Read(strings.NewReader(file), NewReadOpt())
	assert.True(errors.Is(err, ErrTruncated))
}

// TestReadNav2Filters checks that a filtered record is consumed without
// leaving rows behind.
func TestReadNav2Filters(t *testing.T) {
	assert := assert.New(t)

	opt := NewReadOpt()
	opt.ExSats = []SatType{"G13"}
	d, err := Read(strings.NewReader(nav2File), opt)
	assert.NoError(err)
	assert.Len(d.Times, 0)
	assert.Len(d.Sats, 0)
	assert.Len(d.Fields, 0)
}
