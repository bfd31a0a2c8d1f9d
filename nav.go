// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package georinex

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Eph is one broadcast ephemeris record with the reference times
// resolved to GPS time. Fields that do not apply to the record's
// constellation stay zero.
type Eph struct {
	Sat  SatType
	Toc  GTime // clock reference time
	Toe  GTime // orbit reference time
	Tot  GTime // transmission time
	Iode int

	// Keplerian constellations (G, J, E, C, I)
	Af0    float64
	Af1    float64
	Af2    float64
	Crs    float64
	DeltaN float64
	M0     float64
	Cuc    float64
	Ecc    float64
	Cus    float64
	SqrtA  float64
	Cic    float64
	Omega0 float64
	Cis    float64
	I0     float64
	Crc    float64
	Omega  float64
	OmegaD float64
	Idot   float64
	Code   int
	Week   int
	Flag   int
	Sva    int // accuracy index
	Svh    int
	Tgd    float64 // L1/L2, E5a/E1 or B1/B3 group delay
	Tgd2   float64 // E5b/E1 or B2/B3 group delay
	Iodc   int
	Fit    float64

	// Glonass
	TauN   float64
	GammaN float64
	PosX   float64
	VecX   float64
	AccX   float64
	PosY   float64
	VecY   float64
	AccY   float64
	PosZ   float64
	VecZ   float64
	AccZ   float64
	FreqN  int
	Age    int

	// SBAS
	Gf0  float64
	Gf1  float64
	Iodn int
}

// Nav holds the broadcast records of a navigation file grouped by
// satellite. Each slice is sorted by transmission time.
type Nav map[SatType][]*Eph

// Ephemerides assembles typed broadcast records from a decoded
// navigation dataset. Positions come out in meters, accuracy fields as
// indices, and the Beidou week and the Glonass UTC times are shifted
// onto the GPS scale. The records of each satellite are sorted by
// transmission time.
func (p *Dataset) Ephemerides() (Nav, error) {
	if p.Hdr == nil || p.Hdr.Type != 'N' {
		return nil, fmt.Errorf("ephemeris extraction needs a navigation file")
	}
	leap := float64(LS)
	if p.Hdr.HasLeap {
		leap = float64(p.Hdr.Leap)
	}
	nav := Nav{}
	for c, sat := range p.Sats {
		sys := sat.Sys()
		clock, ok := navClockNames[sys]
		if !ok {
			continue
		}
		first := navParams[sys][0][0]
		for r, t := range p.Times {
			if math.IsNaN(p.cell(clock[0], r, c)) && math.IsNaN(p.cell(first, r, c)) {
				continue
			}
			nav[sat] = append(nav[sat], p.ephAt(r, c, sat, t, leap))
		}
	}
	for _, recs := range nav {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Tot.Less(recs[j].Tot, false) })
	}
	return nav, nil
}

// cell reads one grid value, NaN when the field never occurred.
func (p *Dataset) cell(name string, r, c int) float64 {
	g, ok := p.grids[name]
	if !ok {
		return math.NaN()
	}
	return g.At(r, c)
}

// ephAt builds the record at one grid cell. A parameter the file left
// blank reads as zero.
func (p *Dataset) ephAt(r, c int, sat SatType, t time.Time, leap float64) *Eph {
	val := func(name string) float64 {
		if v := p.cell(name, r, c); !math.IsNaN(v) {
			return v
		}
		return 0
	}
	num := func(name string) int { return int(val(name)) }

	e := &Eph{Sat: sat, Toc: *NewGTime(t)}
	switch sat.Sys() {
	case 'R':
		e.TauN, e.GammaN = val("TauN"), val("GammaN")
		e.PosX, e.VecX, e.AccX = val("PosX")*1000, val("VecX")*1000, val("AccX")*1000
		e.PosY, e.VecY, e.AccY = val("PosY")*1000, val("VecY")*1000, val("AccY")*1000
		e.PosZ, e.VecZ, e.AccZ = val("PosZ")*1000, val("VecZ")*1000, val("AccZ")*1000
		e.Svh = num("Svh")
		e.Age = num("Age")
		if e.FreqN = num("FreqN"); e.FreqN > 128 {
			e.FreqN -= 256 // negative channels wrap in older files
		}
		// The record runs on UTC. The orbit refers to the 15 minute
		// frame nearest the clock epoch, the message time to the day
		// of the clock epoch.
		toc15 := math.Floor((e.Toc.Sec+450)/900) * 900
		tot := math.Mod(val("Tof"), 86400) + math.Floor(e.Toc.Sec/86400)*86400
		if tot-toc15 > 43200 {
			tot -= 86400
		} else if tot-toc15 < -43200 {
			tot += 86400
		}
		e.Toe = GTime{Week: e.Toc.Week, Sec: toc15 + leap}
		e.Tot = GTime{Week: e.Toc.Week, Sec: tot + leap}
		e.Iode = int(math.Mod(e.Toc.Sec+10800, 86400)/900 + 0.5)
	case 'S':
		e.Gf0, e.Gf1 = val("Gf0"), val("Gf1")
		e.PosX, e.VecX, e.AccX = val("PosX")*1000, val("VecX")*1000, val("AccX")*1000
		e.PosY, e.VecY, e.AccY = val("PosY")*1000, val("VecY")*1000, val("AccY")*1000
		e.PosZ, e.VecZ, e.AccZ = val("PosZ")*1000, val("VecZ")*1000, val("AccZ")*1000
		e.Svh = num("Svh")
		if ura := p.cell("Sva", r, c); !math.IsNaN(ura) {
			e.Sva = URAIndex(ura)
		}
		e.Iodn = num("Iodn")
		// Gf0 already refers to GPS time, only the orbit epoch snaps
		// to the 15 minute frame like Glonass.
		e.Tot = weekTime(e.Toc.Week, val("Tot"), e.Toc)
		toc15 := math.Floor((e.Toc.Sec+450)/900) * 900
		e.Toe = GTime{Week: e.Toc.Week, Sec: toc15 + leap}
	default:
		e.Af0, e.Af1, e.Af2 = val("Af0"), val("Af1"), val("Af2")
		e.Iode = num("Iode")
		e.Crs, e.DeltaN, e.M0 = val("Crs"), val("DeltaN"), val("M0")
		e.Cuc, e.Ecc, e.Cus, e.SqrtA = val("Cuc"), val("Ecc"), val("Cus"), val("SqrtA")
		e.Cic, e.Omega0, e.Cis = val("Cic"), val("Omega0"), val("Cis")
		e.I0, e.Crc, e.Omega, e.OmegaD = val("I0"), val("Crc"), val("Omega"), val("OmegaD")
		e.Idot = val("Idot")
		e.Code, e.Flag = num("Code"), num("Flag")
		e.Svh = num("Svh")
		e.Tgd, e.Tgd2 = val("Tgd"), val("Tgd2")
		e.Iodc = num("Iodc")
		if ura := p.cell("Sva", r, c); !math.IsNaN(ura) {
			if sat.Sys() == 'E' {
				e.Sva = SISAIndex(ura)
			} else {
				e.Sva = URAIndex(ura)
			}
		}
		switch fit := p.cell("Fit", r, c); {
		case math.IsNaN(fit):
		case sat.Sys() == 'J' && fit == 0: // flag, not hours
			e.Fit = 1
		case sat.Sys() == 'J':
			e.Fit = 2
		default:
			e.Fit = fit
		}
		e.Week = num("Week")
		toe, tot := val("Toe"), val("Tot")
		if sat.Sys() == 'C' {
			e.Week += 1356 // BDT week zero is GPS week 1356
			toe += 14      // BDT -> GPS time
			tot += 14
		}
		e.Toe = weekTime(e.Week, toe, e.Toc)
		e.Tot = weekTime(e.Week, tot, e.Toc)
	}
	return e
}

// weekTime resolves a seconds of week field against the record's clock
// epoch, shifting by a week when the two fall on opposite sides of a
// rollover.
func weekTime(week int, sec float64, toc GTime) GTime {
	t := GTime{Week: week, Sec: sec}
	d := float64(t.Week-toc.Week)*604800 + t.Sec - toc.Sec
	if d > 302400 {
		t.Sec -= 604800
	} else if d < -302400 {
		t.Sec += 604800
	}
	return t
}

// Select picks the record of sat whose orbit reference time lies
// nearest to t. Records older or newer than the constellation's fit
// window are rejected, Galileo records also when broadcast after t.
func (nav Nav) Select(sat SatType, t time.Time) (*Eph, error) {
	recs, ok := nav[sat]
	if !ok {
		return nil, fmt.Errorf("no ephemeris for %s", sat)
	}
	diffMax := 7201.0
	switch sat.Sys() {
	case 'E':
		diffMax = 14400
	case 'C':
		diffMax = 21601
	}
	best := -1
	for i, e := range recs {
		if sat.Sys() == 'E' && e.Toe.ToTime().Sub(t) >= 0 {
			continue
		}
		if diff := e.Toe.ToTime().Sub(t).Abs().Seconds(); diff < diffMax {
			diffMax = diff
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("no valid ephemeris for %s", sat)
	}
	return recs[best], nil
}

func (e *Eph) String() string {
	return fmt.Sprintf("%s toc %s toe %s iode %d svh %d", e.Sat,
		e.Toc.ToTime().UTC().Format("2006/01/02 15:04:05"),
		e.Toe.ToTime().UTC().Format("2006/01/02 15:04:05"), e.Iode, e.Svh)
}

// String lists the clock epoch range and record count per satellite.
func (nav Nav) String() string {
	sats := make([]SatType, 0, len(nav))
	for sat := range nav {
		sats = append(sats, sat)
	}
	var sb strings.Builder
	for _, sat := range Sorted(sats) {
		recs := nav[sat]
		fmt.Fprintf(&sb, "%s: %s - %s (%d)\n", sat,
			recs[0].Toc.ToTime().UTC().Format("2006/01/02 15:04:05"),
			recs[len(recs)-1].Toc.ToTime().UTC().Format("2006/01/02 15:04:05"), len(recs))
	}
	return sb.String()
}
