// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.9
//

package georinex

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type cellKey struct {
	r, c int
}

// builder accumulates decoded records into growable time and satellite
// index tables plus sparse per-field cell stores, and turns them into
// an immutable Dataset when the body ends.
type builder struct {
	hdr     *Header
	times   []time.Time
	timeIdx map[int64]int
	flags   []int
	clks    []float64
	sats    []SatType
	satIdx  map[SatType]int
	fields  []string
	vals    map[string]map[cellKey]float64
	llis    map[string]map[cellKey]float64
	ssis    map[string]map[cellKey]float64
	seen    map[cellKey]bool
	warns   WarningList
	lastT   time.Time
	hasLast bool
}

func newBuilder(h *Header) *builder {
	return &builder{
		hdr:     h,
		timeIdx: map[int64]int{},
		satIdx:  map[SatType]int{},
		vals:    map[string]map[cellKey]float64{},
		llis:    map[string]map[cellKey]float64{},
		ssis:    map[string]map[cellKey]float64{},
		seen:    map[cellKey]bool{},
	}
}

// row returns the time index for t, appending a new row for an unseen
// timestamp. Rows keep file order; going backwards only warns.
func (p *builder) row(t time.Time, flag int, clk float64, hasClk bool, lineNum int) int {
	if !hasClk {
		clk = math.NaN()
	}
	if r, ok := p.timeIdx[t.UnixNano()]; ok {
		p.flags[r] = flag
		if hasClk {
			p.clks[r] = clk
		}
		return r
	}
	if p.hasLast && t.Before(p.lastT) {
		p.warns.Add(lineNum, "time goes backwards at %s", t.Format("2006/01/02 15:04:05.000"))
	}
	p.lastT, p.hasLast = t, true
	r := len(p.times)
	p.timeIdx[t.UnixNano()] = r
	p.times = append(p.times, t)
	p.flags = append(p.flags, flag)
	p.clks = append(p.clks, clk)
	return r
}

func (p *builder) col(sat SatType) int {
	if c, ok := p.satIdx[sat]; ok {
		return c
	}
	c := len(p.sats)
	p.satIdx[sat] = c
	p.sats = append(p.sats, sat)
	return c
}

// mark records that a (time, satellite) pair is being filled. A repeat
// drops the earlier cells so the later record wins whole.
func (p *builder) mark(r, c, lineNum int, sat SatType, t time.Time) {
	k := cellKey{r, c}
	if p.seen[k] {
		p.warns.Add(lineNum, "duplicate record for %s at %s", string(sat),
			t.Format("2006/01/02 15:04:05.000"))
		for _, m := range []map[string]map[cellKey]float64{p.vals, p.llis, p.ssis} {
			for _, cells := range m {
				delete(cells, k)
			}
		}
	}
	p.seen[k] = true
}

func (p *builder) field(name string) map[cellKey]float64 {
	cells, ok := p.vals[name]
	if !ok {
		cells = map[cellKey]float64{}
		p.vals[name] = cells
		p.llis[name] = map[cellKey]float64{}
		p.ssis[name] = map[cellKey]float64{}
		p.fields = append(p.fields, name)
	}
	return cells
}

func (p *builder) put(name string, r, c int, v, lli, ssi float64) {
	p.field(name)[cellKey{r, c}] = v
	p.llis[name][cellKey{r, c}] = lli
	p.ssis[name][cellKey{r, c}] = ssi
}

func (p *builder) putNav(name string, r, c int, v float64) {
	p.field(name)[cellKey{r, c}] = v
}

// finalize builds the dense grids. The satellite axis is sorted, the
// time axis keeps file order.
func (p *builder) finalize() *Dataset {
	order := Sorted(p.sats)
	colOf := make([]int, len(p.sats))
	newIdx := make(map[SatType]int, len(order))
	for i, s := range order {
		newIdx[s] = i
	}
	for old, s := range p.sats {
		colOf[old] = newIdx[s]
	}

	// fill only runs for fields that exist, so nt and ns are nonzero
	nt, ns := len(p.times), len(order)
	fill := func(cells map[cellKey]float64) *mat.Dense {
		g := mat.NewDense(nt, ns, nil)
		for i := 0; i < nt; i++ {
			for j := 0; j < ns; j++ {
				g.Set(i, j, math.NaN())
			}
		}
		for k, v := range cells {
			g.Set(k.r, colOf[k.c], v)
		}
		return g
	}

	d := &Dataset{
		Hdr:      p.hdr,
		Times:    p.times,
		Sats:     order,
		Fields:   append([]string(nil), p.fields...),
		Flags:    p.flags,
		ClkOff:   p.clks,
		Interval: p.interval(),
		Warns:    p.warns,
		grids:    map[string]*mat.Dense{},
		llis:     map[string]*mat.Dense{},
		ssis:     map[string]*mat.Dense{},
		timeIdx:  p.timeIdx,
		satIdx:   newIdx,
	}
	sort.Strings(d.Fields)
	for _, name := range d.Fields {
		d.grids[name] = fill(p.vals[name])
		d.llis[name] = fill(p.llis[name])
		d.ssis[name] = fill(p.ssis[name])
	}
	return d
}

// The nominal epoch spacing: the header value when given, otherwise the
// median of the time differences.
func (p *builder) interval() float64 {
	if p.hdr != nil && !math.IsNaN(p.hdr.Interval) {
		return p.hdr.Interval
	}
	if len(p.times) < 2 {
		return math.NaN()
	}
	diffs := make([]float64, 0, len(p.times)-1)
	for i := 1; i < len(p.times); i++ {
		if d := p.times[i].Sub(p.times[i-1]).Seconds(); d > 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return math.NaN()
	}
	sort.Float64s(diffs)
	return stat.Quantile(0.5, stat.Empirical, diffs, nil)
}

// Dataset holds a decoded file as one dense grid per field with the
// epochs as rows and the satellites as columns. Absent cells are NaN.
type Dataset struct {
	Hdr      *Header
	Times    []time.Time
	Sats     []SatType
	Fields   []string
	Flags    []int     // epoch flags, observation files
	ClkOff   []float64 // receiver clock offsets, NaN when absent
	Interval float64
	Warns    WarningList

	grids map[string]*mat.Dense
	llis  map[string]*mat.Dense
	ssis  map[string]*mat.Dense

	timeIdx map[int64]int
	satIdx  map[SatType]int
}

// Field returns the value grid of one observation code or broadcast
// parameter, or nil when the file holds no such field.
func (p *Dataset) Field(name string) *mat.Dense {
	return p.grids[name]
}

// LLI returns the loss-of-lock indicator grid of an observation code.
func (p *Dataset) LLI(name string) *mat.Dense {
	return p.llis[name]
}

// SSI returns the signal strength indicator grid of an observation code.
func (p *Dataset) SSI(name string) *mat.Dense {
	return p.ssis[name]
}

// TimeIdx returns the row of t, or -1.
func (p *Dataset) TimeIdx(t time.Time) int {
	if r, ok := p.timeIdx[t.UnixNano()]; ok {
		return r
	}
	return -1
}

// SatIdx returns the column of sat, or -1.
func (p *Dataset) SatIdx(sat SatType) int {
	if c, ok := p.satIdx[sat]; ok {
		return c
	}
	return -1
}

// At returns one cell, NaN when the field, time or satellite is absent.
func (p *Dataset) At(name string, t time.Time, sat SatType) float64 {
	g := p.grids[name]
	r, c := p.TimeIdx(t), p.SatIdx(sat)
	if g == nil || r < 0 || c < 0 {
		return math.NaN()
	}
	return g.At(r, c)
}

// Series returns the values of one field for one satellite over all
// epochs, or nil when the field or satellite is absent.
func (p *Dataset) Series(name string, sat SatType) []float64 {
	g := p.grids[name]
	c := p.SatIdx(sat)
	if g == nil || c < 0 {
		return nil
	}
	out := make([]float64, len(p.Times))
	for r := range p.Times {
		out[r] = g.At(r, c)
	}
	return out
}

func (p *Dataset) String() string {
	var sb strings.Builder
	typ := "nav"
	if p.Hdr != nil && p.Hdr.Type == 'O' {
		typ = "obs"
	}
	ver := ""
	if p.Hdr != nil {
		ver = p.Hdr.VerStr
	}
	sb.WriteString(fmt.Sprintf("rinex %s %s: %d epochs, %d sats, %d fields",
		ver, typ, len(p.Times), len(p.Sats), len(p.Fields)))
	if len(p.Times) > 0 {
		sb.WriteString(fmt.Sprintf(", %s - %s",
			p.Times[0].Format("2006/01/02 15:04:05"),
			p.Times[len(p.Times)-1].Format("2006/01/02 15:04:05")))
	}
	if !math.IsNaN(p.Interval) {
		sb.WriteString(fmt.Sprintf(", interval %.3fs", p.Interval))
	}
	if n := p.Warns.Len(); n > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", n))
	}
	return sb.String()
}
