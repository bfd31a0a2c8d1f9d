// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package georinex

import (
	"math"
	"time"
)

// Pos evaluates the satellite position at reception time t in ECEF
// coordinates [m]. psr is the pseudorange [m] when the signal transit
// time matters, 0 evaluates the orbit at t itself.
func (e *Eph) Pos(t time.Time, psr float64) (xyz PosXYZ) {
	sys := e.Sat.Sys()
	dOMGe := 7.2921151467e-5 // Earth rotation angular velocity [rad/s]
	mue := 3.986005e14       // Earth gravitational constant [m^3/s^2]
	switch sys {
	case 'E':
		mue = 3.986004418e14
	case 'C':
		dOMGe = 7.292115e-5
		mue = 3.986004418e14
	}

	if sys == 'R' || sys == 'S' {
		// Broadcast state vector, integrated to t
		tk := t.Sub(e.Toe.ToTime()).Seconds() - psr/C
		x := [6]float64{e.PosX, e.PosY, e.PosZ, e.VecX, e.VecY, e.VecZ}
		acc := [3]float64{e.AccX, e.AccY, e.AccZ}
		const TSTEP = 60.0
		tt := TSTEP
		if tk < 0 {
			tt = -TSTEP
		}
		for math.Abs(tk) > 1e-9 {
			if math.Abs(tk) < TSTEP {
				tt = tk
			}
			gloStep(tt, &x, acc)
			tk -= tt
		}
		// Earth rotation during the signal transit
		omk := dOMGe * psr / C
		xyz.X = x[0]*math.Cos(omk) + x[1]*math.Sin(omk)
		xyz.Y = -x[0]*math.Sin(omk) + x[1]*math.Cos(omk)
		xyz.Z = x[2]
		return
	}

	// Keplerian elements
	tk0 := t.Sub(e.Toe.ToTime()).Seconds()
	tk := tk0 - psr/C
	n := math.Sqrt(mue)/e.SqrtA/e.SqrtA/e.SqrtA + e.DeltaN
	mk := e.M0 + n*tk
	ek := mk
	for i := 0; i < 10; i++ {
		ek = mk + e.Ecc*math.Sin(ek)
	}
	vk := math.Atan2(math.Sqrt(1-e.Ecc*e.Ecc)*math.Sin(ek), math.Cos(ek)-e.Ecc)
	pk := vk + e.Omega
	uk := pk + e.Cus*math.Sin(2*pk) + e.Cuc*math.Cos(2*pk)
	rk := e.SqrtA*e.SqrtA*(1-e.Ecc*math.Cos(ek)) + e.Crs*math.Sin(2*pk) + e.Crc*math.Cos(2*pk)
	ik := e.I0 + e.Idot*tk + e.Cis*math.Sin(2*pk) + e.Cic*math.Cos(2*pk)
	xk := rk * math.Cos(uk)
	yk := rk * math.Sin(uk)
	toe := e.Toe.Sec
	if sys == 'C' {
		toe -= 14 // Omega0 refers to the BDT second of week
	}
	if sys == 'C' && (e.Sat.Num() <= 5 || e.Sat.Num() >= 59) {
		// Geostationary Beidou broadcasts in a frame inclined by -5
		// degrees and not rotating with the earth
		omk := e.Omega0 + e.OmegaD*tk0 - dOMGe*toe
		xg := xk*math.Cos(omk) - yk*math.Sin(omk)*math.Cos(ik)
		yg := xk*math.Sin(omk) + yk*math.Cos(omk)*math.Cos(ik)
		zg := yk * math.Sin(ik)
		sino := math.Sin(dOMGe * tk0)
		coso := math.Cos(dOMGe * tk0)
		sin5 := math.Sin(-5 * math.Pi / 180.0)
		cos5 := math.Cos(-5 * math.Pi / 180.0)
		xyz.X = xg*coso + yg*sino*cos5 + zg*sino*sin5
		xyz.Y = -xg*sino + yg*coso*cos5 + zg*coso*sin5
		xyz.Z = -yg*sin5 + zg*cos5
		return
	}
	// The earth keeps turning while the signal travels, hence tk0 and
	// not tk in the node term
	omk := e.Omega0 + (e.OmegaD-dOMGe)*tk0 - dOMGe*toe
	xyz.X = xk*math.Cos(omk) - yk*math.Sin(omk)*math.Cos(ik)
	xyz.Y = xk*math.Sin(omk) + yk*math.Cos(omk)*math.Cos(ik)
	xyz.Z = yk * math.Sin(ik)
	return
}

// ClockBias evaluates the satellite clock correction at reception time
// t in seconds, relativistic term and broadcast group delay included.
// Galileo records correct the E1/E5b pair.
func (e *Eph) ClockBias(t time.Time, psr float64) float64 {
	switch e.Sat.Sys() {
	case 'R':
		tk := t.Sub(e.Toe.ToTime()).Seconds() - psr/C
		return -e.TauN + e.GammaN*tk
	case 'S':
		tk := t.Sub(e.Toc.ToTime()).Seconds() - psr/C
		return e.Gf0 + e.Gf1*tk
	}
	mue := 3.986005e14
	if e.Sat.Sys() == 'E' || e.Sat.Sys() == 'C' {
		mue = 3.986004418e14
	}
	// Relativistic correction needs the eccentric anomaly
	tk := t.Sub(e.Toe.ToTime()).Seconds() - psr/C
	n := math.Sqrt(mue)/e.SqrtA/e.SqrtA/e.SqrtA + e.DeltaN
	mk := e.M0 + n*tk
	ek := mk
	for i := 0; i < 10; i++ {
		ek = mk + e.Ecc*math.Sin(ek)
	}
	tr := -2.0 * math.Sqrt(mue) / C / C * e.Ecc * e.SqrtA * math.Sin(ek)
	tk = t.Sub(e.Toc.ToTime()).Seconds() - psr/C
	dt := e.Af0 + e.Af1*tk + e.Af2*tk*tk
	tg := e.Tgd
	if e.Sat.Sys() == 'E' {
		tg = e.Tgd2
	}
	return tr + dt - tg
}

// gloStep advances the state vector by t seconds with one Runge-Kutta
// step of order 4
func gloStep(t float64, x *[6]float64, acc [3]float64) {
	var k1, k2, k3, k4, w [6]float64
	gloDeq(*x, &k1, acc)
	for i := 0; i < 6; i++ {
		w[i] = x[i] + k1[i]*t/2.0
	}
	gloDeq(w, &k2, acc)
	for i := 0; i < 6; i++ {
		w[i] = x[i] + k2[i]*t/2.0
	}
	gloDeq(w, &k3, acc)
	for i := 0; i < 6; i++ {
		w[i] = x[i] + k3[i]*t
	}
	gloDeq(w, &k4, acc)
	for i := 0; i < 6; i++ {
		x[i] += (k1[i] + 2.0*k2[i] + 2.0*k3[i] + k4[i]) * t / 6.0
	}
}

// gloDeq is the equation of motion of a Glonass satellite in PZ-90
func gloDeq(x [6]float64, xdot *[6]float64, acc [3]float64) {
	const omge = 7.292115e-5 // Earth rotation angular velocity [rad/s]
	const mu = 3.9860044e14  // Earth gravitational constant [m^3/s^2]
	const j2 = 1.0826257e-3  // second zonal harmonic
	const re = 6378136.0     // Earth's radius [m]

	r2 := x[0]*x[0] + x[1]*x[1] + x[2]*x[2]
	r3 := r2 * math.Sqrt(r2)
	if r2 <= 0 {
		return
	}
	a := 1.5 * j2 * mu * re * re / r2 / r3
	b := 5.0 * x[2] * x[2] / r2
	c := -mu/r3 - a*(1.0-b)
	xdot[0] = x[3]
	xdot[1] = x[4]
	xdot[2] = x[5]
	xdot[3] = (c+omge*omge)*x[0] + 2.0*omge*x[4] + acc[0]
	xdot[4] = (c+omge*omge)*x[1] - 2.0*omge*x[3] + acc[1]
	xdot[5] = (c-2.0*a)*x[2] + acc[2]
}
