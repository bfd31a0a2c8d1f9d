// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	m "github.com/brifly1/georinex"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		m.PrintE(err)
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	// Prepare output file
	out, err := prepareOutput(args)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	switch {
	case args.headOnly:
		return printHeaders(out, args)
	case args.timesOnly:
		return printTimes(out, args)
	case args.orbit:
		return printOrbit(out, args)
	}
	return printDatasets(out, args)
}

// Prepare output file
func prepareOutput(args cmdOpt) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(args.outFn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	// Create output file
	outf, err := os.Create(args.outFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return outf, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

// Print the headers of the input files
func printHeaders(out io.Writer, args cmdOpt) error {
	for _, fn := range args.fns {
		fp, err := os.Open(fn)
		if err != nil {
			return err
		}
		hdr, err := m.ReadHeader(fp)
		fp.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		if err := printHeader(out, filepath.Base(fn), hdr); err != nil {
			return err
		}
	}
	return nil
}

// Print the epoch times of the input files
func printTimes(out io.Writer, args cmdOpt) error {
	for _, fn := range args.fns {
		fp, err := os.Open(fn)
		if err != nil {
			return err
		}
		times, err := m.ScanTimes(fp)
		fp.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		fmt.Fprintf(out, "# %s: %d epochs\n", filepath.Base(fn), len(times))
		for _, t := range times {
			fmt.Fprintf(out, "%s\n", t.UTC().Format("2006/01/02 15:04:05.000"))
		}
	}
	return nil
}

// Decode the input files and print them
func printDatasets(out io.Writer, args cmdOpt) error {

	dats, err := m.ReadFiles(args.fns, setReadOpt(&args))
	if err != nil {
		return err
	}

	for i, d := range dats {
		fmt.Fprintf(out, "# %s\n", filepath.Base(args.fns[i]))
		fmt.Fprintf(out, "%s\n", d)
		if !args.noWarn {
			for _, w := range d.Warns {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
		}
		if args.field != "" {
			if err := printSeries(out, d, args); err != nil {
				return fmt.Errorf("%s: %w", args.fns[i], err)
			}
		}
	}
	return nil
}

// Print one field of one satellite over all epochs
func printSeries(out io.Writer, d *m.Dataset, args cmdOpt) error {

	g := d.Field(args.field)
	if g == nil {
		return fmt.Errorf("no field %q in the file", args.field)
	}
	if m.DBG_ >= 2 {
		m.PrintA("--- %s ---\n", args.field)
		m.PrintMat(g)
	}
	sat := m.SatType(args.sat)
	c := d.SatIdx(sat)
	if c < 0 {
		return fmt.Errorf("no satellite %q in the file", args.sat)
	}

	fmt.Fprintf(out, "# %s %s\n", string(sat), args.field)
	for r, t := range d.Times {
		v := g.At(r, c)
		if math.IsNaN(v) && args.skipNaN {
			continue
		}
		fmt.Fprintf(out, "%s %17.5f\n", t.UTC().Format("2006/01/02 15:04:05.000"), v)
	}
	return nil
}

// Evaluate and print satellite positions and clock biases from the
// broadcast ephemerides of a navigation file
func printOrbit(out io.Writer, args cmdOpt) error {

	dats, err := m.ReadFiles(args.fns, setReadOpt(&args))
	if err != nil {
		return err
	}

	sat := m.SatType(args.sat)
	step := time.Duration(args.oi) * time.Second
	for i, d := range dats {
		nav, err := d.Ephemerides()
		if err != nil {
			return fmt.Errorf("%s: %w", args.fns[i], err)
		}
		if _, ok := nav[sat]; !ok {
			return fmt.Errorf("no satellite %q in the file", args.sat)
		}
		if m.DBG_ >= 1 {
			m.PrintA("%s", nav)
		}
		fmt.Fprintf(out, "# %s %s x y z clk\n", filepath.Base(args.fns[i]), string(sat))
		if len(d.Times) == 0 {
			continue
		}
		last := d.Times[len(d.Times)-1]
		for t := d.Times[0]; !t.After(last); t = t.Add(step) {
			e, err := nav.Select(sat, t)
			if err != nil {
				// leave a gap where no record is usable
				continue
			}
			p := e.Pos(t, 0)
			fmt.Fprintf(out, "%s %14.3f %14.3f %14.3f %12.3e\n",
				t.UTC().Format("2006/01/02 15:04:05"), p.X, p.Y, p.Z, e.ClockBias(t, 0))
		}
	}
	return nil
}

func setReadOpt(args *cmdOpt) *m.ReadOpt {
	opt := m.NewReadOpt()
	opt.Ts = args.ts
	opt.Te = args.te
	opt.Ti = float64(args.ti)
	opt.Sys = args.sys
	opt.Meas = args.meas
	opt.ExSats = args.exSats
	opt.Workers = args.workers
	return opt
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Structure to hold command line argument information
type cmdOpt struct {
	fns       []string
	outFn     string
	cfgFn     string
	headOnly  bool
	timesOnly bool
	field     string
	sat       string
	orbit     bool
	oi        int
	skipNaN   bool
	noWarn    bool
	ts, te    time.Time
	ti        int
	sys       m.SysVar
	meas      m.CodeVar
	exSats    m.SatVar
	workers   int
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options] file.rnx ...               decode and summarize RINEX files
	%s [Options] -hd file.rnx               print the header
	%s [Options] -t  file.obs               print the epoch times
	%s [Options] -f C1C -s G07 file.obs     print one measurement series
	%s [Options] -orb -s G07 file.nav       print satellite positions and clock biases

[Options]
`, filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	rOpt := m.NewReadOpt()
	flag.Var(&a.sys, "sys", "Satellite systems to keep. G(GPS), J(QZSS), E(Galileo), R(Glonass), C(Beidou), S(SBAS), I(NavIC). Comma-separated without spaces. Default: all")
	flag.Var(&a.exSats, "ex", "List of satellites to exclude. Comma-separated satellite names without spaces like C02,E14.")
	flag.Var(&a.meas, "meas", "Observation codes or code prefixes to keep, like C1C,L1. Default: all")
	var ts_, te_ m.TimeStr
	flag.TextVar(&ts_, "ts", m.NewTimeStr(time.Time{}), "Start epoch specification. Enclose in quotes like -ts \"2023/01/01 00:00:00\"")
	flag.TextVar(&te_, "te", m.NewTimeStr(time.Time{}), "End epoch specification. Enclose in quotes like -te \"2023/01/02 00:00:00\". This epoch is also included.")
	flag.IntVar(&a.ti, "ti", 0, "Decimation interval [s]. An epoch is kept when its second value is divisible by this. Omit or set to 0 to keep all epochs.")
	flag.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout.")
	flag.StringVar(&a.cfgFn, "c", "", "YAML configuration file with defaults for these options.")
	flag.BoolVar(&a.headOnly, "hd", false, "Print the file header as YAML and exit.")
	flag.BoolVar(&a.timesOnly, "t", false, "Print the epoch times without decoding observations and exit.")
	flag.StringVar(&a.field, "f", "", "Observation code or navigation parameter to print, like C1C or SqrtA.")
	flag.StringVar(&a.sat, "s", "", "Satellite to print with -f or -orb, like G07.")
	flag.BoolVar(&a.orbit, "orb", false, "Print satellite positions and clock biases computed from a navigation file. Needs -s.")
	flag.IntVar(&a.oi, "oi", 900, "Evaluation interval [s] for -orb.")
	flag.BoolVar(&a.skipNaN, "sn", false, "Skip absent cells when printing a series with -f.")
	flag.BoolVar(&a.noWarn, "nw", false, "Do not print decode warnings.")
	flag.IntVar(&a.workers, "w", rOpt.Workers, "Number of files to decode in parallel.")
	var dbg int
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(display), 2(detailed display)")
	flag.Parse()

	if flag.NArg() < 1 {
		return a, fmt.Errorf("no input files")
	}
	a.fns = flag.Args()
	a.ts = time.Time(ts_)
	a.te = time.Time(te_)
	m.DBG_ = dbg

	// The configuration file fills what the flags left at defaults
	if a.cfgFn != "" {
		cfg, err := loadConfig(a.cfgFn)
		if err != nil {
			return a, err
		}
		if err := applyConfig(&a, cfg); err != nil {
			return a, err
		}
	}
	if a.field != "" && a.sat == "" {
		return a, fmt.Errorf("-f needs -s to pick a satellite")
	}
	if a.orbit && a.sat == "" {
		return a, fmt.Errorf("-orb needs -s to pick a satellite")
	}
	if a.orbit && a.oi <= 0 {
		return a, fmt.Errorf("-oi must be positive")
	}
	return
}
