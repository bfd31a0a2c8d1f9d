// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.10
//

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "github.com/brifly1/georinex"
)

// Configuration file contents. Every entry is optional.
type cmdConfig struct {
	Ts      string `yaml:"ts"`
	Te      string `yaml:"te"`
	Ti      int    `yaml:"ti"`
	Sys     string `yaml:"sys"`
	Meas    string `yaml:"meas"`
	ExSats  string `yaml:"exsats"`
	Workers int    `yaml:"workers"`
	Debug   int    `yaml:"debug"`
	Out     string `yaml:"out"`
}

// Load the YAML configuration file
func loadConfig(fn string) (*cmdConfig, error) {
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	cfg := &cmdConfig{}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	return cfg, nil
}

// Fill the options the command line left at their defaults
func applyConfig(a *cmdOpt, cfg *cmdConfig) error {
	if a.ts.IsZero() && cfg.Ts != "" {
		var t m.TimeStr
		if err := t.UnmarshalText([]byte(cfg.Ts)); err != nil {
			return fmt.Errorf("configured ts: %w", err)
		}
		a.ts = time.Time(t)
	}
	if a.te.IsZero() && cfg.Te != "" {
		var t m.TimeStr
		if err := t.UnmarshalText([]byte(cfg.Te)); err != nil {
			return fmt.Errorf("configured te: %w", err)
		}
		a.te = time.Time(t)
	}
	if a.ti == 0 {
		a.ti = cfg.Ti
	}
	if len(a.sys) == 0 && cfg.Sys != "" {
		a.sys.Set(cfg.Sys)
	}
	if len(a.meas) == 0 && cfg.Meas != "" {
		a.meas.Set(cfg.Meas)
	}
	if len(a.exSats) == 0 && cfg.ExSats != "" {
		a.exSats.Set(cfg.ExSats)
	}
	if a.workers == m.NewReadOpt().Workers && cfg.Workers > 0 {
		a.workers = cfg.Workers
	}
	if a.outFn == "" {
		a.outFn = cfg.Out
	}
	if m.DBG_ == 0 {
		m.DBG_ = cfg.Debug
	}
	return nil
}

// Print one header as YAML
func printHeader(out io.Writer, fn string, h *m.Header) error {
	buf, err := yaml.Marshal(headerDoc(h))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n%s", fn, buf)
	return nil
}

// Collect the header fields worth showing into a YAML-friendly map
func headerDoc(h *m.Header) map[string]any {
	doc := map[string]any{
		"version": h.VerStr,
		"type":    string(h.Type),
		"system":  string(h.Sys),
	}
	if h.Prog != "" {
		doc["program"] = h.Prog
	}
	if h.RunBy != "" {
		doc["run_by"] = h.RunBy
	}
	if h.Date != "" {
		doc["date"] = h.Date
	}
	if h.Marker != "" {
		doc["marker"] = h.Marker
	}
	if s := strings.TrimSpace(h.RecNum + " " + h.RecType + " " + h.RecVers); s != "" {
		doc["receiver"] = s
	}
	if s := strings.TrimSpace(h.AntNum + " " + h.AntType); s != "" {
		doc["antenna"] = s
	}
	if h.HasPos {
		llh := h.Pos.ToLLH()
		doc["position"] = []float64{h.Pos.X, h.Pos.Y, h.Pos.Z}
		doc["position_geodetic"] = []float64{m.ToDeg(llh.Lat), m.ToDeg(llh.Lon), llh.Hei}
	}
	if !math.IsNaN(h.Interval) {
		doc["interval"] = h.Interval
	}
	if h.TimeSys != "" {
		doc["time_system"] = h.TimeSys
	}
	if h.HasFirst {
		doc["first_obs"] = h.FirstObs.UTC().Format("2006/01/02 15:04:05.000")
	}
	if h.HasLast {
		doc["last_obs"] = h.LastObs.UTC().Format("2006/01/02 15:04:05.000")
	}
	if h.HasLeap {
		doc["leap_seconds"] = h.Leap
	}
	if h.Type == 'O' {
		doc["clock_offset_applied"] = h.ClkApplied
	}
	if len(h.CodesV2) > 0 {
		types := make([]string, len(h.CodesV2))
		for i, c := range h.CodesV2 {
			types[i] = string(c)
		}
		doc["obs_types"] = types
	}
	if len(h.Codes) > 0 {
		types := map[string][]string{}
		for sys, codes := range h.Codes {
			for _, c := range codes {
				types[string(sys)] = append(types[string(sys)], string(c))
			}
		}
		doc["obs_types"] = types
	}
	if len(h.IonoCorr) > 0 {
		doc["iono_corr"] = h.IonoCorr
	}
	if len(h.TimeCorr) > 0 {
		tc := map[string][]float64{}
		for k, v := range h.TimeCorr {
			tc[k] = []float64{v.A0, v.A1, float64(v.RefTime), float64(v.RefWeek)}
		}
		doc["time_corr"] = tc
	}
	if len(h.Comments) > 0 {
		doc["comments"] = h.Comments
	}
	return doc
}
