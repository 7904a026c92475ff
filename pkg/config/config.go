// Package config holds the print profile consumed by the toolpath
// pipeline. Profiles are plain HCL attribute files; validation runs
// once before any layer is processed and is the only fatal error
// source in the engine.
package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Infill pattern names accepted by Profile.InfillPattern.
const (
	PatternLinear     = "linear"
	PatternGrid       = "grid"
	PatternConcentric = "concentric"
)

// Profile is the full set of recognized print options.
type Profile struct {
	FeedRate           float64 `hcl:"feed_rate,optional"`           // mm/min, tracing moves
	TravelRate         float64 `hcl:"travel_rate,optional"`         // mm/min, rapid travel
	OptimizePaths      bool    `hcl:"optimize_paths,optional"`      // nearest-first ordering + routed travel
	InfillPattern      string  `hcl:"infill_pattern,optional"`      // linear | grid | concentric
	InfillDensity      float64 `hcl:"infill_density,optional"`      // 0-100 percent
	InfillEvery        int     `hcl:"infill_every,optional"`        // fill every Nth layer; 0 disables infill
	BaseSpacing        float64 `hcl:"base_spacing,optional"`        // mm, spacing at density 0
	EnableRetraction   bool    `hcl:"enable_retraction,optional"`
	RetractionDistance float64 `hcl:"retraction_distance,optional"` // mm of filament
	RetractionFeedRate float64 `hcl:"retraction_feed_rate,optional"`
	RetractThreshold   float64 `hcl:"retract_threshold,optional"`   // mm of travel before retracting
	GridCellFactor     float64 `hcl:"grid_cell_factor,optional"`    // router cell = tolerance * factor
}

// Default returns a profile with workable values for library use.
func Default() Profile {
	return Profile{
		FeedRate:           1200,
		TravelRate:         4800,
		OptimizePaths:      true,
		InfillPattern:      PatternLinear,
		InfillDensity:      20,
		InfillEvery:        1,
		BaseSpacing:        5,
		EnableRetraction:   true,
		RetractionDistance: 1.5,
		RetractionFeedRate: 1800,
		RetractThreshold:   5,
		GridCellFactor:     10,
	}
}

// Load reads a profile from an HCL file. Unset attributes fall back
// to Default values.
func Load(path string) (Profile, error) {
	p := Default()
	if err := hclsimple.DecodeFile(path, nil, &p); err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the profile. Any error returned here aborts the run
// before layer processing starts; everything downstream is advisory.
func (p Profile) Validate() error {
	var errs []error

	if p.FeedRate <= 0 {
		errs = append(errs, fmt.Errorf("feed_rate must be positive, got %g", p.FeedRate))
	}
	if p.TravelRate <= 0 {
		errs = append(errs, fmt.Errorf("travel_rate must be positive, got %g", p.TravelRate))
	}
	if p.InfillDensity < 0 || p.InfillDensity > 100 {
		errs = append(errs, fmt.Errorf("infill_density must be within [0,100], got %g", p.InfillDensity))
	}
	switch p.InfillPattern {
	case PatternLinear, PatternGrid, PatternConcentric:
	default:
		errs = append(errs, fmt.Errorf("unknown infill_pattern %q", p.InfillPattern))
	}
	if p.InfillEvery < 0 {
		errs = append(errs, fmt.Errorf("infill_every must not be negative, got %d", p.InfillEvery))
	}
	if p.BaseSpacing <= 0 {
		errs = append(errs, fmt.Errorf("base_spacing must be positive, got %g", p.BaseSpacing))
	}
	if p.RetractionDistance < 0 {
		errs = append(errs, fmt.Errorf("retraction_distance must not be negative, got %g", p.RetractionDistance))
	}
	if p.EnableRetraction && p.RetractionFeedRate <= 0 {
		errs = append(errs, fmt.Errorf("retraction_feed_rate must be positive when retraction is enabled, got %g", p.RetractionFeedRate))
	}
	if p.RetractThreshold < 0 {
		errs = append(errs, fmt.Errorf("retract_threshold must not be negative, got %g", p.RetractThreshold))
	}
	if p.GridCellFactor <= 0 {
		errs = append(errs, fmt.Errorf("grid_cell_factor must be positive, got %g", p.GridCellFactor))
	}

	return errors.Join(errs...)
}
