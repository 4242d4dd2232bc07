// Package variants holds the named responsive-image widths and the math that
// derives each variant's dimensions from the original.
package variants

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"assetsync/internal/services"
)

// Spec names one resized derivative of a source image.
type Spec struct {
	Name  string `toml:"name"`
	Width int    `toml:"width"`
}

// Table is an ordered, immutable set of variant specs. Iteration order is the
// order the specs were declared in and drives upload-key order.
type Table struct {
	specs []Spec
}

const (
	ProfileStandard = "standard"
	ProfileCompact  = "compact"
)

var profiles = map[string][]Spec{
	ProfileStandard: {
		{Name: "mobile", Width: 200},
		{Name: "tablet", Width: 400},
		{Name: "desktop_md", Width: 800},
		{Name: "desktop_lg", Width: 1200},
	},
	ProfileCompact: {
		{Name: "mobile", Width: 200},
		{Name: "desktop_lg", Width: 1200},
	},
}

// Profile returns a copy of the named built-in variant list.
func Profile(name string) ([]Spec, bool) {
	specs, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out, true
}

// ProfileNames lists the built-in profiles in a stable order.
func ProfileNames() []string {
	return []string{ProfileStandard, ProfileCompact}
}

// NewTable validates specs and freezes them into a Table. Names and widths must
// be unique and widths positive.
func NewTable(specs []Spec) (Table, error) {
	if len(specs) == 0 {
		return Table{}, services.Wrap(services.ErrConfiguration, "variants", "table", "at least one variant is required", nil)
	}
	names := make(map[string]struct{}, len(specs))
	widths := make(map[int]struct{}, len(specs))
	frozen := make([]Spec, 0, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return Table{}, services.Wrap(services.ErrConfiguration, "variants", "table", fmt.Sprintf("variant %d has no name", i+1), nil)
		}
		if spec.Width <= 0 {
			return Table{}, services.Wrap(services.ErrConfiguration, "variants", "table", fmt.Sprintf("variant %q width must be positive", name), nil)
		}
		if _, dup := names[name]; dup {
			return Table{}, services.Wrap(services.ErrConfiguration, "variants", "table", fmt.Sprintf("duplicate variant name %q", name), nil)
		}
		if _, dup := widths[spec.Width]; dup {
			return Table{}, services.Wrap(services.ErrConfiguration, "variants", "table", fmt.Sprintf("duplicate variant width %d", spec.Width), nil)
		}
		names[name] = struct{}{}
		widths[spec.Width] = struct{}{}
		frozen = append(frozen, Spec{Name: name, Width: spec.Width})
	}
	return Table{specs: frozen}, nil
}

// Specs returns a copy of the table in iteration order.
func (t Table) Specs() []Spec {
	out := make([]Spec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Len reports the number of variants.
func (t Table) Len() int { return len(t.specs) }

// ComputeDimensions returns the variant size for targetWidth, preserving the
// original aspect ratio: height = round(targetWidth * originalHeight / originalWidth).
// Variants are computed regardless of the original width, so upscaling happens
// for small sources.
func ComputeDimensions(originalWidth, originalHeight, targetWidth int) (int, int, error) {
	if originalWidth <= 0 || originalHeight <= 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "variants", "dimensions",
			fmt.Sprintf("source image has zero dimension (%dx%d)", originalWidth, originalHeight), nil)
	}
	if targetWidth <= 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "variants", "dimensions",
			fmt.Sprintf("target width must be positive, got %d", targetWidth), nil)
	}
	height := math.Round(float64(targetWidth) * float64(originalHeight) / float64(originalWidth))
	if height < 1 {
		height = 1
	}
	return targetWidth, int(height), nil
}

// Key builds the object key (without prefix) for a variant: <stem>_w<width>.<ext>.
func Key(stem string, width int, ext string) string {
	return stem + "_w" + strconv.Itoa(width) + "." + ext
}
