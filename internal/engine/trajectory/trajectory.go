// Package trajectory turns ensembles of 3D trajectory polylines into
// renderable tube, roll and cross-section geometry, and synchronizes
// trajectories that were integrated over different absolute time ranges.
package trajectory

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/chrismile/trajvis/pkg/math"
)

// Trajectory is one particle path with per-point scalar attributes.
// Positions are expected to be NaN-free (NaN points are dropped at load
// time); attribute samples may still be NaN for missing values.
type Trajectory struct {
	Positions  []math.Vec3
	Attributes [][]float32 // [variable][sample], parallel to Positions
	LineID     int32
	ElementIDs []int32 // original time-step index per point
}

// Validate checks that the per-point arrays are consistent and that the
// trajectory carries the expected number of variables.
func (t *Trajectory) Validate(numVariables int) error {
	n := len(t.Positions)
	if len(t.ElementIDs) != n {
		return fmt.Errorf("trajectory %d: %d element IDs for %d points", t.LineID, len(t.ElementIDs), n)
	}
	if len(t.Attributes) != numVariables {
		return fmt.Errorf("trajectory %d: %d attribute arrays, expected %d", t.LineID, len(t.Attributes), numVariables)
	}
	for varIdx, attr := range t.Attributes {
		if len(attr) != n {
			return fmt.Errorf("trajectory %d: variable %d has %d samples for %d points", t.LineID, varIdx, len(attr), n)
		}
	}
	return nil
}

// CleanPoints returns the positions with NaN points removed, together
// with the element IDs of the surviving points.
func (t *Trajectory) CleanPoints() ([]math.Vec3, []int32) {
	centers := make([]math.Vec3, 0, len(t.Positions))
	elementIDs := make([]int32, 0, len(t.Positions))
	for i, p := range t.Positions {
		if p.IsNaN() {
			continue
		}
		centers = append(centers, p)
		elementIDs = append(elementIDs, t.ElementIDs[i])
	}
	return centers, elementIDs
}

// Range is a closed scalar interval.
type Range struct {
	Min, Max float32
}

// Dataset is an immutable ensemble of trajectories sharing one variable set.
type Dataset struct {
	Trajectories   []Trajectory
	VariableNames  []string
	NumVariables   int
	AttributeRange []Range // global per-variable min/max, NaN samples skipped
}

// NewDataset assembles a dataset and precomputes the global attribute
// ranges used for thickness mapping. Trajectories that fail validation
// are rejected with an error naming the offending trajectory; already
// accepted trajectories are unaffected.
func NewDataset(trajectories []Trajectory, variableNames []string) (*Dataset, error) {
	numVariables := len(variableNames)
	ds := &Dataset{
		VariableNames: variableNames,
		NumVariables:  numVariables,
	}
	for i := range trajectories {
		if err := trajectories[i].Validate(numVariables); err != nil {
			return nil, err
		}
		ds.Trajectories = append(ds.Trajectories, trajectories[i])
	}
	ds.AttributeRange = computeAttributeRanges(ds.Trajectories, numVariables)
	return ds, nil
}

func computeAttributeRanges(trajectories []Trajectory, numVariables int) []Range {
	ranges := make([]Range, numVariables)
	for i := range ranges {
		ranges[i] = Range{Min: math32.MaxFloat32, Max: -math32.MaxFloat32}
	}
	for ti := range trajectories {
		for varIdx, attr := range trajectories[ti].Attributes {
			r := &ranges[varIdx]
			for _, v := range attr {
				if math32.IsNaN(v) {
					continue
				}
				r.Min = math32.Min(r.Min, v)
				r.Max = math32.Max(r.Max, v)
			}
		}
	}
	for i := range ranges {
		if ranges[i].Min > ranges[i].Max {
			// Variable had no valid samples at all.
			ranges[i] = Range{}
		}
	}
	return ranges
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
