// Package trajdata loads trajectory datasets from JSON files.
package trajdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/chrismile/trajvis/internal/engine/trajectory"
	"github.com/chrismile/trajvis/internal/logger"
	"github.com/chrismile/trajvis/pkg/math"
)

// file mirrors the on-disk JSON layout.
type file struct {
	Variables           []string         `json:"variables"`
	ReferenceTrajectory int              `json:"reference_trajectory"`
	Trajectories        []fileTrajectory `json:"trajectories"`
}

// fileTrajectory is one polyline as stored on disk. A null entry in
// Points marks a dropped sample (JSON has no NaN literal); a null
// attribute sample decodes to a missing value.
type fileTrajectory struct {
	LineID       int32        `json:"line_id"`
	Points       [][]float32  `json:"points"`
	Attributes   [][]*float32 `json:"attributes"`
	ElementIDs   []int32      `json:"element_ids,omitempty"`
	AscentOffset int          `json:"ascent_offset"`
}

// Load reads a dataset from path and returns it together with the
// ascent synchronization state carried in the file.
func Load(path string) (*trajectory.Dataset, *trajectory.SyncState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, sync, err := Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return ds, sync, nil
}

// Parse decodes a JSON dataset from r. Trajectories with inconsistent
// per-point arrays are skipped with a warning rather than failing the
// whole load. The returned SyncState defaults to local ascent
// alignment; callers may override the Alignment field.
func Parse(r io.Reader) (*trajectory.Dataset, *trajectory.SyncState, error) {
	var raw file
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decoding dataset: %w", err)
	}

	var (
		trajs   []trajectory.Trajectory
		offsets []int
	)
	for i, rt := range raw.Trajectories {
		t, err := convert(rt, len(raw.Variables))
		if err != nil {
			logger.Warn("skipping trajectory",
				zap.Int("index", i),
				zap.Int32("lineID", rt.LineID),
				zap.Error(err))
			continue
		}
		trajs = append(trajs, t)
		offsets = append(offsets, rt.AscentOffset)
	}

	ds, err := trajectory.NewDataset(trajs, raw.Variables)
	if err != nil {
		return nil, nil, err
	}

	ref := raw.ReferenceTrajectory
	if ref < 0 || ref >= len(trajs) {
		if len(trajs) > 0 && ref != 0 {
			logger.Warn("reference trajectory out of range, using 0",
				zap.Int("reference", ref),
				zap.Int("trajectories", len(trajs)))
		}
		ref = 0
	}
	sync := trajectory.NewSyncState(offsets, ref, trajectory.AscentAlignLocal)

	return ds, sync, nil
}

// convert turns a fileTrajectory into an in-memory Trajectory,
// dropping null and non-finite samples.
func convert(rt fileTrajectory, numVariables int) (trajectory.Trajectory, error) {
	n := len(rt.Points)
	if len(rt.Attributes) != numVariables {
		return trajectory.Trajectory{}, fmt.Errorf("%d attribute arrays, expected %d", len(rt.Attributes), numVariables)
	}
	for varIdx, attr := range rt.Attributes {
		if len(attr) != n {
			return trajectory.Trajectory{}, fmt.Errorf("variable %d has %d samples for %d points", varIdx, len(attr), n)
		}
	}
	if rt.ElementIDs != nil && len(rt.ElementIDs) != n {
		return trajectory.Trajectory{}, fmt.Errorf("%d element IDs for %d points", len(rt.ElementIDs), n)
	}

	out := trajectory.Trajectory{
		LineID:     rt.LineID,
		Attributes: make([][]float32, numVariables),
	}
	for i, p := range rt.Points {
		if p == nil {
			continue
		}
		if len(p) != 3 {
			return trajectory.Trajectory{}, fmt.Errorf("point %d has %d coordinates", i, len(p))
		}
		if math32.IsNaN(p[0]) || math32.IsNaN(p[1]) || math32.IsNaN(p[2]) {
			continue
		}

		elemID := int32(i)
		if rt.ElementIDs != nil {
			elemID = rt.ElementIDs[i]
		}
		out.Positions = append(out.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		out.ElementIDs = append(out.ElementIDs, elemID)
		for varIdx := range out.Attributes {
			sample := math32.NaN()
			if s := rt.Attributes[varIdx][i]; s != nil {
				sample = *s
			}
			out.Attributes[varIdx] = append(out.Attributes[varIdx], sample)
		}
	}
	return out, nil
}
