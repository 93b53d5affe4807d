package trajectory

import "github.com/chrismile/trajvis/pkg/math"

// SelectionInput is a sparse trajectory selection expressed in a uniform
// logical index space: every trajectory is assumed to span
// SamplesPerTrajectory logical samples, and entry i selects
// [StartIndices[i], StartIndices[i]+Counts[i]) of that space. The
// trajectory a range belongs to is StartIndices[i] / SamplesPerTrajectory.
type SelectionInput struct {
	StartIndices         []int32
	Counts               []int32
	SamplesPerTrajectory int
}

// SelectionMapper rescales logical selections onto the index ranges a
// mesh generator actually emitted. TrajectoryToMesh maps an original
// trajectory index to its position in IndexOffsets/IndexCounts, with -1
// for trajectories that were filtered out before meshing; nil means
// identity.
type SelectionMapper struct {
	IndexOffsets      []uint32
	IndexCounts       []uint32
	IndicesPerSegment int
	TrajectoryToMesh  []int
}

// NewTubeSelectionMapper builds a mapper over a triangulated tube mesh.
func NewTubeSelectionMapper(mesh *TubeMesh) *SelectionMapper {
	return &SelectionMapper{
		IndexOffsets:      mesh.IndexOffsets,
		IndexCounts:       mesh.IndexCounts,
		IndicesPerSegment: mesh.IndicesPerSegment(),
	}
}

// NewLineSelectionMapper builds a mapper over a line-list mesh.
func NewLineSelectionMapper(mesh *LineMesh) *SelectionMapper {
	return &SelectionMapper{
		IndexOffsets:      mesh.IndexOffsets,
		IndexCounts:       mesh.IndexCounts,
		IndicesPerSegment: mesh.IndicesPerSegment(),
	}
}

// DrawSelection is the per-trajectory draw parameter set produced from a
// logical selection. Counts and ByteOffsets are parallel and sized to the
// number of trajectories that survived mapping, which may be fewer than
// the number of input ranges. Included is keyed by mesh index and marks
// trajectories with any visible selection. UsesFiltering is set when any
// range was partial or any trajectory was dropped.
type DrawSelection struct {
	Counts        []int32
	ByteOffsets   []int64
	Included      []bool
	UsesFiltering bool
}

const indexByteSize = 4 // uint32 indices

// Map converts a logical selection into element counts and byte offsets
// into the emitted index buffer. Partial ranges are rounded down to whole
// geometric primitives so a draw never splits a segment's indices.
func (m *SelectionMapper) Map(sel SelectionInput) *DrawSelection {
	out := &DrawSelection{Included: make([]bool, len(m.IndexCounts))}
	samplesPer := sel.SamplesPerTrajectory
	if samplesPer <= 0 {
		return out
	}
	ips := int64(m.IndicesPerSegment)

	for i := range sel.StartIndices {
		start := int(sel.StartIndices[i])
		count := int(sel.Counts[i])
		offsetSelection := start % samplesPer
		trajectoryIdx := start / samplesPer

		meshIdx := trajectoryIdx
		if m.TrajectoryToMesh != nil {
			if trajectoryIdx < 0 || trajectoryIdx >= len(m.TrajectoryToMesh) {
				continue
			}
			meshIdx = m.TrajectoryToMesh[trajectoryIdx]
		}
		if meshIdx < 0 || meshIdx >= len(m.IndexCounts) || offsetSelection >= count {
			continue
		}

		numIndices := int64(m.IndexCounts[meshIdx])
		if numIndices == 0 {
			continue
		}

		var selectionCount int64
		if count == samplesPer {
			selectionCount = numIndices
		} else {
			out.UsesFiltering = true
			selectionCount = ips * (numIndices / ips * int64(count) / int64(samplesPer))
		}

		var selectionIndex int64
		if offsetSelection != 0 {
			out.UsesFiltering = true
			selectionIndex = ips * (numIndices / ips * int64(offsetSelection) / int64(samplesPer))
		}
		selectionIndex += int64(m.IndexOffsets[meshIdx])

		out.Included[meshIdx] = true
		out.Counts = append(out.Counts, int32(selectionCount))
		out.ByteOffsets = append(out.ByteOffsets, selectionIndex*indexByteSize)
	}

	if len(out.Counts) != len(m.IndexCounts) {
		out.UsesFiltering = true
	}
	return out
}

// SelectedPolylines extracts, for chart-style consumers, the selected
// sub-polylines of a dataset: positions plus their original time steps,
// rescaled from logical to actual sample indices. Trajectories with at
// most one point or an empty mapped range are skipped.
func SelectedPolylines(ds *Dataset, sel SelectionInput) (polylines [][]math.Vec3, timeSteps [][]float32, trajectoryIndices []uint32) {
	samplesPer := sel.SamplesPerTrajectory
	if samplesPer <= 0 {
		return nil, nil, nil
	}
	for i := range sel.StartIndices {
		start := int(sel.StartIndices[i])
		count := int(sel.Counts[i])
		offsetSelection := start % samplesPer
		trajectoryIdx := start / samplesPer
		if trajectoryIdx < 0 || trajectoryIdx >= len(ds.Trajectories) || offsetSelection >= count {
			continue
		}
		t := &ds.Trajectories[trajectoryIdx]
		n := len(t.Positions)
		if n <= 1 {
			continue
		}

		selectionCount := n
		if count != samplesPer {
			selectionCount = n * count / samplesPer
		}
		selectionIndex := 0
		if offsetSelection != 0 {
			selectionIndex = n * offsetSelection / samplesPer
		}

		var polyline []math.Vec3
		var steps []float32
		for j := selectionIndex; j < selectionCount; j++ {
			polyline = append(polyline, t.Positions[j])
			steps = append(steps, float32(t.ElementIDs[j]))
		}
		if len(polyline) == 0 {
			continue
		}
		polylines = append(polylines, polyline)
		timeSteps = append(timeSteps, steps)
		trajectoryIndices = append(trajectoryIndices, uint32(trajectoryIdx))
	}
	return polylines, timeSteps, trajectoryIndices
}
