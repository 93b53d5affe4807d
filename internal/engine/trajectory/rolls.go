package trajectory

import (
	"github.com/chewxy/math32"

	"github.com/chrismile/trajvis/pkg/math"
)

// RollsParams controls roll segment generation.
type RollsParams struct {
	TubeRadius   float32
	RollsRadius  float32
	RollsWidth   float32 // arc length of one roll along the trajectory
	MapThickness bool    // scale ring radius by the variable's value at the cursor
	Subdivisions int
	Variables    []int // selected variable indices, in stacking order
}

// capFlag marks cap vertices in the VariableIDs stream.
const capFlag = uint32(1) << 31

// RollsMesh holds the capped ring segments stacked around the cursor,
// one segment per selected variable per trajectory. RollPositions run
// from 0 to 1 along each roll; VariableIDs carry the variable index with
// capFlag set on end-cap vertices.
type RollsMesh struct {
	Positions     []math.Vec3
	Normals       []math.Vec3
	Tangents      []math.Vec3
	RollPositions []float32
	LineIDs       []int32
	PointIndices  []float32 // synchronized center index, per vertex
	VariableIDs   []uint32
	Indices       []uint32
}

// rollWindows partitions the trajectory around the clamped cursor into
// one (start, stop) index window per selected variable. Each window
// spans rollsWidth of accumulated segment length; with an odd variable
// count the center window straddles the cursor, otherwise the cursor
// falls on the boundary between the two middle windows.
func rollWindows(centers []math.Vec3, cursor, numVars int, rollsWidth float32) (starts, stops []int) {
	starts = make([]int, numVars)
	stops = make([]int, numVars)
	centerStraddles := numVars%2 == 1

	if !centerStraddles {
		starts[numVars/2] = cursor
		stops[(numVars-1)/2] = cursor
	}

	accumulated := float32(0)
	target := rollsWidth
	if centerStraddles {
		target = rollsWidth / 2
	}
	currentVar := (numVars - 1) / 2
	for i := cursor - 1; i >= 0; i-- {
		accumulated += centers[i+1].Sub(centers[i]).Length()
		if accumulated >= target {
			starts[currentVar] = i
			currentVar--
			if currentVar < 0 {
				break
			}
			stops[currentVar] = i
			target = rollsWidth
			accumulated = 0
		}
	}

	accumulated = 0
	target = rollsWidth
	if centerStraddles {
		target = rollsWidth / 2
	}
	currentVar = numVars / 2
	for i := cursor + 1; i < len(centers); i++ {
		accumulated += centers[i].Sub(centers[i-1]).Length()
		if accumulated >= target {
			stops[currentVar] = i
			currentVar++
			if currentVar >= numVars {
				break
			}
			starts[currentVar] = i
			target = rollsWidth
			accumulated = 0
		}
	}
	return starts, stops
}

// rollRadius maps the variable's value at the cursor into a ring radius
// between the tube's circumscribed radius and the nominal roll radius.
func rollRadius(ds *Dataset, t *Trajectory, varIdx, cursor int, p RollsParams) float32 {
	// Ratio of circumcircle to incircle keeps the rolls clear of the tube.
	radiusFactor := 1 / math32.Cos(math32.Pi/float32(p.Subdivisions))
	innerRadius := math32.Min(p.TubeRadius*radiusFactor, p.RollsRadius)

	r := ds.AttributeRange[varIdx]
	span := r.Max - r.Min
	if span <= 0 {
		return innerRadius
	}
	value := t.Attributes[varIdx][cursor]
	frac := (value - r.Min) / span
	if math32.IsNaN(frac) {
		frac = 0
	}
	frac = math32.Max(0, math32.Min(1, frac))
	return (1-frac)*innerRadius + frac*p.RollsRadius
}

// BuildRollsMesh builds the roll geometry for every trajectory at the
// given cursor. Returns nil when no variables are selected; callers must
// then release any previous roll render state themselves.
func BuildRollsMesh(ds *Dataset, sync *SyncState, mode SyncMode, cursor int, p RollsParams) *RollsMesh {
	numVars := len(p.Variables)
	if numVars <= 0 {
		return nil
	}
	k := p.Subdivisions
	circle := circleVertices(p.RollsRadius, k)

	mesh := &RollsMesh{}
	for ti := range ds.Trajectories {
		t := &ds.Trajectories[ti]
		centers := t.Positions
		n := len(centers)
		if n < 2 {
			continue
		}

		cursorClamped := sync.LocalTimeStep(ds, ti, cursor, mode)
		centerIdx := float32(cursorClamped)
		starts, stops := rollWindows(centers, cursorClamped, numVars, p.RollsWidth)

		for slot := 0; slot < numVars; slot++ {
			varIdx := p.Variables[slot]
			if p.MapThickness {
				circle = circleVertices(rollRadius(ds, t, varIdx, cursorClamped, p), k)
			}

			start, stop := starts[slot], stops[slot]
			indexOffset := uint32(len(mesh.Positions))

			var frames []Frame
			lastNormal := worldX
			for i := start; i <= stop; i++ {
				frame, ok := frameAt(centers, i, lastNormal)
				if !ok {
					continue
				}
				lastNormal = frame.Normal

				rollPos := float32(0)
				if stop > start {
					rollPos = float32(i-start) / float32(stop-start)
				}
				for _, pt := range circle {
					pos := ringVertex(pt, frame)
					mesh.appendVertex(pos, pos.Sub(frame.Position).Normalize(), frame.Tangent,
						rollPos, int32(ti), centerIdx, uint32(varIdx))
				}
				frames = append(frames, frame)
			}

			if len(frames) <= 1 {
				// A roll needs at least two rings.
				mesh.truncateVertices(len(frames) * k)
				continue
			}

			for i := 0; i < len(frames)-1; i++ {
				current := indexOffset + uint32(i*k)
				next := indexOffset + uint32((i+1)*k)
				for j := 0; j < k; j++ {
					jj := uint32(j)
					jNext := uint32((j + 1) % k)
					mesh.Indices = append(mesh.Indices,
						current+jj, current+jNext, next+jNext,
						current+jj, next+jNext, next+jj)
				}
			}

			mesh.appendCap(centers, circle, frames[0], start, stop, false,
				int32(ti), centerIdx, uint32(varIdx))
			mesh.appendCap(centers, circle, frames[len(frames)-1], start, stop, true,
				int32(ti), centerIdx, uint32(varIdx))
		}
	}
	return mesh
}

func (m *RollsMesh) appendVertex(pos, normal, tangent math.Vec3, rollPos float32, lineID int32, centerIdx float32, variableID uint32) {
	m.Positions = append(m.Positions, pos)
	m.Normals = append(m.Normals, normal)
	m.Tangents = append(m.Tangents, tangent)
	m.RollPositions = append(m.RollPositions, rollPos)
	m.LineIDs = append(m.LineIDs, lineID)
	m.PointIndices = append(m.PointIndices, centerIdx)
	m.VariableIDs = append(m.VariableIDs, variableID)
}

func (m *RollsMesh) truncateVertices(count int) {
	end := len(m.Positions) - count
	m.Positions = m.Positions[:end]
	m.Normals = m.Normals[:end]
	m.Tangents = m.Tangents[:end]
	m.RollPositions = m.RollPositions[:end]
	m.LineIDs = m.LineIDs[:end]
	m.PointIndices = m.PointIndices[:end]
	m.VariableIDs = m.VariableIDs[:end]
}

// appendCap closes one end of a roll with a fan around an outward-facing
// center vertex, so the roll reads as a closed capsule.
func (m *RollsMesh) appendCap(centers []math.Vec3, circle []math.Vec2, edge Frame, start, stop int, atStop bool, lineID int32, centerIdx float32, variableID uint32) {
	capID := variableID | capFlag
	k := len(circle)
	indexOffset := uint32(len(m.Positions))

	var capCenter math.Vec3
	var tangent math.Vec3
	rollPos := float32(0)
	if atStop {
		capCenter = centers[stop]
		tangent = centers[stop].Sub(centers[stop-1])
		rollPos = 1
	} else {
		capCenter = centers[start]
		tangent = centers[start].Sub(centers[start+1])
	}
	if tangent.Length() < degenerateEps {
		// Duplicate end point; face the cap along the edge ring's tangent.
		tangent = edge.Tangent
		if !atStop {
			tangent = tangent.Scale(-1)
		}
	}
	tangent = tangent.Normalize()
	normal := edge.Normal
	frame := Frame{Position: capCenter, Tangent: tangent, Normal: normal}

	m.appendVertex(capCenter, normal, tangent, rollPos, lineID, centerIdx, capID)
	for _, pt := range circle {
		pos := ringVertex(pt, frame)
		m.appendVertex(pos, pos.Sub(capCenter).Normalize(), tangent, rollPos, lineID, centerIdx, capID)
	}
	for j := 0; j < k; j++ {
		m.Indices = append(m.Indices,
			indexOffset,
			indexOffset+uint32(j)+1,
			indexOffset+uint32((j+1)%k)+1)
	}
}
