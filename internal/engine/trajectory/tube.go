package trajectory

import (
	"github.com/chewxy/math32"

	"github.com/chrismile/trajvis/pkg/math"
)

// TubeParams controls tube extrusion.
type TubeParams struct {
	Radius       float32
	Subdivisions int // radial samples per ring
}

// TubeMesh is a triangulated tube surface over all trajectories of a
// dataset. Vertex arrays are shared; IndexOffsets/IndexCounts record, in
// emission order, where each trajectory's triangles live in Indices.
// Trajectories with fewer than two valid points contribute no vertices
// and an index count of zero.
type TubeMesh struct {
	Positions  []math.Vec3
	Normals    []math.Vec3
	Tangents   []math.Vec3
	LineIDs    []int32
	ElementIDs []int32
	Indices    []uint32

	IndexOffsets []uint32
	IndexCounts  []uint32
	Subdivisions int
}

// IndicesPerSegment returns the number of triangle indices one logical
// line segment occupies.
func (m *TubeMesh) IndicesPerSegment() int {
	return 6 * m.Subdivisions
}

// LinePoint is one centerline vertex for backends that extrude tubes on
// the GPU. Layout matches a std430 structured buffer.
type LinePoint struct {
	Position  math.Vec3
	LineID    int32
	Normal    math.Vec3
	ElementID int32
	Tangent   math.Vec3
	Padding   float32
}

// LineMesh is the centerline + frame variant of the tube geometry, with
// two indices per segment; radial expansion is a backend responsibility.
type LineMesh struct {
	Points  []LinePoint
	Indices []uint32

	IndexOffsets []uint32
	IndexCounts  []uint32
}

// IndicesPerSegment returns the number of line-list indices per segment.
func (m *LineMesh) IndicesPerSegment() int {
	return 2
}

// circleVertices samples k points on a circle of the given radius in the
// normal/binormal plane, starting at (radius, 0).
func circleVertices(radius float32, k int) []math.Vec2 {
	theta := 2 * math32.Pi / float32(k)
	tangentialFactor := math32.Tan(theta)
	radialFactor := math32.Cos(theta)

	points := make([]math.Vec2, 0, k)
	position := math.Vec2{X: radius}
	for i := 0; i < k; i++ {
		points = append(points, position)
		// Step along the tangent, then pull back onto the circle.
		tangent := math.Vec2{X: -position.Y, Y: position.X}
		position = position.Add(tangent.Scale(tangentialFactor)).Scale(radialFactor)
	}
	return points
}

// ringVertex places a circle sample into world space at the given frame.
func ringVertex(pt math.Vec2, frame Frame) math.Vec3 {
	binormal := frame.Binormal()
	return math.Vec3{
		X: pt.X*frame.Normal.X + pt.Y*binormal.X + frame.Position.X,
		Y: pt.X*frame.Normal.Y + pt.Y*binormal.Y + frame.Position.Y,
		Z: pt.X*frame.Normal.Z + pt.Y*binormal.Z + frame.Position.Z,
	}
}

// BuildTubeMesh extrudes every trajectory of the dataset into a circular
// tube. NaN points are dropped first, then degenerate points; a
// trajectory reduced to a single valid point emits nothing.
func BuildTubeMesh(ds *Dataset, params TubeParams) *TubeMesh {
	k := params.Subdivisions
	circle := circleVertices(params.Radius, k)

	mesh := &TubeMesh{Subdivisions: k}
	for ti := range ds.Trajectories {
		t := &ds.Trajectories[ti]
		centers, elementIDs := t.CleanPoints()

		mesh.IndexOffsets = append(mesh.IndexOffsets, uint32(len(mesh.Indices)))

		frames, kept := BuildFrames(centers)
		if len(frames) < 2 {
			mesh.IndexCounts = append(mesh.IndexCounts, 0)
			continue
		}

		ringOffset := uint32(len(mesh.Positions)) / uint32(k)
		for fi, frame := range frames {
			for _, pt := range circle {
				pos := ringVertex(pt, frame)
				mesh.Positions = append(mesh.Positions, pos)
				mesh.Normals = append(mesh.Normals, pos.Sub(frame.Position).Normalize())
				mesh.Tangents = append(mesh.Tangents, frame.Tangent)
				mesh.LineIDs = append(mesh.LineIDs, t.LineID)
				mesh.ElementIDs = append(mesh.ElementIDs, elementIDs[kept[fi]])
			}
		}

		numSegments := len(frames) - 1
		for i := 0; i < numSegments; i++ {
			current := (ringOffset + uint32(i)) * uint32(k)
			next := (ringOffset + uint32(i) + 1) * uint32(k)
			for j := 0; j < k; j++ {
				jNext := uint32((j + 1) % k)
				jj := uint32(j)

				mesh.Indices = append(mesh.Indices,
					current+jj, current+jNext, next+jj,
					next+jj, current+jNext, next+jNext)
			}
		}
		mesh.IndexCounts = append(mesh.IndexCounts, uint32(numSegments*6*k))
	}
	return mesh
}

// BuildLineMesh emits the centerline line-list variant of the tube
// geometry for geometry-shader style backends.
func BuildLineMesh(ds *Dataset) *LineMesh {
	mesh := &LineMesh{}
	for ti := range ds.Trajectories {
		t := &ds.Trajectories[ti]
		centers, elementIDs := t.CleanPoints()

		mesh.IndexOffsets = append(mesh.IndexOffsets, uint32(len(mesh.Indices)))

		frames, kept := BuildFrames(centers)
		if len(frames) < 2 {
			mesh.IndexCounts = append(mesh.IndexCounts, 0)
			continue
		}

		pointOffset := uint32(len(mesh.Points))
		for fi, frame := range frames {
			mesh.Points = append(mesh.Points, LinePoint{
				Position:  frame.Position,
				LineID:    t.LineID,
				Normal:    frame.Normal,
				ElementID: elementIDs[kept[fi]],
				Tangent:   frame.Tangent,
			})
		}

		numSegments := len(frames) - 1
		for i := 0; i < numSegments; i++ {
			mesh.Indices = append(mesh.Indices, pointOffset+uint32(i), pointOffset+uint32(i)+1)
		}
		mesh.IndexCounts = append(mesh.IndexCounts, uint32(numSegments*2))
	}
	return mesh
}
