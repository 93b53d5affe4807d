// Package picking provides CPU-side ray casting against generated
// trajectory geometry, for hover and click selection of tubes.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/chrismile/trajvis/internal/engine/trajectory"
	"github.com/chrismile/trajvis/pkg/math"
)

// Ray is a half line in world space.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized
}

// NewRay builds a ray toward target, normalizing the direction.
func NewRay(origin, target math.Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Sub(origin).Normalize()}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Extend grows the box to contain p.
func (b *AABB) Extend(p math.Vec3) {
	b.Min.X = math32.Min(b.Min.X, p.X)
	b.Min.Y = math32.Min(b.Min.Y, p.Y)
	b.Min.Z = math32.Min(b.Min.Z, p.Z)
	b.Max.X = math32.Max(b.Max.X, p.X)
	b.Max.Y = math32.Max(b.Max.Y, p.Y)
	b.Max.Z = math32.Max(b.Max.Z, p.Z)
}

// emptyAABB returns a box that any Extend call will snap onto.
func emptyAABB() AABB {
	return AABB{
		Min: math.Vec3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: math.Vec3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
}

// IntersectAABB tests the ray against a box with the slab method. It
// returns the entry distance, or the exit distance when the ray starts
// inside the box.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	slab := func(origin, direction, lo, hi float32) bool {
		if direction != 0 {
			t1 := (lo - origin) / direction
			t2 := (hi - origin) / direction
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			tmin = math32.Max(tmin, t1)
			tmax = math32.Min(tmax, t2)
			return true
		}
		return origin >= lo && origin <= hi
	}

	if !slab(r.Origin.X, r.Direction.X, box.Min.X, box.Max.X) ||
		!slab(r.Origin.Y, r.Direction.Y, box.Min.Y, box.Max.Y) ||
		!slab(r.Origin.Z, r.Direction.Z, box.Min.Z, box.Max.Z) {
		return 0, false
	}
	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle intersects the ray with triangle (a, b, c) using the
// Moller-Trumbore algorithm. Backfaces hit too.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	const eps = 1e-7

	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if math32.Abs(det) < eps {
		return 0, false // ray parallel to the triangle plane
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Hit describes the closest tube surface point under a ray.
type Hit struct {
	Distance   float32
	Trajectory int   // position in the mesh's per-trajectory arrays
	LineID     int32 // line ID of the hit vertex
	ElementID  int32 // original time step of the hit vertex
	Point      math.Vec3
}

// PickTube intersects the ray with a triangulated tube mesh and returns
// the nearest hit. Per-trajectory bounding boxes prune trajectories the
// ray cannot touch before any triangle test runs.
func PickTube(mesh *trajectory.TubeMesh, ray Ray) (Hit, bool) {
	boxes := trajectoryBounds(mesh)

	best := Hit{Distance: math32.MaxFloat32}
	found := false
	for ti := range mesh.IndexCounts {
		count := int(mesh.IndexCounts[ti])
		if count == 0 {
			continue
		}
		if boxT, ok := ray.IntersectAABB(boxes[ti]); !ok || boxT > best.Distance {
			continue
		}

		offset := int(mesh.IndexOffsets[ti])
		for i := offset; i < offset+count; i += 3 {
			i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			t, ok := ray.IntersectTriangle(mesh.Positions[i0], mesh.Positions[i1], mesh.Positions[i2])
			if !ok || t >= best.Distance {
				continue
			}
			best = Hit{
				Distance:   t,
				Trajectory: ti,
				LineID:     mesh.LineIDs[i0],
				ElementID:  mesh.ElementIDs[i0],
				Point:      ray.Origin.Add(ray.Direction.Scale(t)),
			}
			found = true
		}
	}
	return best, found
}

// trajectoryBounds computes one AABB per trajectory from the vertices
// its triangles reference.
func trajectoryBounds(mesh *trajectory.TubeMesh) []AABB {
	boxes := make([]AABB, len(mesh.IndexCounts))
	for ti := range mesh.IndexCounts {
		box := emptyAABB()
		offset := int(mesh.IndexOffsets[ti])
		for i := offset; i < offset+int(mesh.IndexCounts[ti]); i++ {
			box.Extend(mesh.Positions[mesh.Indices[i]])
		}
		boxes[ti] = box
	}
	return boxes
}
