package trajectory

import (
	"github.com/chewxy/math32"

	"github.com/chrismile/trajvis/pkg/math"
)

// SectionIndices holds the fractional local time indices of one
// trajectory's cross section.
type SectionIndices struct {
	Center   float32
	Entrance float32
	Exit     float32
	LineID   int32
}

// CrossSections are the per-trajectory entrance/exit points through the
// query spheres centered at each trajectory's synchronized position.
// The arrays are parallel and keyed by emission order.
type CrossSections struct {
	Centers   []math.Vec3
	Entrances []math.Vec3
	Exits     []math.Vec3
	Indices   []SectionIndices
}

// segmentSphereIntersection intersects the bounded segment p0->p1 with a
// sphere. On a hit it returns the interpolation parameter in [0, 1]
// (smaller root preferred). Ray-sphere quadratic after Glassner et al.,
// "An Introduction to Ray Tracing".
func segmentSphereIntersection(p0, p1, sphereCenter math.Vec3, sphereRadius float32) (float32, bool) {
	direction := p1.Sub(p0)
	rayLength := direction.Length()
	if rayLength < degenerateEps {
		return 0, false
	}
	rayDirection := direction.Scale(1 / rayLength)

	t0, t1, ok := sphereRoots(p0, rayDirection, sphereCenter, sphereRadius)
	if !ok {
		return 0, false
	}
	switch {
	case t0 >= 0 && t0 <= rayLength:
		return t0 / rayLength, true
	case t1 >= 0 && t1 <= rayLength:
		return t1 / rayLength, true
	}
	return 0, false
}

// halfLineSphereIntersection intersects the half line origin + t*direction
// (t >= 0) with a sphere, returning the smallest non-negative distance.
func halfLineSphereIntersection(origin, direction, sphereCenter math.Vec3, sphereRadius float32) (float32, bool) {
	if direction.Length() < degenerateEps {
		return 0, false
	}
	t0, t1, ok := sphereRoots(origin, direction, sphereCenter, sphereRadius)
	if !ok {
		return 0, false
	}
	switch {
	case t0 >= 0:
		return t0, true
	case t1 >= 0:
		return t1, true
	}
	return 0, false
}

func sphereRoots(origin, direction, center math.Vec3, radius float32) (t0, t1 float32, ok bool) {
	oc := origin.Sub(center)
	a := direction.Dot(direction)
	b := 2 * direction.Dot(oc)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, 0, false
	}
	discriminantSqrt := math32.Sqrt(discriminant)
	t0 = (-b - discriminantSqrt) / (2 * a)
	t1 = (-b + discriminantSqrt) / (2 * a)
	return t0, t1, true
}

// ComputeCrossSections intersects every trajectory with a sphere of the
// given radius centered at its synchronized cursor position. Scanning
// backward (forward) from the center, the first segment hit becomes the
// entrance (exit) point; if no segment intersects, the trajectory's end
// direction is extended as a half line, and failing that the endpoint
// itself is used. selected, when non-nil, skips trajectories whose entry
// is false; skipped trajectories emit nothing.
func ComputeCrossSections(ds *Dataset, sync *SyncState, mode SyncMode, cursor int, sphereRadius float32, selected []bool) *CrossSections {
	cs := &CrossSections{}
	for ti := range ds.Trajectories {
		if selected != nil && ti < len(selected) && !selected[ti] {
			continue
		}
		t := &ds.Trajectories[ti]
		n := len(t.Positions)
		if n == 0 {
			continue
		}

		center := sync.LocalTimeStep(ds, ti, cursor, mode)
		sphereCenter := t.Positions[center]
		cs.Centers = append(cs.Centers, sphereCenter)

		entranceIdx := float32(0)
		foundEntrance := false
		for i := center; i > 0; i-- {
			p0 := t.Positions[i-1]
			p1 := t.Positions[i]
			if hitT, ok := segmentSphereIntersection(p0, p1, sphereCenter, sphereRadius); ok {
				cs.Entrances = append(cs.Entrances, p0.Lerp(p1, hitT))
				entranceIdx = float32(i-1) + hitT
				foundEntrance = true
				break
			}
		}
		if !foundEntrance {
			if n == 1 {
				cs.Entrances = append(cs.Entrances, t.Positions[0])
			} else {
				p0 := t.Positions[0]
				rayDirection := p0.Sub(t.Positions[1]).Normalize()
				if hitT, ok := halfLineSphereIntersection(p0, rayDirection, sphereCenter, sphereRadius); ok {
					cs.Entrances = append(cs.Entrances, p0.Add(rayDirection.Scale(hitT)))
				} else {
					cs.Entrances = append(cs.Entrances, p0)
				}
			}
		}

		exitIdx := float32(n - 1)
		foundExit := false
		for i := center; i < n-1; i++ {
			p0 := t.Positions[i]
			p1 := t.Positions[i+1]
			if hitT, ok := segmentSphereIntersection(p0, p1, sphereCenter, sphereRadius); ok {
				cs.Exits = append(cs.Exits, p0.Lerp(p1, hitT))
				exitIdx = float32(i) + hitT
				foundExit = true
				break
			}
		}
		if !foundExit {
			if n == 1 {
				cs.Exits = append(cs.Exits, t.Positions[0])
			} else {
				p1 := t.Positions[n-1]
				rayDirection := p1.Sub(t.Positions[n-2]).Normalize()
				if hitT, ok := halfLineSphereIntersection(p1, rayDirection, sphereCenter, sphereRadius); ok {
					cs.Exits = append(cs.Exits, p1.Add(rayDirection.Scale(hitT)))
				} else {
					cs.Exits = append(cs.Exits, p1)
				}
			}
		}

		cs.Indices = append(cs.Indices, SectionIndices{
			Center:   float32(center),
			Entrance: entranceIdx,
			Exit:     exitIdx,
			LineID:   int32(ti),
		})
	}
	return cs
}

// SphereTemplate is a unit sphere mesh reused for every cross-section
// sphere instance; positions double as normals.
type SphereTemplate struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
}

// BuildSphereTemplate triangulates a unit lat/long sphere with the given
// numbers of zenith and azimuth subdivisions.
func BuildSphereTemplate(latSubdivisions, lonSubdivisions int) *SphereTemplate {
	mesh := &SphereTemplate{}
	for lat := 0; lat <= latSubdivisions; lat++ {
		phi := math32.Pi + math32.Pi*(1-float32(lat)/float32(latSubdivisions))
		for lon := 0; lon < lonSubdivisions; lon++ {
			theta := -2 * math32.Pi * float32(lon) / float32(lonSubdivisions)
			pt := math.Vec3{
				X: math32.Cos(theta) * math32.Sin(phi),
				Y: math32.Sin(theta) * math32.Sin(phi),
				Z: math32.Cos(phi),
			}
			mesh.Positions = append(mesh.Positions, pt)
			mesh.Normals = append(mesh.Normals, pt)
		}
	}
	for lat := 0; lat < latSubdivisions; lat++ {
		for lon := 0; lon < lonSubdivisions; lon++ {
			current := uint32(lat * lonSubdivisions)
			next := uint32((lat + 1) * lonSubdivisions)
			jj := uint32(lon % lonSubdivisions)
			jNext := uint32((lon + 1) % lonSubdivisions)

			mesh.Indices = append(mesh.Indices,
				current+jj, current+jNext, next+jj,
				current+jNext, next+jNext, next+jj)
		}
	}
	return mesh
}
