package trajectory

import "github.com/chrismile/trajvis/pkg/math"

const (
	// degenerateEps is the minimum tangent length; shorter segments are
	// treated as duplicate points and dropped.
	degenerateEps = 1e-4

	// parallelEps rejects helper axes that are near-parallel to the tangent.
	parallelEps = 0.01
)

var (
	worldX = math.Vec3{X: 1}
	worldY = math.Vec3{Y: 1}
	worldZ = math.Vec3{Z: 1}
)

// Frame is a right-handed orthonormal frame at one polyline point.
// The binormal is Tangent x Normal.
type Frame struct {
	Position math.Vec3
	Tangent  math.Vec3
	Normal   math.Vec3
}

// Binormal returns the third frame axis.
func (f Frame) Binormal() math.Vec3 {
	return f.Tangent.Cross(f.Normal)
}

// frameAt computes the frame at index i of centers, estimating the tangent
// by central difference (one-sided at the ends). lastNormal keeps the
// normal rolling continuously from the previous point; pass worldX for the
// first point. Returns false for a degenerate point (near-zero tangent),
// which callers must drop entirely.
func frameAt(centers []math.Vec3, i int, lastNormal math.Vec3) (Frame, bool) {
	n := len(centers)
	var tangent math.Vec3
	switch {
	case i == 0:
		tangent = centers[i+1].Sub(centers[i])
	case i == n-1:
		tangent = centers[i].Sub(centers[i-1])
	default:
		tangent = centers[i+1].Sub(centers[i-1])
	}
	if tangent.Length() < degenerateEps {
		return Frame{}, false
	}
	tangent = tangent.Normalize()

	helperAxis := lastNormal
	if helperAxis.Cross(tangent).Length() < parallelEps {
		// Tangent aligned with the previous normal.
		helperAxis = worldY
		if helperAxis.Cross(tangent).Length() < parallelEps {
			helperAxis = worldZ
		}
	}
	// Gram-Schmidt of the helper axis against the tangent.
	normal := helperAxis.Sub(tangent.Scale(helperAxis.Dot(tangent))).Normalize()

	return Frame{Position: centers[i], Tangent: tangent, Normal: normal}, true
}

// BuildFrames computes consistently oriented frames along a polyline.
// Degenerate points are dropped from the output; kept holds the index
// into centers for every surviving frame. Inputs with fewer than two
// points yield no frames.
func BuildFrames(centers []math.Vec3) (frames []Frame, kept []int) {
	if len(centers) < 2 {
		return nil, nil
	}
	lastNormal := worldX
	for i := range centers {
		frame, ok := frameAt(centers, i, lastNormal)
		if !ok {
			continue
		}
		lastNormal = frame.Normal
		frames = append(frames, frame)
		kept = append(kept, i)
	}
	return frames, kept
}
