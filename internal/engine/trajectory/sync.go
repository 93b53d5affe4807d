package trajectory

// SyncMode selects how a global cursor time is mapped to a per-trajectory
// local time index.
type SyncMode int

const (
	// ByTimestep uses the cursor directly, clamped to the trajectory.
	ByTimestep SyncMode = iota
	// ByAscentTime shifts the cursor by the trajectory's ascent offset.
	ByAscentTime
	// ByHeight matches the reference trajectory's height at the cursor
	// against this trajectory's height profile.
	ByHeight
)

// String returns the mode name.
func (m SyncMode) String() string {
	switch m {
	case ByTimestep:
		return "timestep"
	case ByAscentTime:
		return "ascent"
	case ByHeight:
		return "height"
	}
	return "unknown"
}

// AscentAlignment picks the offset convention for ByAscentTime. Both
// conventions exist in the wild; AscentAlignLocal is the default.
type AscentAlignment int

const (
	// AscentAlignLocal computes cursor + offset[t].
	AscentAlignLocal AscentAlignment = iota
	// AscentAlignGlobal computes cursor - maxOffset + offset[t], so that
	// cursor 0 lines up with the earliest ascent in the ensemble.
	AscentAlignGlobal
)

// SyncState holds the precomputed per-trajectory alignment data shared by
// all synchronization calls.
type SyncState struct {
	AscentOffsets       []int
	MaxAscentOffset     int
	ReferenceTrajectory int
	Alignment           AscentAlignment
}

// NewSyncState builds a SyncState from per-trajectory ascent offsets.
func NewSyncState(ascentOffsets []int, referenceTrajectory int, alignment AscentAlignment) *SyncState {
	maxOffset := 0
	for _, off := range ascentOffsets {
		if off > maxOffset {
			maxOffset = off
		}
	}
	return &SyncState{
		AscentOffsets:       ascentOffsets,
		MaxAscentOffset:     maxOffset,
		ReferenceTrajectory: referenceTrajectory,
		Alignment:           alignment,
	}
}

func (s *SyncState) ascentOffset(trajectoryIndex int) int {
	if s == nil || trajectoryIndex < 0 || trajectoryIndex >= len(s.AscentOffsets) {
		return 0
	}
	return s.AscentOffsets[trajectoryIndex]
}

// LocalTimeStep maps the global cursor onto a local time index of the
// given trajectory, clamped into [0, n-1]. It is a pure function of its
// arguments and the precomputed state.
func (s *SyncState) LocalTimeStep(ds *Dataset, trajectoryIndex, cursor int, mode SyncMode) int {
	t := &ds.Trajectories[trajectoryIndex]
	n := len(t.Positions)
	if n == 0 {
		return 0
	}

	local := cursor
	switch mode {
	case ByAscentTime:
		local = cursor + s.ascentOffset(trajectoryIndex)
		if s != nil && s.Alignment == AscentAlignGlobal {
			local -= s.MaxAscentOffset
		}
	case ByHeight:
		local = s.matchHeight(ds, trajectoryIndex, cursor)
	}
	return clamp(local, 0, n-1)
}

// matchHeight finds the local index whose height is closest to the
// reference trajectory's height at the cursor. Starting from the
// ascent-shifted cursor, both directions are scanned for the nearest
// segment straddling the target height; within a crossing the endpoint
// with the closer height wins (ties go to the lower endpoint), and of
// the two directions the one fewer samples away wins.
func (s *SyncState) matchHeight(ds *Dataset, trajectoryIndex, cursor int) int {
	refIndex := 0
	if s != nil {
		refIndex = s.ReferenceTrajectory
	}
	refIndex = clamp(refIndex, 0, len(ds.Trajectories)-1)
	ref := &ds.Trajectories[refIndex]
	t := &ds.Trajectories[trajectoryIndex]
	n := len(t.Positions)

	start := cursor - s.ascentOffset(refIndex) + s.ascentOffset(trajectoryIndex)
	startClamped := clamp(start, 0, n-1)
	if len(ref.Positions) == 0 {
		// No reference profile to match against.
		return startClamped
	}
	refCursor := clamp(cursor, 0, len(ref.Positions)-1)
	targetHeight := ref.Positions[refCursor].Z
	heightStart := t.Positions[startClamped].Z

	const unreachable = int(^uint(0) >> 1)

	stepLeft := startClamped
	distanceLeft := unreachable
	heightNext := heightStart
	for i := startClamped - 1; i > 0; i-- {
		heightLast := heightNext
		heightNext = t.Positions[i].Z
		lower, upper := i, i+1
		heightMin, heightMax := heightNext, heightLast
		if heightLast < heightNext {
			lower, upper = i+1, i
			heightMin, heightMax = heightLast, heightNext
		}
		if heightMin <= targetHeight && heightMax >= targetHeight {
			if (targetHeight-heightMin)/(heightMax-heightMin) <= 0.5 {
				stepLeft = lower
			} else {
				stepLeft = upper
			}
			distanceLeft = startClamped - i
			break
		}
	}

	stepRight := startClamped
	distanceRight := unreachable
	heightNext = heightStart
	for i := startClamped + 1; i < n; i++ {
		heightLast := heightNext
		heightNext = t.Positions[i].Z
		lower, upper := i, i-1
		heightMin, heightMax := heightNext, heightLast
		if heightLast < heightNext {
			lower, upper = i-1, i
			heightMin, heightMax = heightLast, heightNext
		}
		if heightMin <= targetHeight && heightMax >= targetHeight {
			if (targetHeight-heightMin)/(heightMax-heightMin) <= 0.5 {
				stepRight = lower
			} else {
				stepRight = upper
			}
			distanceRight = i - startClamped
			break
		}
	}

	if distanceLeft < distanceRight {
		return stepLeft
	}
	return stepRight
}
