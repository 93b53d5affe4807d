package trajectory

import (
	"testing"

	"github.com/chrismile/trajvis/pkg/math"
)

// heightTrajectory builds a trajectory whose points only vary in height.
func heightTrajectory(lineID int32, heights ...float32) Trajectory {
	points := make([]math.Vec3, len(heights))
	for i, h := range heights {
		points[i] = math.Vec3{X: float32(i), Z: h}
	}
	return lineTrajectory(lineID, points...)
}

func TestLocalTimeStepByTimestepClamps(t *testing.T) {
	ds := singleLineDataset(t,
		math.Vec3{X: 0}, math.Vec3{X: 1}, math.Vec3{X: 2}, math.Vec3{X: 3}, math.Vec3{X: 4})
	sync := NewSyncState(nil, 0, AscentAlignLocal)

	tests := []struct {
		cursor int
		want   int
	}{
		{-3, 0},
		{0, 0},
		{2, 2},
		{4, 4},
		{99, 4},
	}
	for _, tt := range tests {
		if got := sync.LocalTimeStep(ds, 0, tt.cursor, ByTimestep); got != tt.want {
			t.Errorf("LocalTimeStep(cursor=%d) = %d, want %d", tt.cursor, got, tt.want)
		}
	}
}

func TestLocalTimeStepNilState(t *testing.T) {
	ds := singleLineDataset(t, math.Vec3{X: 0}, math.Vec3{X: 1}, math.Vec3{X: 2})

	var sync *SyncState
	if got := sync.LocalTimeStep(ds, 0, 1, ByTimestep); got != 1 {
		t.Errorf("nil state LocalTimeStep = %d, want 1", got)
	}
	if got := sync.LocalTimeStep(ds, 0, 5, ByAscentTime); got != 2 {
		t.Errorf("nil state ascent LocalTimeStep = %d, want 2", got)
	}
}

func TestLocalTimeStepByAscentTime(t *testing.T) {
	trajs := []Trajectory{
		heightTrajectory(0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		heightTrajectory(1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
	}
	ds, err := NewDataset(trajs, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}

	local := NewSyncState([]int{2, 5}, 0, AscentAlignLocal)
	if got := local.LocalTimeStep(ds, 0, 3, ByAscentTime); got != 5 {
		t.Errorf("local alignment trajectory 0 = %d, want 5", got)
	}
	if got := local.LocalTimeStep(ds, 1, 3, ByAscentTime); got != 8 {
		t.Errorf("local alignment trajectory 1 = %d, want 8", got)
	}

	global := NewSyncState([]int{2, 5}, 0, AscentAlignGlobal)
	if global.MaxAscentOffset != 5 {
		t.Fatalf("max ascent offset = %d, want 5", global.MaxAscentOffset)
	}
	// cursor - maxOffset + offset, clamped at zero.
	if got := global.LocalTimeStep(ds, 0, 3, ByAscentTime); got != 0 {
		t.Errorf("global alignment trajectory 0 = %d, want 0", got)
	}
	if got := global.LocalTimeStep(ds, 1, 3, ByAscentTime); got != 3 {
		t.Errorf("global alignment trajectory 1 = %d, want 3", got)
	}
}

func TestLocalTimeStepByHeight(t *testing.T) {
	// The reference ascends to 20 and descends; the target does the same
	// with a higher peak and more samples.
	trajs := []Trajectory{
		heightTrajectory(0, 0, 10, 20, 10, 0),
		heightTrajectory(1, 0, 5, 15, 25, 15, 5, 0),
	}
	ds, err := NewDataset(trajs, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	sync := NewSyncState(nil, 0, AscentAlignLocal)

	// Reference height at cursor 2 is 20; the target crosses 20 between
	// samples 2 (height 15) and 3 (height 25), and the midpoint rounds
	// to the endpoint at the lower height.
	if got := sync.LocalTimeStep(ds, 1, 2, ByHeight); got != 2 {
		t.Errorf("ByHeight cursor 2 = %d, want 2", got)
	}

	// Reference height at cursor 1 is 10; the crossing right of the
	// start lies between samples 1 (height 5) and 2 (height 15).
	if got := sync.LocalTimeStep(ds, 1, 1, ByHeight); got != 1 {
		t.Errorf("ByHeight cursor 1 = %d, want 1", got)
	}

	// The reference maps onto itself.
	for cursor := 0; cursor < 5; cursor++ {
		if got := sync.LocalTimeStep(ds, 0, cursor, ByHeight); got != cursor {
			t.Errorf("reference ByHeight cursor %d = %d", cursor, got)
		}
	}
}

func TestLocalTimeStepByHeightTieGoesRight(t *testing.T) {
	// Starting at the peak, both neighbors cross the target height one
	// sample away; the scan forward in time wins.
	trajs := []Trajectory{
		heightTrajectory(0, 15, 15, 15, 15, 15),
		heightTrajectory(1, 0, 10, 20, 10, 0),
	}
	ds, err := NewDataset(trajs, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	sync := NewSyncState(nil, 0, AscentAlignLocal)

	if got := sync.LocalTimeStep(ds, 1, 2, ByHeight); got != 3 {
		t.Errorf("ByHeight tie = %d, want 3", got)
	}
}

func TestLocalTimeStepByHeightUnreachable(t *testing.T) {
	// The target never reaches the reference height; the shifted cursor
	// position is kept.
	trajs := []Trajectory{
		heightTrajectory(0, 100, 100, 100),
		heightTrajectory(1, 0, 1, 2),
	}
	ds, err := NewDataset(trajs, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	sync := NewSyncState(nil, 0, AscentAlignLocal)

	if got := sync.LocalTimeStep(ds, 1, 1, ByHeight); got != 1 {
		t.Errorf("unreachable height = %d, want 1", got)
	}
}

func TestLocalTimeStepByHeightEmptyReference(t *testing.T) {
	// An empty reference trajectory leaves no profile to match; the
	// shifted cursor position is kept, as for an unreachable height.
	trajs := []Trajectory{
		heightTrajectory(0),
		heightTrajectory(1, 0, 10, 20, 10, 0),
	}
	ds, err := NewDataset(trajs, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	sync := NewSyncState([]int{0, 1}, 0, AscentAlignLocal)

	tests := []struct {
		cursor int
		want   int
	}{
		{0, 1},
		{2, 3},
		{9, 4},
	}
	for _, tt := range tests {
		if got := sync.LocalTimeStep(ds, 1, tt.cursor, ByHeight); got != tt.want {
			t.Errorf("ByHeight(cursor=%d) with empty reference = %d, want %d", tt.cursor, got, tt.want)
		}
	}
	if got := sync.LocalTimeStep(ds, 0, 2, ByHeight); got != 0 {
		t.Errorf("ByHeight on the empty trajectory itself = %d, want 0", got)
	}
}

func TestSyncModeString(t *testing.T) {
	tests := []struct {
		mode SyncMode
		want string
	}{
		{ByTimestep, "timestep"},
		{ByAscentTime, "ascent"},
		{ByHeight, "height"},
		{SyncMode(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("SyncMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
