// Package scene owns the per-dataset render state: generated geometry,
// backend buffer handles, and the dirty checks that keep per-frame
// recomputation to a minimum.
package scene

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chrismile/trajvis/internal/engine/render"
	"github.com/chrismile/trajvis/internal/engine/trajectory"
	"github.com/chrismile/trajvis/internal/logger"
)

// TubeRenderData holds the backend handles of the tube geometry. For
// line-list output the ring expansion happens backend-side and the
// PointData handle replaces the expanded vertex streams.
type TubeRenderData struct {
	Indices    render.Handle
	Positions  render.Handle
	Normals    render.Handle
	Tangents   render.Handle
	LineIDs    render.Handle
	ElementIDs render.Handle
	PointData  render.Handle // line-list variant only
}

// CrossSectionRenderData holds the per-frame cross-section buffers plus
// the template sphere uploaded once.
type CrossSectionRenderData struct {
	NumSpheres       int
	Centers          render.Handle
	Entrances        render.Handle
	Exits            render.Handle
	SectionIndices   render.Handle
	TemplateIndices  render.Handle
	TemplateVertices render.Handle
	TemplateNormals  render.Handle
}

// RollsRenderData holds the per-frame roll buffers.
type RollsRenderData struct {
	Indices       render.Handle
	Positions     render.Handle
	Normals       render.Handle
	Tangents      render.Handle
	RollPositions render.Handle
	LineIDs       render.Handle
	PointIndices  render.Handle
	VariableIDs   render.Handle
}

type sphereKey struct {
	mode   trajectory.SyncMode
	cursor int
	ref    int
	radius float32
}

type rollsKey struct {
	mode         trajectory.SyncMode
	cursor       int
	ref          int
	tubeRadius   float32
	rollsRadius  float32
	rollsWidth   float32
	mapThickness bool
	subdivisions int
	vars         string
}

// variableKey flattens a variable-index list into a comparable key part.
func variableKey(vars []int) string {
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Params fixes the geometry configuration of one TrajectoryRenderer.
type Params struct {
	TubeRadius      float32
	Subdivisions    int
	UseLineMesh     bool // emit centerline line lists for GPU-side extrusion
	SphereLatitude  int  // template sphere zenith subdivisions
	SphereLongitude int  // template sphere azimuth subdivisions
}

// TrajectoryRenderer generates and caches all render data for one
// dataset. Geometry is built once; per-frame artifacts (cross sections,
// rolls, selection) are recomputed only when their request key changes.
// It is meant for a single-threaded, frame-synchronous call pattern.
type TrajectoryRenderer struct {
	ds      *trajectory.Dataset
	sync    *trajectory.SyncState
	backend render.Backend
	params  Params

	tubeMesh *trajectory.TubeMesh
	lineMesh *trajectory.LineMesh
	mapper   *trajectory.SelectionMapper
	tubeData *TubeRenderData

	sphereGuard           trajectory.Guard[sphereKey]
	rollsGuard            trajectory.Guard[rollsKey]
	sphereData            CrossSectionRenderData
	rollsData             RollsRenderData
	hasRolls              bool
	useFiltering          bool
	selection             *trajectory.DrawSelection
	filteringChangedCross bool
	filteringChangedRolls bool
}

// NewTrajectoryRenderer wires a dataset to a backend.
func NewTrajectoryRenderer(ds *trajectory.Dataset, syncState *trajectory.SyncState, backend render.Backend, params Params) *TrajectoryRenderer {
	return &TrajectoryRenderer{
		ds:      ds,
		sync:    syncState,
		backend: backend,
		params:  params,
	}
}

// TubeRenderData builds the tube geometry on first use, uploads every
// array exactly once, and returns the handles on subsequent calls.
func (r *TrajectoryRenderer) TubeRenderData() *TubeRenderData {
	if r.tubeData != nil {
		return r.tubeData
	}

	data := &TubeRenderData{}
	if r.params.UseLineMesh {
		mesh := trajectory.BuildLineMesh(r.ds)
		r.lineMesh = mesh
		r.mapper = trajectory.NewLineSelectionMapper(mesh)
		data.Indices = r.backend.CreateIndexBuffer("trajectoryLineIndices", mesh.Indices)
		data.PointData = r.backend.CreateStructuredBuffer("trajectoryLinePoints", mesh.Points)
		logger.Debug("built trajectory line mesh",
			zap.Int("points", len(mesh.Points)),
			zap.Int("indices", len(mesh.Indices)))
	} else {
		mesh := trajectory.BuildTubeMesh(r.ds, trajectory.TubeParams{
			Radius:       r.params.TubeRadius,
			Subdivisions: r.params.Subdivisions,
		})
		r.tubeMesh = mesh
		r.mapper = trajectory.NewTubeSelectionMapper(mesh)
		data.Indices = r.backend.CreateIndexBuffer("trajectoryTubeIndices", mesh.Indices)
		data.Positions = r.backend.CreateVertexBuffer("trajectoryTubePositions", mesh.Positions)
		data.Normals = r.backend.CreateVertexBuffer("trajectoryTubeNormals", mesh.Normals)
		data.Tangents = r.backend.CreateVertexBuffer("trajectoryTubeTangents", mesh.Tangents)
		data.LineIDs = r.backend.CreateVertexBuffer("trajectoryTubeLineIDs", mesh.LineIDs)
		data.ElementIDs = r.backend.CreateVertexBuffer("trajectoryTubeElementIDs", mesh.ElementIDs)
		logger.Debug("built trajectory tube mesh",
			zap.Int("vertices", len(mesh.Positions)),
			zap.Int("indices", len(mesh.Indices)))
	}
	r.tubeData = data
	return data
}

// TubeMesh exposes the triangulated geometry, e.g. for export or for a
// bounding-volume-hierarchy picking backend.
func (r *TrajectoryRenderer) TubeMesh() *trajectory.TubeMesh {
	r.TubeRenderData()
	return r.tubeMesh
}

// UpdateSelection maps a logical selection onto draw parameters for the
// generated index buffer. A change in what is filtered out forces the
// next cross-section and rolls updates to recompute.
func (r *TrajectoryRenderer) UpdateSelection(sel trajectory.SelectionInput) *trajectory.DrawSelection {
	if r.mapper == nil {
		r.TubeRenderData()
	}
	r.selection = r.mapper.Map(sel)
	if r.selection.UsesFiltering != r.useFiltering || r.selection.UsesFiltering {
		r.filteringChangedCross = true
		r.filteringChangedRolls = true
	}
	r.useFiltering = r.selection.UsesFiltering
	return r.selection
}

// Selection returns the most recently mapped selection, or nil.
func (r *TrajectoryRenderer) Selection() *trajectory.DrawSelection {
	return r.selection
}

func (r *TrajectoryRenderer) selectedMask() []bool {
	if !r.useFiltering || r.selection == nil {
		return nil
	}
	return r.selection.Included
}

// UpdateCrossSections recomputes the cross-section spheres when the
// request parameters changed since the last call. Returns true when new
// data was uploaded.
func (r *TrajectoryRenderer) UpdateCrossSections(mode trajectory.SyncMode, cursor int, sphereRadius float32) bool {
	key := sphereKey{mode: mode, cursor: cursor, ref: r.referenceTrajectory(), radius: sphereRadius}
	if !r.sphereGuard.Changed(key) && !(r.useFiltering && r.filteringChangedCross) {
		return false
	}
	r.filteringChangedCross = false

	r.backend.Release(r.sphereData.Centers)
	r.backend.Release(r.sphereData.Entrances)
	r.backend.Release(r.sphereData.Exits)
	r.backend.Release(r.sphereData.SectionIndices)

	cs := trajectory.ComputeCrossSections(r.ds, r.sync, mode, cursor, sphereRadius, r.selectedMask())
	r.sphereData.NumSpheres = len(cs.Centers)
	r.sphereData.Centers = r.backend.CreateStructuredBuffer("crossSectionCenters", cs.Centers)
	r.sphereData.Entrances = r.backend.CreateStructuredBuffer("crossSectionEntrances", cs.Entrances)
	r.sphereData.Exits = r.backend.CreateStructuredBuffer("crossSectionExits", cs.Exits)
	r.sphereData.SectionIndices = r.backend.CreateStructuredBuffer("crossSectionIndices", cs.Indices)

	if r.sphereData.TemplateIndices == 0 {
		template := trajectory.BuildSphereTemplate(r.params.SphereLatitude, r.params.SphereLongitude)
		r.sphereData.TemplateIndices = r.backend.CreateIndexBuffer("crossSectionSphereIndices", template.Indices)
		r.sphereData.TemplateVertices = r.backend.CreateVertexBuffer("crossSectionSphereVertices", template.Positions)
		r.sphereData.TemplateNormals = r.backend.CreateVertexBuffer("crossSectionSphereNormals", template.Normals)
	}
	return true
}

// CrossSectionRenderData returns the current cross-section handles.
func (r *TrajectoryRenderer) CrossSectionRenderData() *CrossSectionRenderData {
	return &r.sphereData
}

// UpdateRolls recomputes the roll geometry when the request parameters
// changed. With no variables selected the previous roll state is
// released and nothing is emitted.
func (r *TrajectoryRenderer) UpdateRolls(mode trajectory.SyncMode, cursor int, p trajectory.RollsParams) bool {
	tubeRadius := float32(0)
	if p.MapThickness {
		tubeRadius = p.TubeRadius
	}
	key := rollsKey{
		mode:         mode,
		cursor:       cursor,
		ref:          r.referenceTrajectory(),
		tubeRadius:   tubeRadius,
		rollsRadius:  p.RollsRadius,
		rollsWidth:   p.RollsWidth,
		mapThickness: p.MapThickness,
		subdivisions: p.Subdivisions,
		vars:         variableKey(p.Variables),
	}
	if !r.rollsGuard.Changed(key) && !(r.useFiltering && r.filteringChangedRolls) {
		return false
	}
	r.filteringChangedRolls = false

	r.releaseRolls()

	mesh := trajectory.BuildRollsMesh(r.ds, r.sync, mode, cursor, p)
	if mesh == nil {
		return true
	}
	r.rollsData = RollsRenderData{
		Indices:       r.backend.CreateIndexBuffer("rollIndices", mesh.Indices),
		Positions:     r.backend.CreateVertexBuffer("rollPositions", mesh.Positions),
		Normals:       r.backend.CreateVertexBuffer("rollNormals", mesh.Normals),
		Tangents:      r.backend.CreateVertexBuffer("rollTangents", mesh.Tangents),
		RollPositions: r.backend.CreateVertexBuffer("rollParamPositions", mesh.RollPositions),
		LineIDs:       r.backend.CreateVertexBuffer("rollLineIDs", mesh.LineIDs),
		PointIndices:  r.backend.CreateVertexBuffer("rollPointIndices", mesh.PointIndices),
		VariableIDs:   r.backend.CreateVertexBuffer("rollVariableIDs", mesh.VariableIDs),
	}
	r.hasRolls = true
	return true
}

// RollsRenderData returns the current roll handles and whether any roll
// geometry is live.
func (r *TrajectoryRenderer) RollsRenderData() (*RollsRenderData, bool) {
	return &r.rollsData, r.hasRolls
}

func (r *TrajectoryRenderer) releaseRolls() {
	if !r.hasRolls {
		return
	}
	r.backend.Release(r.rollsData.Indices)
	r.backend.Release(r.rollsData.Positions)
	r.backend.Release(r.rollsData.Normals)
	r.backend.Release(r.rollsData.Tangents)
	r.backend.Release(r.rollsData.RollPositions)
	r.backend.Release(r.rollsData.LineIDs)
	r.backend.Release(r.rollsData.PointIndices)
	r.backend.Release(r.rollsData.VariableIDs)
	r.rollsData = RollsRenderData{}
	r.hasRolls = false
}

func (r *TrajectoryRenderer) referenceTrajectory() int {
	if r.sync == nil {
		return 0
	}
	return r.sync.ReferenceTrajectory
}

// Release frees every live backend buffer.
func (r *TrajectoryRenderer) Release() {
	if r.tubeData != nil {
		r.backend.Release(r.tubeData.Indices)
		r.backend.Release(r.tubeData.Positions)
		r.backend.Release(r.tubeData.Normals)
		r.backend.Release(r.tubeData.Tangents)
		r.backend.Release(r.tubeData.LineIDs)
		r.backend.Release(r.tubeData.ElementIDs)
		r.backend.Release(r.tubeData.PointData)
		r.tubeData = nil
	}
	r.backend.Release(r.sphereData.Centers)
	r.backend.Release(r.sphereData.Entrances)
	r.backend.Release(r.sphereData.Exits)
	r.backend.Release(r.sphereData.SectionIndices)
	r.backend.Release(r.sphereData.TemplateIndices)
	r.backend.Release(r.sphereData.TemplateVertices)
	r.backend.Release(r.sphereData.TemplateNormals)
	r.sphereData = CrossSectionRenderData{}
	r.releaseRolls()
}
