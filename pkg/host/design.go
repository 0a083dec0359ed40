package host

import (
	"fmt"
	"math"
)

// FaceType classifies the surface geometry of a body face.
type FaceType string

const (
	FacePlane    FaceType = "Plane"
	FaceCylinder FaceType = "Cylinder"
	FaceCone     FaceType = "Cone"
	FaceSphere   FaceType = "Sphere"
	FaceTorus    FaceType = "Torus"
	FaceNURBS    FaceType = "NURBS"
)

// Point is a 3D position in centimeters. Sketch geometry uses Z=0.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoundingBox is an axis-aligned extent in centimeters.
type BoundingBox struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Size returns the box extents per axis.
func (b BoundingBox) Size() [3]float64 {
	return [3]float64{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z}
}

// Face is one bounded surface of a body. CenterZ is the Z coordinate of the
// face's bounding-box center, used to resolve "use_top_face".
type Face struct {
	Type    FaceType `json:"type"`
	CenterZ float64  `json:"center_z"`
}

// CircularEdge records a circular or elliptical body edge with its measured
// radii. Radii are centimeters like everything else in the model.
type CircularEdge struct {
	Type          string  `json:"type"` // "circle" or "ellipse"
	Center        Point   `json:"center"`
	RadiusCM      float64 `json:"radius_cm,omitempty"`
	MajorRadiusCM float64 `json:"major_radius_cm,omitempty"`
	MinorRadiusCM float64 `json:"minor_radius_cm,omitempty"`
}

// Body is a solid (or surface) with bookkeeping metrics. Feature handlers
// compute volumes arithmetically for the shapes they create; nothing here
// evaluates b-rep topology.
type Body struct {
	Name          string
	Solid         bool
	VolumeCM3     float64
	AreaCM2       float64
	Faces         []Face
	EdgeCount     int
	VertexCount   int
	Box           BoundingBox
	CircularEdges []CircularEdge
}

// TopFace returns the index of the planar face with the highest center Z,
// or -1 when the body has no planar faces.
func (b *Body) TopFace() int {
	top := -1
	maxZ := 0.0
	for i, f := range b.Faces {
		if f.Type != FacePlane {
			continue
		}
		if top == -1 || f.CenterZ > maxZ {
			top = i
			maxZ = f.CenterZ
		}
	}
	return top
}

// Line is a sketch line segment.
type Line struct {
	Start        Point `json:"start"`
	End          Point `json:"end"`
	Construction bool  `json:"is_construction"`
}

// Length returns the segment length.
func (l Line) Length() float64 {
	dx, dy, dz := l.End.X-l.Start.X, l.End.Y-l.Start.Y, l.End.Z-l.Start.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Circle is a sketch circle.
type Circle struct {
	Center       Point   `json:"center"`
	Radius       float64 `json:"radius"`
	Construction bool    `json:"is_construction"`
}

// Arc is a sketch arc.
type Arc struct {
	Center        Point   `json:"center"`
	Radius        float64 `json:"radius"`
	Start         Point   `json:"start_point"`
	End           Point   `json:"end_point"`
	StartAngleDeg float64 `json:"start_angle_deg"`
	EndAngleDeg   float64 `json:"end_angle_deg"`
	Construction  bool    `json:"is_construction"`
}

// Constraint is a geometric constraint recorded on a sketch.
type Constraint struct {
	Type      string `json:"type"`
	LineIndex int    `json:"line_index"`
	Point     string `json:"point"`
}

// Sketch is a 2D drawing on a plane or body face. Profiles counts the
// closed regions (rectangles and circles contribute one each).
type Sketch struct {
	Name        string
	Plane       string
	Visible     bool
	Lines       []Line
	Circles     []Circle
	Arcs        []Arc
	Profiles    int
	Constraints []Constraint
}

// CurveCount returns the total number of curves in the sketch.
func (s *Sketch) CurveCount() int {
	return len(s.Lines) + len(s.Circles) + len(s.Arcs)
}

// HoleDetail carries the dimensions of a hole feature. All in centimeters.
type HoleDetail struct {
	Kind                  string  `json:"kind"` // "simple", "counterbore", "countersink"
	DiameterCM            float64 `json:"diameter_cm"`
	DepthCM               float64 `json:"depth_cm"`
	CounterboreDiameterCM float64 `json:"counterbore_diameter_cm,omitempty"`
	CounterboreDepthCM    float64 `json:"counterbore_depth_cm,omitempty"`
	CountersinkAngleDeg   float64 `json:"countersink_angle_deg,omitempty"`
}

// Feature is one timeline entry. BodyIndex is the global index of the body
// the feature produced or modified, -1 when not applicable.
type Feature struct {
	Name       string
	Type       string // "Extrude", "Fillet", "Hole", "Loft"
	Suppressed bool
	Valid      bool
	BodyIndex  int
	Hole       *HoleDetail
}

// ConstructionPlane is an entry in the design's plane table. The three base
// planes occupy indices 0..2; created planes are appended after them.
type ConstructionPlane struct {
	Name     string
	Base     string  // base plane the definition references, "" for the defaults
	OffsetCM float64 // offset-plane definition
	AngleDeg float64 // angle-plane definition
	Visible  bool
}

// Occurrence is a placed component instance.
type Occurrence struct {
	Name        string
	Component   *Component
	Grounded    bool
	Visible     bool
	Translation [3]float64 // cm
	Rotation    [3]float64 // deg
}

// Joint connects two occurrences. AsBuilt joints are created from current
// positions; regular joints carry per-occurrence geometry specs.
type Joint struct {
	Name          string
	Type          string // "Rigid", "Revolute", "Slider", "Cylindrical", "Ball", "Planar", "PinSlot"
	OccurrenceOne string // occurrence name, "Ground" when absent
	OccurrenceTwo string
	Direction     string // "x", "y", "z" for motion joints
	AsBuilt       bool
	Suppressed    bool
}

// Component is one node of the assembly tree: its own bodies, sketches and
// features plus child occurrences.
type Component struct {
	Name        string
	Bodies      []*Body
	Sketches    []*Sketch
	Features    []*Feature
	Occurrences []*Occurrence
}

// Parameter is a named dimension. Value is the resolved magnitude in the
// database unit (centimeters for lengths, degrees for angles).
type Parameter struct {
	Name       string
	Expression string
	Value      float64
	Unit       string
	Comment    string
	Role       string // model parameters only
	CreatedBy  string // model parameters only
}

// Design is the in-memory parametric document the bridge drives. It is
// confined to the main loop goroutine and carries no locks.
type Design struct {
	Name        string
	Root        *Component
	UserParams  []*Parameter
	ModelParams []*Parameter
	Planes      []*ConstructionPlane
	Joints      []*Joint

	active *Component

	sketchSeq    int
	bodySeq      int
	featureSeq   int
	componentSeq int
	planeSeq     int
	jointSeq     int
}

// NewDesign creates an empty design with the three base construction planes
// and the root component active.
func NewDesign(name string) *Design {
	root := &Component{Name: name}
	return &Design{
		Name: name,
		Root: root,
		Planes: []*ConstructionPlane{
			{Name: "XY", Visible: true},
			{Name: "XZ", Visible: true},
			{Name: "YZ", Visible: true},
		},
		active: root,
	}
}

// ActiveComponent returns the component currently being edited.
func (d *Design) ActiveComponent() *Component {
	if d.active == nil {
		return d.Root
	}
	return d.active
}

// ActivateComponent switches the edit target. Sketches, bodies and features
// created afterwards land in this component.
func (d *Design) ActivateComponent(c *Component) {
	d.active = c
}

// Components returns every component in the design, root first, children in
// depth-first occurrence order. Global entity indices follow this order.
func (d *Design) Components() []*Component {
	comps := []*Component{d.Root}
	var walk func(occs []*Occurrence)
	walk = func(occs []*Occurrence) {
		for _, occ := range occs {
			comps = append(comps, occ.Component)
			walk(occ.Component.Occurrences)
		}
	}
	walk(d.Root.Occurrences)
	return comps
}

// SketchRef is a sketch with its global index and owning component.
type SketchRef struct {
	Sketch    *Sketch
	Index     int
	Component *Component
}

// AllSketches returns every sketch with global indexing across components.
func (d *Design) AllSketches() []SketchRef {
	var refs []SketchRef
	for _, comp := range d.Components() {
		for _, s := range comp.Sketches {
			refs = append(refs, SketchRef{Sketch: s, Index: len(refs), Component: comp})
		}
	}
	return refs
}

// BodyRef is a body with its global index and owning component.
type BodyRef struct {
	Body      *Body
	Index     int
	Component *Component
}

// AllBodies returns every body with global indexing across components.
func (d *Design) AllBodies() []BodyRef {
	var refs []BodyRef
	for _, comp := range d.Components() {
		for _, b := range comp.Bodies {
			refs = append(refs, BodyRef{Body: b, Index: len(refs), Component: comp})
		}
	}
	return refs
}

// FeatureRef is a feature with its global index and owning component.
type FeatureRef struct {
	Feature   *Feature
	Index     int
	Component *Component
}

// AllFeatures returns every feature with global indexing across components.
func (d *Design) AllFeatures() []FeatureRef {
	var refs []FeatureRef
	for _, comp := range d.Components() {
		for _, f := range comp.Features {
			refs = append(refs, FeatureRef{Feature: f, Index: len(refs), Component: comp})
		}
	}
	return refs
}

// AllOccurrences flattens the occurrence tree in depth-first order.
func (d *Design) AllOccurrences() []*Occurrence {
	var occs []*Occurrence
	var walk func(list []*Occurrence)
	walk = func(list []*Occurrence) {
		for _, occ := range list {
			occs = append(occs, occ)
			walk(occ.Component.Occurrences)
		}
	}
	walk(d.Root.Occurrences)
	return occs
}

// UserParameter returns the user parameter with the given name, or nil.
func (d *Design) UserParameter(name string) *Parameter {
	for _, p := range d.UserParams {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// NextSketchName mints the host-style default name for a new sketch.
func (d *Design) NextSketchName() string {
	d.sketchSeq++
	return fmt.Sprintf("Sketch%d", d.sketchSeq)
}

// NextBodyName mints the default name for a new body.
func (d *Design) NextBodyName() string {
	d.bodySeq++
	return fmt.Sprintf("Body%d", d.bodySeq)
}

// NextFeatureName mints the default name for a new feature of a type.
func (d *Design) NextFeatureName(featureType string) string {
	d.featureSeq++
	return fmt.Sprintf("%s%d", featureType, d.featureSeq)
}

// NextComponentName mints the default name for a new component.
func (d *Design) NextComponentName() string {
	d.componentSeq++
	return fmt.Sprintf("Component%d", d.componentSeq)
}

// NextPlaneName mints the default name for a created construction plane.
func (d *Design) NextPlaneName() string {
	d.planeSeq++
	return fmt.Sprintf("Plane%d", d.planeSeq)
}

// NextJointName mints the default name for a new joint.
func (d *Design) NextJointName() string {
	d.jointSeq++
	return fmt.Sprintf("Joint%d", d.jointSeq)
}
