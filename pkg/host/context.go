package host

// Context is the capability object handed to every command handler. It
// abstracts access to the active design and centralizes default resolution:
// sketch_index defaults to the last-created sketch, body_index to 0.
//
// A Context belongs to the main loop goroutine. It is recreated whenever
// the active design is replaced so stale pointers cannot leak across a
// document swap; ReplaceDesign performs that swap in place.
type Context struct {
	design     *Design
	lastSketch int // global sketch index, -1 when none created yet
	lastBody   int // global body index, -1 when none created yet
}

// NewContext wraps a design in a fresh execution context.
func NewContext(d *Design) *Context {
	return &Context{design: d, lastSketch: -1, lastBody: -1}
}

// Design returns the active design.
func (c *Context) Design() *Design {
	return c.design
}

// Root returns the root component of the active design.
func (c *Context) Root() *Component {
	return c.design.Root
}

// ReplaceDesign swaps in a new active document and resets the last-created
// pointers, as if the context had been recreated.
func (c *Context) ReplaceDesign(d *Design) {
	c.design = d
	c.lastSketch = -1
	c.lastBody = -1
}

// LastSketchIndex returns the global index of the most recently created
// sketch, or -1.
func (c *Context) LastSketchIndex() int {
	return c.lastSketch
}

// LastBodyIndex returns the global index of the most recently created
// body, or -1.
func (c *Context) LastBodyIndex() int {
	return c.lastBody
}

// SketchAt resolves a sketch by global index. Index -1 means "the last
// sketch in the design", matching the documented fallback rule.
func (c *Context) SketchAt(index int) (*Sketch, *Component, error) {
	refs := c.design.AllSketches()
	if len(refs) == 0 {
		return nil, nil, NotFound("No sketches in design")
	}
	if index == -1 {
		index = len(refs) - 1
	}
	if index < 0 || index >= len(refs) {
		return nil, nil, invalidSketchIndex(index, len(refs))
	}
	return refs[index].Sketch, refs[index].Component, nil
}

// BodyAt resolves a body by global index.
func (c *Context) BodyAt(index int) (*Body, *Component, error) {
	refs := c.design.AllBodies()
	if index < 0 || index >= len(refs) {
		return nil, nil, invalidBodyIndex(index, len(refs))
	}
	return refs[index].Body, refs[index].Component, nil
}

// PlaneAt resolves a construction plane from the design's plane table.
func (c *Context) PlaneAt(index int) (*ConstructionPlane, error) {
	planes := c.design.Planes
	if index < 0 || index >= len(planes) {
		return nil, invalidPlaneIndex(index, len(planes))
	}
	return planes[index], nil
}

// PlaneNamed resolves one of the base construction planes by its lowercase
// name ("xy", "xz", "yz").
func (c *Context) PlaneNamed(name string) (*ConstructionPlane, error) {
	switch name {
	case "xy":
		return c.design.Planes[0], nil
	case "xz":
		return c.design.Planes[1], nil
	case "yz":
		return c.design.Planes[2], nil
	default:
		return nil, NotFound("Unknown plane: %s. Use 'xy', 'xz', or 'yz'.", name)
	}
}

// OccurrenceAt resolves an occurrence by its flattened index.
func (c *Context) OccurrenceAt(index int) (*Occurrence, error) {
	occs := c.design.AllOccurrences()
	if len(occs) == 0 {
		return nil, NotFound("No occurrences in design")
	}
	if index < 0 || index >= len(occs) {
		return nil, invalidOccurrenceIndex(index, len(occs))
	}
	return occs[index], nil
}

// OccurrenceNamed resolves an occurrence by occurrence or component name.
func (c *Context) OccurrenceNamed(name string) (*Occurrence, error) {
	occs := c.design.AllOccurrences()
	if len(occs) == 0 {
		return nil, NotFound("No occurrences in design")
	}
	for _, occ := range occs {
		if occ.Name == name || occ.Component.Name == name {
			return occ, nil
		}
	}
	return nil, NotFound("No occurrence found with name '%s'", name)
}

// AddSketch appends a sketch to the active component and advances the
// last-created pointer. Returns the sketch's global index.
func (c *Context) AddSketch(s *Sketch) int {
	comp := c.design.ActiveComponent()
	comp.Sketches = append(comp.Sketches, s)
	for _, ref := range c.design.AllSketches() {
		if ref.Sketch == s {
			c.lastSketch = ref.Index
			break
		}
	}
	return c.lastSketch
}

// AddBody appends a body to the active component and advances the
// last-created pointer. Returns the body's global index.
func (c *Context) AddBody(b *Body) int {
	comp := c.design.ActiveComponent()
	comp.Bodies = append(comp.Bodies, b)
	for _, ref := range c.design.AllBodies() {
		if ref.Body == b {
			c.lastBody = ref.Index
			break
		}
	}
	return c.lastBody
}

// AddFeature appends a feature to the active component. Returns the
// feature's global index.
func (c *Context) AddFeature(f *Feature) int {
	comp := c.design.ActiveComponent()
	comp.Features = append(comp.Features, f)
	index := -1
	for _, ref := range c.design.AllFeatures() {
		if ref.Feature == f {
			index = ref.Index
			break
		}
	}
	return index
}
