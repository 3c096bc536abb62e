package aspen

// Element is a shape element of the source document. Elements are owned by
// the geometry source; path instances hold weak references into them.
// Attributes are live: mutating Attrs between frames changes the resolved
// style on the next frame.
type Element struct {
	// Name is the element tag name (e.g. "path", "rect", "circle").
	Name string
	// ID is the value of the element's id attribute, or "".
	ID string
	// Attrs holds the element's attributes, including presentation
	// attributes (fill, stroke, ...) and the raw style attribute.
	Attrs map[string]string
	// Inherited holds property values resolved from enclosing container
	// elements. They rank below the element's own attributes.
	Inherited map[string]string
}

// Attr returns the named attribute value, or "" if absent.
func (e *Element) Attr(name string) string {
	if e == nil || e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// InheritedAttr returns the value inherited from enclosing containers for
// the named property, or "" if none applies.
func (e *Element) InheritedAttr(name string) string {
	if e == nil || e.Inherited == nil {
		return ""
	}
	return e.Inherited[name]
}

// SetAttr sets the named attribute. Styles are re-resolved every frame, so
// the change is visible on the next draw.
func (e *Element) SetAttr(name, value string) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
}

// PathInstance is one renderable path extracted from the source document:
// an element reference plus which of its paints (fill or stroke) this
// instance renders. Instances are created during partitioning and are
// immutable until the next full reload. Their effective style is resolved
// lazily through a StyleProvider, never cached.
type PathInstance struct {
	Element *Element
	Kind    PaintKind
}

// MeshVertex is one triangulated vertex of a MeshCollection.
// Path is the 1-based path instance index (0 is the background sentinel),
// matching the attribute buffer slot layout.
type MeshVertex struct {
	X, Y float32
	Path uint16
}

// MeshCollection is the triangulated geometry for a whole document,
// produced by a geometry source. Once handed to a View it is exclusively
// owned by that view and attached to the device as a single unit; there is
// no incremental update.
type MeshCollection struct {
	Vertices []MeshVertex
	Indices  []uint16
	// Bounds is the document bounding box in document coordinates.
	Bounds Rect
	// PathCount is the number of path instances the vertices index into.
	PathCount int
}

// PartitionResult is the outcome of an asynchronous partition: either a
// mesh collection or an error, never both.
type PartitionResult struct {
	Meshes *MeshCollection
	Err    error
}

// GeometrySource converts raw document bytes into triangulated meshes and
// path instances. Implementations are used from a single goroutine except
// for the partition work itself, which runs on a background goroutine; the
// channel returned by Partition is the only handoff.
type GeometrySource interface {
	// LoadDocument parses raw document bytes and makes them the current
	// document. It replaces any previously loaded document.
	LoadDocument(data []byte) error

	// Partition triangulates the current document on a background
	// goroutine and delivers exactly one PartitionResult on the returned
	// channel. The document state is captured before Partition returns, so
	// a subsequent LoadDocument does not affect an in-flight partition.
	Partition() <-chan PartitionResult

	// Bounds returns the current document's bounding box. Valid after a
	// successful partition.
	Bounds() Rect

	// PathInstances returns the ordered path instances of the current
	// document. The order matches the Path indices in the mesh collection.
	// Valid after a successful partition.
	PathInstances() []PathInstance
}
