package sim

import (
	"github.com/google/uuid"
	"github.com/milk9111/robosim/physics"
	"github.com/milk9111/robosim/render"
)

// Object is a node of the simulated-object tree.
type Object interface {
	ID() string
	Label() string
	Update(dtMs float64)
	Body() *physics.Body
	Mesh() *render.Mesh
	Children() []Object
}

// Bodied is an object that needs a body created for it. The caller creates
// the body from BodySpec, attaches FixtureSpec and hands the body back with
// BindBody.
type Bodied interface {
	Object
	BodySpec() physics.BodySpec
	FixtureSpec() physics.FixtureSpec
	BindBody(body *physics.Body)
}

// Linker is an object that joins bodies in its subtree once they all exist.
type Linker interface {
	ConfigureFixtureLinks(world physics.JointFactory) error
}

// ObjectFixtureData is attached to solid fixtures so contact callbacks can
// find the object and the root object that owns it.
type ObjectFixtureData struct {
	ObjectID string
	OwnerID  string
	Label    string
}

// SimObject owns its children and mesh. It only references its body; the
// physics world owns that.
type SimObject struct {
	id       string
	label    string
	children []Object
	mesh     *render.Mesh
	body     *physics.Body
}

func NewSimObject(label string) *SimObject {
	return &SimObject{
		id:    uuid.NewString(),
		label: label,
	}
}

func (o *SimObject) ID() string {
	return o.id
}

func (o *SimObject) Label() string {
	return o.label
}

func (o *SimObject) Body() *physics.Body {
	return o.body
}

func (o *SimObject) BindBody(body *physics.Body) {
	o.body = body
}

func (o *SimObject) Mesh() *render.Mesh {
	return o.mesh
}

func (o *SimObject) SetMesh(mesh *render.Mesh) {
	o.mesh = mesh
}

func (o *SimObject) Children() []Object {
	return o.children
}

// AddChild appends child. Children are built before they are attached, so
// the tree cannot contain cycles.
func (o *SimObject) AddChild(child Object) {
	if child == nil {
		return
	}
	o.children = append(o.children, child)
}

// Update updates children in insertion order and then pulls the body
// transform into the mesh.
func (o *SimObject) Update(dtMs float64) {
	o.UpdateChildren(dtMs)
	o.SyncMesh()
}

func (o *SimObject) UpdateChildren(dtMs float64) {
	for _, child := range o.children {
		child.Update(dtMs)
	}
}

// SyncMesh copies the body's world center onto the mesh's X/Z and its
// angle onto the mesh yaw. Physics angles turn the opposite way to mesh
// yaw. Mesh height is left alone.
func (o *SimObject) SyncMesh() {
	if o.mesh == nil || o.body == nil {
		return
	}
	c := o.body.WorldCenter()
	o.mesh.Position.X = c.X
	o.mesh.Position.Z = c.Y
	o.mesh.Rotation.Y = -o.body.Angle()
}

// Walk visits obj and its subtree depth first, parents before children.
func Walk(obj Object, fn func(Object)) {
	if obj == nil {
		return
	}
	fn(obj)
	for _, child := range obj.Children() {
		Walk(child, fn)
	}
}
