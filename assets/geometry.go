package assets

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the fixed vertex layout every pipeline in the engine consumes:
// a position at location 0 and a color at location 1.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Geometry is immutable draw data. Indices may be empty, in which case the
// vertices are drawn in order.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

func (g Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

// DrawCount is the number of elements a single draw call covers.
func (g Geometry) DrawCount() int {
	if g.Indexed() {
		return len(g.Indices)
	}
	return len(g.Vertices)
}

// Triangle returns the built-in red/green/blue triangle.
func Triangle() Geometry {
	return Geometry{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{0.0, 0.25, 0.0}, Color: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{-0.25, -0.25, 0.0}, Color: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{0.25, -0.25, 0.0}, Color: mgl32.Vec3{0, 0, 1}},
		},
	}
}
