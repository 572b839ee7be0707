package assets

import (
	"io"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

type objVertexKey struct {
	position int
	normal   int
}

type objBuilder struct {
	decoder  *obj.Decoder
	unique   map[objVertexKey]uint32
	geometry Geometry
}

// LoadOBJ decodes a Wavefront mesh into indexed geometry. Polygons are fanned
// into triangles. Vertex colors come from the absolute value of the vertex
// normal when the mesh has normals and are white otherwise. mtl may be nil.
func LoadOBJ(mesh io.Reader, mtl io.Reader) (Geometry, error) {
	if mtl == nil {
		mtl = strings.NewReader("")
	}

	decoder, err := obj.DecodeReader(mesh, mtl)
	if err != nil {
		return Geometry{}, errors.Wrap(err, "decode obj")
	}

	b := &objBuilder{
		decoder: decoder,
		unique:  make(map[objVertexKey]uint32),
	}

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range [3]int{0, i - 1, i} {
					err = b.addVertex(face, corner)
					if err != nil {
						return Geometry{}, err
					}
				}
			}
		}
	}

	if len(b.geometry.Indices) == 0 {
		return Geometry{}, errors.New("obj mesh contains no triangles")
	}

	return b.geometry, nil
}

func (b *objBuilder) addVertex(face obj.Face, corner int) error {
	key := objVertexKey{position: face.Vertices[corner], normal: -1}
	if corner < len(face.Normals) {
		key.normal = face.Normals[corner]
	}

	index, exists := b.unique[key]
	if !exists {
		positions := b.decoder.Vertices
		if key.position < 0 || key.position*3+2 >= len(positions) {
			return errors.Newf("obj face references missing vertex %d", key.position)
		}

		vert := Vertex{
			Position: mgl32.Vec3{
				positions[key.position*3],
				positions[key.position*3+1],
				positions[key.position*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}

		normals := b.decoder.Normals
		if key.normal >= 0 && key.normal*3+2 < len(normals) {
			vert.Color = mgl32.Vec3{
				float32(math.Abs(float64(normals[key.normal*3]))),
				float32(math.Abs(float64(normals[key.normal*3+1]))),
				float32(math.Abs(float64(normals[key.normal*3+2]))),
			}
		}

		index = uint32(len(b.geometry.Vertices))
		b.geometry.Vertices = append(b.geometry.Vertices, vert)
		b.unique[key] = index
	}

	b.geometry.Indices = append(b.geometry.Indices, index)
	return nil
}
