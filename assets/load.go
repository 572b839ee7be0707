package assets

import (
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Manifest names the files of a scene, relative to the asset root.
type Manifest struct {
	VertexShader   string
	FragmentShader string
	// Mesh is an optional .obj file. The built-in triangle is used when empty.
	Mesh string
}

func DefaultManifest() Manifest {
	return Manifest{
		VertexShader:   "shaders/triangle.vert.spv",
		FragmentShader: "shaders/triangle.frag.spv",
	}
}

// Bundle is everything the renderer consumes from disk.
type Bundle struct {
	VertexShader   []uint32
	FragmentShader []uint32
	Geometry       Geometry
}

// Load reads the manifest's files from fsys concurrently.
func Load(fsys fs.FS, manifest Manifest) (*Bundle, error) {
	bundle := &Bundle{}
	var group errgroup.Group

	group.Go(func() error {
		var err error
		bundle.VertexShader, err = readShader(fsys, manifest.VertexShader)
		return err
	})

	group.Go(func() error {
		var err error
		bundle.FragmentShader, err = readShader(fsys, manifest.FragmentShader)
		return err
	})

	group.Go(func() error {
		if manifest.Mesh == "" {
			bundle.Geometry = Triangle()
			return nil
		}

		var err error
		bundle.Geometry, err = readMesh(fsys, manifest.Mesh)
		return err
	})

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	return bundle, nil
}

func readShader(fsys fs.FS, name string) ([]uint32, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader %s", name)
	}

	code, err := Bytecode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}

	return code, nil
}

func readMesh(fsys fs.FS, name string) (Geometry, error) {
	meshFile, err := fsys.Open(name)
	if err != nil {
		return Geometry{}, errors.Wrapf(err, "open mesh %s", name)
	}
	defer meshFile.Close()

	// The material library is optional and lives next to the mesh.
	matName := strings.TrimSuffix(name, path.Ext(name)) + ".mtl"
	materials, err := fsys.Open(matName)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Geometry{}, errors.Wrapf(err, "open materials %s", matName)
	}

	var geometry Geometry
	if err == nil {
		defer materials.Close()
		geometry, err = LoadOBJ(meshFile, materials)
	} else {
		geometry, err = LoadOBJ(meshFile, nil)
	}
	if err != nil {
		return Geometry{}, errors.Wrapf(err, "mesh %s", name)
	}

	return geometry, nil
}
