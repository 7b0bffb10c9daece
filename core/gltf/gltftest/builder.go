// Package gltftest builds small self-contained documents for tests: a
// single triangle mesh with one textured material, with options to
// vary exactly the parts a test cares about.
package gltftest

import (
	"encoding/binary"
	"math"

	"variant-meld/core/gltf"
)

// fixture collects the variable parts of the document under construction.
type fixture struct {
	imageBytes   []byte
	baseColor    []float64
	materialName string
	doubleSided  bool
	positions    [][3]float32
	indices      []uint16
}

// Option adjusts one aspect of the built document.
type Option func(*fixture)

// WithImageBytes replaces the texture image content.
func WithImageBytes(data []byte) Option {
	return func(f *fixture) { f.imageBytes = data }
}

// WithBaseColor sets the material's base color factor.
func WithBaseColor(r, g, b, a float64) Option {
	return func(f *fixture) { f.baseColor = []float64{r, g, b, a} }
}

// WithMaterialName names the material.
func WithMaterialName(name string) Option {
	return func(f *fixture) { f.materialName = name }
}

// WithDoubleSided marks the material double sided.
func WithDoubleSided() Option {
	return func(f *fixture) { f.doubleSided = true }
}

// WithPositions replaces the vertex positions. The vertex count must
// stay consistent with the indices.
func WithPositions(positions [][3]float32) Option {
	return func(f *fixture) { f.positions = positions }
}

// WithIndices replaces the triangle indices.
func WithIndices(indices []uint16) Option {
	return func(f *fixture) { f.indices = indices }
}

// Triangle builds a self-contained document holding one triangle mesh
// with a single textured PBR material.
func Triangle(opts ...Option) *gltf.Document {
	f := &fixture{
		imageBytes: []byte("png:default-texture-content"),
		positions: [][3]float32{
			{0, 0, 0},
			{1, 0, 0},
			{0, 1, 0},
		},
		indices: []uint16{0, 1, 2},
	}
	for _, opt := range opts {
		opt(f)
	}

	doc := &gltf.Document{
		Root: gltf.Root{
			Asset: gltf.Asset{Version: "2.0"},
		},
	}

	indexBytes := make([]byte, 2*len(f.indices))
	for i, v := range f.indices {
		binary.LittleEndian.PutUint16(indexBytes[2*i:], v)
	}
	positionBytes := make([]byte, 12*len(f.positions))
	for i, p := range f.positions {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(positionBytes[12*i+4*c:], math.Float32bits(p[c]))
		}
	}

	indexView := doc.AppendBufferView(indexBytes)
	positionView := doc.AppendBufferView(positionBytes)
	imageView := doc.AppendBufferView(f.imageBytes)

	doc.Root.Accessors = []gltf.Accessor{
		{
			BufferView:    &indexView,
			ComponentType: gltf.ComponentUnsignedShort,
			Count:         len(f.indices),
			Type:          "SCALAR",
		},
		{
			BufferView:    &positionView,
			ComponentType: gltf.ComponentFloat,
			Count:         len(f.positions),
			Type:          "VEC3",
		},
	}

	doc.Root.Samplers = []gltf.Sampler{{
		MagFilter: intPtr(9729),
		MinFilter: intPtr(9729),
		WrapS:     intPtr(10497),
		WrapT:     intPtr(10497),
	}}
	doc.Root.Images = []gltf.Image{{
		MimeType:   "image/png",
		BufferView: &imageView,
	}}
	doc.Root.Textures = []gltf.Texture{{
		Sampler: intPtr(0),
		Source:  intPtr(0),
	}}

	material := gltf.Material{
		Name: f.materialName,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  f.baseColor,
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
		DoubleSided: f.doubleSided,
	}
	doc.Root.Materials = []gltf.Material{material}

	doc.Root.Meshes = []gltf.Mesh{{
		Primitives: []gltf.Primitive{{
			Attributes: map[string]int{"POSITION": 1},
			Indices:    intPtr(0),
			Material:   intPtr(0),
		}},
	}}
	doc.Root.Nodes = []gltf.Node{{Mesh: intPtr(0)}}
	doc.Root.Scenes = []gltf.Scene{{Nodes: []int{0}}}
	doc.Root.Scene = intPtr(0)

	return doc
}

func intPtr(v int) *int { return &v }
