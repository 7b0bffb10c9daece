package gltf

import "encoding/json"

// ComponentType identifies the numeric storage type of an accessor,
// using the glTF 2.0 enumeration values.
type ComponentType int

const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the byte size of a single component, or 0 for an
// unknown component type.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	}
	return 0
}

// elementCounts maps accessor element types to their component counts.
var elementCounts = map[string]int{
	"SCALAR": 1,
	"VEC2":   2,
	"VEC3":   3,
	"VEC4":   4,
	"MAT2":   4,
	"MAT3":   9,
	"MAT4":   16,
}

// Root is the structural (JSON) half of an asset: flat owning
// sequences of entities, with every relation expressed as an integer
// index into a sibling sequence. Optional references are pointers so
// that index 0 and "absent" stay distinct.
type Root struct {
	Asset          Asset                      `json:"asset"`
	ExtensionsUsed []string                   `json:"extensionsUsed,omitempty"`
	Extensions     map[string]json.RawMessage `json:"extensions,omitempty"`
	Scene          *int                       `json:"scene,omitempty"`
	Scenes         []Scene                    `json:"scenes,omitempty"`
	Nodes          []Node                     `json:"nodes,omitempty"`
	Meshes         []Mesh                     `json:"meshes,omitempty"`
	Accessors      []Accessor                 `json:"accessors,omitempty"`
	BufferViews    []BufferView               `json:"bufferViews,omitempty"`
	Buffers        []Buffer                   `json:"buffers,omitempty"`
	Materials      []Material                 `json:"materials,omitempty"`
	Textures       []Texture                  `json:"textures,omitempty"`
	Images         []Image                    `json:"images,omitempty"`
	Samplers       []Sampler                  `json:"samplers,omitempty"`
}

// Asset holds the mandatory glTF asset descriptor.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene references the root nodes of one displayable scene.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is one element of the scene graph; it may reference a mesh and
// child nodes.
type Node struct {
	Name        string    `json:"name,omitempty"`
	Mesh        *int      `json:"mesh,omitempty"`
	Children    []int     `json:"children,omitempty"`
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Matrix      []float64 `json:"matrix,omitempty"`
}

// Mesh is an ordered collection of drawable primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable surface: vertex attribute and index
// accessor references plus at most one material reference. Material
// variation is tracked at this granularity.
type Primitive struct {
	Attributes map[string]int             `json:"attributes"`
	Indices    *int                       `json:"indices,omitempty"`
	Material   *int                       `json:"material,omitempty"`
	Mode       *int                       `json:"mode,omitempty"`
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// Accessor describes a typed view of raw buffer bytes.
type Accessor struct {
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          string        `json:"type"`
	Max           []float64     `json:"max,omitempty"`
	Min           []float64     `json:"min,omitempty"`
}

// BufferView addresses one contiguous byte range of a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
	Target     *int `json:"target,omitempty"`
}

// Buffer declares a block of binary data. In a binary container the
// single buffer carries no URI and is backed by the payload chunk.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
}

// Material is a PBR metallic-roughness material definition.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTextureInfo `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       []float64             `json:"emissiveFactor,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
	AlphaCutoff          *float64              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
}

// PBRMetallicRoughness holds the core PBR parameter set.
type PBRMetallicRoughness struct {
	BaseColorFactor          []float64    `json:"baseColorFactor,omitempty"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           *float64     `json:"metallicFactor,omitempty"`
	RoughnessFactor          *float64     `json:"roughnessFactor,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo is a material's reference to a texture.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// NormalTextureInfo extends TextureInfo with a normal-map scale.
type NormalTextureInfo struct {
	TextureInfo
	Scale *float64 `json:"scale,omitempty"`
}

// OcclusionTextureInfo extends TextureInfo with an occlusion strength.
type OcclusionTextureInfo struct {
	TextureInfo
	Strength *float64 `json:"strength,omitempty"`
}

// Texture pairs an image source with a sampler.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  *int   `json:"source,omitempty"`
}

// Image is a texture source. In a self-contained asset its bytes live
// behind a buffer view rather than a URI.
type Image struct {
	Name       string `json:"name,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	URI        string `json:"uri,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Sampler holds texture filtering and wrapping configuration.
type Sampler struct {
	MagFilter *int `json:"magFilter,omitempty"`
	MinFilter *int `json:"minFilter,omitempty"`
	WrapS     *int `json:"wrapS,omitempty"`
	WrapT     *int `json:"wrapT,omitempty"`
}
