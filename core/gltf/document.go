package gltf

import (
	"encoding/json"
	"fmt"
	"math"
)

// Document is the fully parsed form of one asset: the structural
// scene description plus its single contiguous binary payload. A
// Document owns both halves; nothing in it aliases another Document.
type Document struct {
	Root Root
	Blob []byte
}

// Clone returns a deep copy of the document. Root is pure data, so a
// JSON round trip is a complete copy.
func (d *Document) Clone() (*Document, error) {
	raw, err := json.Marshal(&d.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to clone document root: %w", err)
	}
	var root Root
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to clone document root: %w", err)
	}
	blob := make([]byte, len(d.Blob))
	copy(blob, d.Blob)
	return &Document{Root: root, Blob: blob}, nil
}

// Validate checks that every reference between entities is a valid
// index into this document's own sequences, and that every buffer
// view lies within the payload bounds. It returns a descriptive error
// for the first dangling or out-of-range reference found.
func (d *Document) Validate() error {
	r := &d.Root

	if len(r.Buffers) > 1 {
		return fmt.Errorf("document declares %d buffers, a binary container holds at most one", len(r.Buffers))
	}
	if len(r.Buffers) == 1 && r.Buffers[0].URI == "" && r.Buffers[0].ByteLength > len(d.Blob) {
		return fmt.Errorf("buffer declares %d bytes but payload holds %d", r.Buffers[0].ByteLength, len(d.Blob))
	}

	if r.Scene != nil && (*r.Scene < 0 || *r.Scene >= len(r.Scenes)) {
		return fmt.Errorf("root scene index %d out of range (%d scenes)", *r.Scene, len(r.Scenes))
	}
	for i, scene := range r.Scenes {
		for _, n := range scene.Nodes {
			if n < 0 || n >= len(r.Nodes) {
				return fmt.Errorf("scene %d references node %d out of range (%d nodes)", i, n, len(r.Nodes))
			}
		}
	}
	for i, node := range r.Nodes {
		if node.Mesh != nil && (*node.Mesh < 0 || *node.Mesh >= len(r.Meshes)) {
			return fmt.Errorf("node %d references mesh %d out of range (%d meshes)", i, *node.Mesh, len(r.Meshes))
		}
		for _, c := range node.Children {
			if c < 0 || c >= len(r.Nodes) {
				return fmt.Errorf("node %d references child %d out of range (%d nodes)", i, c, len(r.Nodes))
			}
		}
	}
	for m, mesh := range r.Meshes {
		for p, prim := range mesh.Primitives {
			for name, a := range prim.Attributes {
				if a < 0 || a >= len(r.Accessors) {
					return fmt.Errorf("mesh %d primitive %d attribute %s references accessor %d out of range (%d accessors)",
						m, p, name, a, len(r.Accessors))
				}
			}
			if prim.Indices != nil && (*prim.Indices < 0 || *prim.Indices >= len(r.Accessors)) {
				return fmt.Errorf("mesh %d primitive %d indices reference accessor %d out of range (%d accessors)",
					m, p, *prim.Indices, len(r.Accessors))
			}
			if prim.Material != nil && (*prim.Material < 0 || *prim.Material >= len(r.Materials)) {
				return fmt.Errorf("mesh %d primitive %d references material %d out of range (%d materials)",
					m, p, *prim.Material, len(r.Materials))
			}
		}
	}
	for i, acc := range r.Accessors {
		if acc.BufferView != nil && (*acc.BufferView < 0 || *acc.BufferView >= len(r.BufferViews)) {
			return fmt.Errorf("accessor %d references buffer view %d out of range (%d views)", i, *acc.BufferView, len(r.BufferViews))
		}
		if acc.ByteOffset < 0 || acc.Count < 0 {
			return fmt.Errorf("accessor %d has negative offset or count", i)
		}
		if _, ok := elementCounts[acc.Type]; !ok {
			return fmt.Errorf("accessor %d has unknown element type %q", i, acc.Type)
		}
		if acc.ComponentType.Size() == 0 {
			return fmt.Errorf("accessor %d has unknown component type %d", i, acc.ComponentType)
		}
		if acc.BufferView != nil {
			need, err := d.accessorSpan(i)
			if err != nil {
				return err
			}
			// negative view lengths are rejected in the view loop below
			if view := r.BufferViews[*acc.BufferView]; view.ByteLength >= 0 && acc.ByteOffset > view.ByteLength-need {
				return fmt.Errorf("accessor %d needs %d bytes at offset %d but view %d holds %d",
					i, need, acc.ByteOffset, *acc.BufferView, view.ByteLength)
			}
		}
	}
	for i, view := range r.BufferViews {
		if view.Buffer < 0 || view.Buffer >= len(r.Buffers) {
			return fmt.Errorf("buffer view %d references buffer %d out of range (%d buffers)", i, view.Buffer, len(r.Buffers))
		}
		if view.ByteOffset < 0 || view.ByteLength < 0 {
			return fmt.Errorf("buffer view %d has negative offset or length", i)
		}
		// subtraction instead of addition so huge offset+length pairs
		// cannot wrap past the payload bound
		if r.Buffers[view.Buffer].URI == "" && view.ByteOffset > len(d.Blob)-view.ByteLength {
			return fmt.Errorf("buffer view %d needs %d bytes at offset %d but payload holds %d",
				i, view.ByteLength, view.ByteOffset, len(d.Blob))
		}
	}
	for i := range r.Materials {
		for _, ref := range r.Materials[i].TextureRefs() {
			if ref.Index < 0 || ref.Index >= len(r.Textures) {
				return fmt.Errorf("material %d references texture %d out of range (%d textures)", i, ref.Index, len(r.Textures))
			}
		}
	}
	for i, tex := range r.Textures {
		if tex.Source != nil && (*tex.Source < 0 || *tex.Source >= len(r.Images)) {
			return fmt.Errorf("texture %d references image %d out of range (%d images)", i, *tex.Source, len(r.Images))
		}
		if tex.Sampler != nil && (*tex.Sampler < 0 || *tex.Sampler >= len(r.Samplers)) {
			return fmt.Errorf("texture %d references sampler %d out of range (%d samplers)", i, *tex.Sampler, len(r.Samplers))
		}
	}
	for i, img := range r.Images {
		if img.BufferView != nil && (*img.BufferView < 0 || *img.BufferView >= len(r.BufferViews)) {
			return fmt.Errorf("image %d references buffer view %d out of range (%d views)", i, *img.BufferView, len(r.BufferViews))
		}
	}
	return nil
}

// SelfContained reports whether the document references no external
// resources: a single payload-backed buffer and buffer-view-backed
// images only.
func (d *Document) SelfContained() error {
	for i, buf := range d.Root.Buffers {
		if buf.URI != "" {
			return fmt.Errorf("buffer %d references external URI %q", i, buf.URI)
		}
	}
	for i, img := range d.Root.Images {
		if img.BufferView == nil {
			return fmt.Errorf("image %d references external URI %q", i, img.URI)
		}
	}
	return nil
}

// BufferViewBytes returns the payload slice addressed by buffer view ix.
func (d *Document) BufferViewBytes(ix int) ([]byte, error) {
	if ix < 0 || ix >= len(d.Root.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range (%d views)", ix, len(d.Root.BufferViews))
	}
	view := d.Root.BufferViews[ix]
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset > len(d.Blob)-view.ByteLength {
		return nil, fmt.Errorf("buffer view %d needs %d bytes at offset %d but payload holds %d",
			ix, view.ByteLength, view.ByteOffset, len(d.Blob))
	}
	return d.Blob[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}

// AccessorBytes returns the raw bytes backing accessor ix, sized from
// its component type, element type and count. Interleaved accessors
// (view stride wider than one element) include the full stride span.
func (d *Document) AccessorBytes(ix int) ([]byte, error) {
	if ix < 0 || ix >= len(d.Root.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", ix, len(d.Root.Accessors))
	}
	acc := d.Root.Accessors[ix]
	if acc.BufferView == nil {
		// zero-initialized accessor, no backing bytes
		return nil, nil
	}
	viewBytes, err := d.BufferViewBytes(*acc.BufferView)
	if err != nil {
		return nil, err
	}
	need, err := d.accessorSpan(ix)
	if err != nil {
		return nil, err
	}
	if acc.ByteOffset > len(viewBytes)-need {
		return nil, fmt.Errorf("accessor %d needs %d bytes at offset %d but view holds %d",
			ix, need, acc.ByteOffset, len(viewBytes))
	}
	return viewBytes[acc.ByteOffset : acc.ByteOffset+need], nil
}

// accessorSpan computes the byte span accessor ix occupies inside its
// buffer view, sized from its component type, element type, count and
// the view's stride. Arithmetic that would overflow is rejected
// instead of wrapping into a bogus bound. The accessor must reference
// an in-range buffer view.
func (d *Document) accessorSpan(ix int) (int, error) {
	acc := d.Root.Accessors[ix]
	if acc.ByteOffset < 0 || acc.Count < 0 {
		return 0, fmt.Errorf("accessor %d has negative offset or count", ix)
	}
	elem := acc.ComponentType.Size() * elementCounts[acc.Type]
	if elem == 0 {
		return 0, fmt.Errorf("accessor %d has unknown component or element type", ix)
	}
	if acc.Count == 0 {
		return 0, nil
	}
	if stride := d.Root.BufferViews[*acc.BufferView].ByteStride; stride != nil && *stride > elem {
		if acc.Count-1 > (math.MaxInt-elem) / *stride {
			return 0, fmt.Errorf("accessor %d count %d overflows its %d-byte stride", ix, acc.Count, *stride)
		}
		return (acc.Count-1)**stride + elem, nil
	}
	if acc.Count > math.MaxInt/elem {
		return 0, fmt.Errorf("accessor %d count %d overflows its %d-byte elements", ix, acc.Count, elem)
	}
	return acc.Count * elem, nil
}

// ImageBytes returns the raw encoded bytes of image ix. The image
// must be backed by a buffer view.
func (d *Document) ImageBytes(ix int) ([]byte, error) {
	if ix < 0 || ix >= len(d.Root.Images) {
		return nil, fmt.Errorf("image %d out of range (%d images)", ix, len(d.Root.Images))
	}
	img := d.Root.Images[ix]
	if img.BufferView == nil {
		return nil, fmt.Errorf("image %d has no buffer view", ix)
	}
	return d.BufferViewBytes(*img.BufferView)
}

// AppendBufferView 4-byte-aligns the payload, appends the given
// bytes, pushes a view covering them and returns the view's index.
func (d *Document) AppendBufferView(data []byte) int {
	for len(d.Blob)%4 != 0 {
		d.Blob = append(d.Blob, 0x00)
	}
	ix := len(d.Root.BufferViews)
	d.Root.BufferViews = append(d.Root.BufferViews, BufferView{
		Buffer:     0,
		ByteOffset: len(d.Blob),
		ByteLength: len(data),
	})
	d.Blob = append(d.Blob, data...)
	d.syncBuffer()
	return ix
}

// syncBuffer keeps the single buffer entry in step with the payload.
func (d *Document) syncBuffer() {
	if len(d.Blob) == 0 {
		d.Root.Buffers = nil
		return
	}
	if len(d.Root.Buffers) == 0 {
		d.Root.Buffers = []Buffer{{}}
	}
	d.Root.Buffers[0].ByteLength = len(d.Blob)
}

// TextureRefs collects a material's texture references across all
// five texture slots. The returned pointers alias the material, so
// rewriting their indices rewires the material itself.
func (mat *Material) TextureRefs() []*TextureInfo {
	var refs []*TextureInfo
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			refs = append(refs, pbr.BaseColorTexture)
		}
		if pbr.MetallicRoughnessTexture != nil {
			refs = append(refs, pbr.MetallicRoughnessTexture)
		}
	}
	if mat.NormalTexture != nil {
		refs = append(refs, &mat.NormalTexture.TextureInfo)
	}
	if mat.OcclusionTexture != nil {
		refs = append(refs, &mat.OcclusionTexture.TextureInfo)
	}
	if mat.EmissiveTexture != nil {
		refs = append(refs, mat.EmissiveTexture)
	}
	return refs
}

// MaterialTextureIndices returns the texture indices referenced by
// material ix, in slot order.
func (d *Document) MaterialTextureIndices(ix int) []int {
	if ix < 0 || ix >= len(d.Root.Materials) {
		return nil
	}
	refs := d.Root.Materials[ix].TextureRefs()
	out := make([]int, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Index)
	}
	return out
}
