package meld

import (
	"fmt"
	"strconv"
	"strings"

	"variant-meld/core/dedup"
	"variant-meld/core/gltf"
)

// sourceKeys holds the canonical content identity of every
// material-path entity in one source document, computed up front in
// strict dependency order (images and samplers, then textures, then
// materials). Image bytes are cached so that the later copy phase of
// a fold step cannot fail mid-mutation.
//
// A sourceKeys is the per-step remap input: it lives for one fold
// step and is discarded with it.
type sourceKeys struct {
	doc          *gltf.Document
	imageContent [][]byte

	image    []dedup.SlotID
	sampler  []dedup.SlotID
	texture  []dedup.SlotID
	material []dedup.SlotID
}

func newSourceKeys(doc *gltf.Document) (*sourceKeys, error) {
	k := &sourceKeys{
		doc:          doc,
		imageContent: make([][]byte, len(doc.Root.Images)),
		image:        make([]dedup.SlotID, len(doc.Root.Images)),
		sampler:      make([]dedup.SlotID, len(doc.Root.Samplers)),
		texture:      make([]dedup.SlotID, len(doc.Root.Textures)),
		material:     make([]dedup.SlotID, len(doc.Root.Materials)),
	}
	for ix := range doc.Root.Images {
		content, err := doc.ImageBytes(ix)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", ix, err)
		}
		k.imageContent[ix] = content
		k.image[ix] = dedup.Digest(dedup.KindImage, content, doc.Root.Images[ix].MimeType)
	}
	for ix := range doc.Root.Samplers {
		k.sampler[ix] = dedup.Digest(dedup.KindSampler, []byte(samplerKey(&doc.Root.Samplers[ix])), "")
	}
	for ix := range doc.Root.Textures {
		k.texture[ix] = dedup.Digest(dedup.KindTexture, []byte(k.textureKey(&doc.Root.Textures[ix])), "")
	}
	for ix := range doc.Root.Materials {
		k.material[ix] = dedup.Digest(dedup.KindMaterial, []byte(k.materialKey(&doc.Root.Materials[ix])), "")
	}
	return k, nil
}

// materialChildSlots returns every slot a material pulls in with it:
// its textures plus their images and samplers.
func (k *sourceKeys) materialChildSlots(matIx int) []dedup.SlotID {
	var out []dedup.SlotID
	for _, texIx := range k.doc.MaterialTextureIndices(matIx) {
		out = append(out, k.texture[texIx])
		tex := k.doc.Root.Textures[texIx]
		if tex.Source != nil {
			out = append(out, k.image[*tex.Source])
		}
		if tex.Sampler != nil {
			out = append(out, k.sampler[*tex.Sampler])
		}
	}
	return out
}

// samplerKey canonicalizes a sampler's filter and wrap configuration.
func samplerKey(s *gltf.Sampler) string {
	return fmt.Sprintf("[mag=%s,min=%s,wrapS=%s,wrapT=%s]",
		fmtIntPtr(s.MagFilter), fmtIntPtr(s.MinFilter), fmtIntPtr(s.WrapS), fmtIntPtr(s.WrapT))
}

// textureKey canonicalizes a texture as the pair of its sampler and
// image identities.
func (k *sourceKeys) textureKey(t *gltf.Texture) string {
	sampler := ""
	if t.Sampler != nil {
		sampler = string(k.sampler[*t.Sampler])
	}
	source := ""
	if t.Source != nil {
		source = string(k.image[*t.Source])
	}
	return fmt.Sprintf("[sampler=%s,source=%s]", sampler, source)
}

// materialKey canonicalizes a material: every scalar parameter plus
// the content identities of the textures it references, so that two
// materials are the same slot exactly when they render the same.
func (k *sourceKeys) materialKey(m *gltf.Material) string {
	pbrPart := "[]"
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		pbrPart = fmt.Sprintf("[bcf=%s,bct=%s,mf=%s,rf=%s,mrt=%s]",
			fmtFloats(pbr.BaseColorFactor),
			k.texInfoKey(pbr.BaseColorTexture),
			fmtFloatPtr(pbr.MetallicFactor),
			fmtFloatPtr(pbr.RoughnessFactor),
			k.texInfoKey(pbr.MetallicRoughnessTexture))
	}
	normalPart := "[]"
	if m.NormalTexture != nil {
		normalPart = fmt.Sprintf("[s=%s,%s]", fmtFloatPtr(m.NormalTexture.Scale), k.texInfoKey(&m.NormalTexture.TextureInfo))
	}
	occlusionPart := "[]"
	if m.OcclusionTexture != nil {
		occlusionPart = fmt.Sprintf("[s=%s,%s]", fmtFloatPtr(m.OcclusionTexture.Strength), k.texInfoKey(&m.OcclusionTexture.TextureInfo))
	}
	return fmt.Sprintf("[pbr=%s,nt=%s,ot=%s,et=%s,ef=%s,am=%q,ac=%s,ds=%t]",
		pbrPart, normalPart, occlusionPart,
		k.texInfoKey(m.EmissiveTexture),
		fmtFloats(m.EmissiveFactor),
		m.AlphaMode,
		fmtFloatPtr(m.AlphaCutoff),
		m.DoubleSided)
}

func (k *sourceKeys) texInfoKey(info *gltf.TextureInfo) string {
	if info == nil {
		return "[]"
	}
	return fmt.Sprintf("[tc=%d,src=%s]", info.TexCoord, k.texture[info.Index])
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func fmtFloats(vs []float64) string {
	if vs == nil {
		return "-"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// accessorMeta is the interpretation metadata folded into a geometry
// segment's content identity: identical bytes under a different
// layout are different content.
func accessorMeta(doc *gltf.Document, ix int) string {
	acc := doc.Root.Accessors[ix]
	stride := 0
	if acc.BufferView != nil {
		if s := doc.Root.BufferViews[*acc.BufferView].ByteStride; s != nil {
			stride = *s
		}
	}
	return fmt.Sprintf("ct=%d,type=%s,norm=%t,stride=%d", acc.ComponentType, acc.Type, acc.Normalized, stride)
}
