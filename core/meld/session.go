package meld

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"variant-meld/core/dedup"
	"variant-meld/core/glb"
	"variant-meld/core/gltf"
)

// Session drives a left-to-right fold over tagged source documents
// into one combined document. It starts Empty; the first fold makes
// the source the baseline and transitions to Populated; every later
// fold is validated against that baseline and contributes only
// material-path content.
//
// A session is single-threaded and lives for one meld run: the store,
// the combined document and the variant assignment are created with
// it and discarded with it.
type Session struct {
	id    string
	store *dedup.Store
	doc   *gltf.Document
	tags  []string

	// canonical slot -> index into the combined document's sequences
	materialIx map[dedup.SlotID]int
	textureIx  map[dedup.SlotID]int
	imageIx    map[dedup.SlotID]int
	samplerIx  map[dedup.SlotID]int

	// material slot -> the texture/image/sampler slots it pulls in
	materialChildren map[dedup.SlotID][]dedup.SlotID

	// assignment[m][p] maps tag -> material slot for that primitive;
	// grows monotonically, never shrinks
	assignment [][]map[string]dedup.SlotID
}

// NewSession creates an empty meld session.
func NewSession() *Session {
	return &Session{
		id:               uuid.NewString(),
		store:            dedup.NewStore(),
		materialIx:       map[dedup.SlotID]int{},
		textureIx:        map[dedup.SlotID]int{},
		imageIx:          map[dedup.SlotID]int{},
		samplerIx:        map[dedup.SlotID]int{},
		materialChildren: map[dedup.SlotID][]dedup.SlotID{},
	}
}

// ID returns the session's correlation identifier.
func (s *Session) ID() string {
	return s.id
}

// Populated reports whether a baseline has been folded in.
func (s *Session) Populated() bool {
	return s.doc != nil
}

// Tags returns the variant tags folded so far, in order of first
// appearance. That order is the display order of the output.
func (s *Session) Tags() []string {
	return append([]string(nil), s.tags...)
}

// Store exposes the session's deduplication store for reporting.
func (s *Session) Store() *dedup.Store {
	return s.store
}

// Document returns the combined document. Callers must treat it as
// read-only; it is consumed by Export at the end of the session.
func (s *Session) Document() *gltf.Document {
	return s.doc
}

// foldPlan is the per-step reading of one source: the tags it brings
// (embedded root-block tags first, then the argument tag) and, per
// mesh primitive, the tag-to-source-material mapping.
type foldPlan struct {
	tags     []string
	variants [][]map[string]int
}

// Fold melds one tagged source document into the session. The step is
// atomic: on any error the combined document, store and assignment
// are left exactly as they were.
func (s *Session) Fold(tag string, src *gltf.Document) error {
	if tag != "" {
		for _, t := range s.tags {
			if t == tag {
				return &DuplicateTagError{Tag: tag}
			}
		}
	}
	if err := src.SelfContained(); err != nil {
		return fmt.Errorf("unsupported source: %w", err)
	}
	plan, err := buildFoldPlan(tag, src)
	if err != nil {
		return err
	}
	keys, err := newSourceKeys(src)
	if err != nil {
		return fmt.Errorf("failed to key source content: %w", err)
	}
	if s.doc == nil {
		return s.foldBaseline(src, plan, keys)
	}
	return s.foldCandidate(src, plan, keys)
}

// Export encodes the combined document into container bytes.
func (s *Session) Export() ([]byte, error) {
	if s.doc == nil {
		return nil, errors.New("empty session: nothing to export")
	}
	return glb.Encode(s.doc)
}

func buildFoldPlan(tag string, src *gltf.Document) (*foldPlan, error) {
	embedded, err := gltf.RootVariants(&src.Root)
	if err != nil {
		return nil, err
	}
	if tag == "" && len(embedded) == 0 {
		return nil, errors.New("no variant tag provided and none embedded in source")
	}

	plan := &foldPlan{tags: append([]string(nil), embedded...)}
	known := map[string]struct{}{}
	for _, t := range embedded {
		known[t] = struct{}{}
	}
	if tag != "" {
		if _, ok := known[tag]; !ok {
			plan.tags = append(plan.tags, tag)
			known[tag] = struct{}{}
		}
	}

	plan.variants = make([][]map[string]int, len(src.Root.Meshes))
	for m := range src.Root.Meshes {
		prims := src.Root.Meshes[m].Primitives
		plan.variants[m] = make([]map[string]int, len(prims))
		for p := range prims {
			mapping := map[string]int{}
			entries, err := gltf.PrimitiveMappings(&prims[p])
			if err != nil {
				return nil, err
			}
			for _, entry := range entries {
				if entry.Material < 0 || entry.Material >= len(src.Root.Materials) {
					return nil, fmt.Errorf("mesh %d primitive %d: variant mapping references material %d out of range (%d materials)",
						m, p, entry.Material, len(src.Root.Materials))
				}
				if _, ok := known[entry.Tag]; !ok {
					return nil, fmt.Errorf("mesh %d primitive %d: variant mapping references tag %q missing from root block",
						m, p, entry.Tag)
				}
				mapping[entry.Tag] = entry.Material
			}
			if tag != "" && prims[p].Material != nil {
				mapping[tag] = *prims[p].Material
			}
			plan.variants[m][p] = mapping
		}
	}
	return plan, nil
}

// foldBaseline makes the first source the baseline verbatim: geometry
// slots are interned once, material-path entities are registered at
// their existing indices, and the assignment records every primitive's
// material under the source's tags.
func (s *Session) foldBaseline(src *gltf.Document, plan *foldPlan, keys *sourceKeys) error {
	clone, err := src.Clone()
	if err != nil {
		return err
	}

	// variant blocks are regenerated from the assignment, never carried
	gltf.SetRootVariants(&clone.Root, nil)
	for m := range clone.Root.Meshes {
		for p := range clone.Root.Meshes[m].Primitives {
			gltf.SetPrimitiveMappings(&clone.Root.Meshes[m].Primitives[p], nil)
		}
	}

	segments, err := geometrySegments(clone)
	if err != nil {
		return err
	}
	s.store.InternAll(dedup.KindGeometry, segments)

	for ix := range clone.Root.Images {
		slot := s.store.Intern(dedup.KindImage, keys.imageContent[ix], clone.Root.Images[ix].MimeType)
		if _, ok := s.imageIx[slot]; !ok {
			s.imageIx[slot] = ix
		}
	}
	for ix := range clone.Root.Samplers {
		slot := s.store.Intern(dedup.KindSampler, []byte(samplerKey(&clone.Root.Samplers[ix])), "")
		if _, ok := s.samplerIx[slot]; !ok {
			s.samplerIx[slot] = ix
		}
	}
	for ix := range clone.Root.Textures {
		slot := s.store.Intern(dedup.KindTexture, []byte(keys.textureKey(&clone.Root.Textures[ix])), "")
		if _, ok := s.textureIx[slot]; !ok {
			s.textureIx[slot] = ix
		}
	}
	for ix := range clone.Root.Materials {
		slot := s.store.Intern(dedup.KindMaterial, []byte(keys.materialKey(&clone.Root.Materials[ix])), "")
		if _, ok := s.materialIx[slot]; !ok {
			s.materialIx[slot] = ix
			s.materialChildren[slot] = keys.materialChildSlots(ix)
		}
	}

	s.assignment = make([][]map[string]dedup.SlotID, len(clone.Root.Meshes))
	for m := range clone.Root.Meshes {
		s.assignment[m] = make([]map[string]dedup.SlotID, len(clone.Root.Meshes[m].Primitives))
		for p := range clone.Root.Meshes[m].Primitives {
			pv := map[string]dedup.SlotID{}
			for _, t := range plan.tags {
				matIx, ok := plan.variants[m][p][t]
				if !ok {
					continue
				}
				slot := keys.material[matIx]
				pv[t] = slot
				s.referenceMaterial(slot, t)
			}
			s.assignment[m][p] = pv
		}
	}

	s.tags = append([]string(nil), plan.tags...)
	s.doc = clone
	s.rebuildExtension()
	return nil
}

// foldCandidate validates the source against the baseline, then
// interns its materials under the new tags and extends the variant
// assignment. All fallible work happens before the first mutation, so
// a failed fold leaves the session untouched.
func (s *Session) foldCandidate(src *gltf.Document, plan *foldPlan, keys *sourceKeys) error {
	if err := checkEquivalence(s.doc, src); err != nil {
		return err
	}

	// a tag already assigned on a primitive must resolve to the same
	// content slot; anything else is a conflicting variant definition
	for m := range plan.variants {
		for p := range plan.variants[m] {
			for t, matIx := range plan.variants[m][p] {
				if existing, ok := s.assignment[m][p][t]; ok && existing != keys.material[matIx] {
					return &IncompatibleError{
						MeshIndex:      m,
						PrimitiveIndex: p,
						Reason:         fmt.Sprintf("tag %q is already assigned a different material", t),
					}
				}
			}
		}
	}

	for m := range plan.variants {
		for p := range plan.variants[m] {
			for _, t := range plan.tags {
				matIx, ok := plan.variants[m][p][t]
				if !ok {
					continue
				}
				slot := s.adoptMaterial(keys, matIx)
				s.assignment[m][p][t] = slot
				s.referenceMaterial(slot, t)
			}
		}
	}

	for _, t := range plan.tags {
		if !s.hasTag(t) {
			s.tags = append(s.tags, t)
		}
	}
	s.rebuildExtension()
	return nil
}

func (s *Session) hasTag(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// referenceMaterial records a tag's use of a material slot and of
// everything the material pulls in.
func (s *Session) referenceMaterial(slot dedup.SlotID, tag string) {
	s.store.Reference(slot, tag)
	for _, child := range s.materialChildren[slot] {
		s.store.Reference(child, tag)
	}
}

// adoptMaterial brings one source material into the combined document,
// recursively adopting its textures, images and samplers. Content
// already present under the same slot is reused, not copied.
func (s *Session) adoptMaterial(keys *sourceKeys, matIx int) dedup.SlotID {
	slot := keys.material[matIx]
	if _, ok := s.materialIx[slot]; ok {
		return slot
	}
	s.store.Intern(dedup.KindMaterial, []byte(keys.materialKey(&keys.doc.Root.Materials[matIx])), "")

	mat := cloneMaterial(&keys.doc.Root.Materials[matIx])
	for _, ref := range mat.TextureRefs() {
		ref.Index = s.adoptTexture(keys, ref.Index)
	}
	ix := len(s.doc.Root.Materials)
	s.doc.Root.Materials = append(s.doc.Root.Materials, mat)
	s.materialIx[slot] = ix
	s.materialChildren[slot] = keys.materialChildSlots(matIx)
	return slot
}

func (s *Session) adoptTexture(keys *sourceKeys, texIx int) int {
	slot := keys.texture[texIx]
	if ix, ok := s.textureIx[slot]; ok {
		return ix
	}
	s.store.Intern(dedup.KindTexture, []byte(keys.textureKey(&keys.doc.Root.Textures[texIx])), "")

	src := keys.doc.Root.Textures[texIx]
	tex := gltf.Texture{Name: src.Name}
	if src.Source != nil {
		imageIx := s.adoptImage(keys, *src.Source)
		tex.Source = &imageIx
	}
	if src.Sampler != nil {
		samplerIx := s.adoptSampler(keys, *src.Sampler)
		tex.Sampler = &samplerIx
	}
	ix := len(s.doc.Root.Textures)
	s.doc.Root.Textures = append(s.doc.Root.Textures, tex)
	s.textureIx[slot] = ix
	return ix
}

func (s *Session) adoptImage(keys *sourceKeys, imgIx int) int {
	slot := keys.image[imgIx]
	if ix, ok := s.imageIx[slot]; ok {
		return ix
	}
	src := keys.doc.Root.Images[imgIx]
	s.store.Intern(dedup.KindImage, keys.imageContent[imgIx], src.MimeType)

	viewIx := s.doc.AppendBufferView(keys.imageContent[imgIx])
	img := gltf.Image{Name: src.Name, MimeType: src.MimeType, BufferView: &viewIx}
	ix := len(s.doc.Root.Images)
	s.doc.Root.Images = append(s.doc.Root.Images, img)
	s.imageIx[slot] = ix
	return ix
}

func (s *Session) adoptSampler(keys *sourceKeys, samplerIx int) int {
	slot := keys.sampler[samplerIx]
	if ix, ok := s.samplerIx[slot]; ok {
		return ix
	}
	s.store.Intern(dedup.KindSampler, []byte(samplerKey(&keys.doc.Root.Samplers[samplerIx])), "")

	ix := len(s.doc.Root.Samplers)
	s.doc.Root.Samplers = append(s.doc.Root.Samplers, cloneSampler(&keys.doc.Root.Samplers[samplerIx]))
	s.samplerIx[slot] = ix
	return ix
}

// rebuildExtension regenerates the variant-mapping blocks from the
// assignment: a root tag list when more than one tag is present, and
// per-primitive override lists, in fold order, only where the
// material actually varies.
func (s *Session) rebuildExtension() {
	for m := range s.doc.Root.Meshes {
		for p := range s.doc.Root.Meshes[m].Primitives {
			prim := &s.doc.Root.Meshes[m].Primitives[p]
			pv := s.assignment[m][p]

			distinct := map[dedup.SlotID]struct{}{}
			for _, slot := range pv {
				distinct[slot] = struct{}{}
			}
			if len(distinct) <= 1 {
				gltf.SetPrimitiveMappings(prim, nil)
				continue
			}

			var mappings []gltf.VariantMapping
			for _, t := range s.tags {
				if slot, ok := pv[t]; ok {
					mappings = append(mappings, gltf.VariantMapping{Tag: t, Material: s.materialIx[slot]})
				}
			}
			gltf.SetPrimitiveMappings(prim, mappings)
		}
	}
	if len(s.tags) > 1 {
		gltf.SetRootVariants(&s.doc.Root, s.tags)
	} else {
		gltf.SetRootVariants(&s.doc.Root, nil)
	}
}

// geometrySegments collects the backing bytes of every accessor a
// primitive references, deduplicated by accessor index, in document
// order with attribute names sorted.
func geometrySegments(doc *gltf.Document) ([]dedup.Segment, error) {
	seen := map[int]struct{}{}
	var ixs []int
	add := func(ix int) {
		if _, ok := seen[ix]; !ok {
			seen[ix] = struct{}{}
			ixs = append(ixs, ix)
		}
	}
	for m := range doc.Root.Meshes {
		for p := range doc.Root.Meshes[m].Primitives {
			prim := &doc.Root.Meshes[m].Primitives[p]
			if prim.Indices != nil {
				add(*prim.Indices)
			}
			names := make([]string, 0, len(prim.Attributes))
			for name := range prim.Attributes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				add(prim.Attributes[name])
			}
		}
	}

	segments := make([]dedup.Segment, 0, len(ixs))
	for _, ix := range ixs {
		content, err := doc.AccessorBytes(ix)
		if err != nil {
			return nil, err
		}
		segments = append(segments, dedup.Segment{Content: content, Meta: accessorMeta(doc, ix)})
	}
	return segments, nil
}

func cloneMaterial(m *gltf.Material) gltf.Material {
	out := *m
	out.EmissiveFactor = append([]float64(nil), m.EmissiveFactor...)
	if m.PBRMetallicRoughness != nil {
		pbr := *m.PBRMetallicRoughness
		pbr.BaseColorFactor = append([]float64(nil), pbr.BaseColorFactor...)
		if pbr.BaseColorTexture != nil {
			t := *pbr.BaseColorTexture
			pbr.BaseColorTexture = &t
		}
		if pbr.MetallicRoughnessTexture != nil {
			t := *pbr.MetallicRoughnessTexture
			pbr.MetallicRoughnessTexture = &t
		}
		pbr.MetallicFactor = cloneFloatPtr(pbr.MetallicFactor)
		pbr.RoughnessFactor = cloneFloatPtr(pbr.RoughnessFactor)
		out.PBRMetallicRoughness = &pbr
	}
	if m.NormalTexture != nil {
		t := *m.NormalTexture
		t.Scale = cloneFloatPtr(t.Scale)
		out.NormalTexture = &t
	}
	if m.OcclusionTexture != nil {
		t := *m.OcclusionTexture
		t.Strength = cloneFloatPtr(t.Strength)
		out.OcclusionTexture = &t
	}
	if m.EmissiveTexture != nil {
		t := *m.EmissiveTexture
		out.EmissiveTexture = &t
	}
	out.AlphaCutoff = cloneFloatPtr(m.AlphaCutoff)
	return out
}

func cloneSampler(s *gltf.Sampler) gltf.Sampler {
	return gltf.Sampler{
		MagFilter: cloneIntPtr(s.MagFilter),
		MinFilter: cloneIntPtr(s.MinFilter),
		WrapS:     cloneIntPtr(s.WrapS),
		WrapT:     cloneIntPtr(s.WrapT),
	}
}

func cloneFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
