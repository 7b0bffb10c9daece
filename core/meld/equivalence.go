package meld

import (
	"bytes"
	"fmt"
	"sort"

	"variant-meld/core/gltf"
)

// checkEquivalence is the compatibility gate between the combined
// baseline and a fold candidate. It compares the geometry-bearing
// structures in document order (nodes, meshes, mesh primitives and
// their accessors) and requires bit-exact accessor content.
// Material references are explicitly excluded. Primitive N of the
// candidate must correspond to primitive N of the baseline; no
// reordering or fuzzy matching is attempted.
func checkEquivalence(base, cand *gltf.Document) error {
	if len(base.Root.Nodes) != len(cand.Root.Nodes) {
		return incompatible("node count differs: baseline has %d, candidate has %d",
			len(base.Root.Nodes), len(cand.Root.Nodes))
	}
	if len(base.Root.Meshes) != len(cand.Root.Meshes) {
		return incompatible("mesh count differs: baseline has %d, candidate has %d",
			len(base.Root.Meshes), len(cand.Root.Meshes))
	}

	for m := range base.Root.Meshes {
		basePrims := base.Root.Meshes[m].Primitives
		candPrims := cand.Root.Meshes[m].Primitives
		if len(basePrims) != len(candPrims) {
			return &IncompatibleError{
				MeshIndex:      m,
				PrimitiveIndex: -1,
				Reason: fmt.Sprintf("primitive count differs: baseline has %d, candidate has %d",
					len(basePrims), len(candPrims)),
			}
		}
		for p := range basePrims {
			if err := checkPrimitive(base, cand, m, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkPrimitive(base, cand *gltf.Document, m, p int) error {
	basePrim := &base.Root.Meshes[m].Primitives[p]
	candPrim := &cand.Root.Meshes[m].Primitives[p]

	switch {
	case basePrim.Indices == nil && candPrim.Indices != nil:
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: "indices",
			Reason: "baseline primitive is unindexed, candidate is indexed"}
	case basePrim.Indices != nil && candPrim.Indices == nil:
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: "indices",
			Reason: "baseline primitive is indexed, candidate is unindexed"}
	case basePrim.Indices != nil:
		if err := checkAccessor(base, cand, *basePrim.Indices, *candPrim.Indices, m, p, "indices"); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(basePrim.Attributes))
	for name := range basePrim.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		candIx, ok := candPrim.Attributes[name]
		if !ok {
			return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: name,
				Reason: "attribute missing from candidate"}
		}
		if err := checkAccessor(base, cand, basePrim.Attributes[name], candIx, m, p, name); err != nil {
			return err
		}
	}
	for name := range candPrim.Attributes {
		if _, ok := basePrim.Attributes[name]; !ok {
			return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: name,
				Reason: "attribute missing from baseline"}
		}
	}
	return nil
}

// checkAccessor requires the two accessors to agree on interpretation
// metadata and to be byte-identical. Bit-exact policy: exporters are
// expected to produce stable output across variant exports, so no
// floating-point tolerance is applied.
func checkAccessor(base, cand *gltf.Document, baseIx, candIx, m, p int, attribute string) error {
	baseAcc := base.Root.Accessors[baseIx]
	candAcc := cand.Root.Accessors[candIx]

	if baseAcc.ComponentType != candAcc.ComponentType {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: fmt.Sprintf("component type differs: %d vs %d", baseAcc.ComponentType, candAcc.ComponentType)}
	}
	if baseAcc.Type != candAcc.Type {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: fmt.Sprintf("element type differs: %s vs %s", baseAcc.Type, candAcc.Type)}
	}
	if baseAcc.Count != candAcc.Count {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: fmt.Sprintf("count differs: %d vs %d", baseAcc.Count, candAcc.Count)}
	}
	if baseAcc.Normalized != candAcc.Normalized {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: "normalized flag differs"}
	}

	baseBytes, err := base.AccessorBytes(baseIx)
	if err != nil {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: fmt.Sprintf("baseline accessor unreadable: %v", err)}
	}
	candBytes, err := cand.AccessorBytes(candIx)
	if err != nil {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: fmt.Sprintf("candidate accessor unreadable: %v", err)}
	}
	if !bytes.Equal(baseBytes, candBytes) {
		return &IncompatibleError{MeshIndex: m, PrimitiveIndex: p, Attribute: attribute,
			Reason: "accessor content differs"}
	}
	return nil
}
