package gltf

import (
	"encoding/json"
	"fmt"
)

// ExtensionName is the identifier of the variant-mapping extension
// block, attached at the document root and on varying primitives.
const ExtensionName = "FB_material_variants"

// RootExtension lists the variant tags of an asset in display
// (fold) order.
type RootExtension struct {
	Variants []Variant `json:"variants"`
}

// Variant names one selectable appearance option.
type Variant struct {
	Name string `json:"name"`
}

// PrimitiveExtension maps variant tags to material indices for one
// primitive whose material differs across variants.
type PrimitiveExtension struct {
	Mappings []VariantMapping `json:"mappings"`
}

// VariantMapping assigns one material to one tag.
type VariantMapping struct {
	Tag      string `json:"tag"`
	Material int    `json:"material"`
}

// SetRootVariants writes the ordered tag list into the root extension
// block and records the extension in extensionsUsed. An empty tag
// list removes the block.
func SetRootVariants(root *Root, tags []string) {
	if len(tags) == 0 {
		delete(root.Extensions, ExtensionName)
		removeExtensionUsed(root)
		return
	}
	variants := make([]Variant, 0, len(tags))
	for _, tag := range tags {
		variants = append(variants, Variant{Name: tag})
	}
	raw, _ := json.Marshal(RootExtension{Variants: variants})
	if root.Extensions == nil {
		root.Extensions = map[string]json.RawMessage{}
	}
	root.Extensions[ExtensionName] = raw
	addExtensionUsed(root)
}

// RootVariants returns the tag list from the root extension block, in
// stored order, or nil when the block is absent.
func RootVariants(root *Root) ([]string, error) {
	raw, ok := root.Extensions[ExtensionName]
	if !ok {
		return nil, nil
	}
	var ext RootExtension
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("malformed %s root block: %w", ExtensionName, err)
	}
	tags := make([]string, 0, len(ext.Variants))
	for _, v := range ext.Variants {
		tags = append(tags, v.Name)
	}
	return tags, nil
}

// SetPrimitiveMappings writes the ordered tag-to-material override
// list onto a primitive. An empty list removes the block.
func SetPrimitiveMappings(p *Primitive, mappings []VariantMapping) {
	if len(mappings) == 0 {
		delete(p.Extensions, ExtensionName)
		if len(p.Extensions) == 0 {
			p.Extensions = nil
		}
		return
	}
	raw, _ := json.Marshal(PrimitiveExtension{Mappings: mappings})
	if p.Extensions == nil {
		p.Extensions = map[string]json.RawMessage{}
	}
	p.Extensions[ExtensionName] = raw
}

// PrimitiveMappings returns a primitive's override list in stored
// order, or nil when the primitive carries none.
func PrimitiveMappings(p *Primitive) ([]VariantMapping, error) {
	raw, ok := p.Extensions[ExtensionName]
	if !ok {
		return nil, nil
	}
	var ext PrimitiveExtension
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("malformed %s primitive block: %w", ExtensionName, err)
	}
	return ext.Mappings, nil
}

func addExtensionUsed(root *Root) {
	for _, name := range root.ExtensionsUsed {
		if name == ExtensionName {
			return
		}
	}
	root.ExtensionsUsed = append(root.ExtensionsUsed, ExtensionName)
}

func removeExtensionUsed(root *Root) {
	for i, name := range root.ExtensionsUsed {
		if name == ExtensionName {
			root.ExtensionsUsed = append(root.ExtensionsUsed[:i], root.ExtensionsUsed[i+1:]...)
			break
		}
	}
	if len(root.ExtensionsUsed) == 0 {
		root.ExtensionsUsed = nil
	}
}
