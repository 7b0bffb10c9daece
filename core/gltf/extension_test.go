package gltf_test

import (
	"encoding/json"
	"testing"

	"variant-meld/core/gltf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootVariants(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		var root gltf.Root

		gltf.SetRootVariants(&root, []string{"black", "blue", "clear"})

		tags, err := gltf.RootVariants(&root)
		require.NoError(t, err)
		assert.Equal(t, []string{"black", "blue", "clear"}, tags)
		assert.Contains(t, root.ExtensionsUsed, gltf.ExtensionName)
	})

	t.Run("AbsentBlock", func(t *testing.T) {
		var root gltf.Root

		tags, err := gltf.RootVariants(&root)
		require.NoError(t, err)
		assert.Nil(t, tags)
	})

	t.Run("EmptyListRemovesBlock", func(t *testing.T) {
		var root gltf.Root
		gltf.SetRootVariants(&root, []string{"black"})

		gltf.SetRootVariants(&root, nil)

		tags, err := gltf.RootVariants(&root)
		require.NoError(t, err)
		assert.Nil(t, tags)
		assert.NotContains(t, root.ExtensionsUsed, gltf.ExtensionName)
	})

	t.Run("RemovalKeepsOtherExtensionsUsed", func(t *testing.T) {
		root := gltf.Root{ExtensionsUsed: []string{"KHR_texture_transform"}}
		gltf.SetRootVariants(&root, []string{"black"})

		gltf.SetRootVariants(&root, nil)

		assert.Equal(t, []string{"KHR_texture_transform"}, root.ExtensionsUsed)
	})

	t.Run("MalformedBlock", func(t *testing.T) {
		root := gltf.Root{Extensions: map[string]json.RawMessage{
			gltf.ExtensionName: json.RawMessage(`{"variants":`),
		}}

		_, err := gltf.RootVariants(&root)
		assert.Error(t, err)
	})
}

func TestPrimitiveMappings(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		var prim gltf.Primitive

		gltf.SetPrimitiveMappings(&prim, []gltf.VariantMapping{
			{Tag: "black", Material: 0},
			{Tag: "blue", Material: 1},
		})

		mappings, err := gltf.PrimitiveMappings(&prim)
		require.NoError(t, err)
		require.Len(t, mappings, 2)
		assert.Equal(t, "black", mappings[0].Tag)
		assert.Equal(t, 1, mappings[1].Material)
	})

	t.Run("AbsentBlock", func(t *testing.T) {
		var prim gltf.Primitive

		mappings, err := gltf.PrimitiveMappings(&prim)
		require.NoError(t, err)
		assert.Nil(t, mappings)
	})

	t.Run("EmptyListRemovesBlock", func(t *testing.T) {
		var prim gltf.Primitive
		gltf.SetPrimitiveMappings(&prim, []gltf.VariantMapping{{Tag: "black", Material: 0}})

		gltf.SetPrimitiveMappings(&prim, nil)

		assert.Nil(t, prim.Extensions)
	})
}
