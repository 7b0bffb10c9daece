package meld_test

import (
	"testing"

	"variant-meld/core/gltf"
	"variant-meld/core/gltf/gltftest"
	"variant-meld/core/meld"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foldPair folds base as the baseline and returns the error of folding
// cand on top of it.
func foldPair(t *testing.T, base, cand *gltf.Document) error {
	t.Helper()
	session := meld.NewSession()
	require.NoError(t, session.Fold("base", base))
	return session.Fold("cand", cand)
}

func asIncompatible(t *testing.T, err error) *meld.IncompatibleError {
	t.Helper()
	var incompatible *meld.IncompatibleError
	require.ErrorAs(t, err, &incompatible)
	return incompatible
}

func TestEquivalenceNodeCount(t *testing.T) {
	cand := blueDoc()
	cand.Root.Nodes = append(cand.Root.Nodes, gltf.Node{Name: "extra"})

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, -1, e.MeshIndex)
	assert.Contains(t, e.Reason, "node count differs")
}

func TestEquivalenceMeshCount(t *testing.T) {
	cand := blueDoc()
	cand.Root.Meshes = append(cand.Root.Meshes, gltf.Mesh{})

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, -1, e.MeshIndex)
	assert.Contains(t, e.Reason, "mesh count differs")
}

func TestEquivalencePrimitiveCount(t *testing.T) {
	cand := blueDoc()
	extra := cand.Root.Meshes[0].Primitives[0]
	cand.Root.Meshes[0].Primitives = append(cand.Root.Meshes[0].Primitives, extra)

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, 0, e.MeshIndex)
	assert.Equal(t, -1, e.PrimitiveIndex)
	assert.Contains(t, e.Reason, "primitive count differs")
}

func TestEquivalenceIndexContent(t *testing.T) {
	cand := gltftest.Triangle(
		gltftest.WithImageBytes([]byte("png:blue-texture")),
		gltftest.WithIndices([]uint16{0, 2, 1}), // winding flipped
	)

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, 0, e.MeshIndex)
	assert.Equal(t, 0, e.PrimitiveIndex)
	assert.Equal(t, "indices", e.Attribute)
	assert.Contains(t, e.Reason, "accessor content differs")
}

func TestEquivalencePositionContent(t *testing.T) {
	cand := gltftest.Triangle(
		gltftest.WithPositions([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0.001}}),
	)

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "POSITION", e.Attribute)
	assert.Contains(t, e.Reason, "accessor content differs")
}

func TestEquivalenceIndexedVsUnindexed(t *testing.T) {
	cand := blueDoc()
	cand.Root.Meshes[0].Primitives[0].Indices = nil

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "indices", e.Attribute)
	assert.Contains(t, e.Reason, "unindexed")
}

func TestEquivalenceAttributeMissingFromCandidate(t *testing.T) {
	cand := blueDoc()
	cand.Root.Meshes[0].Primitives[0].Attributes = map[string]int{"NORMAL": 1}

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "POSITION", e.Attribute)
	assert.Contains(t, e.Reason, "missing from candidate")
}

func TestEquivalenceAttributeMissingFromBaseline(t *testing.T) {
	cand := blueDoc()
	cand.Root.Meshes[0].Primitives[0].Attributes["NORMAL"] = 1

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "NORMAL", e.Attribute)
	assert.Contains(t, e.Reason, "missing from baseline")
}

func TestEquivalenceAccessorCount(t *testing.T) {
	cand := gltftest.Triangle(
		gltftest.WithPositions([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}),
	)

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "POSITION", e.Attribute)
	assert.Contains(t, e.Reason, "count differs")
}

func TestEquivalenceComponentType(t *testing.T) {
	cand := blueDoc()
	cand.Root.Accessors[0].ComponentType = gltf.ComponentUnsignedInt

	e := asIncompatible(t, foldPair(t, blackDoc(), cand))
	assert.Equal(t, "indices", e.Attribute)
	assert.Contains(t, e.Reason, "component type differs")
}

func TestEquivalenceErrorMessage(t *testing.T) {
	cand := gltftest.Triangle(gltftest.WithIndices([]uint16{0, 2, 1}))

	err := foldPair(t, blackDoc(), cand)
	assert.EqualError(t, err,
		"incompatible asset: mesh 0 primitive 0 attribute indices: accessor content differs")
}
