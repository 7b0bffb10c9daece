package meld_test

import (
	"testing"

	"variant-meld/core/dedup"
	"variant-meld/core/gltf/gltftest"
	"variant-meld/core/meld"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptySession(t *testing.T) {
	profile, err := meld.NewSession().Summarize()

	require.NoError(t, err)
	assert.Zero(t, profile.TotalBytes)
	assert.Zero(t, profile.TextureBytesTotal)
	assert.Zero(t, profile.TextureBytesVariational)
	assert.Empty(t, profile.PerTagTextureBytes)
}

func TestSummarizeSingleVariant(t *testing.T) {
	session := meld.NewSession()
	require.NoError(t, session.Fold("black", blackDoc()))

	profile, err := session.Summarize()
	require.NoError(t, err)

	out, err := session.Export()
	require.NoError(t, err)

	imageSize := len("png:black-texture")
	assert.Equal(t, len(out), profile.TotalBytes)
	assert.Equal(t, imageSize, profile.TextureBytesTotal)
	// the only image applies to the only tag: nothing is variational
	assert.Zero(t, profile.TextureBytesVariational)
	assert.Equal(t, map[string]int{"black": imageSize}, profile.PerTagTextureBytes)
}

func TestSummarizeDistinctTextures(t *testing.T) {
	session := meld.NewSession()
	require.NoError(t, session.Fold("black", blackDoc()))
	require.NoError(t, session.Fold("blue", blueDoc()))
	require.NoError(t, session.Fold("clear", clearDoc()))

	profile, err := session.Summarize()
	require.NoError(t, err)

	black := len("png:black-texture")
	blue := len("png:blue-texture")
	clear := len("png:clear-texture")

	// every image belongs to exactly one of three tags, so all texture
	// content is variational
	assert.Equal(t, black+blue+clear, profile.TextureBytesTotal)
	assert.Equal(t, black+blue+clear, profile.TextureBytesVariational)
	assert.Equal(t, map[string]int{
		"black": black,
		"blue":  blue,
		"clear": clear,
	}, profile.PerTagTextureBytes)
}

func TestSummarizeSharedTexture(t *testing.T) {
	shared := []byte("png:shared-wood-grain")
	black := gltftest.Triangle(gltftest.WithImageBytes(shared), gltftest.WithBaseColor(0, 0, 0, 1))
	blue := gltftest.Triangle(gltftest.WithImageBytes(shared), gltftest.WithBaseColor(0, 0, 1, 1))

	session := meld.NewSession()
	require.NoError(t, session.Fold("black", black))
	require.NoError(t, session.Fold("blue", blue))

	profile, err := session.Summarize()
	require.NoError(t, err)

	// one image referenced by both tags: counted once, not variational,
	// and charged to each tag
	assert.Equal(t, len(shared), profile.TextureBytesTotal)
	assert.Zero(t, profile.TextureBytesVariational)
	assert.Equal(t, map[string]int{
		"black": len(shared),
		"blue":  len(shared),
	}, profile.PerTagTextureBytes)
}

func TestSummarizeAfterEachFold(t *testing.T) {
	session := meld.NewSession()
	black := len("png:black-texture")
	blue := len("png:blue-texture")
	clear := len("png:clear-texture")

	// single tag: nothing varies yet
	require.NoError(t, session.Fold("black", blackDoc()))
	profile, err := session.Summarize()
	require.NoError(t, err)
	assert.Equal(t, black, profile.TextureBytesTotal)
	assert.Zero(t, profile.TextureBytesVariational)

	// second tag: both distinct textures now vary
	require.NoError(t, session.Fold("blue", blueDoc()))
	profile, err = session.Summarize()
	require.NoError(t, err)
	assert.Equal(t, black+blue, profile.TextureBytesTotal)
	assert.Equal(t, black+blue, profile.TextureBytesVariational)

	// third tag grows the totals by its own texture only; geometry
	// stays what the baseline interned
	geometryBefore := geometryBytes(session)
	require.NoError(t, session.Fold("clear", clearDoc()))
	profile, err = session.Summarize()
	require.NoError(t, err)
	assert.Equal(t, black+blue+clear, profile.TextureBytesTotal)
	assert.Equal(t, geometryBefore, geometryBytes(session))
}

func geometryBytes(s *meld.Session) int {
	total := 0
	for _, slot := range s.Store().OfKind(dedup.KindGeometry) {
		total += slot.Size
	}
	return total
}

func TestSummarizeMixedSharing(t *testing.T) {
	// black and blue share one texture, clear brings its own: only the
	// unshared texture is variational
	shared := []byte("png:shared-wood-grain")
	black := gltftest.Triangle(gltftest.WithImageBytes(shared), gltftest.WithBaseColor(0, 0, 0, 1))
	blue := gltftest.Triangle(gltftest.WithImageBytes(shared), gltftest.WithBaseColor(0, 0, 1, 1))

	session := meld.NewSession()
	require.NoError(t, session.Fold("black", black))
	require.NoError(t, session.Fold("blue", blue))
	require.NoError(t, session.Fold("clear", clearDoc()))

	profile, err := session.Summarize()
	require.NoError(t, err)

	clear := len("png:clear-texture")
	assert.Equal(t, len(shared)+clear, profile.TextureBytesTotal)
	// shared is referenced by 2 of 3 tags, clear's by 1 of 3: both
	// fall short of every tag, so both are variational
	assert.Equal(t, len(shared)+clear, profile.TextureBytesVariational)
	assert.Equal(t, map[string]int{
		"black": len(shared),
		"blue":  len(shared),
		"clear": clear,
	}, profile.PerTagTextureBytes)
}
