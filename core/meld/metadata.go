package meld

import (
	"variant-meld/core/dedup"
	"variant-meld/core/glb"
)

// SizeProfile is the derived size statistics of the combined document
// at one point in a session. It is recomputed fresh from the store and
// assignment on every request; nothing is cached.
type SizeProfile struct {
	// TotalBytes is the encoded size of the combined container.
	TotalBytes int

	// TextureBytesTotal sums the byte size of every interned texture
	// image slot once, however many tags reference it.
	TextureBytesTotal int

	// TextureBytesVariational sums only slots whose tag-reference set
	// is smaller than the set of tags folded so far, i.e. content that
	// does not apply uniformly to every variant.
	TextureBytesVariational int

	// PerTagTextureBytes sums, per tag, the texture bytes active when
	// that variant is selected (shared content counts for every tag).
	PerTagTextureBytes map[string]int
}

// Summarize computes the current size profile. It is a pure read of
// already-materialized session state.
func (s *Session) Summarize() (SizeProfile, error) {
	profile := SizeProfile{PerTagTextureBytes: map[string]int{}}
	if s.doc == nil {
		return profile, nil
	}

	encoded, err := glb.Encode(s.doc)
	if err != nil {
		return profile, err
	}
	profile.TotalBytes = len(encoded)

	for _, slot := range s.store.OfKind(dedup.KindImage) {
		if slot.TagCount() == 0 {
			// interned but never assigned to a variant; not texture traffic
			continue
		}
		profile.TextureBytesTotal += slot.Size
		if slot.TagCount() < len(s.tags) {
			profile.TextureBytesVariational += slot.Size
		}
		for _, tag := range slot.Tags() {
			profile.PerTagTextureBytes[tag] += slot.Size
		}
	}
	return profile, nil
}
