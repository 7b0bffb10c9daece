package dedup

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Kind classifies the content a slot stores. Two blobs of different
// kinds never share a slot, even when byte-identical.
type Kind uint8

const (
	KindGeometry Kind = iota + 1
	KindImage
	KindSampler
	KindTexture
	KindMaterial
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindImage:
		return "image"
	case KindSampler:
		return "sampler"
	case KindTexture:
		return "texture"
	case KindMaterial:
		return "material"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// SlotID is the canonical identity of one deduplicated storage unit:
// the kind plus a content digest over the bytes and any metadata that
// changes their interpretation. Equal IDs are the same slot.
type SlotID string

// Digest computes the SlotID for the given content without touching
// any store. Interning the same kind, metadata and bytes anywhere
// yields this exact ID.
func Digest(kind Kind, content []byte, meta string) SlotID {
	h := blake3.New()
	var prefix [5]byte
	prefix[0] = byte(kind)
	binary.LittleEndian.PutUint32(prefix[1:], uint32(len(meta)))
	h.Write(prefix[:])
	h.Write([]byte(meta))
	h.Write(content)
	sum := h.Sum(nil)
	return SlotID(kind.String() + ":" + hex.EncodeToString(sum[:16]))
}

// Slot is one content-addressed storage unit together with the set of
// variant tags that reference it.
type Slot struct {
	ID   SlotID
	Kind Kind

	// Size is the byte length of the interned content. Geometry and
	// image slots intern raw asset bytes, so their Size is a real byte
	// footprint; sampler, texture and material slots intern a canonical
	// key string, so their Size is the key length. Size reporting sums
	// byte-backed kinds only.
	Size int

	tags    map[string]struct{}
	tagList []string
}

// Tags returns the referencing tags in first-reference order.
func (s *Slot) Tags() []string {
	return s.tagList
}

// TagCount returns how many distinct tags reference this slot.
func (s *Slot) TagCount() int {
	return len(s.tags)
}

// HasTag reports whether the given tag references this slot.
func (s *Slot) HasTag(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Store is a session-scoped, content-addressed registry of materials,
// textures and binary segments. It is created fresh per meld session
// and discarded with it; there is no process-wide state.
type Store struct {
	slots map[SlotID]*Slot
	order []SlotID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{slots: map[SlotID]*Slot{}}
}

// Intern registers content under its canonical identity and returns
// the slot ID. Interning byte-identical content of the same kind and
// metadata is idempotent: the previously issued ID comes back and no
// storage is added.
func (s *Store) Intern(kind Kind, content []byte, meta string) SlotID {
	id := Digest(kind, content, meta)
	if _, ok := s.slots[id]; !ok {
		s.slots[id] = &Slot{ID: id, Kind: kind, Size: len(content), tags: map[string]struct{}{}}
		s.order = append(s.order, id)
	}
	return id
}

// Reference records that the given tag uses the slot. Unknown slot
// IDs are ignored.
func (s *Store) Reference(id SlotID, tag string) {
	slot, ok := s.slots[id]
	if !ok || tag == "" {
		return
	}
	if _, seen := slot.tags[tag]; !seen {
		slot.tags[tag] = struct{}{}
		slot.tagList = append(slot.tagList, tag)
	}
}

// Slot returns the slot for the given ID, if present.
func (s *Store) Slot(id SlotID) (*Slot, bool) {
	slot, ok := s.slots[id]
	return slot, ok
}

// Len returns the number of distinct slots.
func (s *Store) Len() int {
	return len(s.slots)
}

// IDs returns all slot IDs in interning order.
func (s *Store) IDs() []SlotID {
	return append([]SlotID(nil), s.order...)
}

// OfKind returns the slots of one kind, in interning order.
func (s *Store) OfKind(kind Kind) []*Slot {
	var out []*Slot
	for _, id := range s.order {
		if slot := s.slots[id]; slot.Kind == kind {
			out = append(out, slot)
		}
	}
	return out
}
