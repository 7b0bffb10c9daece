package dedup

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Segment is one byte blob queued for interning, with the metadata
// that affects its reinterpretation (component type, stride, ...).
type Segment struct {
	Content []byte
	Meta    string
}

// InternAll digests the given segments of one kind concurrently, then
// interns them serially in input order and returns their slot IDs.
// Hashing is a pure read of immutable bytes, so digest order does not
// matter; interning stays ordered so slot issue order is stable.
func (s *Store) InternAll(kind Kind, segments []Segment) []SlotID {
	ids := make([]SlotID, len(segments))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			ids[i] = Digest(kind, seg.Content, seg.Meta)
			return nil
		})
	}
	// workers never fail; Wait is only a join point
	_ = g.Wait()

	for i, seg := range segments {
		if _, ok := s.slots[ids[i]]; !ok {
			s.slots[ids[i]] = &Slot{ID: ids[i], Kind: kind, Size: len(seg.Content), tags: map[string]struct{}{}}
			s.order = append(s.order, ids[i])
		}
	}
	return ids
}
