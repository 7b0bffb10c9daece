package meld

import "fmt"

// DuplicateTagError reports a variant tag used twice in one session.
// It is raised before any interning, so the combined document is
// untouched.
type DuplicateTagError struct {
	Tag string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("duplicate variant tag %q in meld session", e.Tag)
}

// IncompatibleError reports the first structural divergence between
// the combined baseline and a candidate source. Index fields are -1
// when the divergence is not localized to that level.
type IncompatibleError struct {
	MeshIndex      int
	PrimitiveIndex int
	Attribute      string
	Reason         string
}

func (e *IncompatibleError) Error() string {
	msg := "incompatible asset"
	if e.MeshIndex >= 0 {
		msg += fmt.Sprintf(": mesh %d", e.MeshIndex)
		if e.PrimitiveIndex >= 0 {
			msg += fmt.Sprintf(" primitive %d", e.PrimitiveIndex)
			if e.Attribute != "" {
				msg += fmt.Sprintf(" attribute %s", e.Attribute)
			}
		}
	}
	return msg + ": " + e.Reason
}

// incompatible builds a document-level IncompatibleError.
func incompatible(format string, args ...any) *IncompatibleError {
	return &IncompatibleError{
		MeshIndex:      -1,
		PrimitiveIndex: -1,
		Reason:         fmt.Sprintf(format, args...),
	}
}
