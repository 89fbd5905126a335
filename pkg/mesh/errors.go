package mesh

import "fmt"

// InvalidMeshError reports structurally empty input: no faces, no edges,
// or anything else that would leave a metric without data to reduce.
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return fmt.Sprintf("invalid mesh: %s", e.Reason)
}

// MalformedMeshError reports input that has data but breaks the mesh
// invariants, such as mismatched counts or non-finite coordinates.
type MalformedMeshError struct {
	Reason string
	Index  int // offending face, vertex or edge index; -1 if not applicable
}

func (e *MalformedMeshError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("malformed mesh: %s (index %d)", e.Reason, e.Index)
	}
	return fmt.Sprintf("malformed mesh: %s", e.Reason)
}

func invalid(reason string) error {
	return &InvalidMeshError{Reason: reason}
}

func malformed(reason string, index int) error {
	return &MalformedMeshError{Reason: reason, Index: index}
}
