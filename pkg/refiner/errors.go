package refiner

import "errors"

// Refiner errors. Stage entry points wrap them with detail; test with errors.Is.
var (
	ErrInvalidTopology           = errors.New("invalid topology")
	ErrInvalidAttributeLength    = errors.New("invalid attribute length")
	ErrInvalidMaterialAssignment = errors.New("invalid material assignment")
	ErrMissingAttribute          = errors.New("missing attribute")
	ErrNotTriangulated           = errors.New("mesh is not triangulated")
)
