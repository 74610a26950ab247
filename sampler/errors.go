package sampler

import "errors"

var (
	// ErrInvalidMesh is returned for meshes with no triangles, zero surface
	// area, malformed buffers or a singular world transform.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrInvalidArgument is returned for a non-positive sample count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned when the mesh's world matrix is stale.
	// Call Transform.UpdateWorldMatrix after moving the mesh.
	ErrNotReady = errors.New("mesh transform not ready")
)
