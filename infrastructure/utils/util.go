package utils

import "github.com/google/uuid"

// NewVideoJobID mints a job identifier like
// "ugc_0b51e9c2-3f44-4f7d-9a1e-2d6c8b7a5e31".
func NewVideoJobID() string {
	return "ugc_" + uuid.NewString()
}
