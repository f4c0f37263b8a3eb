package id

import "github.com/google/uuid"

// New returns a random run identifier used to correlate logs, spans and metrics.
func New() string {
	return uuid.NewString()
}
