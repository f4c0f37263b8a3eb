package domain

import "time"

// RunUsage summarises one completed or failed run.
type RunUsage struct {
	RunID           string
	Variants        int
	PixelsProcessed int64
	BytesWritten    int64
	SourceBytes     int64
	BytesSaved      int64
	ComputeTimeMS   int64
	CreatedAt       time.Time
}
