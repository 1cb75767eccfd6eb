package setup

// Default build-time variable to setup usage metrics.
// These values are overridden via ldflags
var (
	SegmentWriteKey = "unknown-segment-write-key"
)
