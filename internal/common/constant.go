package common

// Key prefixes partition the local durable store namespace. Records and
// photos never share a prefix, so a drain iterating records never touches
// photo payloads directly.
const (
	RecordKeyPrefix = "audit-"
	PhotoKeyPrefix  = "photo-"
)
