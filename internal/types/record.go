// Package types defines shared types used across the application
package types

// Record represents one inbound MTB-File request record borrowed from the
// broker for the duration of a single processing cycle.
// Both Key and Value are byte slices to handle arbitrary data formats.
// A nil Key means the inbound record carried no key.
type Record struct {
	Key   []byte
	Value []byte
	Meta  *RecordMeta
}

// RecordMeta carries the broker-side position of a record.
// It is required to commit the record's offset after its response
// has been published.
type RecordMeta struct {
	Topic     string
	Partition int
	Offset    int64
}
