// Package offload moves detached recording segments to secondary storage.
//
// The archive catalog tracks segment positions; the bytes are opaque here. A
// SegmentStore holds them keyed by recording ID and segment base position, so
// segments detached from the start of a recording can be parked outside the
// archive directory and attached back later.
//
// FSStore is the bundled implementation, keeping segments as flat files in a
// single directory. For S3, see s3_example.go (build tag s3example): copy the
// file into your project and add the AWS SDK.
package offload
