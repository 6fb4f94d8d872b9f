//go:build s3example
// +build s3example

// This file provides an example S3 SegmentStore implementation.
// It is excluded from regular builds because it requires the AWS SDK.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package offload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3SegmentStore keeps detached segments in an S3 bucket under
// <prefix><recordingID>/<basePosition>.seg.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	store := offload.NewS3SegmentStore(client, "my-archive", "segments/")
type S3SegmentStore struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ SegmentStore = (*S3SegmentStore)(nil)

// NewS3SegmentStore creates a segment store over bucket.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: Key prefix for segments (e.g., "segments/")
func NewS3SegmentStore(client *s3.Client, bucket, prefix string) *S3SegmentStore {
	return &S3SegmentStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3SegmentStore) key(recordingID, basePosition int64) string {
	return fmt.Sprintf("%s%d/%d%s", s.prefix, recordingID, basePosition, segmentSuffix)
}

// Put uploads the segment contents.
func (s *S3SegmentStore) Put(recordingID, basePosition int64, r io.Reader) (int64, error) {
	// Buffer the segment. For very large segments, consider the SDK's
	// multipart upload manager instead.
	var buf bytes.Buffer
	written, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}

	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(recordingID, basePosition)),
		Body:   bytes.NewReader(buf.Bytes()),
		Metadata: map[string]string{
			"recording-id":  strconv.FormatInt(recordingID, 10),
			"base-position": strconv.FormatInt(basePosition, 10),
			"offload-time":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("s3 segment upload failed: %w", err)
	}
	return written, nil
}

// Get opens a stored segment for reading.
func (s *S3SegmentStore) Get(recordingID, basePosition int64) (io.ReadCloser, error) {
	result, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(recordingID, basePosition)),
	})
	if err != nil {
		return nil, ErrSegmentNotFound
	}
	return result.Body, nil
}

// Delete removes a stored segment.
func (s *S3SegmentStore) Delete(recordingID, basePosition int64) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(recordingID, basePosition)),
	})
	return err
}

// List returns the stored segments for a recording, ordered by base position.
func (s *S3SegmentStore) List(recordingID int64) ([]Segment, error) {
	prefix := fmt.Sprintf("%s%d/", s.prefix, recordingID)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var segments []Segment
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			stem, found := strings.CutSuffix(strings.TrimPrefix(*obj.Key, prefix), segmentSuffix)
			if !found {
				continue
			}
			pos, err := strconv.ParseInt(stem, 10, 64)
			if err != nil {
				continue
			}
			seg := Segment{RecordingID: recordingID, BasePosition: pos}
			if obj.Size != nil {
				seg.Size = *obj.Size
			}
			if obj.LastModified != nil {
				seg.ModifiedAt = *obj.LastModified
			}
			segments = append(segments, seg)
		}
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].BasePosition < segments[j].BasePosition
	})
	return segments, nil
}
