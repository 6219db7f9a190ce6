package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tempowatch/sentinel/internal/domain"
)

// ReportArchive implements domain.ReportArchive.
//
// Key schema:
//
//	reports/{pair}/{RFC3339 timestamp}.json
type ReportArchive struct {
	client *s3.Client
	bucket string
}

// NewReportArchive creates a ReportArchive writing to the client's bucket.
func NewReportArchive(c *Client) *ReportArchive {
	return &ReportArchive{
		client: c.S3(),
		bucket: c.Bucket(),
	}
}

// Store uploads the serialized report and returns its storage key. Report
// documents are small JSON payloads, so a single PutObject suffices.
func (a *ReportArchive) Store(ctx context.Context, pair string, generatedAt time.Time, body []byte) (string, error) {
	key := ReportKey(pair, generatedAt)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3blob: put report %s: %w", key, err)
	}
	return key, nil
}

// ReportKey builds the object key for a report.
func ReportKey(pair string, generatedAt time.Time) string {
	return fmt.Sprintf("reports/%s/%s.json", pair, generatedAt.UTC().Format(time.RFC3339))
}

// Compile-time interface check.
var _ domain.ReportArchive = (*ReportArchive)(nil)
