package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps appointment documents as JSON objects with a monthly JSONL
// manifest. Turns are left to the SQL store.
type S3Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewS3Store creates an S3Store. If bucket is empty, all operations are no-ops.
func NewS3Store(s3Client S3API, bucket string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

func (s *S3Store) RecordTurn(context.Context, TurnRecord) error { return nil }

// RecordAppointment writes the appointment document and appends it to the manifest.
func (s *S3Store) RecordAppointment(ctx context.Context, rec AppointmentRecord) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("archive: marshal appointment: %w", err)
	}

	at := rec.BookedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	key := fmt.Sprintf("appointments/v1/by-date/%d/%02d/%02d/%s.json", at.Year(), at.Month(), at.Day(), rec.AppointmentID)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	s.logger.Info("archived appointment", "appointment_id", rec.AppointmentID, "s3_key", key)

	entry := ManifestEntry{
		AppointmentID: rec.AppointmentID,
		S3Key:         key,
		PropertyID:    rec.PropertyID,
		Language:      rec.Language,
		ArchivedAt:    at.Format(time.RFC3339),
	}
	if err := s.appendManifest(ctx, at, entry); err != nil {
		s.logger.Warn("failed to append manifest", "error", err, "appointment_id", rec.AppointmentID)
	}
	return nil
}

// appendManifest rewrites the monthly manifest with one more line; S3 has no append.
func (s *S3Store) appendManifest(ctx context.Context, at time.Time, entry ManifestEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}
	key := fmt.Sprintf("appointments/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())

	var existing []byte
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		existing, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", key)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	if _, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	}); err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}

// Fanout writes every record to each member archive and joins their errors.
type Fanout []Archive

func (f Fanout) RecordTurn(ctx context.Context, rec TurnRecord) error {
	var errs []error
	for _, a := range f {
		if a == nil {
			continue
		}
		if err := a.RecordTurn(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) RecordAppointment(ctx context.Context, rec AppointmentRecord) error {
	var errs []error
	for _, a := range f {
		if a == nil {
			continue
		}
		if err := a.RecordAppointment(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
