package documents

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Kind is a property document type offered in the post-booking menu.
type Kind string

const (
	KindBrochure   Kind = "brochure"
	KindFloorPlan  Kind = "floor_plan"
	KindPriceSheet Kind = "price_sheet"
)

// Kinds lists document types in menu order.
var Kinds = []Kind{KindBrochure, KindFloorPlan, KindPriceSheet}

// ErrUnavailable is returned when no document of the requested kind exists.
var ErrUnavailable = errors.New("documents: not available")

// KindFromChoice maps a 1-based menu choice to a Kind.
func KindFromChoice(choice int) (Kind, bool) {
	if choice < 1 || choice > len(Kinds) {
		return "", false
	}
	return Kinds[choice-1], true
}

// ObjectKey is the storage key for a property document.
func ObjectKey(propertyID string, kind Kind) string {
	return path.Join("properties", propertyID, string(kind)+".pdf")
}

// StaticLinker builds public links under a base URL.
type StaticLinker struct {
	base *url.URL
}

// NewStaticLinker parses baseURL; an empty base yields a linker that reports
// every document as unavailable.
func NewStaticLinker(baseURL string) (*StaticLinker, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return &StaticLinker{}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("documents: invalid base url %q", baseURL)
	}
	return &StaticLinker{base: u}, nil
}

func (l *StaticLinker) Link(ctx context.Context, propertyID string, kind Kind) (string, error) {
	if l.base == nil {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(propertyID) == "" {
		return "", fmt.Errorf("documents: property id required")
	}
	return l.base.JoinPath(ObjectKey(propertyID, kind)).String(), nil
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Linker hands out time-limited presigned links to documents in a bucket.
type S3Linker struct {
	presign presigner
	bucket  string
	ttl     time.Duration
}

// NewS3Linker builds a linker over an S3 client.
func NewS3Linker(client *s3.Client, bucket string, ttl time.Duration) *S3Linker {
	if client == nil {
		panic("documents: s3 client required")
	}
	return newS3Linker(s3.NewPresignClient(client), bucket, ttl)
}

func newS3Linker(p presigner, bucket string, ttl time.Duration) *S3Linker {
	if bucket == "" {
		panic("documents: bucket required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &S3Linker{presign: p, bucket: bucket, ttl: ttl}
}

func (l *S3Linker) Link(ctx context.Context, propertyID string, kind Kind) (string, error) {
	if strings.TrimSpace(propertyID) == "" {
		return "", fmt.Errorf("documents: property id required")
	}
	req, err := l.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(ObjectKey(propertyID, kind)),
	}, s3.WithPresignExpires(l.ttl))
	if err != nil {
		return "", fmt.Errorf("documents: presign %s: %w", kind, err)
	}
	return req.URL, nil
}
