package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// s3API abstracts the S3 operations used by [S3]. The [s3.Client] type
// satisfies this interface.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores audio in an S3-compatible bucket (AWS, MinIO, R2). The caller is
// responsible for configuring the client with credentials, region, and
// endpoint. References are object keys under the optional prefix.
type S3 struct {
	client s3API
	bucket string
	prefix string
}

// NewS3 creates an S3-backed archive. Prefix is prepended to all object
// keys; pass "" for no prefix.
func NewS3(client s3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (a *S3) key(ref string) string {
	if a.prefix == "" {
		return ref
	}
	return a.prefix + "/" + ref
}

// Store uploads the WAV payload via PutObject.
func (a *S3) Store(ctx context.Context, wav []byte, speakerID string) (string, error) {
	ref := objectName(speakerID, time.Now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(ref)),
		Body:        bytes.NewReader(wav),
		ContentType: aws.String("audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("put archive object: %w", err)
	}
	return ref, nil
}

// Load fetches a stored payload. Missing keys wrap os.ErrNotExist.
func (a *S3) Load(ctx context.Context, ref string) ([]byte, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(ref)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("archive object %s: %w", ref, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get archive object %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive object %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes a stored payload. S3 DeleteObject is idempotent, so missing
// keys succeed.
func (a *S3) Delete(ctx context.Context, ref string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(ref)),
	})
	if err != nil {
		return fmt.Errorf("delete archive object %s: %w", ref, err)
	}
	return nil
}

// isS3NotFound reports whether err indicates the object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ Archive = (*S3)(nil)
