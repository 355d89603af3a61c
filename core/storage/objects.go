package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound is returned by GetJSON when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// IsNotFound reports whether err is a missing key or bucket response.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

// EnsureBucket creates the bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, c Client, bucket, region string) error {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// PutJSON encodes v and uploads it as object.
func PutJSON(ctx context.Context, c Client, bucket, object string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", object, err)
	}
	_, err = c.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	return nil
}

// GetJSON downloads object and decodes it into v.
func GetJSON(ctx context.Context, c Client, bucket, object string, v any) error {
	obj, err := c.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return fmt.Errorf("download %s: %w", object, err)
	}
	defer obj.Close()

	if err := json.NewDecoder(obj).Decode(v); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return fmt.Errorf("decode %s: %w", object, err)
	}
	return nil
}
