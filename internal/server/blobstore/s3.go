package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/avolkovs/keepsake/internal/common"
	sc "github.com/avolkovs/keepsake/internal/server/config"
)

// S3Store keeps content blobs in an S3-compatible bucket (MinIO in
// development). Keys are users/<userID>/<sha256(path)> so the storage layer
// never learns plaintext path names.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config error: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func storageKey(userID, path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("users/%s/%s", userID, hex.EncodeToString(sum[:]))
}

func (s *S3Store) Get(ctx context.Context, userID, path string) (string, error) {
	key := storageKey(userID, path)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("s3 get error: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("s3 read error: %w", err)
	}

	return string(data), nil
}

func (s *S3Store) Put(ctx context.Context, userID, path, content string) error {
	key := storageKey(userID, path)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader([]byte(content)),
	})
	if err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}

	return nil
}

func (s *S3Store) Delete(ctx context.Context, userID, path string) error {
	key := storageKey(userID, path)

	// DeleteObject succeeds for absent keys, which gives us idempotency.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("s3 delete error: %w", err)
	}

	return nil
}

func (s *S3Store) Move(ctx context.Context, userID, oldPath, newPath string) error {
	content, err := s.Get(ctx, userID, oldPath)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, userID, newPath, content); err != nil {
		return err
	}
	return s.Delete(ctx, userID, oldPath)
}
