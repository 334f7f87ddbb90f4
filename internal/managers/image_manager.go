// Package managers stores profile images in an S3 bucket. Only the object
// name is persisted on the user row; the bucket is the source of truth for
// the bytes.
package managers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ImageMgr is an interface that outlines the contract for profile image storage.
type ImageMgr interface {
	StoreProfileImage(ctx context.Context, userID uuid.UUID, encoded string) (string, error)
	DeleteProfileImage(ctx context.Context, filename string) error
}

// s3Client is the slice of the S3 API the image manager uses.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageManager is a concrete implementation of the ImageMgr interface backed
// by an S3 bucket.
type ImageManager struct {
	client s3Client
	bucket string
}

// NewImageManager creates an ImageManager from the ambient AWS configuration.
func NewImageManager(ctx context.Context) (ImageMgr, error) {
	log.Info("Initializing image manager")

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable not set")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return &ImageManager{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// StoreProfileImage decodes the base64 payload, uploads it under a fresh
// object name derived from the owning user and returns that name.
func (im *ImageManager) StoreProfileImage(ctx context.Context, userID uuid.UUID, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding profile image: %w", err)
	}

	contentType := http.DetectContentType(data)
	filename := userID.String() + "-" + uuid.New().String()

	_, err = im.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(im.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading profile image: %w", err)
	}

	log.Debug("Stored profile image ", filename)
	return filename, nil
}

// DeleteProfileImage removes the stored object. Deleting an absent object is
// not an error.
func (im *ImageManager) DeleteProfileImage(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}

	_, err := im.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(im.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("deleting profile image: %w", err)
	}

	return nil
}
