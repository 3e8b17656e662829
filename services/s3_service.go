package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/types"
)

// S3Service stores uploaded media (avatars, company logos)
type S3Service struct {
	env *types.Environment
}

func NewS3Service(env *types.Environment) *S3Service {
	return &S3Service{
		env: env,
	}
}

// UploadMedia uploads the content and returns the server-relative path
// stored on the user profile
func (s3s *S3Service) UploadMedia(bucket, path string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", types.ErrBadRequest
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ioReader := bytes.NewReader(content)
	_, uErr := s3s.env.S3Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
		Body:   ioReader,
	})
	if uErr != nil {
		global.Logger.Log(uErr.Error(), "failed to upload media", path)
		return "", uErr
	}
	return fmt.Sprintf("/media/%s", path), nil
}

// DeleteMedia removes media at the specific bucket and path
func (s3s *S3Service) DeleteMedia(bucket, path string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s3s.env.S3Client.DeleteObject(ctx, input)
	if err != nil {
		var noKey *s3Types.NoSuchKey
		var apiErr *smithy.GenericAPIError
		if errors.As(err, &noKey) {
			global.Logger.Log("warning", "object does not exist", "objectKey", path)
			return types.ErrNotFound
		} else if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "AccessDenied" {
				global.Logger.Log("warning", "access denied", "objectKey", path)
				return types.ErrNotAuthorized
			}
			global.Logger.Log("error", "error deleting object", "error", err)
			return err
		}
	}
	return nil
}
