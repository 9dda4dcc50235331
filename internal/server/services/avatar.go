package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Settings locates the bucket avatars are uploaded to.
type S3Settings struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
	URLTTL   time.Duration
}

// AvatarService hands out presigned upload URLs for profile images. The
// resulting key is then saved as the account image through UpsertUser.
type AvatarService struct {
	settings S3Settings
	logger   logging.Logger
}

func NewAvatarService(settings S3Settings, logger logging.Logger) *AvatarService {
	if settings.URLTTL <= 0 {
		settings.URLTTL = 15 * time.Minute
	}
	return &AvatarService{settings: settings, logger: logger.With("module", "avatar_service")}
}

func avatarKey(accountID int64) string {
	return fmt.Sprintf("avatars/%d/%v", accountID, uuid.New())
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.settings.User,
			s.settings.Password,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.settings.Endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL returns a fresh object key under the caller's prefix and a
// presigned PUT URL for it.
func (s *AvatarService) UploadURL(ctx context.Context, caller Caller) (key, url string, err error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client", "error", err)
		return "", "", err
	}

	bucket := s.settings.Bucket
	key = avatarKey(caller.ID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.settings.URLTTL))
	if err != nil {
		s.logger.Error(ctx, "presign put", "account_id", caller.ID, "error", err)
		return "", "", err
	}

	return key, req.URL, nil
}
