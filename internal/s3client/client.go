package s3client

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "eiractl/config"
	"eiractl/internal/datasets"
)

type Client struct {
	s3Client *s3.Client
	uploader *manager.Uploader
}

// New builds an S3 client. Static credentials are used when both keys are
// set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client),
	}, nil
}

// CopyDataset copies every object of the dataset from its main bucket into
// its sub bucket and returns the destination keys in listing order.
func (c *Client) CopyDataset(ctx context.Context, d datasets.Descriptor) ([]string, error) {
	copied := []string{}

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.MainBucket),
		Prefix: aws.String(d.Prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return copied, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			srcKey := aws.ToString(obj.Key)
			if !d.Matches(srcKey) {
				continue
			}
			destKey := d.DestinationKey(srcKey)

			_, err := c.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
				Bucket:     aws.String(d.SubBucket),
				Key:        aws.String(destKey),
				CopySource: aws.String(copySource(d.MainBucket, srcKey)),
			})
			if err != nil {
				return copied, fmt.Errorf("failed to copy %s: %w", srcKey, err)
			}
			copied = append(copied, destKey)
		}
	}

	return copied, nil
}

// UploadFile uploads one local file to bucket/key.
func (c *Client) UploadFile(ctx context.Context, bucket, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(DetectContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// copySource URL-encodes each key segment as CopyObject requires.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// BuildRemotePath joins a destination folder and a file name into a key.
func BuildRemotePath(destinationPath, filename string) string {
	if destinationPath == "" {
		return filename
	}

	destinationPath = strings.TrimPrefix(destinationPath, "/")

	if !strings.HasSuffix(destinationPath, "/") {
		destinationPath += "/"
	}

	return destinationPath + filename
}

func DetectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	contentTypes := map[string]string{
		".txt":  "text/plain",
		".json": "application/json",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".mp3":  "audio/mpeg",
		".wav":  "audio/wav",
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".mkv":  "video/x-matroska",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
