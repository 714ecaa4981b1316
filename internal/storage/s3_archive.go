package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/reaxml"
)

// IDocumentArchive stores serialized export documents for audit and
// diagnostics. Archiving is best-effort: callers log failures and move on.
type IDocumentArchive interface {
	ArchiveDocument(ctx context.Context, propertyID int64, attemptID string, document []byte) error
}

// s3Archive implements IDocumentArchive on S3.
type s3Archive struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewS3Archive creates a new S3-backed document archive.
func NewS3Archive(cfg *config.Config) (IDocumentArchive, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Use static credentials from config for simplicity
		// For production, prefer IAM roles or other secure credential methods
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Archive{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// ArchiveDocument uploads one serialized document. The key embeds the
// property id and the attempt correlation id so an attempt's exact wire
// payload can be pulled up from its log line.
func (a *s3Archive) ArchiveDocument(ctx context.Context, propertyID int64, attemptID string, document []byte) error {
	objectKey := fmt.Sprintf("exports/%d/%s.xml", propertyID, attemptID)

	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(document),
		ContentType: aws.String(reaxml.ContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to archive document %s: %w", objectKey, err)
	}
	return nil
}
