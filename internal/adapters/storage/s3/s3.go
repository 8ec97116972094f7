package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/asset"
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
)

const keyPrefix = "assets/"

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // пусто для AWS, адрес MinIO иначе
	AccessKey string
	SecretKey string
}

// Store keeps assets as objects under the "assets/" prefix of one bucket.
type Store struct {
	client *s3.Client
	bucket string
}

func New(ctx context.Context, o Options) (*Store, error) {
	region := o.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "load aws config")
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Store{client: client, bucket: o.Bucket}, nil
}

func (s *Store) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", customErrors.NewBadRequest("invalid file name")
	}

	body, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return "", customErrors.WrapInternal(err, "read asset")
		}
		body = bytes.NewReader(buf)
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + base),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", customErrors.WrapInternal(err, "put asset")
	}
	return base, nil
}

func (s *Store) Open(ctx context.Context, name string) (*asset.Object, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return nil, customErrors.NewNotFound("asset " + name)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + name),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, customErrors.NewNotFound("asset " + name)
		}
		return nil, customErrors.WrapInternal(err, "get asset")
	}

	return &asset.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		ModTime:     aws.ToTime(out.LastModified),
	}, nil
}
