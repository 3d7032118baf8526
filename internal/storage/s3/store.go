package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/islishude/arcfind"
	"github.com/islishude/arcfind/internal/locator"
)

type Store struct {
	client *awss3.Client
	tm     *transfermanager.Client
}

type Metadata struct {
	Size int64
	ETag string
}

func New(ctx context.Context) (*Store, error) {
	var cfg aws.Config
	var err error
	if retryMax, ok := intFromEnv("ARCFIND_S3_MAX_RETRIES"); ok {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(retryMax))
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("ARCFIND_S3_USE_PATH_STYLE")), "true") {
			o.UsePathStyle = true
		}
	})
	tm := transfermanager.New(client, func(o *transfermanager.Options) {
		if v, ok := intFromEnv("ARCFIND_S3_PART_SIZE_MB"); ok && v > 0 {
			o.PartSizeBytes = int64(v) * 1024 * 1024
		}
		if v, ok := intFromEnv("ARCFIND_S3_CONCURRENCY"); ok && v > 0 {
			o.Concurrency = v
		}
	})
	return &Store{client: client, tm: tm}, nil
}

// Fetch downloads the whole archive object; the search engine needs the
// bytes in memory anyway once nested descent comes into play.
func (s *Store) Fetch(ctx context.Context, ref locator.Ref) ([]byte, Metadata, error) {
	if ref.Kind != locator.KindS3 {
		return nil, Metadata{}, fmt.Errorf("ref %q is not s3", ref.Raw)
	}
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, Metadata{}, err
	}
	defer out.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("download s3://%s/%s: %w", ref.Bucket, ref.Key, err)
	}
	return data, Metadata{Size: aws.ToInt64(out.ContentLength), ETag: aws.ToString(out.ETag)}, nil
}

// ExtractSink uploads matched members under a bucket prefix, probing with
// HeadObject for a free key before each upload so earlier extractions are
// never overwritten.
type ExtractSink struct {
	store  *Store
	target locator.Ref
}

var _ arcfind.Sink = (*ExtractSink)(nil)

func (s *Store) NewExtractSink(target locator.Ref) (*ExtractSink, error) {
	if target.Kind != locator.KindS3 {
		return nil, fmt.Errorf("extract target %q is not s3", target.Raw)
	}
	return &ExtractSink{store: s, target: target}, nil
}

func (e *ExtractSink) Store(ctx context.Context, rec arcfind.MatchRecord) error {
	key, err := e.uniqueKey(ctx, path.Base(rec.Name))
	if err != nil {
		return err
	}
	_, err = e.store.tm.UploadObject(ctx, &transfermanager.UploadObjectInput{
		Bucket:   aws.String(e.target.Bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(rec.Data),
		Metadata: e.target.Metadata,
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", e.target.Bucket, key, err)
	}
	return nil
}

func (e *ExtractSink) uniqueKey(ctx context.Context, base string) (string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	candidate := locator.JoinS3Prefix(e.target.Key, base)
	for n := 1; ; n++ {
		exists, err := e.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = locator.JoinS3Prefix(e.target.Key, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

func (e *ExtractSink) exists(ctx context.Context, key string) (bool, error) {
	_, err := e.store.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(e.target.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func intFromEnv(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return x, true
}
