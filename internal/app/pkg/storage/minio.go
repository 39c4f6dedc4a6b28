package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Key prefixes for the kinds of images the clinic stores.
const (
	PrefixAppointments = "appointments"
	PrefixGallery      = "gallery"
	PrefixDoctors      = "doctors"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Object is an upload read from a request.
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IsImage accepts image content types, or a known image extension when the client sent none.
func (o Object) IsImage() bool {
	if o.Body == nil || o.Size == 0 {
		return false
	}
	ct := strings.ToLower(o.ContentType)
	if strings.HasPrefix(ct, "image/") {
		return true
	}
	if ct != "" && ct != "application/octet-stream" {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(o.Filename))]
}

type MinIO struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinIO connects to hostPort (for example "127.0.0.1:9000") and creates the bucket
// when it is missing.
func NewMinIO(ctx context.Context, hostPort, accessKey, secretKey, bucket string, useSSL bool, publicBase string) (*MinIO, error) {
	c, err := minio.New(hostPort, &minio.Options{Creds: credentials.NewStaticV4(accessKey, secretKey, ""), Secure: useSSL})
	if err != nil {
		return nil, err
	}

	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", bucket, err)
		}
	}

	return &MinIO{client: c, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

var (
	nonSafe   = regexp.MustCompile(`[^a-z0-9\-_]+`)
	multiDash = regexp.MustCompile(`-{2,}`)
)

func sanitizeFileName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = nonSafe.ReplaceAllString(name, "-")
	name = multiDash.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-_")
	if name == "" {
		name = "file"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}

// ObjectKey builds "<prefix>/<name>-<random><ext>" from the client file name.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	base := sanitizeFileName(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	return fmt.Sprintf("%s/%s-%s%s", prefix, base, uuid.NewString()[:8], ext)
}

// Put stores the object under prefix and returns its key.
func (m *MinIO) Put(ctx context.Context, prefix string, obj Object) (string, error) {
	key := ObjectKey(prefix, obj.Filename)
	size := obj.Size
	if size <= 0 {
		size = -1
	}
	_, err := m.client.PutObject(ctx, m.bucket, key, obj.Body, size, minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// URL is the public address of key.
func (m *MinIO) URL(key string) string {
	return PublicURL(m.publicBase, m.bucket, key)
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func PublicURL(base, bucket, key string) string {
	if key == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	u.Path = path.Join(u.Path, bucket, key)
	return u.String()
}
