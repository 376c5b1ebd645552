package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arzan03/DocBridge/internal/httperr"
)

// opTimeout bounds every remote call so a slow backend cannot stall the
// request; probeTimeout bounds the startup bucket check.
const (
	opTimeout    = 30 * time.Second
	probeTimeout = 10 * time.Second
)

// Remote is the MinIO-backed strategy. Sessions that carry a brokered
// credential ("accessKey:secretKey") get their own client; everything else
// uses the service client.
type Remote struct {
	endpoint string
	useSSL   bool
	bucket   string
	service  *minio.Client

	mu      sync.Mutex
	clients map[string]*minio.Client
}

// NewRemote connects the service client and ensures the bucket exists.
func NewRemote(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Remote, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
	}

	return &Remote{
		endpoint: endpoint,
		useSSL:   useSSL,
		bucket:   bucket,
		service:  client,
		clients:  make(map[string]*minio.Client),
	}, nil
}

func (r *Remote) Name() string { return "remote" }

// clientFor returns a client authenticated with the session's brokered
// credential, falling back to the service client.
func (r *Remote) clientFor(cred string) (*minio.Client, error) {
	access, secret, ok := strings.Cut(cred, ":")
	if !ok || access == "" || secret == "" {
		return r.service, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if client, cached := r.clients[cred]; cached {
		return client, nil
	}
	client, err := minio.New(r.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: r.useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("client for brokered credential: %w", err)
	}
	r.clients[cred] = client
	return client, nil
}

func objectName(node string) string {
	return strings.TrimPrefix(node, "/")
}

func (r *Remote) Metadata(ctx context.Context, cred, node string) (Metadata, error) {
	client, err := r.clientFor(cred)
	if err != nil {
		return Metadata{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	info, err := client.StatObject(ctx, r.bucket, objectName(node), minio.StatObjectOptions{})
	if err != nil {
		return Metadata{}, remoteErr(err)
	}
	return Metadata{
		Size:       info.Size,
		Version:    fmt.Sprintf("%d", info.LastModified.UnixNano()),
		ModifiedAt: info.LastModified,
	}, nil
}

func (r *Remote) Download(ctx context.Context, cred, node string) ([]byte, error) {
	client, err := r.clientFor(cred)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	obj, err := client.GetObject(ctx, r.bucket, objectName(node), minio.GetObjectOptions{})
	if err != nil {
		return nil, remoteErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, remoteErr(err)
	}
	return data, nil
}

func (r *Remote) Upload(ctx context.Context, cred, node string, data []byte, mimeHint string) (PutResult, error) {
	client, err := r.clientFor(cred)
	if err != nil {
		return PutResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	name := objectName(node)
	_, err = client.PutObject(ctx, r.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeHint})
	if err != nil {
		return PutResult{}, remoteErr(err)
	}
	info, err := client.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return PutResult{}, remoteErr(err)
	}
	return PutResult{Version: fmt.Sprintf("%d", info.LastModified.UnixNano())}, nil
}

func (r *Remote) Rename(ctx context.Context, cred, node, newNode string) error {
	client, err := r.clientFor(cred)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	src := minio.CopySrcOptions{Bucket: r.bucket, Object: objectName(node)}
	dst := minio.CopyDestOptions{Bucket: r.bucket, Object: objectName(newNode)}
	if _, err := client.CopyObject(ctx, dst, src); err != nil {
		return remoteErr(err)
	}
	if err := client.RemoveObject(ctx, r.bucket, objectName(node), minio.RemoveObjectOptions{}); err != nil {
		return remoteErr(err)
	}
	return nil
}

func (r *Remote) Delete(ctx context.Context, cred, node string) error {
	client, err := r.clientFor(cred)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	name := objectName(node)
	// RemoveObject succeeds on absent keys; stat first so DELETE of a
	// missing file surfaces as not found.
	if _, err := client.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{}); err != nil {
		return remoteErr(err)
	}
	if err := client.RemoveObject(ctx, r.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return remoteErr(err)
	}
	return nil
}

func (r *Remote) List(ctx context.Context, cred string, limit int) ([]Entry, error) {
	client, err := r.clientFor(cred)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var entries []Entry
	for obj := range client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, remoteErr(obj.Err)
		}
		entries = append(entries, Entry{
			Path:       "/" + obj.Key,
			Name:       path.Base(obj.Key),
			Size:       obj.Size,
			ModifiedAt: obj.LastModified,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// remoteErr maps object-store error codes onto the shared sentinels.
func remoteErr(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", httperr.ErrNotFound, resp.Code)
	}
	return fmt.Errorf("object store: %w", err)
}
