// Package store lists origs from object storage and exports compiled
// archives.
package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/phobologic/lanting/internal/model"
)

// pageLimit is the largest page the OSS list API returns.
const pageLimit = 1000

// Lister returns orig names under a prefix, at most limit of them when limit > 0.
type Lister interface {
	List(ctx context.Context, prefix string, limit int) ([]string, error)
}

// ObjectLister is the subset of *oss.Bucket used by OSSLister.
type ObjectLister interface {
	ListObjects(options ...oss.Option) (oss.ListObjectsResult, error)
}

// OSSLister lists origs from an Aliyun OSS bucket.
type OSSLister struct {
	bucket ObjectLister
}

// NewOSSLister wraps a bucket handle.
func NewOSSLister(bucket ObjectLister) *OSSLister {
	return &OSSLister{bucket: bucket}
}

// OpenBucket connects to an OSS bucket with static credentials.
func OpenBucket(endpoint, accessKeyID, accessKeySecret, bucket string) (*oss.Bucket, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	b, err := client.Bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", bucket, err)
	}
	return b, nil
}

// List pages through the bucket listing. The prefix is stripped from the
// returned names and the prefix placeholder object itself is skipped.
func (l *OSSLister) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	var names []string
	marker := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := pageLimit
		if limit > 0 && limit-len(names) < page {
			page = limit - len(names)
		}

		res, err := l.bucket.ListObjects(oss.Prefix(prefix), oss.MaxKeys(page), oss.Marker(marker))
		if err != nil {
			return nil, fmt.Errorf("%w: listing %q: %w", model.ErrSourceUnavailable, prefix, err)
		}

		for _, obj := range res.Objects {
			name := strings.TrimPrefix(obj.Key, prefix)
			if name == "" {
				continue
			}
			names = append(names, name)
			if limit > 0 && len(names) >= limit {
				return names, nil
			}
		}

		if !res.IsTruncated || res.NextMarker == "" {
			return names, nil
		}
		marker = res.NextMarker
	}
}

// DirLister lists origs from a local directory.
type DirLister struct {
	Dir string
}

// List returns the sorted regular file names in the directory whose names
// start with prefix. The prefix is stripped from the returned names.
func (l DirLister) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", model.ErrSourceUnavailable, l.Dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		names = append(names, strings.TrimPrefix(e.Name(), prefix))
	}
	sort.Strings(names)

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
