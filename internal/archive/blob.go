package archive

import (
	"context"
	"encoding/json"
	"errors"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/agentflow/onboard/pkg/api"
)

// BlobArchiver stores final wizard snapshots using gocloud.dev/blob,
// supporting S3, GCS, Azure Blob Storage, and S3-compatible stores
type BlobArchiver struct {
	bucket *blob.Bucket
	prefix string
}

var ErrSnapshotNotFound = errors.New("archived snapshot not found")

// NewBlobArchiver opens the bucket at the given URL. Keys are namespaced
// under the supplied prefix
func NewBlobArchiver(
	ctx context.Context, bucketURL, prefix string,
) (*BlobArchiver, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &BlobArchiver{bucket: bucket, prefix: prefix}, nil
}

// Put writes a wizard snapshot under the given key
func (a *BlobArchiver) Put(
	ctx context.Context, key string, st *api.WizardState,
) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, a.keyFor(key), data, nil)
}

// Get reads a previously archived wizard snapshot
func (a *BlobArchiver) Get(
	ctx context.Context, key string,
) (*api.WizardState, error) {
	data, err := a.bucket.ReadAll(ctx, a.keyFor(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	var st api.WizardState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Delete removes an archived snapshot. Deleting a missing key is not an
// error
func (a *BlobArchiver) Delete(ctx context.Context, key string) error {
	err := a.bucket.Delete(ctx, a.keyFor(key))
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (a *BlobArchiver) Close() error {
	return a.bucket.Close()
}

func (a *BlobArchiver) keyFor(key string) string {
	return a.prefix + key + ".json"
}
