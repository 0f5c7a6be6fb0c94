// Package bolt persists dependency graph snapshots in a bolt database.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/weft/weft/graph"
	bolt "go.etcd.io/bbolt"
)

// The SnapshotCodec encodes manager snapshots for storage.
type SnapshotCodec interface {
	Marshal(*graph.Manager) ([]byte, error)
	Unmarshal(b []byte) (*graph.Manager, error)
}

// NotFoundError is returned when loading a snapshot that does not exist.
type NotFoundError struct {
	Namespace string
	Name      string
}

// NotFound is a no-op method that allows the error to be asserted as an
// interface, rather than importing the bolt package.
func (e NotFoundError) NotFound() {}

// Error implements error.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("snapshot %s/%s does not exist", e.Namespace, e.Name)
}

// Bolt stores graph snapshots in bolt db.
type Bolt struct {
	db    *bolt.DB
	codec SnapshotCodec
}

// DefaultFile returns the default file to use for the file on disk.
func DefaultFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get home dir")
	}
	return filepath.Join(home, ".weft", "state.db"), nil
}

// New creates and opens a database at the given file.
// If the file or directory does not exist, it is created.
func New(file string, codec SnapshotCodec) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, errors.Wrapf(err, "ensure dir exists: %s", filepath.Dir(file))
	}
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	return &Bolt{db: db, codec: codec}, nil
}

// Close closes the Bolt DB store and releases all resources.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Save creates or updates a named snapshot of the manager state within a
// namespace.
func (b *Bolt) Save(ctx context.Context, ns, name string, m *graph.Manager) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := b.createBucketIfNotExists(tx, []string{ns, "snapshots"})
		if err != nil {
			return errors.Wrap(err, "ensure bucket")
		}
		data, err := b.codec.Marshal(m)
		if err != nil {
			return errors.Wrap(err, "marshal snapshot")
		}
		return bucket.Put([]byte(name), data)
	})
}

// Load reads a named snapshot and reconstructs the manager state. Returns a
// NotFoundError if the snapshot does not exist.
func (b *Bolt) Load(ctx context.Context, ns, name string) (*graph.Manager, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := b.getBucket(tx, []string{ns, "snapshots"})
		if bucket == nil {
			return NotFoundError{Namespace: ns, Name: name}
		}
		v := bucket.Get([]byte(name))
		if v == nil {
			return NotFoundError{Namespace: ns, Name: name}
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m, err := b.codec.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}
	return m, nil
}

// Delete deletes a snapshot. No-op if the snapshot does not exist.
func (b *Bolt) Delete(ctx context.Context, ns, name string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := b.getBucket(tx, []string{ns, "snapshots"})
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(name))
	})
}

// List lists the snapshot names in a namespace.
func (b *Bolt) List(ctx context.Context, ns string) ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := b.getBucket(tx, []string{ns, "snapshots"})
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// createBucketIfNotExists creates any buckets on the given path that do not
// exist, and returns the final bucket.
func (b *Bolt) createBucketIfNotExists(tx *bolt.Tx, path []string) (*bolt.Bucket, error) {
	if len(path) == 0 {
		panic("path is empty")
	}
	bucket, err := tx.CreateBucketIfNotExists([]byte(path[0]))
	if err != nil {
		return nil, errors.Wrap(err, "root bucket")
	}
	for _, p := range path[1:] {
		tmp, err := bucket.CreateBucketIfNotExists([]byte(p))
		if err != nil {
			return nil, errors.Wrapf(err, "part %s", p)
		}
		bucket = tmp
	}
	return bucket, nil
}

// getBucket returns the bucket at the given path. Returns nil if any bucket
// on the path does not exist.
func (b *Bolt) getBucket(tx *bolt.Tx, path []string) *bolt.Bucket {
	if len(path) == 0 {
		panic("path is empty")
	}
	bucket := tx.Bucket([]byte(path[0]))
	if bucket == nil {
		return nil
	}
	for _, p := range path[1:] {
		bucket = bucket.Bucket([]byte(p))
		if bucket == nil {
			return nil
		}
	}
	return bucket
}
