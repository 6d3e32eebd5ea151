// Package storage packs the scaler and model artifacts into a single BoltDB
// file and serves them back read-only.
//
// A bundle holds one bucket with the raw artifact bytes and a small JSON
// record describing when and from where it was packed. The dashboard never
// writes to a bundle; only the packaging command does.
package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"time"

	"iris-app/internal/common"

	"go.etcd.io/bbolt"
)

const bundleInfoKey = "info"

// BundleInfo describes how a bundle was produced.
type BundleInfo struct {
	PackedAt    time.Time `json:"packed_at"`
	ScalerFrom  string    `json:"scaler_from"`
	ModelFrom   string    `json:"model_from"`
	ScalerBytes int       `json:"scaler_bytes"`
	ModelBytes  int       `json:"model_bytes"`
}

// Bundle is a read-only view over a packed artifact file.
type Bundle struct {
	db   *bbolt.DB
	path string
}

// Pack writes scaler and model into a new bundle at path, replacing any
// existing file.
func Pack(path string, scaler, model []byte, info BundleInfo) error {
	if len(scaler) == 0 || len(model) == 0 {
		return fmt.Errorf("pack %s: scaler and model must not be empty", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old bundle: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open bundle: %w", err)
	}
	defer db.Close()

	info.ScalerBytes = len(scaler)
	info.ModelBytes = len(model)
	if info.PackedAt.IsZero() {
		info.PackedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal bundle info: %w", err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(common.BundleBucket))
		if err != nil {
			return fmt.Errorf("create artifacts bucket: %w", err)
		}
		if err := b.Put([]byte(common.BundleScalerKey), scaler); err != nil {
			return fmt.Errorf("put scaler: %w", err)
		}
		if err := b.Put([]byte(common.BundleModelKey), model); err != nil {
			return fmt.Errorf("put model: %w", err)
		}
		return b.Put([]byte(bundleInfoKey), meta)
	})
}

// OpenBundle opens an existing bundle read-only. A missing file yields an
// error wrapping fs.ErrNotExist.
func OpenBundle(path string) (*Bundle, error) {
	// bbolt would create the file even in read-only mode on some platforms.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	db, err := bbolt.Open(path, 0o400, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	return &Bundle{db: db, path: path}, nil
}

// Close releases the database file.
func (b *Bundle) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *Bundle) ReadScaler() ([]byte, error) {
	return b.get(common.BundleScalerKey)
}

func (b *Bundle) ReadModel() ([]byte, error) {
	return b.get(common.BundleModelKey)
}

// Info returns the packing record.
func (b *Bundle) Info() (BundleInfo, error) {
	var info BundleInfo
	data, err := b.get(bundleInfoKey)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("decode bundle info: %w", err)
	}
	return info, nil
}

func (b *Bundle) String() string {
	return "bundle(" + b.path + ")"
}

// get copies the value out of the transaction; bbolt memory is only valid
// while it is open.
func (b *Bundle) get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(common.BundleBucket))
		if bucket == nil {
			return fmt.Errorf("bundle %s: bucket %q: %w", b.path, common.BundleBucket, fs.ErrNotExist)
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("bundle %s: key %q: %w", b.path, key, fs.ErrNotExist)
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}
