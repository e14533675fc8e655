// Package storage is the durable key-value boundary for session state (cart
// and order history blobs). Failure handling follows the storefront contract:
// reads fall back to "no data" on absence or corruption, writes are logged
// and swallowed so in-memory state stays authoritative.
package storage

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var sessionBucket = []byte("session")

// BlobStore persists independently keyed JSON blobs in a bbolt file.
type BlobStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the blob store file.
func Open(path string) (*BlobStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open blob store")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init blob store bucket")
	}
	return &BlobStore{db: db}, nil
}

// Load unmarshals the blob stored under key into v. It returns false when the
// key is absent or the stored data is corrupt; corruption is never an error
// to the caller.
func (s *BlobStore) Load(key string, v interface{}) bool {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(sessionBucket).Get([]byte(key)); data != nil {
			raw = append(raw, data...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		zap.L().Warn("discarding corrupt blob", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save marshals v under key. Write failures are logged and swallowed.
func (s *BlobStore) Save(key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("blob marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(key), raw)
	})
	if err != nil {
		zap.L().Warn("blob write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the blob under key; missing keys are a no-op.
func (s *BlobStore) Delete(key string) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(key))
	})
	if err != nil {
		zap.L().Warn("blob delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *BlobStore) Close() error {
	return s.db.Close()
}
