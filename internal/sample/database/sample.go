package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/knn/internal/byteutil"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/sample/model"
)

const (
	datasetKeys = "dataset:keys:"
	prefix      = "dataset:"
)

var ErrDatasetNotFound = fmt.Errorf("dataset not found")

type FilterFn func(sample model.Sample) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) extractKey(key string) string {
	prefixPos := strings.Index(key, prefix)

	return key[prefixPos+len(prefix):]
}

// Keys returns every dataset name.
func (db *DB) Keys() ([]string, error) {
	var bucketKeys []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(datasetKeys))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			bucketKeys = append(bucketKeys, db.extractKey(string(k)))
		}
		return nil
	})

	return bucketKeys, err
}

// AppendMany stores samples in one transaction. Keys come from the bucket
// sequence so a dataset reads back in insertion order.
func (db *DB) AppendMany(_ context.Context, samples []model.Sample) ([]model.Sample, error) {
	stored := make([]model.Sample, 0, len(samples))
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		keys, err := tx.CreateBucketIfNotExists([]byte(datasetKeys))
		if err != nil {
			return fmt.Errorf("unable create datasets bucket: %w", err)
		}
		for _, sample := range samples {
			b, err := tx.CreateBucketIfNotExists([]byte(prefix + sample.Dataset))
			if err != nil {
				return fmt.Errorf("create bucket: %w", err)
			}
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}
			sample.Seq = seq
			bytes, err := byteutil.MarshalJSON(sample)
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), bytes); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
			if err := keys.Put([]byte(prefix+sample.Dataset), []byte{0x0}); err != nil {
				return fmt.Errorf("unable put to datasets bucket: %w", err)
			}
			stored = append(stored, sample)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("update transaction error: %w", err)
	}

	return stored, nil
}

// DeleteDataset drops a dataset and all its samples.
func (db *DB) DeleteDataset(_ context.Context, dataset string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(prefix+dataset)) == nil {
			return fmt.Errorf("%q: %w", dataset, ErrDatasetNotFound)
		}
		if err := tx.DeleteBucket([]byte(prefix + dataset)); err != nil {
			return fmt.Errorf("unable delete: %w", err)
		}
		if b := tx.Bucket([]byte(datasetKeys)); b != nil {
			return b.Delete([]byte(prefix + dataset))
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) CountByDataset(dataset string) (int, error) {
	var length int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + dataset))
		if b == nil {
			length = 0
			return nil
		}
		length = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %w", err)
	}

	return length, nil
}

// FindByDataset returns the samples of a dataset in insertion order.
func (db *DB) FindByDataset(dataset string, filter FilterFn) ([]model.Sample, error) {
	var list []model.Sample
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + dataset))
		if b == nil {
			return fmt.Errorf("%q: %w", dataset, ErrDatasetNotFound)
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sample model.Sample
			if err := json.Unmarshal(v, &sample); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			if filter == nil || filter(sample) {
				list = append(list, sample)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return list, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
