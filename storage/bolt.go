package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fioncat/gbrowse/types"
	bolt "go.etcd.io/bbolt"
)

var ErrStatNotFound = errors.New("could not find the access stat")

const boltStatBucketName = "stat"

type boltAccessStats struct {
	db *bolt.DB

	bucket []byte
}

// OpenBolt opens the access stats database under the base dir. Only one
// process can hold it, a second one waits for OpenBoltTimeout and fails.
func OpenBolt(cfg *types.Config) (types.AccessStats, error) {
	path := filepath.Join(cfg.BaseDir, "stats.db")
	db, err := bolt.Open(path, 0644, &bolt.Options{
		Timeout: cfg.OpenBoltTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	bucket := []byte(boltStatBucketName)
	err = ensureBoltBucket(db, bucket)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltAccessStats{
		db:     db,
		bucket: bucket,
	}, nil
}

func ensureBoltBucket(db *bolt.DB, bucket []byte) error {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure bolt bucket %q: %v", string(bucket), err)
	}
	return nil
}

func (b *boltAccessStats) Record(path string, kind types.AccessKind, at time.Time) error {
	key := []byte(path)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)

		stat := &types.AccessStat{Path: path}
		data := bucket.Get(key)
		if len(data) > 0 {
			var err error
			stat, err = b.decodeData(data)
			if err != nil {
				return err
			}
		}

		switch kind {
		case types.AccessView:
			stat.Views++
		case types.AccessDownload:
			stat.Downloads++
		}
		if at.After(stat.LastAccess) {
			stat.LastAccess = at
		}

		data, err := json.Marshal(stat)
		if err != nil {
			return fmt.Errorf("encode stat to json: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("boltdb record: %w", err)
	}

	return nil
}

func (b *boltAccessStats) Get(path string) (*types.AccessStat, error) {
	key := []byte(path)

	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		// The value is only valid during the transaction.
		data = append(data, bucket.Get(key)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltdb get: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrStatNotFound
	}

	return b.decodeData(data)
}

// List returns all stats, the most accessed first.
func (b *boltAccessStats) List() ([]*types.AccessStat, error) {
	var stats []*types.AccessStat
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		cursor := bucket.Cursor()
		for key, data := cursor.First(); key != nil; key, data = cursor.Next() {
			stat, err := b.decodeData(data)
			if err != nil {
				return fmt.Errorf("decode stat %q: %w", string(key), err)
			}
			stats = append(stats, stat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total() > stats[j].Total()
	})
	return stats, nil
}

func (b *boltAccessStats) Remove(path string) error {
	key := []byte(path)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		return bucket.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete boltdb: %w", err)
	}

	return nil
}

func (b *boltAccessStats) Close() error {
	return b.db.Close()
}

func (b *boltAccessStats) decodeData(data []byte) (*types.AccessStat, error) {
	var stat types.AccessStat
	err := json.Unmarshal(data, &stat)
	if err != nil {
		return nil, fmt.Errorf("decode stat json in database: %w", err)
	}
	if stat.Path == "" {
		return nil, errors.New("stat in database missing path")
	}
	return &stat, nil
}
