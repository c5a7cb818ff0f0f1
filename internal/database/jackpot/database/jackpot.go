package database

import (
	"encoding/json"
	"fmt"

	"github.com/lucky6-games/lucky6/internal/byteutil"
	"github.com/lucky6-games/lucky6/internal/database"

	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = fmt.Errorf("not found")

const bucket = "jackpots"

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Fetch(chatID int64) (int, error) {
	var amount int
	var bytes []byte

	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		bytes = b.Get(byteutil.EncodeInt64ToBytes(chatID))
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %w", err)
	}

	if len(bytes) == 0 {
		return 0, ErrNotFound
	}

	if err := json.Unmarshal(bytes, &amount); err != nil {
		return 0, fmt.Errorf("unmarshal: %w", err)
	}

	return amount, nil
}

func (db *DB) Store(chatID int64, amount int) error {
	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	b := tx.Bucket([]byte(bucket))
	if b == nil {
		bs, err := tx.CreateBucket([]byte(bucket))
		if err != nil {
			return fmt.Errorf("can not create bucket: %w", err)
		}
		b = bs
	}

	bytes, err := json.Marshal(amount)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := b.Put(byteutil.EncodeInt64ToBytes(chatID), bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
