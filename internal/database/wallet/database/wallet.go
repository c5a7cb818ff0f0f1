package database

import (
	"encoding/json"
	"fmt"

	"github.com/lucky6-games/lucky6/internal/byteutil"
	"github.com/lucky6-games/lucky6/internal/cache"
	"github.com/lucky6-games/lucky6/internal/database"
	"github.com/lucky6-games/lucky6/internal/database/wallet/model"

	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = fmt.Errorf("not found")

const bucket = "wallets"

func New(db *database.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

type DB struct {
	sDB *database.DB

	cache cache.Cache
}

func (db *DB) Fetch(chatID int64) (model.Wallet, error) {
	if db.cache != nil {
		if v, ok := db.cache.Get(chatID); ok {
			return v.(model.Wallet), nil
		}
	}

	var w model.Wallet
	pk := byteutil.EncodeInt64ToBytes(chatID)

	var bytes []byte
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		bytes = b.Get(pk)
		return nil
	}); err != nil {
		return w, fmt.Errorf("view transaction error: %w", err)
	}

	if len(bytes) == 0 {
		return w, ErrNotFound
	}

	if err := json.Unmarshal(bytes, &w); err != nil {
		return w, fmt.Errorf("unmarshal: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(chatID, w)
	}

	return w, nil
}

func (db *DB) Store(w model.Wallet) error {
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

	bytes, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := b.Put(byteutil.EncodeInt64ToBytes(w.ChatID), bytes); err != nil {
		return fmt.Errorf("put to bucket error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(w.ChatID, w)
	}

	return nil
}

func (db *DB) Delete(chatID int64) error {
	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	b := tx.Bucket([]byte(bucket))
	if b != nil {
		if err := b.Delete(byteutil.EncodeInt64ToBytes(chatID)); err != nil {
			return fmt.Errorf("delete from bucket error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if db.cache != nil {
		db.cache.Delete(chatID)
	}

	return nil
}
