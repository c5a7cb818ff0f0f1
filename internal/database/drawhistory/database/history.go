package database

import (
	"encoding/json"
	"fmt"

	"github.com/lucky6-games/lucky6/internal/byteutil"
	"github.com/lucky6-games/lucky6/internal/database"
	"github.com/lucky6-games/lucky6/internal/database/drawhistory/model"

	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = fmt.Errorf("not found")

const (
	resultsBucket = "drawresults"
	drawsBucket   = "sessiondraws"
)

// MaxResults caps the stored per-chat cycle results at the most recent entries.
const MaxResults = 50

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// AddResult appends a cycle result, trimming history to the newest MaxResults.
func (db *DB) AddResult(chatID int64, r model.Result) error {
	results, err := db.FetchResults(chatID)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("fetch results: %w", err)
	}

	results = append(results, r)
	if len(results) > MaxResults {
		results = results[len(results)-MaxResults:]
	}

	return db.put(resultsBucket, chatID, results)
}

func (db *DB) FetchResults(chatID int64) ([]model.Result, error) {
	var results []model.Result
	if err := db.get(resultsBucket, chatID, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddDraw records one drawn row for session analytics.
func (db *DB) AddDraw(chatID int64, numbers []int) error {
	draws, err := db.FetchDraws(chatID)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("fetch draws: %w", err)
	}

	row := make([]int, len(numbers))
	copy(row, numbers)
	draws = append(draws, row)

	return db.put(drawsBucket, chatID, draws)
}

func (db *DB) FetchDraws(chatID int64) ([][]int, error) {
	var draws [][]int
	if err := db.get(drawsBucket, chatID, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}

func (db *DB) get(bucket string, chatID int64, out interface{}) error {
	var bytes []byte
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		bytes = b.Get(byteutil.EncodeInt64ToBytes(chatID))
		return nil
	}); err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("view transaction error: %w", err)
	}

	if len(bytes) == 0 {
		return ErrNotFound
	}

	if err := json.Unmarshal(bytes, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	return nil
}

func (db *DB) put(bucket string, chatID int64, v interface{}) error {
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

	bytes, err := json.Marshal(v)
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
