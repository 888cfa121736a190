package users

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/dmitrijs2005/confidant/internal/common"
)

var usersBucket = []byte("users")

// BoltRepository stores accounts in an embedded bbolt database, one
// JSON-encoded record per username. It offers the same contract and the
// same single-writer visibility as the flat-file backend.
type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Close() error {
	return r.db.Close()
}

func (r *BoltRepository) Get(ctx context.Context, username string) (*Account, error) {
	var rec record
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(usersBucket).Get([]byte(username))
		if data == nil {
			return common.ErrorNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &Account{Username: username, PasswordHash: rec.PasswordHash, History: rec.History}, nil
}

func (r *BoltRepository) Create(ctx context.Context, account *Account) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(account.Username)) != nil {
			return common.ErrDuplicateUser
		}
		return put(b, account)
	})
}

func (r *BoltRepository) Update(ctx context.Context, account *Account) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(account.Username)) == nil {
			return common.ErrorNotFound
		}
		return put(b, account)
	})
}

func put(b *bolt.Bucket, account *Account) error {
	data, err := json.Marshal(record{PasswordHash: account.PasswordHash, History: account.History})
	if err != nil {
		return err
	}
	return b.Put([]byte(account.Username), data)
}
