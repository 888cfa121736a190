package users

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/confidant/internal/common"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
)

// record is the on-disk shape of one account; the username is the map key.
type record struct {
	PasswordHash string            `json:"password_hash"`
	History      chat.Conversation `json:"history"`
}

// JSONFileRepository keeps the whole user database in a single JSON
// document and rewrites it in full on every mutation. The mutex serializes
// the read-modify-write cycle within this process; the visibility model is
// last-write-wins at whole-database granularity.
type JSONFileRepository struct {
	path string
	mu   sync.Mutex
}

func NewJSONFileRepository(path string) *JSONFileRepository {
	return &JSONFileRepository{path: path}
}

// load reads the database document. A missing file or invalid JSON fails
// soft: the store is treated as empty and no error reaches the caller.
func (r *JSONFileRepository) load() map[string]record {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return map[string]record{}
	}
	db := map[string]record{}
	if err := json.Unmarshal(data, &db); err != nil {
		return map[string]record{}
	}
	return db
}

// save serializes the full mapping and replaces the file with
// write-then-rename semantics so a crash cannot leave a truncated document.
func (r *JSONFileRepository) save(db map[string]record) error {
	data, err := json.MarshalIndent(db, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *JSONFileRepository) Get(ctx context.Context, username string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.load()[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &Account{Username: username, PasswordHash: rec.PasswordHash, History: rec.History}, nil
}

func (r *JSONFileRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.load()
	if _, exists := db[account.Username]; exists {
		return common.ErrDuplicateUser
	}
	db[account.Username] = record{PasswordHash: account.PasswordHash, History: account.History}
	return r.save(db)
}

func (r *JSONFileRepository) Update(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db := r.load()
	if _, exists := db[account.Username]; !exists {
		return common.ErrorNotFound
	}
	db[account.Username] = record{PasswordHash: account.PasswordHash, History: account.History}
	return r.save(db)
}
