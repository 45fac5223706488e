// Package memory implements the account, session token and post
// repositories over a process-local store. It backs the server when no
// database DSN is configured and is used by service and transport tests.
// Foreign keys of the SQL schema are emulated: deleting an account drops its
// tokens, and neither tokens nor posts may reference a missing account.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

type accountRow struct {
	seq     int64
	account models.Account
}

type postRow struct {
	seq  int64
	post models.Post
}

type state struct {
	seq      int64
	accounts map[string]*accountRow
	byEmail  map[string]string
	tokens   map[string][]string
	posts    map[string]*postRow
}

func newState() *state {
	return &state{
		accounts: map[string]*accountRow{},
		byEmail:  map[string]string{},
		tokens:   map[string][]string{},
		posts:    map[string]*postRow{},
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:      s.seq,
		accounts: make(map[string]*accountRow, len(s.accounts)),
		byEmail:  maps.Clone(s.byEmail),
		tokens:   make(map[string][]string, len(s.tokens)),
		posts:    make(map[string]*postRow, len(s.posts)),
	}
	for k, v := range s.accounts {
		row := *v
		c.accounts[k] = &row
	}
	for k, v := range s.tokens {
		c.tokens[k] = append([]string(nil), v...)
	}
	for k, v := range s.posts {
		row := *v
		c.posts[k] = &row
	}
	return c
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Store holds all rows. Every repository call takes mu. Calls made outside a
// transaction also take txMu, so nothing interleaves with an open transaction
// and a rollback to its snapshot cannot discard foreign writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

// WithTx runs fn with the store's transaction lock held. If fn fails or
// panics every change it made is discarded.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

type txKey struct{}

// enter takes txMu unless ctx belongs to a transaction of this store, which
// already holds it.
func (s *Store) enter(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.enter(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(ctx context.Context, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.enter(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// errForeignKey mirrors the database's reaction to a dangling reference.
func errForeignKey(table, ref string) error {
	return fmt.Errorf("db error: %s references missing or still referenced account %q", table, ref)
}

func copyAccount(a models.Account) *models.Account {
	return &a
}

func copyPost(p models.Post) *models.Post {
	return &p
}
