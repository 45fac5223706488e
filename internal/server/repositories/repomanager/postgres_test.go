package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/sessiontokens"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Conn() != db {
		t.Fatal("Conn() must return the pool")
	}
}

func TestNewPostgresRepositoryManager_NilDB(t *testing.T) {
	if _, err := NewPostgresRepositoryManager(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{db: db}

	if _, ok := m.Accounts(db).(*accounts.PostgresRepository); !ok {
		t.Fatal("Accounts() is not the postgres repository")
	}
	if _, ok := m.SessionTokens(db).(*sessiontokens.PostgresRepository); !ok {
		t.Fatal("SessionTokens() is not the postgres repository")
	}
	if _, ok := m.Posts(db).(*posts.PostgresRepository); !ok {
		t.Fatal("Posts() is not the postgres repository")
	}
}

func TestWithTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	m := &PostgresRepositoryManager{db: db}

	mock.ExpectBegin()
	mock.ExpectCommit()
	if err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error { return nil }); err != nil {
		t.Fatalf("WithTx commit error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	if err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db {
			return errors.New("unexpected db")
		}
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{db: db}
	if err := m.RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpenPostgres_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			t.Errorf("unexpected driver %q", driver)
		}
		return db, nil
	}
	defer func() { sqlOpen = orig }()

	if _, err := OpenPostgres(context.Background(), "postgres://x"); err == nil {
		t.Fatal("expected ping error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenPostgres_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	defer func() { sqlOpen = orig }()

	if _, err := OpenPostgres(context.Background(), "::"); err == nil {
		t.Fatal("expected open error")
	}
}

func TestOpenPostgres_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return db, nil }
	defer func() { sqlOpen = orig }()

	m, err := OpenPostgres(context.Background(), "postgres://x")
	if err != nil {
		t.Fatalf("OpenPostgres error: %v", err)
	}
	if m.Conn() != db {
		t.Fatal("manager not bound to the opened pool")
	}
}
