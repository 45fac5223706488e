package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const annID = "7f1b8d2e-0c4a-4d7e-9a55-2f7c1f0b9e11"

var accountCols = []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func annRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(accountCols).
		AddRow(annID, "Ann", "ann@x.com", "$2a$08$hash", "author", now, now)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+accounts\s*\(name,\s*email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,.*updated_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("Ann", "ann@x.com", "$2a$08$hash", "author").
		WillReturnRows(annRow(now))

	got, err := repo.Create(context.Background(), &models.Account{
		Name: "Ann", Email: "ann@x.com", PasswordHash: "$2a$08$hash", Role: models.RoleAuthor,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != annID || got.Role != models.RoleAuthor || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{Name: "Ann", Email: "ann@x.com", Role: models.RoleAuthor})
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{Name: "Ann", Email: "ann@x.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ann@x.com").WillReturnRows(annRow(time.Now()))

	got, err := repo.GetByEmail(context.Background(), "ann@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != annID || got.PasswordHash != "$2a$08$hash" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(annID).WillReturnRows(annRow(time.Now()))

	got, err := repo.GetByID(context.Background(), annID)
	if err != nil || got.Email != "ann@x.com" {
		t.Fatalf("GetByID: got (%+v, %v)", got, err)
	}
}

func TestGetByID_MalformedIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+id`).WithArgs(annID).WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), annID)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_ByRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(accountCols).
		AddRow(annID, "Ann", "ann@x.com", "h1", "author", now, now).
		AddRow("0b8e3c55-3f7e-4a4f-8d2b-6a1e2b3c4d5e", "Bob", "bob@x.com", "h2", "author", now, now)

	q := `(?s)^\s*SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+\(\$1\s*=\s*''\s+OR\s+role\s*=\s*\$1\)\s+ORDER\s+BY\s+created_at,\s*id\s*$`
	mock.ExpectQuery(q).WithArgs("author").WillReturnRows(rows)

	got, err := repo.List(context.Background(), models.RoleAuthor)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].Name != "Bob" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(annID)
	mock.ExpectQuery(`FROM\s+accounts`).WithArgs("").WillReturnRows(rows)

	if _, err := repo.List(context.Background(), ""); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestUpdate_NameOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+accounts\s+SET\s+name\s*=\s*COALESCE\(\$2,\s*name\),\s*password_hash\s*=\s*COALESCE\(\$3,\s*password_hash\),\s*role\s*=\s*COALESCE\(\$4,\s*role\),\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,.*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs(annID, "Annie", nil, nil).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(annID, "Annie", "ann@x.com", "h", "author", now, now))

	name := "Annie"
	got, err := repo.Update(context.Background(), annID, Update{Name: &name})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Name != "Annie" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_Role(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE\s+accounts`).
		WithArgs(annID, nil, nil, "admin").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(annID, "Ann", "ann@x.com", "h", "admin", now, now))

	role := models.RoleAdmin
	got, err := repo.Update(context.Background(), annID, Update{Role: &role})
	if err != nil || got.Role != models.RoleAdmin {
		t.Fatalf("Update role: got (%+v, %v)", got, err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+accounts`).WillReturnError(sql.ErrNoRows)

	name := "Annie"
	_, err := repo.Update(context.Background(), annID, Update{Name: &name})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}

	_, err = repo.Update(context.Background(), "bogus", Update{Name: &name})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound for malformed id, got %v", err)
	}
}

func TestDelete_ReturnsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,.*$`
	mock.ExpectQuery(q).WithArgs(annID).WillReturnRows(annRow(time.Now()))

	got, err := repo.Delete(context.Background(), annID)
	if err != nil || got.ID != annID {
		t.Fatalf("Delete: got (%+v, %v)", got, err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE\s+FROM\s+accounts`).WithArgs(annID).WillReturnError(sql.ErrNoRows)

	if _, err := repo.Delete(context.Background(), annID); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestUpdateEmpty(t *testing.T) {
	if !(Update{}).Empty() {
		t.Fatal("zero Update must be empty")
	}
	name := "x"
	if (Update{Name: &name}).Empty() {
		t.Fatal("Update with name must not be empty")
	}
}
