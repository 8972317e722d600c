package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var contactCols = []string{"id", "name", "email", "phone", "company", "notes", "created_at"}

func TestContactPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewContactPostgres(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(contactCols).
		AddRow("c1", "Ana Souza", "ana@example.com", "", "", "", time.Now()).
		AddRow("c2", "Bruno Lima", "", "11 99999-0000", "Lima Motors", "", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM contacts").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactPostgres_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewContactPostgres(db)
	ctx := context.Background()

	t.Run("empty id set short-circuits", func(t *testing.T) {
		items, err := repo.ListByIDs(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("fetches by id set", func(t *testing.T) {
		rows := sqlmock.NewRows(contactCols).
			AddRow("c1", "Ana Souza", "", "", "", "", time.Now()).
			AddRow("c2", "Bruno Lima", "", "", "", "", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM contacts").
			WithArgs("c1", "c2").
			WillReturnRows(rows)

		items, err := repo.ListByIDs(ctx, []string{"c1", "c2"})

		assert.NoError(t, err)
		assert.Len(t, items, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
