package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

func newWeddingFixture() *models.Wedding {
	return &models.Wedding{
		Partner1Name: "Ana",
		Partner2Name: "Rui",
		Email:        "ana@example.com",
		Date:         time.Date(2027, 6, 5, 0, 0, 0, 0, time.UTC),
		Country:      "Portugal",
		State:        "Lisbon",
		Budget:       30000,
		GuestCount:   120,
		Theme:        "Rustic",
	}
}

func TestWeddingUpsertCreatesWithMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	creator, partner := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT INTO weddings`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO wedding_users (wedding_id, user_id, role, joined_at)`)).
		WithArgs(sqlmock.AnyArg(), creator, models.WeddingRoleCreator, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO wedding_users (wedding_id, user_id, role, joined_at)`)).
		WithArgs(sqlmock.AnyArg(), partner, models.WeddingRolePartner, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, err := NewWeddingRepository(db).Upsert(context.Background(), newWeddingFixture(), creator, &partner)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, w.ID)
	require.Len(t, w.Users, 2)
	assert.Equal(t, creator, w.Users[0].UserID)
	assert.Equal(t, models.WeddingRoleCreator, w.Users[0].Role)
	assert.Equal(t, partner, w.Users[1].UserID)
	assert.Equal(t, models.WeddingRolePartner, w.Users[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingUpsertCreateWithoutPartner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	creator := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT INTO weddings`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO wedding_users`)).
		WithArgs(sqlmock.AnyArg(), creator, models.WeddingRoleCreator, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, err := NewWeddingRepository(db).Upsert(context.Background(), newWeddingFixture(), creator, nil)
	require.NoError(t, err)
	require.Len(t, w.Users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingUpsertCreateRollsBackWhenMemberFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q(`INSERT INTO weddings`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO wedding_users`)).WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	w := newWeddingFixture()
	_, err = NewWeddingRepository(db).Upsert(context.Background(), w, uuid.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key violation")
	assert.Equal(t, uuid.Nil, w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingUpsertUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	w := newWeddingFixture()
	w.ID = uuid.New()
	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q(`UPDATE weddings`)).
		WithArgs(w.ID, "Ana", "Rui", "", "", "ana@example.com", "", w.Date, "Portugal", "Lisbon",
			30000.0, 120, "Rustic", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, time.Now()))

	got, err := NewWeddingRepository(db).Upsert(context.Background(), w, uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Empty(t, got.Users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingUpsertUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	w := newWeddingFixture()
	w.ID = uuid.New()
	mock.ExpectQuery(q(`UPDATE weddings`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err = NewWeddingRepository(db).Upsert(context.Background(), w, uuid.New(), nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingDeleteCascadesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM tasks WHERE plan_id IN (SELECT id FROM plans WHERE wedding_id = $1)`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(q(`DELETE FROM plans WHERE wedding_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM wedding_users WHERE wedding_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`DELETE FROM weddings WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewWeddingRepository(db).Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingDeleteMissingRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM tasks`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM plans`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM wedding_users`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(`DELETE FROM weddings`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewWeddingRepository(db).Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeddingDeleteRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q(`DELETE FROM tasks`)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q(`DELETE FROM plans`)).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err = NewWeddingRepository(db).Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
