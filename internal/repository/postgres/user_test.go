package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

var userRowColumns = []string{
	"id", "email", "name", "picture", "google_id", "subscription", "partner_id",
	"generated_count", "telegram_chat_id", "created_at", "updated_at",
}

func TestUserGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, partner := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(q(`FROM users WHERE lower(email) = lower($1)`)).
		WithArgs("Ana@Example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			id.String(), "ana@example.com", "Ana", "", "", "PREMIUM", partner.String(), 2, int64(42), now, now))

	user, err := NewUserRepository(db).GetByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, id, user.ID)
	assert.Equal(t, models.SubscriptionPremium, user.Subscription)
	require.NotNil(t, user.PartnerID)
	assert.Equal(t, partner, *user.PartnerID)
	require.NotNil(t, user.TelegramChatID)
	assert.Equal(t, int64(42), *user.TelegramChatID)
	assert.Equal(t, 2, user.GeneratedCount)
}

func TestUserGetByIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(q(`FROM users WHERE id = $1`)).WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err := NewUserRepository(db).GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestSetPartnersLinksBothSidesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inv, a, b := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q(`UPDATE users SET partner_id = $2`)).WithArgs(a, b, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE users SET partner_id = $2`)).WithArgs(b, a, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE invitations SET status = $2`)).
		WithArgs(inv, models.InvitationAccepted, b, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewUserRepository(db).SetPartners(context.Background(), inv, a, b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPartnersRollsBackOnMissingInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q(`UPDATE users`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE users`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE invitations`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewUserRepository(db).SetPartners(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkWithoutPartnerIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT partner_id FROM users WHERE id = $1 FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"partner_id"}).AddRow(nil))
	mock.ExpectCommit()

	require.NoError(t, NewUserRepository(db).Unlink(context.Background(), uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlinkClearsBothSides(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, partner := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT partner_id FROM users`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"partner_id"}).AddRow(partner.String()))
	mock.ExpectExec(q(`UPDATE users SET partner_id = NULL`)).
		WithArgs(id, sqlmock.AnyArg(), partner).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, NewUserRepository(db).Unlink(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRemindedSendsArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	mock.ExpectExec(q(`UPDATE tasks SET reminded_at = $2 WHERE id = ANY($1::uuid[])`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := NewTaskRepository(db)
	require.NoError(t, repo.MarkReminded(context.Background(), ids, time.Now()))
	require.NoError(t, repo.MarkReminded(context.Background(), nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTelegramChatConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	chat := int64(4242)
	mock.ExpectExec(q(`UPDATE users SET telegram_chat_id = $2`)).
		WithArgs(id, chat, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err = NewUserRepository(db).SetTelegramChat(context.Background(), id, &chat)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
