package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

type memUsers struct {
	repository.UserRepository
	byID map[uuid.UUID]*models.User
}

func (m *memUsers) add(email string) *models.User {
	u := &models.User{ID: uuid.New(), Email: email, Name: strings.Split(email, "@")[0], Subscription: models.SubscriptionBasic}
	m.byID[u.ID] = u
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	u.ID = uuid.New()
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.byID[id], nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) SetPartners(_ context.Context, _ uuid.UUID, a, b uuid.UUID) error {
	m.byID[a].PartnerID = &b
	m.byID[b].PartnerID = &a
	return nil
}

func (m *memUsers) Unlink(_ context.Context, id uuid.UUID) error {
	u := m.byID[id]
	if u.PartnerID != nil {
		m.byID[*u.PartnerID].PartnerID = nil
	}
	u.PartnerID = nil
	return nil
}

type memInvitations struct {
	repository.InvitationRepository
	byID map[uuid.UUID]*models.Invitation
}

func (m *memInvitations) Create(_ context.Context, inv *models.Invitation) (*models.Invitation, error) {
	inv.ID = uuid.New()
	m.byID[inv.ID] = inv
	return inv, nil
}

func (m *memInvitations) GetByID(_ context.Context, id uuid.UUID) (*models.Invitation, error) {
	return m.byID[id], nil
}

func (m *memInvitations) CountPendingBySender(_ context.Context, sender uuid.UUID) (int, error) {
	n := 0
	for _, inv := range m.byID {
		if inv.SenderID == sender && inv.IsPending() {
			n++
		}
	}
	return n, nil
}

func (m *memInvitations) FindPending(_ context.Context, sender uuid.UUID, email string) (*models.Invitation, error) {
	for _, inv := range m.byID {
		if inv.SenderID == sender && inv.IsPending() && strings.EqualFold(inv.ReceiverEmail, email) {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *memInvitations) UpdateStatus(_ context.Context, id uuid.UUID, status models.InvitationStatus) error {
	m.byID[id].Status = status
	return nil
}

type memWeddings struct {
	repository.WeddingRepository
	members map[uuid.UUID][]uuid.UUID
}

func (m *memWeddings) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.Wedding, error) {
	var out []*models.Wedding
	for wid, users := range m.members {
		for _, u := range users {
			if u == userID {
				out = append(out, &models.Wedding{ID: wid})
			}
		}
	}
	return out, nil
}

type memTasks struct {
	repository.TaskRepository
	due      []*models.TaskReminder
	reminded map[uuid.UUID]time.Time
	before   time.Time
}

func (m *memTasks) ListDueForReminder(_ context.Context, before time.Time, _ int) ([]*models.TaskReminder, error) {
	m.before = before
	var out []*models.TaskReminder
	for _, r := range m.due {
		if _, done := m.reminded[r.Task.ID]; !done {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTasks) MarkReminded(_ context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		m.reminded[id] = at
	}
	return nil
}

type testEnv struct {
	svc         *Service
	users       *memUsers
	invitations *memInvitations
	weddings    *memWeddings
	tasks       *memTasks
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		users:       &memUsers{byID: map[uuid.UUID]*models.User{}},
		invitations: &memInvitations{byID: map[uuid.UUID]*models.Invitation{}},
		weddings:    &memWeddings{members: map[uuid.UUID][]uuid.UUID{}},
		tasks:       &memTasks{reminded: map[uuid.UUID]time.Time{}},
	}
	env.svc = New(logger, env.users, env.weddings, nil, env.tasks, env.invitations, nil)
	return env
}
