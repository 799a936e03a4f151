package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"archive-service/internal/models"
	"archive-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, principal models.Principal, content string, at time.Time) (models.Message, error) {
	args := m.Called(ctx, principal, content, at)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) List(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ArchiveRepositoryMock struct {
	mock.Mock
}

func (m *ArchiveRepositoryMock) ListMonths(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var months []string
	if val := args.Get(0); val != nil {
		months = val.([]string)
	}
	return months, args.Error(1)
}

func (m *ArchiveRepositoryMock) ListByMonth(ctx context.Context, month string) ([]models.ArchivedMessage, error) {
	args := m.Called(ctx, month)
	var msgs []models.ArchivedMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ArchivedMessage)
	}
	return msgs, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) EmployeeByToken(ctx context.Context, token string, now time.Time) (models.Principal, error) {
	args := m.Called(ctx, token, now)
	var principal models.Principal
	if val := args.Get(0); val != nil {
		principal = val.(models.Principal)
	}
	return principal, args.Error(1)
}

func (m *SessionRepositoryMock) UserByToken(ctx context.Context, token string, now time.Time) (models.Principal, error) {
	args := m.Called(ctx, token, now)
	var principal models.Principal
	if val := args.Get(0); val != nil {
		principal = val.(models.Principal)
	}
	return principal, args.Error(1)
}

type RunStoreMock struct {
	mock.Mock
}

func (m *RunStoreMock) Begin(ctx context.Context) (repositories.RunTx, error) {
	args := m.Called(ctx)
	var tx repositories.RunTx
	if val := args.Get(0); val != nil {
		tx = val.(repositories.RunTx)
	}
	return tx, args.Error(1)
}

type RunTxMock struct {
	mock.Mock
}

func (m *RunTxMock) AcquireRunLock(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RunTxMock) SnapshotMessages(ctx context.Context) ([]models.ArchiveSource, error) {
	args := m.Called(ctx)
	var rows []models.ArchiveSource
	if val := args.Get(0); val != nil {
		rows = val.([]models.ArchiveSource)
	}
	return rows, args.Error(1)
}

func (m *RunTxMock) InsertArchived(ctx context.Context, msg models.ArchivedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *RunTxMock) DeleteMessages(ctx context.Context, ids []int) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RunTxMock) InsertSystemNotice(ctx context.Context, content string, at time.Time) (int, error) {
	args := m.Called(ctx, content, at)
	return args.Int(0), args.Error(1)
}

func (m *RunTxMock) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *RunTxMock) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
