package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"docverify/internal/model"
	"docverify/internal/repository"
)

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) UpsertIngested(ctx context.Context, rec *model.DocumentRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateStatus(ctx context.Context, cc model.CaseContext, status model.Status) error {
	args := m.Called(ctx, cc, status)
	return args.Error(0)
}

func (m *MockRecordRepository) SetTamper(ctx context.Context, cc model.CaseContext, res model.TamperResult) error {
	args := m.Called(ctx, cc, res)
	return args.Error(0)
}

func (m *MockRecordRepository) SetOutcome(ctx context.Context, cc model.CaseContext, outcome model.Outcome,
	artifactKey string, verification json.RawMessage, cleanFields map[string]string,
	needsReconcile bool) error {
	args := m.Called(ctx, cc, outcome, artifactKey, verification, cleanFields, needsReconcile)
	return args.Error(0)
}

func (m *MockRecordRepository) ReadyCases(ctx context.Context) ([]repository.CaseKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CaseKey), args.Error(1)
}

func (m *MockRecordRepository) CaseDocuments(ctx context.Context, key repository.CaseKey) ([]repository.CaseDocument, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CaseDocument), args.Error(1)
}

func (m *MockRecordRepository) BorrowerReference(ctx context.Context, key repository.CaseKey) (*model.BorrowerReference, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BorrowerReference), args.Error(1)
}

func (m *MockRecordRepository) MarkVerified(ctx context.Context, key repository.CaseKey, passed bool, reportKey string) error {
	args := m.Called(ctx, key, passed, reportKey)
	return args.Error(0)
}
