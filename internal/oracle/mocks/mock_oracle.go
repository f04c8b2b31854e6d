package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docverify/internal/oracle"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) ClassifyDocument(ctx context.Context, summary string) (string, error) {
	args := m.Called(ctx, summary)
	return args.String(0), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractFields(ctx context.Context, docType string, expected []string, input map[string]any) (map[string]any, error) {
	args := m.Called(ctx, docType, expected, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

type MockProfileExtractor struct {
	mock.Mock
}

func (m *MockProfileExtractor) ExtractProfile(ctx context.Context, documentName string, data map[string]any) (oracle.Profile, error) {
	args := m.Called(ctx, documentName, data)
	return args.Get(0).(oracle.Profile), args.Error(1)
}

type MockComparer struct {
	mock.Mock
}

func (m *MockComparer) CompareValues(ctx context.Context, field, reference, value, documentName string) (oracle.Comparison, error) {
	args := m.Called(ctx, field, reference, value, documentName)
	return args.Get(0).(oracle.Comparison), args.Error(1)
}

type MockConsensusFinder struct {
	mock.Mock
}

func (m *MockConsensusFinder) FindConsensus(ctx context.Context, field string, values map[string]string) (oracle.Consensus, error) {
	args := m.Called(ctx, field, values)
	return args.Get(0).(oracle.Consensus), args.Error(1)
}
