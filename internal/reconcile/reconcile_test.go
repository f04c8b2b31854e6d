package reconcile

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docverify/internal/config"
	"docverify/internal/consensus"
	"docverify/internal/model"
	"docverify/internal/oracle"
	oraclemocks "docverify/internal/oracle/mocks"
	"docverify/internal/repository"
	repomocks "docverify/internal/repository/mocks"
	"docverify/internal/storage"
	storagemocks "docverify/internal/storage/mocks"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWatcher(repo repository.RecordRepository, store storage.Storage,
	profiles oracle.ProfileExtractor, engine *consensus.Engine) *Watcher {
	return NewWatcher(config.PipelineConfig{}, repo, store, profiles, engine, discard())
}

func agreeingEngine() *consensus.Engine {
	cmp := new(oraclemocks.MockComparer)
	cmp.On("CompareValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(oracle.Comparison{Match: true, Reason: "same"}, nil).Maybe()
	finder := new(oraclemocks.MockConsensusFinder)
	finder.On("FindConsensus", mock.Anything, mock.Anything, mock.Anything).
		Return(oracle.Consensus{Value: "x", AgreementCount: 2, TotalDocuments: 2, AllMatch: true}, nil).Maybe()
	return consensus.NewEngine(cmp, finder, 85, discard())
}

func caseDocs() []repository.CaseDocument {
	return []repository.CaseDocument{
		{
			DocumentName: "drivers license",
			ChecklistID:  "chk-7",
			CleanFields:  map[string]string{"firstName": "John", "lastName": "Smith"},
		},
		{
			DocumentName: "passport",
			CleanFields:  map[string]string{"firstName": "JOHN", "lastName": "SMITH"},
		},
	}
}

func profileFor(doc repository.CaseDocument) oracle.Profile {
	return oracle.Profile{Standard: doc.CleanFields, Additional: map[string]string{}}
}

func TestWatcher_PollReconcilesReadyCase(t *testing.T) {
	key := repository.CaseKey{TenantID: "3580", CaseID: "9921"}
	docs := caseDocs()

	repo := new(repomocks.MockRecordRepository)
	repo.On("ReadyCases", mock.Anything).Return([]repository.CaseKey{key}, nil)
	repo.On("CaseDocuments", mock.Anything, key).Return(docs, nil).Once()
	repo.On("BorrowerReference", mock.Anything, key).
		Return(&model.BorrowerReference{TenantID: "3580", CaseID: "9921", FirstName: "John", LastName: "Smith"}, nil).Once()

	profiles := new(oraclemocks.MockProfileExtractor)
	profiles.On("ExtractProfile", mock.Anything, "drivers license", mock.Anything).
		Return(profileFor(docs[0]), nil).Once()
	profiles.On("ExtractProfile", mock.Anything, "passport", mock.Anything).
		Return(profileFor(docs[1]), nil).Once()

	var reportKey string
	store := new(storagemocks.MockStorage)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { reportKey = args.String(1) }).
		Return(storage.ObjectInfo{}, nil).Once()

	repo.On("MarkVerified", mock.Anything, key, true, mock.Anything).Return(nil).Once()

	w := testWatcher(repo, store, profiles, agreeingEngine())
	err := w.Poll(context.Background())

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	profiles.AssertExpectations(t)
	assert.True(t, strings.HasPrefix(reportKey, "results/3580/"), "got %q", reportKey)
	assert.True(t, strings.HasSuffix(reportKey, "/9921/case_report.json"), "got %q", reportKey)
}

func TestWatcher_ReadyCaseIsProcessedOnce(t *testing.T) {
	key := repository.CaseKey{TenantID: "3580", CaseID: "9921"}
	docs := caseDocs()

	repo := new(repomocks.MockRecordRepository)
	repo.On("ReadyCases", mock.Anything).Return([]repository.CaseKey{key}, nil)
	repo.On("CaseDocuments", mock.Anything, key).Return(docs, nil)
	repo.On("BorrowerReference", mock.Anything, key).Return(nil, nil)
	repo.On("MarkVerified", mock.Anything, key, mock.Anything, mock.Anything).Return(nil)

	profiles := new(oraclemocks.MockProfileExtractor)
	profiles.On("ExtractProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(profileFor(docs[0]), nil)

	store := new(storagemocks.MockStorage)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)

	w := testWatcher(repo, store, profiles, agreeingEngine())

	// Readiness stays true in the system-of-record; the second observation
	// must be a no-op.
	assert.NoError(t, w.Poll(context.Background()))
	assert.NoError(t, w.Poll(context.Background()))

	repo.AssertNumberOfCalls(t, "CaseDocuments", 1)
	repo.AssertNumberOfCalls(t, "MarkVerified", 1)
}

func TestWatcher_FailedCaseRetriesNextPoll(t *testing.T) {
	key := repository.CaseKey{TenantID: "3580", CaseID: "9921"}

	repo := new(repomocks.MockRecordRepository)
	repo.On("ReadyCases", mock.Anything).Return([]repository.CaseKey{key}, nil)
	repo.On("CaseDocuments", mock.Anything, key).Return(nil, assert.AnError)

	w := testWatcher(repo, new(storagemocks.MockStorage), new(oraclemocks.MockProfileExtractor), agreeingEngine())

	// A failing case is not added to the processed set.
	assert.NoError(t, w.Poll(context.Background()))
	assert.NoError(t, w.Poll(context.Background()))

	repo.AssertNumberOfCalls(t, "CaseDocuments", 2)
}

func TestWatcher_ProfileOracleDegradesToStoredFields(t *testing.T) {
	key := repository.CaseKey{TenantID: "3580", CaseID: "9921"}
	docs := []repository.CaseDocument{{
		DocumentName: "drivers license",
		CleanFields:  map[string]string{"firstName": "John", "issuingState": "TX", "zip": "30309"},
	}}

	repo := new(repomocks.MockRecordRepository)
	repo.On("ReadyCases", mock.Anything).Return([]repository.CaseKey{key}, nil)
	repo.On("CaseDocuments", mock.Anything, key).Return(docs, nil)
	repo.On("BorrowerReference", mock.Anything, key).Return(nil, nil)
	repo.On("MarkVerified", mock.Anything, key, mock.Anything, mock.Anything).Return(nil)

	profiles := new(oraclemocks.MockProfileExtractor)
	profiles.On("ExtractProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(oracle.Profile{}, assert.AnError)

	store := new(storagemocks.MockStorage)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, nil)

	w := testWatcher(repo, store, profiles, agreeingEngine())
	err := w.Poll(context.Background())

	assert.NoError(t, err)
	repo.AssertCalled(t, "MarkVerified", mock.Anything, key, mock.Anything, mock.Anything)
}

func TestDegradedProfile(t *testing.T) {
	p := degradedProfile(map[string]string{
		"firstName":    "John",
		"dob":          "07/25/1980",
		"issuingState": "TX",
		"zip":          "30309",
	})

	assert.Equal(t, map[string]string{
		"firstName":    "John",
		"dateOfBirth":  "07/25/1980",
		"licenseState": "TX",
	}, p.Standard)
	assert.Equal(t, map[string]string{"zip": "30309"}, p.Additional)
}
