// internal/workers/idea/create-idea-record/handler_test.go
package createidearecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestInput() *Input {
	return &Input{
		Idea: models.Idea{
			Title:              "AI Tutor",
			Tagline:            "Personal tutoring for every student",
			Category:           "EdTech",
			Stage:              "Prototype",
			ProblemStatement:   "Students lack individual attention in crowded classrooms.",
			ProposedSolution:   "Adaptive lessons that adjust to each learner's pace.",
			Uniqueness:         "Curriculum aligned with national standards.",
			TargetAudience:     "Individuals",
			MarketSize:         "Large (> $10B)",
			CustomerValidation: "Pilot with 3 schools.",
			CurrentProgress:    "mvp",
			BusinessModel:      "Subscription",
			Status:             models.StatusFeatured,
			Views:              900,
		},
		Entrepreneur: Submitter{
			ID:    "user-7",
			Name:  "Sarah Chen",
			Email: "sarah@example.com",
			Role:  "entrepreneur",
		},
	}
}

type mockIndexer struct {
	indexFunc func(ctx context.Context, idea models.Idea) error
	calls     int
}

func (m *mockIndexer) Index(ctx context.Context, idea models.Idea) error {
	m.calls++
	if m.indexFunc != nil {
		return m.indexFunc(ctx, idea)
	}
	return nil
}

type failingRepo struct {
	repository.IdeaRepository
	err error
}

func (r *failingRepo) Add(context.Context, *models.Idea) error {
	return r.err
}

func newTestHandler(t *testing.T, repo repository.IdeaRepository, indexer Indexer) *Handler {
	h := NewHandler(LoadConfig(), repo, indexer, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC) }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	repo := repository.NewMemoryRepository()
	indexer := &mockIndexer{}
	handler := newTestHandler(t, repo, indexer)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.NotEmpty(t, output.IdeaID)
	assert.Equal(t, models.StatusPending, output.Status)
	assert.Equal(t, "2024-02-01T09:30:00Z", output.CreatedAt)
	assert.True(t, output.Indexed)
	assert.False(t, output.Demo)
	assert.Equal(t, 1, indexer.calls)

	stored, err := repo.Get(context.Background(), output.IdeaID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, models.VisibilityPublic, stored.Visibility)
	assert.Equal(t, 0, stored.Views)
	assert.Nil(t, stored.AIScore)
	assert.Equal(t, "user-7", stored.Entrepreneur.Ref)
	assert.Empty(t, stored.Entrepreneur.Name)
}

func TestHandler_Execute_DemoModeEmbedsProfile(t *testing.T) {
	repo := repository.NewMemoryRepository()
	handler := newTestHandler(t, repo, nil)

	input := createTestInput()
	input.DemoMode = true

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.Demo)
	assert.False(t, output.Indexed)

	stored, err := repo.Get(context.Background(), output.IdeaID)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Chen", stored.Entrepreneur.DisplayName())
	assert.Equal(t, "sarah@example.com", stored.Entrepreneur.Email)
}

func TestHandler_Execute_IndexFailureIsNotFatal(t *testing.T) {
	indexer := &mockIndexer{indexFunc: func(context.Context, models.Idea) error {
		return errors.New("es down")
	}}
	handler := newTestHandler(t, repository.NewMemoryRepository(), indexer)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.False(t, output.Indexed)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		repo      repository.IdeaRepository
		mutate    func(*Input)
		wantErr   error
		wantCode  apperrors.ErrorCode
		wantThrow bool
	}{
		{
			name:      "investor cannot submit",
			repo:      repository.NewMemoryRepository(),
			mutate:    func(in *Input) { in.Entrepreneur.Role = "investor" },
			wantErr:   ErrAccessDenied,
			wantCode:  apperrors.ErrCodeAccessDenied,
			wantThrow: true,
		},
		{
			name: "enum outside allowed values",
			repo: repository.NewMemoryRepository(),
			mutate: func(in *Input) {
				in.Idea.Category = "Space"
				in.Idea.BusinessModel = "Barter"
			},
			wantErr:   ErrSchemaInvalid,
			wantCode:  apperrors.ErrCodeIdeaSchemaInvalid,
			wantThrow: true,
		},
		{
			name:      "insert failure is retried",
			repo:      &failingRepo{err: errors.New("connection reset")},
			mutate:    func(*Input) {},
			wantErr:   ErrDatabaseInsertFailed,
			wantCode:  apperrors.ErrCodeDatabaseInsertFailed,
			wantThrow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.repo, nil)
			input := createTestInput()
			tt.mutate(input)

			output, err := handler.Execute(context.Background(), input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, tt.wantErr))

			d := apperrors.Decide(toStandardError(err), 3)
			assert.Equal(t, tt.wantCode, d.Standard.Code)
			assert.Equal(t, tt.wantThrow, d.Throw())
		})
	}
}

func TestToStandardError_SchemaIssuesBecomeVariables(t *testing.T) {
	handler := newTestHandler(t, repository.NewMemoryRepository(), nil)
	input := createTestInput()
	input.Idea.Stage = "idea"

	_, err := handler.Execute(context.Background(), input)
	require.Error(t, err)

	d := apperrors.Decide(toStandardError(err), 3)
	issues, ok := d.BPMN.ToErrorVariables()["issues"].([]string)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "stage")
}
