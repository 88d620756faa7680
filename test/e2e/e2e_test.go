// Package e2e drives the idea workers in process, in the order the
// submission and discovery processes call them, against the in-memory
// repository and a miniredis cache.
package e2e

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
	createidearecord "ideaforge-workers/internal/workers/idea/create-idea-record"
	evaluateidea "ideaforge-workers/internal/workers/idea/evaluate-idea"
	expressinterest "ideaforge-workers/internal/workers/idea/express-interest"
	findsimilarideas "ideaforge-workers/internal/workers/idea/find-similar-ideas"
	generateswot "ideaforge-workers/internal/workers/idea/generate-swot"
	queryideas "ideaforge-workers/internal/workers/idea/query-ideas"
	validateidea "ideaforge-workers/internal/workers/idea/validate-idea"
	sendnotification "ideaforge-workers/internal/workers/notification/send-notification"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type pipeline struct {
	repo          *repository.MemoryRepository
	notifications *repository.MemoryNotificationStore
	cache         *redis.Client
	log           logger.Logger
}

func newPipeline(t *testing.T) *pipeline {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return &pipeline{
		repo:          repository.NewDemoRepository(),
		notifications: repository.NewMemoryNotificationStore(),
		cache:         redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		log:           logger.NewTestLogger(t),
	}
}

func submission() models.Idea {
	return models.Idea{
		Title:              "Classroom VR Field Trips",
		Tagline:            "Virtual field trips for every school",
		Category:           "EdTech",
		Stage:              "Prototype",
		ProblemStatement:   "Rural schools cannot afford field trips to museums and science centers.",
		ProposedSolution:   "Guided virtual reality tours aligned with the curriculum, run on low cost headsets.",
		Uniqueness:         "Partnerships with museums for exclusive scanned exhibits.",
		TargetAudience:     "Educational institutions",
		MarketSize:         "Medium ($1B - $10B)",
		CustomerValidation: "Pilots running in four districts with educator feedback.",
		CurrentProgress:    "mvp",
		BusinessModel:      "Annual school licenses",
		Visibility:         models.VisibilityPublic,
	}
}

func TestIdeaLifecycle(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	idea := submission()

	// 1. Validate
	validated, err := validateidea.NewHandler(validateidea.LoadConfig(), p.log).
		Execute(ctx, &validateidea.Input{Idea: idea})
	require.NoError(t, err)
	require.True(t, validated.IsValid, "issues: %v", validated.Issues)

	// 2. Create
	created, err := createidearecord.NewHandler(createidearecord.LoadConfig(), p.repo, nil, p.log).
		Execute(ctx, &createidearecord.Input{
			Idea: idea,
			Entrepreneur: createidearecord.Submitter{
				ID:    "ent9",
				Name:  "Priya Nair",
				Email: "priya@example.com",
				Role:  "entrepreneur",
			},
		})
	require.NoError(t, err)
	require.NotEmpty(t, created.IdeaID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.Indexed)

	// 3. Evaluate twice; the second run is served from the cache.
	evaluator := evaluateidea.NewHandler(evaluateidea.LoadConfig(), p.repo, p.cache, nil, nil, p.log)
	first, err := evaluator.Execute(ctx, &evaluateidea.Input{IdeaID: created.IdeaID})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Nil(t, first.PreviousScore)
	assert.Equal(t, evaluateidea.SourceHeuristic, first.Source)
	assert.GreaterOrEqual(t, first.Score, 0)
	assert.LessOrEqual(t, first.Score, 100)

	second, err := evaluator.Execute(ctx, &evaluateidea.Input{IdeaID: created.IdeaID})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)
	require.NotNil(t, second.PreviousScore)
	assert.Equal(t, first.Score, *second.PreviousScore)

	stored, err := p.repo.Get(ctx, created.IdeaID)
	require.NoError(t, err)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, first.Score, *stored.AIScore)
	assert.Len(t, stored.ScoreHistory, 2)

	// 4. SWOT
	swot, err := generateswot.NewHandler(generateswot.LoadConfig(), p.repo, p.cache, p.log).
		Execute(ctx, &generateswot.Input{IdeaID: created.IdeaID})
	require.NoError(t, err)
	assert.NotEmpty(t, swot.Strengths)
	assert.NotEmpty(t, swot.Threats)

	// 5. Similar ideas, ranked from a repository scan without the target.
	similar, err := findsimilarideas.NewHandler(findsimilarideas.LoadConfig(), p.repo, nil, p.log).
		Execute(ctx, &findsimilarideas.Input{IdeaID: created.IdeaID})
	require.NoError(t, err)
	assert.Equal(t, findsimilarideas.PoolSourceRepository, similar.PoolSource)
	require.NotEmpty(t, similar.Results)
	for _, r := range similar.Results {
		assert.NotEqual(t, created.IdeaID, r.IdeaID)
	}

	// 6. The new idea shows up in listings.
	query := queryideas.NewHandler(queryideas.LoadConfig(), p.repo, nil, p.log)
	found, err := query.Execute(ctx, &queryideas.Input{Search: "field trips"})
	require.NoError(t, err)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, created.IdeaID, found.Ideas[0].ID)
	assert.Equal(t, queryideas.SourceRepository, found.Source)

	mine, err := query.Execute(ctx, &queryideas.Input{EntrepreneurID: "ent9"})
	require.NoError(t, err)
	require.Equal(t, 1, mine.Count)

	// 7. An investor expresses interest; the entrepreneur gets an in-app notification.
	interest, err := expressinterest.NewHandler(expressinterest.LoadConfig(), p.repo, p.notifications, p.log).
		Execute(ctx, &expressinterest.Input{
			IdeaID: created.IdeaID,
			Investor: expressinterest.Investor{
				ID:    "inv1",
				Name:  "Marcus Lee",
				Role:  "investor",
				Title: "Partner, Seedling Ventures",
			},
		})
	require.NoError(t, err)
	assert.Equal(t, 1, interest.InterestCount)
	assert.Equal(t, "ent9", interest.RecipientID)
	require.NotEmpty(t, interest.NotificationID)

	inbox, err := p.notifications.ListForRecipient(ctx, "ent9", 10)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationInterest, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, "Marcus Lee")

	// 8. Deliver the same notification by email.
	email := new(MockEmailSender)
	email.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return in.Destination.ToAddresses[0] == "priya@example.com" &&
			*in.Message.Subject.Data == "New investor interest in Classroom VR Field Trips"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil).Once()

	cfg := sendnotification.LoadConfig()
	cfg.EmailEnabled = true
	sent, err := sendnotification.NewHandler(cfg, email, nil, p.notifications, p.log).
		Execute(ctx, &sendnotification.Input{
			NotificationID: interest.NotificationID,
			RecipientID:    interest.RecipientID,
			Email:          "priya@example.com",
			Type:           models.NotificationInterest,
			IdeaID:         created.IdeaID,
			Data: map[string]interface{}{
				"investorName": "Marcus Lee",
				"investorRole": "Partner, Seedling Ventures",
				"ideaTitle":    idea.Title,
			},
		})
	require.NoError(t, err)
	assert.Equal(t, sendnotification.StatusSent, sent.Status)
	assert.Equal(t, interest.NotificationID, sent.NotificationID)
	require.Len(t, sent.Channels, 1)
	assert.Equal(t, "msg-1", sent.Channels[0].MessageID)
	email.AssertExpectations(t)

	// No second inbox entry when the id is carried over.
	inbox, err = p.notifications.ListForRecipient(ctx, "ent9", 10)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestDuplicateInterestIsRejected(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t)
	handler := expressinterest.NewHandler(expressinterest.LoadConfig(), p.repo, p.notifications, p.log)
	input := &expressinterest.Input{
		IdeaID:   "2",
		Investor: expressinterest.Investor{ID: "inv1", Name: "Marcus Lee", Role: "investor"},
	}

	_, err := handler.Execute(ctx, input)
	require.NoError(t, err)

	_, err = handler.Execute(ctx, input)
	assert.ErrorIs(t, err, expressinterest.ErrDuplicateInterest)

	inbox, err := p.notifications.ListForRecipient(ctx, "ent2", 10)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
