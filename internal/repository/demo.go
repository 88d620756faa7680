package repository

import (
	"context"

	"ideaforge-workers/internal/models"
)

func intPtr(v int) *int { return &v }

// DemoIdeas is the catalogue served when the worker manager runs in demo mode.
func DemoIdeas() []models.Idea {
	return []models.Idea{
		{
			ID:      "1",
			Title:   "AI-Powered Learning Platform",
			Tagline: "Personalized education through machine learning algorithms",
			Description: "Revolutionary AI platform that adapts to individual learning styles and provides " +
				"personalized curriculum paths for students of all ages.",
			Category:           "EdTech",
			Stage:              "Prototype",
			CurrentProgress:    "prototype",
			ProblemStatement:   "Students learn at different speeds but classrooms teach everyone the same way, so many fall behind.",
			ProposedSolution:   "An adaptive tutor that uses machine learning to build a personal curriculum for every learner.",
			Uniqueness:         "Models each learner's mastery per concept instead of per course.",
			TargetAudience:     "Individuals",
			MarketSize:         "Large (> $10B)",
			CustomerValidation: "Pilot with 120 students showed a 25% improvement in test results.",
			BusinessModel:      "Subscription",
			DemoURL:            "https://demo.example.com/learning",
			Entrepreneur: models.AuthorRef{
				ID:     "ent1",
				Name:   "Sarah Chen",
				Email:  "sarah@example.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=sarah",
			},
			Visibility: models.VisibilityPublic,
			Status:     models.StatusFeatured,
			AIScore:    intPtr(92),
			Views:      156,
			Featured:   true,
			CreatedAt:  "2024-01-15T00:00:00Z",
			UpdatedAt:  "2024-01-15T00:00:00Z",
		},
		{
			ID:      "2",
			Title:   "Sustainable Food Delivery",
			Tagline: "Zero-waste food delivery using smart packaging",
			Description: "Innovative food delivery service that eliminates packaging waste through reusable " +
				"smart containers and optimized logistics.",
			Category:           "GreenTech",
			Stage:              "Early Customers",
			CurrentProgress:    "early-users",
			ProblemStatement:   "Food delivery produces millions of tonnes of single-use packaging waste every year.",
			ProposedSolution:   "Reusable smart containers tracked with IoT tags and collected on the next delivery.",
			Uniqueness:         "Deposit-free returns built into the courier route.",
			TargetAudience:     "SMBs",
			MarketSize:         "Medium ($1B - $10B)",
			CustomerValidation: "40 restaurants signed up and $50K MRR after six months.",
			BusinessModel:      "Commission",
			Entrepreneur: models.AuthorRef{
				ID:     "ent2",
				Name:   "Emma Wilson",
				Email:  "emma@example.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=emma",
			},
			Visibility: models.VisibilityPublic,
			Status:     models.StatusActive,
			AIScore:    intPtr(85),
			Views:      243,
			CreatedAt:  "2024-01-08T00:00:00Z",
			UpdatedAt:  "2024-01-08T00:00:00Z",
		},
		{
			ID:      "3",
			Title:   "Virtual Reality Therapy",
			Tagline: "Mental health treatment through immersive VR experiences",
			Description: "Cutting-edge VR therapy platform helping patients overcome phobias, PTSD, and anxiety " +
				"disorders through controlled virtual environments.",
			Category:           "HealthTech",
			Stage:              "Growth",
			CurrentProgress:    "revenue",
			ProblemStatement:   "Exposure therapy for phobias and PTSD is hard to deliver safely and consistently in a clinic.",
			ProposedSolution:   "Clinician-controlled VR scenarios that grade exposure and record patient responses.",
			Uniqueness:         "Protocols designed with licensed therapists and validated in two hospital trials.",
			TargetAudience:     "Enterprises",
			MarketSize:         "Large (> $10B)",
			CustomerValidation: "Deployed in 12 clinics with $200K MRR.",
			BusinessModel:      "Licensing",
			Entrepreneur: models.AuthorRef{
				ID:     "ent3",
				Name:   "Dr. Michael Rodriguez",
				Email:  "michael@example.com",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=michael",
			},
			Visibility: models.VisibilityPublic,
			Status:     models.StatusFeatured,
			AIScore:    intPtr(91),
			Views:      367,
			Featured:   true,
			CreatedAt:  "2023-12-28T00:00:00Z",
			UpdatedAt:  "2023-12-28T00:00:00Z",
		},
	}
}

// NewDemoRepository returns a memory repository seeded with DemoIdeas.
func NewDemoRepository() *MemoryRepository {
	repo := NewMemoryRepository()
	ideas := DemoIdeas()
	// Insert oldest first so the listing order matches creation order.
	for i := len(ideas) - 1; i >= 0; i-- {
		_ = repo.Add(context.Background(), &ideas[i])
	}
	return repo
}
