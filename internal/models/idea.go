// internal/models/idea.go
package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
)

// Idea is a startup pitch submitted by an entrepreneur. Text fields may be
// missing or carry the wrong JSON type; decoding coerces them to "".
type Idea struct {
	ID                 string       `json:"id,omitempty"`
	Title              string       `json:"title"`
	Tagline            string       `json:"tagline"`
	Description        string       `json:"description,omitempty"`
	Category           string       `json:"category"`
	Stage              string       `json:"stage"`
	CurrentProgress    string       `json:"currentProgress,omitempty"`
	ProblemStatement   string       `json:"problemStatement"`
	ProposedSolution   string       `json:"proposedSolution"`
	Uniqueness         string       `json:"uniqueness"`
	TargetAudience     string       `json:"targetAudience"`
	MarketSize         string       `json:"marketSize"`
	Competitors        string       `json:"competitors,omitempty"`
	CustomerValidation string       `json:"customerValidation"`
	BusinessModel      string       `json:"businessModel"`
	DemoURL            string       `json:"demoUrl,omitempty"`
	TeamBackground     string       `json:"teamBackground,omitempty"`
	PitchDeckURL       string       `json:"pitchDeckUrl,omitempty"`
	Entrepreneur       AuthorRef    `json:"entrepreneur"`
	Visibility         string       `json:"visibility,omitempty"`
	Status             string       `json:"status,omitempty"`
	AIScore            *int         `json:"aiScore,omitempty"`
	ScoreHistory       []ScoreEntry `json:"scoreHistory,omitempty"`
	Views              int          `json:"views"`
	Interests          []Interest   `json:"interests,omitempty"`
	Featured           bool         `json:"featured"`
	CreatedAt          string       `json:"createdAt,omitempty"`
	UpdatedAt          string       `json:"updatedAt,omitempty"`
}

// ScoreEntry records one evaluation of an idea.
type ScoreEntry struct {
	Score  int    `json:"score"`
	Source string `json:"source"`
	At     string `json:"at"`
}

// Interest is an investor's expression of interest in an idea.
type Interest struct {
	InvestorID   string `json:"investor"`
	InvestorName string `json:"investorName,omitempty"`
	Message      string `json:"message,omitempty"`
	Date         string `json:"date"`
}

// HasInterestFrom reports whether investorID already expressed interest.
func (i *Idea) HasInterestFrom(investorID string) bool {
	for _, it := range i.Interests {
		if it.InvestorID == investorID {
			return true
		}
	}
	return false
}

// ContentHash is a hex SHA-256 over the submitted fields. Identity and
// bookkeeping fields (author, status, views, scores, interests, timestamps)
// do not contribute.
func (i Idea) ContentHash() string {
	fp := i
	fp.ID = ""
	fp.Entrepreneur = AuthorRef{}
	fp.Visibility = ""
	fp.Status = ""
	fp.AIScore = nil
	fp.ScoreHistory = nil
	fp.Views = 0
	fp.Interests = nil
	fp.Featured = false
	fp.CreatedAt = ""
	fp.UpdatedAt = ""

	data, _ := json.Marshal(fp)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (i *Idea) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Anything that is not an object decodes to an empty idea.
		*i = Idea{}
		return nil
	}

	*i = Idea{
		ID:                 looseID(raw["id"]),
		Title:              looseString(raw["title"]),
		Tagline:            looseString(raw["tagline"]),
		Description:        looseString(raw["description"]),
		Category:           looseString(raw["category"]),
		Stage:              looseString(raw["stage"]),
		CurrentProgress:    looseString(raw["currentProgress"]),
		ProblemStatement:   looseString(raw["problemStatement"]),
		ProposedSolution:   looseString(raw["proposedSolution"]),
		Uniqueness:         looseString(raw["uniqueness"]),
		TargetAudience:     looseString(raw["targetAudience"]),
		MarketSize:         looseString(raw["marketSize"]),
		Competitors:        looseString(raw["competitors"]),
		CustomerValidation: looseString(raw["customerValidation"]),
		BusinessModel:      looseString(raw["businessModel"]),
		DemoURL:            looseString(raw["demoUrl"]),
		TeamBackground:     looseString(raw["teamBackground"]),
		PitchDeckURL:       looseString(raw["pitchDeckUrl"]),
		Visibility:         looseString(raw["visibility"]),
		Status:             looseString(raw["status"]),
		Views:              looseInt(raw["views"]),
		Featured:           looseBool(raw["featured"]),
		CreatedAt:          looseString(raw["createdAt"]),
		UpdatedAt:          looseString(raw["updatedAt"]),
	}
	if i.ID == "" {
		i.ID = looseID(raw["_id"])
	}
	if v, ok := raw["aiScore"]; ok {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			score := int(math.Round(f))
			i.AIScore = &score
		}
	}
	if v, ok := raw["entrepreneur"]; ok {
		_ = json.Unmarshal(v, &i.Entrepreneur)
	}
	if v, ok := raw["scoreHistory"]; ok {
		if err := json.Unmarshal(v, &i.ScoreHistory); err != nil {
			i.ScoreHistory = nil
		}
	}
	if v, ok := raw["interests"]; ok {
		if err := json.Unmarshal(v, &i.Interests); err != nil {
			i.Interests = nil
		}
	}
	return nil
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// looseID accepts string or numeric identifiers.
func looseID(raw json.RawMessage) string {
	if s := looseString(raw); s != "" {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return ""
	}
	return n.String()
}

func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return int(f)
}

func looseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	if s := looseString(raw); s != "" {
		b, _ = strconv.ParseBool(s)
	}
	return b
}

// AuthorRef is the entrepreneur attached to an idea. Stored records carry a
// bare identifier; populated records carry a profile object.
type AuthorRef struct {
	Ref    string `json:"-"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

const anonymousAuthor = "Anonymous"

// avatarService generates a deterministic avatar for authors without one.
const avatarService = "https://api.dicebear.com/7.x/avataaars/svg?seed="

func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	*a = AuthorRef{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Ref = s
		a.ID = s
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	a.ID = looseID(obj["id"])
	if a.ID == "" {
		a.ID = looseID(obj["_id"])
	}
	a.Name = looseString(obj["name"])
	a.Email = looseString(obj["email"])
	a.Avatar = looseString(obj["avatar"])
	return nil
}

func (a AuthorRef) MarshalJSON() ([]byte, error) {
	if a.Ref != "" && a.Name == "" && a.Email == "" && a.Avatar == "" {
		return json.Marshal(a.Ref)
	}
	if a.IsZero() {
		return []byte("null"), nil
	}
	type profile AuthorRef
	return json.Marshal(profile(a))
}

// IsZero reports whether no author information is present.
func (a AuthorRef) IsZero() bool {
	return a == AuthorRef{}
}

// DisplayName returns the profile name, the bare reference, or "Anonymous".
func (a AuthorRef) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Ref != "" {
		return a.Ref
	}
	return anonymousAuthor
}

// AvatarURL returns the profile avatar or a generated one seeded by the display name.
func (a AuthorRef) AvatarURL() string {
	if a.Avatar != "" {
		return a.Avatar
	}
	return avatarService + url.QueryEscape(a.DisplayName())
}

// Persistence enums. The engine treats these fields as free text.
var (
	Categories = []string{
		"AI/ML", "EdTech", "FinTech", "HealthTech", "GreenTech", "IoT",
		"SaaS", "Consumer", "Gaming", "E-commerce", "Blockchain", "Other",
	}
	Stages          = []string{"Idea", "Prototype", "Early Customers", "Growth", "Scaling"}
	TargetAudiences = []string{"Individuals", "SMBs", "Enterprises", "Niche Groups"}
	MarketSizes     = []string{"Small (< $1B)", "Medium ($1B - $10B)", "Large (> $10B)"}
	Progresses      = []string{"idea", "prototype", "mvp", "early-users", "revenue"}
	BusinessModels  = []string{
		"Subscription", "Freemium", "One-time Purchase", "Marketplace",
		"Advertising", "Commission", "Licensing", "Other",
	}
	Visibilities = []string{VisibilityPublic, VisibilityPrivate}
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Idea statuses
const (
	StatusDraft       = "draft"
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusReviewed    = "reviewed"
	StatusActive      = "active"
	StatusFeatured    = "featured"
	StatusArchived    = "archived"
)

// ListedStatuses are the statuses shown in public listings.
var ListedStatuses = []string{StatusPending, StatusUnderReview, StatusActive, StatusFeatured}
