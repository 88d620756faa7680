package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-workers/internal/engine"
	createidearecord "ideaforge-workers/internal/workers/idea/create-idea-record"
)

const toolLibraryYAML = `
title: Neighbourhood Tool Library
tagline: Borrow the drill instead of buying one
problemStatement: Households buy expensive tools they use once a year and then store them for a decade.
proposedSolution: A lending app backed by lockers in apartment lobbies so neighbours can share tools.
uniqueness: Lockers remove the need for handoffs between strangers.
category: Marketplace
`

const edtechYAML = `
id: new-1
title: Adaptive Maths Tutor
tagline: Machine learning practice sets for every student
category: EdTech
stage: Prototype
targetAudience: Individuals
businessModel: Subscription
problemStatement: Students fall behind in maths because practice is not personalized.
proposedSolution: Machine learning picks the next exercise for each learner.
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		path := writeFile(t, "idea.yaml", toolLibraryYAML)
		out, err := run(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "ready to submit")
	})

	t.Run("issues exit non-zero", func(t *testing.T) {
		path := writeFile(t, "idea.json", `{"title": "!!!", "tagline": "short"}`)
		out, err := run(t, "validate", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIssuesFound))
		assert.Contains(t, out, engine.IssueTitleSymbols)
		assert.Contains(t, out, engine.IssueTaglineShort)
	})

	t.Run("json format", func(t *testing.T) {
		path := writeFile(t, "idea.yaml", toolLibraryYAML)
		out, err := run(t, "validate", path, "--format", "json")
		require.NoError(t, err)

		var result validateResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Issues)
	})
}

func TestEvaluate(t *testing.T) {
	path := writeFile(t, "idea.yaml", toolLibraryYAML)

	out, err := run(t, "evaluate", path, "-f", "json")
	require.NoError(t, err)

	var result engine.EvaluationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	idea, err := loadIdea(path)
	require.NoError(t, err)
	assert.Equal(t, engine.Evaluate(idea).Score, result.Score)

	text, err := run(t, "evaluate", path)
	require.NoError(t, err)
	assert.Contains(t, text, "Score: ")
	assert.Contains(t, text, "completeness")
	assert.Contains(t, text, "Warnings (")
}

func TestSwot(t *testing.T) {
	path := writeFile(t, "idea.yaml", edtechYAML)

	out, err := run(t, "swot", path)
	require.NoError(t, err)
	for _, heading := range []string{"Strengths (", "Weaknesses (", "Opportunities (", "Threats ("} {
		assert.Contains(t, out, heading)
	}

	js, err := run(t, "swot", path, "--format", "json")
	require.NoError(t, err)
	var swot engine.SWOTAnalysis
	require.NoError(t, json.Unmarshal([]byte(js), &swot))
	assert.NotEmpty(t, swot.Strengths)
}

func TestSimilar_DemoPool(t *testing.T) {
	path := writeFile(t, "idea.yaml", edtechYAML)

	out, err := run(t, "similar", path, "--format", "json")
	require.NoError(t, err)

	var results []similarResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].IdeaID)
	assert.Equal(t, "Sarah Chen", results[0].Author)
	assert.Equal(t, "Very Similar", results[0].Label)
}

func TestSimilar_PoolFile(t *testing.T) {
	target := writeFile(t, "idea.yaml", edtechYAML)
	pool := writeFile(t, "pool.json", `{"ideas": [
		{"id": "p1", "title": "Maths Practice Coach", "category": "EdTech", "stage": "Prototype",
		 "targetAudience": "Individuals", "businessModel": "Subscription",
		 "tagline": "Personalized practice for students"},
		{"id": "p2", "title": "Parking Sensors", "category": "IoT"}
	]}`)

	out, err := run(t, "similar", target, "--pool", pool, "--max", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Maths Practice Coach")
	assert.NotContains(t, out, "Parking Sensors")
}

func TestLoadPool_List(t *testing.T) {
	path := writeFile(t, "pool.yaml", "- id: a\n  title: One\n- id: b\n  title: Two\n")
	pool, err := loadPool(path)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "b", pool[1].ID)

	_, err = loadPool(writeFile(t, "bad.yaml", "just a string"))
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	path := writeFile(t, "idea.yaml", toolLibraryYAML)
	_, err := run(t, "validate", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "evaluate", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkers(t *testing.T) {
	out, err := run(t, "workers")
	require.NoError(t, err)
	assert.Contains(t, out, "TASK TYPE")
	assert.Contains(t, out, "evaluate-idea")
	assert.Contains(t, out, "DUPLICATE_INTEREST")

	path := writeFile(t, "registry.json", `{"version":"9.9.9","activities":[{"id":"x","taskType":"x"}]}`)
	out, err = run(t, "workers", "--registry", path, "--format", "json")
	require.NoError(t, err)

	var got struct {
		Version    string `json:"version"`
		Activities []struct {
			TaskType string `json:"taskType"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "9.9.9", got.Version)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, "x", got.Activities[0].TaskType)
}

type fakeStarter struct {
	processID string
	vars      interface{}
	closed    bool
}

func (f *fakeStarter) CreateInstance(_ context.Context, processID string, vars interface{}) (int64, error) {
	f.processID = processID
	f.vars = vars
	return 2251799813685249, nil
}

func (f *fakeStarter) Close() error {
	f.closed = true
	return nil
}

func useFakeBroker(t *testing.T) *fakeStarter {
	t.Helper()
	fake := &fakeStarter{}
	prev := dialBroker
	dialBroker = func(string) (processStarter, error) { return fake, nil }
	t.Cleanup(func() { dialBroker = prev })
	return fake
}

func TestSubmit(t *testing.T) {
	fake := useFakeBroker(t)
	path := writeFile(t, "idea.yaml", toolLibraryYAML)

	out, err := run(t, "submit", path, "--entrepreneur", "ent7", "--name", "Ana Ruiz", "--format", "json")
	require.NoError(t, err)

	var got submitResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(2251799813685249), got.ProcessInstanceKey)
	assert.Equal(t, "idea-submission", fake.processID)
	assert.True(t, fake.closed)

	input, ok := fake.vars.(createidearecord.Input)
	require.True(t, ok)
	assert.Equal(t, "Neighbourhood Tool Library", input.Idea.Title)
	assert.Equal(t, "ent7", input.Entrepreneur.ID)
	assert.Equal(t, "Ana Ruiz", input.Entrepreneur.Name)
	assert.Equal(t, "entrepreneur", input.Entrepreneur.Role)
}

func TestSubmit_LocalChecks(t *testing.T) {
	fake := useFakeBroker(t)
	path := writeFile(t, "idea.yaml", "title: x\n")

	_, err := run(t, "submit", path, "--entrepreneur", "ent7")
	assert.True(t, errors.Is(err, ErrIssuesFound))
	assert.Empty(t, fake.processID)

	_, err = run(t, "submit", path, "--entrepreneur", "ent7", "--force", "--process", "idea-resubmission")
	require.NoError(t, err)
	assert.Equal(t, "idea-resubmission", fake.processID)
}

func TestSubmit_RequiresEntrepreneur(t *testing.T) {
	useFakeBroker(t)
	path := writeFile(t, "idea.yaml", toolLibraryYAML)
	_, err := run(t, "submit", path)
	assert.ErrorContains(t, err, "--entrepreneur")
}
