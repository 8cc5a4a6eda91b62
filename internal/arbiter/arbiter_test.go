package arbiter

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/placelist-cli/internal/model"
	"github.com/sells-group/placelist-cli/pkg/anthropic"
)

// mockJudge returns a canned response or error for every CreateMessage call.
type mockJudge struct {
	text string
	err  error

	calls        int
	lastRequest  anthropic.MessageRequest
}

func (m *mockJudge) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: m.text}},
	}, nil
}

func testQuery() model.ResolutionQuery {
	return model.ResolutionQuery{
		Name:               "Hawa Mahal",
		CategoryHint:       "palace",
		AnchorCity:         "Jaipur",
		AnchorState:        "Rajasthan",
		ContextDescription: "The pink sandstone facade rises five stories above the old city bazaar.",
	}
}

func testCandidate() model.Candidate {
	return model.Candidate{
		DisplayName:      "Hawa Mahal",
		FormattedAddress: "Badi Choupad, Jaipur, Rajasthan, India",
		TypeTags:         []string{"tourist_attraction"},
	}
}

func TestInGreyZone_Band(t *testing.T) {
	a := New(&mockJudge{}, DefaultConfig())
	assert.False(t, a.InGreyZone(0.34))
	assert.True(t, a.InGreyZone(0.35)) // min inclusive
	assert.True(t, a.InGreyZone(0.5))
	assert.True(t, a.InGreyZone(0.8499))
	assert.False(t, a.InGreyZone(0.85)) // max exclusive
	assert.False(t, a.InGreyZone(0.9))
}

func TestInGreyZone_NoClient(t *testing.T) {
	a := New(nil, DefaultConfig())
	assert.False(t, a.InGreyZone(0.5))

	var nilArbiter *Arbiter
	assert.False(t, nilArbiter.InGreyZone(0.5))
}

func TestArbitrate_ConfidentConfirmation(t *testing.T) {
	j := &mockJudge{text: `{"match": true, "confidence": 0.95}`}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.5)
	assert.Equal(t, 0.95, final)
}

func TestArbitrate_ConfidentRejection(t *testing.T) {
	j := &mockJudge{text: `{"match": false, "confidence": 0.05}`}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.5)
	assert.Equal(t, 0.1, final)
}

func TestArbitrate_AmbiguousKeepsMathScore(t *testing.T) {
	j := &mockJudge{text: `{"match": true, "confidence": 0.5}`}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.62)
	assert.Equal(t, 0.62, final)
}

func TestArbitrate_JudgeFailureKeepsMathScore(t *testing.T) {
	j := &mockJudge{err: eris.New("service unavailable")}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.62)
	assert.Equal(t, 0.62, final)
}

func TestArbitrate_MalformedVerdictKeepsMathScore(t *testing.T) {
	j := &mockJudge{text: "I think these are probably the same place."}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.41)
	assert.Equal(t, 0.41, final)
}

func TestArbitrate_Bounded(t *testing.T) {
	j := &mockJudge{text: `{"match": true, "confidence": 7.5}`}
	a := New(j, DefaultConfig())
	final := a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.5)
	assert.LessOrEqual(t, final, 1.0)
	assert.GreaterOrEqual(t, final, 0.0)
}

func TestJudge_PromptContainsContext(t *testing.T) {
	j := &mockJudge{text: `{"match": true, "confidence": 0.9}`}
	a := New(j, DefaultConfig())
	a.Arbitrate(context.Background(), testQuery(), testCandidate(), 0.5)

	assert.Equal(t, 1, j.calls)
	prompt := j.lastRequest.Messages[0].Content
	assert.Contains(t, prompt, "Hawa Mahal")
	assert.Contains(t, prompt, "palace")
	assert.Contains(t, prompt, "Jaipur")
	assert.Contains(t, prompt, "tourist_attraction")
}

func TestBuildContext_TruncatesExcerpt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxContextChars = 10
	a := New(&mockJudge{}, cfg)

	q := testQuery()
	q.CategoryHint = ""
	q.AnchorCity = ""
	q.AnchorState = ""
	q.ContextDescription = "abcdefghijKLMNOP"
	assert.Equal(t, "excerpt: abcdefghij", a.buildContext(q))
}

func TestParseVerdict_MarkdownFence(t *testing.T) {
	v, err := parseVerdict("```json\n{\"match\": true, \"confidence\": 0.88}\n```")
	assert.NoError(t, err)
	assert.True(t, v.Match)
	assert.Equal(t, 0.88, v.Confidence)
}

func TestParseVerdict_NoJSON(t *testing.T) {
	_, err := parseVerdict("no structured answer")
	assert.Error(t, err)
}
