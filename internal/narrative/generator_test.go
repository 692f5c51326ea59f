package narrative

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/resilience"
	"github.com/gtj-aero/trustscore-cli/pkg/anthropic"
	"github.com/gtj-aero/trustscore-cli/pkg/anthropic/mocks"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 1000
	cfg.Retry.MaxAttempts = 1
	return cfg
}

func TestExplainReturnsTrimmedText(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "  Clean record overall.\n"}},
	}, nil)

	g := NewGenerator(mc, fastConfig())

	got, err := g.Explain(context.Background(), "explain this score")
	require.NoError(t, err)
	assert.Equal(t, "Clean record overall.", got)
	mc.AssertExpectations(t)
}

func TestExplainSendsCachedSystemPrompt(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) == 1 &&
			req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 &&
			req.Messages[0].Content == "why 87"
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Because."}},
	}, nil)

	g := NewGenerator(mc, fastConfig())

	_, err := g.Explain(context.Background(), "why 87")
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestExplainEmptyResponseIsError(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "thinking", Text: "hmm"}},
	}, nil)

	g := NewGenerator(mc, fastConfig())

	_, err := g.Explain(context.Background(), "explain")
	assert.Error(t, err)
}

func TestExplainPropagatesAPIError(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("overloaded"))

	g := NewGenerator(mc, fastConfig())

	_, err := g.Explain(context.Background(), "explain")
	assert.Error(t, err)
}

func TestExplainRetriesTransientFailures(t *testing.T) {
	mc := new(mocks.MockClient)
	transient := resilience.NewTransientError(eris.New("529 overloaded"), 529)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, transient).Once()
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Recovered."}},
	}, nil).Once()

	cfg := fastConfig()
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.InitialBackoff = 1 // nanoseconds, keep the test fast
	g := NewGenerator(mc, cfg)

	got, err := g.Explain(context.Background(), "explain")
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", got)
	mc.AssertExpectations(t)
}

func TestExplainBreakerOpensAfterRepeatedFailures(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("down"))

	cfg := fastConfig()
	cfg.Breaker.FailureThreshold = 2
	g := NewGenerator(mc, cfg)

	ctx := context.Background()
	_, _ = g.Explain(ctx, "one")
	_, _ = g.Explain(ctx, "two")

	// Third call is rejected without touching the API.
	_, err := g.Explain(ctx, "three")
	require.Error(t, err)
	assert.True(t, eris.Is(err, resilience.ErrCircuitOpen))
	mc.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestPrimeSwallowsFailures(t *testing.T) {
	mc := new(mocks.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, eris.New("down"))

	g := NewGenerator(mc, fastConfig())
	assert.NotPanics(t, func() { g.Prime(context.Background()) })
}
