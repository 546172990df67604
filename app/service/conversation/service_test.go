package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askerFunc func(ctx context.Context, question string, history []Message) (*AskResult, error)

func (f askerFunc) Ask(ctx context.Context, question string, history []Message) (*AskResult, error) {
	return f(ctx, question, history)
}

type suggesterFunc func(ctx context.Context, question string, history []Message, recommendations []Recommendation, summary string) ([]string, error)

func (f suggesterFunc) Suggest(ctx context.Context, question string, history []Message, recommendations []Recommendation, summary string) ([]string, error) {
	return f(ctx, question, history, recommendations, summary)
}

func fixedAsker(result *AskResult) askerFunc {
	return func(context.Context, string, []Message) (*AskResult, error) {
		return result, nil
	}
}

func fixedSuggester(suggestions []string) suggesterFunc {
	return func(context.Context, string, []Message, []Recommendation, string) ([]string, error) {
		return suggestions, nil
	}
}

var cardA = Recommendation{
	CreditCardName: "Card A",
	Reason:         "great travel rewards",
	ApplyURL:       "https://example.com/a",
}

var cardB = Recommendation{
	CreditCardName: "Card B",
	Reason:         "no annual fee",
	ApplyURL:       "https://example.com/b",
}

func TestSubmitWithRecommendations(t *testing.T) {
	svc := NewService(
		fixedAsker(&AskResult{
			Title:           "Travel Cards",
			Summary:         "I recommend Card A.",
			Recommendations: []Recommendation{cardA},
		}),
		fixedSuggester([]string{"What about lounge access?"}),
	)

	diff, err := svc.Submit(context.Background(), "Best Card for Travel")
	require.NoError(t, err)
	require.NotNil(t, diff)

	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Turns, 2)

	userTurn := snapshot.Turns[0]
	assert.Equal(t, RoleUser, userTurn.Role)
	assert.Equal(t, "Best Card for Travel", userTurn.Text)
	assert.Equal(t, "I recommend Card A.", userTurn.Summary)
	assert.Equal(t, []Recommendation{cardA}, userTurn.Recommendations)

	assistantTurn := snapshot.Turns[1]
	assert.Equal(t, RoleAssistant, assistantTurn.Role)
	assert.Empty(t, assistantTurn.Text)
	assert.Equal(t, []Recommendation{cardA}, assistantTurn.Recommendations)

	assert.Equal(t, "Travel Cards", snapshot.View.Title)
	assert.Equal(t, []Recommendation{cardA}, snapshot.View.ActiveRecommendations)
	assert.Equal(t, []string{"What about lounge access?"}, snapshot.View.Suggestions)
	assert.False(t, snapshot.View.Busy)

	// The diff exposes every phase of the turn.
	assert.Empty(t, diff.Before.Turns)
	require.Len(t, diff.Asked.Turns, 1)
	assert.True(t, diff.Asked.View.Busy)
	assert.Len(t, diff.After.Turns, 2)
	assert.False(t, diff.After.View.Busy)
}

func TestSubmitMergesMissingCardsIntoSummary(t *testing.T) {
	svc := NewService(
		fixedAsker(&AskResult{
			Summary:         "Here are two options.",
			Recommendations: []Recommendation{cardA, cardB},
		}),
		fixedSuggester(nil),
	)

	_, err := svc.Submit(context.Background(), "any good cards?")
	require.NoError(t, err)

	summary := svc.Snapshot().Turns[0].Summary
	assert.Contains(t, summary, "• **[Card A](https://example.com/a)** - great travel rewards")
	assert.Contains(t, summary, "• **[Card B](https://example.com/b)** - no annual fee")
}

func TestProseOnlyTurnKeepsActiveRecommendations(t *testing.T) {
	answers := []*AskResult{
		{Summary: "Two picks.", Recommendations: []Recommendation{cardA, cardB}},
		{Summary: "General advice, no cards this time."},
	}
	calls := 0

	svc := NewService(
		askerFunc(func(context.Context, string, []Message) (*AskResult, error) {
			result := answers[calls]
			calls++
			return result, nil
		}),
		fixedSuggester(nil),
	)

	_, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "Q2")
	require.NoError(t, err)

	snapshot := svc.Snapshot()

	// Q1 produced user+assistant, Q2 only a user turn with its prose
	// attached: the answer stays under its own question on the left and
	// the right pane keeps Q1's cards.
	require.Len(t, snapshot.Turns, 3)
	assert.Equal(t, RoleUser, snapshot.Turns[2].Role)
	assert.Equal(t, "General advice, no cards this time.", snapshot.Turns[2].Summary)
	assert.Empty(t, snapshot.Turns[2].Recommendations)
	assert.Equal(t, []Recommendation{cardA, cardB}, snapshot.View.ActiveRecommendations)
}

func TestBlankSubmitIsIgnored(t *testing.T) {
	svc := NewService(
		askerFunc(func(context.Context, string, []Message) (*AskResult, error) {
			t.Fatal("ask must not be invoked for blank input")
			return nil, nil
		}),
		fixedSuggester(nil),
	)

	for _, text := range []string{"", "   ", "\n\t"} {
		diff, err := svc.Submit(context.Background(), text)
		require.NoError(t, err)
		assert.Nil(t, diff)
	}

	assert.Empty(t, svc.Snapshot().Turns)
}

func TestSubmitWhileBusyIsRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := NewService(
		askerFunc(func(context.Context, string, []Message) (*AskResult, error) {
			close(started)
			<-release
			return &AskResult{Summary: "done"}, nil
		}),
		fixedSuggester(nil),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Submit(context.Background(), "first")
	}()

	<-started

	diff, err := svc.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Nil(t, diff)

	// The rejected submission left no trace.
	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Turns, 1)
	assert.Equal(t, "first", snapshot.Turns[0].Text)
	assert.True(t, snapshot.View.Busy)

	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission did not finish")
	}

	assert.False(t, svc.Busy())
}

func TestAskFailureAppendsErrorTurn(t *testing.T) {
	suggestCalled := false

	svc := NewService(
		askerFunc(func(context.Context, string, []Message) (*AskResult, error) {
			return nil, errors.New("backend returned status 502")
		}),
		suggesterFunc(func(context.Context, string, []Message, []Recommendation, string) ([]string, error) {
			suggestCalled = true
			return nil, nil
		}),
	)

	diff, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)
	require.NotNil(t, diff)

	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Turns, 2)
	assert.Equal(t, RoleUser, snapshot.Turns[0].Role)
	assert.Equal(t, RoleAssistant, snapshot.Turns[1].Role)
	assert.True(t, len(snapshot.Turns[1].Text) > 0)
	assert.Contains(t, snapshot.Turns[1].Text, "⚠️")
	assert.Contains(t, snapshot.Turns[1].Text, "backend returned status 502")

	assert.False(t, snapshot.View.Busy)
	assert.False(t, suggestCalled, "suggest must not run after a failed ask")
}

func TestSuggestFailureKeepsPreviousSuggestions(t *testing.T) {
	suggestErr := error(nil)

	svc := NewService(
		fixedAsker(&AskResult{Summary: "ok"}),
		suggesterFunc(func(context.Context, string, []Message, []Recommendation, string) ([]string, error) {
			if suggestErr != nil {
				return nil, suggestErr
			}
			return []string{"follow-up one", "follow-up two"}, nil
		}),
	)

	_, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"follow-up one", "follow-up two"}, svc.Snapshot().View.Suggestions)

	suggestErr = errors.New("suggestion backend down")

	_, err = svc.Submit(context.Background(), "Q2")
	require.NoError(t, err)

	snapshot := svc.Snapshot()
	assert.Equal(t, []string{"follow-up one", "follow-up two"}, snapshot.View.Suggestions)
	assert.False(t, snapshot.View.Busy)
}

func TestSuggestRunsForProseOnlyTurns(t *testing.T) {
	suggestCalls := 0

	svc := NewService(
		fixedAsker(&AskResult{Summary: "no cards here"}),
		suggesterFunc(func(context.Context, string, []Message, []Recommendation, string) ([]string, error) {
			suggestCalls++
			return nil, nil
		}),
	)

	_, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)

	assert.Equal(t, 1, suggestCalls)
}

func TestHistorySentUpstream(t *testing.T) {
	var askHistories [][]Message
	var suggestHistory []Message

	svc := NewService(
		askerFunc(func(_ context.Context, _ string, history []Message) (*AskResult, error) {
			askHistories = append(askHistories, history)
			return &AskResult{Summary: "I suggest Card A.", Recommendations: []Recommendation{cardA}}, nil
		}),
		suggesterFunc(func(_ context.Context, _ string, history []Message, _ []Recommendation, _ string) ([]string, error) {
			suggestHistory = history
			return nil, nil
		}),
	)

	_, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "Q2")
	require.NoError(t, err)

	require.Len(t, askHistories, 2)

	// The question being asked is not part of its own history.
	assert.Empty(t, askHistories[0])

	// Only (role, text) pairs travel upstream.
	assert.Equal(t, []Message{
		{Role: RoleUser, Text: "Q1"},
		{Role: RoleAssistant, Text: ""},
	}, askHistories[1])

	assert.Equal(t, askHistories[1], suggestHistory)
}

func TestDefaultViewState(t *testing.T) {
	svc := NewService(fixedAsker(&AskResult{}), fixedSuggester(nil))

	snapshot := svc.Snapshot()
	assert.Equal(t, DefaultTitle, snapshot.View.Title)
	assert.NotEmpty(t, snapshot.View.Suggestions)
	assert.Empty(t, snapshot.View.ActiveRecommendations)
	assert.False(t, snapshot.View.Busy)
}

func TestTitleKeptWhenAnswerOmitsIt(t *testing.T) {
	answers := []*AskResult{
		{Title: "Travel Cards", Summary: "ok"},
		{Summary: "still ok"},
	}
	calls := 0

	svc := NewService(
		askerFunc(func(context.Context, string, []Message) (*AskResult, error) {
			result := answers[calls]
			calls++
			return result, nil
		}),
		fixedSuggester(nil),
	)

	_, err := svc.Submit(context.Background(), "Q1")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "Q2")
	require.NoError(t, err)

	assert.Equal(t, "Travel Cards", svc.Snapshot().View.Title)
}
