package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cardadvisor/app/service/merge"

	"github.com/elliotchance/pie/v2"
)

const errorIndicator = "⚠️ "

// ErrBusy is returned when a submission arrives while another one is still
// in flight. The conversation and view state are left untouched.
var ErrBusy = errors.New("a submission is already in flight")

// Service processes one question/answer cycle at a time: it invokes the ask
// collaborator, reconciles the answer with the structured card results,
// materializes turns and refreshes the suggested follow-up questions.
type Service struct {
	asker     Asker
	suggester Suggester
	store     *Store
}

func NewService(asker Asker, suggester Suggester) *Service {
	return &Service{
		asker:     asker,
		suggester: suggester,
		store:     NewStore(),
	}
}

func (s *Service) Snapshot() Snapshot {
	return s.store.Snapshot()
}

func (s *Service) Busy() bool {
	return s.store.Busy()
}

// PendingTurn is a question that has been appended but not answered yet.
// Callers observe its Before→Asked transition first, then hand it to
// Complete.
type PendingTurn struct {
	question string

	Before Snapshot
	Asked  Snapshot
}

// Begin accepts one question: it appends the user turn and raises the busy
// flag. Blank input is ignored and yields a nil turn. Every non-nil turn
// must be passed to Complete.
func (s *Service) Begin(text string) (*PendingTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	before, asked, ok := s.store.beginTurn(text)
	if !ok {
		return nil, ErrBusy
	}

	return &PendingTurn{
		question: text,
		Before:   before,
		Asked:    asked,
	}, nil
}

// Complete answers a pending turn. The busy flag is always cleared before
// the final snapshot is taken, no matter how the upstream calls went.
func (s *Service) Complete(ctx context.Context, turn *PendingTurn) Snapshot {
	s.runTurn(ctx, turn.question)

	return s.store.Snapshot()
}

// Submit runs one full turn in a single step, for callers with no interest
// in the intermediate transition.
func (s *Service) Submit(ctx context.Context, text string) (*Diff, error) {
	turn, err := s.Begin(text)
	if err != nil || turn == nil {
		return nil, err
	}

	return &Diff{
		Before: turn.Before,
		Asked:  turn.Asked,
		After:  s.Complete(ctx, turn),
	}, nil
}

func (s *Service) runTurn(ctx context.Context, question string) {
	defer s.store.finishTurn()

	history := s.store.priorHistory()

	result, err := s.asker.Ask(ctx, question, history)
	if err != nil {
		slog.Error("Ask failed",
			"question", question,
			"error", err,
		)

		s.store.appendAssistantText(fmt.Sprintf("%sSomething went wrong while answering your question: %v", errorIndicator, err))
		return
	}

	recommendations := result.Recommendations
	displayText := result.Summary

	if len(recommendations) > 0 {
		refs := pie.Map(recommendations, func(r Recommendation) merge.Reference {
			return merge.Reference{
				Name:     r.CreditCardName,
				Reason:   r.Reason,
				ApplyURL: r.ApplyURL,
			}
		})

		displayText = merge.Merge(result.Summary, refs)
	}

	s.store.attachAnswer(result.Title, displayText, recommendations)

	suggestions, err := s.suggester.Suggest(ctx, question, history, recommendations, result.Summary)
	if err != nil {
		slog.Warn("Suggestion refresh failed, keeping previous suggestions",
			"question", question,
			"error", err,
		)
		return
	}

	s.store.setSuggestions(suggestions)
}
