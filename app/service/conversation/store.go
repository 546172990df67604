package conversation

import (
	"sync"

	"github.com/elliotchance/pie/v2"
)

const DefaultTitle = "Card Advisor"

var starterSuggestions = []string{
	"What is the best card for travel rewards?",
	"Which cards have no annual fee?",
	"What should my first credit card be?",
}

// Store owns the ordered turn history and the derived view state. The turn
// list is append-only except for the in-place update that attaches an answer
// to the most recently appended user turn.
type Store struct {
	mu    sync.RWMutex
	turns []Turn
	view  ViewState
}

func NewStore() *Store {
	return &Store{
		view: ViewState{
			Title:       DefaultTitle,
			Suggestions: append([]string(nil), starterSuggestions...),
		},
	}
}

func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.view.Busy
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)

	view := s.view
	view.ActiveRecommendations = append([]Recommendation(nil), s.view.ActiveRecommendations...)
	view.Suggestions = append([]string(nil), s.view.Suggestions...)

	return Snapshot{Turns: turns, View: view}
}

// beginTurn appends the pending user turn and raises the busy flag in one
// step, so a concurrent submission cannot slip in between check and append.
func (s *Store) beginTurn(text string) (before, asked Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view.Busy {
		return Snapshot{}, Snapshot{}, false
	}

	before = s.snapshotLocked()

	s.view.Busy = true
	s.turns = append(s.turns, Turn{Role: RoleUser, Text: text})

	asked = s.snapshotLocked()

	return before, asked, true
}

func (s *Store) finishTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Busy = false
}

// priorHistory returns the (role, text) pairs of every turn before the
// pending question.
func (s *Store) priorHistory() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.turns) == 0 {
		return nil
	}

	return pie.Map(s.turns[:len(s.turns)-1], func(t Turn) Message {
		return Message{Role: t.Role, Text: t.Text}
	})
}

// attachAnswer updates the pending user turn in place and, when the answer
// carried recommendations, appends the assistant turn and promotes its cards
// to the active set. A zero-recommendation answer leaves the active set
// untouched so the right pane does not flicker on prose-only turns.
func (s *Store) attachAnswer(title, displayText string, recommendations []Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title != "" {
		s.view.Title = title
	}

	if len(s.turns) == 0 || s.turns[len(s.turns)-1].Role != RoleUser {
		return
	}

	last := &s.turns[len(s.turns)-1]
	last.Summary = displayText
	last.Recommendations = recommendations

	if len(recommendations) > 0 {
		s.turns = append(s.turns, Turn{
			Role:            RoleAssistant,
			Recommendations: recommendations,
		})
		s.view.ActiveRecommendations = append([]Recommendation(nil), recommendations...)
	}
}

// appendAssistantText materializes a synthetic assistant turn carrying plain
// text, used to surface upstream failures without rolling back the question.
func (s *Store) appendAssistantText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{Role: RoleAssistant, Text: text})
}

func (s *Store) setSuggestions(suggestions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Suggestions = suggestions
}
