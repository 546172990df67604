package viewsync

import (
	"sync"

	"cardadvisor/app/service/conversation"
)

// Synchronizer turns conversation state transitions into scroll and
// animation intents for the two panes, without undoing manual scrolling.
// It is invoked explicitly with (previous, current) snapshots; it never
// subscribes to the store.
type Synchronizer struct {
	mu sync.Mutex

	fingerprint         []conversation.Recommendation
	userScrolledHistory bool
	lastTurnCount       int
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// ObserveScroll records a raw scroll offset reported by the presentation
// layer. Once the history pane moves past the threshold, auto-scrolling is
// suppressed until the next question starts.
func (s *Synchronizer) ObserveScroll(pane Pane, offset float64) {
	if pane != PaneHistory {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if offset > scrollThreshold {
		s.userScrolledHistory = true
	}
}

// Observe computes the intents for one state transition. Re-observing an
// unchanged state is a no-op.
func (s *Synchronizer) Observe(prev, curr conversation.Snapshot) []Intent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var intents []Intent

	intents = append(intents, s.onNewQuestion(curr)...)
	intents = append(intents, s.onRecommendationsChanged(curr)...)
	intents = append(intents, s.onAnswerArrived(prev, curr)...)

	s.lastTurnCount = len(curr.Turns)

	return intents
}

// onNewQuestion resets the recommendation pane and re-enables auto-scroll
// when a fresh user turn appears at the end of the history.
func (s *Synchronizer) onNewQuestion(curr conversation.Snapshot) []Intent {
	if len(curr.Turns) <= s.lastTurnCount {
		return nil
	}

	if curr.Turns[len(curr.Turns)-1].Role != conversation.RoleUser {
		return nil
	}

	s.userScrolledHistory = false

	return []Intent{{
		Kind: IntentResetScroll,
		Pane: PaneRecommendations,
	}}
}

// onRecommendationsChanged fires the reset-and-highlight pair when the
// active card set differs structurally from the last one seen. An empty set
// clears the stored fingerprint without animating.
func (s *Synchronizer) onRecommendationsChanged(curr conversation.Snapshot) []Intent {
	active := curr.View.ActiveRecommendations

	if sameRecommendations(active, s.fingerprint) {
		return nil
	}

	if len(active) == 0 {
		s.fingerprint = nil
		return nil
	}

	s.fingerprint = append([]conversation.Recommendation(nil), active...)

	return []Intent{
		{
			Kind: IntentResetScroll,
			Pane: PaneRecommendations,
		},
		{
			Kind:       IntentHighlight,
			Pane:       PaneRecommendations,
			DurationMS: HighlightDurationMS,
		},
	}
}

// onAnswerArrived scrolls the latest question to the top of the history
// pane once its answer has landed, unless the user scrolled in the meantime.
func (s *Synchronizer) onAnswerArrived(prev, curr conversation.Snapshot) []Intent {
	if curr.View.Busy || s.userScrolledHistory {
		return nil
	}

	idx := latestUserTurn(curr.Turns)
	if idx < 0 || !answered(curr.Turns, idx) {
		return nil
	}

	// Only the transition into the answered state counts.
	alreadySeen := !prev.View.Busy && idx < len(prev.Turns) && answered(prev.Turns, idx)
	if alreadySeen {
		return nil
	}

	return []Intent{{
		Kind:      IntentScrollToTurn,
		Pane:      PaneHistory,
		TurnIndex: idx,
		DelayMS:   SettleDelayMS,
	}}
}

func latestUserTurn(turns []conversation.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == conversation.RoleUser {
			return i
		}
	}

	return -1
}

func answered(turns []conversation.Turn, idx int) bool {
	if turns[idx].Summary != "" {
		return true
	}

	return idx+1 < len(turns) && turns[idx+1].Role == conversation.RoleAssistant
}

// sameRecommendations is a full structural compare, order- and
// field-sensitive. A backend that returns the same cards reordered or with a
// trimmed reason re-triggers the highlight; the over-sensitivity is accepted.
func sameRecommendations(a, b []conversation.Recommendation) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
