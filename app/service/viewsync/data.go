package viewsync

type Pane string

const (
	PaneHistory         Pane = "history"
	PaneRecommendations Pane = "recommendations"
)

type IntentKind string

const (
	// IntentResetScroll asks the presentation layer to scroll a pane back
	// to its top.
	IntentResetScroll IntentKind = "reset_scroll"
	// IntentHighlight asks for the highlight animation on a pane, cleared
	// after DurationMS.
	IntentHighlight IntentKind = "highlight"
	// IntentScrollToTurn asks to position the element of TurnIndex at the
	// top of the pane's viewport, after DelayMS of layout settling.
	IntentScrollToTurn IntentKind = "scroll_to_turn"
)

const (
	// HighlightDurationMS is how long the recommendation-pane highlight
	// stays on before the presentation layer clears it.
	HighlightDurationMS = 2000
	// SettleDelayMS is the wait before computing the history-pane scroll
	// target, giving layout a chance to complete. A layout-complete signal
	// may replace it.
	SettleDelayMS = 100

	// scrollThreshold is the offset (px) from the pane top past which a
	// scroll counts as user-initiated.
	scrollThreshold = 10.0
)

// Intent is one fire-and-forget visual instruction for the presentation
// layer. Intents carry no correctness dependency on completion.
type Intent struct {
	Kind       IntentKind `json:"kind"`
	Pane       Pane       `json:"pane"`
	TurnIndex  int        `json:"turn_index,omitempty"`
	DelayMS    int        `json:"delay_ms,omitempty"`
	DurationMS int        `json:"duration_ms,omitempty"`
}
