package conversation

import (
	"context"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Recommendation is one structured card result. Identity for matching and
// de-duplication is the lowercase-normalized card name.
type Recommendation struct {
	CreditCardName string `json:"credit_card_name"`
	Reason         string `json:"reason"`
	ApplyURL       string `json:"apply_url"`
}

// Turn is one entry in the conversation. A user turn carries the question
// text and, once answered, the merged summary and card results. An assistant
// turn exists only when an answer produced recommendations (or as the
// synthetic error turn); its text is empty in the former case.
type Turn struct {
	Role            Role             `json:"role"`
	Text            string           `json:"text"`
	Summary         string           `json:"summary,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Message is the (role, text) pair sent upstream as conversation history.
// Recommendations never travel upstream.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// AskResult is the decoded answer for one question.
type AskResult struct {
	Title           string
	Summary         string
	Recommendations []Recommendation
}

// ViewState is derived from the conversation and owned by the Store.
type ViewState struct {
	Title                 string           `json:"title"`
	ActiveRecommendations []Recommendation `json:"active_recommendations"`
	Suggestions           []string         `json:"suggestions"`
	Busy                  bool             `json:"busy"`
}

// Snapshot is an immutable copy of the conversation and its view state.
type Snapshot struct {
	Turns []Turn    `json:"turns"`
	View  ViewState `json:"view"`
}

// Diff captures the state transitions of one submission: before the question,
// after the user turn is appended, and after the answer is applied.
type Diff struct {
	Before Snapshot
	Asked  Snapshot
	After  Snapshot
}

type Asker interface {
	Ask(ctx context.Context, question string, history []Message) (*AskResult, error)
}

type Suggester interface {
	Suggest(ctx context.Context, question string, history []Message, recommendations []Recommendation, summary string) ([]string, error)
}
