package advisor

import (
	"encoding/json"

	"cardadvisor/app/service/conversation"
)

type askRequest struct {
	Question string                 `json:"question"`
	History  []conversation.Message `json:"history"`
}

type askResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	// Decoded leniently: a malformed list downgrades to no recommendations.
	Recommendations json.RawMessage `json:"recommendations"`

	Error   string `json:"error"`
	Details string `json:"details"`
}

type suggestRequest struct {
	Question        string                        `json:"question"`
	History         []conversation.Message        `json:"history"`
	Recommendations []conversation.Recommendation `json:"recommendations"`
	Summary         string                        `json:"summary"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`

	Error   string `json:"error"`
	Details string `json:"details"`
}
