package merge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Reference is one structured card to reconcile into the display text.
type Reference struct {
	Name     string
	Reason   string
	ApplyURL string
}

// Merge produces a display text that references every card exactly once.
// Cards the summary already links get their link target rewritten to the
// apply URL; cards the summary never mentions are appended as bullets.
func Merge(summary string, refs []Reference) string {
	if len(refs) == 0 {
		return summary
	}

	text := summary
	for _, ref := range refs {
		text = rewriteLink(text, ref)
	}

	lowerText := strings.ToLower(text)
	missing := pie.Filter(refs, func(ref Reference) bool {
		return !strings.Contains(lowerText, strings.ToLower(ref.Name))
	})

	if len(missing) == 0 {
		return text
	}

	bullets := pie.Map(missing, func(ref Reference) string {
		return fmt.Sprintf("• **[%s](%s)** - %s", ref.Name, ref.ApplyURL, ref.Reason)
	})

	block := strings.Join(bullets, "\n\n")
	if strings.TrimSpace(text) == "" {
		return block
	}

	return text + "\n\n" + block
}

// rewriteLink retargets every markdown link whose label is the card name,
// so an upstream answer that already linked the card points at the apply URL.
func rewriteLink(text string, ref Reference) string {
	pattern := regexp.MustCompile(`(?i)\[(` + regexp.QuoteMeta(ref.Name) + `)\]\(([^)]*)\)`)

	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		label := pattern.FindStringSubmatch(match)[1]
		return "[" + label + "](" + ref.ApplyURL + ")"
	})
}
