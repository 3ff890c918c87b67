package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Elapsed          time.Duration
}

// Tracker accumulates token usage across LLM calls. It is not safe for
// concurrent use; the agent loop is synchronous.
type Tracker struct {
	perModel map[string]*ModelUsage
}

// NewTracker returns an empty usage tracker.
func NewTracker() *Tracker {
	return &Tracker{perModel: make(map[string]*ModelUsage)}
}

// Record adds one call's usage for model.
func (t *Tracker) Record(model string, usage Usage, elapsed time.Duration) {
	mu, ok := t.perModel[model]
	if !ok {
		mu = &ModelUsage{}
		t.perModel[model] = mu
	}
	mu.Calls++
	mu.PromptTokens += usage.PromptTokens
	mu.CompletionTokens += usage.CompletionTokens
	mu.TotalTokens += usage.TotalTokens
	mu.Elapsed += elapsed
}

// Totals returns the grand totals across all models.
func (t *Tracker) Totals() ModelUsage {
	var total ModelUsage
	for _, mu := range t.perModel {
		total.Calls += mu.Calls
		total.PromptTokens += mu.PromptTokens
		total.CompletionTokens += mu.CompletionTokens
		total.TotalTokens += mu.TotalTokens
		total.Elapsed += mu.Elapsed
	}
	return total
}

// Summary renders a per-model usage report for end-of-run output.
func (t *Tracker) Summary() string {
	if len(t.perModel) == 0 {
		return "no LLM usage recorded"
	}

	models := make([]string, 0, len(t.perModel))
	for m := range t.perModel {
		models = append(models, m)
	}
	sort.Strings(models)

	var b strings.Builder
	b.WriteString("LLM token usage:\n")
	for _, m := range models {
		mu := t.perModel[m]
		avg := time.Duration(0)
		if mu.Calls > 0 {
			avg = mu.Elapsed / time.Duration(mu.Calls)
		}
		fmt.Fprintf(&b, "  %s: %d calls, %d tokens (%d prompt, %d completion), %.1fs total, %.1fs avg\n",
			m, mu.Calls, mu.TotalTokens, mu.PromptTokens, mu.CompletionTokens,
			mu.Elapsed.Seconds(), avg.Seconds())
	}
	total := t.Totals()
	fmt.Fprintf(&b, "  total: %d calls, %d tokens, %.1fs",
		total.Calls, total.TotalTokens, total.Elapsed.Seconds())
	return b.String()
}
