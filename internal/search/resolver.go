package search

import (
	"sort"
	"strings"

	"github.com/grishmahat/orion/internal/logging"
	"github.com/grishmahat/orion/internal/protocol"
)

// DefaultMaxResults caps a query that asks for nothing sensible.
const DefaultMaxResults = 10

// matchScore is the uniform score for every substring match; there is
// no relevance ranking, ties keep profile order.
const matchScore float32 = 1.0

// Resolver turns search queries into redirects or command matches. The
// bang list is re-read per resolution through loadBangs so edits to the
// file take effect immediately; a load failure degrades to "no bangs".
type Resolver struct {
	loadBangs func() ([]Bang, error)
	history   *History
}

// NewResolver builds a resolver reading its bang list from path.
func NewResolver(bangsPath string) *Resolver {
	return &Resolver{
		loadBangs: func() ([]Bang, error) { return LoadBangs(bangsPath) },
		history:   NewHistory(50),
	}
}

// History exposes the recent-query list.
func (r *Resolver) History() *History { return r.history }

// Resolve answers a query: a bang match anywhere in the query wins and
// becomes a Redirect; otherwise commands from the active profile are
// matched by substring and returned as a SearchResponse.
func (r *Resolver) Resolve(q protocol.SearchQuery, commands []protocol.Command) protocol.Message {
	r.history.Add(q.Text)

	if url, ok := r.resolveBang(q.Text); ok {
		return &protocol.Redirect{URL: url}
	}

	results := matchCommands(q.Text, commands)

	// Stable: equal scores keep profile order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	max := q.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	if len(results) > max {
		results = results[:max]
	}

	return &protocol.SearchResponse{Results: results, Query: q}
}

// resolveBang checks the query for a bang trigger: first the leftmost
// token, then the rightmost, then interior tokens left to right. The
// first match wins.
func (r *Resolver) resolveBang(text string) (string, bool) {
	bangs, err := r.loadBangs()
	if err != nil {
		// Non-fatal: a broken bang source means no bang matches.
		logging.Warnf("search: bang list unavailable: %v", err)
		return "", false
	}
	if len(bangs) == 0 {
		return "", false
	}

	if left, rest, ok := strings.Cut(text, " "); ok {
		if b, found := findTrigger(bangs, left); found {
			return b.Expand(rest), true
		}
	}

	if i := strings.LastIndex(text, " "); i >= 0 {
		if b, found := findTrigger(bangs, text[i+1:]); found {
			return b.Expand(text[:i]), true
		}
	}

	words := strings.Split(text, " ")
	for i := 1; i < len(words)-1; i++ {
		if b, found := findTrigger(bangs, words[i]); found {
			terms := strings.Join(words[:i], " ") + " " + strings.Join(words[i+1:], " ")
			return b.Expand(terms), true
		}
	}

	return "", false
}

// matchCommands returns every command whose name, description, or any
// keyword contains the query, case-insensitively, in profile order.
func matchCommands(query string, commands []protocol.Command) []protocol.SearchResult {
	needle := strings.ToLower(query)
	var results []protocol.SearchResult
	for _, cmd := range commands {
		if !commandMatches(needle, cmd) {
			continue
		}
		results = append(results, protocol.SearchResult{
			Title:       cmd.Name,
			Description: cmd.Description,
			Action:      cmd.Action,
			Score:       matchScore,
		})
	}
	return results
}

func commandMatches(needle string, cmd protocol.Command) bool {
	if strings.Contains(strings.ToLower(cmd.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(cmd.Description), needle) {
		return true
	}
	for _, kw := range cmd.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}
