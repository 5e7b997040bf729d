// Package protocol defines the messages exchanged between the oriond
// coordinator and its IPC peers (the popup UI and orionctl), along with
// the length-prefixed frame codec that carries them over a stream socket.
package protocol

// ── Message kinds ───────────────────────────────────────────────────

type Kind string

const (
	KindSearchQuery    Kind = "search_query"
	KindSearchResponse Kind = "search_response"
	KindCommand        Kind = "command"
	KindConfigUpdate   Kind = "config_update"
	KindRedirect       Kind = "redirect"
	KindError          Kind = "error"
)

// Message is one unit of IPC traffic. Exactly one concrete type exists
// per Kind.
type Message interface {
	Kind() Kind
}

// ── Actions ─────────────────────────────────────────────────────────

type ActionType string

const (
	ActionOpenFile       ActionType = "open_file"
	ActionExecuteCommand ActionType = "execute_command"
	ActionOpenURL        ActionType = "open_url"
	ActionCustom         ActionType = "custom"
)

// Action is the effect performed when a result or command is selected.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value"`
}

// ── Payload types ───────────────────────────────────────────────────

// SearchQuery asks the coordinator to resolve a query string.
type SearchQuery struct {
	Text       string `json:"text"`
	MaxResults int    `json:"max_results"`
}

// SearchResult is one candidate answer to a query.
type SearchResult struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Action      Action  `json:"action"`
	Score       float32 `json:"score"`
}

// SearchResponse carries the resolved results back to the peer, echoing
// the query they answer.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Query   SearchQuery    `json:"query"`
}

// Command is a user-defined entry from the active profile.
type Command struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Action      Action   `json:"action"`
	Keywords    []string `json:"keywords,omitempty"`
}

// ConfigUpdate asks the coordinator to reload its configuration. It is
// also sent back as the acknowledgement.
type ConfigUpdate struct{}

// Redirect tells the receiver to open a URL instead of showing results.
type Redirect struct {
	URL string `json:"url"`
}

// Error reports a handler failure to the peer.
type Error struct {
	Text string `json:"text"`
}

func (*SearchQuery) Kind() Kind    { return KindSearchQuery }
func (*SearchResponse) Kind() Kind { return KindSearchResponse }
func (*Command) Kind() Kind        { return KindCommand }
func (*ConfigUpdate) Kind() Kind   { return KindConfigUpdate }
func (*Redirect) Kind() Kind       { return KindRedirect }
func (*Error) Kind() Kind          { return KindError }
