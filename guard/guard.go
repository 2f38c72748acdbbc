package guard

import (
	"sync"

	"github.com/ravenhq/ravenauth/session"
)

// Action is the guard's verdict for one navigation attempt.
type Action int

const (
	// ActionWait means the session is not initialized yet; render a loading
	// placeholder and do not navigate.
	ActionWait Action = iota
	// ActionAllow means the guarded view may render.
	ActionAllow
	// ActionRedirect means navigation must divert to Decision.Target.
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionAllow:
		return "allow"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Rule configures access for one route. RequireAuth=true marks a protected
// view, RequireAuth=false a public-only view; RedirectTo is where rejected
// navigation is sent.
type Rule struct {
	RequireAuth bool
	RedirectTo  string
}

// Decision is the outcome of evaluating a Rule against session state.
type Decision struct {
	Action Action
	Target string
}

// Evaluate applies rule to state. It must be re-run on every navigation and
// on every session state change; it never caches.
func Evaluate(state session.State, rule Rule) Decision {
	if !state.Initialized {
		return Decision{Action: ActionWait}
	}
	if rule.RequireAuth != state.Authenticated {
		return Decision{Action: ActionRedirect, Target: rule.RedirectTo}
	}
	return Decision{Action: ActionAllow}
}

// Registry maps route names to rules, the client-side route table.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns an empty route rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register installs or replaces the rule for route.
func (r *Registry) Register(route string, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[route] = rule
}

// Evaluate decides access for route. Routes without a registered rule are
// unguarded and always allowed.
func (r *Registry) Evaluate(route string, state session.State) Decision {
	r.mu.RLock()
	rule, ok := r.rules[route]
	r.mu.RUnlock()

	if !ok {
		return Decision{Action: ActionAllow}
	}
	return Evaluate(state, rule)
}
