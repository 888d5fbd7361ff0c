package routing

import (
	"sync"

	"crewcall/internal/model"
)

// Destination is a home surface the client navigates to after login.
type Destination string

const (
	ProducerHome       Destination = "ProducerHome"
	BookingOfficerHome Destination = "BookingOfficerHome"
	OperatorHome       Destination = "OperatorHome"
)

// HomeFor maps a role to its home surface. An unrecognized or missing role
// yields no destination: that indicates a data problem, and the client must
// stay where it is rather than be routed somewhere silently.
func HomeFor(role string) (Destination, bool) {
	switch role {
	case model.RoleProducer:
		return ProducerHome, true
	case model.RoleBookingOfficer:
		return BookingOfficerHome, true
	case model.RoleOperator:
		return OperatorHome, true
	}
	return "", false
}

// Router resolves a destination once per (session, profile) pair. Repeated
// resolution of the same stable pair does not re-trigger navigation; a
// changed role for an already-routed pair re-routes.
type Router struct {
	mu     sync.Mutex
	routed map[string]Destination // sessionID|uid -> last destination
}

// NewRouter creates a role router.
func NewRouter() *Router {
	return &Router{routed: make(map[string]Destination)}
}

// Resolve returns the destination for the pair and whether navigation should
// fire now. navigate is true only on the first resolution of the pair or
// when the destination changed since.
func (r *Router) Resolve(sessionID string, user *model.User) (dest Destination, navigate bool) {
	if user == nil {
		return "", false
	}
	dest, ok := HomeFor(user.Role)
	if !ok {
		return "", false
	}

	key := sessionID + "|" + user.UID.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, seen := r.routed[key]; seen && last == dest {
		return dest, false
	}
	r.routed[key] = dest
	return dest, true
}

// Forget drops routing state for a session, so a future login routes again.
func (r *Router) Forget(sessionID string, uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routed, sessionID+"|"+uid)
}
