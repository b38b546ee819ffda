package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/listiq/internal/domain"
)

// Compile-time check: Guard implements domain.TransitionGuard.
var _ domain.TransitionGuard = (*Guard)(nil)

// events is the generated transition graph. The listing lifecycle permits
// any status-to-status move except the maintenance edges: entering or
// leaving maintenance must go through the coordinator, which applies the
// transition directly and records the restore target. So every status
// except maintenance gets a "set_<status>" event whose sources are all
// non-maintenance statuses.
var events = buildEvents()

func eventFor(dst domain.Status) string {
	return "set_" + string(dst)
}

func buildEvents() []loopfsm.EventDesc {
	var sources []string
	for _, s := range domain.Statuses {
		if s != domain.StatusMaintenance {
			sources = append(sources, string(s))
		}
	}

	var out []loopfsm.EventDesc
	for _, dst := range domain.Statuses {
		if dst == domain.StatusMaintenance {
			continue
		}
		out = append(out, loopfsm.EventDesc{
			Name: eventFor(dst),
			Src:  sources,
			Dst:  string(dst),
		})
	}
	return out
}

// Guard implements domain.TransitionGuard using looplab/fsm. It creates a
// short-lived FSM per Check call, initialized with the current status,
// because looplab/fsm tracks the current state internally.
type Guard struct{}

// New creates a new FSM-backed transition guard.
func New() *Guard {
	return &Guard{}
}

// Check reports whether a direct move from one status to another is
// allowed. Returns a domain.TransitionError for withheld edges.
func (g *Guard) Check(ctx context.Context, from, to domain.Status) error {
	machine := loopfsm.NewFSM(string(from), events, nil)

	if err := machine.Event(ctx, eventFor(to)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return &domain.TransitionError{From: from, To: to}
		}
		return err
	}

	return nil
}
