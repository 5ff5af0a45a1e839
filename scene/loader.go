// Package scene sequences the host's scene teardown and setup across main
// loop iterations. The host cannot tear a scene down and set up the next one
// within the same iteration, so a load takes two ticks.
package scene

import (
	"go.uber.org/zap"
)

// Host performs the actual scene calls.
type Host interface {
	Teardown()
	Setup(terrain, avatar string)
}

// State is where a load request is in its two tick cycle.
type State int

const (
	Idle State = iota
	PendingTeardown
	TornDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingTeardown:
		return "pending-teardown"
	case TornDown:
		return "torn-down"
	}
	return "unknown"
}

// Loader holds at most one pending load request. It is driven from the host
// main loop thread only.
type Loader struct {
	host     Host
	log      *zap.SugaredLogger
	terrain  string
	avatar   string
	pending  bool
	tornDown bool
}

func NewLoader(host Host, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loader{host: host, log: log}
}

// Request asks for terrain and avatar to be loaded. A request that arrives
// while another is in flight replaces its targets; if the old scene is
// already torn down, the next tick sets up the new targets directly.
func (l *Loader) Request(terrain, avatar string) {
	if l.tornDown {
		l.log.Infow("scene request replaces targets after teardown", "terrain", terrain, "avatar", avatar,
			"previousTerrain", l.terrain, "previousAvatar", l.avatar)
	}
	l.terrain = terrain
	l.avatar = avatar
	l.pending = true
}

// Tick advances the request by one main loop iteration.
func (l *Loader) Tick() {
	if l.pending && l.tornDown {
		l.pending = false
		l.tornDown = false
		l.log.Infow("scene setup", "terrain", l.terrain, "avatar", l.avatar)
		l.host.Setup(l.terrain, l.avatar)
	} else if l.pending {
		l.log.Debugw("scene teardown")
		l.host.Teardown()
		l.tornDown = true
	}
}

func (l *Loader) State() State {
	switch {
	case l.pending && l.tornDown:
		return TornDown
	case l.pending:
		return PendingTeardown
	}
	return Idle
}

// Target returns the terrain and avatar of the current or last request.
func (l *Loader) Target() (terrain, avatar string) {
	return l.terrain, l.avatar
}
