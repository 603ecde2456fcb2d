package inference

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cayleygraph/rdfsail/clog"
)

// State is a stage of a reasoning run.
type State int

const (
	Idle State = iota
	Exporting
	Reasoning
	Importing
	Done
	Failed
)

var stateNames = [...]string{"idle", "exporting", "reasoning", "importing", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool { return s == Done || s == Failed }

var transitions = map[State][]State{
	Idle:      {Exporting},
	Exporting: {Reasoning, Failed},
	Reasoning: {Importing, Failed},
	Importing: {Done, Failed},
}

// TransitionError is returned for a transition the run does not allow.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("inference: illegal transition %v -> %v", e.From, e.To)
}

// Run tracks the state of one external reasoning run.
type Run struct {
	ID   string
	Name string

	mu      sync.Mutex
	state   State
	started time.Time
	err     error
}

// NewRun creates an idle run with a random id.
func NewRun(name string) *Run {
	return &Run{ID: uuid.NewString(), Name: name, state: Idle}
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error the run failed with.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Transition moves the run to state to.
func (r *Run) Transition(to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(to)
}

func (r *Run) transition(to State) error {
	from := r.state
	ok := false
	for _, s := range transitions[from] {
		if s == to {
			ok = true
			break
		}
	}
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	r.state = to
	runTransitions.WithLabelValues(to.String()).Inc()
	switch {
	case from == Idle:
		r.started = time.Now()
	case to.Terminal():
		runSeconds.WithLabelValues(to.String()).Observe(time.Since(r.started).Seconds())
	}
	if clog.V(1) {
		clog.Infof("inference: run %s (%s): %v -> %v", r.Name, r.ID, from, to)
	}
	return nil
}

// Fail moves the run to Failed and records err. It returns err, or the
// transition error if the run cannot fail from its current state.
func (r *Run) Fail(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if terr := r.transition(Failed); terr != nil {
		return terr
	}
	r.err = err
	clog.Errorf("inference: run %s (%s) failed: %v", r.Name, r.ID, err)
	return err
}
