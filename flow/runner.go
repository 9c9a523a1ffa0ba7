package flow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/jointown"
	"github.com/arloliu/jointown/types"
)

// Result describes the state after one applied event.
type Result struct {
	// Step is the World step counter after the event.
	Step int

	Action Action
	Person types.PersonID

	// Applied is false for the removal of an unknown person.
	Applied bool

	// Ownership is the ownership string after the event.
	Ownership string

	// Detail is the domain of an added person, or the removal event itself.
	Detail string
}

// String formats the result as a step line: step, action and person, then
// ownership and detail separated by tabs.
func (r Result) String() string {
	return fmt.Sprintf("%02d. %s%s\t%s\t%s", r.Step, r.Action, r.Person, r.Ownership, r.Detail)
}

// Runner applies events to a World and prints a line per step.
type Runner struct {
	world *jointown.World
	out   io.Writer
}

// NewRunner creates a runner. A nil out discards step lines.
func NewRunner(w *jointown.World, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}

	return &Runner{world: w, out: out}
}

// World returns the world the runner drives.
func (r *Runner) World() *jointown.World {
	return r.world
}

// Header prints the column titles of step lines.
func (r *Runner) Header() error {
	_, err := fmt.Fprintf(r.out, "#. act.name\towners\tdomain\n")
	return err
}

// Apply applies one event and prints its step line.
//
// Returns:
//   - Result: State after the event
//   - error: World errors such as ErrObjectOutOfRange or ErrDuplicateMember
func (r *Runner) Apply(ev Event) (Result, error) {
	res := Result{Action: ev.Action, Person: ev.Person, Applied: true}

	switch ev.Action {
	case ActionRemove:
		ok, err := r.world.RemovePerson(ev.Person)
		if err != nil {
			return res, err
		}
		res.Applied = ok
		res.Detail = ev.String()
	case ActionAdd, ActionLowprio:
		id, err := r.world.AddPerson(ev.Person, ev.Domain, ev.Lowprio())
		if err != nil {
			return res, err
		}
		res.Person = id
		res.Detail = ev.Domain.String()
	default:
		return res, fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, ev.Action)
	}

	res.Step = r.world.Step()
	res.Ownership = r.world.Ownership()
	if _, err := fmt.Fprintln(r.out, res.String()); err != nil {
		return res, fmt.Errorf("write step: %w", err)
	}

	return res, nil
}

// Run applies events in order and stops at the first error or when ctx is done.
func (r *Runner) Run(ctx context.Context, events []Event) ([]Result, error) {
	results := make([]Result, 0, len(events))
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Apply(ev)
		if err != nil {
			return results, fmt.Errorf("event %q: %w", ev, err)
		}
		results = append(results, res)
	}

	return results, nil
}

// RunScenario applies every step of s and checks expected ownership strings.
//
// The runner's World must have s.Objects objects.
//
// Returns:
//   - []Result: Results of the applied steps
//   - error: ErrInvalidScenario, ErrUnexpectedOwnership naming the first
//     mismatching step, or a World error
func (r *Runner) RunScenario(ctx context.Context, s *Scenario) ([]Result, error) {
	if r.world.Objects() != s.Objects {
		return nil, fmt.Errorf("%w: scenario has %d objects, world has %d",
			ErrInvalidScenario, s.Objects, r.world.Objects())
	}
	events, err := s.Events()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	results := make([]Result, 0, len(events))
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Apply(ev)
		if err != nil {
			return results, fmt.Errorf("step %d %q: %w", i+1, ev, err)
		}
		results = append(results, res)

		if want := s.Steps[i].Expect; want != "" && want != res.Ownership {
			return results, fmt.Errorf("%w: step %d %q: got %s, want %s",
				ErrUnexpectedOwnership, i+1, ev, res.Ownership, want)
		}
	}

	return results, nil
}

// Stream applies events read line by line from rd as they arrive. Blank lines
// and '#' comments are skipped.
//
// Returns:
//   - int: Number of applied events
//   - error: ErrInvalidEvent naming the line, a World error, or ctx.Err()
func (r *Runner) Stream(ctx context.Context, rd io.Reader) (int, error) {
	scanner := bufio.NewScanner(rd)
	applied := 0
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := ParseEvent(text)
		if err != nil {
			return applied, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := r.Apply(ev); err != nil {
			return applied, fmt.Errorf("line %d %q: %w", line, ev, err)
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return applied, fmt.Errorf("read events: %w", err)
	}

	return applied, nil
}
