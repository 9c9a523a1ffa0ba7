package flow

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/jointown/types"
)

// Action is the kind of an event, printed in front of the person in step lines.
type Action rune

// Event actions.
const (
	ActionAdd     Action = '+'
	ActionLowprio Action = 'L'
	ActionRemove  Action = '-'
)

// lowprioMarker inside a braced set moves the person to the low-priority tier.
const lowprioMarker = -1

// String returns the action symbol.
func (a Action) String() string {
	return string(a)
}

// Event is one change of the person set.
type Event struct {
	Action Action

	// Person is the person to remove, or the name of the person to add.
	// An empty name lets the World pick one.
	Person types.PersonID

	// Domain is the domain of an added person.
	Domain types.Domain
}

// Lowprio reports whether the event adds a low-priority person.
func (e Event) Lowprio() bool {
	return e.Action == ActionLowprio
}

// String returns the short encoding of the event, accepted by ParseEvent.
func (e Event) String() string {
	if e.Action == ActionRemove {
		return "-" + string(e.Person)
	}

	var b strings.Builder
	if e.Person != types.NoOwner {
		b.WriteString(string(e.Person))
		b.WriteByte(':')
	}
	b.WriteRune(rune(e.Action))
	for i, o := range e.Domain.IDs() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(o))
	}

	return b.String()
}

// ParseEvent decodes one event.
//
// Parameters:
//   - s: Event text, see the package documentation for the accepted forms
//
// Returns:
//   - Event: Decoded event
//   - error: ErrInvalidEvent with the reason
func ParseEvent(s string) (Event, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Event{}, fmt.Errorf("%w: empty event", ErrInvalidEvent)
	}

	if rest, ok := strings.CutPrefix(s, "-"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return Event{}, fmt.Errorf("%w: %q: missing person to remove", ErrInvalidEvent, s)
		}

		return Event{Action: ActionRemove, Person: types.PersonID(rest)}, nil
	}

	var name types.PersonID
	body := s
	if before, after, found := strings.Cut(s, ":"); found {
		before = strings.TrimSpace(before)
		if before == "" || strings.HasPrefix(before, "-") {
			return Event{}, fmt.Errorf("%w: %q: bad person name", ErrInvalidEvent, s)
		}
		name = types.PersonID(before)
		body = strings.TrimSpace(after)
	}

	ev, err := parseAdd(body)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %w", ErrInvalidEvent, s, err)
	}
	ev.Person = name

	return ev, nil
}

func parseAdd(body string) (Event, error) {
	switch {
	case strings.HasPrefix(body, "{"):
		inner, ok := strings.CutSuffix(body[1:], "}")
		if !ok {
			return Event{}, errors.New("unterminated set")
		}
		ids, err := parseIDs(inner, true)
		if err != nil {
			return Event{}, err
		}
		action := ActionAdd
		if slices.Contains(ids, lowprioMarker) {
			action = ActionLowprio
			ids = slices.DeleteFunc(ids, func(o int) bool { return o == lowprioMarker })
		}

		return Event{Action: action, Domain: types.NewDomain(ids...)}, nil

	case strings.HasPrefix(body, string(ActionAdd)), strings.HasPrefix(body, string(ActionLowprio)):
		ids, err := parseIDs(body[1:], false)
		if err != nil {
			return Event{}, err
		}

		return Event{Action: Action(body[0]), Domain: types.NewDomain(ids...)}, nil

	default:
		ids, err := parseIDs(body, false)
		if err != nil {
			return Event{}, err
		}

		return Event{Action: ActionAdd, Domain: types.NewDomain(ids...)}, nil
	}
}

// parseIDs reads a comma separated list of object ids. The lowprio marker is
// only accepted inside braced sets.
func parseIDs(list string, allowMarker bool) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	fields := strings.Split(list, ",")
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		o, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("object id %q is not a number", f)
		}
		if o < 0 && (o != lowprioMarker || !allowMarker) {
			return nil, fmt.Errorf("negative object id %d", o)
		}
		ids = append(ids, o)
	}

	return ids, nil
}

// ParseEvents reads one event per line. Blank lines and lines starting with
// '#' are skipped.
//
// Returns:
//   - []Event: Events in input order
//   - error: ErrInvalidEvent naming the line, or a read error
func ParseEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := ParseEvent(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	return events, nil
}
