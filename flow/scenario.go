package flow

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a replayable run: a world size and a list of steps.
//
// Example YAML:
//
//	name: task statement
//	objects: 10
//	steps:
//	  - event: "{}"
//	    expect: "----------"
//	  - event: "{2, 3}"
//	    expect: "--11------"
//	  - event: "-2"
type Scenario struct {
	Name    string         `yaml:"name"`
	Objects int            `yaml:"objects"`
	Steps   []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one event with an optional expected ownership string.
type ScenarioStep struct {
	Event  string `yaml:"event"`
	Expect string `yaml:"expect,omitempty"`
}

// Events parses the events of every step.
//
// Returns:
//   - []Event: Parsed events in step order
//   - error: ErrInvalidEvent naming the step
func (s *Scenario) Events() ([]Event, error) {
	events := make([]Event, 0, len(s.Steps))
	for i, st := range s.Steps {
		ev, err := ParseEvent(st.Event)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		events = append(events, ev)
	}

	return events, nil
}

// Validate checks the scenario shape and every event.
func (s *Scenario) Validate() error {
	if s.Objects < 0 {
		return fmt.Errorf("%w: objects must be >= 0, got %d", ErrInvalidScenario, s.Objects)
	}
	for i, st := range s.Steps {
		if st.Expect != "" && len([]rune(st.Expect)) != s.Objects {
			return fmt.Errorf("%w: step %d expects %d objects, world has %d",
				ErrInvalidScenario, i+1, len([]rune(st.Expect)), s.Objects)
		}
	}
	if _, err := s.Events(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	return nil
}

// LoadScenario decodes and validates a YAML scenario.
//
// Unknown fields are rejected so that typos in hand-written files surface.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// LoadScenarioFile reads a YAML scenario from disk.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	s, err := LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}
