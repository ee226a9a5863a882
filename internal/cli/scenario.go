package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted message sequence for the counter component.
type Scenario struct {
	// Name identifies the scenario in output and golden files.
	Name string `yaml:"name"`

	// Description is free-form documentation.
	Description string `yaml:"description,omitempty"`

	// Steps are applied in order.
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep dispatches one named message, optionally repeated.
type ScenarioStep struct {
	Msg    string `yaml:"msg"`
	Repeat int    `yaml:"repeat,omitempty"`
}

// Messages a scenario step may name.
const (
	StepIncrement = "increment"
	StepDecrement = "decrement"
)

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario names only known messages.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("no steps")
	}
	for i, step := range s.Steps {
		switch step.Msg {
		case StepIncrement, StepDecrement:
		default:
			return fmt.Errorf("step %d: unknown msg %q", i, step.Msg)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("step %d: negative repeat", i)
		}
	}
	return nil
}

// messages expands the steps into the flat dispatch sequence.
func (s *Scenario) messages() []CounterMsg {
	var msgs []CounterMsg
	for _, step := range s.Steps {
		n := step.Repeat
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			switch step.Msg {
			case StepIncrement:
				msgs = append(msgs, Increment{})
			case StepDecrement:
				msgs = append(msgs, Decrement{})
			}
		}
	}
	return msgs
}
