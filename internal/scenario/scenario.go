package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rxstate/internal/errors"
)

// File is the decoded form of a scenario file.
type File struct {
	// Streams are constructed in order. Sources must name earlier streams.
	Streams []StreamDef `yaml:"streams"`

	// Watch lists the streams whose emissions are written while running.
	Watch []string `yaml:"watch"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`
}

// StreamDef declares one stream.
type StreamDef struct {
	Name     string                `yaml:"name"`
	Initial  any                   `yaml:"initial"`
	Sources  []string              `yaml:"sources,omitempty"`
	Emitters map[string]EmitterDef `yaml:"emitters,omitempty"`
}

// EmitterDef declares an emitter by the operation it applies.
type EmitterDef struct {
	Op string `yaml:"op"`
}

// Step is one action against a stream. Exactly one of Set, Add, Emit or
// Dispose is present.
type Step struct {
	Stream string
	Action string
	Value  any
	Emit   string
	Args   []any
	Line   int
}

// Step actions.
const (
	ActionSet     = "set"
	ActionAdd     = "add"
	ActionEmit    = "emit"
	ActionDispose = "dispose"
)

// UnmarshalYAML records which action key is present, so that "set: null"
// is distinguished from no set at all.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Stream  string    `yaml:"stream"`
		Set     yaml.Node `yaml:"set"`
		Add     yaml.Node `yaml:"add"`
		Emit    string    `yaml:"emit"`
		Args    []any     `yaml:"args"`
		Dispose bool      `yaml:"dispose"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	s.Stream = raw.Stream
	s.Line = node.Line
	s.Emit = raw.Emit
	s.Args = raw.Args

	var actions []string
	if raw.Set.Kind != 0 {
		actions = append(actions, ActionSet)
		if err := raw.Set.Decode(&s.Value); err != nil {
			return err
		}
	}
	if raw.Add.Kind != 0 {
		actions = append(actions, ActionAdd)
		if err := raw.Add.Decode(&s.Value); err != nil {
			return err
		}
	}
	if raw.Emit != "" {
		actions = append(actions, ActionEmit)
	}
	if raw.Dispose {
		actions = append(actions, ActionDispose)
	}

	switch len(actions) {
	case 0:
		return fmt.Errorf("line %d: step needs one of set, add, emit or dispose", node.Line)
	case 1:
		s.Action = actions[0]
		return nil
	default:
		return fmt.Errorf("line %d: step has more than one action: %s", node.Line, strings.Join(actions, ", "))
	}
}

// Scenario is a parsed and validated scenario file.
type Scenario struct {
	File
	path string
}

// LoadFile reads and validates a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R031").Wrap(err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sc.path = path
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, &sc.File); err != nil {
		return nil, errors.New("R031").
			WithDetail(err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Path returns the path the scenario was loaded from.
func (sc *Scenario) Path() string {
	return sc.path
}

// Validate checks that every reference in the scenario resolves. Stream
// names themselves are checked by the runtime when the streams are built.
func (sc *Scenario) Validate() error {
	if len(sc.Streams) == 0 {
		return errors.New("R031").WithDetail("no streams declared")
	}

	declared := make(map[string]bool, len(sc.Streams))
	for i, def := range sc.Streams {
		if declared[def.Name] {
			return errors.New("R031").WithDetailf("streams[%d]: duplicate stream %q", i, def.Name)
		}
		for _, src := range def.Sources {
			if !declared[src] {
				return errors.New("R031").
					WithDetailf("streams[%d]: source %q is not declared before %q", i, src, def.Name).
					WithSuggestion("Declare sources before the streams that combine them")
			}
		}
		for name, em := range def.Emitters {
			if _, ok := operations[em.Op]; !ok {
				return errors.New("R031").
					WithDetailf("streams[%d]: emitter %q has unknown op %q", i, name, em.Op).
					WithSuggestion("Use one of set, add, append or merge")
			}
		}
		declared[def.Name] = true
	}

	for _, name := range sc.Watch {
		if !declared[name] {
			return errors.New("R031").WithDetailf("watch: unknown stream %q", name)
		}
	}

	for i, step := range sc.Steps {
		if !declared[step.Stream] {
			return errors.New("R031").WithDetailf("steps[%d] (line %d): unknown stream %q", i, step.Line, step.Stream)
		}
		if step.Action == ActionAdd {
			if _, ok := toFloat(step.Value); !ok {
				return errors.New("R031").WithDetailf("steps[%d] (line %d): add expects a number", i, step.Line)
			}
		}
	}
	return nil
}
