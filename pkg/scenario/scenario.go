// Package scenario drives a chain from a TOML script of operations.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Op names a chain operation.
type Op string

const (
	OpAdd    Op = "add"
	OpInsert Op = "insert"
	OpRemove Op = "remove"
	OpGet    Op = "get"
	OpVerify Op = "verify"
)

// Step is one operation in a scenario. Index and Value are pointers so a
// missing key can be told apart from a zero value.
type Step struct {
	Op    Op      `toml:"op"`
	Index *int    `toml:"index"`
	Value *string `toml:"value"`
}

// Scenario is a named digest algorithm and the steps to apply in order.
type Scenario struct {
	// Digest names the algorithm, e.g. "sha256". Empty selects the default.
	Digest string `toml:"digest"`

	Steps []Step `toml:"step"`
}

// ErrInvalidStep is returned when a step is malformed.
type ErrInvalidStep struct {
	Step   int
	Reason string
}

func (e ErrInvalidStep) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Reason)
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	return s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	for i, step := range s.Steps {
		if err := step.validate(i); err != nil {
			return nil, err
		}
	}

	return &s, nil
}

func (s Step) validate(i int) error {
	switch s.Op {
	case OpAdd:
		if s.Value == nil {
			return ErrInvalidStep{Step: i, Reason: "add requires a value"}
		}
	case OpInsert:
		if s.Index == nil || s.Value == nil {
			return ErrInvalidStep{Step: i, Reason: "insert requires an index and a value"}
		}
	case OpRemove, OpGet:
		if s.Index == nil {
			return ErrInvalidStep{Step: i, Reason: string(s.Op) + " requires an index"}
		}
	case OpVerify:
	case "":
		return ErrInvalidStep{Step: i, Reason: "missing op"}
	default:
		return ErrInvalidStep{Step: i, Reason: "unknown op " + string(s.Op)}
	}

	return nil
}

// String renders the step the way it would be called, e.g. insert(1, "c").
func (s Step) String() string {
	var args []string
	if s.Index != nil {
		args = append(args, fmt.Sprint(*s.Index))
	}
	if s.Value != nil {
		args = append(args, fmt.Sprintf("%q", *s.Value))
	}
	return string(s.Op) + "(" + strings.Join(args, ", ") + ")"
}
