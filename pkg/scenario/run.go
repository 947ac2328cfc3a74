package scenario

import (
	"fmt"

	godigest "github.com/opencontainers/go-digest"

	"github.com/papercomputeco/seclist/pkg/chain"
)

// Result is the outcome of a single step.
type Result struct {
	Step int
	Op   Step

	// Err is set when the operation was rejected. The chain is unchanged.
	Err error

	// Length and Head describe the chain after the step.
	Length int
	Head   godigest.Digest

	// Node is set by successful get steps.
	Node *chain.Entry

	// Valid and Mismatches are set by verify steps.
	Valid      *bool
	Mismatches []chain.Mismatch
}

// Report collects the results of a run.
type Report struct {
	Results []Result
	Failed  int
}

// Run applies the steps of s to c in order. Rejected operations are recorded
// and the run continues, unless failFast is set, in which case the first
// rejection stops the run and is returned alongside the partial report.
func Run(c *chain.Chain, s *Scenario, failFast bool) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(s.Steps))}

	for i, step := range s.Steps {
		res := apply(c, i, step)
		report.Results = append(report.Results, res)

		if res.Err != nil {
			report.Failed++
			if failFast {
				return report, fmt.Errorf("step %d %s: %w", i, step, res.Err)
			}
		}
	}

	return report, nil
}

func apply(c *chain.Chain, i int, step Step) Result {
	res := Result{Step: i, Op: step}

	if err := step.validate(i); err != nil {
		res.Err = err
		res.Length = c.Len()
		res.Head = c.HeadDigest()
		return res
	}

	switch step.Op {
	case OpAdd:
		c.Add(*step.Value)
	case OpInsert:
		res.Err = c.Insert(*step.Index, *step.Value)
	case OpRemove:
		res.Err = c.Remove(*step.Index)
	case OpGet:
		n, err := c.Get(*step.Index)
		if err != nil {
			res.Err = err
			break
		}
		res.Node = &chain.Entry{
			Index:   *step.Index,
			Value:   n.Value(),
			Digest:  n.Digest(),
			HasNext: n.HasNext(),
		}
	case OpVerify:
		res.Mismatches = c.Verify()
		valid := len(res.Mismatches) == 0
		res.Valid = &valid
	}

	res.Length = c.Len()
	res.Head = c.HeadDigest()
	return res
}
