package pipeline

import (
	"errors"
	"fmt"

	"github.com/Adithya-charan/docuExtract/internal/models"
)

// Kind is the phase of an analysis run.
type Kind string

const (
	Idle       Kind = "idle"
	Ingesting  Kind = "ingesting"
	Requesting Kind = "requesting"
	Parsing    Kind = "parsing"
	Ready      Kind = "ready"
	Failed     Kind = "failed"
)

var (
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrRunInProgress     = errors.New("an analysis is already running")
	ErrStaleRun          = errors.New("analysis run was abandoned")
)

// next lists the forward transitions. Failed is reachable from anywhere and
// is handled separately.
var next = map[Kind][]Kind{
	Idle:       {Ingesting},
	Ingesting:  {Requesting},
	Requesting: {Parsing},
	Parsing:    {Ready},
	Ready:      {Idle},
	Failed:     {Idle},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Kind) bool {
	if to == Failed {
		return true
	}
	for _, k := range next[from] {
		if k == to {
			return true
		}
	}
	return false
}

// Busy reports whether a run is in flight.
func (k Kind) Busy() bool {
	return k == Ingesting || k == Requesting || k == Parsing
}

// State is a snapshot of the pipeline. Result and Grounding are only set in
// Ready, Reason only in Failed.
type State struct {
	Kind      Kind                   `json:"kind"`
	Progress  int                    `json:"progress"`
	Logs      []string               `json:"logs"`
	Result    *models.AnalysisResult `json:"result,omitempty"`
	Grounding string                 `json:"-"`
	Reason    string                 `json:"reason,omitempty"`
}

// Transition returns the state moved to k. Moving to Idle discards
// everything the previous run produced.
func (s State) Transition(k Kind) (State, error) {
	if !CanTransition(s.Kind, k) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Kind, k)
	}
	if k == Idle {
		return State{Kind: Idle}, nil
	}
	out := s.clone()
	out.Kind = k
	return out, nil
}

// Fail moves the state to Failed with reason, keeping progress and logs.
func (s State) Fail(reason string) State {
	out := s.clone()
	out.Kind = Failed
	out.Reason = reason
	out.Result = nil
	out.Grounding = ""
	return out
}

func (s State) clone() State {
	out := s
	out.Logs = append([]string(nil), s.Logs...)
	return out
}
