package domain

import "fmt"

type ItemState string

const (
	StatePending       ItemState = "pending"
	StateExtracted     ItemState = "extracted"
	StateExtractFailed ItemState = "extract_failed"
	StateParsed        ItemState = "parsed"
	StateValid         ItemState = "valid"
	StateInvalid       ItemState = "invalid"
	StateMapped        ItemState = "mapped"
	StateArchived      ItemState = "archived"
	StatePersisted     ItemState = "persisted"
	StateDone          ItemState = "done"
	StateQuarantined   ItemState = "quarantined"
)

var transitions = map[ItemState][]ItemState{
	StatePending:   {StateExtracted, StateExtractFailed},
	StateExtracted: {StateParsed},
	StateParsed:    {StateValid, StateInvalid},
	StateInvalid:   {StateQuarantined},
	StateValid:     {StateMapped},
	StateMapped:    {StateArchived, StateQuarantined},
	StateArchived:  {StatePersisted, StateQuarantined},
	StatePersisted: {StateDone, StateQuarantined},
}

func CanTransition(from, to ItemState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ItemState) Terminal() bool {
	switch s {
	case StateExtractFailed, StateDone, StateQuarantined:
		return true
	default:
		return false
	}
}

type QuarantineReason string

const (
	QuarantineInvalid QuarantineReason = "invalid"
	QuarantineFailed  QuarantineReason = "failed"
)

// ItemOutcome tracks one input through the pipeline.
type ItemOutcome struct {
	File          string           `json:"file"`
	State         ItemState        `json:"state"`
	Reason        QuarantineReason `json:"reason,omitempty"`
	ArtifactName  string           `json:"artifact_name,omitempty"`
	QuarantineKey string           `json:"quarantine_key,omitempty"`
	Error         string           `json:"error,omitempty"`
}

func NewItemOutcome(file string) *ItemOutcome {
	return &ItemOutcome{File: file, State: StatePending}
}

// Advance moves the item to the next state, rejecting transitions the pipeline never makes.
func (o *ItemOutcome) Advance(to ItemState) error {
	if !CanTransition(o.State, to) {
		return fmt.Errorf("illegal transition %s -> %s for %s", o.State, to, o.File)
	}
	o.State = to
	return nil
}

// BatchSummary is the result of one run.
type BatchSummary struct {
	Items   []ItemOutcome `json:"items"`
	Skipped []string      `json:"skipped,omitempty"`
}

type BatchCounts struct {
	Inputs             int
	Persisted          int
	QuarantinedInvalid int
	QuarantinedFailed  int
	ExtractFailed      int
	Unfinished         int
}

func (s BatchSummary) Counts() BatchCounts {
	c := BatchCounts{Inputs: len(s.Items)}
	for _, item := range s.Items {
		switch {
		case item.State == StateDone:
			c.Persisted++
		case item.State == StateQuarantined && item.Reason == QuarantineInvalid:
			c.QuarantinedInvalid++
		case item.State == StateQuarantined:
			c.QuarantinedFailed++
		case item.State == StateExtractFailed:
			c.ExtractFailed++
		default:
			c.Unfinished++
		}
	}
	return c
}

// Complete reports whether every input reached a terminal state.
func (c BatchCounts) Complete() bool {
	return c.Unfinished == 0 &&
		c.Inputs == c.Persisted+c.QuarantinedInvalid+c.QuarantinedFailed+c.ExtractFailed
}
