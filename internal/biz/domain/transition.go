package domain

import "fmt"

// Operation is a state change requested by an inbound handler
type Operation string

const (
	OpActivate        Operation = "activate"
	OpDisable         Operation = "disable"
	OpRequestUpload   Operation = "request_upload"
	OpRequestAdd      Operation = "request_add"
	OpRequestRemoval  Operation = "request_removal"
	OpCompleteUpload  Operation = "complete_upload"
	OpCompleteAdd     Operation = "complete_add"
	OpCompleteRemoval Operation = "complete_removal"
	OpCancel          Operation = "cancel"
)

// rule is one cell of the transition table
type rule struct {
	to          ChatState
	whenEmpty   ChatState // target when the entry list is empty, stateNone keeps to
	rejectEmpty bool
}

// anyState expands one rule over every state, including a missing record
func anyState(r rule) map[ChatState]rule {
	m := map[ChatState]rule{stateNone: r}
	for _, s := range ChatStates {
		m[s] = r
	}
	return m
}

// transitions is the state × operation table. A missing cell is a rejection.
var transitions = map[Operation]map[ChatState]rule{
	OpActivate: {
		stateNone:           {to: StateWaitingJson},
		StateActive:         {to: StateActive, whenEmpty: StateWaitingJson},
		StateDisabled:       {to: StateActive, whenEmpty: StateWaitingJson},
		StateWaitingJson:    {to: StateWaitingJson},
		StateWaitingEntry:   {to: StateActive, whenEmpty: StateWaitingJson},
		StateWaitingRemoval: {to: StateActive, whenEmpty: StateWaitingJson},
	},
	OpDisable:       anyState(rule{to: StateDisabled}),
	OpRequestUpload: anyState(rule{to: StateWaitingJson}),
	OpRequestAdd:    anyState(rule{to: StateWaitingEntry}),
	OpRequestRemoval: {
		StateActive:         {to: StateWaitingRemoval, rejectEmpty: true},
		StateDisabled:       {to: StateWaitingRemoval, rejectEmpty: true},
		StateWaitingJson:    {to: StateWaitingRemoval, rejectEmpty: true},
		StateWaitingEntry:   {to: StateWaitingRemoval, rejectEmpty: true},
		StateWaitingRemoval: {to: StateWaitingRemoval, rejectEmpty: true},
	},
	OpCompleteUpload:  {StateWaitingJson: {to: StateActive}},
	OpCompleteAdd:     {StateWaitingEntry: {to: StateActive}},
	OpCompleteRemoval: {StateWaitingRemoval: {to: StateActive}},
	OpCancel: {
		StateActive:         {to: StateActive},
		StateDisabled:       {to: StateDisabled},
		StateWaitingJson:    {to: StateActive, whenEmpty: StateDisabled},
		StateWaitingEntry:   {to: StateActive, whenEmpty: StateDisabled},
		StateWaitingRemoval: {to: StateActive, whenEmpty: StateDisabled},
	},
}

// Transition describes the effect of an accepted operation
type Transition struct {
	Op      Operation
	From    ChatState
	To      ChatState
	Created bool // the record did not exist before
}

// Changed reports whether the state moved
func (t Transition) Changed() bool {
	return t.Created || t.From != t.To
}

// Next looks up the table for op applied to rec; rec is nil for a conversation without a record.
// hasEntries is evaluated against the list as it will be after the operation's own mutation.
func Next(rec *ChatRecord, op Operation, hasEntries bool) (Transition, error) {
	from := stateNone
	if rec != nil {
		from = rec.State
	}

	row, ok := transitions[op]
	if !ok {
		return Transition{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidTransition, op)
	}
	r, ok := row[from]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s not allowed in state %q", ErrInvalidTransition, op, from)
	}
	if r.rejectEmpty && !hasEntries {
		return Transition{}, fmt.Errorf("%w: %s needs at least one entry", ErrInvalidTransition, op)
	}

	to := r.to
	if !hasEntries && r.whenEmpty != stateNone {
		to = r.whenEmpty
	}

	return Transition{Op: op, From: from, To: to, Created: rec == nil}, nil
}
