package domain

import (
	"encoding/json"
	"fmt"
)

// ChatState tells what kind of input the next message of a conversation is read as
type ChatState string

const (
	StateActive         ChatState = "Active"
	StateDisabled       ChatState = "Disabled"
	StateWaitingJson    ChatState = "WaitingJson"
	StateWaitingEntry   ChatState = "WaitingEntry"
	StateWaitingRemoval ChatState = "WaitingRemoval"
)

// stateNone stands for a conversation that has no record yet
const stateNone ChatState = ""

// ChatStates lists every valid state
var ChatStates = []ChatState{
	StateActive,
	StateDisabled,
	StateWaitingJson,
	StateWaitingEntry,
	StateWaitingRemoval,
}

// String returns the state name
func (s ChatState) String() string {
	return string(s)
}

// IsValid reports whether s is one of the five known states
func (s ChatState) IsValid() bool {
	for _, known := range ChatStates {
		if s == known {
			return true
		}
	}
	return false
}

// IsWaiting reports whether the conversation expects a follow-up input
func (s ChatState) IsWaiting() bool {
	return s == StateWaitingJson || s == StateWaitingEntry || s == StateWaitingRemoval
}

// ParseChatState parses a state name
func ParseChatState(name string) (ChatState, error) {
	s := ChatState(name)
	if !s.IsValid() {
		return stateNone, fmt.Errorf("%w: unknown chat state %q", ErrParse, name)
	}
	return s, nil
}

// UnmarshalJSON rejects unknown state names
func (s *ChatState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseChatState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ChatRecord is the per-conversation (state, entry list) pair
type ChatRecord struct {
	State   ChatState
	Entries EntryList
}

// Clone returns a deep copy suitable as a read-only view
func (r *ChatRecord) Clone() *ChatRecord {
	return &ChatRecord{State: r.State, Entries: r.Entries.Clone()}
}
