package state

import "encoding/json"

// Phase is the tag of a UI state cell. Every cell moves Idle -> Loading ->
// {Success, Error}; no phase is terminal, a new load or mutation re-enters
// Loading from anywhere.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UiState is a tagged variant over {Idle, Loading, Success(payload),
// Error(message)}. Value is meaningful only in PhaseSuccess, Message only in
// PhaseError.
type UiState[T any] struct {
	Phase   Phase  `json:"phase"`
	Value   T      `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

func Idle[T any]() UiState[T] {
	return UiState[T]{Phase: PhaseIdle}
}

func Loading[T any]() UiState[T] {
	return UiState[T]{Phase: PhaseLoading}
}

func Success[T any](value T) UiState[T] {
	return UiState[T]{Phase: PhaseSuccess, Value: value}
}

func Fail[T any](message string) UiState[T] {
	return UiState[T]{Phase: PhaseError, Message: message}
}
