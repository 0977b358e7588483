package core

import (
	"errors"
	"strings"
)

// ErrUploadFailed is returned when the backend accepted the request but
// reported that the upload did not succeed.
var ErrUploadFailed = errors.New("upload failed")

// FallbackErrorMessage is shown when a failure carries no message of its own.
const FallbackErrorMessage = "Upload failed"

// userMessager is implemented by errors that carry text meant for the user,
// such as a backend status error with a detail body.
type userMessager interface {
	UserMessage() string
}

// ErrorMessage returns the text a view should display for err. Errors that
// expose a user message win; ErrUploadFailed and empty messages fall back to
// "Upload failed".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
		return FallbackErrorMessage
	}
	if errors.Is(err, ErrUploadFailed) {
		return FallbackErrorMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}

// Phase is the observable state of a module view.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewState is the per-module state of one visitor. After a completed request
// exactly one of Data and Error is set; Loading is true only while a request
// is outstanding. Seen stays true once any request has resolved.
type ViewState[T any] struct {
	Data    *T
	Loading bool
	Error   string
	Seen    bool
}

// Begin enters Loading from any phase and clears the previous error.
func (v *ViewState[T]) Begin() {
	v.Loading = true
	v.Error = ""
}

// Resolve settles a request with data.
func (v *ViewState[T]) Resolve(data T) {
	v.Data = &data
	v.Loading = false
	v.Error = ""
	v.Seen = true
}

// Reject settles a request with an error. Any previous data is dropped, but
// a view that has shown data keeps its loaded layout.
func (v *ViewState[T]) Reject(err error) {
	v.Data = nil
	v.Loading = false
	v.Error = ErrorMessage(err)
	if v.Error == "" {
		v.Error = FallbackErrorMessage
	}
}

// Phase derives the current phase.
func (v ViewState[T]) Phase() Phase {
	switch {
	case v.Loading:
		return PhaseLoading
	case v.Error != "":
		return PhaseError
	case v.Data != nil:
		return PhaseLoaded
	default:
		return PhaseEmpty
	}
}

// PreInsight reports whether the view has never shown data, which is when the
// introductory panel replaces the charts.
func (v ViewState[T]) PreInsight() bool {
	return !v.Seen
}

// Views groups the four module states of one visitor.
type Views struct {
	Expense   ViewState[ExpenseUpload]
	Fraud     ViewState[FraudUpload]
	Inventory ViewState[InventoryView]
	GreenGrid ViewState[GreenGridUpload]
}

// PhaseOf returns the phase of module m.
func (v Views) PhaseOf(m Module) Phase {
	switch m {
	case ModuleExpense:
		return v.Expense.Phase()
	case ModuleFraud:
		return v.Fraud.Phase()
	case ModuleInventory:
		return v.Inventory.Phase()
	case ModuleGreenGrid:
		return v.GreenGrid.Phase()
	default:
		return PhaseEmpty
	}
}

// Loading reports whether module m has a request outstanding.
func (v Views) Loading(m Module) bool {
	return v.PhaseOf(m) == PhaseLoading
}
