package engine

import (
	"fmt"
)

// CallbackType defines the lifecycle points of Schedule where callbacks run.
//
// Callbacks provide a way to observe or gate the scheduling run without
// modifying the algorithm. They are executed synchronously; a callback that
// returns an error aborts Schedule with that error. The scheduler state at
// that point still satisfies every invariant.
type CallbackType string

const (
	// CallbackBeforePhase is triggered before a scheduling phase starts.
	CallbackBeforePhase CallbackType = "before_phase"

	// CallbackAfterPhase is triggered after a scheduling phase finishes,
	// including when it failed. CallbackContext.Err carries the failure.
	CallbackAfterPhase CallbackType = "after_phase"

	// CallbackOnSwap is triggered after every swap attempt made by the fill
	// and improve phases.
	CallbackOnSwap CallbackType = "on_swap"
)

// Phase names reported in CallbackContext and logs.
const (
	PhaseTimeSlot = "time_slot"
	PhaseFill     = "fill"
	PhaseImprove  = "improve"
)

// CallbackContext carries the details of a lifecycle point.
type CallbackContext struct {
	// CallbackType identifies which lifecycle point fired.
	CallbackType CallbackType

	// Phase is the scheduling phase the callback belongs to.
	Phase string

	// Pass is the 1-based pass within the phase (0 for phase boundaries).
	Pass int

	// Attendee is the identity string of the swap target (on_swap only).
	Attendee string

	// Swapped reports whether the swap succeeded (on_swap only).
	Swapped bool

	// Err is the phase failure, if any (after_phase only).
	Err error
}

// Callback is a hook executed at one lifecycle point.
type Callback interface {
	// Type returns the lifecycle point this callback handles.
	Type() CallbackType

	// Execute runs the callback. A non-nil error aborts Schedule.
	Execute(callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a plain function as a Callback.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a callback for the given type from fn.
func NewFunctionCallback(callbackType CallbackType, fn func(callbackCtx *CallbackContext) error) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type implements Callback.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *FunctionCallback) Execute(callbackCtx *CallbackContext) error {
	return c.fn(callbackCtx)
}

// CallbackManager keeps callbacks grouped by type and runs them in
// registration order.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback of the given type, stopping at the
// first error.
func (cm *CallbackManager) ExecuteCallbacks(callbackType CallbackType, callbackCtx *CallbackContext) error {
	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil // No callbacks registered for this type
	}

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback renders lifecycle points as one-line messages.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a LoggingCallback writing to logger.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type implements Callback.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute implements Callback.
func (c *LoggingCallback) Execute(callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	switch c.callbackType {
	case CallbackOnSwap:
		c.logger(fmt.Sprintf("[%s] phase: %s, pass: %d, attendee: %s, swapped: %t",
			c.callbackType, callbackCtx.Phase, callbackCtx.Pass, callbackCtx.Attendee, callbackCtx.Swapped))
	default:
		c.logger(fmt.Sprintf("[%s] phase: %s, err: %v", c.callbackType, callbackCtx.Phase, callbackCtx.Err))
	}
	return nil
}

// ValidationCallback checks scheduler invariants after each phase.
type ValidationCallback struct {
	validator func() error
}

// NewValidationCallback creates an after_phase callback running validator,
// typically (*Scheduler).Validate.
func NewValidationCallback(validator func() error) *ValidationCallback {
	return &ValidationCallback{
		validator: validator,
	}
}

// Type implements Callback.
func (c *ValidationCallback) Type() CallbackType {
	return CallbackAfterPhase
}

// Execute implements Callback.
func (c *ValidationCallback) Execute(callbackCtx *CallbackContext) error {
	if c.validator == nil {
		return nil
	}
	if err := c.validator(); err != nil {
		return fmt.Errorf("after %s phase: %w", callbackCtx.Phase, err)
	}
	return nil
}
