package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/statekit"
	"github.com/felixgeelhaar/statekit/export"
)

// StatusContext is the context passed to the status machine.
type StatusContext struct {
	PositionID string
}

// MachineID identifies the status machine in exports.
const MachineID = "position-status"

// Event names for the status machine. Each event moves to the status it names.
const (
	EventToCvSent               statekit.EventType = "ADVANCE_TO_CV_SENT"
	EventToPhoneScreenScheduled statekit.EventType = "ADVANCE_TO_PHONE_SCREEN_SCHEDULED"
	EventToTechnicalInterview   statekit.EventType = "ADVANCE_TO_TECHNICAL_INTERVIEW"
	EventToOfferReceived        statekit.EventType = "ADVANCE_TO_OFFER_RECEIVED"
	EventToRejected             statekit.EventType = "ADVANCE_TO_REJECTED"
	EventToWithdrawn            statekit.EventType = "ADVANCE_TO_WITHDRAWN"
)

// State IDs for the status machine.
var (
	StateIDCvSent               = statekit.StateID(StatusCvSent)
	StateIDPhoneScreenScheduled = statekit.StateID(StatusPhoneScreenScheduled)
	StateIDTechnicalInterview   = statekit.StateID(StatusTechnicalInterview)
	StateIDOfferReceived        = statekit.StateID(StatusOfferReceived)
	StateIDRejected             = statekit.StateID(StatusRejected)
	StateIDWithdrawn            = statekit.StateID(StatusWithdrawn)
)

// EventFor returns the event that moves the machine to status.
func EventFor(status Status) statekit.EventType {
	switch status {
	case StatusCvSent:
		return EventToCvSent
	case StatusPhoneScreenScheduled:
		return EventToPhoneScreenScheduled
	case StatusTechnicalInterview:
		return EventToTechnicalInterview
	case StatusOfferReceived:
		return EventToOfferReceived
	case StatusRejected:
		return EventToRejected
	case StatusWithdrawn:
		return EventToWithdrawn
	default:
		return statekit.EventType("ADVANCE_TO_" + strings.ToUpper(string(status)))
	}
}

// StatusMachine wraps the Statekit machine for the application pipeline.
// Position.AdvanceStatus checks moves against the transition table; the
// machine backs replay, the target listing and the XState export, and
// tests keep the two in agreement.
type StatusMachine struct {
	interpreter *statekit.Interpreter[StatusContext]
	exporter    *export.XStateExporter[StatusContext]
}

// NewStatusMachine creates a new status machine starting at CvSent.
func NewStatusMachine() (*StatusMachine, error) {
	machine, err := statekit.NewMachine[StatusContext](MachineID).
		WithInitial(StateIDCvSent).
		// CvSent: every move is allowed
		State(StateIDCvSent).
		On(EventToPhoneScreenScheduled).Target(StateIDPhoneScreenScheduled).
		On(EventToTechnicalInterview).Target(StateIDTechnicalInterview).
		On(EventToOfferReceived).Target(StateIDOfferReceived).
		On(EventToRejected).Target(StateIDRejected).
		On(EventToWithdrawn).Target(StateIDWithdrawn).
		Done().
		State(StateIDPhoneScreenScheduled).
		On(EventToTechnicalInterview).Target(StateIDTechnicalInterview).
		On(EventToOfferReceived).Target(StateIDOfferReceived).
		On(EventToRejected).Target(StateIDRejected).
		On(EventToWithdrawn).Target(StateIDWithdrawn).
		Done().
		State(StateIDTechnicalInterview).
		On(EventToOfferReceived).Target(StateIDOfferReceived).
		On(EventToRejected).Target(StateIDRejected).
		On(EventToWithdrawn).Target(StateIDWithdrawn).
		Done().
		State(StateIDOfferReceived).
		On(EventToRejected).Target(StateIDRejected).
		On(EventToWithdrawn).Target(StateIDWithdrawn).
		Done().
		// Terminal states
		State(StateIDRejected).
		Final().
		Done().
		State(StateIDWithdrawn).
		Final().
		Done().
		Build()

	if err != nil {
		return nil, fmt.Errorf("failed to build status machine: %w", err)
	}

	return &StatusMachine{
		interpreter: statekit.NewInterpreter(machine),
		exporter:    export.NewXStateExporter(machine),
	}, nil
}

// Start starts the interpreter.
func (m *StatusMachine) Start() {
	m.interpreter.Start()
}

// Send sends an event to the interpreter.
func (m *StatusMachine) Send(event statekit.EventType) error {
	if m.interpreter == nil {
		return fmt.Errorf("interpreter not started")
	}
	m.interpreter.Send(statekit.Event{Type: event})
	return nil
}

// CurrentStatus returns the status the machine is in.
func (m *StatusMachine) CurrentStatus() Status {
	if m.interpreter == nil {
		return ""
	}
	return Status(m.interpreter.State().Value)
}

// IsDone returns true if the machine reached a terminal status.
func (m *StatusMachine) IsDone() bool {
	if m.interpreter == nil {
		return false
	}
	return m.interpreter.Done()
}

// Replay runs a fresh machine to from, then sends the event for to, and
// returns where the machine ends up. A forbidden move leaves it at from.
func Replay(from, to Status) (Status, error) {
	if !from.IsValid() {
		return "", NewInvalidStatusError(string(from))
	}
	if !to.IsValid() {
		return "", NewInvalidStatusError(string(to))
	}

	m, err := NewStatusMachine()
	if err != nil {
		return "", err
	}
	m.Start()
	if from != StatusCvSent {
		if err := m.Send(EventFor(from)); err != nil {
			return "", err
		}
	}
	if err := m.Send(EventFor(to)); err != nil {
		return "", err
	}
	return m.CurrentStatus(), nil
}

// MachineTargets lists, in pipeline order, the statuses the machine accepts
// a move to from from.
func MachineTargets(from Status) ([]Status, error) {
	if !from.IsValid() {
		return nil, NewInvalidStatusError(string(from))
	}
	var targets []Status
	for _, to := range AllStatuses() {
		if to == from {
			continue
		}
		got, err := Replay(from, to)
		if err != nil {
			return nil, err
		}
		if got == to {
			targets = append(targets, to)
		}
	}
	return targets, nil
}

// XStateJSON represents the XState JSON format for visualization.
type XStateJSON struct {
	ID      string                     `json:"id"`
	Initial string                     `json:"initial"`
	States  map[string]XStateStateJSON `json:"states"`
}

// XStateStateJSON represents a state in XState JSON format.
type XStateStateJSON struct {
	Type string                      `json:"type,omitempty"`
	On   map[string]XStateTransition `json:"on,omitempty"`
}

// XStateTransition represents a transition in XState JSON format.
type XStateTransition struct {
	Target string `json:"target"`
}

// ExportXState returns the machine definition in XState form.
func (m *StatusMachine) ExportXState() (XStateJSON, error) {
	machine, err := m.exporter.Export()
	if err != nil {
		return XStateJSON{}, fmt.Errorf("failed to export status machine: %w", err)
	}

	states := make(map[string]XStateStateJSON, len(machine.States))
	for id, node := range machine.States {
		state := XStateStateJSON{Type: node.Type}
		if len(node.On) > 0 {
			state.On = make(map[string]XStateTransition, len(node.On))
			for event, tr := range node.On {
				state.On[event] = XStateTransition{Target: tr.Target}
			}
		}
		states[id] = state
	}
	return XStateJSON{
		ID:      machine.ID,
		Initial: machine.Initial,
		States:  states,
	}, nil
}

// ExportXStateJSON exports the status machine as indented XState JSON.
func ExportXStateJSON() ([]byte, error) {
	m, err := NewStatusMachine()
	if err != nil {
		return nil, err
	}
	xstate, err := m.ExportXState()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(xstate, "", "  ")
}
