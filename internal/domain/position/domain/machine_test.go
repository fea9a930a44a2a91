package domain

import (
	"encoding/json"
	"testing"
)

func TestNewStatusMachine(t *testing.T) {
	machine, err := NewStatusMachine()
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	if machine == nil {
		t.Fatal("NewStatusMachine() returned nil machine")
	}

	machine.Start()
	if machine.CurrentStatus() != StatusCvSent {
		t.Errorf("CurrentStatus() = %v, want %v", machine.CurrentStatus(), StatusCvSent)
	}
	if machine.IsDone() {
		t.Error("IsDone() = true in CvSent, want false")
	}
}

func TestStatusMachine_ReachesTerminal(t *testing.T) {
	machine, err := NewStatusMachine()
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	machine.Start()

	for _, ev := range []Status{StatusPhoneScreenScheduled, StatusTechnicalInterview, StatusOfferReceived, StatusWithdrawn} {
		if err := machine.Send(EventFor(ev)); err != nil {
			t.Fatalf("Send(%s) error = %v", ev, err)
		}
		if machine.CurrentStatus() != ev {
			t.Fatalf("CurrentStatus() = %v, want %v", machine.CurrentStatus(), ev)
		}
	}
	if !machine.IsDone() {
		t.Error("IsDone() = false in Withdrawn, want true")
	}
}

// The machine and the transition table must agree on every allowed move.
func TestReplay_AgreesWithTransitionTable(t *testing.T) {
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			if from == to {
				continue
			}
			got, err := Replay(from, to)
			if err != nil {
				t.Fatalf("Replay(%s, %s) error = %v", from, to, err)
			}
			if from.CanTransitionTo(to) && got != to {
				t.Errorf("Replay(%s, %s) = %s, want %s", from, to, got, to)
			}
			if !from.CanTransitionTo(to) && got == to {
				t.Errorf("Replay(%s, %s) reached a forbidden target", from, to)
			}
		}
	}
}

func TestReplay_InvalidStatus(t *testing.T) {
	if _, err := Replay("Ghosted", StatusRejected); err == nil {
		t.Error("Replay() with unknown source should fail")
	}
	if _, err := Replay(StatusCvSent, "Ghosted"); err == nil {
		t.Error("Replay() with unknown target should fail")
	}
}

func TestExportXStateJSON(t *testing.T) {
	data, err := ExportXStateJSON()
	if err != nil {
		t.Fatalf("ExportXStateJSON() error = %v", err)
	}

	var parsed XStateJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.ID != MachineID {
		t.Errorf("ID = %q, want %q", parsed.ID, MachineID)
	}
	if parsed.Initial != string(StatusCvSent) {
		t.Errorf("Initial = %q", parsed.Initial)
	}
	if len(parsed.States) != len(AllStatuses()) {
		t.Errorf("len(States) = %d, want %d", len(parsed.States), len(AllStatuses()))
	}
	if parsed.States[string(StatusRejected)].Type != "final" {
		t.Error("Rejected should be final")
	}
	tech := parsed.States[string(StatusTechnicalInterview)]
	if _, ok := tech.On[string(EventToPhoneScreenScheduled)]; ok {
		t.Error("TechnicalInterview must not move back to PhoneScreenScheduled")
	}
	if tech.On[string(EventToOfferReceived)].Target != string(StatusOfferReceived) {
		t.Error("TechnicalInterview should move to OfferReceived")
	}
}

// The export is read from the built machine, so it must list exactly the
// moves the transition table allows.
func TestExportXState_AgreesWithTransitionTable(t *testing.T) {
	machine, err := NewStatusMachine()
	if err != nil {
		t.Fatalf("NewStatusMachine() error = %v", err)
	}
	xstate, err := machine.ExportXState()
	if err != nil {
		t.Fatalf("ExportXState() error = %v", err)
	}

	for _, status := range AllStatuses() {
		state, ok := xstate.States[string(status)]
		if !ok {
			t.Fatalf("state %s missing from export", status)
		}
		if status.IsTerminal() != (state.Type == "final") {
			t.Errorf("%s: type = %q, terminal = %v", status, state.Type, status.IsTerminal())
		}
		allowed := status.AllowedTargets()
		if len(state.On) != len(allowed) {
			t.Errorf("%s: %d exported moves, table allows %d", status, len(state.On), len(allowed))
		}
		for _, target := range allowed {
			if got := state.On[string(EventFor(target))].Target; got != string(target) {
				t.Errorf("%s: %s targets %q, want %q", status, EventFor(target), got, target)
			}
		}
	}
}

func TestMachineTargets_AgreesWithAllowedTargets(t *testing.T) {
	for _, status := range AllStatuses() {
		got, err := MachineTargets(status)
		if err != nil {
			t.Fatalf("MachineTargets(%s) error = %v", status, err)
		}
		want := status.AllowedTargets()
		if len(got) != len(want) {
			t.Fatalf("MachineTargets(%s) = %v, want %v", status, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("MachineTargets(%s)[%d] = %s, want %s", status, i, got[i], want[i])
			}
		}
	}

	if _, err := MachineTargets("Ghosted"); err == nil {
		t.Error("MachineTargets() with unknown status should fail")
	}
}
