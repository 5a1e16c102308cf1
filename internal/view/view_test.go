package view

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"ground", Ground, false},
		{"SYSTEM", System, false},
		{" galactic ", Galactic, false},
		{"galaxy", Galactic, false},
		{"orbit", System, true},
		{"", System, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeNext(t *testing.T) {
	if Ground.Next() != System || System.Next() != Galactic || Galactic.Next() != Ground {
		t.Errorf("Next cycle = %v %v %v", Ground.Next(), System.Next(), Galactic.Next())
	}
	if Mode(9).Next() != System {
		t.Errorf("invalid Next = %v, want system", Mode(9).Next())
	}
}

func TestModeJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		M Mode `json:"m"`
	}{Galactic})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"m":"galactic"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out struct {
		M Mode `json:"m"`
	}
	if err := json.Unmarshal([]byte(`{"m":"ground"}`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.M != Ground {
		t.Errorf("Unmarshal = %v, want ground", out.M)
	}
	if err := json.Unmarshal([]byte(`{"m":"nope"}`), &out); err == nil {
		t.Error("Unmarshal of unknown mode should fail")
	}
}

func TestMachineSwitch(t *testing.T) {
	m := NewMachine(System)

	if _, ok := m.Previous(); ok {
		t.Fatal("Previous() should be unset before any switch")
	}

	change, ok := m.Switch(Ground)
	if !ok {
		t.Fatal("Switch(Ground) rejected")
	}
	if change.From != System || change.To != Ground {
		t.Errorf("change = %+v, want system -> ground", change)
	}
	if m.Current() != Ground {
		t.Errorf("Current() = %v, want ground", m.Current())
	}
	if prev, ok := m.Previous(); !ok || prev != System {
		t.Errorf("Previous() = %v, %v, want system, true", prev, ok)
	}
}

func TestMachineSameModeIsNoop(t *testing.T) {
	m := NewMachine(System)
	m.Switch(Galactic)

	calls := 0
	m.Subscribe(func(Change) { calls++ })

	if _, ok := m.Switch(Galactic); ok {
		t.Error("same-mode Switch should be rejected")
	}
	if prev, _ := m.Previous(); prev != System {
		t.Errorf("Previous() = %v after no-op, want system", prev)
	}
	if calls != 0 {
		t.Errorf("subscriber called %d times for a no-op", calls)
	}
}

func TestMachineInvalid(t *testing.T) {
	m := NewMachine(Mode(-1))
	if m.Current() != System {
		t.Errorf("invalid initial mode gave %v, want system", m.Current())
	}
	if _, ok := m.Switch(Mode(7)); ok {
		t.Error("Switch to invalid mode should be rejected")
	}
}

func TestMachineSubscribe(t *testing.T) {
	m := NewMachine(Ground)

	var got []Change
	unsubscribe := m.Subscribe(func(c Change) {
		// reading back must not deadlock
		if m.Current() != c.To {
			t.Errorf("Current() = %v inside callback, want %v", m.Current(), c.To)
		}
		got = append(got, c)
	})

	m.Switch(System)
	m.Switch(Galactic)
	unsubscribe()
	m.Switch(Ground)

	want := []Change{{Ground, System}, {System, Galactic}}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
