package facts

import (
	"testing"

	"github.com/nathoo/factcore/types"
)

func TestListen_BothStreams(t *testing.T) {
	s, _ := testStore()
	r := &recorder{}
	l := s.Listen(questStep, r.changed, r.defined)

	s.ChangeValue(questStep, 2, types.Set)
	s.ChangeValue(questStep, 3, types.Set)

	if r.String() != "defined(2) changed(2) changed(3)" {
		t.Errorf("unexpected notifications: %s", r)
	}
	if !l.Active() || l.Tag() != questStep {
		t.Error("expected active listener on Quest.Step")
	}
}

func TestListen_Cancel(t *testing.T) {
	s, _ := testStore()
	r := &recorder{}
	l := s.Listen(questStep, r.changed, r.defined)
	l.Cancel()
	l.Cancel()

	s.ChangeValue(questStep, 1, types.Set)
	if len(r.calls) != 0 {
		t.Errorf("expected no notifications after Cancel, got %s", r)
	}
	if l.Active() {
		t.Error("expected inactive listener")
	}
	if v, d := s.SubscriberCount(questStep); v != 0 || d != 0 {
		t.Errorf("expected subscriptions removed, got %d/%d", v, d)
	}
}

func TestListen_OnlyValueChanged(t *testing.T) {
	s, _ := testStore()
	r := &recorder{}
	s.Listen(questStep, r.changed, nil)

	s.ChangeValue(questStep, 1, types.Set)
	if r.String() != "changed(1)" {
		t.Errorf("expected changed(1), got %s", r)
	}
}

func TestListen_UnboundCancelsItself(t *testing.T) {
	s, _ := testStore()
	l := s.Listen(questStep, nil, nil)

	s.ChangeValue(questStep, 1, types.Set)
	if l.Active() {
		t.Error("listener without callbacks should cancel on first event")
	}
	if v, d := s.SubscriberCount(questStep); v != 0 || d != 0 {
		t.Errorf("expected subscriptions removed, got %d/%d", v, d)
	}
}

func TestListen_CancelFromCallback(t *testing.T) {
	s, _ := testStore()
	calls := 0
	var l *Listener
	l = s.Listen(questStep, func(int32) {
		calls++
		l.Cancel()
	}, nil)

	s.ChangeValue(questStep, 1, types.Set)
	s.ChangeValue(questStep, 2, types.Set)
	if calls != 1 {
		t.Errorf("expected one call before cancel, got %d", calls)
	}
}

func TestParseChangeType(t *testing.T) {
	tests := []struct {
		in   string
		want types.ChangeType
		ok   bool
	}{
		{"set", types.Set, true},
		{"Set", types.Set, true},
		{"ADD", types.Add, true},
		{"inc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseChangeType(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseChangeType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
