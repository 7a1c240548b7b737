package system

import (
	"context"
	"errors"
	"testing"
)

type fakeService struct {
	name     string
	startErr error
	events   *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	*s.events = append(*s.events, "start:"+s.name)
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&fakeService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("unexpected events: %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: want %s, got %s", i, want[i], events[i])
		}
	}
}

func TestFailedStartStopsEarlierServices(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.Register(&fakeService{name: "a", events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&fakeService{name: "b", startErr: errors.New("boom"), events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	want := []string{"start:a", "stop:a"}
	if len(events) != 2 || events[0] != want[0] || events[1] != want[1] {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.Register(&fakeService{name: "a", events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&fakeService{name: "a", events: &events}); err == nil {
		t.Fatal("expected duplicate name rejection")
	}
}
