package bus

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func testHub(t *testing.T, buffer int) *Hub {
	t.Helper()
	h := NewHub(buffer, zap.NewNop())
	t.Cleanup(h.Close)
	return h
}

func TestBroadcastFanOut(t *testing.T) {
	h := testHub(t, 4)

	sessions := make([]*Session, 3)
	for i := range sessions {
		sessions[i] = h.Register()
	}
	if got := h.Count(); got != 3 {
		t.Fatalf("count=%d, want 3", got)
	}

	h.Broadcast("new-alert", "payload")

	for i, s := range sessions {
		env := <-s.Events()
		if env.Event != "new-alert" || env.Data != "payload" {
			t.Fatalf("session %d got %+v", i, env)
		}
		select {
		case extra := <-s.Events():
			t.Fatalf("session %d got extra event %+v", i, extra)
		default:
		}
	}
}

func TestUnregisteredSessionReceivesNothing(t *testing.T) {
	h := testHub(t, 4)

	stay := h.Register()
	leave := h.Register()
	h.Unregister(leave)

	h.Broadcast("new-recording", "/uploads/a.webm")

	if env, ok := <-leave.Events(); ok {
		t.Fatalf("departed session received %+v", env)
	}
	if env := <-stay.Events(); env.Data != "/uploads/a.webm" {
		t.Fatalf("remaining session got %+v", env)
	}
	if got := h.Count(); got != 1 {
		t.Fatalf("count=%d, want 1", got)
	}
}

func TestUnregisterTwice(t *testing.T) {
	h := testHub(t, 1)
	s := h.Register()
	h.Unregister(s)
	h.Unregister(s) // must not panic on the closed channel
	h.Unregister(nil)
}

func TestBroadcastPreservesPublishOrder(t *testing.T) {
	h := testHub(t, 16)
	s := h.Register()

	for i := 0; i < 10; i++ {
		h.Broadcast("new-alert", i)
	}

	for i := 0; i < 10; i++ {
		env := <-s.Events()
		if env.Data != i {
			t.Fatalf("event %d arrived as %v", i, env.Data)
		}
	}
}

func TestSlowSessionDropsWithoutBlocking(t *testing.T) {
	h := testHub(t, 2)
	slow := h.Register()
	fast := h.Register()

	// Overfill the slow session's buffer; Broadcast must return promptly and
	// the fast session must still see everything.
	for i := 0; i < 5; i++ {
		h.Broadcast("new-alert", fmt.Sprintf("e%d", i))
	}

	for i := 0; i < 5; i++ {
		env := <-fast.Events()
		if env.Data != fmt.Sprintf("e%d", i) {
			t.Fatalf("fast session got %v at %d", env.Data, i)
		}
	}

	delivered := 0
	for {
		select {
		case <-slow.Events():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != 2 {
		t.Fatalf("slow session got %d events, want 2 (buffer size)", delivered)
	}
}

func TestClosedHubRejectsRegistration(t *testing.T) {
	h := NewHub(1, zap.NewNop())
	s := h.Register()
	h.Close()

	if got := h.Register(); got != nil {
		t.Fatalf("register after close returned session %v", got.ID)
	}
	if _, ok := <-s.Events(); ok {
		t.Fatal("session channel still open after hub close")
	}
	h.Close() // idempotent
}
