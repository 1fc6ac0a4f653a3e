package reveal

import (
	"context"
	"testing"
	"time"
)

func TestRevealAllItems(t *testing.T) {
	s := New(time.Millisecond)
	ch := s.Start(context.Background(), 4)

	var got []int
	for i := range ch {
		got = append(got, i)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 reveals, got %v", got)
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("reveal counts out of order: %v", got)
		}
	}
	if s.Shown() != 4 {
		t.Fatalf("shown=%d after completion", s.Shown())
	}
}

func TestStartZeroIsClosedImmediately(t *testing.T) {
	s := New(time.Millisecond)
	ch := s.Start(context.Background(), 0)
	if _, open := <-ch; open {
		t.Fatal("expected closed channel for empty set")
	}
	if s.Shown() != 0 {
		t.Fatalf("shown=%d for empty set", s.Shown())
	}
}

func TestFullyShownSetNotReanimated(t *testing.T) {
	s := New(time.Millisecond)
	for range s.Start(context.Background(), 3) {
	}
	if s.Shown() != 3 {
		t.Fatalf("setup failed, shown=%d", s.Shown())
	}

	// Same-size set again: an unrelated re-render must not restart the
	// animation.
	ch := s.Start(context.Background(), 3)
	if _, open := <-ch; open {
		t.Fatal("fully shown set was re-animated")
	}
	if s.Shown() != 3 {
		t.Fatalf("shown reset by guarded restart: %d", s.Shown())
	}
}

func TestNewSetRestartsFromZero(t *testing.T) {
	s := New(time.Millisecond)
	for range s.Start(context.Background(), 2) {
	}

	ch := s.Start(context.Background(), 5)
	first, open := <-ch
	if !open || first != 1 {
		t.Fatalf("new set did not restart from zero: %d open=%v", first, open)
	}
	for range ch {
	}
	if s.Shown() != 5 {
		t.Fatalf("shown=%d after second run", s.Shown())
	}
}

func TestStopCancelsRun(t *testing.T) {
	s := New(10 * time.Millisecond)
	ch := s.Start(context.Background(), 100)

	<-ch
	s.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-ch:
			if !open {
				if got := s.Shown(); got >= 100 {
					t.Fatalf("run completed despite Stop, shown=%d", got)
				}
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after Stop")
		}
	}
}

func TestPlaceholders(t *testing.T) {
	cases := []struct{ shown, want int }{
		{0, 3},
		{1, 2},
		{3, 0},
		{5, 0},
	}
	for _, tc := range cases {
		if got := Placeholders(tc.shown); got != tc.want {
			t.Errorf("Placeholders(%d)=%d want %d", tc.shown, got, tc.want)
		}
	}
}
