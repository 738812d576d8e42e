package source

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacerSpacesRequests(t *testing.T) {
	p := NewPacer(50) // 20ms interval

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	elapsed := time.Since(start)

	// first slot is immediate, the next two are one interval apart each
	if elapsed < 40*time.Millisecond {
		t.Fatalf("three waits finished in %v, want >= 40ms", elapsed)
	}
}

func TestPacerWaitCancellable(t *testing.T) {
	p := NewPacer(1) // 1s interval

	if err := p.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := p.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("cancelled wait still slept out its slot")
	}
}
