package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeOp struct {
	done bool
	uris []string
}

func TestAwaitPollsUntilDone(t *testing.T) {
	polls := 0
	final, err := Await(context.Background(), fakeOp{},
		func(_ context.Context, h fakeOp) (fakeOp, error) {
			polls++
			if polls < 3 {
				return fakeOp{}, nil
			}
			return fakeOp{done: true, uris: []string{"files/video.mp4"}}, nil
		},
		func(h fakeOp) bool { return h.done },
		time.Millisecond,
	)
	if err != nil {
		t.Fatalf("Await error: %v", err)
	}
	if polls != 3 {
		t.Fatalf("polls = %d, want 3", polls)
	}
	if len(final.uris) != 1 {
		t.Fatalf("final handle = %+v", final)
	}
}

func TestAwaitCompletedHandleSkipsFetch(t *testing.T) {
	_, err := Await(context.Background(), fakeOp{done: true},
		func(_ context.Context, h fakeOp) (fakeOp, error) {
			t.Fatal("fetch invoked for completed handle")
			return h, nil
		},
		func(h fakeOp) bool { return h.done },
		time.Millisecond,
	)
	if err != nil {
		t.Fatalf("Await error: %v", err)
	}
}

func TestAwaitTransportFailureIsTerminal(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Await(context.Background(), fakeOp{},
		func(_ context.Context, h fakeOp) (fakeOp, error) { return h, boom },
		func(h fakeOp) bool { return h.done },
		time.Millisecond,
	)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestAwaitContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Await(ctx, fakeOp{},
		func(_ context.Context, h fakeOp) (fakeOp, error) { return h, nil },
		func(h fakeOp) bool { return false },
		time.Hour,
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
