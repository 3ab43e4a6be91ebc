package broadcast

import (
	"testing"
	"time"
)

func receiveOne[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case value := <-ch:
		return value
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a value")
		panic("unreachable")
	}
}

func TestStreamDeliversInOrderToAllSubscribers(t *testing.T) {
	stream := NewStream[int]()
	defer stream.Close()

	first, cancelFirst := stream.Subscribe()
	defer cancelFirst()
	second, cancelSecond := stream.Subscribe()
	defer cancelSecond()

	for i := range 3 {
		stream.Publish(i)
	}

	for _, ch := range []<-chan int{first, second} {
		for want := range 3 {
			if got := receiveOne(t, ch); got != want {
				t.Fatalf("expected %d, got %d", want, got)
			}
		}
	}
}

func TestStreamCancelStopsOneSubscriber(t *testing.T) {
	stream := NewStream[string]()
	defer stream.Close()

	cancelled, cancel := stream.Subscribe()
	kept, cancelKept := stream.Subscribe()
	defer cancelKept()

	cancel()
	stream.Publish("value")

	if got := receiveOne(t, kept); got != "value" {
		t.Fatalf("expected remaining subscriber to receive the value, got %q", got)
	}
	select {
	case _, ok := <-cancelled:
		if ok {
			t.Fatalf("expected cancelled subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled subscriber channel was not closed")
	}
}

func TestStreamCloseClosesSubscribers(t *testing.T) {
	stream := NewStream[int]()
	ch, cancel := stream.Subscribe()
	defer cancel()

	stream.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber channel was not closed")
	}

	// Publishing and subscribing after close are safe no-ops.
	stream.Publish(1)
	late, _ := stream.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("expected late subscription to be closed immediately")
	}
}
