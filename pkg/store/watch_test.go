package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/anispin/pkg/media"
)

func TestPersistenceWatchEmitsLibraryChanges(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	lib := &Library{Provider: media.ProviderAniList, User: "yui", Records: []media.Record{{ID: 1}}}
	if err := p.Save(lib); err != nil {
		t.Fatalf("save library: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventLibrariesInvalidated {
				return
			}
			if evt.Type == EventLibraryChanged {
				if evt.Ref != lib.Ref() {
					t.Fatalf("expected ref %v, got %v", lib.Ref(), evt.Ref)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for library change event")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }

	ref := Ref{Provider: media.ProviderAniList, User: "a"}
	th.Enqueue(Event{Type: EventLibraryChanged, Ref: ref}, send)
	th.Enqueue(Event{Type: EventLibraryChanged, Ref: ref}, send)

	select {
	case ev := <-got:
		if ev.Ref != ref {
			t.Fatalf("unexpected ref %v", ev.Ref)
		}
	case <-time.After(time.Second):
		t.Fatal("throttle never flushed")
	}
	select {
	case ev := <-got:
		t.Fatalf("expected a single coalesced event, got extra %v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}
