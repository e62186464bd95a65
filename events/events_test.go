package events_test

import (
	"testing"
	"time"

	"github.com/hok-pm/hok/events"
)

func TestChanSinkNonBlockingOnFullChannel(t *testing.T) {
	sink := make(events.ChanSink, 1)
	sink.Send(events.PackageSyncDone{})
	// second send must not block even though the channel is now full and
	// nothing is draining it.
	done := make(chan struct{})
	go func() {
		sink.Send(events.PackageSyncDone{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full channel")
	}
}

func TestDiscardSinkIgnoresEvents(t *testing.T) {
	var d events.Discard
	d.Send(events.PackageResolveStart{})
}
