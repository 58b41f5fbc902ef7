package inbox

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/log"
)

type fakePresence struct {
	beats    atomic.Int64
	offlines atomic.Int64

	firstBeat chan struct{}
}

func newFakePresence() *fakePresence {
	return &fakePresence{firstBeat: make(chan struct{}, 1)}
}

func (p *fakePresence) Heartbeat(_ context.Context) error {
	if p.beats.Add(1) == 1 {
		close(p.firstBeat)
	}
	return nil
}

func (p *fakePresence) Offline(_ context.Context) error {
	p.offlines.Add(1)
	return nil
}

func TestHeartbeatRunner_BeatsImmediately(t *testing.T) {
	pw := newFakePresence()
	r := StartHeartbeat(context.Background(), pw, time.Hour, log.NewNopLogger())
	defer r.Stop()

	select {
	case <-pw.firstBeat:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first heartbeat")
	}
}

func TestHeartbeatRunner_StopMarksOfflineOnce(t *testing.T) {
	pw := newFakePresence()
	r := StartHeartbeat(context.Background(), pw, time.Hour, log.NewNopLogger())

	<-pw.firstBeat

	r.Stop()
	r.Stop()

	if got := pw.offlines.Load(); got != 1 {
		t.Fatalf("want exactly one offline write; got %d", got)
	}
}

func TestHeartbeatRunner_ContextCancelSkipsOffline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pw := newFakePresence()
	r := StartHeartbeat(ctx, pw, time.Hour, log.NewNopLogger())

	<-pw.firstBeat
	cancel()
	<-r.done

	if got := pw.offlines.Load(); got != 0 {
		t.Fatalf("want no offline write on context cancel; got %d", got)
	}
}
