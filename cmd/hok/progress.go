package main

import (
	"fmt"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/hok-pm/hok/events"
)

const progressBarWidth = 40

// progressSink renders the event stream as mpb bars: one bar per
// in-flight download, keyed by URL, plus plain stdout lines for commit
// start, a failed hash check, and bucket update start and failure; other
// events are not rendered. Modeled on the teacher's dsortPB, which drives one
// mpb.Progress instance from a background poll loop instead of a channel -
// here the channel itself is the poll loop.
type progressSink struct {
	ch    events.ChanSink
	bars  map[string]*mpb.Bar
	dlNow map[string]int64
	p     *mpb.Progress
	done  chan struct{}
}

func newProgressSink() *progressSink {
	s := &progressSink{
		ch:    make(events.ChanSink, 64),
		bars:  make(map[string]*mpb.Bar),
		dlNow: make(map[string]int64),
		p:     mpb.New(mpb.WithWidth(progressBarWidth)),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *progressSink) Send(e events.Event) { s.ch.Send(e) }

func (s *progressSink) run() {
	defer close(s.done)
	for e := range s.ch {
		switch ev := e.(type) {
		case events.PackageDownloadStart:
			text := ev.Filename + " "
			s.bars[ev.URL] = s.p.AddBar(0,
				mpb.PrependDecorators(decor.Name(text, decor.WC{W: len(text) + 2, C: decor.DSyncWidthR})),
				mpb.AppendDecorators(decor.Percentage(decor.WCSyncWidth)),
			)
		case events.PackageDownloadProgress:
			if bar, ok := s.bars[ev.URL]; ok {
				bar.SetTotal(ev.DlTotal, false)
				bar.IncrInt64(ev.DlNow - s.dlNow[ev.URL])
				s.dlNow[ev.URL] = ev.DlNow
			}
		case events.PackageDownloadDone:
			if bar, ok := s.bars[ev.URL]; ok && !bar.Completed() {
				bar.SetTotal(s.dlNow[ev.URL], true)
			}
		case events.PackageCommitStart:
			fmt.Printf("installing %s...\n", ev.Ident)
		case events.PackageIntegrityCheckDone:
			if !ev.OK {
				fmt.Printf("%s: hash check failed\n", ev.Ident)
			}
		case events.BucketUpdateStarted:
			fmt.Printf("updating %s...\n", ev.Name)
		case events.BucketUpdateFailed:
			fmt.Printf("%s: update failed: %v\n", ev.Name, ev.Err)
		}
	}
}

// Close drains any remaining bars and waits for the render loop to exit.
func (s *progressSink) Close() {
	close(s.ch)
	s.p.Wait()
	<-s.done
}
