// Package cmn provides common low-level types and utilities for all hok
// packages.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"sync"
	"time"

	"github.com/hok-pm/hok/internal/xatomic"
)

type (
	// TimeoutGroup is similar to sync.WaitGroup with the difference on Wait
	// where we only allow timing out.
	//
	// WARNING: It is not safe to wait on completion in multiple goroutines.
	//
	// WARNING: It is not recommended to reuse a TimeoutGroup after a timed-out
	// WaitTimeout - a late Done from the previous round can post onto the
	// next round's fin channel.
	TimeoutGroup struct {
		jobsLeft  xatomic.Int32
		postedFin xatomic.Int32
		fin       chan struct{}
	}

	// StopCh is a specialized channel for stopping things, closed at most once.
	StopCh struct {
		once sync.Once
		ch   chan struct{}
	}

	// DynSemaphore implements a semaphore whose size can change at runtime.
	DynSemaphore struct {
		size int
		cur  int
		c    *sync.Cond
		mu   sync.Mutex
	}

	// LimitedWaitGroup combines a standard wait group with a semaphore to cap
	// the number of goroutines running concurrently - used by the download
	// pipeline to bound the number of files in flight.
	LimitedWaitGroup struct {
		wg   sync.WaitGroup
		sema *DynSemaphore
	}
)

func NewTimeoutGroup() *TimeoutGroup {
	return &TimeoutGroup{fin: make(chan struct{}, 1)}
}

func (tg *TimeoutGroup) Add(delta int) { tg.jobsLeft.Add(int32(delta)) }

// Done decrements the number of jobs left. Panics if it goes below zero.
func (tg *TimeoutGroup) Done() {
	left := tg.jobsLeft.Dec()
	if left == 0 {
		if posted := tg.postedFin.Swap(1); posted == 0 {
			tg.fin <- struct{}{}
		}
	} else if left < 0 {
		panic("cmn: TimeoutGroup.Done called more often than Add")
	}
}

// WaitTimeout waits until all jobs finish or the timeout elapses, whichever
// comes first; it reports whether the call timed out.
//
// NOTE: WaitTimeout may only be invoked after all Adds.
func (tg *TimeoutGroup) WaitTimeout(timeout time.Duration) (timedOut bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-tg.fin:
		tg.postedFin.Store(0)
		return false
	case <-t.C:
		return true
	}
}

func NewStopCh() *StopCh { return &StopCh{ch: make(chan struct{})} }

func (s *StopCh) Listen() <-chan struct{} { return s.ch }
func (s *StopCh) Close()                  { s.once.Do(func() { close(s.ch) }) }

func NewDynSemaphore(n int) *DynSemaphore {
	ds := &DynSemaphore{size: n}
	ds.c = sync.NewCond(&ds.mu)
	return ds
}

func (ds *DynSemaphore) Size() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.size
}

// SetSize changes the semaphore's capacity at runtime and wakes any waiters
// that might now fit.
func (ds *DynSemaphore) SetSize(n int) {
	ds.mu.Lock()
	ds.size = n
	ds.c.Broadcast()
	ds.mu.Unlock()
}

func (ds *DynSemaphore) Acquire() {
	ds.mu.Lock()
	for ds.cur >= ds.size {
		ds.c.Wait()
	}
	ds.cur++
	ds.mu.Unlock()
}

func (ds *DynSemaphore) Release() {
	ds.mu.Lock()
	ds.cur--
	ds.c.Signal()
	ds.mu.Unlock()
}

func NewLimitedWaitGroup(n int) *LimitedWaitGroup {
	return &LimitedWaitGroup{sema: NewDynSemaphore(n)}
}

func (w *LimitedWaitGroup) Add() {
	w.sema.Acquire()
	w.wg.Add(1)
}

func (w *LimitedWaitGroup) Done() {
	w.wg.Done()
	w.sema.Release()
}

func (w *LimitedWaitGroup) Wait() { w.wg.Wait() }

// RWBorrow implements the single-writer/many-readers discipline spec.md
// §4.3 and §9 call for: a writer must fail fast rather than block behind
// live readers, because blocking here could deadlock a caller driving the
// event loop from the same goroutine that holds a read view.
type RWBorrow struct {
	mu      sync.Mutex
	readers int
}

// BorrowRead registers one read view; the returned func releases it.
func (b *RWBorrow) BorrowRead() func() {
	b.mu.Lock()
	b.readers++
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		b.readers--
		b.mu.Unlock()
	}
}

// TryBorrowWrite reports ok=false immediately if any read view is alive.
func (b *RWBorrow) TryBorrowWrite() (ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readers == 0
}
