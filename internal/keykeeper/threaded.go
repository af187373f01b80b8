package keykeeper

import (
	"sync"

	"github.com/dwoura/privchain-wallet/internal/crypto"
)

// Handler receives one async completion. It always runs on the goroutine
// that calls Drain, never on the worker goroutine — this is the Go
// translation of ThreadedPrivateKeyKeeper::OnNewOut posting back to the
// reactor thread.
type Handler func()

type task struct {
	exec    func()
	handler Handler
}

// Threaded wraps any synchronous Keeper with a single worker goroutine plus
// a coalescing wake signal, mirroring ThreadedPrivateKeyKeeper one-for-one:
// PushIn/Thread is the mutex+condvar inbound queue, queOut/Wake is the
// mutex-guarded outbound queue plus io::AsyncEvent. The worker never
// touches driver state directly; it only runs task.exec and enqueues the
// handler for the caller to run later via Drain.
type Threaded struct {
	inner Keeper

	muIn  sync.Mutex
	cond  *sync.Cond
	queIn []*task
	run   bool

	muOut  sync.Mutex
	queOut []*task

	// Wake is posted to (non-blocking) whenever queOut transitions from
	// empty to non-empty, coalescing any number of completions into one
	// wake-up, exactly like io::AsyncEvent::post().
	Wake chan struct{}
}

func NewThreaded(inner Keeper) *Threaded {
	t := &Threaded{
		inner: inner,
		run:   true,
		Wake:  make(chan struct{}, 1),
	}
	t.cond = sync.NewCond(&t.muIn)
	go t.loop()
	return t
}

// Close stops the worker goroutine. Safe to call once.
func (t *Threaded) Close() {
	t.muIn.Lock()
	t.run = false
	t.cond.Signal()
	t.muIn.Unlock()
}

func (t *Threaded) pushIn(tk *task) {
	t.muIn.Lock()
	t.queIn = append(t.queIn, tk)
	t.cond.Signal()
	t.muIn.Unlock()
}

func (t *Threaded) loop() {
	for {
		t.muIn.Lock()
		for len(t.queIn) == 0 && t.run {
			t.cond.Wait()
		}
		if !t.run && len(t.queIn) == 0 {
			t.muIn.Unlock()
			return
		}
		tk := t.queIn[0]
		t.queIn = t.queIn[1:]
		t.muIn.Unlock()

		tk.exec()

		t.muOut.Lock()
		wasEmpty := len(t.queOut) == 0
		t.queOut = append(t.queOut, tk)
		t.muOut.Unlock()

		if wasEmpty {
			select {
			case t.Wake <- struct{}{}:
			default:
			}
		}
	}
}

// Drain runs every pending completion handler on the calling goroutine. The
// reactor/event loop calls this after reading from Wake.
func (t *Threaded) Drain() {
	t.muOut.Lock()
	pending := t.queOut
	t.queOut = nil
	t.muOut.Unlock()

	for _, tk := range pending {
		tk.handler()
	}
}

// Each Async method below posts a task whose exec closure runs the matching
// synchronous Keeper method and stashes its result, then calls handler with
// no further arguments — the caller captured its own result variables in
// the closure, the same way InvokeAsyncInternal's MyTask captures &m.

func (t *Threaded) DeriveSbbsKeyAsync(ownID string, handler func(crypto.Scalar, Status, error)) {
	var v crypto.Scalar
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.DeriveSbbsKey(ownID) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) GeneratePublicKeysAsync(coinIDs []uint64, createCoinKey bool, handler func([]crypto.Point, Status, error)) {
	var v []crypto.Point
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.GeneratePublicKeys(coinIDs, createCoinKey) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) GenerateOutputsAsync(schemeHeight uint64, coinIDs []uint64, handler func([]Output, Status, error)) {
	var v []Output
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.GenerateOutputs(schemeHeight, coinIDs) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) SignSenderAsync(p SignSenderParams, handler func(SignSenderResult, Status, error)) {
	var v SignSenderResult
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.SignSender(p) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) SignReceiverAsync(p SignReceiverParams, handler func(SignReceiverResult, Status, error)) {
	var v SignReceiverResult
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.SignReceiver(p) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) SignAssetKernelAsync(p SignAssetKernelParams, handler func(SignAssetKernelResult, Status, error)) {
	var v SignAssetKernelResult
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.SignAssetKernel(p) },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) AllocateNonceSlotAsync(handler func(uint64, Status, error)) {
	var v uint64
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.AllocateNonceSlot() },
		handler: func() { handler(v, st, err) },
	})
}

func (t *Threaded) GenerateNonceAsync(slot uint64, handler func(crypto.Point, Status, error)) {
	var v crypto.Point
	var st Status
	var err error
	t.pushIn(&task{
		exec:    func() { v, st, err = t.inner.GenerateNonce(slot) },
		handler: func() { handler(v, st, err) },
	})
}
