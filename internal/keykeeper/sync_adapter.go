package keykeeper

import "github.com/dwoura/privchain-wallet/internal/crypto"

// Sync implements Keeper on top of a Threaded keeper by running a private
// drain loop and blocking the caller until its own completion arrives —
// the mirror image of Threaded's Async methods, and the same "derive one
// shape from the other" duality InvokeSyncInternal performs in the
// original by spinning a local reactor until OnDone fires.
type Sync struct {
	t *Threaded
}

func NewSync(t *Threaded) *Sync {
	s := &Sync{t: t}
	go func() {
		for range t.Wake {
			t.Drain()
		}
	}()
	return s
}

func (s *Sync) DeriveSbbsKey(ownID string) (crypto.Scalar, Status, error) {
	done := make(chan struct{})
	var v crypto.Scalar
	var st Status
	var err error
	s.t.DeriveSbbsKeyAsync(ownID, func(rv crypto.Scalar, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) GeneratePublicKeys(coinIDs []uint64, createCoinKey bool) ([]crypto.Point, Status, error) {
	done := make(chan struct{})
	var v []crypto.Point
	var st Status
	var err error
	s.t.GeneratePublicKeysAsync(coinIDs, createCoinKey, func(rv []crypto.Point, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) GenerateOutputs(schemeHeight uint64, coinIDs []uint64) ([]Output, Status, error) {
	done := make(chan struct{})
	var v []Output
	var st Status
	var err error
	s.t.GenerateOutputsAsync(schemeHeight, coinIDs, func(rv []Output, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) SignSender(p SignSenderParams) (SignSenderResult, Status, error) {
	done := make(chan struct{})
	var v SignSenderResult
	var st Status
	var err error
	s.t.SignSenderAsync(p, func(rv SignSenderResult, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) SignReceiver(p SignReceiverParams) (SignReceiverResult, Status, error) {
	done := make(chan struct{})
	var v SignReceiverResult
	var st Status
	var err error
	s.t.SignReceiverAsync(p, func(rv SignReceiverResult, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) SignAssetKernel(p SignAssetKernelParams) (SignAssetKernelResult, Status, error) {
	done := make(chan struct{})
	var v SignAssetKernelResult
	var st Status
	var err error
	s.t.SignAssetKernelAsync(p, func(rv SignAssetKernelResult, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) AllocateNonceSlot() (uint64, Status, error) {
	done := make(chan struct{})
	var v uint64
	var st Status
	var err error
	s.t.AllocateNonceSlotAsync(func(rv uint64, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}

func (s *Sync) GenerateNonce(slot uint64) (crypto.Point, Status, error) {
	done := make(chan struct{})
	var v crypto.Point
	var st Status
	var err error
	s.t.GenerateNonceAsync(slot, func(rv crypto.Point, rst Status, rerr error) {
		v, st, err = rv, rst, rerr
		close(done)
	})
	<-done
	return v, st, err
}
