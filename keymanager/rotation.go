// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package keymanager

import (
	"crypto/rand"
	"fmt"

	"github.com/claudiu/gocron"
)

// Rotatable is satisfied by sqlstore.Store; it is declared here, rather than
// imported from sqlstore, so this file only depends on the narrow operation
// rotation actually needs.
type Rotatable interface {
	Rotate(id string, bytes []byte) error
}

// Scheduler periodically replaces a symmetric content-encryption key's bytes
// with fresh random material, the way long-lived EncryptedData references
// (CipherReference URIs pointing at externally stored ciphertext, or
// KeyInfo/RetrievalMethod-resolved keys) are expected to be re-keyed without
// redeploying the engine. It is purely an operational convenience around
// Rotatable.Rotate — the engine itself never schedules anything (spec.md
// §5: synchronous, caller-driven).
type Scheduler struct {
	store    Rotatable
	keyBytes int
	sched    *gocron.Scheduler
}

// NewScheduler returns a Scheduler that rotates keys of keyBytes length
// against store.
func NewScheduler(store Rotatable, keyBytes int) *Scheduler {
	return &Scheduler{store: store, keyBytes: keyBytes, sched: gocron.NewScheduler()}
}

// EveryDays schedules id to be rotated every n days. onError, if non-nil, is
// called with any rotation failure instead of it being silently dropped by
// the underlying scheduler's fire-and-forget task.
func (s *Scheduler) EveryDays(n uint64, id string, onError func(id string, err error)) {
	s.sched.Every(n).Days().Do(func() {
		if err := s.rotateOnce(id); err != nil && onError != nil {
			onError(id, err)
		}
	})
}

func (s *Scheduler) rotateOnce(id string) error {
	fresh := make([]byte, s.keyBytes)
	if _, err := rand.Read(fresh); err != nil {
		return fmt.Errorf("keymanager: generating rotation key for %q: %w", id, err)
	}
	return s.store.Rotate(id, fresh)
}

// Start begins running scheduled rotations in the background, returning the
// stop channel gocron.Start() hands back (send to it to halt the loop).
func (s *Scheduler) Start() chan bool {
	return s.sched.Start()
}
