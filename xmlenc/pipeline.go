// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

// Pipeline is an ordered, non-empty-once-built chain of owned Transform
// handles. spec.md §9 recommends this over the source's intrusive
// doubly-linked chain: "prefer a dedicated Pipeline value holding an
// ordered sequence of owned transform handles (index-addressed)... which
// is equivalently expressed as moving elements between two sequences" for
// the CipherReference handoff. Only the owner (an encrypt/decrypt driver)
// mutates a Pipeline.
type Pipeline struct {
	chain []Transform
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Len reports the number of transforms currently chained.
func (p *Pipeline) Len() int { return len(p.chain) }

// Transforms returns the chain in head-to-tail order. Callers must not
// retain the slice across further pipeline mutation.
func (p *Pipeline) Transforms() []Transform { return p.chain }

// Append links t after the current tail (or makes it the sole element).
func (p *Pipeline) Append(t Transform) error {
	if t.Capabilities()&CapBinary == 0 {
		return newError(KindInvalidTransform, "", t.ID())
	}
	p.chain = append(p.chain, t)
	return nil
}

// Prepend links t before the current head (or makes it the sole element).
func (p *Pipeline) Prepend(t Transform) error {
	if t.Capabilities()&CapBinary == 0 {
		return newError(KindInvalidTransform, "", t.ID())
	}
	p.chain = append([]Transform{t}, p.chain...)
	return nil
}

// Write pushes bytes into the head and cascades whatever each stage
// produces into its successor, ending at the tail.
func (p *Pipeline) Write(b []byte) error {
	if len(p.chain) == 0 {
		return nil
	}
	return p.feed(0, b)
}

// Flush pushes the end-of-stream marker through the head and, stage by
// stage, into every successor — flush is a totally ordered barrier (spec.md
// §5): no stage is flushed until everything already produced by the
// preceding stage has been cascaded forward.
func (p *Pipeline) Flush() error {
	if len(p.chain) == 0 {
		return nil
	}
	return p.flushFrom(0)
}

// Read pulls from the tail. A 0-length, nil-error result means the tail has
// nothing buffered right now; after Flush has fully propagated, it means
// the pipeline is drained.
func (p *Pipeline) Read(buf []byte) (int, error) {
	if len(p.chain) == 0 {
		return 0, nil
	}
	n, err := p.chain[len(p.chain)-1].Read(buf)
	if err != nil {
		return n, wrapTransformErr(err)
	}
	return n, nil
}

// ReadAll drains the tail to completion. It is the common case for
// memory-sink-terminated pipelines, where the caller wants the whole
// ciphertext/plaintext in one buffer rather than chunk by chunk.
func (p *Pipeline) ReadAll() ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := p.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}

// Pull drives a read-driven pipeline to completion: it pulls from the head
// (which must be a source transform, not something written to), cascades
// each chunk forward exactly as Write would, and — per spec.md §9's Open
// Questions ("xmlSecEncryptUri issues no flush; relies on the source being
// drained to EOF... make that contract explicit") — once the head reports
// EOF (a 0-length read), explicitly flushes every downstream stage before
// returning. This is the encrypt-from-URI entry point for a pipeline whose
// head is a source rather than a writer.
func (p *Pipeline) Pull(chunk int) error {
	if len(p.chain) == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = 1024
	}
	buf := make([]byte, chunk)
	for {
		n, err := p.chain[0].Read(buf)
		if err != nil {
			return wrapTransformErr(err)
		}
		if n == 0 {
			break
		}
		if len(p.chain) > 1 {
			if err := p.feed(1, buf[:n]); err != nil {
				return err
			}
		}
	}
	if len(p.chain) > 1 {
		return p.flushFrom(1)
	}
	return nil
}

func (p *Pipeline) feed(idx int, b []byte) error {
	if _, err := p.chain[idx].Write(b); err != nil {
		return wrapTransformErr(err)
	}
	return p.drain(idx)
}

func (p *Pipeline) drain(idx int) error {
	if idx == len(p.chain)-1 {
		return nil
	}
	buf := make([]byte, 4096)
	for {
		n, err := p.chain[idx].Read(buf)
		if err != nil {
			return wrapTransformErr(err)
		}
		if n == 0 {
			return nil
		}
		if err := p.feed(idx+1, buf[:n]); err != nil {
			return err
		}
	}
}

func (p *Pipeline) flushFrom(idx int) error {
	if err := p.chain[idx].Flush(); err != nil {
		return wrapTransformErr(err)
	}
	if err := p.drain(idx); err != nil {
		return err
	}
	if idx+1 < len(p.chain) {
		return p.flushFrom(idx + 1)
	}
	return nil
}

// wrapTransformErr reports an error surfacing from a Transform call as
// KindTransformFailure (spec.md §7), unless it is already an engine Error
// (e.g. a nested pipeline operation already reported one).
func wrapTransformErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return newError(KindTransformFailure, "", err.Error())
}

// Transfer removes every transform from p, front to back, handing each to
// adopt, and leaves p empty. This is spec.md §4.4's CipherReference handoff: the cipher
// pipeline built while reading the EncryptedData grammar is transferred,
// one transform at a time, into a TransformState obtained for the
// CipherReference URI.
func (p *Pipeline) Transfer(adopt func(Transform) error) error {
	for len(p.chain) > 0 {
		t := p.chain[0]
		p.chain = p.chain[1:]
		if err := adopt(t); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down every transform in the chain. It tolerates a partially
// built pipeline and is safe to call on an already-closed pipeline.
func (p *Pipeline) Close() error {
	var first error
	for _, t := range p.chain {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.chain = nil
	return first
}
