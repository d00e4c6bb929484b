package aggregation

import (
	"errors"

	"credential-ledger/pkg/timeutil"
	"credential-ledger/src/encops"
)

// ErrMalformedBatch is returned when the oracle returns a cleartext batch
// whose length is not a multiple of three.
var ErrMalformedBatch = errors.New("aggregation: cleartext batch is not a sequence of triples")

// Triple is one decrypted credential: its numeric type code, its attribute
// value and its expiry as a unix timestamp.
type Triple struct {
	CredentialType uint64
	Attributes     uint64
	Expiry         uint64
}

// ParseTriples groups a flat cleartext batch into credential triples,
// preserving batch order.
func ParseTriples(cleartexts []uint64) ([]Triple, error) {
	if len(cleartexts)%3 != 0 {
		return nil, ErrMalformedBatch
	}

	triples := make([]Triple, 0, len(cleartexts)/3)
	for i := 0; i < len(cleartexts); i += 3 {
		triples = append(triples, Triple{
			CredentialType: cleartexts[i],
			Attributes:     cleartexts[i+1],
			Expiry:         cleartexts[i+2],
		})
	}
	return triples, nil
}

// Engine folds credential triples into a single encrypted composite score.
type Engine struct {
	scheme encops.Scheme
}

func NewEngine(scheme encops.Scheme) *Engine {
	return &Engine{scheme: scheme}
}

// Aggregate computes the weighted average over the non-expired triples:
// sum(type * attributes) / count, in wrap-around uint64 arithmetic with
// truncating division. A credential counts as valid only when its expiry is
// strictly in the future.
//
// When no triple is valid, it returns the zero Operand and a zero count with
// no error; the caller decides what a score over nothing means.
func (e *Engine) Aggregate(triples []Triple, now timeutil.TimeUTC) (encops.Operand, int, error) {
	acc, err := e.scheme.Encrypt(0)
	if err != nil {
		return encops.Operand{}, 0, err
	}

	valid := 0
	for _, t := range triples {
		// An expiry outside the int64 unix range is garbage and counts as
		// expired.
		if !timeutil.FromUnix(int64(t.Expiry)).After(now) {
			continue
		}

		encType, err := e.scheme.Encrypt(t.CredentialType)
		if err != nil {
			return encops.Operand{}, 0, err
		}
		encAttr, err := e.scheme.Encrypt(t.Attributes)
		if err != nil {
			return encops.Operand{}, 0, err
		}

		weighted, err := e.scheme.Mul(encType, encAttr)
		if err != nil {
			return encops.Operand{}, 0, err
		}

		acc, err = e.scheme.Add(acc, weighted)
		if err != nil {
			return encops.Operand{}, 0, err
		}
		valid++
	}

	if valid == 0 {
		return encops.Operand{}, 0, nil
	}

	score, err := e.scheme.DivPlain(acc, uint64(valid))
	if err != nil {
		return encops.Operand{}, 0, err
	}
	return score, valid, nil
}
