package maximise

import "net/url"

/*
Maximisation-candidate generation contract.

A source produces, for a given image URL, a lazy finite sequence of
alternative URLs ordered most- to least-preferred. The sequence is:
- pull-based: nothing is computed until Next is called
- non-restartable and single-consumer: once exhausted it stays exhausted
- terminated by an explicit end signal (ok == false), never by an error

An empty sequence means no maximisation is possible for that URL. This is
the normal case for most hosts, not an error.
*/

// Iterator yields maximisation candidates on demand.
type Iterator interface {
	// Next returns the next candidate. ok is false once the sequence is
	// exhausted; every subsequent call keeps returning false.
	Next() (candidate Candidate, ok bool)
}

// Source is the strategy contract the fetcher consumes. Implementations
// encode site-specific knowledge about higher-resolution variants; the
// fetcher never inspects URLs itself.
type Source interface {
	Maximise(imageUrl url.URL) Iterator
}

// sliceIterator walks a pre-computed candidate list.
type sliceIterator struct {
	candidates []Candidate
	next       int
}

func (s *sliceIterator) Next() (Candidate, bool) {
	if s.next >= len(s.candidates) {
		return Candidate{}, false
	}
	c := s.candidates[s.next]
	s.next++
	return c, true
}

// FromSlice returns an iterator over the given candidates in order.
func FromSlice(candidates []Candidate) Iterator {
	return &sliceIterator{candidates: candidates}
}

// Empty returns an already-exhausted iterator.
func Empty() Iterator {
	return &sliceIterator{}
}

// funcIterator defers candidate production to a pull function.
type funcIterator struct {
	pull      func() (Candidate, bool)
	exhausted bool
}

func (f *funcIterator) Next() (Candidate, bool) {
	if f.exhausted {
		return Candidate{}, false
	}
	c, ok := f.pull()
	if !ok {
		// latch: a finished sequence never restarts
		f.exhausted = true
		return Candidate{}, false
	}
	return c, true
}

// FromFunc wraps a pull function into an Iterator. The first false return
// latches the iterator as exhausted regardless of later pull behavior.
func FromFunc(pull func() (Candidate, bool)) Iterator {
	return &funcIterator{pull: pull}
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(imageUrl url.URL) Iterator

func (f SourceFunc) Maximise(imageUrl url.URL) Iterator {
	return f(imageUrl)
}

// NoMaximisation is a Source that never finds an alternative.
func NoMaximisation() Source {
	return SourceFunc(func(url.URL) Iterator {
		return Empty()
	})
}
