package randutil

// Scripted replays a fixed sequence of draws. Each IntN call consumes the next
// value modulo n; once the script is exhausted it wraps around. It is meant for
// tests that need to pin down exactly which cards are dealt.
type Scripted struct {
	values []int
	next   int
	calls  int
}

// NewScripted creates a source that yields values in order.
func NewScripted(values ...int) *Scripted {
	return &Scripted{values: values}
}

// IntN returns the next scripted value reduced into [0, n).
func (s *Scripted) IntN(n int) int {
	s.calls++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Calls returns how many draws have been made.
func (s *Scripted) Calls() int {
	return s.calls
}
