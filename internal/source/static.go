package source

import "iter"

// StaticLines is an in-memory LineSource; the header is assumed to be
// already stripped.
type StaticLines []string

// Lines yields each line in order.
func (s StaticLines) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, line := range s {
			if !yield(line, nil) {
				return
			}
		}
	}
}
