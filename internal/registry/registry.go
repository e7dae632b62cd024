package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zesch/rwse-checker/internal/domain"
)

var (
	ErrInvalidConfusionSet = errors.New("confusion set needs at least two distinct non-empty members")
	ErrSourceRead          = errors.New("cannot read confusion set source")
	ErrUnknownWord         = errors.New("word is not in any confusion set")
)

// Registry maps a word to the full confusion set containing it, the word
// itself included. It is immutable after construction and safe for
// concurrent readers without locking. Membership is an exact,
// case-sensitive string match; callers that want case-insensitive checking
// normalize before lookup.
type Registry struct {
	sets   map[string][]string
	groups int
}

// New builds a registry from in-memory groups. Members are trimmed and
// empty entries dropped; a group with fewer than two distinct members left
// fails with ErrInvalidConfusionSet.
func New(groups [][]string) (*Registry, error) {
	r := &Registry{sets: make(map[string][]string)}
	for i, group := range groups {
		if err := r.add(group); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
	}
	return r, nil
}

// NewFromReader builds a registry from comma-separated rows, one confusion
// set per row, applying the same cleaning and validation as New.
func NewFromReader(src io.Reader) (*Registry, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	r := &Registry{sets: make(map[string][]string)}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSourceRead, line, err)
		}
		if err := r.add(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return r, nil
}

// NewFromFile builds a registry from a comma-separated file.
func NewFromFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	defer func() { _ = f.Close() }()
	return NewFromReader(f)
}

// NewFromStore builds a registry from groups held in external storage.
func NewFromStore(ctx context.Context, src domain.GroupSource) (*Registry, error) {
	groups, err := src.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	return New(groups)
}

// add registers every cleaned member of group to the full cleaned group.
// A word declared in more than one group keeps the group declared last;
// this is last-write-wins, not a merge.
func (r *Registry) add(group []string) error {
	seen := make(map[string]struct{}, len(group))
	cleaned := make([]string, 0, len(group))
	for _, w := range group {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		cleaned = append(cleaned, w)
	}
	if len(cleaned) < 2 {
		return ErrInvalidConfusionSet
	}
	for _, w := range cleaned {
		r.sets[w] = cleaned
	}
	r.groups++
	return nil
}

// Contains reports whether word belongs to some confusion set.
func (r *Registry) Contains(word string) bool {
	_, ok := r.sets[word]
	return ok
}

// CandidatesFor returns the full confusion set containing word, in
// declaration order, word included. The slice is a copy; mutating it does
// not affect the registry. Fails with ErrUnknownWord when the word is not
// registered.
func (r *Registry) CandidatesFor(word string) ([]string, error) {
	set, ok := r.sets[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	out := make([]string, len(set))
	copy(out, set)
	return out, nil
}

// WordCount is the number of registered words across all sets.
func (r *Registry) WordCount() int {
	return len(r.sets)
}

// GroupCount is the number of declared groups.
func (r *Registry) GroupCount() int {
	return r.groups
}
