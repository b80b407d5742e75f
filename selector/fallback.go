package selector

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	FALLBACK = "fallback"
)

// FallbackSelector returns the first enabled item in insertion order, so
// later items only serve while every earlier one is disabled.
type FallbackSelector[T Item] struct {
	items  []T
	mu     *sync.Mutex
	logger *logrus.Entry
}

func NewFallbackSelector[T Item]() *FallbackSelector[T] {
	return &FallbackSelector[T]{
		items:  make([]T, 0),
		mu:     &sync.Mutex{},
		logger: logrus.WithField("selector", FALLBACK),
	}
}

func (s *FallbackSelector[T]) AddItem(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	s.logger.Infof("added item '%s', priority: %d", item.GetName(), len(s.items))
}

func (s *FallbackSelector[T]) Select() (item T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		err = fmt.Errorf("fallback selector: no items configured")
		return
	}

	for i, candidate := range s.items {
		if candidate.IsDisabled() {
			s.logger.Debugf("item '%s' is disabled, trying next", candidate.GetName())
			continue
		}
		if i > 0 {
			s.logger.Debugf("falling back to item '%s'", candidate.GetName())
		}
		return candidate, nil
	}
	s.logger.Warn("all configured items are disabled")
	err = fmt.Errorf("fallback selector: all configured items are disabled")
	return
}

// TotalConfigWeight is always 0, weights do not apply.
func (s *FallbackSelector[T]) TotalConfigWeight() int {
	return 0
}

func (s *FallbackSelector[T]) GetType() string {
	return FALLBACK
}
