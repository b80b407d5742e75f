package selector

type Item interface {
	// IsDisabled checks if the item is currently disabled.
	IsDisabled() bool
	// GetName returns the name of the item (for logging/debugging).
	GetName() string
}

type Selector[T Item] interface {
	AddItem(T)
	Select() (T, error)
	TotalConfigWeight() int
	GetType() string
}

// New returns the selector registered under typ.
func New[T WeightedItem](typ string) (s Selector[T], ok bool) {
	switch typ {
	case WRR:
		return NewWeightedRoundRobinSelector[T](), true
	case FALLBACK:
		return NewFallbackSelector[T](), true
	}
	return nil, false
}
