package index

// Number is the set of value types SumBy can total.
type Number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Sum is one run of equal keys and the total of their values.
type Sum[K comparable, V Number] struct {
	Key   K
	Total V
}

// SumBy totals values over runs of consecutive equal keys, yielding one Sum
// per run in source order. Equal keys must already be contiguous; keys that
// reappear after a different key start a new run. The first element is read
// eagerly and an empty source fails with ErrEmptyInput.
func SumBy[E any, K comparable, V Number](src Stream[E], key func(E) K, value func(E) V) (Stream[Sum[K, V]], error) {
	first, ok := src.Next()
	if !ok {
		return nil, ErrEmptyInput
	}
	return &sumStream[E, K, V]{
		src:     src,
		key:     key,
		value:   value,
		current: key(first),
		total:   value(first),
		pending: true,
	}, nil
}

type sumStream[E any, K comparable, V Number] struct {
	src     Stream[E]
	key     func(E) K
	value   func(E) V
	current K
	total   V
	pending bool
}

func (s *sumStream[E, K, V]) Next() (Sum[K, V], bool) {
	if !s.pending {
		return Sum[K, V]{}, false
	}
	for {
		item, ok := s.src.Next()
		if !ok {
			s.pending = false
			return Sum[K, V]{Key: s.current, Total: s.total}, true
		}
		k := s.key(item)
		if k == s.current {
			s.total += s.value(item)
			continue
		}
		out := Sum[K, V]{Key: s.current, Total: s.total}
		s.current, s.total = k, s.value(item)
		return out, true
	}
}
