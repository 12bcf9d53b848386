package index

type sliceStream[E any] struct {
	items []E
}

func fromSlice[E any](items []E) Stream[E] {
	return &sliceStream[E]{items: items}
}

func (s *sliceStream[E]) Next() (E, bool) {
	if len(s.items) == 0 {
		var zero E
		return zero, false
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, true
}

func collect[E any](s Stream[E]) []E {
	var out []E
	for {
		item, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}
