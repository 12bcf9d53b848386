package index

// Stream is a single-pass pull iterator. Once Next reports false the stream
// is exhausted and stays exhausted.
type Stream[E any] interface {
	Next() (E, bool)
}
