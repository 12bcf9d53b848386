package index

import (
	"context"
	"fmt"
	"testing"
)

var benchIndex = Build(docs(largeCorpus(10000)...))

func BenchmarkBuild(b *testing.B) {
	for _, size := range []int{1000, 10000} {
		corpus := largeCorpus(size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				Build(docs(corpus...))
			}
		})
	}
}

func BenchmarkBuildParallel(b *testing.B) {
	corpus := largeCorpus(10000)
	for _, workers := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := BuildParallel(context.Background(), docs(corpus...), workers); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSearch drains the full result sequence so the merge and sum stages
// are measured, not just setup.
func BenchmarkSearch(b *testing.B) {
	queries := map[string][]string{
		"single": {"graph"},
		"pair":   {"graph", "citation"},
		"rare":   {"rare-3", "venue"},
		"wide":   {"graph", "search", "index", "citation", "paper"},
	}
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				seq, err := benchIndex.Search(q)
				if err != nil {
					b.Fatal(err)
				}
				for range seq {
				}
			}
		})
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	q := []string{"graph", "citation"}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			seq, _ := benchIndex.Search(q)
			for range seq {
			}
		}
	})
}
