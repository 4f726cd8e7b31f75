package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/vigor8or/lockserver/pkg/clock"
	"github.com/vigor8or/lockserver/pkg/types"
)

// Run with: go test -bench=. ./pkg/registry/

func BenchmarkAcquireReleaseSequential(b *testing.B) {
	reg := New(clock.Real{}, 10*time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		holder, err := reg.Acquire("bench", types.KindExclusive)
		if err != nil {
			b.Fatalf("acquire: %v", err)
		}
		if err := reg.Release("bench", holder.Token); err != nil {
			b.Fatalf("release: %v", err)
		}
	}
}

func BenchmarkAcquireReleaseParallelDistinctNames(b *testing.B) {
	reg := New(clock.Real{}, 10*time.Second)

	b.RunParallel(func(pb *testing.PB) {
		name := fmt.Sprintf("bench-%d", time.Now().UnixNano())
		for pb.Next() {
			holder, err := reg.Acquire(name, types.KindExclusive)
			if err != nil {
				b.Fatalf("acquire: %v", err)
			}
			if err := reg.Release(name, holder.Token); err != nil {
				b.Fatalf("release: %v", err)
			}
		}
	})
}

func BenchmarkSharedContention(b *testing.B) {
	reg := New(clock.Real{}, 10*time.Second)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			holder, err := reg.Acquire("hot", types.KindShared)
			if err != nil {
				b.Fatalf("acquire: %v", err)
			}
			if err := reg.Release("hot", holder.Token); err != nil {
				b.Fatalf("release: %v", err)
			}
		}
	})
}
