package container_test

import (
	"testing"

	"github.com/km-arc/go-container/container"
)

func BenchmarkResolve_CachedSingleton(b *testing.B) {
	c := container.New()
	tag := container.NewTag[*testDatabase]("db")
	err := container.Register(c, tag, container.Provide(func(*container.Context) (*testDatabase, error) {
		return &testDatabase{}, nil
	}))
	if err != nil {
		b.Fatal(err)
	}
	if _, err := container.Resolve(c, tag); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := container.Resolve(c, tag); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolve_CachedSingletonParallel(b *testing.B) {
	c := container.New()
	tag := container.NewTag[*testDatabase]("db")
	err := container.Register(c, tag, container.Provide(func(*container.Context) (*testDatabase, error) {
		return &testDatabase{}, nil
	}))
	if err != nil {
		b.Fatal(err)
	}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := container.Resolve(c, tag); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkChild_CreateAndDestroy(b *testing.B) {
	root := container.New()
	tag := container.NewTag[string]("cfg")
	if err := container.RegisterValue(root, tag, "v"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scope, err := root.Child("bench")
		if err != nil {
			b.Fatal(err)
		}
		if _, err := container.Resolve(scope, tag); err != nil {
			b.Fatal(err)
		}
		if err := scope.Destroy(); err != nil {
			b.Fatal(err)
		}
	}
}
