package jsondb_test

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/vinicius-lino-figueiredo/jsondb"
	"go.uber.org/zap"
)

type M = map[string]any

func newCollection(b *testing.B, path, backend string, size int) *jsondb.Collection {
	ctx := context.Background()
	db, err := jsondb.Open(ctx, path,
		jsondb.WithBackend(backend),
		jsondb.WithLogger(zap.NewNop()),
	)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = db.Close(ctx) })
	col, err := db.Collection(ctx, "bench")
	if err != nil {
		b.Fatal(err)
	}
	docs := make([]any, size)
	for n := range size {
		docs[n] = M{"code": n, "group": n % 10}
	}
	if size > 0 {
		if _, err := col.SaveAll(ctx, docs...); err != nil {
			b.Fatal(err)
		}
	}
	return col
}

func BenchmarkOpen(b *testing.B) {
	ctx := context.Background()

	b.Run("Backend=memory", func(b *testing.B) {
		for b.Loop() {
			db, _ := jsondb.Open(ctx, "", jsondb.WithLogger(zap.NewNop()))
			_ = db.Close(ctx)
		}
	})

	b.Run("Backend=sqlite", func(b *testing.B) {
		file := filepath.Join(b.TempDir(), "file.db")
		for b.Loop() {
			db, _ := jsondb.Open(ctx, file,
				jsondb.WithBackend(jsondb.BackendSQLite),
				jsondb.WithLogger(zap.NewNop()),
			)
			_ = db.Close(ctx)
		}
	})
}

func BenchmarkSave(b *testing.B) {
	ctx := context.Background()
	m := M{"jo": "jo"}

	b.Run("Backend=memory", func(b *testing.B) {
		col := newCollection(b, "", jsondb.BackendMemory, 0)
		for b.Loop() {
			_, _ = col.Save(ctx, m)
		}
	})

	b.Run("Backend=badger", func(b *testing.B) {
		col := newCollection(b, filepath.Join(b.TempDir(), "db"), jsondb.BackendBadger, 0)
		for b.Loop() {
			_, _ = col.Save(ctx, m)
		}
	})

	b.Run("Backend=sqlite", func(b *testing.B) {
		col := newCollection(b, filepath.Join(b.TempDir(), "db"), jsondb.BackendSQLite, 0)
		for b.Loop() {
			_, _ = col.Save(ctx, m)
		}
	})
}

func BenchmarkSaveAll(b *testing.B) {
	ctx := context.Background()

	sizes := [...]int{1, 10, 100, 1_000, 10_000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			m := make([]any, size)
			for n := range size {
				m[n] = M{"part": n + 1}
			}

			col := newCollection(b, "", jsondb.BackendMemory, 0)
			for b.Loop() {
				if _, err := col.SaveAll(ctx, m...); err != nil {
					b.FailNow()
				}
			}

			perItem := float64(b.Elapsed().Nanoseconds()) / float64(b.N*size)

			b.ReportMetric(perItem, "ns/item")
		})
	}
}

func BenchmarkCount(b *testing.B) {
	ctx := context.Background()

	sizes := [...]int{1, 10, 100, 1_000, 10_000, 100_000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			col := newCollection(b, "", jsondb.BackendMemory, size)
			view, err := col.View(context.Background(), "code")
			if err != nil {
				b.Fatal(err)
			}

			b.Run("Scan", func(b *testing.B) {
				for b.Loop() {
					q, err := col.Find(M{"code": rand.Intn(size)})
					if err != nil {
						b.FailNow()
					}
					_, _ = q.Count(ctx)
				}
			})

			b.Run("View", func(b *testing.B) {
				for b.Loop() {
					q, err := view.Find(M{"code": rand.Intn(size)})
					if err != nil {
						b.FailNow()
					}
					_, _ = q.Count(ctx)
				}
			})

			b.Run("ViewRange", func(b *testing.B) {
				q, err := view.Find(M{"code": M{"$ge": size / 2}})
				if err != nil {
					b.FailNow()
				}
				for b.Loop() {
					_, _ = q.Count(ctx)
				}
			})
		})
	}
}

func BenchmarkFindWithSort(b *testing.B) {
	ctx := context.Background()

	sizes := [...]int{10, 100, 1_000, 10_000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			col := newCollection(b, "", jsondb.BackendMemory, size)
			q, err := col.Find(nil, jsondb.WithSort(jsondb.Sort{
				{Key: "group", Order: 1},
				{Key: "code", Order: -1},
			}))
			if err != nil {
				b.FailNow()
			}
			for b.Loop() {
				_, _ = q.All(ctx)
			}
		})
	}
}

func BenchmarkFirstAndModify(b *testing.B) {
	ctx := context.Background()

	sizes := [...]int{10, 100, 1_000, 10_000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("db=%d", size), func(b *testing.B) {
			col := newCollection(b, "", jsondb.BackendMemory, size)
			view, err := col.View(ctx, "code")
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				q, err := view.Find(M{"code": rand.Intn(size)})
				if err != nil {
					b.FailNow()
				}
				_, err = q.FirstAndModify(ctx, func(doc *jsondb.M) jsondb.ModifyOperation {
					return jsondb.Update
				})
				if err != nil {
					b.FailNow()
				}
			}
		})
	}
}
