package jsondb_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/jsondb"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"go.uber.org/zap"
)

func ExampleOpen() {
	ctx := context.Background()

	// To open a database, [Open] should be called. An empty path opens an
	// in-memory database. Any other path is a directory handled by badger,
	// unless another backend is selected.
	db, _ := jsondb.Open(ctx, "",
		// Storage backend. One of BackendMemory, BackendBadger and
		// BackendSQLite.
		jsondb.WithBackend(jsondb.BackendMemory),
		// Field holding the identifier of each document.
		jsondb.WithIdentifierKey("_id"),
		// Diagnostic level. Zero logs warnings only, one adds info and
		// two adds debug messages. Ignored if a logger is given.
		jsondb.WithVerbose(0),
		jsondb.WithLogger(zap.NewNop()),
	)
	defer db.Close(ctx)

	// Collections are created the first time they are requested.
	_, _ = db.Collection(ctx, "users")
	_, _ = db.Collection(ctx, "orders")
	_, _ = db.Collection(ctx, "users")

	fmt.Println(db.CollectionNames())

	// Output:
	// [users orders]
}

func ExampleCollection_Save() {
	ctx := context.Background()
	db, _ := jsondb.Open(ctx, "", jsondb.WithLogger(zap.NewNop()))
	defer db.Close(ctx)
	col, _ := db.Collection(ctx, "characters")

	// A struct can be defined to make working with the db easier. The
	// struct does not need to be exported, but the fields do.
	type Character struct {
		// untagged exported fields are named as they are
		Name string
		// tagged exported fields are named after the jsondb tag
		Style string `jsondb:"style"`
		// fields with "-" at the jsondb tag are ignored
		Clothes string `jsondb:"-"`
		// omitempty flag skips zero values
		Specials []string `jsondb:"specials,omitempty"`
		Spells   []string `jsondb:"spells,omitempty"`
	}

	// A document without identifier gets a new one. The saved document is
	// a copy, so changing gief afterwards does not change the stored one.
	gief := Character{
		Name:     "Zangief",
		Style:    "grappler",
		Clothes:  "red",
		Specials: []string{"SPD", "Siberian express"},
	}
	saved, _ := col.Save(ctx, gief)

	fmt.Println(len(saved.ID()) > 0)
	fmt.Println(saved.Len())

	// Saving a document with an existing identifier replaces it.
	saved.Set("style", jsondb.Value{})
	_, _ = col.Save(ctx, saved)

	q, _ := col.Find(map[string]any{"Name": "Zangief"})
	doc, _ := q.FirstAndProjectKeyPaths(ctx, "Name", "style", "specials")
	b, _ := json.Marshal(doc)
	fmt.Println(string(b))

	// Output:
	// true
	// 4
	// {"Name":"Zangief","style":null,"specials":["SPD","Siberian express"]}
}

func ExampleView_Find() {
	ctx := context.Background()
	db, _ := jsondb.Open(ctx, "", jsondb.WithLogger(zap.NewNop()))
	defer db.Close(ctx)
	col, _ := db.Collection(ctx, "users")

	_, _ = col.SaveAll(ctx,
		map[string]any{"name": "Mariana", "age": 41, "tags": []any{"consequat", "sit"}},
		map[string]any{"name": "Mario", "age": 35, "tags": []any{"consequat"}},
		map[string]any{"name": "Joana", "age": 52, "tags": []any{"amet"}},
	)

	// A view indexes the given paths. Queries created from it use the
	// indexes when every path in the criteria is indexed, and scan the
	// collection otherwise. Results are the same either way.
	view, _ := col.View(ctx, "name", "age", "tags")

	q, _ := view.Find(map[string]any{
		"name": map[string]any{"$like": "Mari%"},
		"age":  map[string]any{"$ge": 40},
		"tags": map[string]any{"$in": []any{"consequat"}},
	})
	docs, _ := q.AllAndProjectKeyPaths(ctx, "name")
	for _, doc := range docs {
		b, _ := json.Marshal(doc)
		fmt.Println(string(b))
	}

	// Output:
	// {"name":"Mariana"}
}

func ExampleQuery_FirstAndModify() {
	ctx := context.Background()
	db, _ := jsondb.Open(ctx, "", jsondb.WithLogger(zap.NewNop()))
	defer db.Close(ctx)
	col, _ := db.Collection(ctx, "counters")
	_, _ = col.Save(ctx, map[string]any{"name": "visits", "n": 1})

	q, _ := col.Find(map[string]any{"name": "visits"})

	// The callback receives a copy of the first matching document. The
	// returned flags tell what to do with it: Update replaces the stored
	// document with the copy, and ReturnNew returns the replaced version.
	doc, _ := q.FirstAndModify(ctx, func(doc *jsondb.M) jsondb.ModifyOperation {
		v, _ := doc.Get("n")
		n, _ := v.Number()
		doc.Set("n", data.Number(n+1))
		return jsondb.Update | jsondb.ReturnNew
	})
	n, _ := doc.Get("n")
	fmt.Println(n.Interface())

	// Remove deletes the document, and ReturnOld returns it as it was.
	doc, _ = q.FirstAndModify(ctx, func(*jsondb.M) jsondb.ModifyOperation {
		return jsondb.Remove | jsondb.ReturnOld
	})
	fmt.Println(doc.Has("name"))

	count, _ := q.Count(ctx)
	fmt.Println(count)

	// Output:
	// 2
	// true
	// 0
}

func ExampleQuery_DecodeFirst() {
	ctx := context.Background()
	db, _ := jsondb.Open(ctx, "", jsondb.WithLogger(zap.NewNop()))
	defer db.Close(ctx)
	col, _ := db.Collection(ctx, "characters")
	_, _ = col.Save(ctx, map[string]any{"name": "Ryu", "style": "shoto", "games": []any{2, 3, 4}})

	// Documents can be copied into any value mapstructure can decode
	// into. Struct fields are matched by their jsondb tag, or by name
	// ignoring case.
	type Character struct {
		ID    string `jsondb:"_id"`
		Name  string
		Style string
		Games []int
	}

	q, _ := col.Find(map[string]any{"name": "Ryu"})
	var ryu Character
	_ = q.DecodeFirst(ctx, &ryu)
	fmt.Println(ryu.Name, ryu.Style, ryu.Games, ryu.ID != "")

	// When nothing matches, ErrNotFound is returned.
	q, _ = col.Find(map[string]any{"name": "Ken"})
	err := q.DecodeFirst(ctx, &ryu)
	fmt.Println(errors.Is(err, jsondb.ErrNotFound))

	// Output:
	// Ryu shoto [2 3 4] true
	// true
}
