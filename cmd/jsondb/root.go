package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/jsondb"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

type options struct {
	path    string
	backend string
	verbose int
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "jsondb",
		Short:         "jsondb is an embedded json document database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.path, "path", "p", "", "database path")
	cmd.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "storage backend (memory, badger or sqlite)")
	cmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "log verbosity, repeat for more")

	cmd.AddCommand(
		collectionsCmd(&opts),
		importCmd(&opts),
		findCmd(&opts),
		countCmd(&opts),
		removeCmd(&opts),
	)
	return cmd
}

// withDatabase opens the database, runs fn and closes it.
func (o *options) withDatabase(ctx context.Context, fn func(db *jsondb.Database) error) (err error) {
	if o.path == "" && o.backend != jsondb.BackendMemory {
		return fmt.Errorf("a database path is required")
	}
	db, err := jsondb.Open(ctx, o.path,
		jsondb.WithBackend(o.backend),
		jsondb.WithVerbose(o.verbose),
	)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(context.WithoutCancel(ctx)); err == nil {
			err = closeErr
		}
	}()
	return fn(db)
}

// existing returns the collection called name, failing if it was never
// created.
func existing(ctx context.Context, db *jsondb.Database, name string) (*jsondb.Collection, error) {
	if !slices.Contains(db.CollectionNames(), name) {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return db.Collection(ctx, name)
}

// parseCriteria parses the optional criteria argument.
func parseCriteria(args []string) (any, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, nil
	}
	v, err := data.ParseJSON([]byte(args[0]))
	if err != nil {
		return nil, fmt.Errorf("criteria: %w", err)
	}
	return v, nil
}

// parseSort parses a comma separated list of keys. A leading '-' sorts the
// key in descending order.
func parseSort(s string) jsondb.Sort {
	var res jsondb.Sort
	for _, key := range strings.Split(s, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		order := int64(1)
		if after, ok := strings.CutPrefix(key, "-"); ok {
			key, order = after, -1
		} else {
			key = strings.TrimPrefix(key, "+")
		}
		res = append(res, jsondb.SortName{Key: key, Order: order})
	}
	return res
}

func writeDocs(w io.Writer, docs []*jsondb.M) error {
	enc := json.NewEncoder(w)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

func collectionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "list the collections of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd.Context(), func(db *jsondb.Database) error {
				for _, name := range db.CollectionNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func countCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection> [criteria]",
		Short: "count the documents matching a criteria",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseCriteria(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return opts.withDatabase(ctx, func(db *jsondb.Database) error {
				col, err := existing(ctx, db, args[0])
				if err != nil {
					return err
				}
				q, err := col.Find(criteria)
				if err != nil {
					return err
				}
				n, err := q.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func findCmd(opts *options) *cobra.Command {
	var (
		sort    string
		offset  int
		limit   int
		project []string
		view    []string
	)
	cmd := &cobra.Command{
		Use:   "find <collection> [criteria]",
		Short: "print the documents matching a criteria as json lines",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseCriteria(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return opts.withDatabase(ctx, func(db *jsondb.Database) error {
				col, err := existing(ctx, db, args[0])
				if err != nil {
					return err
				}
				var q *jsondb.Query
				findOpts := []jsondb.FindOption{jsondb.WithSort(parseSort(sort))}
				if len(view) > 0 {
					v, err := col.View(ctx, view...)
					if err != nil {
						return err
					}
					q, err = v.Find(criteria, findOpts...)
					if err != nil {
						return err
					}
				} else if q, err = col.Find(criteria, findOpts...); err != nil {
					return err
				}

				var docs []*jsondb.M
				if len(project) > 0 {
					docs, err = q.AllInRangeAndProjectKeyPaths(ctx, offset, limit, project...)
				} else {
					docs, err = q.AllInRange(ctx, offset, limit)
				}
				if err != nil {
					return err
				}
				return writeDocs(cmd.OutOrStdout(), docs)
			})
		},
	}
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "comma separated sort keys, '-' prefix for descending")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of documents to skip")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of documents, zero for no limit")
	cmd.Flags().StringSliceVar(&project, "project", nil, "key paths to keep")
	cmd.Flags().StringSliceVar(&view, "view", nil, "paths of the view to query through")
	return cmd
}

func removeCmd(opts *options) *cobra.Command {
	var (
		all    bool
		sort   string
		offset int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "remove <collection> [criteria]",
		Short: "remove the first document matching a criteria, or all of them",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseCriteria(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return opts.withDatabase(ctx, func(db *jsondb.Database) error {
				col, err := existing(ctx, db, args[0])
				if err != nil {
					return err
				}
				q, err := col.Find(criteria, jsondb.WithSort(parseSort(sort)))
				if err != nil {
					return err
				}
				if !all {
					limit = 1
				}
				n, err := q.RemoveAllInRange(ctx, offset, limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "remove every matching document")
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "comma separated sort keys, '-' prefix for descending")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of matching documents to keep before removing")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "with --all, maximum number of documents to remove")
	return cmd
}
