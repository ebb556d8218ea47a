package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dolmen-go/contextio"
	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/jsondb"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> [file]",
		Short: "save documents from a json array or json lines file, or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := cmd.InOrStdin()
			if len(args) > 1 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			b, err := io.ReadAll(contextio.NewReader(ctx, in))
			if err != nil {
				return err
			}
			docs, err := parseDocuments(b)
			if err != nil {
				return err
			}
			return opts.withDatabase(ctx, func(db *jsondb.Database) error {
				col, err := db.Collection(ctx, args[0])
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), 0)
					return nil
				}
				saved, err := col.SaveAll(ctx, docs...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), len(saved))
				return nil
			})
		},
	}
}

// parseDocuments reads either a json array of documents or one document per
// line.
func parseDocuments(b []byte) ([]any, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] == '[' {
		v, err := data.ParseJSON(b)
		if err != nil {
			return nil, err
		}
		items, _ := v.Sequence()
		docs := make([]any, len(items))
		for n, item := range items {
			docs[n] = item
		}
		return docs, nil
	}

	var docs []any
	for n, line := range bytes.Split(b, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		v, err := data.ParseJSON(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		docs = append(docs, v)
	}
	return docs, nil
}
