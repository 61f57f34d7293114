package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/tools/common"
)

// newRequester builds the Box client used by the CLI commands.
// Tests replace it with a fake.
var newRequester = func(ctx context.Context) (box.Requester, error) {
	cfg, err := box.LoadAccountConfig(rootOpts.configPath, rootOpts.account)
	if err != nil {
		return nil, err
	}
	return box.NewClient(ctx, cfg,
		box.WithLogger(slog.Default()),
		box.WithUserAgent("boxmcp/"+version),
	)
}

// queryFlags are the fields/limit/offset flags of read commands.
type queryFlags struct {
	fields string
	limit  int
	offset int
}

func (q *queryFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&q.fields, "fields", "", "Comma separated list of fields to return")
	if paged {
		cmd.Flags().IntVar(&q.limit, "limit", 0, "Maximum number of entries to return")
		cmd.Flags().IntVar(&q.offset, "offset", 0, "Offset of the first entry to return")
	}
}

func (q *queryFlags) query() box.Query {
	return common.QueryArgs{Fields: q.fields, Limit: q.limit, Offset: q.offset}.Query()
}

// runBox issues one Box operation, waits for its callback and prints the
// response body. emptyMessage is printed when the response has no body.
func runBox(cmd *cobra.Command, emptyMessage string, issue func(ctx context.Context, client box.Requester, cb box.Callback)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newRequester(ctx)
	if err != nil {
		return err
	}

	body, err := box.Await(ctx, func(cb box.Callback) {
		issue(ctx, client, cb)
	})
	if err != nil {
		return err
	}
	return printBody(cmd.OutOrStdout(), body, emptyMessage)
}

func printBody(w io.Writer, body json.RawMessage, emptyMessage string) error {
	if len(bytes.TrimSpace(body)) == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		// Not JSON, print as received.
		_, err = fmt.Fprintln(w, string(body))
		return err
	}
	_, err := fmt.Fprintln(w, out.String())
	return err
}
