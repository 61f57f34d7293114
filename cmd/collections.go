package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/box"
	"github.com/teemow/boxmcp/internal/collections"
)

func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List Box collections and manage folder membership",
	}

	cmd.AddCommand(newCollectionsListCmd())
	cmd.AddCommand(newCollectionsGetCmd())
	cmd.AddCommand(newCollectionsItemsCmd())
	cmd.AddCommand(newCollectionsSetFolderCmd())

	return cmd
}

func newCollectionsListCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the collections of the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				collections.NewManager(client).GetAll(ctx, q.query(), cb)
			})
		},
	}
	q.register(cmd, true)

	return cmd
}

func newCollectionsGetCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "get <collection-id>",
		Short: "Show a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				collections.NewManager(client).Get(ctx, args[0], q.query(), cb)
			})
		},
	}
	q.register(cmd, false)

	return cmd
}

func newCollectionsItemsCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "items <collection-id>",
		Short: "List the items of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				collections.NewManager(client).GetItems(ctx, args[0], q.query(), cb)
			})
		},
	}
	q.register(cmd, true)

	return cmd
}

func newCollectionsSetFolderCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "set-folder <folder-id> [collection-id...]",
		Short: "Replace the collections a folder belongs to",
		Long: `Replace the collections a folder belongs to.

The folder ends up in exactly the collections given. Pass --clear
without collection IDs to remove it from every collection.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, ids := args[0], args[1:]
			if len(ids) == 0 && !clearAll {
				return fmt.Errorf("no collection IDs given; use --clear to remove the folder from all collections")
			}
			if len(ids) > 0 && clearAll {
				return fmt.Errorf("--clear cannot be combined with collection IDs")
			}
			return runBox(cmd, "", func(ctx context.Context, client box.Requester, cb box.Callback) {
				collections.NewManager(client).UpdateFolderCollections(ctx, folderID, ids, cb)
			})
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove the folder from all collections")

	return cmd
}
