package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dimbot/lexctl/internal/config"
	"github.com/dimbot/lexctl/internal/receipt"
	"github.com/dimbot/lexctl/internal/reconcile"
	"github.com/dimbot/lexctl/internal/target"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs recorded in the receipt stores, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cfg, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			return history(ctx, cfg, cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show per store (0 for all)")
	return cmd
}

func history(ctx context.Context, cfg config.Config, out io.Writer, limit int) error {
	if len(cfg.Receipt.Stores) == 0 {
		return errors.New("no receipt stores configured (set LEXCTL_RECEIPT_STORES_0_TYPE)")
	}
	stores, err := target.NewAll(ctx, cfg.Receipt.Stores)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tRUN\tSTATUS\tCREATED\tRESOURCES")
	for _, store := range stores {
		entries, err := receipt.List(ctx, store)
		if err != nil {
			return err
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		for _, e := range entries {
			r, err := receipt.Load(ctx, store, e.RunID)
			if err != nil {
				fmt.Fprintf(w, "%s\t%s\t?\t?\t?\n", store.Name(), e.RunID)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", store.Name(), r.RunID, r.Result.Status, created(r), len(r.Resources))
		}
	}
	return w.Flush()
}

func created(r *receipt.Receipt) int {
	n := 0
	for _, res := range r.Resources {
		if res.Outcome == string(reconcile.Created) {
			n++
		}
	}
	return n
}
