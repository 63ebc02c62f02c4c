package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/spf13/cobra"

	"github.com/dimbot/lexctl/internal/catalog"
	"github.com/dimbot/lexctl/internal/config"
	"github.com/dimbot/lexctl/internal/engine"
	"github.com/dimbot/lexctl/internal/receipt"
	"github.com/dimbot/lexctl/internal/report"
	"github.com/dimbot/lexctl/internal/runid"
	"github.com/dimbot/lexctl/internal/target"
	"github.com/dimbot/lexctl/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func runProvision(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	return provision(ctx, cfg, cmd.OutOrStdout())
}

// provision runs the engine once, prints the summary and publishes the
// receipt. A receipt failure is logged and never changes the result.
func provision(ctx context.Context, cfg config.Config, out io.Writer) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	hash, err := cat.Hash()
	if err != nil {
		return err
	}

	h, err := tracing.Init(ctx, cfg.OTel)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := h.Shutdown(sctx); err != nil {
			tflog.Warn(ctx, "flushing traces failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	ctx = tracing.WithHandle(ctx, h)

	lexSvc, permSvc, err := services(ctx, cfg)
	if err != nil {
		return err
	}
	stores, err := target.NewAll(ctx, cfg.Receipt.Stores)
	if err != nil {
		return err
	}

	started := time.Now()
	res, runErr := engine.New(lexSvc, permSvc).Run(ctx, engine.Input{
		RunID:      runid.At(started),
		Permission: cfg.Permission(),
		Intents:    cat.Intents,
		Bot:        cat.Bot,
		Alias:      cfg.Bot.Alias,
	})

	fmt.Fprint(out, report.Format(res, hash, runErr))

	rec := receipt.New(res.RunID, cfg.Region, hash, started)
	for _, s := range res.Steps {
		rec.Add(s.Key, s.Outcome)
	}
	rec.Finish(time.Now(), runErr)
	if err := receipt.Publish(ctx, stores, rec, cfg.Receipt.MaxConcurrency); err != nil {
		tflog.Warn(ctx, "publishing receipt failed", map[string]interface{}{"error": err.Error()})
	}

	return runErr
}

// loadCatalog returns the catalog from cfg.CatalogDir, or the built-in one.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	opts := cfg.CatalogOptions()
	if cfg.CatalogDir == "" {
		cat := catalog.Builtin(opts)
		return cat, cat.Validate()
	}
	return catalog.LoadDir(cfg.CatalogDir, opts)
}
