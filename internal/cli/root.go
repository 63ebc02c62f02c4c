// Package cli implements the lexctl command.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tfsdklog"
	"github.com/spf13/cobra"

	"github.com/dimbot/lexctl/internal/config"
	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/version"
)

// memoryNamespace keys the in-process fakes used by the memory backend.
const memoryNamespace = "lexctl"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lexctl",
		Short: "Provision the order bot, its intents and its fulfillment permission",
		Long: `lexctl creates the bot's invoke permission, intents, bot and alias
when they do not exist. Existing resources are left untouched.

All settings come from LEXCTL_* environment variables or the YAML file
named by LEXCTL_CONFIG.`,
		Version:       version.BuildVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runProvision,
	}
	root.AddCommand(newCatalogCmd(), newHistoryCmd(), newVersionCmd())
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the root logger on ctx.
func setup(ctx context.Context) (context.Context, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, config.Config{}, err
	}
	ctx = tfsdklog.NewRootProviderLogger(ctx,
		tfsdklog.WithLogName("lexctl"),
		tfsdklog.WithLevel(hclog.LevelFromString(cfg.LogLevel)),
		tfsdklog.WithoutLocation(),
	)
	return ctx, cfg, nil
}

// services returns the remote service handles for cfg.Backend.
func services(ctx context.Context, cfg config.Config) (*lex.Service, *permission.Service, error) {
	if cfg.Backend == config.BackendMemory {
		return lex.New(lex.GetOrCreateMemoryAPI(memoryNamespace)),
			permission.New(permission.GetOrCreateMemoryAPI(memoryNamespace)), nil
	}

	lexSvc, err := lex.NewFromConfig(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, nil, err
	}
	permSvc, err := permission.NewFromConfig(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, nil, err
	}
	return lexSvc, permSvc, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lexctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "lexctl", version.BuildVersion())
		},
	}
}
