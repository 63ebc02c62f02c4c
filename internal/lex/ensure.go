package lex

import (
	"context"
	"fmt"

	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/reconcile"
)

// Reconcile key types.
const (
	TypeIntent = "intent"
	TypeBot    = "bot"
	TypeAlias  = "alias"
)

// IntentKey identifies an intent version.
func IntentKey(name, version string) reconcile.Key {
	return reconcile.Key{Type: TypeIntent, Name: name, Qualifier: version}
}

// BotKey identifies a bot by version or alias.
func BotKey(name, versionOrAlias string) reconcile.Key {
	return reconcile.Key{Type: TypeBot, Name: name, Qualifier: versionOrAlias}
}

// AliasKey identifies an alias of botName.
func AliasKey(name, botName string) reconcile.Key {
	return reconcile.Key{Type: TypeAlias, Name: name, Qualifier: botName}
}

// EnsureIntent creates the intent's $LATEST version unless it exists.
func (s *Service) EnsureIntent(ctx context.Context, spec descriptor.IntentSpec) (reconcile.Result[*IntentState], error) {
	return reconcile.Ensure(ctx, IntentKey(spec.Name, descriptor.LatestVersion), spec,
		func(ctx context.Context, k reconcile.Key) (*IntentState, error) {
			return s.DescribeIntent(ctx, k.Name, k.Qualifier)
		},
		func(ctx context.Context, _ reconcile.Key, d descriptor.IntentSpec) (*IntentState, error) {
			return s.CreateOrUpdateIntent(ctx, d)
		},
	)
}

// EnsureBot reads the bot at versionOrAlias and creates it when missing.
// A create that reports the bot already exists means it is there under
// another qualifier; the bot is then described at $LATEST.
func (s *Service) EnsureBot(ctx context.Context, spec descriptor.BotSpec, versionOrAlias string) (reconcile.Result[*BotState], error) {
	r, err := reconcile.Ensure(ctx, BotKey(spec.Name, versionOrAlias), spec,
		func(ctx context.Context, k reconcile.Key) (*BotState, error) {
			return s.DescribeBot(ctx, k.Name, k.Qualifier)
		},
		func(ctx context.Context, _ reconcile.Key, d descriptor.BotSpec) (*BotState, error) {
			return s.CreateOrUpdateBot(ctx, d)
		},
		reconcile.TolerateAlreadyExists(),
	)
	if err != nil || r.Outcome != reconcile.Conceded {
		return r, err
	}

	r.State, err = s.DescribeBot(ctx, spec.Name, descriptor.LatestVersion)
	if err != nil {
		return r, fmt.Errorf("describe existing bot: %w", err)
	}
	return r, nil
}

// EnsureAlias points a new alias at the bot unless the alias exists.
func (s *Service) EnsureAlias(ctx context.Context, spec descriptor.AliasSpec) (reconcile.Result[*AliasState], error) {
	r, err := reconcile.Ensure(ctx, AliasKey(spec.Name, spec.BotName), spec,
		func(ctx context.Context, k reconcile.Key) (*AliasState, error) {
			return s.DescribeBotAlias(ctx, k.Name, k.Qualifier)
		},
		func(ctx context.Context, _ reconcile.Key, d descriptor.AliasSpec) (*AliasState, error) {
			return s.CreateBotAlias(ctx, d)
		},
		reconcile.TolerateAlreadyExists(),
	)
	if err == nil && r.State == nil {
		r.State = &AliasState{Name: spec.Name, BotName: spec.BotName, BotVersion: spec.BotVersion}
	}
	return r, err
}
