// Package engine provisions a bot and everything it depends on, in
// dependency order, creating only what is missing.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/reconcile"
	"github.com/dimbot/lexctl/internal/runid"
	"github.com/dimbot/lexctl/internal/tracing"
)

// Engine runs provisioning against explicit service handles.
type Engine struct {
	lex  *lex.Service
	perm *permission.Service
}

// New returns an Engine that calls lexSvc and permSvc.
func New(lexSvc *lex.Service, permSvc *permission.Service) *Engine {
	return &Engine{lex: lexSvc, perm: permSvc}
}

// Input is everything one run provisions. Bot.Intents is ignored: the bot
// always references the intents confirmed by the run, at $LATEST.
type Input struct {
	RunID      string
	Permission descriptor.PermissionSpec
	Intents    []descriptor.IntentSpec
	Bot        descriptor.BotSpec
	Alias      string
}

// Step is one reconciled resource.
type Step struct {
	Key      reconcile.Key
	Outcome  reconcile.Outcome
	Duration time.Duration
}

// Result describes a run. Steps lists resources in the order they were
// handled; on failure it holds the steps that completed.
type Result struct {
	RunID   string
	Steps   []Step
	Intents []string
	Bot     *lex.BotState
	Alias   *lex.AliasState
}

// Run provisions in.
//
// Steps:
//  1. Validate every descriptor
//  2. Grant the invoke permission
//  3. Ensure each intent, in order
//  4. Ensure the bot, referencing the confirmed intents
//  5. Ensure the alias, unless the bot was found through it
//
// The first error aborts the run. Nothing created earlier is rolled back.
// The returned Result is never nil.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	res := &Result{RunID: in.RunID}
	if res.RunID == "" {
		res.RunID = runid.New()
	}

	ctx = tflog.SetField(ctx, "run_id", res.RunID)
	ctx, span := tracing.Tracer(ctx).Start(ctx, "lexctl.run", trace.WithAttributes(
		attribute.String("lexctl.run_id", res.RunID),
	))
	defer span.End()

	err := e.run(ctx, in, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		tflog.Error(ctx, "run failed", map[string]interface{}{"error": err.Error()})
		return res, err
	}

	tflog.Info(ctx, "run complete", map[string]interface{}{"steps": len(res.Steps)})
	return res, nil
}

func (e *Engine) run(ctx context.Context, in Input, res *Result) error {
	// Step 1: Validate before touching the service.
	if err := validate(in); err != nil {
		return fmt.Errorf("engine: validate: %w", err)
	}

	// Step 2: Invoke permission.
	if err := e.step(ctx, res, permission.Key(in.Permission), func(ctx context.Context) (reconcile.Outcome, error) {
		r, err := e.perm.Ensure(ctx, in.Permission)
		return r.Outcome, err
	}); err != nil {
		return fmt.Errorf("engine: ensure permission %s: %w", in.Permission.StatementID, err)
	}

	// Step 3: Intents, sequentially.
	for _, spec := range in.Intents {
		if err := e.step(ctx, res, lex.IntentKey(spec.Name, descriptor.LatestVersion), func(ctx context.Context) (reconcile.Outcome, error) {
			r, err := e.lex.EnsureIntent(ctx, spec)
			return r.Outcome, err
		}); err != nil {
			return fmt.Errorf("engine: ensure intent %q: %w", spec.Name, err)
		}
		res.Intents = append(res.Intents, spec.Name)
	}

	// Step 4: Bot.
	bot := withIntents(in.Bot, res.Intents)
	var botOutcome reconcile.Outcome
	if err := e.step(ctx, res, lex.BotKey(bot.Name, in.Alias), func(ctx context.Context) (reconcile.Outcome, error) {
		r, err := e.lex.EnsureBot(ctx, bot, in.Alias)
		if err != nil {
			return "", err
		}
		res.Bot = r.State
		botOutcome = r.Outcome
		return r.Outcome, nil
	}); err != nil {
		return fmt.Errorf("engine: ensure bot %q: %w", bot.Name, err)
	}

	// Step 5: Alias. Finding the bot through the alias proves the alias.
	alias := descriptor.AliasSpec{Name: in.Alias, BotName: bot.Name, BotVersion: descriptor.LatestVersion}
	if err := e.step(ctx, res, lex.AliasKey(alias.Name, alias.BotName), func(ctx context.Context) (reconcile.Outcome, error) {
		if botOutcome == reconcile.Exists {
			res.Alias = &lex.AliasState{Name: alias.Name, BotName: alias.BotName, BotVersion: res.Bot.Version}
			return reconcile.Exists, nil
		}
		r, err := e.lex.EnsureAlias(ctx, alias)
		if err != nil {
			return "", err
		}
		res.Alias = r.State
		return r.Outcome, nil
	}); err != nil {
		return fmt.Errorf("engine: ensure alias %q: %w", alias.Name, err)
	}

	return nil
}

// step runs fn under a span and records its outcome.
func (e *Engine) step(ctx context.Context, res *Result, key reconcile.Key, fn func(context.Context) (reconcile.Outcome, error)) error {
	ctx, span := tracing.Tracer(ctx).Start(ctx, "lexctl.ensure", trace.WithAttributes(
		attribute.String("lexctl.resource.type", key.Type),
		attribute.String("lexctl.resource.name", key.Name),
		attribute.String("lexctl.resource.qualifier", key.Qualifier),
	))
	defer span.End()

	start := time.Now()
	outcome, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("lexctl.outcome", string(outcome)))

	res.Steps = append(res.Steps, Step{Key: key, Outcome: outcome, Duration: time.Since(start)})
	return nil
}

func validate(in Input) error {
	if err := in.Permission.Validate(); err != nil {
		return err
	}
	if len(in.Intents) == 0 {
		return fault.Validationf("no intents to provision")
	}
	names := make([]string, len(in.Intents))
	for i, spec := range in.Intents {
		if err := spec.Validate(); err != nil {
			return err
		}
		names[i] = spec.Name
	}
	if err := withIntents(in.Bot, names).Validate(); err != nil {
		return err
	}
	return descriptor.AliasSpec{Name: in.Alias, BotName: in.Bot.Name, BotVersion: descriptor.LatestVersion}.Validate()
}

// withIntents returns bot referencing names at $LATEST, in order.
func withIntents(bot descriptor.BotSpec, names []string) descriptor.BotSpec {
	bot.Intents = make([]descriptor.IntentRef, len(names))
	for i, n := range names {
		bot.Intents[i] = descriptor.IntentRef{Name: n, Version: descriptor.LatestVersion}
	}
	return bot
}
