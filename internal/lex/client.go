// Package lex provisions intents, bots and bot aliases in the Lex
// model-building service. Every error returned by Service carries a
// fault.Kind so callers can tell a missing resource from a failed call.
package lex

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"

	"github.com/dimbot/lexctl/internal/awsclient"
)

// API is the subset of the model-building client lexctl calls.
type API interface {
	GetIntent(ctx context.Context, params *lexmodelbuildingservice.GetIntentInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetIntentOutput, error)
	PutIntent(ctx context.Context, params *lexmodelbuildingservice.PutIntentInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutIntentOutput, error)
	GetBot(ctx context.Context, params *lexmodelbuildingservice.GetBotInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetBotOutput, error)
	PutBot(ctx context.Context, params *lexmodelbuildingservice.PutBotInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutBotOutput, error)
	GetBotAlias(ctx context.Context, params *lexmodelbuildingservice.GetBotAliasInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetBotAliasOutput, error)
	PutBotAlias(ctx context.Context, params *lexmodelbuildingservice.PutBotAliasInput, optFns ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutBotAliasOutput, error)
}

var _ API = (*lexmodelbuildingservice.Client)(nil)

// NewFromConfig builds a Service backed by the real model-building API.
func NewFromConfig(ctx context.Context, cfg awsclient.Config) (*Service, error) {
	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := lexmodelbuildingservice.NewFromConfig(awsCfg, func(o *lexmodelbuildingservice.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	})
	return New(client), nil
}
