package lex

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
)

// IntentState is what the service reports about an intent version.
type IntentState struct {
	Name             string
	Version          string
	Checksum         string
	SampleUtterances []string
	SlotNames        []string
	LastUpdated      time.Time
}

// BotState is what the service reports about a bot version or alias.
type BotState struct {
	Name     string
	Version  string
	Status   string
	Checksum string
	Locale   string
	Intents  []descriptor.IntentRef
}

// AliasState is what the service reports about a bot alias.
type AliasState struct {
	Name       string
	BotName    string
	BotVersion string
	Checksum   string
}

// Service wraps an API client with descriptor translation and error
// classification.
type Service struct {
	api API
}

// New returns a Service that calls api.
func New(api API) *Service {
	return &Service{api: api}
}

// DescribeIntent fetches one intent version.
func (s *Service) DescribeIntent(ctx context.Context, name, version string) (*IntentState, error) {
	out, err := s.api.GetIntent(ctx, &lexmodelbuildingservice.GetIntentInput{
		Name:    aws.String(name),
		Version: aws.String(version),
	})
	if err != nil {
		return nil, fault.Wrap(fmt.Sprintf("lex GetIntent %s@%s", name, version), err)
	}
	return intentState(out.Name, out.Version, out.Checksum, out.SampleUtterances, out.Slots, out.LastUpdatedDate), nil
}

// CreateOrUpdateIntent puts the intent's $LATEST version. Without a
// checksum the service rejects the call if the intent already exists.
func (s *Service) CreateOrUpdateIntent(ctx context.Context, spec descriptor.IntentSpec) (*IntentState, error) {
	tflog.Debug(ctx, "putting intent", map[string]interface{}{
		"intent": spec.Name,
		"slots":  len(spec.Slots),
	})

	out, err := s.api.PutIntent(ctx, IntentInput(spec))
	if err != nil {
		return nil, fault.Wrap("lex PutIntent "+spec.Name, err)
	}
	return intentState(out.Name, out.Version, out.Checksum, out.SampleUtterances, out.Slots, out.LastUpdatedDate), nil
}

// DescribeBot fetches a bot by version or alias.
func (s *Service) DescribeBot(ctx context.Context, name, versionOrAlias string) (*BotState, error) {
	out, err := s.api.GetBot(ctx, &lexmodelbuildingservice.GetBotInput{
		Name:           aws.String(name),
		VersionOrAlias: aws.String(versionOrAlias),
	})
	if err != nil {
		return nil, fault.Wrap(fmt.Sprintf("lex GetBot %s@%s", name, versionOrAlias), err)
	}
	return &BotState{
		Name:     aws.ToString(out.Name),
		Version:  aws.ToString(out.Version),
		Status:   string(out.Status),
		Checksum: aws.ToString(out.Checksum),
		Locale:   string(out.Locale),
		Intents:  intentRefs(out.Intents),
	}, nil
}

// CreateOrUpdateBot puts the bot's $LATEST version.
func (s *Service) CreateOrUpdateBot(ctx context.Context, spec descriptor.BotSpec) (*BotState, error) {
	tflog.Debug(ctx, "putting bot", map[string]interface{}{
		"bot":     spec.Name,
		"intents": spec.IntentNames(),
	})

	out, err := s.api.PutBot(ctx, BotInput(spec))
	if err != nil {
		return nil, fault.Wrap("lex PutBot "+spec.Name, err)
	}
	return &BotState{
		Name:     aws.ToString(out.Name),
		Version:  aws.ToString(out.Version),
		Status:   string(out.Status),
		Checksum: aws.ToString(out.Checksum),
		Locale:   string(out.Locale),
		Intents:  intentRefs(out.Intents),
	}, nil
}

// DescribeBotAlias fetches one alias of a bot.
func (s *Service) DescribeBotAlias(ctx context.Context, name, botName string) (*AliasState, error) {
	out, err := s.api.GetBotAlias(ctx, &lexmodelbuildingservice.GetBotAliasInput{
		Name:    aws.String(name),
		BotName: aws.String(botName),
	})
	if err != nil {
		return nil, fault.Wrap(fmt.Sprintf("lex GetBotAlias %s/%s", botName, name), err)
	}
	return &AliasState{
		Name:       aws.ToString(out.Name),
		BotName:    aws.ToString(out.BotName),
		BotVersion: aws.ToString(out.BotVersion),
		Checksum:   aws.ToString(out.Checksum),
	}, nil
}

// CreateBotAlias points a new alias at a bot version.
func (s *Service) CreateBotAlias(ctx context.Context, spec descriptor.AliasSpec) (*AliasState, error) {
	out, err := s.api.PutBotAlias(ctx, AliasInput(spec))
	if err != nil {
		return nil, fault.Wrap(fmt.Sprintf("lex PutBotAlias %s/%s", spec.BotName, spec.Name), err)
	}
	return &AliasState{
		Name:       aws.ToString(out.Name),
		BotName:    aws.ToString(out.BotName),
		BotVersion: aws.ToString(out.BotVersion),
		Checksum:   aws.ToString(out.Checksum),
	}, nil
}
