package lex

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"

	"github.com/dimbot/lexctl/internal/descriptor"
)

// IntentInput translates an intent descriptor into a PutIntent request.
func IntentInput(spec descriptor.IntentSpec) *lexmodelbuildingservice.PutIntentInput {
	in := &lexmodelbuildingservice.PutIntentInput{
		Name:                aws.String(spec.Name),
		SampleUtterances:    append([]string(nil), spec.SampleUtterances...),
		Slots:               slots(spec.Slots),
		ConfirmationPrompt:  prompt(spec.ConfirmationPrompt),
		RejectionStatement:  statement(spec.RejectionStatement),
		ConclusionStatement: statement(spec.ConclusionStatement),
		FulfillmentActivity: &types.FulfillmentActivity{
			Type: types.FulfillmentActivityTypeCodeHook,
			CodeHook: &types.CodeHook{
				Uri:            aws.String(spec.Fulfillment.URI),
				MessageVersion: aws.String(spec.Fulfillment.MessageVersion),
			},
		},
	}
	if spec.Description != "" {
		in.Description = aws.String(spec.Description)
	}
	return in
}

// BotInput translates a bot descriptor into a PutBot request. Intents are
// listed in descriptor order.
func BotInput(spec descriptor.BotSpec) *lexmodelbuildingservice.PutBotInput {
	intents := make([]types.Intent, len(spec.Intents))
	for i, ref := range spec.Intents {
		intents[i] = types.Intent{
			IntentName:    aws.String(ref.Name),
			IntentVersion: aws.String(ref.Version),
		}
	}
	return &lexmodelbuildingservice.PutBotInput{
		Name:           aws.String(spec.Name),
		Locale:         types.Locale(spec.Locale),
		ChildDirected:  aws.Bool(spec.ChildDirected),
		Intents:        intents,
		AbortStatement: statement(spec.AbortStatement),
	}
}

// AliasInput translates an alias descriptor into a PutBotAlias request.
func AliasInput(spec descriptor.AliasSpec) *lexmodelbuildingservice.PutBotAliasInput {
	return &lexmodelbuildingservice.PutBotAliasInput{
		Name:       aws.String(spec.Name),
		BotName:    aws.String(spec.BotName),
		BotVersion: aws.String(spec.BotVersion),
	}
}

func slots(specs []descriptor.SlotSpec) []types.Slot {
	out := make([]types.Slot, len(specs))
	for i, s := range specs {
		out[i] = types.Slot{
			Name:                   aws.String(s.Name),
			SlotConstraint:         types.SlotConstraint(s.Constraint),
			SlotType:               aws.String(s.BuiltinType),
			ValueElicitationPrompt: prompt(s.Prompt),
			Priority:               aws.Int32(int32(s.Priority)),
		}
	}
	return out
}

func prompt(p descriptor.Prompt) *types.Prompt {
	return &types.Prompt{
		Messages:    messages(p.Messages),
		MaxAttempts: aws.Int32(int32(p.MaxAttempts)),
	}
}

func statement(b descriptor.MessageBundle) *types.Statement {
	return &types.Statement{Messages: messages(b)}
}

func messages(b descriptor.MessageBundle) []types.Message {
	out := make([]types.Message, len(b))
	for i, m := range b {
		out[i] = types.Message{
			ContentType: types.ContentType(m.ContentType),
			Content:     aws.String(m.Content),
		}
	}
	return out
}

func intentRefs(in []types.Intent) []descriptor.IntentRef {
	refs := make([]descriptor.IntentRef, len(in))
	for i, it := range in {
		refs[i] = descriptor.IntentRef{
			Name:    aws.ToString(it.IntentName),
			Version: aws.ToString(it.IntentVersion),
		}
	}
	return refs
}

func intentState(name, version, checksum *string, utterances []string, slots []types.Slot, updated *time.Time) *IntentState {
	st := &IntentState{
		Name:             aws.ToString(name),
		Version:          aws.ToString(version),
		Checksum:         aws.ToString(checksum),
		SampleUtterances: utterances,
		LastUpdated:      aws.ToTime(updated),
	}
	for _, s := range slots {
		st.SlotNames = append(st.SlotNames, aws.ToString(s.Name))
	}
	return st
}
