package intent

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/dimbot/lexctl/internal/descriptor"
)

// Defaults applied when optional arguments are omitted.
const (
	defaultMessageVersion = "1.0"
	defaultConstraint     = string(descriptor.SlotRequired)
)

// IntentResourceModel maps the lexctl_intent resource schema to a Go struct.
type IntentResourceModel struct {
	// Required
	Name                types.String `tfsdk:"name"`
	SampleUtterances    types.List   `tfsdk:"sample_utterances"` // List of strings
	ConfirmationPrompt  types.List   `tfsdk:"confirmation_prompt"`
	RejectionStatement  types.List   `tfsdk:"rejection_statement"`
	ConclusionStatement types.List   `tfsdk:"conclusion_statement"`
	FulfillmentURI      types.String `tfsdk:"fulfillment_uri"`

	// Optional
	Description               types.String `tfsdk:"description"`
	ConfirmationMaxAttempts   types.Int64  `tfsdk:"confirmation_max_attempts"`
	FulfillmentMessageVersion types.String `tfsdk:"fulfillment_message_version"`
	Slots                     []SlotModel  `tfsdk:"slot"`

	// Computed
	ID       types.String `tfsdk:"id"`
	Version  types.String `tfsdk:"version"`
	Checksum types.String `tfsdk:"checksum"`
	Outcome  types.String `tfsdk:"outcome"`
}

// SlotModel maps a single slot {} block.
type SlotModel struct {
	Name        types.String `tfsdk:"name"`
	SlotType    types.String `tfsdk:"slot_type"`
	Constraint  types.String `tfsdk:"constraint"`
	Prompt      types.String `tfsdk:"prompt"`
	MaxAttempts types.Int64  `tfsdk:"max_attempts"`
	Priority    types.Int64  `tfsdk:"priority"`
}

// toSpec converts the model into an intent descriptor. Slots keep their
// block order; priority decides elicitation order.
func (m *IntentResourceModel) toSpec(ctx context.Context) (descriptor.IntentSpec, diag.Diagnostics) {
	var diags diag.Diagnostics

	spec := descriptor.IntentSpec{
		Name:        m.Name.ValueString(),
		Description: m.Description.ValueString(),
		Fulfillment: descriptor.FulfillmentHook{
			URI:            m.FulfillmentURI.ValueString(),
			MessageVersion: defaultMessageVersion,
		},
		ConfirmationPrompt: descriptor.Prompt{MaxAttempts: descriptor.MaxPromptAttempts},
	}
	if !m.FulfillmentMessageVersion.IsNull() && !m.FulfillmentMessageVersion.IsUnknown() {
		spec.Fulfillment.MessageVersion = m.FulfillmentMessageVersion.ValueString()
	}
	if !m.ConfirmationMaxAttempts.IsNull() && !m.ConfirmationMaxAttempts.IsUnknown() {
		spec.ConfirmationPrompt.MaxAttempts = int(m.ConfirmationMaxAttempts.ValueInt64())
	}

	diags.Append(m.SampleUtterances.ElementsAs(ctx, &spec.SampleUtterances, false)...)

	var confirmation, rejection, conclusion []string
	diags.Append(m.ConfirmationPrompt.ElementsAs(ctx, &confirmation, false)...)
	diags.Append(m.RejectionStatement.ElementsAs(ctx, &rejection, false)...)
	diags.Append(m.ConclusionStatement.ElementsAs(ctx, &conclusion, false)...)
	if diags.HasError() {
		return spec, diags
	}
	spec.ConfirmationPrompt.Messages = descriptor.PlainText(confirmation...)
	spec.RejectionStatement = descriptor.PlainText(rejection...)
	spec.ConclusionStatement = descriptor.PlainText(conclusion...)

	for _, s := range m.Slots {
		spec.Slots = append(spec.Slots, s.toSpec())
	}
	return spec, diags
}

func (s SlotModel) toSpec() descriptor.SlotSpec {
	constraint := defaultConstraint
	if !s.Constraint.IsNull() && !s.Constraint.IsUnknown() {
		constraint = s.Constraint.ValueString()
	}
	maxAttempts := int64(descriptor.MaxPromptAttempts)
	if !s.MaxAttempts.IsNull() && !s.MaxAttempts.IsUnknown() {
		maxAttempts = s.MaxAttempts.ValueInt64()
	}
	return descriptor.SlotSpec{
		Name:        s.Name.ValueString(),
		Constraint:  descriptor.SlotConstraint(constraint),
		BuiltinType: s.SlotType.ValueString(),
		Prompt: descriptor.Prompt{
			Messages:    descriptor.PlainText(s.Prompt.ValueString()),
			MaxAttempts: int(maxAttempts),
		},
		Priority: int(s.Priority.ValueInt64()),
	}
}
