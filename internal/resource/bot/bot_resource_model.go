package bot

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/dimbot/lexctl/internal/descriptor"
)

const defaultLocale = "en-US"

// BotResourceModel maps the lexctl_bot resource schema to a Go struct.
type BotResourceModel struct {
	// Required
	Name           types.String `tfsdk:"name"`
	Intents        types.List   `tfsdk:"intents"` // List of intent names
	AbortStatement types.List   `tfsdk:"abort_statement"`

	// Optional
	Locale        types.String `tfsdk:"locale"`
	ChildDirected types.Bool   `tfsdk:"child_directed"`
	IntentVersion types.String `tfsdk:"intent_version"`

	// Computed
	ID       types.String `tfsdk:"id"`
	Status   types.String `tfsdk:"status"`
	Checksum types.String `tfsdk:"checksum"`
	Outcome  types.String `tfsdk:"outcome"`
}

// toSpec converts the model into a bot descriptor. Intents are referenced
// in the order listed, all at intent_version.
func (m *BotResourceModel) toSpec(ctx context.Context) (descriptor.BotSpec, diag.Diagnostics) {
	var diags diag.Diagnostics

	spec := descriptor.BotSpec{
		Name:   m.Name.ValueString(),
		Locale: defaultLocale,
	}
	if !m.Locale.IsNull() && !m.Locale.IsUnknown() {
		spec.Locale = m.Locale.ValueString()
	}
	if !m.ChildDirected.IsNull() && !m.ChildDirected.IsUnknown() {
		spec.ChildDirected = m.ChildDirected.ValueBool()
	}
	version := descriptor.LatestVersion
	if !m.IntentVersion.IsNull() && !m.IntentVersion.IsUnknown() {
		version = m.IntentVersion.ValueString()
	}

	var names, abort []string
	diags.Append(m.Intents.ElementsAs(ctx, &names, false)...)
	diags.Append(m.AbortStatement.ElementsAs(ctx, &abort, false)...)
	if diags.HasError() {
		return spec, diags
	}

	for _, n := range names {
		spec.Intents = append(spec.Intents, descriptor.IntentRef{Name: n, Version: version})
	}
	spec.AbortStatement = descriptor.PlainText(abort...)
	return spec, diags
}
