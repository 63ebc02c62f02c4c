package botalias

import (
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/dimbot/lexctl/internal/descriptor"
)

// BotAliasResourceModel maps the lexctl_bot_alias resource schema to a Go
// struct.
type BotAliasResourceModel struct {
	Name       types.String `tfsdk:"name"`
	BotName    types.String `tfsdk:"bot_name"`
	BotVersion types.String `tfsdk:"bot_version"`

	// Computed
	ID       types.String `tfsdk:"id"`
	Checksum types.String `tfsdk:"checksum"`
	Outcome  types.String `tfsdk:"outcome"`
}

func (m *BotAliasResourceModel) toSpec() descriptor.AliasSpec {
	version := descriptor.LatestVersion
	if !m.BotVersion.IsNull() && !m.BotVersion.IsUnknown() {
		version = m.BotVersion.ValueString()
	}
	return descriptor.AliasSpec{
		Name:       m.Name.ValueString(),
		BotName:    m.BotName.ValueString(),
		BotVersion: version,
	}
}
