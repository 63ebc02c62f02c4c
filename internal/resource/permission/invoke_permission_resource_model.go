package permission

import (
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/dimbot/lexctl/internal/descriptor"
)

// InvokePermissionResourceModel maps the lexctl_invoke_permission resource
// schema to a Go struct.
type InvokePermissionResourceModel struct {
	FunctionName types.String `tfsdk:"function_name"`
	StatementID  types.String `tfsdk:"statement_id"`
	Principal    types.String `tfsdk:"principal"`
	Action       types.String `tfsdk:"action"`

	// Computed
	ID      types.String `tfsdk:"id"`
	Outcome types.String `tfsdk:"outcome"`
}

func (m *InvokePermissionResourceModel) toSpec() descriptor.PermissionSpec {
	spec := descriptor.PermissionSpec{
		FunctionName: m.FunctionName.ValueString(),
		StatementID:  m.StatementID.ValueString(),
		Principal:    descriptor.DefaultPrincipal,
		Action:       descriptor.DefaultAction,
	}
	if !m.Principal.IsNull() && !m.Principal.IsUnknown() {
		spec.Principal = m.Principal.ValueString()
	}
	if !m.Action.IsNull() && !m.Action.IsUnknown() {
		spec.Action = m.Action.ValueString()
	}
	return spec
}
