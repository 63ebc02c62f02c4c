package permission

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/providerdata"
)

// statementIDPattern matches statement ids accepted by AddPermission.
var statementIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Compile-time interface checks.
var (
	_ resource.Resource              = &InvokePermissionResource{}
	_ resource.ResourceWithConfigure = &InvokePermissionResource{}
)

// NewInvokePermissionResource returns a new resource.Resource for the
// lexctl_invoke_permission type.
func NewInvokePermissionResource() resource.Resource {
	return &InvokePermissionResource{}
}

// InvokePermissionResource implements the lexctl_invoke_permission
// Terraform resource. The function policy is checked for the statement id
// before granting, and a grant that conflicts with an existing statement is
// treated as success.
type InvokePermissionResource struct {
	providerData *providerdata.ProviderData
}

func (r *InvokePermissionResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_invoke_permission"
}

func (r *InvokePermissionResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Grants a service principal permission to invoke a Lambda function when the function policy does not already carry the statement. Destroying the resource leaves the statement in place.",

		Attributes: map[string]schema.Attribute{
			"function_name": schema.StringAttribute{
				MarkdownDescription: "Name or ARN of the Lambda function.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.LengthBetween(1, 140),
				},
			},
			"statement_id": schema.StringAttribute{
				MarkdownDescription: "Statement id, unique within the function policy.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.LengthBetween(1, 100),
					stringvalidator.RegexMatches(statementIDPattern, "must contain only letters, digits, underscores, periods and hyphens"),
				},
			},
			"principal": schema.StringAttribute{
				MarkdownDescription: "Principal allowed to invoke the function. Defaults to `\"lex.amazonaws.com\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(descriptor.DefaultPrincipal),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"action": schema.StringAttribute{
				MarkdownDescription: "Action granted. Defaults to `\"lambda:InvokeFunction\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(descriptor.DefaultAction),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Reconcile key of the statement, `permission/<function_name>@<statement_id>`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"outcome": schema.StringAttribute{
				MarkdownDescription: "`created`, `exists` or `conceded`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

func (r *InvokePermissionResource) Configure(_ context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	pd, err := providerdata.From(req.ProviderData)
	if err != nil {
		resp.Diagnostics.AddError("Unexpected Resource Configure Type", err.Error())
		return
	}
	r.providerData = pd
}

func (r *InvokePermissionResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var plan InvokePermissionResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		resp.Diagnostics.AddError("Provider Not Configured", "The lexctl provider must be configured before lexctl_invoke_permission can be created.")
		return
	}

	spec := plan.toSpec()
	if err := spec.Validate(); err != nil {
		resp.Diagnostics.AddError("Invalid Invoke Permission", err.Error())
		return
	}

	res, err := r.providerData.Permission.Ensure(ctx, spec)
	if err != nil {
		resp.Diagnostics.AddError("Grant Invoke Permission Failed", fmt.Sprintf("Failed to ensure statement %q on %q: %s", spec.StatementID, spec.FunctionName, err))
		return
	}

	plan.ID = types.StringValue(permission.Key(spec).String())
	plan.Outcome = types.StringValue(string(res.Outcome))

	tflog.Info(ctx, "ensured invoke permission", map[string]interface{}{
		"function_name": spec.FunctionName,
		"statement_id":  spec.StatementID,
		"outcome":       string(res.Outcome),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
}

func (r *InvokePermissionResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var state InvokePermissionResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		return
	}

	fn, sid := state.FunctionName.ValueString(), state.StatementID.ValueString()
	if _, err := r.providerData.Permission.DescribeStatement(ctx, fn, sid); err != nil {
		if fault.IsNotFound(err) {
			tflog.Info(ctx, "invoke permission statement not found, removing from state", map[string]interface{}{
				"function_name": fn,
				"statement_id":  sid,
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError("Read Invoke Permission Failed", fmt.Sprintf("Failed to read statement %q on %q: %s", sid, fn, err))
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}

func (r *InvokePermissionResource) Update(_ context.Context, _ resource.UpdateRequest, resp *resource.UpdateResponse) {
	resp.Diagnostics.AddError(
		"Update Not Supported",
		"lexctl_invoke_permission does not support in-place updates. Every argument forces replacement.",
	)
}

// Delete removes the statement from state only.
func (r *InvokePermissionResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var state InvokePermissionResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Info(ctx, "forgetting invoke permission; the statement is left in place", map[string]interface{}{
		"function_name": state.FunctionName.ValueString(),
		"statement_id":  state.StatementID.ValueString(),
	})
}
