package botalias

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
	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/providerdata"
)

var namePattern = regexp.MustCompile(`^([A-Za-z]_?)+$`)

// Compile-time interface checks.
var (
	_ resource.Resource              = &BotAliasResource{}
	_ resource.ResourceWithConfigure = &BotAliasResource{}
)

// NewBotAliasResource returns a new resource.Resource for the
// lexctl_bot_alias type.
func NewBotAliasResource() resource.Resource {
	return &BotAliasResource{}
}

// BotAliasResource implements the lexctl_bot_alias Terraform resource.
type BotAliasResource struct {
	providerData *providerdata.ProviderData
}

func (r *BotAliasResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_bot_alias"
}

func (r *BotAliasResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Creates an alias pointing at a bot version when the alias does not already exist. Destroying the resource leaves the alias in place.",

		Attributes: map[string]schema.Attribute{
			"name": schema.StringAttribute{
				MarkdownDescription: "Alias name.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.LengthBetween(1, 100),
					stringvalidator.RegexMatches(namePattern, "must contain only letters, optionally separated by single underscores"),
				},
			},
			"bot_name": schema.StringAttribute{
				MarkdownDescription: "Name of the bot the alias belongs to. The bot must already exist.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"bot_version": schema.StringAttribute{
				MarkdownDescription: "Bot version the alias points at. Defaults to `\"$LATEST\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(descriptor.LatestVersion),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Reconcile key of the alias, `alias/<name>@<bot_name>`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"checksum": schema.StringAttribute{
				MarkdownDescription: "Checksum of the alias, empty when another writer created it first.",
				Computed:            true,
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

func (r *BotAliasResource) Configure(_ context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	pd, err := providerdata.From(req.ProviderData)
	if err != nil {
		resp.Diagnostics.AddError("Unexpected Resource Configure Type", err.Error())
		return
	}
	r.providerData = pd
}

func (r *BotAliasResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var plan BotAliasResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		resp.Diagnostics.AddError("Provider Not Configured", "The lexctl provider must be configured before lexctl_bot_alias can be created.")
		return
	}

	spec := plan.toSpec()
	if err := spec.Validate(); err != nil {
		resp.Diagnostics.AddError("Invalid Bot Alias", err.Error())
		return
	}

	res, err := r.providerData.Lex.EnsureAlias(ctx, spec)
	if err != nil {
		resp.Diagnostics.AddError("Ensure Bot Alias Failed", fmt.Sprintf("Failed to ensure alias %q of bot %q: %s", spec.Name, spec.BotName, err))
		return
	}

	plan.ID = types.StringValue(lex.AliasKey(spec.Name, spec.BotName).String())
	plan.Checksum = types.StringValue(res.State.Checksum)
	plan.Outcome = types.StringValue(string(res.Outcome))

	tflog.Info(ctx, "ensured bot alias", map[string]interface{}{
		"alias":   spec.Name,
		"bot":     spec.BotName,
		"outcome": string(res.Outcome),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
}

func (r *BotAliasResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var state BotAliasResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		return
	}

	name, botName := state.Name.ValueString(), state.BotName.ValueString()
	st, err := r.providerData.Lex.DescribeBotAlias(ctx, name, botName)
	if err != nil {
		if fault.IsNotFound(err) {
			tflog.Info(ctx, "bot alias not found, removing from state", map[string]interface{}{
				"alias": name,
				"bot":   botName,
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError("Read Bot Alias Failed", fmt.Sprintf("Failed to read alias %q of bot %q: %s", name, botName, err))
		return
	}

	state.Checksum = types.StringValue(st.Checksum)

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}

func (r *BotAliasResource) Update(_ context.Context, _ resource.UpdateRequest, resp *resource.UpdateResponse) {
	resp.Diagnostics.AddError(
		"Update Not Supported",
		"lexctl_bot_alias does not support in-place updates. Every argument forces replacement.",
	)
}

// Delete removes the alias from state only.
func (r *BotAliasResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var state BotAliasResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Info(ctx, "forgetting bot alias; the service resource is left in place", map[string]interface{}{
		"alias": state.Name.ValueString(),
		"bot":   state.BotName.ValueString(),
	})
}
