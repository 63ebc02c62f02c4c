package bot

import (
	"context"
	"fmt"
	"regexp"

	lextypes "github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"
	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/booldefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/boolplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/listplanmodifier"
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

// namePattern matches bot names: letters, optionally separated by single
// underscores.
var namePattern = regexp.MustCompile(`^([A-Za-z]_?)+$`)

// Compile-time interface checks.
var (
	_ resource.Resource              = &BotResource{}
	_ resource.ResourceWithConfigure = &BotResource{}
)

// NewBotResource returns a new resource.Resource for the lexctl_bot type.
func NewBotResource() resource.Resource {
	return &BotResource{}
}

// BotResource implements the lexctl_bot Terraform resource. The bot is
// looked up at $LATEST and put only when missing.
type BotResource struct {
	providerData *providerdata.ProviderData
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

func (r *BotResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_bot"
}

// --------------------------------------------------------------------------
// Schema
// --------------------------------------------------------------------------

func (r *BotResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Creates a Lex bot referencing existing intents when the bot does not already exist. An existing bot is adopted without comparing its configuration. Destroying the resource leaves the bot in place.",

		Attributes: map[string]schema.Attribute{
			// ---- Required ----
			"name": schema.StringAttribute{
				MarkdownDescription: "Bot name. Letters, optionally separated by single underscores.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.LengthBetween(2, 50),
					stringvalidator.RegexMatches(namePattern, "must contain only letters, optionally separated by single underscores"),
				},
			},
			"intents": schema.ListAttribute{
				MarkdownDescription: "Names of the intents the bot serves, in order. The intents must already exist.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
					listvalidator.UniqueValues(),
				},
			},
			"abort_statement": schema.ListAttribute{
				MarkdownDescription: "Plain-text messages sent when the bot gives up on the conversation.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
			},

			// ---- Optional ----
			"locale": schema.StringAttribute{
				MarkdownDescription: "Bot locale. Defaults to `\"en-US\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(defaultLocale),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.OneOf(locales()...),
				},
			},
			"child_directed": schema.BoolAttribute{
				MarkdownDescription: "Whether the bot is directed at children under 13. Defaults to `false`.",
				Optional:            true,
				Computed:            true,
				Default:             booldefault.StaticBool(false),
				PlanModifiers: []planmodifier.Bool{
					boolplanmodifier.RequiresReplace(),
				},
			},
			"intent_version": schema.StringAttribute{
				MarkdownDescription: "Version of every referenced intent. Defaults to `\"$LATEST\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(descriptor.LatestVersion),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},

			// ---- Computed ----
			"id": schema.StringAttribute{
				MarkdownDescription: "Reconcile key of the bot, `bot/<name>@$LATEST`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"status": schema.StringAttribute{
				MarkdownDescription: "Build status reported by the service.",
				Computed:            true,
			},
			"checksum": schema.StringAttribute{
				MarkdownDescription: "Checksum of the bot's $LATEST version.",
				Computed:            true,
			},
			"outcome": schema.StringAttribute{
				MarkdownDescription: "`created` when this resource created the bot, `exists` when it adopted an existing one, `conceded` when another writer created it first.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},
	}
}

// locales lists every locale the SDK knows.
func locales() []string {
	values := lextypes.Locale("").Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// --------------------------------------------------------------------------
// Configure
// --------------------------------------------------------------------------

func (r *BotResource) Configure(_ context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	pd, err := providerdata.From(req.ProviderData)
	if err != nil {
		resp.Diagnostics.AddError("Unexpected Resource Configure Type", err.Error())
		return
	}
	r.providerData = pd
}

// --------------------------------------------------------------------------
// Create
// --------------------------------------------------------------------------

func (r *BotResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var plan BotResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		resp.Diagnostics.AddError("Provider Not Configured", "The lexctl provider must be configured before lexctl_bot can be created.")
		return
	}

	spec, diags := plan.toSpec(ctx)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}
	if err := spec.Validate(); err != nil {
		resp.Diagnostics.AddError("Invalid Bot", err.Error())
		return
	}

	res, err := r.providerData.Lex.EnsureBot(ctx, spec, descriptor.LatestVersion)
	if err != nil {
		resp.Diagnostics.AddError("Ensure Bot Failed", fmt.Sprintf("Failed to ensure bot %q: %s", spec.Name, err))
		return
	}

	plan.ID = types.StringValue(lex.BotKey(spec.Name, descriptor.LatestVersion).String())
	plan.Status = types.StringValue(res.State.Status)
	plan.Checksum = types.StringValue(res.State.Checksum)
	plan.Outcome = types.StringValue(string(res.Outcome))

	tflog.Info(ctx, "ensured bot", map[string]interface{}{
		"bot":     spec.Name,
		"intents": spec.IntentNames(),
		"outcome": string(res.Outcome),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
}

// --------------------------------------------------------------------------
// Read
// --------------------------------------------------------------------------

func (r *BotResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var state BotResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		return
	}

	name := state.Name.ValueString()
	st, err := r.providerData.Lex.DescribeBot(ctx, name, descriptor.LatestVersion)
	if err != nil {
		if fault.IsNotFound(err) {
			tflog.Info(ctx, "bot not found, removing from state", map[string]interface{}{
				"bot": name,
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError("Read Bot Failed", fmt.Sprintf("Failed to read bot %q: %s", name, err))
		return
	}

	state.Status = types.StringValue(st.Status)
	state.Checksum = types.StringValue(st.Checksum)

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}

// --------------------------------------------------------------------------
// Update (not supported -- every argument forces replacement)
// --------------------------------------------------------------------------

func (r *BotResource) Update(_ context.Context, _ resource.UpdateRequest, resp *resource.UpdateResponse) {
	resp.Diagnostics.AddError(
		"Update Not Supported",
		"lexctl_bot does not support in-place updates. Every argument forces replacement.",
	)
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

// Delete removes the bot from state only.
func (r *BotResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var state BotResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Info(ctx, "forgetting bot; the service resource is left in place", map[string]interface{}{
		"bot": state.Name.ValueString(),
	})
}
