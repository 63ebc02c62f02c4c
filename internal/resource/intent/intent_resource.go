package intent

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64default"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64planmodifier"
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

// namePattern matches intent and slot names accepted by the service:
// letters, optionally separated by single underscores.
var namePattern = regexp.MustCompile(`^([A-Za-z]_?)+$`)

// Compile-time interface checks.
var (
	_ resource.Resource              = &IntentResource{}
	_ resource.ResourceWithConfigure = &IntentResource{}
)

// NewIntentResource returns a new resource.Resource for the lexctl_intent
// type.
func NewIntentResource() resource.Resource {
	return &IntentResource{}
}

// IntentResource implements the lexctl_intent Terraform resource. Create
// puts the intent's $LATEST version only when it does not exist; an
// existing intent is adopted as-is. Every argument forces replacement and
// destroy only forgets the intent.
type IntentResource struct {
	providerData *providerdata.ProviderData
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

func (r *IntentResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_intent"
}

// --------------------------------------------------------------------------
// Schema
// --------------------------------------------------------------------------

func (r *IntentResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Creates a Lex intent with a Lambda fulfillment code hook when it does not already exist. An existing intent is adopted without comparing its configuration. Destroying the resource leaves the intent in place.",

		Attributes: map[string]schema.Attribute{
			// ---- Required ----
			"name": schema.StringAttribute{
				MarkdownDescription: "Intent name. Letters, optionally separated by single underscores.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
				Validators: []validator.String{
					stringvalidator.LengthBetween(1, 100),
					stringvalidator.RegexMatches(namePattern, "must contain only letters, optionally separated by single underscores"),
				},
			},
			"sample_utterances": schema.ListAttribute{
				MarkdownDescription: "Phrases that trigger the intent.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
					listvalidator.UniqueValues(),
					listvalidator.ValueStringsAre(stringvalidator.LengthAtLeast(1)),
				},
			},
			"confirmation_prompt": schema.ListAttribute{
				MarkdownDescription: "Plain-text messages asking the user to confirm the intent.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
			},
			"rejection_statement": schema.ListAttribute{
				MarkdownDescription: "Plain-text messages sent when the user declines the confirmation prompt.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
			},
			"conclusion_statement": schema.ListAttribute{
				MarkdownDescription: "Plain-text messages sent after fulfillment.",
				Required:            true,
				ElementType:         types.StringType,
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
			},
			"fulfillment_uri": schema.StringAttribute{
				MarkdownDescription: "ARN of the Lambda function that fulfills the intent.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},

			// ---- Optional ----
			"description": schema.StringAttribute{
				MarkdownDescription: "Free-form description of the intent.",
				Optional:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"confirmation_max_attempts": schema.Int64Attribute{
				MarkdownDescription: "Number of times the confirmation prompt is repeated. Defaults to `5`.",
				Optional:            true,
				Computed:            true,
				Default:             int64default.StaticInt64(descriptor.MaxPromptAttempts),
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.RequiresReplace(),
				},
				Validators: []validator.Int64{
					int64validator.Between(1, descriptor.MaxPromptAttempts),
				},
			},
			"fulfillment_message_version": schema.StringAttribute{
				MarkdownDescription: "Version of the request-response contract with the fulfillment function. Defaults to `\"1.0\"`.",
				Optional:            true,
				Computed:            true,
				Default:             stringdefault.StaticString(defaultMessageVersion),
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},

			// ---- Computed ----
			"id": schema.StringAttribute{
				MarkdownDescription: "Reconcile key of the intent, `intent/<name>@$LATEST`.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"version": schema.StringAttribute{
				MarkdownDescription: "Intent version reported by the service.",
				Computed:            true,
			},
			"checksum": schema.StringAttribute{
				MarkdownDescription: "Checksum of the intent's $LATEST version.",
				Computed:            true,
			},
			"outcome": schema.StringAttribute{
				MarkdownDescription: "`created` when this resource created the intent, `exists` when it adopted an existing one.",
				Computed:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
		},

		Blocks: map[string]schema.Block{
			"slot": schema.ListNestedBlock{
				MarkdownDescription: "Values the intent elicits from the user before fulfillment.",
				PlanModifiers: []planmodifier.List{
					listplanmodifier.RequiresReplace(),
				},
				NestedObject: schema.NestedBlockObject{
					Attributes: map[string]schema.Attribute{
						"name": schema.StringAttribute{
							MarkdownDescription: "Slot name, unique within the intent.",
							Required:            true,
							Validators: []validator.String{
								stringvalidator.RegexMatches(namePattern, "must contain only letters, optionally separated by single underscores"),
							},
						},
						"slot_type": schema.StringAttribute{
							MarkdownDescription: "Built-in slot type, for example `AMAZON.US_FIRST_NAME`.",
							Required:            true,
						},
						"constraint": schema.StringAttribute{
							MarkdownDescription: "Either `\"Required\"` or `\"Optional\"`. Defaults to `\"Required\"`.",
							Optional:            true,
							Validators: []validator.String{
								stringvalidator.OneOf(string(descriptor.SlotRequired), string(descriptor.SlotOptional)),
							},
						},
						"prompt": schema.StringAttribute{
							MarkdownDescription: "Plain-text question that elicits the slot value.",
							Required:            true,
							Validators: []validator.String{
								stringvalidator.LengthAtLeast(1),
							},
						},
						"max_attempts": schema.Int64Attribute{
							MarkdownDescription: "Number of times the prompt is repeated. Defaults to `5`.",
							Optional:            true,
							Validators: []validator.Int64{
								int64validator.Between(1, descriptor.MaxPromptAttempts),
							},
						},
						"priority": schema.Int64Attribute{
							MarkdownDescription: "Elicitation order. Must be unique within the intent.",
							Required:            true,
							Validators: []validator.Int64{
								int64validator.AtLeast(1),
							},
						},
					},
				},
			},
		},
	}
}

// --------------------------------------------------------------------------
// Configure
// --------------------------------------------------------------------------

func (r *IntentResource) Configure(_ context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
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

func (r *IntentResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var plan IntentResourceModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		resp.Diagnostics.AddError("Provider Not Configured", "The lexctl provider must be configured before lexctl_intent can be created.")
		return
	}

	spec, diags := plan.toSpec(ctx)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}
	if err := spec.Validate(); err != nil {
		resp.Diagnostics.AddError("Invalid Intent", err.Error())
		return
	}

	res, err := r.providerData.Lex.EnsureIntent(ctx, spec)
	if err != nil {
		resp.Diagnostics.AddError("Ensure Intent Failed", fmt.Sprintf("Failed to ensure intent %q: %s", spec.Name, err))
		return
	}

	plan.ID = types.StringValue(lex.IntentKey(spec.Name, descriptor.LatestVersion).String())
	plan.Version = types.StringValue(res.State.Version)
	plan.Checksum = types.StringValue(res.State.Checksum)
	plan.Outcome = types.StringValue(string(res.Outcome))

	tflog.Info(ctx, "ensured intent", map[string]interface{}{
		"intent":  spec.Name,
		"outcome": string(res.Outcome),
	})

	resp.Diagnostics.Append(resp.State.Set(ctx, &plan)...)
}

// --------------------------------------------------------------------------
// Read
// --------------------------------------------------------------------------

func (r *IntentResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var state IntentResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if r.providerData == nil {
		return
	}

	name := state.Name.ValueString()
	st, err := r.providerData.Lex.DescribeIntent(ctx, name, descriptor.LatestVersion)
	if err != nil {
		if fault.IsNotFound(err) {
			tflog.Info(ctx, "intent not found, removing from state", map[string]interface{}{
				"intent": name,
			})
			resp.State.RemoveResource(ctx)
			return
		}
		resp.Diagnostics.AddError("Read Intent Failed", fmt.Sprintf("Failed to read intent %q: %s", name, err))
		return
	}

	// Only service-assigned values are refreshed; configuration drift is
	// not detected.
	state.Version = types.StringValue(st.Version)
	state.Checksum = types.StringValue(st.Checksum)

	resp.Diagnostics.Append(resp.State.Set(ctx, &state)...)
}

// --------------------------------------------------------------------------
// Update (not supported -- every argument forces replacement)
// --------------------------------------------------------------------------

func (r *IntentResource) Update(_ context.Context, _ resource.UpdateRequest, resp *resource.UpdateResponse) {
	resp.Diagnostics.AddError(
		"Update Not Supported",
		"lexctl_intent does not support in-place updates. Every argument forces replacement.",
	)
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

// Delete removes the intent from state only. lexctl never deletes service
// resources.
func (r *IntentResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var state IntentResourceModel
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	tflog.Info(ctx, "forgetting intent; the service resource is left in place", map[string]interface{}{
		"intent": state.Name.ValueString(),
	})
}
