package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/dimbot/lexctl/internal/awsclient"
	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/resource/bot"
	"github.com/dimbot/lexctl/internal/resource/botalias"
	"github.com/dimbot/lexctl/internal/resource/intent"
	invokepermission "github.com/dimbot/lexctl/internal/resource/permission"
)

// Backends selectable with the backend attribute.
const (
	BackendAWS    = "aws"
	BackendMemory = "memory"
)

// DefaultMemoryNamespace is used when backend is memory and
// memory_namespace is omitted.
const DefaultMemoryNamespace = "default"

// Ensure LexProvider satisfies the provider.Provider interface.
var _ provider.Provider = &LexProvider{}

// LexProvider implements the lexctl Terraform provider.
type LexProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and run locally.
	version string
}

// New returns a factory function that creates a new LexProvider instance
// for the given version string.
func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &LexProvider{
			version: version,
		}
	}
}

// Metadata returns the provider type name.
func (p *LexProvider) Metadata(_ context.Context, _ provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "lexctl"
	resp.Version = p.version
}

// Schema returns the provider schema.
func (p *LexProvider) Schema(_ context.Context, _ provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "The lexctl provider creates Lex intents, bots, bot aliases and Lambda invoke permissions when they do not already exist. Existing resources are never updated or deleted.",
		Attributes: map[string]schema.Attribute{
			"region": schema.StringAttribute{
				MarkdownDescription: "AWS region. Falls back to the standard AWS configuration chain when omitted.",
				Optional:            true,
			},
			"profile": schema.StringAttribute{
				MarkdownDescription: "Shared configuration profile used to resolve credentials.",
				Optional:            true,
			},
			"endpoint": schema.StringAttribute{
				MarkdownDescription: "Override the Lex and Lambda API endpoint. Useful for testing against a local emulator.",
				Optional:            true,
			},
			"backend": schema.StringAttribute{
				MarkdownDescription: "Service backend. `\"aws\"` calls the real APIs; `\"memory\"` uses in-process fakes. Defaults to `\"aws\"`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.OneOf(BackendAWS, BackendMemory),
				},
			},
			"memory_namespace": schema.StringAttribute{
				MarkdownDescription: "Namespace of the in-process fakes when `backend` is `\"memory\"`. Providers sharing a namespace see the same resources. Defaults to `\"default\"`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
					stringvalidator.AlsoRequires(path.MatchRoot("backend")),
				},
			},
		},
	}
}

// Configure resolves the backend and stores the service handles in
// ProviderData for downstream resources.
func (p *LexProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var config ProviderModel
	resp.Diagnostics.Append(req.Config.Get(ctx, &config)...)
	if resp.Diagnostics.HasError() {
		return
	}

	backend := BackendAWS
	if !config.Backend.IsNull() && !config.Backend.IsUnknown() {
		backend = config.Backend.ValueString()
	}

	clientConfig := awsclient.Config{}
	if !config.Region.IsNull() && !config.Region.IsUnknown() {
		clientConfig.Region = config.Region.ValueString()
	}
	if !config.Profile.IsNull() && !config.Profile.IsUnknown() {
		clientConfig.Profile = config.Profile.ValueString()
	}
	if !config.Endpoint.IsNull() && !config.Endpoint.IsUnknown() {
		clientConfig.Endpoint = config.Endpoint.ValueString()
	}

	pd := &ProviderData{Region: clientConfig.Region}

	switch backend {
	case BackendMemory:
		namespace := DefaultMemoryNamespace
		if !config.MemoryNamespace.IsNull() && !config.MemoryNamespace.IsUnknown() {
			namespace = config.MemoryNamespace.ValueString()
		}
		pd.Lex = lex.New(lex.GetOrCreateMemoryAPI(namespace))
		pd.Permission = permission.New(permission.GetOrCreateMemoryAPI(namespace))

		tflog.Debug(ctx, "configured memory backend", map[string]interface{}{
			"namespace": namespace,
		})

	case BackendAWS:
		lexSvc, err := lex.NewFromConfig(ctx, clientConfig)
		if err != nil {
			resp.Diagnostics.AddError(
				"AWS Configuration Failed",
				fmt.Sprintf("Failed to configure the Lex client: %s", err),
			)
			return
		}
		permSvc, err := permission.NewFromConfig(ctx, clientConfig)
		if err != nil {
			resp.Diagnostics.AddError(
				"AWS Configuration Failed",
				fmt.Sprintf("Failed to configure the Lambda client: %s", err),
			)
			return
		}
		pd.Lex = lexSvc
		pd.Permission = permSvc

	default:
		resp.Diagnostics.AddError(
			"Invalid Backend",
			fmt.Sprintf("backend must be %q or %q, got %q.", BackendAWS, BackendMemory, backend),
		)
		return
	}

	resp.DataSourceData = pd
	resp.ResourceData = pd
}

// Resources returns the set of resource types supported by this provider.
func (p *LexProvider) Resources(_ context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		intent.NewIntentResource,
		bot.NewBotResource,
		botalias.NewBotAliasResource,
		invokepermission.NewInvokePermissionResource,
	}
}

// DataSources returns the set of data source types supported by this provider.
func (p *LexProvider) DataSources(_ context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{}
}
