package provider

import "github.com/hashicorp/terraform-plugin-framework/types"

// ProviderModel maps the provider schema to a Go struct.
type ProviderModel struct {
	Region          types.String `tfsdk:"region"`
	Profile         types.String `tfsdk:"profile"`
	Endpoint        types.String `tfsdk:"endpoint"`
	Backend         types.String `tfsdk:"backend"`
	MemoryNamespace types.String `tfsdk:"memory_namespace"`
}
