package provider

import "github.com/dimbot/lexctl/internal/providerdata"

// ProviderData is an alias for the shared ProviderData type. The canonical
// definition lives in the providerdata package to break the import cycle
// with resource packages.
type ProviderData = providerdata.ProviderData
