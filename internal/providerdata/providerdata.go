// Package providerdata defines the ProviderData struct that is shared between
// the provider and its resources. It is separated into its own package to
// avoid import cycles (provider -> resource -> provider).
package providerdata

import (
	"fmt"

	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
)

// ProviderData is configured during provider.Configure() and shared with
// resources via resp.ResourceData.
type ProviderData struct {
	Region     string
	Lex        *lex.Service
	Permission *permission.Service
}

// From asserts the value handed to a resource's Configure. A nil value
// means the provider is not configured yet and yields nil without error.
func From(v any) (*ProviderData, error) {
	if v == nil {
		return nil, nil
	}
	pd, ok := v.(*ProviderData)
	if !ok {
		return nil, fmt.Errorf("expected *providerdata.ProviderData, got: %T. Please report this issue to the provider developers", v)
	}
	return pd, nil
}
