// Package acctest holds shared helpers for the provider acceptance tests.
package acctest

import (
	"fmt"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"

	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/provider"
)

// FunctionARN is the fulfillment function referenced by test intents.
const FunctionARN = "arn:aws:lambda:us-east-1:123456789012:function:update_service_data_table"

// TestProtoV6ProviderFactories is a map of provider factory functions
// suitable for use with the terraform-plugin-testing framework.
var TestProtoV6ProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"lexctl": providerserver.NewProtocol6WithError(provider.New("test")()),
}

// SetupTest resets the in-memory service fakes so each test starts with a
// clean slate.
func SetupTest(t *testing.T) {
	t.Helper()
	lex.ResetMemoryAPIs()
	permission.ResetMemoryAPIs()
	t.Cleanup(func() {
		lex.ResetMemoryAPIs()
		permission.ResetMemoryAPIs()
	})
}

// ProviderConfigMemory returns an HCL snippet that configures the lexctl
// provider against the in-memory fakes registered under namespace.
func ProviderConfigMemory(namespace string) string {
	return fmt.Sprintf(`
provider "lexctl" {
  backend          = "memory"
  memory_namespace = %q
}
`, namespace)
}

// IntentConfig returns an HCL lexctl_intent resource with a single slot.
func IntentConfig(label, name string, utterances ...string) string {
	var list string
	for i, u := range utterances {
		if i > 0 {
			list += ", "
		}
		list += fmt.Sprintf("%q", u)
	}
	return fmt.Sprintf(`
resource "lexctl_intent" %q {
  name                 = %q
  sample_utterances    = [%s]
  confirmation_prompt  = ["Shall I place the order?"]
  rejection_statement  = ["Okay, I will not place the order."]
  conclusion_statement = ["Your order is placed."]
  fulfillment_uri      = %q

  slot {
    name      = "FirstName"
    slot_type = "AMAZON.US_FIRST_NAME"
    prompt    = "What is your first name?"
    priority  = 1
  }
}
`, label, name, list, FunctionARN)
}
