package provider_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/hashicorp/terraform-plugin-testing/helper/resource"
	"github.com/hashicorp/terraform-plugin-testing/terraform"

	"github.com/dimbot/lexctl/internal/acctest"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/lex"
)

func TestAccIntent_Create(t *testing.T) {
	acctest.SetupTest(t)
	api := lex.GetOrCreateMemoryAPI("intent-create")

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: acctest.TestProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: acctest.ProviderConfigMemory("intent-create") +
					acctest.IntentConfig("taxi", "OrderTaxi", "Taxi", "Order taxi", "I want to order a taxi", "Call me a taxi"),
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "id", "intent/OrderTaxi@$LATEST"),
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "version", "$LATEST"),
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "outcome", "created"),
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "sample_utterances.#", "4"),
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "confirmation_max_attempts", "5"),
					resource.TestCheckResourceAttr("lexctl_intent.taxi", "fulfillment_message_version", "1.0"),
					resource.TestCheckResourceAttrSet("lexctl_intent.taxi", "checksum"),
					func(*terraform.State) error {
						if n := api.Calls(lex.OpPutIntent); n != 1 {
							return fmt.Errorf("expected 1 PutIntent call, got %d", n)
						}
						return nil
					},
				),
			},
		},
	})
}

func TestAccIntent_AdoptsExisting(t *testing.T) {
	acctest.SetupTest(t)
	api := lex.GetOrCreateMemoryAPI("intent-adopt")

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: acctest.TestProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				PreConfig: func() {
					_, err := lex.New(api).CreateOrUpdateIntent(context.Background(), descriptor.IntentSpec{
						Name:             "OrderFood",
						SampleUtterances: []string{"Food"},
					})
					if err != nil {
						t.Fatalf("seeding intent: %s", err)
					}
				},
				Config: acctest.ProviderConfigMemory("intent-adopt") +
					acctest.IntentConfig("food", "OrderFood", "Food", "Order food"),
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttr("lexctl_intent.food", "outcome", "exists"),
					func(*terraform.State) error {
						if n := api.Calls(lex.OpPutIntent); n != 1 {
							return fmt.Errorf("expected only the seeding PutIntent call, got %d", n)
						}
						return nil
					},
				),
			},
		},
	})
}

func TestAccIntent_DestroyLeavesIntent(t *testing.T) {
	acctest.SetupTest(t)
	api := lex.GetOrCreateMemoryAPI("intent-destroy")

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: acctest.TestProtoV6ProviderFactories,
		CheckDestroy: func(*terraform.State) error {
			if _, err := lex.New(api).DescribeIntent(context.Background(), "OrderCleaning", descriptor.LatestVersion); err != nil {
				return fmt.Errorf("expected intent to survive destroy: %w", err)
			}
			return nil
		},
		Steps: []resource.TestStep{
			{
				Config: acctest.ProviderConfigMemory("intent-destroy") +
					acctest.IntentConfig("cleaning", "OrderCleaning", "Cleaning"),
				Check: resource.TestCheckResourceAttr("lexctl_intent.cleaning", "outcome", "created"),
			},
		},
	})
}

func TestAccIntent_DuplicatePriority_Error(t *testing.T) {
	acctest.SetupTest(t)

	resource.Test(t, resource.TestCase{
		ProtoV6ProviderFactories: acctest.TestProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: acctest.ProviderConfigMemory("intent-invalid") + fmt.Sprintf(`
resource "lexctl_intent" "bad" {
  name                 = "OrderTaxi"
  sample_utterances    = ["Taxi"]
  confirmation_prompt  = ["Shall I?"]
  rejection_statement  = ["Okay."]
  conclusion_statement = ["Done."]
  fulfillment_uri      = %q

  slot {
    name      = "FirstName"
    slot_type = "AMAZON.US_FIRST_NAME"
    prompt    = "First name?"
    priority  = 1
  }

  slot {
    name      = "LastName"
    slot_type = "AMAZON.US_LAST_NAME"
    prompt    = "Last name?"
    priority  = 1
  }
}
`, acctest.FunctionARN),
				ExpectError: regexp.MustCompile("Invalid Intent"),
			},
		},
	})
}
