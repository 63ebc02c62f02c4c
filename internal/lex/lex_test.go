package lex

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"

	"github.com/dimbot/lexctl/internal/catalog"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
)

var testHook = descriptor.FulfillmentHook{
	URI:            "arn:aws:lambda:us-east-1:123456789012:function:update_service_data_table",
	MessageVersion: "1.0",
}

// ---------------------------------------------------------------------------
// Payload translation
// ---------------------------------------------------------------------------

func TestBotInput_IntentsInOrderAtLatest(t *testing.T) {
	confirmed := []string{"OrderTaxi", "OrderFood", "OrderHomeCare", "OrderCleaning"}
	in := BotInput(catalog.Bot("dimbot", "en-US", false, confirmed))

	var names []string
	for _, it := range in.Intents {
		names = append(names, aws.ToString(it.IntentName))
		if v := aws.ToString(it.IntentVersion); v != "$LATEST" {
			t.Errorf("intent %s version = %q, want $LATEST", aws.ToString(it.IntentName), v)
		}
	}
	if !reflect.DeepEqual(names, confirmed) {
		t.Errorf("payload intents = %v, want %v", names, confirmed)
	}
	if in.Locale != types.LocaleEnUs {
		t.Errorf("Locale = %q, want en-US", in.Locale)
	}
	if aws.ToBool(in.ChildDirected) {
		t.Error("ChildDirected = true, want false")
	}
	if got := aws.ToString(in.AbortStatement.Messages[0].Content); got != "Sorry I can't fulfill your request." {
		t.Errorf("abort statement = %q", got)
	}
}

func TestIntentInput(t *testing.T) {
	spec := catalog.OrderIntents(testHook)[0]
	in := IntentInput(spec)

	if aws.ToString(in.Name) != "OrderTaxi" {
		t.Errorf("Name = %q", aws.ToString(in.Name))
	}
	if !reflect.DeepEqual(in.SampleUtterances, spec.SampleUtterances) {
		t.Errorf("SampleUtterances = %v", in.SampleUtterances)
	}
	if len(in.Slots) != 8 {
		t.Fatalf("len(Slots) = %d, want 8", len(in.Slots))
	}
	first := in.Slots[0]
	if aws.ToString(first.Name) != "FirstName" || aws.ToString(first.SlotType) != "AMAZON.US_FIRST_NAME" {
		t.Errorf("first slot = %s/%s", aws.ToString(first.Name), aws.ToString(first.SlotType))
	}
	if first.SlotConstraint != types.SlotConstraintRequired {
		t.Errorf("SlotConstraint = %q", first.SlotConstraint)
	}
	if aws.ToInt32(first.Priority) != 1 || aws.ToInt32(first.ValueElicitationPrompt.MaxAttempts) != 5 {
		t.Errorf("priority/maxAttempts = %d/%d", aws.ToInt32(first.Priority), aws.ToInt32(first.ValueElicitationPrompt.MaxAttempts))
	}
	if first.ValueElicitationPrompt.Messages[0].ContentType != types.ContentTypePlainText {
		t.Errorf("ContentType = %q", first.ValueElicitationPrompt.Messages[0].ContentType)
	}
	if in.FulfillmentActivity.Type != types.FulfillmentActivityTypeCodeHook {
		t.Errorf("FulfillmentActivity.Type = %q", in.FulfillmentActivity.Type)
	}
	if aws.ToString(in.FulfillmentActivity.CodeHook.Uri) != testHook.URI ||
		aws.ToString(in.FulfillmentActivity.CodeHook.MessageVersion) != "1.0" {
		t.Errorf("CodeHook = %+v", in.FulfillmentActivity.CodeHook)
	}
	if in.Description != nil {
		t.Errorf("Description = %q, want nil", aws.ToString(in.Description))
	}
	if in.Checksum != nil {
		t.Error("Checksum must be unset so the put only creates")
	}
}

// ---------------------------------------------------------------------------
// Service against the in-memory API
// ---------------------------------------------------------------------------

func TestService_IntentLifecycle(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	svc := New(api)

	_, err := svc.DescribeIntent(ctx, "OrderTaxi", "$LATEST")
	if !fault.IsNotFound(err) {
		t.Fatalf("DescribeIntent on empty service = %v, want NotFound", err)
	}

	spec := catalog.OrderIntents(testHook)[0]
	created, err := svc.CreateOrUpdateIntent(ctx, spec)
	if err != nil {
		t.Fatalf("CreateOrUpdateIntent: %v", err)
	}
	if created.Name != "OrderTaxi" || created.Version != "$LATEST" || created.Checksum == "" {
		t.Errorf("created = %+v", created)
	}

	got, err := svc.DescribeIntent(ctx, "OrderTaxi", "$LATEST")
	if err != nil {
		t.Fatalf("DescribeIntent: %v", err)
	}
	if len(got.SlotNames) != 8 || got.SlotNames[7] != "Time" {
		t.Errorf("SlotNames = %v", got.SlotNames)
	}

	_, err = svc.CreateOrUpdateIntent(ctx, spec)
	if !fault.IsAlreadyExists(err) {
		t.Errorf("second put = %v, want AlreadyExists", err)
	}
}

func TestService_BotThroughAlias(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	svc := New(api)

	for _, in := range catalog.OrderIntents(testHook) {
		if _, err := svc.CreateOrUpdateIntent(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	bot := catalog.Bot("dimbot", "en-US", false, []string{"OrderTaxi", "OrderFood"})
	if _, err := svc.CreateOrUpdateBot(ctx, bot); err != nil {
		t.Fatalf("CreateOrUpdateBot: %v", err)
	}

	if _, err := svc.DescribeBot(ctx, "dimbot", "dim"); !fault.IsNotFound(err) {
		t.Fatalf("DescribeBot through missing alias = %v, want NotFound", err)
	}

	alias, err := svc.CreateBotAlias(ctx, descriptor.AliasSpec{Name: "dim", BotName: "dimbot", BotVersion: "$LATEST"})
	if err != nil {
		t.Fatalf("CreateBotAlias: %v", err)
	}
	if alias.BotVersion != "$LATEST" {
		t.Errorf("alias.BotVersion = %q", alias.BotVersion)
	}

	st, err := svc.DescribeBot(ctx, "dimbot", "dim")
	if err != nil {
		t.Fatalf("DescribeBot through alias: %v", err)
	}
	want := []descriptor.IntentRef{{Name: "OrderTaxi", Version: "$LATEST"}, {Name: "OrderFood", Version: "$LATEST"}}
	if !reflect.DeepEqual(st.Intents, want) {
		t.Errorf("Intents = %+v, want %+v", st.Intents, want)
	}

	if _, err := svc.DescribeBotAlias(ctx, "dim", "dimbot"); err != nil {
		t.Errorf("DescribeBotAlias: %v", err)
	}
	if _, err := svc.CreateBotAlias(ctx, descriptor.AliasSpec{Name: "dim", BotName: "dimbot", BotVersion: "$LATEST"}); !fault.IsAlreadyExists(err) {
		t.Errorf("second alias put = %v, want AlreadyExists", err)
	}
}

func TestService_ClassifiesInjectedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want fault.Kind
	}{
		{"throttled", &types.LimitExceededException{Message: aws.String("slow down")}, fault.Transient},
		{"internal", &types.InternalFailureException{Message: aws.String("oops")}, fault.Transient},
		{"bad request", &types.BadRequestException{Message: aws.String("bad")}, fault.Validation},
		{"unclassified", errors.New("dial tcp: connection refused"), fault.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewMemoryAPI()
			api.FailOn(OpGetBot, tt.err)

			_, err := New(api).DescribeBot(context.Background(), "dimbot", "dim")
			if got := fault.Classify(err); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("classified error does not wrap the original")
			}
			if api.Calls(OpGetBot) != 1 {
				t.Errorf("GetBot calls = %d, want 1", api.Calls(OpGetBot))
			}
		})
	}
}

func TestMemoryRegistry(t *testing.T) {
	ResetMemoryAPIs()
	t.Cleanup(ResetMemoryAPIs)

	a := GetOrCreateMemoryAPI("acc")
	if GetOrCreateMemoryAPI("acc") != a {
		t.Error("expected the same fake for the same namespace")
	}
	if GetOrCreateMemoryAPI("other") == a {
		t.Error("expected distinct fakes per namespace")
	}
	ResetMemoryAPIs()
	if GetOrCreateMemoryAPI("acc") == a {
		t.Error("expected a fresh fake after reset")
	}
}
