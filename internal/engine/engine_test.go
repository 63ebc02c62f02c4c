package engine_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dimbot/lexctl/internal/catalog"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/engine"
	"github.com/dimbot/lexctl/internal/fault"
	"github.com/dimbot/lexctl/internal/lex"
	"github.com/dimbot/lexctl/internal/permission"
	"github.com/dimbot/lexctl/internal/reconcile"
	"github.com/dimbot/lexctl/internal/tracing"
)

var hook = descriptor.FulfillmentHook{
	URI:            "arn:aws:lambda:us-east-1:123456789012:function:update_service_data_table",
	MessageVersion: "1.0",
}

type fixture struct {
	lexAPI  *lex.MemoryAPI
	permAPI *permission.MemoryAPI
	engine  *engine.Engine
}

func newFixture() *fixture {
	f := &fixture{lexAPI: lex.NewMemoryAPI(), permAPI: permission.NewMemoryAPI()}
	f.engine = engine.New(lex.New(f.lexAPI), permission.New(f.permAPI))
	return f
}

func defaultInput() engine.Input {
	cat := catalog.Builtin(catalog.Options{
		Fulfillment: hook,
		BotName:     "dimbot",
		Locale:      "en-US",
	})
	return engine.Input{
		Permission: descriptor.PermissionSpec{
			FunctionName: "update_service_data_table",
			Principal:    descriptor.DefaultPrincipal,
			StatementID:  "ID-1",
			Action:       descriptor.DefaultAction,
		},
		Intents: cat.Intents,
		Bot:     cat.Bot,
		Alias:   "dim",
	}
}

func outcomes(res *engine.Result) map[string]reconcile.Outcome {
	m := make(map[string]reconcile.Outcome, len(res.Steps))
	for _, s := range res.Steps {
		m[s.Key.String()] = s.Outcome
	}
	return m
}

// ---------------------------------------------------------------------------
// Fresh account
// ---------------------------------------------------------------------------

func TestRun_FreshAccount(t *testing.T) {
	f := newFixture()
	res, err := f.engine.Run(context.Background(), defaultInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantKeys := []string{
		"permission/update_service_data_table@ID-1",
		"intent/OrderTaxi@$LATEST",
		"intent/OrderFood@$LATEST",
		"intent/OrderHomeCare@$LATEST",
		"intent/OrderCleaning@$LATEST",
		"bot/dimbot@dim",
		"alias/dim@dimbot",
	}
	var gotKeys []string
	for _, s := range res.Steps {
		gotKeys = append(gotKeys, s.Key.String())
		if s.Outcome != reconcile.Created {
			t.Errorf("%s outcome = %q, want created", s.Key, s.Outcome)
		}
	}
	if !reflect.DeepEqual(gotKeys, wantKeys) {
		t.Errorf("steps = %v, want %v", gotKeys, wantKeys)
	}

	if n := f.lexAPI.Calls(lex.OpPutIntent); n != 4 {
		t.Errorf("PutIntent calls = %d, want 4", n)
	}
	if n := f.lexAPI.Calls(lex.OpPutBot); n != 1 {
		t.Errorf("PutBot calls = %d, want 1", n)
	}
	if n := f.lexAPI.Calls(lex.OpPutBotAlias); n != 1 {
		t.Errorf("PutBotAlias calls = %d, want 1", n)
	}
	if n := f.permAPI.Calls(permission.OpAddPermission); n != 1 {
		t.Errorf("AddPermission calls = %d, want 1", n)
	}
	if res.RunID == "" || res.Bot == nil || res.Alias == nil {
		t.Errorf("incomplete result: %+v", res)
	}
}

func TestRun_BotPayloadReferencesConfirmedIntentsInOrder(t *testing.T) {
	f := newFixture()
	res, err := f.engine.Run(context.Background(), defaultInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	puts := f.lexAPI.BotPuts()
	if len(puts) != 1 {
		t.Fatalf("PutBot requests = %d, want 1", len(puts))
	}
	var names []string
	for _, it := range puts[0].Intents {
		names = append(names, aws.ToString(it.IntentName))
		if v := aws.ToString(it.IntentVersion); v != "$LATEST" {
			t.Errorf("intent %s version = %q", aws.ToString(it.IntentName), v)
		}
	}
	if !reflect.DeepEqual(names, res.Intents) {
		t.Errorf("payload intents = %v, confirmed = %v", names, res.Intents)
	}
}

// ---------------------------------------------------------------------------
// Scenarios against pre-existing resources
// ---------------------------------------------------------------------------

func TestRun_OrderTaxiCreatedOnceWithUtterances(t *testing.T) {
	f := newFixture()
	in := defaultInput()
	in.Intents = in.Intents[:1]

	if _, err := f.engine.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := f.lexAPI.Calls(lex.OpPutIntent); n != 1 {
		t.Fatalf("PutIntent calls = %d, want 1", n)
	}

	got, err := lex.New(f.lexAPI).DescribeIntent(context.Background(), "OrderTaxi", "$LATEST")
	if err != nil {
		t.Fatalf("DescribeIntent: %v", err)
	}
	want := []string{"Taxi", "Order taxi", "I want to order a taxi", "Call me a taxi"}
	if !reflect.DeepEqual(got.SampleUtterances, want) {
		t.Errorf("SampleUtterances = %v, want %v", got.SampleUtterances, want)
	}
}

func TestRun_RerunCreatesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.engine.Run(ctx, defaultInput()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	f.lexAPI.ResetCalls()

	res, err := f.engine.Run(ctx, defaultInput())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for _, s := range res.Steps {
		if s.Outcome != reconcile.Exists {
			t.Errorf("%s outcome = %q, want exists", s.Key, s.Outcome)
		}
	}
	for _, op := range []string{lex.OpPutIntent, lex.OpPutBot, lex.OpPutBotAlias} {
		if n := f.lexAPI.Calls(op); n != 0 {
			t.Errorf("%s calls = %d, want 0", op, n)
		}
	}
	if n := f.permAPI.Calls(permission.OpAddPermission); n != 1 {
		t.Errorf("AddPermission calls over both runs = %d, want 1", n)
	}
}

func TestRun_BotFoundThroughAliasSkipsBotAndAlias(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.engine.Run(ctx, defaultInput()); err != nil {
		t.Fatalf("seed Run: %v", err)
	}
	f.lexAPI.ResetCalls()

	res, err := f.engine.Run(ctx, defaultInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := f.lexAPI.Calls(lex.OpPutBot); n != 0 {
		t.Errorf("PutBot calls = %d, want 0", n)
	}
	if n := f.lexAPI.Calls(lex.OpPutBotAlias); n != 0 {
		t.Errorf("PutBotAlias calls = %d, want 0", n)
	}
	if n := f.lexAPI.Calls(lex.OpGetBotAlias); n != 0 {
		t.Errorf("GetBotAlias calls = %d, want 0", n)
	}
	if o := outcomes(res)["alias/dim@dimbot"]; o != reconcile.Exists {
		t.Errorf("alias outcome = %q, want exists", o)
	}
}

func TestRun_BotExistsWithoutAlias(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Seed everything except the alias.
	in := defaultInput()
	svc := lex.New(f.lexAPI)
	for _, spec := range in.Intents {
		if _, err := svc.CreateOrUpdateIntent(ctx, spec); err != nil {
			t.Fatalf("seed intent: %v", err)
		}
	}
	bot := catalog.Bot("dimbot", "en-US", false, []string{"OrderTaxi", "OrderFood", "OrderHomeCare", "OrderCleaning"})
	if _, err := svc.CreateOrUpdateBot(ctx, bot); err != nil {
		t.Fatalf("seed bot: %v", err)
	}
	f.lexAPI.ResetCalls()

	res, err := f.engine.Run(ctx, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := outcomes(res)
	if got["bot/dimbot@dim"] != reconcile.Conceded {
		t.Errorf("bot outcome = %q, want conceded", got["bot/dimbot@dim"])
	}
	if got["alias/dim@dimbot"] != reconcile.Created {
		t.Errorf("alias outcome = %q, want created", got["alias/dim@dimbot"])
	}
	if n := f.lexAPI.Calls(lex.OpPutBot); n != 1 {
		t.Errorf("PutBot calls = %d, want exactly 1", n)
	}
	if res.Bot == nil || res.Bot.Name != "dimbot" {
		t.Errorf("Bot = %+v, want the existing bot", res.Bot)
	}
}

func TestRun_PermissionAlreadyGranted(t *testing.T) {
	f := newFixture()
	f.permAPI.FailOn(permission.OpGetPolicy, &lambdatypes.ResourceNotFoundException{Message: aws.String("no policy")})
	f.permAPI.FailOn(permission.OpAddPermission, &lambdatypes.ResourceConflictException{Message: aws.String("exists")})

	res, err := f.engine.Run(context.Background(), defaultInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if o := outcomes(res)["permission/update_service_data_table@ID-1"]; o != reconcile.Conceded {
		t.Errorf("permission outcome = %q, want conceded", o)
	}
	if n := f.permAPI.Calls(permission.OpAddPermission); n != 1 {
		t.Errorf("AddPermission calls = %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestRun_DescribeFailureAborts(t *testing.T) {
	f := newFixture()
	f.lexAPI.FailOn(lex.OpGetIntent, &types.LimitExceededException{Message: aws.String("throttled")})

	res, err := f.engine.Run(context.Background(), defaultInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.Classify(err) != fault.Transient {
		t.Errorf("Classify = %v, want transient", fault.Classify(err))
	}
	if n := f.lexAPI.Calls(lex.OpPutIntent); n != 0 {
		t.Errorf("PutIntent calls = %d, want 0", n)
	}
	if n := f.lexAPI.Calls(lex.OpGetIntent); n != 1 {
		t.Errorf("GetIntent calls = %d, want 1 (no retries)", n)
	}
	if n := f.lexAPI.Calls(lex.OpGetBot); n != 0 {
		t.Errorf("GetBot calls = %d, want 0", n)
	}
	// The permission step completed before the failure.
	if len(res.Steps) != 1 || res.Steps[0].Key.Type != permission.ResourceType {
		t.Errorf("Steps = %+v, want only the permission", res.Steps)
	}
}

func TestRun_PermissionReadFailureAborts(t *testing.T) {
	f := newFixture()
	f.permAPI.FailOn(permission.OpGetPolicy, &lambdatypes.InvalidParameterValueException{Message: aws.String("bad function")})

	_, err := f.engine.Run(context.Background(), defaultInput())
	if fault.Classify(err) != fault.Validation {
		t.Fatalf("err = %v, want validation", err)
	}
	if n := f.lexAPI.Calls(lex.OpGetIntent); n != 0 {
		t.Errorf("GetIntent calls = %d, want 0", n)
	}
}

func TestRun_InvalidInputMakesNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.Input)
	}{
		{"no intents", func(in *engine.Input) { in.Intents = nil }},
		{"no alias", func(in *engine.Input) { in.Alias = "" }},
		{"no statement id", func(in *engine.Input) { in.Permission.StatementID = "" }},
		{"empty utterances", func(in *engine.Input) {
			in.Intents = append([]descriptor.IntentSpec(nil), in.Intents...)
			in.Intents[0].SampleUtterances = nil
		}},
		{"duplicate intent", func(in *engine.Input) { in.Intents = append(in.Intents, in.Intents[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := defaultInput()
			tt.mutate(&in)

			_, err := f.engine.Run(context.Background(), in)
			if fault.Classify(err) != fault.Validation {
				t.Fatalf("err = %v, want validation", err)
			}
			if n := f.permAPI.Calls(permission.OpGetPolicy); n != 0 {
				t.Errorf("GetPolicy calls = %d, want 0", n)
			}
		})
	}
}

func TestRun_PutBotFailureWrapsSDKError(t *testing.T) {
	f := newFixture()
	f.lexAPI.FailOn(lex.OpPutBot, &types.BadRequestException{Message: aws.String("locale not supported")})

	_, err := f.engine.Run(context.Background(), defaultInput())
	var bre *types.BadRequestException
	if !errors.As(err, &bre) {
		t.Fatalf("err = %v, want BadRequestException in chain", err)
	}
	if n := f.lexAPI.Calls(lex.OpPutBotAlias); n != 0 {
		t.Errorf("PutBotAlias calls = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Tracing
// ---------------------------------------------------------------------------

func TestRun_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	ctx := tracing.WithHandle(context.Background(), tracing.InitWithProvider(tp))

	f := newFixture()
	if _, err := f.engine.Run(ctx, defaultInput()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var ensures, runs int
	for _, s := range rec.Ended() {
		switch s.Name() {
		case "lexctl.run":
			runs++
		case "lexctl.ensure":
			ensures++
			attrs := attribute.NewSet(s.Attributes()...)
			if v, ok := attrs.Value("lexctl.outcome"); !ok || v.AsString() != "created" {
				t.Errorf("span %v outcome = %v", s.Attributes(), v)
			}
			if _, ok := attrs.Value("lexctl.resource.type"); !ok {
				t.Error("span missing lexctl.resource.type")
			}
			if !s.Parent().IsValid() {
				t.Error("ensure span has no parent")
			}
		}
	}
	if runs != 1 || ensures != 7 {
		t.Errorf("spans: run=%d ensure=%d, want 1 and 7", runs, ensures)
	}
}
