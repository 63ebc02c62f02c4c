package lex

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"

	"github.com/dimbot/lexctl/internal/catalog"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/reconcile"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		key  reconcile.Key
		want string
	}{
		{IntentKey("OrderTaxi", descriptor.LatestVersion), "intent/OrderTaxi@$LATEST"},
		{BotKey("dimbot", "dim"), "bot/dimbot@dim"},
		{AliasKey("dim", "dimbot"), "alias/dim@dimbot"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("key = %q, want %q", got, tt.want)
		}
	}
}

func TestEnsureIntent_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	svc := New(api)
	spec := catalog.OrderIntents(testHook)[0]

	first, err := svc.EnsureIntent(ctx, spec)
	if err != nil {
		t.Fatalf("first ensure: %s", err)
	}
	if first.Outcome != reconcile.Created {
		t.Errorf("first outcome = %s, want created", first.Outcome)
	}

	second, err := svc.EnsureIntent(ctx, spec)
	if err != nil {
		t.Fatalf("second ensure: %s", err)
	}
	if second.Outcome != reconcile.Exists {
		t.Errorf("second outcome = %s, want exists", second.Outcome)
	}
	if second.State.Checksum != first.State.Checksum {
		t.Errorf("checksum changed from %q to %q", first.State.Checksum, second.State.Checksum)
	}
	if n := api.Calls(OpPutIntent); n != 1 {
		t.Errorf("PutIntent calls = %d, want 1", n)
	}
}

func TestEnsureBot_ExistsWithoutAliasConcedes(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	svc := New(api)
	for _, spec := range catalog.OrderIntents(testHook) {
		if _, err := svc.CreateOrUpdateIntent(ctx, spec); err != nil {
			t.Fatalf("seeding intent: %s", err)
		}
	}
	bot := catalog.Bot("dimbot", "en-US", false, []string{"OrderTaxi"})
	if _, err := svc.CreateOrUpdateBot(ctx, bot); err != nil {
		t.Fatalf("seeding bot: %s", err)
	}

	res, err := svc.EnsureBot(ctx, bot, "dim")
	if err != nil {
		t.Fatalf("ensure bot: %s", err)
	}
	if res.Outcome != reconcile.Conceded {
		t.Errorf("outcome = %s, want conceded", res.Outcome)
	}
	if res.State == nil || res.State.Name != "dimbot" || res.State.Version != descriptor.LatestVersion {
		t.Errorf("state = %+v, want dimbot at $LATEST", res.State)
	}
	if n := api.Calls(OpPutBot); n != 2 {
		t.Errorf("PutBot calls = %d, want the seed plus one rejected put", n)
	}
}

func TestEnsureBot_OtherCreateErrorsPropagate(t *testing.T) {
	api := NewMemoryAPI()
	api.FailOn(OpPutBot, &types.LimitExceededException{Message: aws.String("slow down")})
	svc := New(api)

	_, err := svc.EnsureBot(context.Background(), catalog.Bot("dimbot", "en-US", false, []string{"OrderTaxi"}), descriptor.LatestVersion)
	var limit *types.LimitExceededException
	if !errors.As(err, &limit) {
		t.Fatalf("err = %v, want LimitExceededException", err)
	}
}

func TestEnsureAlias_ConflictFillsStateFromSpec(t *testing.T) {
	api := NewMemoryAPI()
	api.FailOn(OpGetBotAlias, &types.NotFoundException{Message: aws.String("not yet")})
	api.FailOn(OpPutBotAlias, &types.ConflictException{Message: aws.String("raced")})
	svc := New(api)

	spec := descriptor.AliasSpec{Name: "dim", BotName: "dimbot", BotVersion: descriptor.LatestVersion}
	res, err := svc.EnsureAlias(context.Background(), spec)
	if err != nil {
		t.Fatalf("ensure alias: %s", err)
	}
	if res.Outcome != reconcile.Conceded {
		t.Errorf("outcome = %s, want conceded", res.Outcome)
	}
	if res.State == nil || res.State.Name != "dim" || res.State.BotName != "dimbot" {
		t.Errorf("state = %+v, want filled from spec", res.State)
	}
	if n := api.Calls(OpPutBotAlias); n != 1 {
		t.Errorf("PutBotAlias calls = %d, want 1", n)
	}
}
