package lex

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelbuildingservice/types"
)

// Method names accepted by MemoryAPI.FailOn and MemoryAPI.Calls.
const (
	OpGetIntent   = "GetIntent"
	OpPutIntent   = "PutIntent"
	OpGetBot      = "GetBot"
	OpPutBot      = "PutBot"
	OpGetBotAlias = "GetBotAlias"
	OpPutBotAlias = "PutBotAlias"
)

// MemoryAPI is an in-process implementation of API for tests and dry runs.
// It mimics the service's create-only behavior for puts without a checksum
// and returns the SDK's own exception types.
type MemoryAPI struct {
	mu       sync.Mutex
	intents  map[string]*lexmodelbuildingservice.PutIntentInput
	bots     map[string]*lexmodelbuildingservice.PutBotInput
	aliases  map[string]*lexmodelbuildingservice.PutBotAliasInput
	checksum map[string]string
	calls    map[string]int
	failures map[string]error
	botPuts  []*lexmodelbuildingservice.PutBotInput
	seq      int
	now      func() time.Time
}

var _ API = (*MemoryAPI)(nil)

// NewMemoryAPI returns an empty fake service.
func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{
		intents:  make(map[string]*lexmodelbuildingservice.PutIntentInput),
		bots:     make(map[string]*lexmodelbuildingservice.PutBotInput),
		aliases:  make(map[string]*lexmodelbuildingservice.PutBotAliasInput),
		checksum: make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// FailOn makes every later call to op return err. A nil err clears it.
func (m *MemoryAPI) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (m *MemoryAPI) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// ResetCalls zeroes every call counter, keeping stored resources.
func (m *MemoryAPI) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
	m.botPuts = nil
}

// BotPuts returns every PutBot request received, oldest first.
func (m *MemoryAPI) BotPuts() []*lexmodelbuildingservice.PutBotInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*lexmodelbuildingservice.PutBotInput(nil), m.botPuts...)
}

// enter records a call and returns the injected failure for op, if any.
// The caller must hold m.mu.
func (m *MemoryAPI) enter(op string) error {
	m.calls[op]++
	return m.failures[op]
}

func (m *MemoryAPI) nextChecksum(key string) string {
	m.seq++
	sum := "cs-" + strconv.Itoa(m.seq)
	m.checksum[key] = sum
	return sum
}

func notFound(format string, args ...any) error {
	return &types.NotFoundException{Message: aws.String(fmt.Sprintf(format, args...))}
}

func preconditionFailed(format string, args ...any) error {
	return &types.PreconditionFailedException{Message: aws.String(fmt.Sprintf(format, args...))}
}

func (m *MemoryAPI) GetIntent(_ context.Context, in *lexmodelbuildingservice.GetIntentInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetIntentOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetIntent); err != nil {
		return nil, err
	}

	name := aws.ToString(in.Name)
	stored, ok := m.intents[name]
	if !ok || aws.ToString(in.Version) != "$LATEST" {
		return nil, notFound("intent %s version %s not found", name, aws.ToString(in.Version))
	}
	return &lexmodelbuildingservice.GetIntentOutput{
		Name:                stored.Name,
		Version:             aws.String("$LATEST"),
		Checksum:            aws.String(m.checksum["intent/"+name]),
		SampleUtterances:    stored.SampleUtterances,
		Slots:               stored.Slots,
		ConfirmationPrompt:  stored.ConfirmationPrompt,
		RejectionStatement:  stored.RejectionStatement,
		ConclusionStatement: stored.ConclusionStatement,
		FulfillmentActivity: stored.FulfillmentActivity,
		LastUpdatedDate:     aws.Time(m.now()),
	}, nil
}

func (m *MemoryAPI) PutIntent(_ context.Context, in *lexmodelbuildingservice.PutIntentInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutIntentOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPutIntent); err != nil {
		return nil, err
	}

	name := aws.ToString(in.Name)
	key := "intent/" + name
	if _, exists := m.intents[name]; exists && aws.ToString(in.Checksum) != m.checksum[key] {
		return nil, preconditionFailed("intent %s already exists; checksum does not match", name)
	}
	m.intents[name] = in
	sum := m.nextChecksum(key)

	return &lexmodelbuildingservice.PutIntentOutput{
		Name:             in.Name,
		Version:          aws.String("$LATEST"),
		Checksum:         aws.String(sum),
		SampleUtterances: in.SampleUtterances,
		Slots:            in.Slots,
		LastUpdatedDate:  aws.Time(m.now()),
	}, nil
}

func (m *MemoryAPI) GetBot(_ context.Context, in *lexmodelbuildingservice.GetBotInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetBotOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetBot); err != nil {
		return nil, err
	}

	name := aws.ToString(in.Name)
	qualifier := aws.ToString(in.VersionOrAlias)
	stored, ok := m.bots[name]
	if !ok {
		return nil, notFound("bot %s not found", name)
	}
	if qualifier != "$LATEST" {
		if _, ok := m.aliases[name+"/"+qualifier]; !ok {
			return nil, notFound("bot %s has no version or alias %s", name, qualifier)
		}
	}
	return &lexmodelbuildingservice.GetBotOutput{
		Name:           stored.Name,
		Version:        aws.String("$LATEST"),
		Checksum:       aws.String(m.checksum["bot/"+name]),
		Status:         types.StatusReady,
		Locale:         stored.Locale,
		ChildDirected:  stored.ChildDirected,
		Intents:        stored.Intents,
		AbortStatement: stored.AbortStatement,
	}, nil
}

func (m *MemoryAPI) PutBot(_ context.Context, in *lexmodelbuildingservice.PutBotInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutBotOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPutBot); err != nil {
		return nil, err
	}
	m.botPuts = append(m.botPuts, in)

	name := aws.ToString(in.Name)
	key := "bot/" + name
	if _, exists := m.bots[name]; exists && aws.ToString(in.Checksum) != m.checksum[key] {
		return nil, preconditionFailed("bot %s already exists; checksum does not match", name)
	}
	for _, it := range in.Intents {
		if _, ok := m.intents[aws.ToString(it.IntentName)]; !ok {
			return nil, &types.BadRequestException{Message: aws.String("intent " + aws.ToString(it.IntentName) + " does not exist")}
		}
	}
	m.bots[name] = in
	sum := m.nextChecksum(key)

	return &lexmodelbuildingservice.PutBotOutput{
		Name:          in.Name,
		Version:       aws.String("$LATEST"),
		Checksum:      aws.String(sum),
		Status:        types.StatusBuilding,
		Locale:        in.Locale,
		ChildDirected: in.ChildDirected,
		Intents:       in.Intents,
	}, nil
}

func (m *MemoryAPI) GetBotAlias(_ context.Context, in *lexmodelbuildingservice.GetBotAliasInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.GetBotAliasOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetBotAlias); err != nil {
		return nil, err
	}

	key := aws.ToString(in.BotName) + "/" + aws.ToString(in.Name)
	stored, ok := m.aliases[key]
	if !ok {
		return nil, notFound("alias %s not found", key)
	}
	return &lexmodelbuildingservice.GetBotAliasOutput{
		Name:       stored.Name,
		BotName:    stored.BotName,
		BotVersion: stored.BotVersion,
		Checksum:   aws.String(m.checksum["alias/"+key]),
	}, nil
}

func (m *MemoryAPI) PutBotAlias(_ context.Context, in *lexmodelbuildingservice.PutBotAliasInput, _ ...func(*lexmodelbuildingservice.Options)) (*lexmodelbuildingservice.PutBotAliasOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPutBotAlias); err != nil {
		return nil, err
	}

	botName := aws.ToString(in.BotName)
	key := botName + "/" + aws.ToString(in.Name)
	if _, ok := m.bots[botName]; !ok {
		return nil, notFound("bot %s not found", botName)
	}
	if _, exists := m.aliases[key]; exists && aws.ToString(in.Checksum) != m.checksum["alias/"+key] {
		return nil, &types.ConflictException{Message: aws.String("alias " + key + " already exists")}
	}
	m.aliases[key] = in
	sum := m.nextChecksum("alias/" + key)

	return &lexmodelbuildingservice.PutBotAliasOutput{
		Name:       in.Name,
		BotName:    in.BotName,
		BotVersion: in.BotVersion,
		Checksum:   aws.String(sum),
	}, nil
}
