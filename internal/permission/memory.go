package permission

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// Method names accepted by MemoryAPI.FailOn and MemoryAPI.Calls.
const (
	OpGetPolicy     = "GetPolicy"
	OpAddPermission = "AddPermission"
)

// MemoryAPI keeps function policies in process. Functions are implicitly
// present; a function without statements has no policy.
type MemoryAPI struct {
	mu       sync.Mutex
	policies map[string][]policyStatement
	calls    map[string]int
	failures map[string]error
}

var _ API = (*MemoryAPI)(nil)

// NewMemoryAPI returns a fake with no policies.
func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{
		policies: make(map[string][]policyStatement),
		calls:    make(map[string]int),
		failures: make(map[string]error),
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

func (m *MemoryAPI) GetPolicy(_ context.Context, in *lambda.GetPolicyInput, _ ...func(*lambda.Options)) (*lambda.GetPolicyOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpGetPolicy]++
	if err := m.failures[OpGetPolicy]; err != nil {
		return nil, err
	}

	fn := aws.ToString(in.FunctionName)
	stmts := m.policies[fn]
	if len(stmts) == 0 {
		return nil, &lambdatypes.ResourceNotFoundException{
			Message: aws.String("The resource you requested does not exist."),
		}
	}

	raw, err := json.Marshal(policyDocument{Version: "2012-10-17", ID: "default", Statement: stmts})
	if err != nil {
		return nil, err
	}
	return &lambda.GetPolicyOutput{Policy: aws.String(string(raw)), RevisionId: aws.String("1")}, nil
}

func (m *MemoryAPI) AddPermission(_ context.Context, in *lambda.AddPermissionInput, _ ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[OpAddPermission]++
	if err := m.failures[OpAddPermission]; err != nil {
		return nil, err
	}

	fn := aws.ToString(in.FunctionName)
	sid := aws.ToString(in.StatementId)
	for _, st := range m.policies[fn] {
		if st.Sid == sid {
			return nil, &lambdatypes.ResourceConflictException{
				Message: aws.String("The statement id (" + sid + ") provided already exists. Please provide a new statement id, or remove the existing statement."),
			}
		}
	}

	st := policyStatement{
		Sid:       sid,
		Effect:    "Allow",
		Principal: mustJSON(map[string]string{"Service": aws.ToString(in.Principal)}),
		Action:    mustJSON(aws.ToString(in.Action)),
		Resource:  mustJSON("arn:aws:lambda:us-east-1:000000000000:function:" + fn),
	}
	m.policies[fn] = append(m.policies[fn], st)

	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return &lambda.AddPermissionOutput{Statement: aws.String(string(raw))}, nil
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

// The Terraform test framework re-creates the provider between steps, so
// fakes live in a process-wide registry keyed by namespace.
var (
	memoryRegistryMu sync.Mutex
	memoryRegistry   = make(map[string]*MemoryAPI)
)

// GetOrCreateMemoryAPI returns the fake registered under namespace,
// creating it on first use.
func GetOrCreateMemoryAPI(namespace string) *MemoryAPI {
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()

	if m, ok := memoryRegistry[namespace]; ok {
		return m
	}
	m := NewMemoryAPI()
	memoryRegistry[namespace] = m
	return m
}

// ResetMemoryAPIs drops every registered fake.
func ResetMemoryAPIs() {
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()

	memoryRegistry = make(map[string]*MemoryAPI)
}
