// Package permission grants the bot service permission to invoke the
// fulfillment function, using the function's resource policy as the
// source of truth for whether the grant already exists.
package permission

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/dimbot/lexctl/internal/awsclient"
	"github.com/dimbot/lexctl/internal/descriptor"
	"github.com/dimbot/lexctl/internal/fault"
	"github.com/dimbot/lexctl/internal/reconcile"
)

// ResourceType is the reconcile key type for invoke permissions.
const ResourceType = "permission"

// API is the subset of the Lambda client lexctl calls.
type API interface {
	GetPolicy(ctx context.Context, params *lambda.GetPolicyInput, optFns ...func(*lambda.Options)) (*lambda.GetPolicyOutput, error)
	AddPermission(ctx context.Context, params *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error)
}

var _ API = (*lambda.Client)(nil)

// Statement is one entry of a function's resource policy.
type Statement struct {
	Sid       string
	Effect    string
	Principal string
	Action    string
	Resource  string
}

// Service reads and writes function policy statements.
type Service struct {
	api API
}

// New returns a Service that calls api.
func New(api API) *Service {
	return &Service{api: api}
}

// NewFromConfig builds a Service backed by the real Lambda API.
func NewFromConfig(ctx context.Context, cfg awsclient.Config) (*Service, error) {
	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := lambda.NewFromConfig(awsCfg, func(o *lambda.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	})
	return New(client), nil
}

// DescribeStatement returns the policy statement with the given id. A
// function without a policy and a policy without the statement are both
// reported as fault.NotFound.
func (s *Service) DescribeStatement(ctx context.Context, functionName, statementID string) (*Statement, error) {
	op := fmt.Sprintf("lambda GetPolicy %s", functionName)

	out, err := s.api.GetPolicy(ctx, &lambda.GetPolicyInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fault.Wrap(op, err)
	}

	doc, err := parsePolicy(aws.ToString(out.Policy))
	if err != nil {
		return nil, fault.New(fault.Unknown, op, err)
	}
	for _, st := range doc.Statement {
		if st.Sid == statementID {
			return st.toStatement(), nil
		}
	}
	return nil, fault.New(fault.NotFound, op, fmt.Errorf("statement %q not in policy", statementID))
}

// Grant adds the statement described by spec. It is attempted once.
func (s *Service) Grant(ctx context.Context, spec descriptor.PermissionSpec) (*Statement, error) {
	out, err := s.api.AddPermission(ctx, &lambda.AddPermissionInput{
		Action:       aws.String(spec.Action),
		FunctionName: aws.String(spec.FunctionName),
		Principal:    aws.String(spec.Principal),
		StatementId:  aws.String(spec.StatementID),
	})
	if err != nil {
		return nil, fault.Wrap(fmt.Sprintf("lambda AddPermission %s/%s", spec.FunctionName, spec.StatementID), err)
	}

	if st, perr := parseStatement(aws.ToString(out.Statement)); perr == nil {
		return st, nil
	}
	return fromSpec(spec), nil
}

// Ensure grants the permission unless the statement already exists. A
// conflict from the grant means another writer added it first and is not
// an error.
func (s *Service) Ensure(ctx context.Context, spec descriptor.PermissionSpec) (reconcile.Result[*Statement], error) {
	key := Key(spec)
	res, err := reconcile.Ensure(ctx, key, spec,
		func(ctx context.Context, k reconcile.Key) (*Statement, error) {
			return s.DescribeStatement(ctx, k.Name, k.Qualifier)
		},
		func(ctx context.Context, _ reconcile.Key, d descriptor.PermissionSpec) (*Statement, error) {
			return s.Grant(ctx, d)
		},
		reconcile.TolerateAlreadyExists(),
	)
	if err != nil {
		return res, err
	}
	if res.State == nil {
		res.State = fromSpec(spec)
	}
	return res, nil
}

// Key is the reconcile key for a permission: the function name qualified
// by the statement id.
func Key(spec descriptor.PermissionSpec) reconcile.Key {
	return reconcile.Key{Type: ResourceType, Name: spec.FunctionName, Qualifier: spec.StatementID}
}

func fromSpec(spec descriptor.PermissionSpec) *Statement {
	return &Statement{
		Sid:       spec.StatementID,
		Effect:    "Allow",
		Principal: spec.Principal,
		Action:    spec.Action,
	}
}

// ---------------------------------------------------------------------------
// Policy documents
// ---------------------------------------------------------------------------

type policyDocument struct {
	Version   string            `json:"Version"`
	ID        string            `json:"Id"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string          `json:"Sid"`
	Effect    string          `json:"Effect"`
	Principal json.RawMessage `json:"Principal"`
	Action    json.RawMessage `json:"Action"`
	Resource  json.RawMessage `json:"Resource"`
}

func parsePolicy(raw string) (*policyDocument, error) {
	var doc policyDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decoding policy document: %w", err)
	}
	return &doc, nil
}

func parseStatement(raw string) (*Statement, error) {
	var st policyStatement
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decoding policy statement: %w", err)
	}
	return st.toStatement(), nil
}

func (p policyStatement) toStatement() *Statement {
	return &Statement{
		Sid:       p.Sid,
		Effect:    p.Effect,
		Principal: principal(p.Principal),
		Action:    firstString(p.Action),
		Resource:  firstString(p.Resource),
	}
}

// principal accepts "*", {"Service": "x"} and {"Service": ["x", ...]}.
func principal(raw json.RawMessage) string {
	if s := firstString(raw); s != "" {
		return s
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	for _, k := range []string{"Service", "AWS"} {
		if v, ok := m[k]; ok {
			return firstString(v)
		}
	}
	return ""
}

// firstString decodes a JSON string or the first element of a string list.
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
