// Package reconcile implements create-if-absent reconciliation for
// declarative remote resources. Existing resources are never compared
// against the desired descriptor, updated, or deleted.
package reconcile

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/dimbot/lexctl/internal/fault"
)

// Key identifies one resource instance in the remote service. Qualifier is
// a version or alias label and may be empty.
type Key struct {
	Type      string
	Name      string
	Qualifier string
}

func (k Key) String() string {
	if k.Qualifier == "" {
		return k.Type + "/" + k.Name
	}
	return k.Type + "/" + k.Name + "@" + k.Qualifier
}

// Outcome records which branch Ensure took.
type Outcome string

const (
	// Exists means the read found the resource; nothing was created.
	Exists Outcome = "exists"
	// Created means the read reported NotFound and create succeeded.
	Created Outcome = "created"
	// Conceded means create reported AlreadyExists and the caller opted to
	// treat that as success.
	Conceded Outcome = "conceded"
)

// ReadFunc fetches the current state for key.
type ReadFunc[S any] func(ctx context.Context, key Key) (S, error)

// CreateFunc creates the resource for key from desired.
type CreateFunc[D, S any] func(ctx context.Context, key Key, desired D) (S, error)

// Result is the state Ensure settled on and how it got there.
type Result[S any] struct {
	State   S
	Outcome Outcome
}

type options struct {
	tolerateAlreadyExists bool
}

// Option adjusts Ensure.
type Option func(*options)

// TolerateAlreadyExists treats an AlreadyExists failure from create as
// success with a zero state and the Conceded outcome.
func TolerateAlreadyExists() Option {
	return func(o *options) { o.tolerateAlreadyExists = true }
}

// Ensure reads key and creates it from desired only when the read fails
// with fault.NotFound. Every other read failure is returned as is. Each
// remote call is attempted exactly once.
func Ensure[D, S any](ctx context.Context, key Key, desired D, read ReadFunc[S], create CreateFunc[D, S], opts ...Option) (Result[S], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fields := map[string]interface{}{
		"resource_type": key.Type,
		"resource_name": key.Name,
		"qualifier":     key.Qualifier,
	}

	state, err := read(ctx, key)
	if err == nil {
		tflog.Info(ctx, fmt.Sprintf("%s %s already exists", key.Type, key.Name), fields)
		return Result[S]{State: state, Outcome: Exists}, nil
	}
	if !fault.IsNotFound(err) {
		return Result[S]{}, fmt.Errorf("reconcile: read %s: %w", key, err)
	}

	tflog.Debug(ctx, fmt.Sprintf("%s %s not found, creating", key.Type, key.Name), fields)

	state, err = create(ctx, key, desired)
	if err != nil {
		if o.tolerateAlreadyExists && fault.IsAlreadyExists(err) {
			tflog.Info(ctx, fmt.Sprintf("%s %s already exists", key.Type, key.Name), fields)
			var zero S
			return Result[S]{State: zero, Outcome: Conceded}, nil
		}
		return Result[S]{}, fmt.Errorf("reconcile: create %s: %w", key, err)
	}

	tflog.Info(ctx, fmt.Sprintf("%s %s doesn't exist, created", key.Type, key.Name), fields)
	return Result[S]{State: state, Outcome: Created}, nil
}
