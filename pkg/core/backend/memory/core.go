//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package memory provides an in-process [backend.Store] implementation.
//
// The memory backend holds compiled policies in a mutable, concurrency-safe
// table keyed by MRN. It is the substrate for the local backend, which seeds
// it from a registry, and is directly useful for tests and for applications
// that assemble their policy set programmatically.
//
// # Usage
//
//	pe, err := core.NewPolicyEngine(
//	    options.WithBackend(memory.NewFactory(policies...)),
//	)
//
// Policies installed later via [Backend.SetPolicy] become visible to
// subsequent authorization decisions; decisions already in flight are
// unaffected.
//
// # Ordering
//
// The backend preserves installation order. [Backend.GetPolicies] and
// [Backend.ListPolicies] return policies in the order they were first
// installed, and replacing a policy keeps its original position. This
// gives callers a stable first-match semantic across restarts as long
// as policies are loaded in a stable order.
package memory

import (
	"context"
	"sync"

	"github.com/mohae/deepcopy"
	"go.opentelemetry.io/otel"

	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/common"
	"github.com/manetu/ruleengine/pkg/core/backend"
	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/rule"
)

var tracer = otel.Tracer("memory")

var logger = logging.GetLogger("ruleengine.backend.memory")
var actor = "backend.memory"

// Factory creates [Backend] instances, optionally seeded with policies.
type Factory struct {
	seed model.PolicySet
}

// NewFactory creates a [backend.Factory] for the memory backend.
//
// The seed policies are installed, in order, each time [Factory.NewBackend]
// is called. Seeds must be well formed (non-nil, with an MRN, action pattern
// and rule) or NewBackend will fail.
func NewFactory(policies ...*model.Policy) *Factory {
	return &Factory{seed: policies}
}

// NewBackend creates a [Backend] holding the factory's seed policies.
func (f *Factory) NewBackend() (backend.Service, error) {
	b := New()
	for _, p := range f.seed {
		if err := b.SetPolicy(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Backend implements [backend.Store] with an in-process policy table.
//
// All methods are safe for concurrent use.
type Backend struct {
	mu       sync.RWMutex
	policies map[string]*model.Policy
	order    []string
}

// New creates an empty [Backend].
//
// Most applications should use [NewFactory] with the engine options instead;
// New is for tests and tooling that want direct [backend.Store] access.
func New() *Backend {
	return &Backend{policies: make(map[string]*model.Policy)}
}

// SetPolicy inserts or replaces a policy, keyed by its MRN.
//
// The backend stores a private copy of the policy's metadata, so later
// mutations of the caller's Policy do not reach the store. The compiled
// rule is shared; it is immutable once built. A replaced policy keeps
// its original position in the installation order.
func (b *Backend) SetPolicy(ctx context.Context, p *model.Policy) *common.PolicyError {
	_, span := tracer.Start(ctx, "Memory.Backend.SetPolicy")
	defer span.End()

	if p == nil {
		return common.NewError(common.ReasonInvalidParam, "nil policy")
	}
	if p.Mrn == "" {
		return common.NewError(common.ReasonInvalidParam, "policy has no mrn")
	}
	if p.ActionID == nil {
		return common.NewErrorf(common.ReasonInvalidParam, "policy %s has no action pattern", p.Mrn)
	}
	if p.Rule == nil {
		return common.NewErrorf(common.ReasonInvalidParam, "policy %s has no rule", p.Mrn)
	}

	stored := *p
	stored.Fingerprint = append([]byte(nil), p.Fingerprint...)
	if p.Annotations != nil {
		stored.Annotations = deepcopy.Copy(p.Annotations).(model.Annotations)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.policies[p.Mrn]; !ok {
		b.order = append(b.order, p.Mrn)
	}
	b.policies[p.Mrn] = &stored

	logger.Tracef(actor, "Set", "SetPolicy: %v", p.Mrn)
	return nil
}

// DeletePolicy removes a policy by its MRN.
func (b *Backend) DeletePolicy(ctx context.Context, mrn string) *common.PolicyError {
	_, span := tracer.Start(ctx, "Memory.Backend.DeletePolicy")
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.policies[mrn]; !ok {
		return common.NewError(common.ReasonNotFound, "policy not found")
	}
	delete(b.policies, mrn)
	for i, v := range b.order {
		if v == mrn {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}

	logger.Tracef(actor, "Delete", "DeletePolicy: %v", mrn)
	return nil
}

// GetPolicy retrieves a single policy by its MRN.
func (b *Backend) GetPolicy(ctx context.Context, mrn string) (*model.Policy, *common.PolicyError) {
	_, span := tracer.Start(ctx, "Memory.Backend.GetPolicy")
	defer span.End()

	logger.Tracef(actor, "Get", "GetPolicy: %v", mrn)

	b.mu.RLock()
	defer b.mu.RUnlock()

	p, ok := b.policies[mrn]
	if !ok {
		return nil, common.NewError(common.ReasonNotFound, "policy not found")
	}
	return p, nil
}

// GetPolicies returns the policies whose action pattern matches the given
// action identity, in installation order.
func (b *Backend) GetPolicies(ctx context.Context, id rule.ActionID) (model.PolicySet, *common.PolicyError) {
	_, span := tracer.Start(ctx, "Memory.Backend.GetPolicies")
	defer span.End()

	logger.Tracef(actor, "Get", "GetPolicies: resource %v action %v", id.Resource, id.Action)

	b.mu.RLock()
	defer b.mu.RUnlock()

	set := model.PolicySet{}
	for _, mrn := range b.order {
		if p := b.policies[mrn]; p.ActionID.Matches(id) {
			set = append(set, p)
		}
	}
	return set, nil
}

// ListPolicies returns every stored policy in installation order.
func (b *Backend) ListPolicies(ctx context.Context) (model.PolicySet, *common.PolicyError) {
	_, span := tracer.Start(ctx, "Memory.Backend.ListPolicies")
	defer span.End()

	b.mu.RLock()
	defer b.mu.RUnlock()

	set := make(model.PolicySet, 0, len(b.order))
	for _, mrn := range b.order {
		set = append(set, b.policies[mrn])
	}
	return set, nil
}
