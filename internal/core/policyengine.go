//
//  Copyright © Manetu Inc. All rights reserved.
//

package core

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/common"
	"github.com/manetu/ruleengine/pkg/core/accesslog"
	"github.com/manetu/ruleengine/pkg/core/backend"
	"github.com/manetu/ruleengine/pkg/core/config"
	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/core/options"
	"github.com/manetu/ruleengine/pkg/rule"
)

var tracer = otel.Tracer("ruleengine")

var logger = logging.GetLogger("ruleengine")

const agent string = "ruleengine"

// PolicyEngine evaluates authorization requests against the policies served
// by its backend, emitting one access record per decision.
type PolicyEngine struct {
	audit   accesslog.Stream
	backend backend.Service

	includeRule bool
}

// NewPolicyEngine returns an engine instance.
func NewPolicyEngine(engineOptions *options.EngineOptions) (*PolicyEngine, error) {

	al, err := engineOptions.AccessLogFactory.NewStream()
	if err != nil {
		return nil, err
	}

	be, err := engineOptions.BackendFactory.NewBackend()
	if err != nil {
		return nil, err
	}

	return &PolicyEngine{
		audit:       al,
		backend:     be,
		includeRule: config.VConfig.GetBool(config.RecordIncludeRule), // default is to record matched rule text
	}, nil
}

// newRecord seeds an access record for the request. Decisions default to
// DENY; the authorize path upgrades the record when a policy grants.
func (pe *PolicyEngine) newRecord(req *rule.Request) *accesslog.Record {
	return &accesslog.Record{
		Resource: req.ActionID.Resource,
		Action:   req.ActionID.Action,
		Decision: accesslog.DecisionDeny,
		Request:  req,
		Metadata: accesslog.Metadata{
			ID:        uuid.New().String(),
			Timestamp: time.Now(),
			Env:       config.GetAuditMetadata(),
		},
	}
}

// policyReference exports the matched policy into its audit form. The
// record gets its own copy of the annotations so stream consumers can hold
// it beyond the decision.
func (pe *PolicyEngine) policyReference(p *model.Policy) *accesslog.PolicyReference {
	ref := &accesslog.PolicyReference{
		Mrn:         p.Mrn,
		Fingerprint: hex.EncodeToString(p.Fingerprint),
	}
	if pe.includeRule {
		ref.Rule = p.Source
	}
	if p.Annotations != nil {
		ref.Annotations = deepcopy.Copy(p.Annotations).(model.Annotations)
	}
	return ref
}

func (pe *PolicyEngine) auditDecision(aos *options.AuthzOptions, record *accesslog.Record, reason string) {
	if logger.IsDebugEnabled() {
		logger.Debugf(agent, "auditDecision", "resource: %s, reason: %s, options: %+v", record.Resource, reason, aos)
		logger.Debug(agent, "auditDecision", "access record:")
		common.PrettyPrint(record)
	}

	if pe.audit != nil && !aos.Probe {
		err := pe.audit.Send(record)
		if err != nil {
			logger.Errorf(agent, "auditDecision", "unable to send message for accesslog %+v", err)
		}
	}
}

// Authorize evaluates the policies governing the request's action identity
// and returns the decision. A backend failure denies the request and is
// reported alongside the decision.
func (pe *PolicyEngine) Authorize(ctx context.Context, req *rule.Request, authOptions *options.AuthzOptions) (bool, *common.PolicyError) {
	ctx, span := tracer.Start(ctx, "Authorize")
	defer span.End()

	logger.Debug(agent, "authorize", "Enter")
	defer logger.Debug(agent, "authorize", "Exit")

	ar := pe.newRecord(req)

	auditDecision := struct {
		reason string
	}{}

	// -------------------------- NOTE: all returns audited -----------------
	defer func() {
		pe.auditDecision(authOptions, ar, auditDecision.reason)
	}()

	policies, perr := pe.backend.GetPolicies(ctx, req.ActionID)
	if perr != nil {
		logger.Errorf(agent, "authorize", "error getting policies: %+v", perr)
		span.RecordError(perr)

		ar.Reason = perr.Reason
		ar.ReasonCode = perr.ReasonCode
		auditDecision.reason = "error getting policies"

		return false, perr
	}

	policy, ok := policies.Matches(req)
	if !ok {
		auditDecision.reason = "no matching policy"

		return false, nil
	}

	ar.Decision = accesslog.DecisionGrant
	ar.Policy = pe.policyReference(policy)
	auditDecision.reason = "authorized"

	span.AddEvent("authorized", trace.WithAttributes(attribute.String("policy", policy.Mrn)))
	logger.Debugf(agent, "authorize", "authorized by policy: %s", policy.Mrn)

	return true, nil
}

// GetBackend returns the backend service used by this policy engine.
func (pe *PolicyEngine) GetBackend() backend.Service {
	return pe.backend
}
