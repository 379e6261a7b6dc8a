//
//  Copyright © Manetu Inc. All rights reserved.
//

package accesslog

import (
	"time"

	"github.com/manetu/ruleengine/pkg/common"
	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/rule"
)

// Decision is the outcome of an authorization request.
type Decision string

// Decision values.
const (
	DecisionGrant Decision = "GRANT"
	DecisionDeny  Decision = "DENY"
)

// Metadata carries provenance for a single record: a unique id, the wall
// clock time of the decision, and any environment metadata configured via
// audit.env or discovered from the Kubernetes downward API.
type Metadata struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Env       map[string]string `json:"env,omitempty"`
}

// PolicyReference identifies the policy behind a decision.
//
// Rule carries the policy's canonical rule text and is populated only when
// record.includerule is enabled; high-volume deployments can disable it to
// keep records small.
type PolicyReference struct {
	Mrn         string            `json:"mrn"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Rule        string            `json:"rule,omitempty"`
	Annotations model.Annotations `json:"annotations,omitempty"`
}

// Record is a single authorization decision as written to the audit stream.
//
// Every call to the engine's Authorize produces exactly one record (unless
// probe mode suppressed it). Denials caused by engine failures rather than
// rule outcomes carry the failure's reason code and text.
type Record struct {
	Resource   string            `json:"resource"`
	Action     string            `json:"action"`
	Decision   Decision          `json:"decision"`
	Reason     string            `json:"reason,omitempty"`
	ReasonCode common.ReasonCode `json:"reason_code,omitempty"`
	Policy     *PolicyReference  `json:"policy,omitempty"`
	Request    *rule.Request     `json:"request,omitempty"`
	Metadata   Metadata          `json:"metadata"`
}
