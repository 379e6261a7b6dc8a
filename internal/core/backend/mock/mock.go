//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package mock provides a backend that serves policies straight from the
// engine configuration file, for tests and local experimentation.
//
// Policies are declared under mock.domain.policies as a list of entries:
//
//	mock:
//	  enabled: true
//	  domain:
//	    policies:
//	      - mrn: mrn:iam:policy:echoer
//	        resource: echoer.*
//	        action: handle_message
//	        rule: '(eq subject.name "Ivan")'
//
// Rule text may be given inline via the rule key, or indirectly via a
// filename key resolved first against mock.domain.filedata and then against
// the directory holding the config file.
//
// An MRN or request resource containing the substring "networkerror"
// simulates a backend outage, letting tests exercise the engine's
// fail-closed path.
package mock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/common"
	"github.com/manetu/ruleengine/pkg/core/backend"
	"github.com/manetu/ruleengine/pkg/core/config"
	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/rule"
)

const (
	// mre-config.yaml config names
	cfgMrn          = "mrn"
	cfgResource     = "resource"
	cfgAction       = "action"
	cfgRule         = "rule"
	cfgRuleFilename = "filename"
	cfgMetadata     = "metadata"

	mockDomainCfg string = "mock.domain"
)

var logger = logging.GetLogger("ruleengine.backend.mock")
var mockAgent string = "mock"

// Factory creates mock [Backend] instances.
type Factory struct {
}

// Backend serves policies defined in the engine configuration.
//
// Entries are parsed and compiled on every call, so config changes picked
// up by viper become visible without restarting the backend.
type Backend struct {
}

// NewFactory creates a new Factory for the mock backend.
func NewFactory() backend.Factory {
	return &Factory{}
}

// NewBackend creates a new mock Backend.
func (f *Factory) NewBackend() (backend.Service, error) {
	logger.Warn(mockAgent, "Init", "RUNNING IN MOCK MODE. SHOULD NOT BE USED IN PRODUCTION")
	return &Backend{}, nil
}

// ruleText resolves a policy entry's rule source, preferring inline text.
func (b *Backend) ruleText(policyMap map[string]interface{}) (string, bool) {
	if text, ok := stringAt(policyMap, cfgRule); ok {
		return text, true
	}

	filename, ok := stringAt(policyMap, cfgRuleFilename)
	if !ok {
		return "", false
	}

	doc := config.VConfig.GetString(fmt.Sprintf("%s.filedata.%s", mockDomainCfg, filename))
	if len(doc) == 0 {
		// data not in config so try to read from the filesystem relative to the config yaml
		dir := filepath.Dir(config.VConfig.ConfigFileUsed())
		filedata, err := os.ReadFile(filepath.Clean(dir + string(filepath.Separator) + filename))
		if err == nil {
			doc = string(filedata)
		}
	}
	if len(doc) == 0 {
		return "", false
	}
	return doc, true
}

// exportPolicy compiles a config entry into a [model.Policy]. Missing
// resource or action patterns default to ".*".
func (b *Backend) exportPolicy(policyMap map[string]interface{}) (*model.Policy, *common.PolicyError) {
	mrn, ok := stringAt(policyMap, cfgMrn)
	if !ok {
		return nil, common.NewError(common.ReasonInvalidParam, "policy entry has no mrn")
	}

	resource, ok := stringAt(policyMap, cfgResource)
	if !ok {
		resource = ".*"
	}
	action, ok := stringAt(policyMap, cfgAction)
	if !ok {
		action = ".*"
	}

	text, ok := b.ruleText(policyMap)
	if !ok {
		return nil, common.NewError(common.ReasonNotFound, fmt.Sprintf("policy not found: %s", mrn))
	}

	pattern, err := model.NewActionPattern(resource, action)
	if err != nil {
		return nil, common.NewError(common.ReasonCompilation, fmt.Sprintf("compilation failed: %s", mrn))
	}

	policy, err := model.NewPolicy(mrn, pattern, text)
	if err != nil {
		return nil, common.NewError(common.ReasonCompilation, fmt.Sprintf("compilation failed: %s", mrn))
	}
	policy.Annotations = annotationsAt(policyMap, cfgMetadata)

	return policy, nil
}

func (b *Backend) policyEntries() ([]interface{}, bool) {
	policyConfig := config.VConfig.Get(fmt.Sprintf("%s.policies", mockDomainCfg))
	if policyConfig == nil {
		return nil, false
	}
	entries, ok := policyConfig.([]interface{})
	return entries, ok
}

// GetPolicy retrieves a policy by its MRN from the mock backend configuration.
func (b *Backend) GetPolicy(ctx context.Context, mrn string) (*model.Policy, *common.PolicyError) {
	if strings.Contains(mrn, "networkerror") {
		return nil, &common.PolicyError{ReasonCode: common.ReasonNetwork, Reason: "network error"}
	}

	entries, ok := b.policyEntries()
	if !ok {
		return nil, common.NewError(common.ReasonNotFound, fmt.Sprintf("policy not found: %s", mrn))
	}

	for _, policy := range entries {
		policyMap := policy.(map[string]interface{})
		pmrn, ok := stringAt(policyMap, cfgMrn)
		if !ok || mrn != pmrn {
			continue
		}
		return b.exportPolicy(policyMap)
	}

	return nil, common.NewError(common.ReasonNotFound, fmt.Sprintf("policy not found: %s", mrn))
}

// GetPolicies returns the configured policies whose action pattern matches
// the given action identity, in declaration order.
func (b *Backend) GetPolicies(ctx context.Context, id rule.ActionID) (model.PolicySet, *common.PolicyError) {
	if strings.Contains(id.Resource, "networkerror") {
		return nil, &common.PolicyError{ReasonCode: common.ReasonNetwork, Reason: "network error"}
	}

	logger.Debugf(mockAgent, "GetPolicies", "resource %v action %v", id.Resource, id.Action)

	entries, ok := b.policyEntries()
	if !ok {
		return model.PolicySet{}, nil
	}

	set := model.PolicySet{}
	for _, policy := range entries {
		p, perr := b.exportPolicy(policy.(map[string]interface{}))
		if perr != nil {
			return nil, perr
		}
		if p.ActionID.Matches(id) {
			set = append(set, p)
		}
	}
	return set, nil
}

// ListPolicies returns every configured policy in declaration order.
func (b *Backend) ListPolicies(ctx context.Context) (model.PolicySet, *common.PolicyError) {
	entries, ok := b.policyEntries()
	if !ok {
		return model.PolicySet{}, nil
	}

	set := make(model.PolicySet, 0, len(entries))
	for _, policy := range entries {
		p, perr := b.exportPolicy(policy.(map[string]interface{}))
		if perr != nil {
			return nil, perr
		}
		set = append(set, p)
	}
	return set, nil
}
