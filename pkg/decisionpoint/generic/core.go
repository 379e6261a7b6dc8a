//
//  Copyright © Manetu Inc. All rights reserved.
//

package generic

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/manetu/ruleengine/pkg/core"
	"github.com/manetu/ruleengine/pkg/core/options"
	"github.com/manetu/ruleengine/pkg/decisionpoint"

	"github.com/labstack/echo/v4"
)

// DecisionResponse is the body returned by the decision endpoint.
type DecisionResponse struct {
	Allow bool `json:"allow"`
}

// Server represents a generic decision point server that serves the REST API.
type Server struct {
	echo *echo.Echo
}

// CreateServer creates and starts a new generic decision point server.
//
// The server accepts authorization requests at POST /v1/decision. The request
// body is the request JSON and the response carries the decision:
//
//	POST /v1/decision
//	{"action_id": {"resource": "echoer1", "action": "handle_message"}, ...}
//	-> {"allow": true}
//
// The optional probe query parameter suppresses the access record for the
// decision, supporting capability discovery without polluting the audit
// trail:
//
//	POST /v1/decision?probe=true
func CreateServer(pe core.PolicyEngine, port int) (decisionpoint.Server, error) {
	e := echo.New()

	e.POST("/v1/decision", decision(pe))

	// Start server in goroutine since e.Start() blocks
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	return &Server{
		echo: e,
	}, nil
}

// decision adapts the policy engine to the decision endpoint. Malformed
// bodies are rejected by the binder; evaluation and backend failures degrade
// to a deny decision rather than an error response.
func decision(pe core.PolicyEngine) echo.HandlerFunc {
	return func(c echo.Context) error {
		var request map[string]interface{}
		if err := c.Bind(&request); err != nil {
			return err
		}

		probe := false
		if v := c.QueryParam("probe"); v != "" {
			probe, _ = strconv.ParseBool(v)
		}

		allow, _ := pe.Authorize(c.Request().Context(), request, options.SetProbeMode(probe))
		return c.JSON(http.StatusOK, &DecisionResponse{
			Allow: allow,
		})
	}
}

// Stop gracefully stops the Server by shutting down the Echo HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
