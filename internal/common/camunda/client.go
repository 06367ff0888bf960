// internal/common/camunda/client.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reclamations/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client starts complaint workflow instances on a Zeebe gateway. It is the
// alternative workflow-automation backend to the HTTP flow endpoint.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	ProcessID              string
}

// NewClientWithConfig dials the gateway and checks the topology once.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.GatewayAddress == "" {
		return nil, errors.NewConfigurationError("workflow.zeebe.gateway_address")
	}
	if config.ProcessID == "" {
		return nil, errors.NewConfigurationError("workflow.zeebe.process_id")
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe gateway at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Trigger starts the configured process with the payload as variables and
// waits for the instance to finish. The returned map holds the instance's
// final variables plus "processInstanceKey".
func (c *Client) Trigger(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	cmd, err := c.client.NewCreateInstanceCommand().
		BPMNProcessId(c.config.ProcessID).
		LatestVersion().
		VariablesFromMap(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow variables: %w", err)
	}

	resp, err := cmd.WithResult().Send(ctx)
	if err != nil {
		return nil, mapZeebeError(err, "create-instance")
	}

	out := make(map[string]interface{})
	if vars := resp.GetVariables(); vars != "" {
		if err := json.Unmarshal([]byte(vars), &out); err != nil {
			return nil, fmt.Errorf("failed to decode workflow result: %w", err)
		}
	}
	out["processInstanceKey"] = strconv.FormatInt(resp.GetProcessInstanceKey(), 10)
	return out, nil
}

// HealthCheck performs a basic health check against the Zeebe gateway.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// mapZeebeError converts gateway errors into application errors. A missing
// process definition cannot succeed on retry.
func mapZeebeError(err error, operation string) error {
	lowerMsg := strings.ToLower(err.Error())
	wrapped := fmt.Errorf("zeebe operation '%s' failed: %w", operation, err)

	switch {
	case strings.Contains(lowerMsg, "not found"):
		return errors.NewConfigurationError("workflow.zeebe.process_id: " + err.Error())
	case strings.Contains(lowerMsg, "permission denied"),
		strings.Contains(lowerMsg, "unauthenticated"):
		return errors.NewConfigurationError("workflow.zeebe credentials: " + err.Error())
	default:
		return errors.NewWorkflowCallError(wrapped)
	}
}
