package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to begin accepting production work.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Podpress.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Podpress.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Podpress.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartSession begins a production session for an uploaded recording.
func (c *Client) StartSession(req StartSessionRequest) (*StartSessionResponse, error) {
	var resp StartSessionResponse
	if err := c.client.Call("Podpress.StartSession", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetectIntents runs intent detection for the session transcript.
func (c *Client) DetectIntents() (*DetectIntentsResponse, error) {
	var resp DetectIntentsResponse
	if err := c.client.Call("Podpress.DetectIntents", DetectIntentsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmIntent records the user's answer for one category.
func (c *Client) ConfirmIntent(category, answer string) (*ConfirmIntentResponse, error) {
	var resp ConfirmIntentResponse
	req := ConfirmIntentRequest{Category: category, Answer: answer}
	if err := c.client.Call("Podpress.ConfirmIntent", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanRetakes runs the retake scan for the session source.
func (c *Client) ScanRetakes() (*ScanRetakesResponse, error) {
	var resp ScanRetakesResponse
	if err := c.client.Call("Podpress.ScanRetakes", ScanRetakesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FinishRetakeReview closes the retake review.
func (c *Client) FinishRetakeReview(req FinishRetakeReviewRequest) (*FinishRetakeReviewResponse, error) {
	var resp FinishRetakeReviewResponse
	if err := c.client.Call("Podpress.FinishRetakeReview", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrepareCommands prepares spoken command contexts for review.
func (c *Client) PrepareCommands() (*PrepareCommandsResponse, error) {
	var resp PrepareCommandsResponse
	if err := c.client.Call("Podpress.PrepareCommands", PrepareCommandsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteCommand resolves one spoken command.
func (c *Client) ExecuteCommand(req ExecuteCommandRequest) (*ExecuteCommandResponse, error) {
	var resp ExecuteCommandResponse
	if err := c.client.Call("Podpress.ExecuteCommand", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetMetadata records episode metadata and the publish decision.
func (c *Client) SetMetadata(req SetMetadataRequest) (*SetMetadataResponse, error) {
	var resp SetMetadataResponse
	if err := c.client.Call("Podpress.SetMetadata", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Produce submits the assembly job for the current session.
func (c *Client) Produce() (*ProduceResponse, error) {
	var resp ProduceResponse
	if err := c.client.Call("Podpress.Produce", ProduceRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Publish publishes the completed episode manually.
func (c *Client) Publish(req PublishRequest) (*PublishResponse, error) {
	var resp PublishResponse
	if err := c.client.Call("Podpress.Publish", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel stops watching the current session locally.
func (c *Client) Cancel() (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.client.Call("Podpress.Cancel", CancelRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Podpress.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
