package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// WSEvent represents a received WebSocket frame.
type WSEvent struct {
	Type     string         `json:"type"`
	Raw      json.RawMessage // Original JSON
	Parsed   map[string]any  // Parsed for assertions
	Received time.Time       // When we received it
}

// WSClient connects to one meeting endpoint and collects every frame the
// server sends until the connection closes.
type WSClient struct {
	conn    *websocket.Conn
	events  []WSEvent
	readErr error
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// WSConnect establishes a WebSocket connection to the test server and
// starts collecting frames in a background goroutine.
func WSConnect(ctx context.Context, wsURL string) (*WSClient, error) {
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("WebSocket dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(ctx)
	c := &WSClient{
		conn:   conn,
		ctx:    clientCtx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// SendJSON marshals v and writes it as one text frame.
func (c *WSClient) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// WaitForEvent waits until a frame matching the predicate arrives, or timeout.
func (c *WSClient) WaitForEvent(predicate func(WSEvent) bool, timeout time.Duration) (*WSEvent, error) {
	deadline := time.After(timeout)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for event (collected %d events)", len(c.Events()))
		case <-tick.C:
			c.mu.Lock()
			for i := range c.events {
				if predicate(c.events[i]) {
					evt := c.events[i]
					c.mu.Unlock()
					return &evt, nil
				}
			}
			c.mu.Unlock()
		}
	}
}

// WaitForEventType waits for a frame with the given type.
func (c *WSClient) WaitForEventType(eventType string, timeout time.Duration) (*WSEvent, error) {
	return c.WaitForEvent(func(e WSEvent) bool {
		return e.Type == eventType
	}, timeout)
}

// AwaitClose blocks until the server closes the connection and returns the
// close code and reason. Frames arriving before the close are still
// collected and remain available via Events.
func (c *WSClient) AwaitClose(timeout time.Duration) (websocket.StatusCode, string, error) {
	select {
	case <-c.doneCh:
	case <-time.After(timeout):
		return 0, "", fmt.Errorf("timeout waiting for close (collected %d events)", len(c.Events()))
	}

	c.mu.Lock()
	err := c.readErr
	c.mu.Unlock()

	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Reason, nil
	}
	return 0, "", fmt.Errorf("connection ended without close frame: %w", err)
}

// Events returns a snapshot of all collected frames.
func (c *WSClient) Events() []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]WSEvent, len(c.events))
	copy(result, c.events)
	return result
}

// EventsByType returns collected frames filtered by type.
func (c *WSClient) EventsByType(eventType string) []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []WSEvent
	for _, e := range c.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// Close tears the connection down and waits for the read loop to exit.
func (c *WSClient) Close() error {
	c.cancel()
	_ = c.conn.CloseNow()
	<-c.doneCh
	return nil
}

// readLoop reads frames until the connection ends, recording the terminal
// error so AwaitClose can report the close code.
func (c *WSClient) readLoop() {
	defer close(c.doneCh)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}

		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			continue // Skip malformed frames.
		}

		evt := WSEvent{
			Raw:      json.RawMessage(data),
			Parsed:   parsed,
			Received: time.Now(),
		}
		if t, ok := parsed["type"].(string); ok {
			evt.Type = t
		}

		c.mu.Lock()
		c.events = append(c.events, evt)
		c.mu.Unlock()
	}
}
