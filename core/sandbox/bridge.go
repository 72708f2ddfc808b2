package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Bridge speaks JSON over a WebSocket to a FoxDot bridge process.
// Requests and responses are correlated by id; the bridge executes one
// request at a time, matching the engine's blocking call pipeline.
type Bridge struct {
	mu   sync.Mutex
	conn *websocket.Conn
	url  string
}

type executeRequest struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

type executeResponse struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Output  string   `json:"output,omitempty"`
	Error   string   `json:"error,omitempty"`
	Players []string `json:"players,omitempty"`
}

// Dial connects to a FoxDot bridge at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Bridge, error) {
	ctx, span := tracer.Start(ctx, "dial sandbox bridge")
	defer span.End()
	span.SetAttributes(attribute.String("request.url", url))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		err = fmt.Errorf("dialling sandbox bridge: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.InfoContext(ctx, "connected to sandbox bridge", "url", url)
	return &Bridge{conn: conn, url: url}, nil
}

// Execute sends code to the bridge and waits for the matching result.
func (b *Bridge) Execute(ctx context.Context, code string, description string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "execute sandbox code")
	defer span.End()
	span.SetAttributes(attribute.String("request.description", description))

	b.mu.Lock()
	defer b.mu.Unlock()

	request := executeRequest{
		Type:        "execute",
		ID:          uuid.NewString(),
		Code:        code,
		Description: description,
	}
	if err := b.conn.WriteJSON(request); err != nil {
		err = fmt.Errorf("sending execute request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var response executeResponse
		if err := b.conn.ReadJSON(&response); err != nil {
			err = fmt.Errorf("reading execute response: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if response.Type != "result" || response.ID != request.ID {
			continue
		}

		span.SetAttributes(
			attribute.Bool("response.success", response.Success),
			attribute.StringSlice("response.players", response.Players),
		)
		return &Result{
			Success: response.Success,
			Output:  response.Output,
			Error:   response.Error,
			Players: response.Players,
		}, nil
	}
}

// Close shuts the connection down cleanly.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}
	_ = b.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := b.conn.Close()
	b.conn = nil
	if err != nil {
		return fmt.Errorf("closing sandbox bridge: %w", err)
	}
	logger.InfoContext(ctx, "sandbox bridge closed", "url", b.url)
	return nil
}
