package link

import (
	"context"

	"github.com/gorilla/websocket"
)

// Conn is the minimal transport surface the manager needs. *websocket.Conn
// satisfies it; tests substitute a fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a transport to the given address.
type Dialer func(ctx context.Context, addr string) (Conn, error)

// WebsocketDialer dials addr with the default gorilla dialer.
func WebsocketDialer(ctx context.Context, addr string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}
