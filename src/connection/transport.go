package connection

import (
	"net/http"
	"sync"
	"time"

	"market-sync/src/helpers"
	"market-sync/src/interfaces"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait        = 2 * time.Second
	handshakeTimeout = 10 * time.Second
	maxMessageSize   = 1024 * 1024 // 1MB for larger JSON messages
)

// -----------------------------------------------------------------------------
// wsTransport wraps one gorilla/websocket connection behind ITransport.
// -----------------------------------------------------------------------------

type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// -----------------------------------------------------------------------------

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, helpers.NewTransportError("read failed", err)
	}
	return data, nil
}

// -----------------------------------------------------------------------------

func (t *wsTransport) WriteMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return helpers.NewTransportError("write failed", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (t *wsTransport) Close() error {
	t.writeMu.Lock()
	// Best effort close handshake; the peer may already be gone
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()

	return t.conn.Close()
}

// -----------------------------------------------------------------------------
// WebsocketDialer opens wsTransport connections.
// -----------------------------------------------------------------------------

type WebsocketDialer struct {
	AuthToken string // Optional bearer token
}

// -----------------------------------------------------------------------------

func NewWebsocketDialer(authToken string) *WebsocketDialer {
	return &WebsocketDialer{AuthToken: authToken}
}

// -----------------------------------------------------------------------------

func (d *WebsocketDialer) Dial(url string) (interfaces.ITransport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	header := http.Header{}
	if d.AuthToken != "" {
		header.Set("Authorization", "Bearer "+d.AuthToken)
	}

	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return nil, helpers.NewTransportError("dial failed", err)
	}

	conn.SetReadLimit(maxMessageSize)
	return &wsTransport{conn: conn}, nil
}
