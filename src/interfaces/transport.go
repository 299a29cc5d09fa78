package interfaces

// -----------------------------------------------------------------------------
// ITransport abstracts one streaming connection so tests can inject fakes.
// The production implementation wraps a gorilla/websocket connection.
// -----------------------------------------------------------------------------

type ITransport interface {

	// ReadMessage blocks until the next frame arrives or the transport fails.
	ReadMessage() ([]byte, error)

	// -----------------------------------------------------------------------------

	// WriteMessage sends one text frame.
	WriteMessage(data []byte) error

	// -----------------------------------------------------------------------------

	// Close tears the connection down with a normal-closure code.
	Close() error
}

// -----------------------------------------------------------------------------
// IDialer opens transports. One dial per connection attempt.
// -----------------------------------------------------------------------------

type IDialer interface {
	Dial(url string) (ITransport, error)
}
