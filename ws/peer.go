package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrPeerClosed = errors.New("connection closed")

// Peer wraps one websocket connection. Writes are serialized because the
// routing engine, the flush timer and other connections' handlers may all
// forward to the same peer.
type Peer struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func NewPeer(conn *websocket.Conn) *Peer {
	return &Peer{conn: conn}
}

// SendJSON marshals v and writes it as a text frame. Delivery is
// best-effort: the peer may close between the open check and the write, in
// which case the write error is returned and the message is lost.
func (p *Peer) SendJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.conn == nil {
		return ErrPeerClosed
	}
	return p.conn.WriteMessage(websocket.TextMessage, payload)
}

// Open reports whether the peer has not been closed yet.
func (p *Peer) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.conn != nil
}

// Close marks the peer closed and closes the underlying socket. Safe to call
// more than once.
func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
