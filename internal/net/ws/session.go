package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// outbound is the hub-owned frame queue for one subscriber.
type outbound interface {
	Messages() <-chan []byte
}

// session serializes all writes to one connection. State frames arrive on
// the hub queue and control replies come from the read loop; both funnel
// through writeMessage so the connection never sees concurrent writers.
type session struct {
	conn         *websocket.Conn
	sub          outbound
	writeTimeout time.Duration

	writeMu sync.Mutex
	seqMu   sync.Mutex
	seq     uint64
}

func newSession(conn *websocket.Conn, sub outbound, writeTimeout time.Duration) *session {
	return &session{conn: conn, sub: sub, writeTimeout: writeTimeout}
}

// runWriter pumps state frames until the hub closes the queue.
func (s *session) runWriter() {
	for data := range s.sub.Messages() {
		if err := s.writeMessage(data); err != nil {
			// The read loop notices the broken connection and tears the
			// session down; keep draining so the hub never blocks.
			continue
		}
	}
	s.conn.Close()
}

func (s *session) writeMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// sendJSON writes a control reply, reporting false when the connection is
// gone.
func (s *session) sendJSON(payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return true
	}
	return s.writeMessage(data) == nil
}

func (s *session) stop() {
	s.conn.Close()
}

func (s *session) lastSeq() uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.seq
}

func (s *session) storeSeq(seq uint64) {
	s.seqMu.Lock()
	if seq > s.seq {
		s.seq = seq
	}
	s.seqMu.Unlock()
}
