package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// Ping/Pong settings
const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

// ModelStream pushes model swap events over WebSocket
// ⭐ SSOT: 모델 교체 알림은 이 스트림에서만
type ModelStream struct {
	service  *estimation.Service
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewModelStream creates a new model event stream
func NewModelStream(service *estimation.Service, log *logger.Logger) *ModelStream {
	return &ModelStream{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 대시보드가 다른 origin에서 접속
			},
		},
		logger: log,
	}
}

// ServeHTTP upgrades the connection and streams events until the client leaves
// GET /ws/model
func (s *ModelStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.service.Subscribe(8)
	defer unsubscribe()

	// 접속 직후 현재 모델 상태 전송
	if tm := s.service.Current(); tm != nil {
		current := estimation.ModelEvent{
			Version:   tm.Version(),
			TrainedAt: tm.TrainedAt(),
			Records:   len(tm.Records()),
			Columns:   tm.Space().Len(),
		}
		if err := s.write(conn, current); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go s.readLoop(conn, done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.write(conn, ev); err != nil {
				s.logger.WithError(err).Debug("WebSocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *ModelStream) write(conn *websocket.Conn, ev estimation.ModelEvent) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

// readLoop discards client messages and detects disconnects
func (s *ModelStream) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
