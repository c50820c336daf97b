// Package preview serves live frames, the active pattern's controls and health over HTTP and
// websockets.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/engine"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/pixel"
)

// Engine is the part of the render engine the preview drives.
type Engine interface {
	Patterns() []string
	Active() string
	SetActive(name string) error
	ControlValues() []engine.ControlState
	SetControl(label string, v float64) error
	SetBrightness(b float64)
	Stats() engine.Stats
}

const writeWait = 200 * time.Millisecond

type Server struct {
	// Diag, when set, is mounted on /diag and receives rejected control messages.
	Diag *Diagnostics

	mu      sync.RWMutex
	eng     Engine
	count   int
	fps     int
	log     zerolog.Logger
	start   time.Time
	clients map[*websocket.Conn]bool
	up      websocket.Upgrader

	frames  chan []byte
	frameID uint64
	rgb     []byte
}

func NewServer(eng Engine, count, fps int, log zerolog.Logger) *Server {
	return &Server{
		eng:     eng,
		count:   count,
		fps:     fps,
		log:     log,
		start:   time.Now(),
		clients: map[*websocket.Conn]bool{},
		up:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		frames:  make(chan []byte, 1),
	}
}

// Routes mounts the handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleFrames)
	mux.HandleFunc("/control", s.HandleControls)
	mux.HandleFunc("/health", s.HandleHealth)
	if s.Diag != nil {
		mux.HandleFunc("/diag", s.Diag.Handle)
	}
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

// Broadcast queues a frame for websocket clients without blocking the caller. A frame still
// queued when the next arrives is dropped.
func (s *Server) Broadcast(frame []pixel.Color) {
	s.mu.Lock()
	if len(s.clients) == 0 {
		s.mu.Unlock()
		return
	}
	s.frameID++
	s.rgb = led.RGBBytes(s.rgb, frame)
	b, err := json.Marshal(frameMsg{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: s.rgb})
	s.mu.Unlock()
	if err != nil {
		return
	}
	select {
	case s.frames <- b:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- b:
		default:
		}
	}
}

// Run writes queued frames to clients until ctx is done.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			return
		case b := <-s.frames:
			s.mu.RLock()
			for c := range s.clients {
				c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
					s.log.Debug().Err(err).Msg("write frame")
				}
			}
			s.mu.RUnlock()
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

// HandleFrames upgrades to a frame stream. The first message describes the topology.
func (s *Server) HandleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.sendJSON(conn, s.topology())
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ControlMsg is a request on the control socket.
//
//	{"op":"list"}
//	{"op":"set","label":"Speed","value":0.5}
//	{"op":"pattern","name":"rings"}
//	{"op":"brightness","value":0.4}
type ControlMsg struct {
	Op    string  `json:"op"`
	Label string  `json:"label,omitempty"`
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// ControlReply answers every control message.
type ControlReply struct {
	Active   string                `json:"active"`
	Patterns []string              `json:"patterns"`
	Controls []engine.ControlState `json:"controls"`
	Error    string                `json:"error,omitempty"`
}

var errUnknownOp = errors.New("unknown op")

// HandleControls lists controls for a plain GET and speaks ControlMsg over a websocket.
func (s *Server) HandleControls(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.reply(nil))
		return
	}
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendJSON(conn, s.reply(err))
			continue
		}
		err = s.apply(msg)
		if err != nil && s.Diag != nil {
			s.Diag.Push(Diagnostic{
				Severity: Warn,
				Code:     "CONTROL.REJECTED",
				Summary:  err.Error(),
				Evidence: map[string]any{"op": msg.Op, "label": msg.Label, "name": msg.Name},
			})
		}
		s.sendJSON(conn, s.reply(err))
	}
}

func (s *Server) apply(msg ControlMsg) error {
	switch msg.Op {
	case "list", "":
		return nil
	case "set":
		return s.eng.SetControl(msg.Label, msg.Value)
	case "pattern":
		return s.eng.SetActive(msg.Name)
	case "brightness":
		s.eng.SetBrightness(msg.Value)
		return nil
	}
	return errUnknownOp
}

func (s *Server) reply(err error) ControlReply {
	r := ControlReply{
		Active:   s.eng.Active(),
		Patterns: s.eng.Patterns(),
		Controls: s.eng.ControlValues(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.eng.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"frame_id":   st.Frame,
		"uptime_s":   time.Since(s.start).Seconds(),
		"count":      s.count,
		"fps":        s.fps,
		"brightness": st.Brightness,
		"active":     st.Active,
		"render_ms":  st.RenderMS,
		"post_ms":    st.PostMS,
		"total_ms":   st.TotalMS,
	})
}

func (s *Server) topology() map[string]any {
	return map[string]any{
		"count":    s.count,
		"fps":      s.fps,
		"active":   s.eng.Active(),
		"patterns": s.eng.Patterns(),
	}
}

func (s *Server) sendJSON(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
