package preview

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Evidence map[string]any `json:"evidence,omitempty"`
	T        time.Time      `json:"t"`
}

// Diagnostics fans diagnostics out to /diag websocket clients and keeps the most recent ones
// for clients that connect later.
type Diagnostics struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	recent  []Diagnostic
	keep    int
	up      websocket.Upgrader
}

func NewDiagnostics(keep int) *Diagnostics {
	if keep <= 0 {
		keep = 64
	}
	return &Diagnostics{
		clients: map[*websocket.Conn]bool{},
		keep:    keep,
		up:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Push records d and sends it to every connected client.
func (d *Diagnostics) Push(diag Diagnostic) {
	if diag.T.IsZero() {
		diag.T = time.Now()
	}
	b, err := json.Marshal(diag)
	if err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recent = append(d.recent, diag)
	if len(d.recent) > d.keep {
		d.recent = d.recent[len(d.recent)-d.keep:]
	}
	for c := range d.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

// Recent returns a copy of the retained diagnostics, oldest first.
func (d *Diagnostics) Recent() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Diagnostic(nil), d.recent...)
}

// Handle upgrades to a diagnostics stream, replaying retained entries first.
func (d *Diagnostics) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := d.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	d.mu.Lock()
	for _, diag := range d.recent {
		if b, err := json.Marshal(diag); err == nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.TextMessage, b)
		}
	}
	d.clients[conn] = true
	d.mu.Unlock()

	go func() {
		defer func() {
			d.mu.Lock()
			delete(d.clients, conn)
			d.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Hook turns warn and error log events into diagnostics.
func (d *Diagnostics) Hook() zerolog.Hook { return diagHook{d} }

type diagHook struct{ d *Diagnostics }

func (h diagHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	var sev Severity
	switch {
	case level >= zerolog.ErrorLevel && level <= zerolog.PanicLevel:
		sev = Err
	case level == zerolog.WarnLevel:
		sev = Warn
	default:
		return
	}
	h.d.Push(Diagnostic{Severity: sev, Code: "LOG." + strings.ToUpper(level.String()), Summary: msg})
}
