package netplay

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	appconfig "github.com/tomz197/circus/internal/config"
	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/loop/server"
	"github.com/tomz197/circus/internal/loop/session"
	"github.com/tomz197/circus/internal/object"
	"github.com/tomz197/circus/internal/physics"
)

const (
	writeWait      = 10 * time.Second
	helloWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4 << 10

	// Largest viewport a browser may request, in logical units.
	maxViewport = 4000.0
)

// Options configures a Handler.
type Options struct {
	Hub         *server.Hub
	Tuning      *appconfig.TuningSource // Read at every start; nil means defaults
	Logger      *log.Logger
	CheckOrigin func(r *http.Request) bool // nil enforces same origin
	NewRand     func() object.Rand         // Per-connection spawn randomness
}

// Handler upgrades requests to websockets and runs one session per connection.
type Handler struct {
	upgrader websocket.Upgrader
	hub      *server.Hub
	tuning   *appconfig.TuningSource
	logger   *log.Logger
	newRand  func() object.Rand
}

// NewHandler creates a websocket game handler.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	hub := opts.Hub
	if hub == nil {
		hub = server.NewHub(logger)
	}
	newRand := opts.NewRand
	if newRand == nil {
		newRand = func() object.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		hub:     hub,
		tuning:  opts.Tuning,
		logger:  logger,
		newRand: newRand,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	p := &player{
		h:       h,
		conn:    conn,
		logger:  h.logger.With("remote", r.RemoteAddr),
		cmds:    make(chan Envelope, 32),
		readErr: make(chan error, 1),
		done:    make(chan struct{}),
	}
	if err := p.run(); err != nil && !isClosed(err) {
		p.logger.Warn("connection ended", "err", err)
	}
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

// player is the server side of one browser connection. Only the goroutine
// in run touches the session and writes to the socket.
type player struct {
	h       *Handler
	conn    *websocket.Conn
	logger  *log.Logger
	session *session.Session
	handle  *server.ClientHandle

	intent  atomic.Uint64 // math.Float64bits of the latest intent
	cmds    chan Envelope
	readErr chan error
	done    chan struct{}

	events []Event
	dirty  bool // State changed since the last broadcast
}

func (p *player) run() error {
	defer close(p.done)

	hello, err := p.awaitHello()
	if err != nil {
		_ = p.send(MsgError, Error{Message: err.Error()})
		return err
	}

	name := hello.Name
	if name == "" {
		name = "web"
	}
	p.handle = p.h.hub.Register(name)
	defer p.h.hub.Unregister(p.handle.ID)
	p.logger = p.logger.With("user", name)

	tuning := config.DefaultTuning()
	if p.h.tuning != nil {
		tuning = p.h.tuning.Current()
	}
	p.session, err = session.New(tuning,
		session.WithRand(p.h.newRand()),
		session.WithLogger(p.logger),
		session.WithEventHandler(func(ev session.Event) {
			p.events = append(p.events, EventFromSession(ev))
		}),
	)
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}

	if err := p.send(MsgWelcome, Welcome{
		V:           ProtocolVersion,
		ID:          p.handle.ID,
		TickHz:      config.TickRate,
		BroadcastHz: config.BroadcastRate,
		Kinds:       Kinds(),
	}); err != nil {
		return err
	}
	p.dirty = true

	go p.readLoop()

	tick := time.NewTicker(config.TickTime)
	defer tick.Stop()
	broadcast := time.NewTicker(config.BroadcastTime)
	defer broadcast.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-tick.C:
			if p.session.Phase() != session.PhaseRunning {
				continue
			}
			p.session.SetMoveIntent(math.Float64frombits(p.intent.Load()))
			p.session.Tick()
			p.dirty = true
			if err := p.flushEvents(); err != nil {
				return err
			}

		case env := <-p.cmds:
			if err := p.apply(env); err != nil {
				if err := p.send(MsgError, Error{Message: err.Error()}); err != nil {
					return err
				}
				continue
			}
			p.dirty = true
			if err := p.flushEvents(); err != nil {
				return err
			}

		case <-broadcast.C:
			if !p.dirty {
				continue
			}
			if err := p.send(MsgState, StateFromSnapshot(p.session.Snapshot())); err != nil {
				return err
			}
			p.dirty = false

		case <-ping.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case ev := <-p.handle.EventsCh:
			if ev.Type != server.EventServerShutdown {
				continue
			}
			p.session.Pause()
			_ = p.send(MsgEvent, Event{Type: EventShutdown})
			_ = p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return nil

		case err := <-p.readErr:
			st := p.session.Stats()
			p.logger.Info("player left", "score", st.Score, "level", st.Level)
			return err
		}
	}
}

// awaitHello reads the first message, which must be a hello of our version.
func (p *player) awaitHello() (Hello, error) {
	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(helloWait))
	_, msg, err := p.conn.ReadMessage()
	if err != nil {
		return Hello{}, fmt.Errorf("await hello: %w", err)
	}
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return Hello{}, err
	}
	if env.T != MsgHello {
		return Hello{}, fmt.Errorf("expected %s, got %s", MsgHello, env.T)
	}
	hello, err := DecodePayload[Hello](env)
	if err != nil {
		return Hello{}, err
	}
	if hello.V != ProtocolVersion {
		return Hello{}, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	return hello, nil
}

// readLoop forwards messages to the run loop. Movement is stored directly so
// a flood of input never queues behind lifecycle commands.
func (p *player) readLoop() {
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			p.readErr <- err
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := DecodeEnvelope(msg)
		if err != nil {
			env = Envelope{T: MsgError}
		}
		if env.T == MsgInput {
			if in, err := DecodePayload[Input](env); err == nil {
				p.intent.Store(math.Float64bits(physics.ClampUnit(in.Intent)))
				continue
			}
		}
		select {
		case p.cmds <- env:
		case <-p.done:
			return
		}
	}
}

var errBadMessage = errors.New("malformed message")

// apply runs a lifecycle command on the session.
func (p *player) apply(env Envelope) error {
	switch env.T {
	case MsgStart:
		p.stageTuning()
		p.session.Start()
	case MsgRestart:
		p.stageTuning()
		p.session.Restart()
	case MsgPause:
		p.session.Pause()
	case MsgResume:
		p.session.Resume()
	case MsgResize:
		rs, err := DecodePayload[Resize](env)
		if err != nil {
			return err
		}
		p.session.Resize(min(rs.W, maxViewport), min(rs.H, maxViewport))
	case MsgInput:
		_, err := DecodePayload[Input](env)
		return err
	case MsgHello:
		// Already greeted.
	case MsgError:
		return errBadMessage
	default:
		return fmt.Errorf("unknown message type %q", env.T)
	}
	return nil
}

func (p *player) stageTuning() {
	if p.h.tuning == nil {
		return
	}
	if err := p.session.SetTuning(p.h.tuning.Current()); err != nil {
		p.logger.Warn("tuning rejected", "err", err)
	}
}

func (p *player) flushEvents() error {
	for _, ev := range p.events {
		if err := p.send(MsgEvent, ev); err != nil {
			return err
		}
	}
	p.events = p.events[:0]
	return nil
}

func (p *player) send(t string, payload any) error {
	data, err := Encode(t, payload)
	if err != nil {
		return err
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", t, err)
	}
	return nil
}
