// Package client runs one terminal player: it reads keys, drives a session
// at the frame rate and draws the result with half-block graphics.
package client

import (
	"bufio"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	appconfig "github.com/tomz197/circus/internal/config"
	"github.com/tomz197/circus/internal/draw"
	"github.com/tomz197/circus/internal/input"
	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/loop/server"
	"github.com/tomz197/circus/internal/loop/session"
	"github.com/tomz197/circus/internal/object"
)

// hitColor is the burst shown when a hazard lands.
const hitColor draw.Color = 0xff3b30

// Client handles rendering and input for a single connection.
type Client struct {
	hub          *server.Hub
	handle       *server.ClientHandle
	session      *session.Session
	tuning       *appconfig.TuningSource
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	fxRand       *rand.Rand // Sparkle directions only
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Tuning       *appconfig.TuningSource // Read at every start; nil means defaults
	Logger       *log.Logger
	Rand         object.Rand // Spawn randomness; nil seeds from the clock
}

// NewClient creates a client registered with hub.
func NewClient(hub *server.Hub, r *bufio.Reader, w io.Writer, opts ClientOptions) (*Client, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("user", opts.Username)

	tuning := config.DefaultTuning()
	if opts.Tuning != nil {
		tuning = opts.Tuning.Current()
	}

	c := &Client{
		hub:          hub,
		tuning:       opts.Tuning,
		state:        NewClientState(),
		writer:       w,
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		logger:       logger,
		fxRand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithEventHandler(c.onSessionEvent),
	}
	if opts.Rand != nil {
		sessOpts = append(sessOpts, session.WithRand(opts.Rand))
	}
	sess, err := session.New(tuning, sessOpts...)
	if err != nil {
		return nil, err
	}
	c.session = sess

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	c.canvas = draw.NewCanvas(renderWidth, renderHeight, config.UnitsPerCell)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter = draw.NewChunkWriter(w, offsetCol, offsetRow)
	c.session.Resize(c.canvas.LogicalWidth(), c.canvas.LogicalHeight())

	c.handle = hub.Register(opts.Username)
	c.inputStream = input.StartStream(r)
	return c, nil
}

// Run starts the client loop. Blocks until the client quits, idles out or
// the server shuts down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.hub.Unregister(c.handle.ID)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for server events
		c.processServerEvents()

		// Handle screen resize
		c.updateScreen()

		// Handle game state
		switch c.state.GameState {
		case GameStateStart:
			c.updateStartState()
		case GameStatePlaying:
			c.updatePlayingState()
		case GameStatePaused:
			c.updatePausedState()
		case GameStateOver:
			c.updateOverState()
		case GameStateShutdown:
			c.updateShutdownState()
		}
		if c.state.GameState != GameStateShutdown {
			c.state.GameState = gameStateFor(c.session.Phase())
		}
		c.state.updateParticles(c.state.delta.Seconds())

		// Draw frame
		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.state.clearParticles()
	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if len(c.state.Input.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.logger.Info("disconnecting inactive client")
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit || c.state.Input.Closed {
		c.state.Running = false
	}
}

// processServerEvents handles events from the hub.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.session.Pause()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth == c.canvas.TerminalWidth() && renderHeight == c.canvas.TerminalHeight() &&
		offsetCol == c.canvas.OffsetCol() && offsetRow == c.canvas.OffsetRow() {
		return
	}

	draw.ClearScreen(c.writer)
	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.canvas.ForceRedraw()
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
	c.session.Resize(c.canvas.LogicalWidth(), c.canvas.LogicalHeight())
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateStartState handles the title screen.
func (c *Client) updateStartState() {
	if c.state.Input.Start {
		c.applyTuning()
		input.ResetKeyInput(c.inputStream)
		c.session.Start()
	}
}

// updatePlayingState feeds input to the session and advances it one tick.
func (c *Client) updatePlayingState() {
	if c.state.Input.Pause {
		c.session.Pause()
		return
	}
	c.session.SetMoveIntent(c.state.Input.MoveIntent())
	c.session.Tick()
}

// updatePausedState resumes or restarts a frozen run.
func (c *Client) updatePausedState() {
	switch {
	case c.state.Input.Restart:
		c.restart()
	case c.state.Input.Pause || c.state.Input.Start:
		input.ResetKeyInput(c.inputStream)
		c.session.Resume()
	}
}

// updateOverState handles the game over screen.
func (c *Client) updateOverState() {
	if c.state.Input.Start || c.state.Input.Restart {
		c.restart()
	}
}

// restart begins a new run with the latest tuning.
func (c *Client) restart() {
	c.applyTuning()
	input.ResetKeyInput(c.inputStream)
	c.state.clearParticles()
	c.session.Restart()
}

// applyTuning stages the current tuning for the next run.
func (c *Client) applyTuning() {
	if c.tuning == nil {
		return
	}
	if err := c.session.SetTuning(c.tuning.Current()); err != nil {
		c.logger.Warn("tuning rejected", "err", err)
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// onSessionEvent reacts to session events with visual effects and bookkeeping.
func (c *Client) onSessionEvent(ev session.Event) {
	switch ev.Type {
	case session.EventCaught:
		x, y := ev.Entity.Center()
		burst := object.SpawnBurst(x, y, config.SparkleCount, config.SparkleSpeed,
			config.SparkleLifetime, ev.Entity.Kind.Color, c.fxRand)
		c.state.particles = append(c.state.particles, burst...)
	case session.EventLifeLost:
		x, y := ev.Entity.Center()
		burst := object.SpawnBurst(x, y, config.SparkleCount*2, config.SparkleSpeed*1.5,
			config.SparkleLifetime, hitColor, c.fxRand)
		c.state.particles = append(c.state.particles, burst...)
	case session.EventGameOver:
		c.state.LastScore = ev.Stats.Score
		c.state.BestScore = max(c.state.BestScore, ev.Stats.Score)
		c.logger.Info("run finished", "score", ev.Stats.Score, "level", ev.Stats.Level)
	}
}
