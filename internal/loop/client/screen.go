package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/circus/internal/draw"
	"github.com/tomz197/circus/internal/loop/config"
	"github.com/tomz197/circus/internal/loop/session"
	"github.com/tomz197/circus/internal/object"
)

// Title and banner art (figlet "small" font).
var (
	titleArt = []string{
		`   ___ ___ ___  ___ _   _ ___  `,
		`  / __|_ _| _ \/ __| | | / __| `,
		` | (__ | ||   / (__| |_| \__ \ `,
		`  \___|___|_|_\\___|\___/|___/ `,
		`                               `,
	}
	gameOverArt = []string{
		`   ___   _   __  __ ___    _____   _____ ___  `,
		`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
		` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
		`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
		`                                              `,
	}
)

var (
	hudStyle    = draw.StyleBold
	titleStyle  = draw.StyleBold + draw.Foreground(0xffe66d)
	alertStyle  = draw.StyleBold + draw.Foreground(0xff6b6b)
	livesStyle  = draw.Foreground(0xe74c3c)
	promptStyle = draw.StyleBold
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	snap := c.session.Snapshot()
	ctx := object.DrawContext{Canvas: c.canvas}

	for _, e := range snap.Entities {
		e.Draw(ctx)
	}
	snap.Player.Draw(ctx)
	for _, p := range c.state.particles {
		p.Draw(ctx)
	}

	if err := c.canvas.Render(c.chunkWriter); err != nil {
		return err
	}

	// Draw border when terminal exceeds max render resolution
	if err := c.canvas.RenderBorder(c.chunkWriter); err != nil {
		return err
	}

	c.drawUI(snap)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(snap session.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(termWidth, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(termWidth, centerY)
		return
	}

	switch c.state.GameState {
	case GameStateStart:
		c.drawStartScreen(termWidth, centerY)
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, snap.Stats)
	case GameStatePaused:
		c.drawPlayingHUD(termWidth, snap.Stats)
		c.drawPausedScreen(termWidth, centerY)
	case GameStateOver:
		c.drawGameOverScreen(termWidth, centerY)
	}
}

// blinkOn toggles prompts at a steady rate.
func blinkOn() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

func (c *Client) drawArt(width, top int, art []string, style string) {
	for i, line := range art {
		c.chunkWriter.WriteCentered(width, top+i, style, line)
	}
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(width, centerY int) {
	cw := c.chunkWriter
	top := centerY - 8
	c.drawArt(width, top, titleArt, titleStyle)

	row := top + len(titleArt) + 1
	cw.WriteCentered(width, row, "", "~ Catch the props, dodge the bombs ~")

	row += 2
	cw.WriteCentered(width, row, hudStyle, "Controls")
	controlLines := []string{
		"A D / < >  . . . . Move",
		"P / ESC  . . . .  Pause",
		"R  . . . . . .  Restart",
		"Q  . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		cw.WriteCentered(width, row+1+i, "", line)
	}

	row += len(controlLines) + 2
	if blinkOn() {
		cw.WriteCentered(width, row, promptStyle, ">>  Press SPACE to Start  <<")
	} else {
		cw.WriteCentered(width, row, "", strings.Repeat(" ", 28))
	}

	if c.state.BestScore > 0 {
		cw.WriteCentered(width, row+2, "", fmt.Sprintf("Best this visit: %d", c.state.BestScore))
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(width int, st session.Stats) {
	cw := c.chunkWriter
	cw.WriteAt(2, 1, hudStyle, fmt.Sprintf("Score: %-8d", st.Score))
	cw.WriteCentered(width, 1, hudStyle, fmt.Sprintf("Level %-3d", st.Level))

	lives := fmt.Sprintf("♥x%-3d", st.Lives)
	if maxLives := c.session.Tuning().Lives; maxLives <= 5 {
		lives = strings.Repeat("♥", st.Lives) + strings.Repeat(" ", maxLives-st.Lives)
	}
	label := "Lives: "
	col := width - len(label) - len([]rune(lives))
	cw.WriteAt(col, 1, hudStyle, label)
	cw.WriteAt(col+len(label), 1, livesStyle, lives)
}

// drawPausedScreen draws the pause banner over the frozen run.
func (c *Client) drawPausedScreen(width, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(width, centerY-1, titleStyle, "P A U S E D")
	cw.WriteCentered(width, centerY+1, "", "SPACE or P to resume, R to restart, Q to quit")
}

// drawGameOverScreen draws the final score and the restart prompt.
func (c *Client) drawGameOverScreen(width, centerY int) {
	cw := c.chunkWriter
	top := centerY - 6
	c.drawArt(width, top, gameOverArt, alertStyle)

	row := top + len(gameOverArt) + 1
	cw.WriteCentered(width, row, hudStyle, fmt.Sprintf("Final score: %d", c.state.LastScore))
	cw.WriteCentered(width, row+1, "", fmt.Sprintf("Best this visit: %d", c.state.BestScore))

	if blinkOn() {
		cw.WriteCentered(width, row+3, promptStyle, ">>  Press SPACE to Restart  <<")
	} else {
		cw.WriteCentered(width, row+3, "", strings.Repeat(" ", 30))
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(width, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(width, centerY-2, alertStyle, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	cw.WriteCentered(width, centerY, "", msg)
	cw.WriteCentered(width, centerY+2, "", "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(width, centerY int) {
	cw := c.chunkWriter
	cw.WriteCentered(width, centerY-3, alertStyle, "SERVER SHUTTING DOWN")
	cw.WriteCentered(width, centerY-1, "", "The big top is coming down for maintenance.")
	cw.WriteCentered(width, centerY, "", "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	cw.WriteCentered(width, centerY+2, "", fmt.Sprintf("Disconnecting in %2d seconds...", remaining))
	cw.WriteCentered(width, centerY+4, "", "Press Q to disconnect now")
}
