package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/hero-quest/internal/game"
	"github.com/terra-clan/hero-quest/internal/models"
	"github.com/terra-clan/hero-quest/internal/story"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Story stream message types
const (
	MsgNode       = "node"
	MsgChar       = "char"
	MsgRevealed   = "revealed"
	MsgTransition = "transition"
	MsgClosed     = "closed"
	MsgError      = "error"

	MsgFinish = "finish"
	MsgChoose = "choose"
	MsgSkip   = "skip"
	MsgClose  = "close"
)

// StoryMessage is exchanged over the story WebSocket in both directions
type StoryMessage struct {
	Type   string          `json:"type"`
	Data   string          `json:"data,omitempty"`
	Choice int             `json:"choice,omitempty"`
	Step   *game.StoryStep `json:"step,omitempty"`
}

// storyStream drives one player's dialog over a WebSocket.
// Only the serve goroutine writes to the connection.
type storyStream struct {
	server   *Server
	conn     *websocket.Conn
	playerID string

	mu     sync.Mutex
	reveal *story.Reveal
}

func (s *Server) handleStoryWS(w http.ResponseWriter, r *http.Request) {
	playerID := PlayerIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("story websocket connected", "player_id", playerID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unpin := s.game.PinStory(playerID)
	defer unpin()

	st := &storyStream{server: s, conn: conn, playerID: playerID}
	cmds := make(chan StoryMessage, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		st.readLoop(ctx, cmds)
	}()

	st.serve(ctx, cmds)
	cancel()
	conn.Close()
	wg.Wait()

	slog.Info("story websocket disconnected", "player_id", playerID)
}

// readLoop forwards client commands; finish and close also cut a running reveal short
func (st *storyStream) readLoop(ctx context.Context, cmds chan<- StoryMessage) {
	for {
		_, data, err := st.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}

		var msg StoryMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("invalid message format", "error", err)
			continue
		}

		if msg.Type == MsgFinish || msg.Type == MsgClose {
			st.finishReveal()
		}

		select {
		case cmds <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (st *storyStream) serve(ctx context.Context, cmds <-chan StoryMessage) {
	g := st.server.game

	step, err := g.OpenStory(ctx, st.playerID)
	if err != nil {
		st.sendError(err)
		return
	}
	if err := st.send(StoryMessage{Type: MsgNode, Step: step}); err != nil {
		return
	}

	for {
		if step.View.Phase == models.PhaseTyping {
			if err := st.runReveal(ctx, step.View.Node.Text); err != nil {
				return
			}
			step, err = g.RevealStory(ctx, st.playerID)
			if err != nil {
				st.sendError(err)
				return
			}
			if err := st.send(StoryMessage{Type: MsgRevealed, Step: step}); err != nil {
				return
			}
		}

		var msg StoryMessage
		select {
		case <-ctx.Done():
			return
		case msg = <-cmds:
		}

		var next *game.StoryStep
		switch msg.Type {
		case MsgFinish:
			continue
		case MsgChoose:
			next, err = g.ChooseStory(ctx, st.playerID, msg.Choice)
		case MsgSkip:
			next, err = g.SkipStory(ctx, st.playerID)
		case MsgClose:
			closed, err := g.CloseStory(ctx, st.playerID)
			if err != nil {
				st.sendError(err)
				return
			}
			st.send(StoryMessage{Type: MsgClosed, Step: closed})
			return
		default:
			st.send(StoryMessage{Type: MsgError, Data: "unknown message type: " + msg.Type})
			continue
		}

		if err != nil {
			// Rejected moves leave the dialog where it was
			if st.sendError(err) != nil {
				return
			}
			continue
		}
		step = next
		if err := st.send(StoryMessage{Type: MsgTransition, Step: step}); err != nil {
			return
		}
	}
}

// runReveal streams text one character at a time
func (st *storyStream) runReveal(ctx context.Context, text string) error {
	rv := story.NewReveal(text, st.server.game.RevealInterval())
	st.mu.Lock()
	st.reveal = rv
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.reveal = nil
		st.mu.Unlock()
	}()

	return rv.Run(ctx, func(chunk string) error {
		return st.send(StoryMessage{Type: MsgChar, Data: chunk})
	})
}

func (st *storyStream) finishReveal() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.reveal != nil {
		st.reveal.Finish()
	}
}

func (st *storyStream) send(msg StoryMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal story message", "error", err)
		return err
	}
	if err := st.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send story message", "error", err)
		return err
	}
	return nil
}

func (st *storyStream) sendError(err error) error {
	return st.send(StoryMessage{Type: MsgError, Data: err.Error()})
}
