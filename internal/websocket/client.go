package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"altcad-web/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // Must be less than pongWait
	maxFrameSize   = 4096
	sendBufferSize = 256
)

// MessageSender is the slice of the message service the inbox needs.
type MessageSender interface {
	Send(ctx context.Context, conversationID string, sender *domain.Session, content string) (*domain.DirectMessage, *domain.Conversation, error)
}

// ClientFrame is what the browser sends over the inbox connection.
type ClientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

// ServerFrame is what the server pushes to inbox connections.
type ServerFrame struct {
	Type         string                `json:"type"`
	Message      *domain.DirectMessage `json:"message,omitempty"`
	Notification *domain.Notification  `json:"notification,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// Frame type tags.
const (
	FrameMessage      = "message"
	FrameNotification = "notification"
	FrameError        = "error"
	frameSend         = "send"
)

// Client is one websocket inbox connection of an authenticated user.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	id       string
	userID   int64
	username string
	session  *domain.Session
	messages MessageSender

	writeMu   sync.Mutex
	closed    atomic.Bool
	ctx       context.Context
	ctxCancel context.CancelFunc
}

// NewClient wraps an upgraded connection for a session. id should be unique
// per connection (a fresh UUID).
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, id string, session *domain.Session, messages MessageSender) *Client {
	clientCtx, cancel := context.WithCancel(ctx)

	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		id:        id,
		userID:    session.UserID,
		username:  session.Username,
		session:   session,
		messages:  messages,
		ctx:       clientCtx,
		ctxCancel: cancel,
	}
}

// ReadPump consumes client frames until the connection drops. "send" frames
// persist a direct message and fan the resulting frame out to both
// participants' inboxes; anything else is rejected on this connection only.
func (c *Client) ReadPump() {
	defer func() {
		c.ctxCancel()
		c.hub.Unregister(c)
		c.closeConnection()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("failed to set read deadline",
			slog.String("error", err.Error()),
			slog.String("user", c.username))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket error",
					slog.String("error", err.Error()),
					slog.String("user", c.username))
			}
			break
		}

		var clientFrame ClientFrame
		if err := json.Unmarshal(frame, &clientFrame); err != nil {
			slog.Warn("invalid inbox frame",
				slog.String("error", err.Error()),
				slog.String("user", c.username))
			continue
		}

		if clientFrame.Type != frameSend {
			c.sendError("Unknown frame type")
			continue
		}

		c.handleSend(&clientFrame)
	}
}

func (c *Client) handleSend(frame *ClientFrame) {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	message, conversation, err := c.messages.Send(ctx, frame.ConversationID, c.session, frame.Content)
	if err != nil {
		slog.Warn("inbox send rejected",
			slog.String("error", err.Error()),
			slog.String("user", c.username),
			slog.String("conversation_id", frame.ConversationID))
		c.sendError(sendErrorMessage(err))
		return
	}

	data, err := json.Marshal(ServerFrame{Type: FrameMessage, Message: message})
	if err != nil {
		slog.Error("failed to marshal message frame",
			slog.String("error", err.Error()),
			slog.String("message_id", message.ID))
		return
	}

	// Both participants see the message live, the sender included (echo
	// confirms persistence to every open tab).
	peerID, _ := conversation.PeerOf(c.userID)
	c.hub.Deliver(peerID, FrameMessage, data)
	c.hub.Deliver(c.userID, FrameMessage, data)
}

func sendErrorMessage(err error) string {
	switch err {
	case domain.ErrEmptyMessage:
		return "Message is empty"
	case domain.ErrMessageTooLong:
		return "Message is too long"
	case domain.ErrNotParticipant, domain.ErrConversationNotFound:
		return "Conversation not found"
	default:
		return "Failed to send message"
	}
}

func (c *Client) sendError(message string) {
	data, err := json.Marshal(ServerFrame{Type: FrameError, Error: message})
	if err != nil {
		slog.Error("failed to marshal error frame", slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// WritePump pumps frames from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				_ = c.writeMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.writeMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeMessage writes a frame to the connection in a thread-safe manner
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed.Load() {
		return websocket.ErrCloseSent
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// closeConnection safely closes the WebSocket connection
func (c *Client) closeConnection() {
	if c.closed.CompareAndSwap(false, true) {
		c.writeMu.Lock()
		c.conn.Close()
		c.writeMu.Unlock()
	}
}
