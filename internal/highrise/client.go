package highrise

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	hrerrors "github.com/iamwavecut/hrbots/internal/errors"
)

const (
	DefaultURL = "wss://highrise.game/web/botapi"

	headerRoomID   = "room-id"
	headerAPIToken = "api-token"

	keepaliveInterval = 15 * time.Second
	writeTimeout      = 10 * time.Second
	readLimit         = 4 << 20
)

// Client is a single room session. It does not reconnect: when the socket
// drops, Listen returns and the caller decides what to do.
type Client struct {
	conn   *websocket.Conn
	wmu    sync.Mutex
	logger *log.Entry

	keepalive time.Duration
	closeOnce sync.Once
}

// Dial opens a session to the room using the bot API token.
func Dial(ctx context.Context, url, roomID, apiToken string) (*Client, error) {
	if url == "" {
		url = DefaultURL
	}
	header := http.Header{}
	header.Set(headerRoomID, roomID)
	header.Set(headerAPIToken, apiToken)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(readLimit)

	return &Client{
		conn:      conn,
		logger:    log.WithFields(log.Fields{"context": "highrise", "room": roomID}),
		keepalive: keepaliveInterval,
	}, nil
}

// Chat broadcasts text to the room.
func (c *Client) Chat(ctx context.Context, text string) error {
	frame, err := encodeChat(text, "")
	if err != nil {
		return err
	}
	return c.write(ctx, frame)
}

// SendWhisper sends text privately to a single user.
func (c *Client) SendWhisper(ctx context.Context, userID, text string) error {
	frame, err := encodeChat(text, userID)
	if err != nil {
		return err
	}
	return c.write(ctx, frame)
}

// Listen reads frames until ctx is cancelled or the socket fails, passing each
// decoded event to fn. Keepalives are sent while listening.
func (c *Client) Listen(ctx context.Context, fn func(Event)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.keepaliveLoop(ctx)
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return hrerrors.ErrSessionClosed
			}
			return err
		}

		event, err := DecodeEvent(data)
		if err != nil {
			if errors.Is(err, hrerrors.ErrUnknownEvent) {
				c.logger.WithError(err).Debug("skipping frame")
			} else {
				c.logger.WithError(err).Warn("cant decode frame")
			}
			continue
		}
		switch e := event.(type) {
		case *KeepaliveResponse, *ChatResponse:
			continue
		case *ErrorEvent:
			c.logger.WithField("rid", e.RID).Warnf("room error: %s", e.Message)
			continue
		}
		fn(event)
	}
}

// Close shuts the socket down; it is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
			time.Now().Add(500*time.Millisecond))
		c.wmu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) keepaliveLoop(ctx context.Context) {
	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := encodeKeepalive()
			if err != nil {
				continue
			}
			if err := c.write(ctx, frame); err != nil {
				c.logger.WithError(err).Warn("keepalive failed")
			}
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
