package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	Logger "github.com/photolog-app/photolog/utils/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The SPA and the API live on different origins, the JWT middleware
	// already gates the endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// validTopic decides whether the caller may subscribe to the requested
// topic. Album topics are private to their owner, the firehose is not served
// over the websocket at all.
func validTopic(topic, userId string) bool {
	switch {
	case topic == model.TopicPhotos || topic == model.TopicMembers:
		return true
	case strings.HasPrefix(topic, "photo:") || strings.HasPrefix(topic, "comments:"):
		return true
	case strings.HasPrefix(topic, "albums:"):
		return topic == model.AlbumTopic(userId)
	default:
		return false
	}
}

// Realtime upgrades the request to a websocket and streams one topic's
// events until the client goes away.
func (api *API) Realtime(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	topic := c.Query("topic")
	if !validTopic(topic, user.Id) {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "invalid topic: "+topic)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		Logger.Log.Warn("websocket upgrade failed: ", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	events, err := api.Bus.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		conn.Close()
		return
	}

	go readPump(conn, cancel)
	writePump(conn, events)
	cancel()
	conn.Close()
}

// readPump discards whatever the client sends but keeps the read side alive
// for pong frames. Cancels the subscription when the client disconnects.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Logger.Log.Info("websocket read error: ", err)
			}
			return
		}
	}
}

// writePump forwards bus events to the client, interleaved with pings.
// Returns when the event channel closes or a write fails.
func writePump(conn *websocket.Conn, events <-chan *model.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(e)
			if err != nil {
				Logger.Log.Error("fail to marshal event: ", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
