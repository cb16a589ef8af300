package websocket

import (
	"canvas-editor/editor"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const defaultQueueSize = 256

type (
	// emitter sends one event to every socket in a room.
	emitter interface {
		Emit(room, event string, args ...any) error
	}

	roomEmitter struct {
		srv *socketio.Server
	}

	outbound struct {
		room    string
		event   string
		payload any
	}

	// Hub fans engine notifications out to the sockets watching a session.
	Hub struct {
		out    emitter
		queue  chan outbound
		done   chan struct{}
		closed sync.Once
		wg     sync.WaitGroup

		mu       sync.RWMutex
		watchers map[string]int
	}
)

func (e roomEmitter) Emit(room, event string, args ...any) error {
	return e.srv.To(socketio.Room(room)).Emit(event, args...)
}

func newHub(out emitter, size int) *Hub {
	if size <= 0 {
		size = defaultQueueSize
	}
	h := &Hub{
		out:      out,
		queue:    make(chan outbound, size),
		done:     make(chan struct{}),
		watchers: make(map[string]int),
	}
	h.wg.Add(1)
	go h.dispatch()
	return h
}

func (h *Hub) dispatch() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.queue:
			if err := h.out.Emit(msg.room, msg.event, msg.payload); err != nil {
				logrus.WithFields(logrus.Fields{
					"session_id": msg.room,
					"event":      msg.event,
					"error":      err,
				}).Warn("Failed to emit notification")
			}
		}
	}
}

// Notifier returns an editor.Notifier that publishes to sessionID's room.
// Notifications are dropped when the queue is full.
func (h *Hub) Notifier(sessionID string) editor.Notifier {
	return editor.NotifierFunc(func(n editor.Notification) {
		payload, err := toWire(n.Payload)
		if err != nil {
			logrus.WithFields(logrus.Fields{"session_id": sessionID, "event": n.Type, "error": err}).
				Error("Failed to encode notification")
			return
		}
		select {
		case <-h.done:
		case h.queue <- outbound{room: sessionID, event: n.Type, payload: payload}:
		default:
			logrus.WithFields(logrus.Fields{"session_id": sessionID, "event": n.Type}).
				Warn("Notification queue full, dropping")
		}
	})
}

// Close stops the dispatcher. Queued notifications are discarded.
func (h *Hub) Close() {
	h.closed.Do(func() { close(h.done) })
	h.wg.Wait()
}

// Watchers returns the number of sockets joined to each session.
func (h *Hub) Watchers() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	watchers := make(map[string]int, len(h.watchers))
	for k, v := range h.watchers {
		watchers[k] = v
	}
	return watchers
}

func (h *Hub) setWatchers(sessionID string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		delete(h.watchers, sessionID)
		return
	}
	h.watchers[sessionID] = n
}

// toWire flattens a payload into plain JSON values so the socket.io encoder sees
// the same field names as the HTTP API.
func toWire(payload any) (any, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// sessionArg validates the session id sent with join-session and leave-session.
func sessionArg(args []any, exists func(string) bool) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("session id is required")
	}
	id, ok := args[0].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid session id")
	}
	if exists != nil && !exists(id) {
		return "", fmt.Errorf("session %s not found", id)
	}
	return id, nil
}

func errorPayload(err error) map[string]any {
	return map[string]any{
		"status": "error",
		"error":  err.Error(),
	}
}

// SetupSocketIO creates the socket.io server and the notification hub bound to
// it. exists reports whether a session id is open; nil accepts any id.
func SetupSocketIO(exists func(sessionID string) bool) (*socketio.Server, *Hub) {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			"tauri://localhost",
			localhostOrigin,
		},
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)
	hub := newHub(roomEmitter{srv: srv}, defaultQueueSize)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		me := socket.Id()
		utils.Log().Printf("socket %v connected\n", me)

		countAndAck := func(sessionID string, ack ackInvoker, event string) {
			room := socketio.Room(sessionID)
			srv.In(room).FetchSockets()(func(users []*socketio.RemoteSocket, fetchErr error) {
				if fetchErr != nil {
					respondWithAck(socket, ack, event, errorPayload(fetchErr), fetchErr)
					return
				}
				hub.setWatchers(sessionID, len(users))
				respondWithAck(socket, ack, event, map[string]any{
					"status":     "ok",
					"session_id": sessionID,
					"watchers":   len(users),
				}, nil)
			})
		}

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("join-session", func(datas ...any) {
			ack, args := extractAck(datas)
			sessionID, err := sessionArg(args, exists)
			if err != nil {
				respondWithAck(socket, ack, "join-session-ack", errorPayload(err), err)
				return
			}
			socket.Join(socketio.Room(sessionID))
			utils.Log().Printf("socket %v watches session %v\n", me, sessionID)
			countAndAck(sessionID, ack, "join-session-ack")
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("leave-session", func(datas ...any) {
			ack, args := extractAck(datas)
			sessionID, err := sessionArg(args, nil)
			if err != nil {
				respondWithAck(socket, ack, "leave-session-ack", errorPayload(err), err)
				return
			}
			socket.Leave(socketio.Room(sessionID))
			countAndAck(sessionID, ack, "leave-session-ack")
		})

		socket.On("disconnecting", func(datas ...any) {
			for _, room := range socket.Rooms().Keys() {
				if room == socketio.Room(me) {
					continue
				}
				sessionID := string(room)
				srv.In(room).FetchSockets()(func(users []*socketio.RemoteSocket, _ error) {
					others := 0
					for _, u := range users {
						if u.Id() != me {
							others++
						}
					}
					hub.setWatchers(sessionID, others)
				})
			}
		})

		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv, hub
}
