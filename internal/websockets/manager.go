package websockets

import (
	"encoding/json"
	"vitals/config"
	"vitals/internal/events"
	"vitals/internal/logger"
	. "vitals/internal/models"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// TokenResolver maps a bearer token to the email it was issued to.
type TokenResolver interface {
	ResolveToken(token string) (string, error)
}

type client struct {
	id    string
	email string
	send  chan []byte
}

// Manager owns the progress push channel. Connections register through a
// channel-based run loop; nothing iterates a shared map outside it, and
// each connection gets its own outbound queue so one slow client cannot
// stall a broadcast.
type Manager struct {
	resolver   TokenResolver
	eventBus   *events.EventBus
	register   chan *client
	unregister chan *client
	clients    map[string]map[*client]struct{}
	done       chan struct{}
	log        logger.Logger
}

func New(eventBus *events.EventBus, resolver TokenResolver, config config.Config) (*Manager, error) {
	log := logger.New("websockets")

	if resolver == nil {
		return nil, log.ErrMsg("token resolver is required")
	}

	manager := &Manager{
		resolver:   resolver,
		eventBus:   eventBus,
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[string]map[*client]struct{}),
		done:       make(chan struct{}),
		log:        log,
	}

	go manager.run()

	return manager, nil
}

func (m *Manager) run() {
	log := m.log.Function("run")

	for {
		select {
		case c := <-m.register:
			if m.clients[c.email] == nil {
				m.clients[c.email] = make(map[*client]struct{})
			}
			m.clients[c.email][c] = struct{}{}
			log.Info("client connected", "email", c.email, "clientID", c.id)

		case c := <-m.unregister:
			if conns, ok := m.clients[c.email]; ok {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.send)
					if len(conns) == 0 {
						delete(m.clients, c.email)
					}
				}
			}
			log.Info("client disconnected", "email", c.email, "clientID", c.id)

		case update := <-m.eventBus.Progress():
			m.deliver(update)

		case <-m.done:
			for _, conns := range m.clients {
				for c := range conns {
					close(c.send)
				}
			}
			m.clients = make(map[string]map[*client]struct{})
			return
		}
	}
}

func (m *Manager) deliver(update ProgressUpdate) {
	log := m.log.Function("deliver")

	conns, ok := m.clients[update.UserEmail]
	if !ok {
		return
	}

	payload, err := json.Marshal(update)
	if err != nil {
		log.Er("failed to marshal progress update", err, "email", update.UserEmail)
		return
	}

	for c := range conns {
		select {
		case c.send <- payload:
		default:
			log.Warn("dropping progress update for slow client",
				"email", c.email, "clientID", c.id)
		}
	}
}

// HandleWebSocket authenticates the upgraded connection from its token
// query parameter and pumps progress updates to it until it closes.
func (m *Manager) HandleWebSocket(conn *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	email, err := m.resolver.ResolveToken(conn.Query("token"))
	if err != nil {
		log.Warn("rejecting unauthenticated websocket")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"))
		_ = conn.Close()
		return
	}

	c := &client{
		id:    uuid.NewString(),
		email: email,
		send:  make(chan []byte, 16),
	}

	if !m.addClient(c) {
		_ = conn.Close()
		return
	}
	defer func() {
		m.removeClient(c)
		_ = conn.Close()
	}()

	go func() {
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	// Inbound messages are ignored; reading just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// addClient hands the connection to the run loop. Selecting on done keeps
// handler goroutines from blocking forever when the loop has already
// exited; false means the manager is shut down.
func (m *Manager) addClient(c *client) bool {
	select {
	case m.register <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) removeClient(c *client) {
	select {
	case m.unregister <- c:
	case <-m.done:
	}
}

func (m *Manager) Close() {
	close(m.done)
}
