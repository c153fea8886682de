package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/internal/metrics"
)

// Session states.
const (
	StateNew         = "new"
	StateInitialized = "initialized"
	StateClosed      = "closed"
)

const (
	eventInitialize = "initialize"
	eventClose      = "close"
)

// ErrAlreadyInitialized is returned when a client initializes a session twice.
var ErrAlreadyInitialized = errors.New("session already initialized")

// Session tracks the lifecycle of one client connection: a session starts out new, becomes
// initialized once the client's initialize request succeeds, and is closed when the transport
// goes away.
type Session struct {
	ID string

	machine    *fsm.FSM
	transition sync.Mutex
	logger     *log.Logger

	lock            sync.Mutex
	protocolVersion string
	clientName      string
}

// newSession starts a record for the transport session id. Transports without session ids, such
// as stdio, get a generated one for logging.
func newSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{ID: id}
	s.logger = log.With("component", "mcp", "session", s.ID)
	s.machine = fsm.NewFSM(StateNew,
		fsm.Events{
			{Name: eventInitialize, Src: []string{StateNew}, Dst: StateInitialized},
			{Name: eventClose, Src: []string{StateNew, StateInitialized}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_" + StateClosed: func(_ context.Context, e *fsm.Event) {
				metrics.ActiveSessions.Dec()
				s.logger.Debug("Session closed (was %s)", e.Src)
			},
		},
	)
	metrics.ActiveSessions.Inc()
	return s
}

// State returns StateNew, StateInitialized or StateClosed.
func (s *Session) State() string {
	return s.machine.Current()
}

// ProtocolVersion returns the protocol revision agreed during initialization.
func (s *Session) ProtocolVersion() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.protocolVersion
}

// ClientName returns the name the client announced during initialization.
func (s *Session) ClientName() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.clientName == "" {
		return "unnamed client"
	}
	return s.clientName
}

// initialize moves the session to StateInitialized and records what the client announced. A
// session that is not new keeps its existing metadata.
func (s *Session) initialize(ctx context.Context, version, client string) error {
	s.transition.Lock()
	defer s.transition.Unlock()
	if err := s.machine.Event(ctx, eventInitialize); err != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, err)
	}
	s.lock.Lock()
	s.protocolVersion = version
	s.clientName = client
	s.lock.Unlock()
	s.logger.Info("Session initialized by %s (protocol %s)", s.ClientName(), version)
	return nil
}

// Close ends the session. Closing twice is a no-op.
func (s *Session) Close() {
	s.transition.Lock()
	defer s.transition.Unlock()
	if s.machine.Can(eventClose) {
		if err := s.machine.Event(context.Background(), eventClose); err != nil {
			s.logger.Debug("Closing session: %s", err)
		}
	}
}
