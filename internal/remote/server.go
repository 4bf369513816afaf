// ABOUTME: WebSocket transport-control server with mDNS advertisement
// ABOUTME: Maps JSON transport commands onto the timeline control surface
package remote

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/mdns"
)

// Transport is the control surface exposed over the wire. It matches the
// timeline's control operations; the render path is never reachable from
// here.
type Transport interface {
	Start()
	Stop()
	IsStarted() bool
	Position() int64
	SetTime(sampleTime int64)
	SetLoop(start, duration int64)
}

// Server serves transport commands on a websocket endpoint and advertises
// it via mDNS.
type Server struct {
	transport Transport
	session   string
	upgrader  websocket.Upgrader

	httpSrv *http.Server
	mdnsSrv *mdns.Server
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewServer creates a control server for the given transport. Each server
// gets a fresh session identity.
func NewServer(transport Transport) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		transport: transport,
		session:   uuid.New().String(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Session returns the server's session identity.
func (s *Server) Session() string { return s.session }

// Listen starts serving on the given port and advertises the endpoint. It
// does not block; errors from the accept loop are logged.
func (s *Server) Listen(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/cadenza", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	if err := s.advertise(port); err != nil {
		// Discovery is best-effort; manual connection still works.
		log.Printf("mDNS advertisement failed: %v", err)
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("control server error: %v", err)
		}
	}()

	log.Printf("Transport control listening on port %d (session %s)", port, s.session)
	return nil
}

func (s *Server) advertise(port int) error {
	host, err := os.Hostname()
	if err != nil {
		host = "cadenza"
	}

	service, err := mdns.NewMDNSService(
		host,
		"_cadenza-ctl._tcp",
		"",
		"",
		port,
		nil,
		[]string{"path=/cadenza", "session=" + s.session},
	)
	if err != nil {
		return fmt.Errorf("failed to create mdns service: %w", err)
	}

	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	s.mdnsSrv = srv
	return nil
}

// Close shuts down the endpoint and advertisement.
func (s *Server) Close() {
	s.cancel()
	if s.mdnsSrv != nil {
		_ = s.mdnsSrv.Shutdown()
	}
	if s.httpSrv != nil {
		_ = s.httpSrv.Shutdown(context.Background())
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	log.Printf("Controller connected: %s", r.RemoteAddr)

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("controller read error: %v", err)
			}
			return
		}

		status := s.dispatch(cmd)
		if err := conn.WriteJSON(status); err != nil {
			log.Printf("controller write error: %v", err)
			return
		}
	}
}

// dispatch applies one command and reports the resulting state.
func (s *Server) dispatch(cmd Command) Status {
	var errMsg string

	switch cmd.Type {
	case CmdStart:
		s.transport.Start()
	case CmdStop:
		s.transport.Stop()
	case CmdSeek:
		if cmd.Sample < 0 {
			errMsg = "seek target must be non-negative"
		} else {
			s.transport.SetTime(cmd.Sample)
		}
	case CmdLoop:
		if cmd.Start < 0 || cmd.Duration < 0 {
			errMsg = "loop bounds must be non-negative"
		} else {
			s.transport.SetLoop(cmd.Start, cmd.Duration)
		}
	case CmdPosition:
		// Status below carries the answer.
	default:
		errMsg = "unknown command: " + cmd.Type
	}

	return Status{
		Type:     "transport/status",
		Session:  s.session,
		Started:  s.transport.IsStarted(),
		Position: s.transport.Position(),
		Error:    errMsg,
	}
}
