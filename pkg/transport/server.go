package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"
	coapNet "github.com/plgd-dev/go-coap/v2/net"
	"github.com/plgd-dev/go-coap/v2/udp"
	"github.com/plgd-dev/go-coap/v2/udp/client"

	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Server errors.
var (
	ErrNoController   = errors.New("transport: controller is required")
	ErrAlreadyRunning = errors.New("transport: server already running")
)

// Controller is the resource side of the server.
// *resource.Controller implements it.
type Controller interface {
	HandleRequest(uri string, req *wire.Request) wire.Outcome
	Resource(uri string) (*resource.Resource, bool)
	URIs() []string
	Links() []model.Representation
}

// ServerConfig configures a CoAP server.
type ServerConfig struct {
	// Network is udp, udp4 or udp6 (default: udp).
	Network string

	// Address to listen on (default: ":5683").
	Address string

	// Controller handles resource requests. Required.
	Controller Controller

	// Observers tracks observe registrations. If nil, observe options
	// are ignored and every request is a plain read.
	Observers *Observers

	// Device and Platform back /oic/d and /oic/p.
	Device   model.DeviceInfo
	Platform model.PlatformInfo

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives request/response events (optional).
	ProtocolLogger log.Logger

	// OnConnect is called when a new client connection is seen.
	OnConnect func(peer string)

	// OnDisconnect is called when a client connection is closed.
	OnDisconnect func(peer string)
}

// Server serves the device resources over CoAP/UDP.
type Server struct {
	config    ServerConfig
	router    *mux.Router
	responder *Responder
	protoLog  log.Logger

	listener *coapNet.UDPConn
	coap     *udp.Server

	// Active client connections: remote address to peer ID.
	peers   map[string]string
	peersMu sync.RWMutex

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a server and its router.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Controller == nil {
		return nil, ErrNoController
	}
	if config.Network == "" {
		config.Network = "udp"
	}
	if config.Address == "" {
		config.Address = DefaultAddress
	}

	s := &Server{
		config:    config,
		router:    mux.NewRouter(),
		responder: NewResponder(config.ProtocolLogger),
		protoLog:  log.OrNoop(config.ProtocolLogger),
		peers:     make(map[string]string),
	}

	s.router.Use(s.logRequests)
	for _, uri := range config.Controller.URIs() {
		if err := s.router.Handle(uri, mux.HandlerFunc(s.serveResource)); err != nil {
			return nil, fmt.Errorf("failed to route %s: %w", uri, err)
		}
	}
	static := map[string]func() model.Representation{
		model.DeviceHref:    config.Device.Representation,
		model.PlatformHref:  config.Platform.Representation,
		model.DiscoveryHref: s.discovery,
	}
	for uri, build := range static {
		if err := s.router.Handle(uri, s.staticHandler(uri, build)); err != nil {
			return nil, fmt.Errorf("failed to route %s: %w", uri, err)
		}
	}
	s.router.DefaultHandle(mux.HandlerFunc(s.serveNotFound))

	return s, nil
}

// Router returns the CoAP router. It is exposed for tests and embedding.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start listens and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	l, err := coapNet.NewListenUDP(s.config.Network, s.config.Address)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = l
	s.coap = udp.NewServer(
		udp.WithContext(ctx),
		udp.WithMux(s.router),
		udp.WithOnNewClientConn(s.onNewClientConn),
		udp.WithErrors(func(err error) {
			s.debugLog("coap error", "error", err)
		}),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.coap.Serve(l); err != nil && s.running.Load() {
			s.warnLog("coap server stopped", "error", err)
		}
	}()

	s.debugLog("coap server started", "addr", l.LocalAddr().String())
	return nil
}

// Run starts the server and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop stops serving and closes the listener.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.coap.Stop()
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.LocalAddr()
	}
	return nil
}

// ConnectionCount returns the number of active client connections.
func (s *Server) ConnectionCount() int {
	s.peersMu.RLock()
	defer s.peersMu.RUnlock()
	return len(s.peers)
}

func (s *Server) onNewClientConn(cc *client.ClientConn) {
	addr := cc.RemoteAddr().String()
	peerID := uuid.New().String()

	s.peersMu.Lock()
	s.peers[addr] = peerID
	s.peersMu.Unlock()

	s.logPeerState(peerID, addr, "", "CONNECTED")
	if s.config.OnConnect != nil {
		s.config.OnConnect(addr)
	}

	cc.AddOnClose(func() {
		s.peersMu.Lock()
		delete(s.peers, addr)
		s.peersMu.Unlock()

		if s.config.Observers != nil {
			if n := s.config.Observers.DeregisterPeer(addr); n > 0 {
				s.debugLog("dropped observers of closed client", "peer", addr, "count", n)
			}
		}
		s.logPeerState(peerID, addr, "CONNECTED", "DISCONNECTED")
		if s.config.OnDisconnect != nil {
			s.config.OnDisconnect(addr)
		}
	})
}

func (s *Server) peerID(addr string) string {
	s.peersMu.RLock()
	defer s.peersMu.RUnlock()
	return s.peers[addr]
}

// serveResource routes one request to the controller and keeps the
// observer registry in step with Observe options.
func (s *Server) serveResource(w mux.ResponseWriter, r *mux.Message) {
	p, err := parseRequest(r)
	if err != nil {
		s.debugLog("malformed request", "error", err)
		s.reply(w, codes.BadRequest)
		return
	}

	peer := w.Client().RemoteAddr().String()
	ex := &Exchange{
		URI:     p.path,
		Peer:    s.peerID(peer),
		Token:   r.Token,
		Writer:  w,
		Started: time.Now(),
	}
	s.logRequest(ex, p)

	observers := s.config.Observers
	res, known := s.config.Controller.Resource(p.path)
	observing := observers != nil && known && res.Observable() &&
		p.req.Method == wire.MethodGet && p.observe != nil

	register := false
	if observing {
		switch *p.observe {
		case ObserveRegister:
			register = true
			seq := observers.Sequence(p.path)
			ex.Observe = &seq
		case ObserveDeregister:
			observers.Deregister(p.path, peer, r.Token)
		}
	}

	p.req.Handle = ex
	outcome := s.config.Controller.HandleRequest(p.path, &p.req)

	if _, ok := ex.Responded(); !ok {
		s.reply(w, codes.InternalServerError)
		return
	}
	if register && outcome == wire.OK {
		observers.Register(p.path, Observer{
			Peer:   peer,
			Token:  append([]byte(nil), r.Token...),
			Query:  p.req.Query,
			Sender: NewSender(w.Client()),
		})
	}
}

// staticHandler serves a read-only resource built by build.
func (s *Server) staticHandler(uri string, build func() model.Representation) mux.Handler {
	return mux.HandlerFunc(func(w mux.ResponseWriter, r *mux.Message) {
		ex := &Exchange{
			URI:     uri,
			Peer:    s.peerID(w.Client().RemoteAddr().String()),
			Token:   r.Token,
			Writer:  w,
			Started: time.Now(),
		}
		if CodeMethod(r.Code) != wire.MethodGet {
			s.respond(ex, wire.MethodNotAllowed, nil)
			return
		}
		rep := build()
		s.respond(ex, wire.OK, &rep)
	})
}

func (s *Server) serveNotFound(w mux.ResponseWriter, r *mux.Message) {
	s.respond(&Exchange{
		Peer:    s.peerID(w.Client().RemoteAddr().String()),
		Token:   r.Token,
		Writer:  w,
		Started: time.Now(),
	}, wire.NotFound, nil)
}

// discovery lists the served resources followed by /oic/d and /oic/p.
func (s *Server) discovery() model.Representation {
	links := s.config.Controller.Links()
	links = append(links,
		model.ChildDescriptor{
			Href:          model.DeviceHref,
			ResourceTypes: []string{model.ResourceTypeDevice, model.DeviceTypeBloodPressureMonitor},
			Interfaces:    []string{model.InterfaceBaseline, model.InterfaceReadOnly},
			Bitmap:        model.BitmapDiscoverable,
		}.Link(),
		model.ChildDescriptor{
			Href:          model.PlatformHref,
			ResourceTypes: []string{model.ResourceTypePlatform},
			Interfaces:    []string{model.InterfaceBaseline, model.InterfaceReadOnly},
			Bitmap:        model.BitmapDiscoverable,
		}.Link(),
	)

	head := links[0]
	for _, l := range links[1:] {
		head.Append(l)
	}
	return head
}

func (s *Server) respond(ex *Exchange, outcome wire.Outcome, payload *model.Representation) {
	if err := s.responder.Respond(ex, outcome, payload); err != nil {
		s.warnLog("response not sent", "uri", ex.URI, "error", err)
	}
}

func (s *Server) reply(w mux.ResponseWriter, code codes.Code) {
	if err := w.SetResponse(code, message.TextPlain, nil); err != nil {
		s.warnLog("response not sent", "code", code, "error", err)
	}
}

// logRequests is router middleware writing one debug line per request.
func (s *Server) logRequests(next mux.Handler) mux.Handler {
	return mux.HandlerFunc(func(w mux.ResponseWriter, r *mux.Message) {
		if s.config.Logger != nil {
			path, _ := r.Options.Path()
			s.config.Logger.Debug("coap request",
				"code", r.Code.String(),
				"path", path,
				"token", r.Token.String(),
				"remote", w.Client().RemoteAddr().String())
		}
		next.ServeCOAP(w, r)
	})
}

func (s *Server) logRequest(ex *Exchange, p parsedRequest) {
	method := p.req.Method
	msg := &log.MessageEvent{
		Type:    log.MessageTypeRequest,
		Token:   hex.EncodeToString(ex.Token),
		Method:  &method,
		Query:   p.req.Query,
		Observe: p.observe,
	}
	if p.req.BodyKind == wire.PayloadRepresentation {
		msg.Payload, _ = wire.Diagnose(p.req.Body)
	}
	s.protoLog.Log(log.Event{
		Timestamp: ex.Started,
		PeerID:    ex.Peer,
		Direction: log.DirectionIn,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		URI:       ex.URI,
		Message:   msg,
	})
}

func (s *Server) logPeerState(peerID, addr, oldState, newState string) {
	s.protoLog.Log(log.Event{
		Timestamp:  time.Now(),
		PeerID:     peerID,
		Layer:      log.LayerTransport,
		Category:   log.CategoryState,
		RemoteAddr: addr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityClient,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}

func (s *Server) warnLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, args...)
	}
}
