package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/ldapfixture/internal/config"
	"github.com/KilimcininKorOglu/ldapfixture/internal/directory"
	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/metrics"
)

// Server errors
var (
	// ErrServerClosed is returned by Serve after the server is shut down.
	ErrServerClosed = errors.New("server: closed")
	// ErrAlreadyServing is returned when Serve is called twice.
	ErrAlreadyServing = errors.New("server: already serving")
)

// Accept retry backoff bounds.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Options holds the collaborators shared by every connection.
type Options struct {
	Directory *directory.Directory
	Logger    logging.Logger
	Metrics   *metrics.Metrics
}

// Server accepts LDAP connections and runs one Dispatcher per connection.
type Server struct {
	cfg    config.ServerConfig
	opts   Options
	logger logging.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a Server. Zero values in cfg fall back to the defaults
// of the config package.
func NewServer(cfg config.ServerConfig, opts Options) *Server {
	if cfg.Address == "" {
		cfg.Address = config.DefaultAddress
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = config.DefaultReadBufferSize
	}
	if cfg.MaxValueSize <= 0 {
		cfg.MaxValueSize = config.DefaultMaxValueSize
	}
	if opts.Directory == nil {
		opts.Directory = directory.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	return &Server{
		cfg:    cfg,
		opts:   opts,
		logger: opts.Logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Close is
// called. It then closes the listener and every open connection, waits for
// their goroutines and returns ErrServerClosed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	if s.listener != nil {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	s.logger.Info("LDAP server listening",
		"address", ln.Addr().String())

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				s.wg.Wait()
				s.logger.Info("LDAP server stopped",
					"address", ln.Addr().String())
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return err
			}

			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.logger.Warn("accept error",
				"error", err.Error(),
				"retry_in", delay.String())
			time.Sleep(delay)
			continue
		}
		delay = 0

		if !s.track(conn) {
			conn.Close()
			continue
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	s.newConnection(conn).handle()
}

// track registers conn and reports false once the server is closing.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the listener and closes every open connection. It does not
// wait; Serve returns once the connection goroutines are done.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	return err
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
