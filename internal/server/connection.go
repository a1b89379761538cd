package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/metrics"
)

// connection drives one accepted socket: it reads chunks, feeds them to the
// dispatcher and acts on the returned disposition.
type connection struct {
	conn           net.Conn
	id             string
	dispatcher     *Dispatcher
	writer         *bufio.Writer
	logger         logging.Logger
	metrics        *metrics.Metrics
	readTimeout    time.Duration
	readBufferSize int
	startTime      time.Time
}

func (s *Server) newConnection(conn net.Conn) *connection {
	id := uuid.NewString()
	logger := s.logger.WithRequestID(id)
	writer := bufio.NewWriter(conn)

	return &connection{
		conn: conn,
		id:   id,
		dispatcher: NewDispatcher(writer, DispatcherOptions{
			Directory:    s.opts.Directory,
			Logger:       logger,
			Metrics:      s.opts.Metrics,
			MaxValueSize: s.cfg.MaxValueSize,
		}),
		writer:         writer,
		logger:         logger,
		metrics:        s.opts.Metrics,
		readTimeout:    s.cfg.ReadTimeout,
		readBufferSize: s.cfg.ReadBufferSize,
		startTime:      time.Now(),
	}
}

// handle runs until the client goes away or the dispatcher asks to close.
// The caller closes the socket.
func (c *connection) handle() {
	client := c.conn.RemoteAddr().String()
	c.logger.Info("connection established",
		"client", client)
	c.metrics.ConnectionOpened()

	defer func() {
		c.dispatcher.Close()
		c.metrics.ConnectionClosed()
		c.logger.Info("connection closed",
			"client", client,
			"duration_ms", durationMS(c.startTime))
	}()

	buf := make([]byte, c.readBufferSize)
	for {
		if c.readTimeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
				c.logger.Warn("set read deadline failed", "error", err.Error())
				return
			}
		}

		n, err := c.conn.Read(buf)
		if n > 0 {
			switch c.dispatcher.Feed(buf[:n]) {
			case DispositionContinue:
				if ferr := c.writer.Flush(); ferr != nil {
					c.logger.Warn("write error",
						"error", ferr.Error(),
						"client", client)
					return
				}
			case DispositionCloseAfterFlush:
				if ferr := c.writer.Flush(); ferr != nil {
					c.logger.Warn("write error",
						"error", ferr.Error(),
						"client", client)
				}
				return
			case DispositionCloseNow:
				return
			}
		}

		if err != nil {
			c.logReadError(err, client)
			return
		}
	}
}

func (c *connection) logReadError(err error, client string) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		c.logger.Info("idle timeout",
			"client", client,
			"timeout", c.readTimeout.String())
		return
	}

	c.logger.Warn("network error",
		"error", err.Error(),
		"client", client)
}
