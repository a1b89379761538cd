package server

import (
	"fmt"
	"io"
	"time"

	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
	"github.com/KilimcininKorOglu/ldapfixture/internal/directory"
	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/metrics"
)

// State is the authentication state of a connection.
type State int

const (
	// StateUnauthenticated is the initial state.
	StateUnauthenticated State = iota
	// StateAuthenticated follows a successful bind and lasts until close.
	StateAuthenticated
	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Disposition tells the transport what to do after Feed returns.
type Disposition int

const (
	// DispositionContinue keeps the connection open and waits for more bytes.
	DispositionContinue Disposition = iota
	// DispositionCloseAfterFlush sends everything written so far, then closes.
	DispositionCloseAfterFlush
	// DispositionCloseNow closes without sending pending output.
	DispositionCloseNow
)

// String returns the disposition name.
func (d Disposition) String() string {
	switch d {
	case DispositionContinue:
		return "continue"
	case DispositionCloseAfterFlush:
		return "close-after-flush"
	case DispositionCloseNow:
		return "close-now"
	default:
		return fmt.Sprintf("Disposition(%d)", int(d))
	}
}

// DispatcherOptions configures a Dispatcher. Zero fields select defaults:
// the fixture directory, the LDAP schema, a no-op logger and no metrics.
type DispatcherOptions struct {
	Directory    *directory.Directory
	Schema       *ber.Schema
	Logger       logging.Logger
	Metrics      *metrics.Metrics
	MaxValueSize int
}

// Dispatcher owns the receive buffer and authentication state of one
// connection. It decodes requests as their bytes arrive and writes encoded
// responses to its writer. A Dispatcher is driven by a single goroutine.
type Dispatcher struct {
	w       io.Writer
	dir     *directory.Directory
	stream  *ber.Stream
	logger  logging.Logger
	metrics *metrics.Metrics
	state   State
	boundDN string
}

// NewDispatcher creates a Dispatcher in StateUnauthenticated writing
// responses to w.
func NewDispatcher(w io.Writer, opts DispatcherOptions) *Dispatcher {
	if opts.Directory == nil {
		opts.Directory = directory.Default()
	}
	if opts.Schema == nil {
		opts.Schema = ldap.Schema
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	return &Dispatcher{
		w:       w,
		dir:     opts.Directory,
		stream:  ber.NewStream(opts.Schema, opts.MaxValueSize),
		logger:  opts.Logger,
		metrics: opts.Metrics,
		state:   StateUnauthenticated,
	}
}

// Feed appends data to the receive buffer and handles every request that
// is now complete, in arrival order. Responses are written before Feed
// returns. Once a close disposition has been returned the remaining buffer
// is discarded and later calls return DispositionCloseNow.
func (d *Dispatcher) Feed(data []byte) Disposition {
	if d.state == StateClosed {
		return DispositionCloseNow
	}

	d.metrics.RecordBytesReceived(len(data))
	d.stream.Write(data)

	for {
		v, err := d.stream.Next()
		if err != nil {
			d.metrics.RecordDecodeError()
			d.logger.Warn("protocol error",
				"error", err.Error(),
				"buffered", d.stream.Buffered())
			return d.closeWith(DispositionCloseNow)
		}
		if v == nil {
			return DispositionContinue
		}

		if disp := d.dispatch(v); disp != DispositionContinue {
			return d.closeWith(disp)
		}
	}
}

// dispatch handles one decoded request envelope.
func (d *Dispatcher) dispatch(v *ber.Value) Disposition {
	msg, err := ldap.ParseLDAPMessage(v)
	if err != nil {
		d.logger.Warn("invalid message",
			"error", err.Error(),
			"value", v.String())
		return DispositionCloseNow
	}

	kind := msg.Kind()
	switch kind {
	case ldap.KindBind:
		err = d.handleBind(msg)
	case ldap.KindSearch:
		err = d.handleSearch(msg)
	case ldap.KindUnbind:
		d.logger.Debug("unbind request received",
			"message_id", msg.MessageID)
		d.metrics.RecordRequest(kind.String(), "none", 0)
		return DispositionCloseAfterFlush
	case ldap.KindUnknown:
		d.logger.Warn("unsupported request",
			"identifier", msg.Operation.Identifier.String(),
			"message_id", msg.MessageID)
		d.metrics.RecordRequest(kind.String(), "unsupported", 0)
		return DispositionCloseAfterFlush
	}

	if err != nil {
		d.logger.Error("request failed",
			"kind", kind.String(),
			"error", err.Error(),
			"message_id", msg.MessageID)
		return DispositionCloseNow
	}
	return DispositionContinue
}

// send writes one response message.
func (d *Dispatcher) send(messageID int64, op *ber.Value) error {
	data, err := ldap.EncodeMessage(messageID, op)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := d.w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (d *Dispatcher) closeWith(disp Disposition) Disposition {
	d.state = StateClosed
	d.stream.Reset()
	return disp
}

// Close marks the dispatcher closed when the connection goes away.
func (d *Dispatcher) Close() {
	d.closeWith(DispositionCloseNow)
}

// State returns the current authentication state.
func (d *Dispatcher) State() State {
	return d.state
}

// Authenticated reports whether a bind has succeeded on this connection.
func (d *Dispatcher) Authenticated() bool {
	return d.state == StateAuthenticated
}

// BoundDN returns the DN of the last successful bind, or "".
func (d *Dispatcher) BoundDN() string {
	return d.boundDN
}

func durationMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
