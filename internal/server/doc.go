// Package server implements the LDAP fixture's connection handling.
//
// # Dispatcher
//
// A Dispatcher holds one connection's receive buffer and authentication
// state. Bytes are handed to Feed as they arrive; every request that is
// complete is decoded, handled and answered before Feed returns:
//
//	d := server.NewDispatcher(w, server.DispatcherOptions{Logger: logger})
//	switch d.Feed(chunk) {
//	case server.DispositionContinue:
//	    // flush w and read more
//	case server.DispositionCloseAfterFlush:
//	    // flush w, then close
//	case server.DispositionCloseNow:
//	    // close without flushing
//	}
//
// Bind moves the connection from StateUnauthenticated to StateAuthenticated.
// Search requires an authenticated connection and answers with the fixed
// entries of the directory. Unbind and unsupported requests close the
// connection after pending responses are sent; malformed input closes it
// immediately.
//
// # Server
//
// Server accepts TCP connections and runs a Dispatcher for each one on its
// own goroutine:
//
//	srv := server.NewServer(cfg.Server, server.Options{Logger: logger, Metrics: m})
//	if err := srv.ListenAndServe(ctx); !errors.Is(err, server.ErrServerClosed) {
//	    return err
//	}
//
// Cancelling ctx closes the listener and every open connection.
package server
