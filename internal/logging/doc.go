// Package logging provides structured logging for the ldapfixture server.
//
// # Overview
//
// Components never log through a global. They receive a Logger when they
// are constructed and derive per-connection loggers from it. The default
// implementation is backed by log/slog.
//
// # Creating a Logger
//
//	log, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	})
//
// For testing, use a no-op logger:
//
//	log := logging.NewNop()
//
// # Contextual Fields
//
//	connLog := log.WithRequestID(connID).WithFields("client", conn.RemoteAddr().String())
//	connLog.Info("bind successful", "dn", req.Name, "duration_ms", 1)
//
// # Runtime Level Changes
//
// Loggers returned by New implement LevelSetter. Changing the level on the
// root logger also changes it for every logger derived from it:
//
//	if ls, ok := log.(logging.LevelSetter); ok {
//	    ls.SetLevel("debug")
//	}
package logging
