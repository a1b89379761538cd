package server

import (
	"time"

	"github.com/KilimcininKorOglu/ldapfixture/internal/directory"
	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
)

// Search diagnostics.
const (
	diagNotAuthenticated = "not authenticated"
	diagUnknownBase      = "unknown base"
)

// handleSearch answers a search with the fixed entries followed by
// SearchResultDone. Scope and filter are logged but do not select entries.
func (d *Dispatcher) handleSearch(msg *ldap.LDAPMessage) error {
	start := time.Now()

	req, err := ldap.ParseSearchRequest(msg.Operation)
	if err != nil {
		return err
	}

	d.logger.Debug("search request",
		"base_dn", req.BaseObject,
		"scope", req.Scope.String(),
		"message_id", msg.MessageID)

	var (
		result  ldap.LDAPResult
		entries []directory.Entry
	)
	switch {
	case d.state != StateAuthenticated:
		result = ldap.NewErrorResult(ldap.ResultInsufficientAccessRights, diagNotAuthenticated)
	case req.BaseObject != d.dir.Base:
		result = ldap.NewErrorResult(ldap.ResultNoSuchObject, diagUnknownBase)
	default:
		result = ldap.NewSuccessResult()
		entries = d.dir.Entries
	}

	for _, entry := range entries {
		if err := d.send(msg.MessageID, entry.SearchResultEntry().Value()); err != nil {
			return err
		}
	}

	if result.ResultCode.IsSuccess() {
		d.logger.Info("search completed",
			"base_dn", req.BaseObject,
			"scope", req.Scope.String(),
			"results", len(entries),
			"duration_ms", durationMS(start))
	} else {
		d.logger.Warn("search failed",
			"base_dn", req.BaseObject,
			"scope", req.Scope.String(),
			"result_code", result.ResultCode.String(),
			"error", result.DiagnosticMessage,
			"duration_ms", durationMS(start))
	}
	d.metrics.RecordRequest(ldap.KindSearch.String(), result.ResultCode.String(), time.Since(start).Seconds())

	done := &ldap.SearchResultDone{LDAPResult: result}
	return d.send(msg.MessageID, done.Value())
}
