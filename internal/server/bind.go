package server

import (
	"crypto/subtle"
	"time"

	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
)

// Bind diagnostics.
const (
	diagUnsupportedVersion = "unsupported version"
	diagUnknownIdentity    = "unrecognized identity"
	diagCredentialEncoding = "unexpected credential encoding"
	diagCredentialMismatch = "credential mismatch"
)

// handleBind checks a bind request against the directory and answers it.
// A failed bind leaves the state unchanged.
func (d *Dispatcher) handleBind(msg *ldap.LDAPMessage) error {
	start := time.Now()

	req, err := ldap.ParseBindRequest(msg.Operation)
	if err != nil {
		return err
	}

	d.logger.Debug("bind request",
		"dn", req.Name,
		"version", req.Version,
		"simple", req.IsSimple(),
		"message_id", msg.MessageID)

	result := d.checkBind(req)
	if result.ResultCode.IsSuccess() {
		d.state = StateAuthenticated
		d.boundDN = req.Name

		d.logger.Info("bind successful",
			"dn", req.Name,
			"duration_ms", durationMS(start))
	} else {
		d.logger.Warn("bind failed",
			"dn", req.Name,
			"result_code", result.ResultCode.String(),
			"error", result.DiagnosticMessage,
			"duration_ms", durationMS(start))
	}
	d.metrics.RecordRequest(ldap.KindBind.String(), result.ResultCode.String(), time.Since(start).Seconds())

	resp := &ldap.BindResponse{LDAPResult: result}
	return d.send(msg.MessageID, resp.Value())
}

// checkBind applies the bind checks in order and stops at the first failure.
func (d *Dispatcher) checkBind(req *ldap.BindRequest) ldap.LDAPResult {
	switch {
	case req.Version != d.dir.Version:
		return ldap.NewErrorResult(ldap.ResultProtocolError, diagUnsupportedVersion)
	case req.Name != d.dir.Principal:
		return ldap.NewErrorResult(ldap.ResultInappropriateAuthentication, diagUnknownIdentity)
	case !req.IsSimple():
		return ldap.NewErrorResult(ldap.ResultAuthMethodNotSupported, diagCredentialEncoding)
	case subtle.ConstantTimeCompare([]byte(req.SimplePassword()), []byte(d.dir.Secret)) != 1:
		return ldap.NewErrorResult(ldap.ResultInvalidCredentials, diagCredentialMismatch)
	}

	result := ldap.NewSuccessResult()
	result.MatchedDN = req.Name
	return result
}
