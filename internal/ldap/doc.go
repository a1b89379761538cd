// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
//
// This package interprets values decoded by package ber as LDAP requests
// and builds the response values the server sends back.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// Decode with Schema, then classify the operation:
//
//	v, n, err := ber.DecodeOne(data, ldap.Schema)
//	msg, err := ldap.ParseLDAPMessage(v)
//	switch msg.Kind() {
//	case ldap.KindBind:
//	    req, err := ldap.ParseBindRequest(msg.Operation)
//	    // handle bind request
//	case ldap.KindSearch:
//	    req, err := ldap.ParseSearchRequest(msg.Operation)
//	    // handle search request
//	case ldap.KindUnbind:
//	    // close the connection
//	case ldap.KindUnknown:
//	    // unsupported operation
//	}
//
// # Supported Operations
//
//   - Bind (APPLICATION 0): Authentication
//   - Unbind (APPLICATION 2): Connection termination
//   - Search (APPLICATION 3): Entry lookup
//
// # Responses
//
// Response types return their protocol operation from Value; EncodeMessage
// wraps it in the envelope:
//
//	resp := &ldap.BindResponse{LDAPResult: ldap.NewSuccessResult()}
//	data, err := ldap.EncodeMessage(msg.MessageID, resp.Value())
//
// # References
//
//   - RFC 4511: LDAP Protocol
//   - RFC 4513: LDAP Authentication Methods
package ldap
