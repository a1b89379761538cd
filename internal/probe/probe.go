// Package probe is a minimal LDAP client for exercising the fixture server.
// It encodes requests and decodes responses with go-asn1-ber, independently
// of the server's own codec.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	asn1 "github.com/go-asn1-ber/asn1-ber"

	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
)

// Probe errors
var (
	// ErrUnexpectedResponse is returned when the server answers with a
	// message of the wrong shape or kind.
	ErrUnexpectedResponse = errors.New("probe: unexpected response")
	// ErrMessageIDMismatch is returned when a response carries another
	// request's message ID.
	ErrMessageIDMismatch = errors.New("probe: message ID mismatch")
)

// Result is the LDAPResult of a bind or search.
type Result struct {
	Code       ldap.ResultCode
	MatchedDN  string
	Diagnostic string
}

// Err returns nil for a successful result and an error describing the
// result otherwise.
func (r *Result) Err() error {
	if r.Code.IsSuccess() {
		return nil
	}
	return fmt.Errorf("ldap result %d (%s): %s", int(r.Code), r.Code, r.Diagnostic)
}

// Attribute is one attribute of a search entry.
type Attribute struct {
	Type   string
	Values []string
}

// Entry is one search result entry.
type Entry struct {
	DN         string
	Attributes []Attribute
}

// Client is a connection to an LDAP server. It issues one request at a
// time and is not safe for concurrent use.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	nextID  int64
}

// Dial connects to address. timeout bounds each request; zero disables it.
func Dial(ctx context.Context, address string, timeout time.Duration) (*Client, error) {
	var d net.Dialer
	if timeout > 0 {
		d.Timeout = timeout
	}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("probe: dial %s: %w", address, err)
	}
	return NewClient(conn, timeout), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{conn: conn, timeout: timeout, nextID: 1}
}

// Bind performs a simple bind. A rejected bind is reported in the Result,
// not as an error.
func (c *Client) Bind(dn, password string) (*Result, error) {
	op := newApplication(ldap.ApplicationBindRequest, "Bind Request",
		newInteger(int64(ldap.ProtocolVersion), "Version"),
		newString(dn, "User Name"),
		newContextString(ldap.AuthSimple, password, "Password"),
	)

	id, err := c.send(op)
	if err != nil {
		return nil, err
	}

	resp, err := c.receive(id)
	if err != nil {
		return nil, err
	}
	if resp.Tag != ldap.ApplicationBindResponse {
		return nil, fmt.Errorf("%w: application tag %d to bind", ErrUnexpectedResponse, resp.Tag)
	}
	return parseResult(resp)
}

// Search runs a whole-subtree search for (objectClass=*) under base and
// collects entries until SearchResultDone.
func (c *Client) Search(base string) ([]Entry, *Result, error) {
	op := newApplication(ldap.ApplicationSearchRequest, "Search Request",
		newString(base, "Base DN"),
		newEnum(int64(ldap.ScopeWholeSubtree), "Scope"),
		newEnum(int64(0), "Deref Aliases"),
		newInteger(int64(0), "Size Limit"),
		newInteger(int64(0), "Time Limit"),
		newBool(false, "Types Only"),
		newContextString(7, "objectClass", "Present"),
		newSequence("Attributes"),
	)

	id, err := c.send(op)
	if err != nil {
		return nil, nil, err
	}

	var entries []Entry
	for {
		resp, err := c.receive(id)
		if err != nil {
			return entries, nil, err
		}

		switch resp.Tag {
		case ldap.ApplicationSearchResultEntry:
			entry, err := parseEntry(resp)
			if err != nil {
				return entries, nil, err
			}
			entries = append(entries, entry)
		case ldap.ApplicationSearchResultDone:
			result, err := parseResult(resp)
			return entries, result, err
		default:
			return entries, nil, fmt.Errorf("%w: application tag %d to search", ErrUnexpectedResponse, resp.Tag)
		}
	}
}

// Unbind sends an unbind request. The server closes the connection
// without answering.
func (c *Client) Unbind() error {
	op := asn1.Encode(asn1.ClassApplication, asn1.TypePrimitive, ldap.ApplicationUnbindRequest, nil, "Unbind Request")
	_, err := c.send(op)
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) deadline() error {
	if c.timeout <= 0 {
		return nil
	}
	return c.conn.SetDeadline(time.Now().Add(c.timeout))
}

func (c *Client) send(op *asn1.Packet) (int64, error) {
	id := c.nextID
	c.nextID++

	if err := c.deadline(); err != nil {
		return 0, err
	}
	if _, err := c.conn.Write(newLDAPRequest(id, op).Bytes()); err != nil {
		return 0, fmt.Errorf("probe: write request: %w", err)
	}
	return id, nil
}

// receive reads one response and returns its protocol operation.
func (c *Client) receive(id int64) (*asn1.Packet, error) {
	if err := c.deadline(); err != nil {
		return nil, err
	}

	p, err := asn1.ReadPacket(c.conn)
	if err != nil {
		return nil, fmt.Errorf("probe: read response: %w", err)
	}
	if len(p.Children) < 2 {
		return nil, fmt.Errorf("%w: %d envelope children", ErrUnexpectedResponse, len(p.Children))
	}

	got, ok := p.Children[0].Value.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: message ID is %T", ErrUnexpectedResponse, p.Children[0].Value)
	}
	if got != id {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrMessageIDMismatch, id, got)
	}

	op := p.Children[1]
	if op.ClassType != asn1.ClassApplication || op.TagType != asn1.TypeConstructed {
		return nil, fmt.Errorf("%w: operation is not application constructed", ErrUnexpectedResponse)
	}
	return op, nil
}
