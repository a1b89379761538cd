package server

import (
	"bytes"
	"errors"
	"io"
	"testing"

	asn1 "github.com/go-asn1-ber/asn1-ber"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/ldapfixture/internal/directory"
	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/metrics"
)

func request(id int64, op *asn1.Packet) []byte {
	p := asn1.Encode(asn1.ClassUniversal, asn1.TypeConstructed, asn1.TagSequence, nil, "LDAP Request")
	p.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, id, "MessageID"))
	p.AppendChild(op)
	return p.Bytes()
}

func bindWith(version int64, dn string, credential *asn1.Packet) *asn1.Packet {
	op := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, ldap.ApplicationBindRequest, nil, "Bind Request")
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, version, "Version"))
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, dn, "User Name"))
	if credential != nil {
		op.AppendChild(credential)
	}
	return op
}

func simple(password string) *asn1.Packet {
	return asn1.NewString(asn1.ClassContext, asn1.TypePrimitive, ldap.AuthSimple, password, "Password")
}

func bindRequest(id int64, dn, password string) []byte {
	return request(id, bindWith(3, dn, simple(password)))
}

func validBind(id int64) []byte {
	return bindRequest(id, directory.PrincipalDN, directory.Secret)
}

func searchRequest(id int64, base string) []byte {
	op := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, ldap.ApplicationSearchRequest, nil, "Search Request")
	op.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, base, "Base DN"))
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagEnumerated, int64(2), "Scope"))
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagEnumerated, int64(0), "Deref Aliases"))
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, int64(0), "Size Limit"))
	op.AppendChild(asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, int64(0), "Time Limit"))
	op.AppendChild(asn1.NewBoolean(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagBoolean, false, "Types Only"))
	op.AppendChild(asn1.NewString(asn1.ClassContext, asn1.TypePrimitive, 7, "objectClass", "Present"))
	op.AppendChild(asn1.Encode(asn1.ClassUniversal, asn1.TypeConstructed, asn1.TagSequence, nil, "Attributes"))
	return request(id, op)
}

func unbindRequest(id int64) []byte {
	return request(id, asn1.Encode(asn1.ClassApplication, asn1.TypePrimitive, ldap.ApplicationUnbindRequest, nil, "Unbind Request"))
}

func deleteRequest(id int64) []byte {
	return request(id, asn1.NewString(asn1.ClassApplication, asn1.TypePrimitive, 10, "cn=x", "Del Request"))
}

func join(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

type response struct {
	id   int64
	op   *asn1.Packet
	code int64
	dn   string
	diag string
}

// responses decodes every message written to buf.
func responses(t *testing.T, buf *bytes.Buffer) []response {
	t.Helper()

	r := bytes.NewReader(buf.Bytes())
	var out []response
	for {
		p, err := asn1.ReadPacket(r)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		require.Len(t, p.Children, 2)

		resp := response{id: p.Children[0].Value.(int64), op: p.Children[1]}
		require.Equal(t, asn1.ClassApplication, resp.op.ClassType)
		require.Equal(t, asn1.TypeConstructed, resp.op.TagType)
		if resp.op.Tag != ldap.ApplicationSearchResultEntry {
			require.Len(t, resp.op.Children, 3)
			resp.code = resp.op.Children[0].Value.(int64)
			resp.dn = resp.op.Children[1].Value.(string)
			resp.diag = resp.op.Children[2].Value.(string)
		}
		out = append(out, resp)
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewDispatcher(&buf, DispatcherOptions{}), &buf
}

func TestDispatcher_BindSuccess(t *testing.T) {
	d, buf := newTestDispatcher(t)
	assert.Equal(t, StateUnauthenticated, d.State())

	assert.Equal(t, DispositionContinue, d.Feed(validBind(1)))
	assert.Equal(t, StateAuthenticated, d.State())
	assert.True(t, d.Authenticated())
	assert.Equal(t, directory.PrincipalDN, d.BoundDN())

	resps := responses(t, buf)
	require.Len(t, resps, 1)
	assert.Equal(t, int64(1), resps[0].id)
	assert.Equal(t, asn1.Tag(ldap.ApplicationBindResponse), resps[0].op.Tag)
	assert.Equal(t, int64(0), resps[0].code)
	assert.Equal(t, directory.PrincipalDN, resps[0].dn)
	assert.Equal(t, "", resps[0].diag)
}

func TestDispatcher_BindFailures(t *testing.T) {
	sasl := asn1.Encode(asn1.ClassContext, asn1.TypeConstructed, 3, nil, "SASL")
	sasl.AppendChild(asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, "PLAIN", "Mechanism"))

	tests := []struct {
		name     string
		req      []byte
		wantCode ldap.ResultCode
		wantDiag string
	}{
		{"version 2", request(4, bindWith(2, directory.PrincipalDN, simple(directory.Secret))), ldap.ResultProtocolError, "unsupported version"},
		{"version checked before identity", request(4, bindWith(2, "cn=nobody", simple("x"))), ldap.ResultProtocolError, "unsupported version"},
		{"unknown identity", bindRequest(4, "cn=nobody", directory.Secret), ldap.ResultInappropriateAuthentication, "unrecognized identity"},
		{"identity checked before secret", bindRequest(4, "cn=nobody", "wrong"), ldap.ResultInappropriateAuthentication, "unrecognized identity"},
		{"sasl credential", request(4, bindWith(3, directory.PrincipalDN, sasl)), ldap.ResultAuthMethodNotSupported, "unexpected credential encoding"},
		{"universal credential", request(4, bindWith(3, directory.PrincipalDN,
			asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, directory.Secret, "Password"))),
			ldap.ResultAuthMethodNotSupported, "unexpected credential encoding"},
		{"wrong secret", bindRequest(4, directory.PrincipalDN, "opensesame!"), ldap.ResultInvalidCredentials, "credential mismatch"},
		{"empty secret", bindRequest(4, directory.PrincipalDN, ""), ldap.ResultInvalidCredentials, "credential mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf := newTestDispatcher(t)

			assert.Equal(t, DispositionContinue, d.Feed(tt.req))
			assert.Equal(t, StateUnauthenticated, d.State())

			resps := responses(t, buf)
			require.Len(t, resps, 1)
			assert.Equal(t, int64(4), resps[0].id)
			assert.Equal(t, asn1.Tag(ldap.ApplicationBindResponse), resps[0].op.Tag)
			assert.Equal(t, int64(tt.wantCode), resps[0].code)
			assert.Equal(t, tt.wantDiag, resps[0].diag)
			assert.Equal(t, "", resps[0].dn)
		})
	}
}

func TestDispatcher_BindRetryAfterFailure(t *testing.T) {
	d, buf := newTestDispatcher(t)

	assert.Equal(t, DispositionContinue, d.Feed(bindRequest(1, directory.PrincipalDN, "nope")))
	assert.False(t, d.Authenticated())
	assert.Equal(t, DispositionContinue, d.Feed(validBind(2)))
	assert.True(t, d.Authenticated())

	resps := responses(t, buf)
	require.Len(t, resps, 2)
	assert.Equal(t, int64(ldap.ResultInvalidCredentials), resps[0].code)
	assert.Equal(t, int64(0), resps[1].code)
}

func TestDispatcher_FailedRebindKeepsAuthentication(t *testing.T) {
	d, buf := newTestDispatcher(t)

	d.Feed(validBind(1))
	assert.Equal(t, DispositionContinue, d.Feed(bindRequest(2, "cn=nobody", "x")))
	assert.Equal(t, StateAuthenticated, d.State())

	buf.Reset()
	assert.Equal(t, DispositionContinue, d.Feed(searchRequest(3, directory.BaseDN)))
	assert.Len(t, responses(t, buf), 3)
}

func TestDispatcher_SearchUnauthenticated(t *testing.T) {
	d, buf := newTestDispatcher(t)

	assert.Equal(t, DispositionContinue, d.Feed(searchRequest(2, directory.BaseDN)))
	assert.Equal(t, StateUnauthenticated, d.State())

	resps := responses(t, buf)
	require.Len(t, resps, 1)
	assert.Equal(t, int64(2), resps[0].id)
	assert.Equal(t, asn1.Tag(ldap.ApplicationSearchResultDone), resps[0].op.Tag)
	assert.Equal(t, int64(ldap.ResultInsufficientAccessRights), resps[0].code)
	assert.Equal(t, "not authenticated", resps[0].diag)
}

func TestDispatcher_SearchUnknownBase(t *testing.T) {
	d, buf := newTestDispatcher(t)
	d.Feed(validBind(1))
	buf.Reset()

	assert.Equal(t, DispositionContinue, d.Feed(searchRequest(2, "dc=example,dc=com")))

	resps := responses(t, buf)
	require.Len(t, resps, 1)
	assert.Equal(t, asn1.Tag(ldap.ApplicationSearchResultDone), resps[0].op.Tag)
	assert.Equal(t, int64(ldap.ResultNoSuchObject), resps[0].code)
	assert.Equal(t, "unknown base", resps[0].diag)
	assert.True(t, d.Authenticated())
}

func TestDispatcher_SearchEntries(t *testing.T) {
	d, buf := newTestDispatcher(t)
	d.Feed(validBind(1))
	buf.Reset()

	assert.Equal(t, DispositionContinue, d.Feed(searchRequest(7, directory.BaseDN)))

	resps := responses(t, buf)
	require.Len(t, resps, 3)
	for _, r := range resps {
		assert.Equal(t, int64(7), r.id)
	}

	wantDNs := []string{"abcdefghijklmnopqrstuvwxyz", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}
	for i, r := range resps[:2] {
		assert.Equal(t, asn1.Tag(ldap.ApplicationSearchResultEntry), r.op.Tag)
		require.Len(t, r.op.Children, 2)
		assert.Equal(t, wantDNs[i], r.op.Children[0].Value)

		attrs := r.op.Children[1].Children
		require.Len(t, attrs, 3)
		got := map[string][]string{}
		for _, a := range attrs {
			var vals []string
			for _, v := range a.Children[1].Children {
				vals = append(vals, v.Value.(string))
			}
			got[a.Children[0].Value.(string)] = vals
		}
		assert.Equal(t, map[string][]string{
			"mail":        {"aaa", "bbb", "ccc"},
			"objectclass": {"111", "222", "333"},
			"cn":          {"CNCNCNCN"},
		}, got)
	}

	assert.Equal(t, asn1.Tag(ldap.ApplicationSearchResultDone), resps[2].op.Tag)
	assert.Equal(t, int64(0), resps[2].code)
	assert.True(t, d.Authenticated())
}

func TestDispatcher_Unbind(t *testing.T) {
	d, buf := newTestDispatcher(t)

	assert.Equal(t, DispositionCloseAfterFlush, d.Feed(unbindRequest(1)))
	assert.Equal(t, StateClosed, d.State())
	assert.Zero(t, buf.Len())

	assert.Equal(t, DispositionCloseNow, d.Feed(validBind(2)))
	assert.Zero(t, buf.Len())
}

func TestDispatcher_UnbindStopsProcessing(t *testing.T) {
	d, buf := newTestDispatcher(t)

	disp := d.Feed(join(validBind(1), unbindRequest(2), searchRequest(3, directory.BaseDN)))
	assert.Equal(t, DispositionCloseAfterFlush, disp)

	resps := responses(t, buf)
	require.Len(t, resps, 1)
	assert.Equal(t, asn1.Tag(ldap.ApplicationBindResponse), resps[0].op.Tag)
}

func TestDispatcher_UnknownKind(t *testing.T) {
	d, buf := newTestDispatcher(t)

	disp := d.Feed(join(validBind(1), deleteRequest(2), searchRequest(3, directory.BaseDN)))
	assert.Equal(t, DispositionCloseAfterFlush, disp)
	assert.Equal(t, StateClosed, d.State())

	resps := responses(t, buf)
	require.Len(t, resps, 1)
	assert.Equal(t, int64(1), resps[0].id)
}

func TestDispatcher_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"indefinite length", []byte{0x30, 0x80, 0x00, 0x00}},
		{"child overruns parent", []byte{0x30, 0x03, 0x02, 0x05, 0x01}},
		{"not a sequence", []byte{0x02, 0x01, 0x01}},
		{"missing operation", []byte{0x30, 0x03, 0x02, 0x01, 0x01}},
		{"bind without credential", request(1, bindWith(3, directory.PrincipalDN, nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf := newTestDispatcher(t)

			assert.Equal(t, DispositionCloseNow, d.Feed(tt.data))
			assert.Equal(t, StateClosed, d.State())
			assert.Zero(t, buf.Len())
		})
	}
}

func TestDispatcher_MalformedAfterValidRequest(t *testing.T) {
	d, buf := newTestDispatcher(t)

	disp := d.Feed(join(validBind(1), []byte{0x30, 0x80}))
	assert.Equal(t, DispositionCloseNow, disp)

	// The bind was answered before the bad bytes were reached; the
	// transport decides whether that output is sent.
	assert.Len(t, responses(t, buf), 1)
}

func TestDispatcher_SplitInput(t *testing.T) {
	d, buf := newTestDispatcher(t)
	data := join(validBind(1), searchRequest(2, directory.BaseDN))
	bindLen := len(validBind(1))

	for i := 0; i < len(data); i++ {
		require.Equal(t, DispositionContinue, d.Feed(data[i:i+1]))

		n := len(responses(t, buf))
		switch {
		case i < bindLen-1:
			require.Zero(t, n, "response before bind completed at byte %d", i)
		case i < len(data)-1:
			require.Equal(t, 1, n, "at byte %d", i)
		}
	}

	assert.Len(t, responses(t, buf), 4)
}

func TestDispatcher_MaxValueSize(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(&buf, DispatcherOptions{MaxValueSize: 16})

	assert.Equal(t, DispositionCloseNow, d.Feed(validBind(1)))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestDispatcher_WriteError(t *testing.T) {
	d := NewDispatcher(failingWriter{}, DispatcherOptions{})

	assert.Equal(t, DispositionCloseNow, d.Feed(validBind(1)))
	assert.Equal(t, StateClosed, d.State())
}

func TestDispatcher_Close(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Feed(validBind(1)[:5])

	d.Close()
	assert.Equal(t, StateClosed, d.State())
	assert.Equal(t, DispositionCloseNow, d.Feed(validBind(1)[5:]))
}

func TestDispatcher_CustomDirectory(t *testing.T) {
	dir := directory.Default()
	dir.Principal = "cn=admin,dc=test"
	dir.Secret = "s3cret"
	dir.Base = "dc=test"
	dir.Entries = dir.Entries[:1]

	var buf bytes.Buffer
	d := NewDispatcher(&buf, DispatcherOptions{Directory: dir})

	d.Feed(bindRequest(1, "cn=admin,dc=test", "s3cret"))
	require.True(t, d.Authenticated())
	d.Feed(searchRequest(2, "dc=test"))

	assert.Len(t, responses(t, &buf), 3)
}

func TestDispatcher_Logging(t *testing.T) {
	var logs bytes.Buffer
	var out bytes.Buffer
	d := NewDispatcher(&out, DispatcherOptions{Logger: logging.NewWithWriter(&logs, "debug", "json")})

	d.Feed(bindRequest(1, directory.PrincipalDN, "bad"))
	d.Feed(validBind(2))
	d.Feed(deleteRequest(3))

	text := logs.String()
	assert.Contains(t, text, `"msg":"bind failed"`)
	assert.Contains(t, text, `"result_code":"InvalidCredentials"`)
	assert.Contains(t, text, `"msg":"bind successful"`)
	assert.Contains(t, text, `"msg":"unsupported request"`)
	assert.Contains(t, text, `"identifier":"application/primitive/10"`)
}

func TestDispatcher_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	var out bytes.Buffer
	d := NewDispatcher(&out, DispatcherOptions{Metrics: m})

	d.Feed(searchRequest(1, directory.BaseDN))
	d.Feed(validBind(2))
	d.Feed(searchRequest(3, directory.BaseDN))
	d.Feed([]byte{0x30, 0x80})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("search", "InsufficientAccessRights")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("bind", "Success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("search", "Success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DecodeErrorsTotal))
	assert.Greater(t, testutil.ToFloat64(m.BytesReceivedTotal), float64(0))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "close-after-flush", DispositionCloseAfterFlush.String())
}
