// Package directory holds the fixed data the server authenticates against
// and returns from searches.
package directory

import (
	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
)

// Fixed identity and data served by the fixture.
const (
	// PrincipalDN is the only DN that can bind.
	PrincipalDN = "cn=bigshot,dc=bayshorenetworks,dc=com"
	// Secret is the simple password for PrincipalDN.
	Secret = "opensesame"
	// BaseDN is the only base a search may name.
	BaseDN = "dc=bigdomain,dc=com"
)

// Entry is one search result.
type Entry struct {
	DN         string
	Attributes []ldap.PartialAttribute
}

// Directory is the read-only configuration a dispatcher checks requests
// against. It is shared by all connections and never modified.
type Directory struct {
	Version   int64
	Principal string
	Secret    string
	Base      string
	Entries   []Entry
}

// Default returns the fixture directory.
func Default() *Directory {
	return &Directory{
		Version:   ldap.ProtocolVersion,
		Principal: PrincipalDN,
		Secret:    Secret,
		Base:      BaseDN,
		Entries: []Entry{
			fixedEntry("abcdefghijklmnopqrstuvwxyz"),
			fixedEntry("ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
		},
	}
}

func fixedEntry(dn string) Entry {
	return Entry{
		DN: dn,
		Attributes: []ldap.PartialAttribute{
			{Type: "mail", Values: []string{"aaa", "bbb", "ccc"}},
			{Type: "objectclass", Values: []string{"111", "222", "333"}},
			{Type: "cn", Values: []string{"CNCNCNCN"}},
		},
	}
}

// SearchResultEntry returns the entry as a search response operation.
func (e Entry) SearchResultEntry() *ldap.SearchResultEntry {
	return &ldap.SearchResultEntry{
		ObjectName: e.DN,
		Attributes: e.Attributes,
	}
}
