package paylist

import (
	"fmt"
	"net"
	"strings"

	"github.com/disperseorg/libdisperse-go/ledger"
)

// Resolver turns an alias@domain payment handle into an address.
type Resolver interface {
	Resolve(handle string) (ledger.Address, error)
}

// TXTLookup is the DNS capability a DNSResolver needs. It exists so tests
// can substitute lookups.
type TXTLookup interface {
	LookupTXT(name string) ([]string, error)
}

// netLookup wraps the standard net package lookup.
type netLookup struct{}

func (netLookup) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultLookup is the production TXT lookup using the net package.
var DefaultLookup TXTLookup = netLookup{}

// recordPrefix is the payload marker in a handle TXT record, e.g.
// "disperse=1a2b...ef" carrying the 40-hex-char address.
const recordPrefix = "disperse="

// DNSResolver resolves handles by looking up the TXT record
// {alias}._disperse.{domain} and reading its disperse= payload.
type DNSResolver struct {
	Lookup TXTLookup
}

var _ Resolver = (*DNSResolver)(nil)

// NewDNSResolver returns a DNSResolver on the default lookup.
func NewDNSResolver() *DNSResolver {
	return &DNSResolver{Lookup: DefaultLookup}
}

// Resolve looks the handle up and parses the address from its TXT record.
func (r *DNSResolver) Resolve(handle string) (ledger.Address, error) {
	alias, domain, err := splitHandle(handle)
	if err != nil {
		return ledger.Address{}, err
	}

	lookup := r.Lookup
	if lookup == nil {
		lookup = DefaultLookup
	}

	name := txtName(alias, domain)
	txts, err := lookup.LookupTXT(name)
	if err != nil {
		return ledger.Address{}, fmt.Errorf("%w: TXT lookup for %s: %w", ErrResolveFailed, name, err)
	}
	return addressFromRecords(name, txts)
}

// splitHandle tears alias@domain apart.
func splitHandle(handle string) (alias, domain string, err error) {
	alias, domain, found := strings.Cut(handle, "@")
	if !found || alias == "" || domain == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return alias, domain, nil
}

// txtName builds the record name for a handle: {alias}._disperse.{domain}.
func txtName(alias, domain string) string {
	return alias + "._disperse." + domain
}

// addressFromRecords finds the first disperse= record and parses the
// address out of it.
func addressFromRecords(name string, txts []string) (ledger.Address, error) {
	for _, txt := range txts {
		txt = strings.TrimSpace(txt)
		if !strings.HasPrefix(txt, recordPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(txt, recordPrefix))
		addr, err := ledger.ParseAddress(payload)
		if err != nil {
			return ledger.Address{}, fmt.Errorf("%w: record for %s: %w", ErrResolveFailed, name, err)
		}
		return addr, nil
	}
	return ledger.Address{}, fmt.Errorf("%w: no %s TXT record for %s", ErrResolveFailed, recordPrefix, name)
}
