package paylist

import (
	"fmt"
	"time"

	"github.com/miekg/dns"

	"github.com/disperseorg/libdisperse-go/ledger"
)

const (
	// defaultUpstream is the default recursive resolver for DNSSEC queries.
	defaultUpstream = "8.8.8.8:53"

	// dnssecTimeout is the timeout for DNSSEC queries.
	dnssecTimeout = 10 * time.Second

	// edns0BufSize is the EDNS0 UDP buffer size.
	edns0BufSize = 4096
)

// DNSSECResolver resolves handles like DNSResolver but insists on DNSSEC:
// it relies on the upstream recursive resolver to validate and requires
// the AD (Authenticated Data) flag on every answer, so a spoofed TXT
// record cannot redirect a disbursement.
type DNSSECResolver struct {
	// Upstream is the recursive resolver address (e.g. "8.8.8.8:53").
	Upstream string

	// Exchange sends one DNS query; tests substitute it. Nil uses a
	// dns.Client against Upstream.
	Exchange func(msg *dns.Msg, upstream string) (*dns.Msg, error)
}

var _ Resolver = (*DNSSECResolver)(nil)

// NewDNSSECResolver creates a DNSSECResolver. An empty upstream defaults
// to 8.8.8.8:53.
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream}
}

// Resolve looks the handle up over the upstream resolver with the DNSSEC
// OK flag set and parses the address out of the validated TXT record.
func (r *DNSSECResolver) Resolve(handle string) (ledger.Address, error) {
	alias, domain, err := splitHandle(handle)
	if err != nil {
		return ledger.Address{}, err
	}

	name := txtName(alias, domain)
	resp, err := r.query(name)
	if err != nil {
		return ledger.Address{}, err
	}

	var txts []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			for _, s := range txt.Txt {
				txts = append(txts, s)
			}
		}
	}
	return addressFromRecords(name, txts)
}

// query sends a TXT query with the DO flag and validates the response
// carries the AD flag.
func (r *DNSSECResolver) query(name string) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true) // DO (DNSSEC OK) flag

	exchange := r.Exchange
	if exchange == nil {
		exchange = func(m *dns.Msg, upstream string) (*dns.Msg, error) {
			client := &dns.Client{Timeout: dnssecTimeout}
			resp, _, err := client.Exchange(m, upstream)
			return resp, err
		}
	}

	resp, err := exchange(msg, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s TXT: %w", ErrResolveFailed, name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%w: query %s TXT: rcode %s",
			ErrResolveFailed, name, dns.RcodeToString[resp.Rcode])
	}
	// Require the AD flag -- the recursive resolver validated DNSSEC.
	if !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: AD flag not set for %s TXT", ErrDNSSECFailed, name)
	}
	return resp, nil
}
