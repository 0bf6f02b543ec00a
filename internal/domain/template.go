package domain

import "strings"

// PlaceholderToken is the literal marker in template fields that is
// substituted with the current zone's domain name at execution time.
const PlaceholderToken = "{{DOMAIN}}"

// ApplyPlaceholder replaces every occurrence of PlaceholderToken in s with
// the given zone name. A string without the token is returned unchanged.
func ApplyPlaceholder(s, zoneName string) string {
	return strings.ReplaceAll(s, PlaceholderToken, zoneName)
}

// RecordTemplate describes one DNS record to be created per target zone.
// Name and Content may contain PlaceholderToken.
type RecordTemplate struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Content  string  `json:"content"`
	TTL      int     `json:"ttl"`
	Priority *uint16 `json:"priority,omitempty"`
	Proxied  *bool   `json:"proxied,omitempty"`
}

// Render resolves the template against a zone name, substituting the
// placeholder in name and content.
func (t RecordTemplate) Render(zoneName string) DNSRecord {
	rec := DNSRecord{
		ZoneName: zoneName,
		Name:     ApplyPlaceholder(t.Name, zoneName),
		Type:     t.Type,
		Content:  ApplyPlaceholder(t.Content, zoneName),
		TTL:      t.TTL,
	}
	if t.Priority != nil && RecordTypeHasPriority(t.Type) {
		p := *t.Priority
		rec.Priority = &p
	}
	if t.Proxied != nil && RecordTypeSupportsProxy(t.Type) {
		rec.Proxied = *t.Proxied
	}
	return rec
}

// RedirectTemplate describes one URL forwarding rule to be appended per
// target zone. SourcePattern and TargetURL may contain PlaceholderToken.
type RedirectTemplate struct {
	SourcePattern string `json:"source_url"`
	TargetURL     string `json:"target_url"`
	StatusCode    int    `json:"status_code"`
}

// DefaultRedirectStatus is used when a redirect template omits the status code.
const DefaultRedirectStatus = 301

// Render resolves the template against a zone name
func (t RedirectTemplate) Render(zoneName string) RedirectTemplate {
	out := RedirectTemplate{
		SourcePattern: ApplyPlaceholder(t.SourcePattern, zoneName),
		TargetURL:     ApplyPlaceholder(t.TargetURL, zoneName),
		StatusCode:    t.StatusCode,
	}
	if out.StatusCode == 0 {
		out.StatusCode = DefaultRedirectStatus
	}
	return out
}

// ParseDomainList splits pasted free-form input into a clean domain list.
// Terms are separated by any run of newlines, commas or spaces; empties are
// dropped and duplicates removed, preserving first-occurrence order.
func ParseDomainList(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ' ' || r == '\t'
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Preset record templates offered for bulk DNS runs. The DMARC preset is
// parameterized by the stored report address, which itself may carry the
// placeholder (default "reports@{{DOMAIN}}").
func PresetGoogleSPF() RecordTemplate {
	return RecordTemplate{Type: "TXT", Name: "@", Content: "v=spf1 include:_spf.google.com ~all", TTL: 1}
}

func PresetGoogleMX() RecordTemplate {
	p := uint16(1)
	return RecordTemplate{Type: "MX", Name: "@", Content: "SMTP.GOOGLE.COM", TTL: 1, Priority: &p}
}

func PresetDMARC(reportEmail string) RecordTemplate {
	return RecordTemplate{Type: "TXT", Name: "_dmarc", Content: "v=DMARC1; p=quarantine; rua=mailto:" + reportEmail, TTL: 1}
}
