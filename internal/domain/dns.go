package domain

// DNSRecord represents a DNS record in the domain
type DNSRecord struct {
	ID       string
	ZoneID   string
	ZoneName string
	Name     string
	Type     string // A, AAAA, CNAME, MX, TXT, NS, SRV, CAA
	Content  string
	TTL      int
	Proxied  bool
	Priority *uint16 // for MX, SRV records
}

// RecordFilter represents filters for listing DNS records
type RecordFilter struct {
	Name string
	Type string
}

// RecordTypes contains all supported DNS record types
var RecordTypes = []string{
	"A",
	"AAAA",
	"CNAME",
	"MX",
	"TXT",
	"NS",
	"SRV",
	"CAA",
}

// IsValidRecordType checks if the given type is a valid DNS record type
func IsValidRecordType(recordType string) bool {
	for _, t := range RecordTypes {
		if t == recordType {
			return true
		}
	}
	return false
}

// RecordTypeHasPriority reports whether records of this type carry a priority
func RecordTypeHasPriority(recordType string) bool {
	return recordType == "MX" || recordType == "SRV"
}

// RecordTypeSupportsProxy reports whether records of this type can be proxied
func RecordTypeSupportsProxy(recordType string) bool {
	return recordType == "A" || recordType == "AAAA" || recordType == "CNAME"
}
