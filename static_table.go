package hpack

// HeaderField represents a single header name/value pair as delivered to or
// produced by the codec. It is always caller- or dynamic-table-owned: the
// codec borrows views into it for the duration of one callback and never
// retains it (spec.md §5 "Shared resources").
type HeaderField struct {
	Name  string
	Value string
}

// size is an entry's RFC 7541 §4.1 cost: name length + value length + 32
// bytes of accounting overhead.
func (h HeaderField) size() int {
	return len(h.Name) + len(h.Value) + 32
}

// StaticTableSize is the number of entries in the RFC 7541 Appendix A static
// table. Indices 1..StaticTableSize address it; StaticTableSize+1.. address
// the dynamic table.
const StaticTableSize = 61

// staticTable is the HPACK static table, RFC 7541 Appendix A. Index 0 is
// unused; valid indices are 1..61.
var staticTable = [...]HeaderField{
	{},                                   // 0 - unused
	{":authority", ""},                   // 1
	{":method", "GET"},                   // 2
	{":method", "POST"},                  // 3
	{":path", "/"},                       // 4
	{":path", "/index.html"},             // 5
	{":scheme", "http"},                  // 6
	{":scheme", "https"},                 // 7
	{":status", "200"},                   // 8
	{":status", "204"},                   // 9
	{":status", "206"},                   // 10
	{":status", "304"},                   // 11
	{":status", "400"},                   // 12
	{":status", "404"},                   // 13
	{":status", "500"},                   // 14
	{"accept-charset", ""},               // 15
	{"accept-encoding", "gzip, deflate"}, // 16
	{"accept-language", ""},              // 17
	{"accept-ranges", ""},                // 18
	{"accept", ""},                       // 19
	{"access-control-allow-origin", ""},  // 20
	{"age", ""},                          // 21
	{"allow", ""},                        // 22
	{"authorization", ""},                // 23
	{"cache-control", ""},                // 24
	{"content-disposition", ""},          // 25
	{"content-encoding", ""},             // 26
	{"content-language", ""},             // 27
	{"content-length", ""},               // 28
	{"content-location", ""},             // 29
	{"content-range", ""},                // 30
	{"content-type", ""},                 // 31
	{"cookie", ""},                       // 32
	{"date", ""},                         // 33
	{"etag", ""},                         // 34
	{"expect", ""},                       // 35
	{"expires", ""},                      // 36
	{"from", ""},                         // 37
	{"host", ""},                         // 38
	{"if-match", ""},                     // 39
	{"if-modified-since", ""},            // 40
	{"if-none-match", ""},                // 41
	{"if-range", ""},                     // 42
	{"if-unmodified-since", ""},          // 43
	{"last-modified", ""},                // 44
	{"link", ""},                         // 45
	{"location", ""},                     // 46
	{"max-forwards", ""},                 // 47
	{"proxy-authenticate", ""},           // 48
	{"proxy-authorization", ""},          // 49
	{"range", ""},                        // 50
	{"referer", ""},                      // 51
	{"refresh", ""},                      // 52
	{"retry-after", ""},                  // 53
	{"server", ""},                       // 54
	{"set-cookie", ""},                   // 55
	{"strict-transport-security", ""},    // 56
	{"transfer-encoding", ""},            // 57
	{"user-agent", ""},                   // 58
	{"vary", ""},                         // 59
	{"via", ""},                          // 60
	{"www-authenticate", ""},             // 61
}

// GetStaticEntry returns the static table entry at the given 1-based index.
// It returns the zero HeaderField if index is out of [1, StaticTableSize].
func GetStaticEntry(index int) HeaderField {
	if index < 1 || index > StaticTableSize {
		return HeaderField{}
	}
	return staticTable[index]
}

// staticTableLookup precomputes name and name:value keys to indices so Find
// is O(1) rather than a 61-entry scan per field.
var staticTableLookup map[string]int

func init() {
	staticTableLookup = make(map[string]int, StaticTableSize*2)
	for i := 1; i <= StaticTableSize; i++ {
		entry := staticTable[i]
		if _, exists := staticTableLookup[entry.Name]; !exists {
			staticTableLookup[entry.Name] = i
		}
		if entry.Value != "" {
			staticTableLookup[entry.Name+"\x00"+entry.Value] = i
		}
	}
}

// FindStaticIndex searches the static table for (name, value). index is the
// static index (1..61), or 0 if no entry's name matches. exact is true only
// when both name and value matched the same entry.
func FindStaticIndex(name, value string) (index int, exact bool) {
	if value != "" {
		if idx, found := staticTableLookup[name+"\x00"+value]; found {
			return idx, true
		}
	}
	if idx, found := staticTableLookup[name]; found {
		return idx, false
	}
	return 0, false
}
