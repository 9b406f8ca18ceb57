// Package mention collects the users a command targets, from explicit @-tags
// in the argument text, the transport's own mention metadata, and the author
// of a replied-to message.
package mention

import (
	"regexp"
	"sort"

	"whatsbot/internal/transport"
)

// An @ followed by at least five digits; shorter runs are not phone numbers.
var tagRegexp = regexp.MustCompile(`@(\d{5,})`)

// Extract returns the union of every user the message references, normalized
// to canonical user JIDs, deduplicated, in sorted order.
func Extract(m *transport.Message, args string) []string {
	seen := make(map[string]struct{})

	if m.Quoted != nil && m.Quoted.Sender != "" {
		seen[canonical(m.Quoted.Sender)] = struct{}{}
	}
	for _, jid := range m.Mentions {
		seen[canonical(jid)] = struct{}{}
	}
	for _, match := range tagRegexp.FindAllStringSubmatch(args, -1) {
		seen[canonical(match[1])] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for jid := range seen {
		out = append(out, jid)
	}
	sort.Strings(out)
	return out
}

func canonical(jid string) string {
	return transport.UserJID(transport.Normalize(jid))
}
