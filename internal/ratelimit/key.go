package ratelimit

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// ClientKey derives a rate-limit key from request headers: the first IP in
// the forwarded-for chain when present, otherwise a hash of the user agent
// and referer. Clients without any of these collapse into one shared key,
// which is fine for abuse mitigation.
func ClientKey(forwardedFor, userAgent, referer string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return "ip:" + first
		}
	}

	h := fnv.New32a()
	h.Write([]byte(userAgent))
	h.Write([]byte{'|'})
	h.Write([]byte(referer))
	return fmt.Sprintf("ua:%08x", h.Sum32())
}
