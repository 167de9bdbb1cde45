package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	directPort = "5432"
	poolerPort = "6543"
)

// NormalizeURL prepares a Supabase connection string for use: the password is
// percent-encoded, the direct port is swapped for the transaction pooler port and
// pgbouncer=true is appended. Applying it twice gives the same result.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return "", fmt.Errorf("invalid database url: missing scheme")
	}

	// The password may hold raw '@', '/' or ':' so split on the last '@' ourselves.
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		user, pass, hasPass := strings.Cut(rest[:at], ":")
		info := url.User(unescape(user))
		if hasPass {
			info = url.UserPassword(unescape(user), unescape(pass))
		}
		rest = info.String() + "@" + rest[at+1:]
	}

	u, err := url.Parse(scheme + "://" + rest)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}

	if u.Port() == directPort {
		u.Host = net.JoinHostPort(u.Hostname(), poolerPort)
	}

	q := u.Query()
	if q.Get("pgbouncer") == "" {
		q.Set("pgbouncer", "true")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// unescape decodes an already encoded component. Text that is not valid
// percent-encoding is taken literally.
func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
