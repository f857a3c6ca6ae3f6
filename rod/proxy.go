package rod

import (
	"net/url"
	"strings"

	"github.com/fwojciec/immocrawl"
)

// splitProxy turns a proxy URL into the --proxy-server value Chrome accepts
// and the credentials it does not. A bare host:port is passed through.
func splitProxy(proxy string) (server, username, password string, err error) {
	proxy = strings.TrimSpace(proxy)
	if !strings.Contains(proxy, "://") {
		return proxy, "", "", nil
	}

	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return "", "", "", immocrawl.Errorf(immocrawl.EINVALID, "invalid proxy %q", proxy)
	}
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}
	return u.Scheme + "://" + u.Host, username, password, nil
}
