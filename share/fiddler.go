package share

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

// ConfigureHTTP tunes http.DefaultClient. When debugProxy is reachable
// (e.g. Fiddler on 127.0.0.1:50000) requests are routed through it.
func ConfigureHTTP(debugProxy string) {
	tr := &http.Transport{
		MaxConnsPerHost:       0,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   64,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 30 * time.Second,
	}
	http.DefaultClient.Timeout = 1 * time.Minute
	http.DefaultClient.Transport = tr

	if debugProxy == "" {
		return
	}
	if conn, err := net.DialTimeout("tcp", debugProxy, time.Second); err == nil {
		conn.Close()

		u, _ := url.Parse("http://" + debugProxy)
		tr.Proxy = http.ProxyURL(u)
	}
}
