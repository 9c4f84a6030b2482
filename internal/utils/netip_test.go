package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.5", " ", "not-an-ip", "2001:db8::/32"})

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.1.5", true},
		{"192.168.1.6", false},
		{"2001:db8::1", true},
		{"2001:db9::1", false},
		{"::ffff:10.1.2.3", true}, // v4-mapped
		{"garbage", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIPMatcherEmpty(t *testing.T) {
	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("IsEmpty() = false for nil list")
	}
	if !NewIPMatcher([]string{"", "bogus"}).IsEmpty() {
		t.Error("IsEmpty() = false when every entry is unparseable")
	}
}

func TestClientIP(t *testing.T) {
	newReq := func(remote string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	tests := []struct {
		name       string
		req        *http.Request
		trustProxy bool
		want       string
	}{
		{
			name: "remote addr only",
			req:  newReq("203.0.113.9:4411", nil),
			want: "203.0.113.9",
		},
		{
			name:       "untrusted proxy ignores headers",
			req:        newReq("203.0.113.9:4411", map[string]string{"X-Forwarded-For": "198.51.100.1"}),
			trustProxy: false,
			want:       "203.0.113.9",
		},
		{
			name:       "trusted proxy uses first forwarded entry",
			req:        newReq("127.0.0.1:4411", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}),
			trustProxy: true,
			want:       "198.51.100.1",
		},
		{
			name: "cf header wins over forwarded",
			req: newReq("127.0.0.1:4411", map[string]string{
				"CF-Connecting-IP": "198.51.100.7",
				"X-Forwarded-For":  "10.0.0.2",
			}),
			trustProxy: true,
			want:       "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientIP(tt.req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
