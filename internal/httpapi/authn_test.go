package httpapi

import "testing"

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc.def.ghi", "abc.def.ghi", false},
		{"  Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"Bearer ", "", true},
		{"Bearer", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Fatalf("extractBearerToken(%q): %v", tc.header, err)
		}
		if got != tc.want {
			t.Fatalf("extractBearerToken(%q)=%q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/healthz", "/readyz", "/metrics", "/v1/auth/token", "/v1/info", "/"}
	for _, p := range public {
		if !isPublicPath(p) {
			t.Fatalf("%s should be public", p)
		}
	}
	protected := []string{"/v1/companies", "/v1/companies/abc", "/v1/audit", "/v1/users/me"}
	for _, p := range protected {
		if isPublicPath(p) {
			t.Fatalf("%s should be protected", p)
		}
	}
}
