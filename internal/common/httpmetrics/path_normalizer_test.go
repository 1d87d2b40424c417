package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/api/signup", "/api/signup"},
		{"/api/members", "/api/members"},
		{"/api/profile/550e8400-e29b-41d4-a716-446655440000", "/api/profile/{param}"},
		{"/api/profile/42", "/api/profile/{param}"},
		{"/health", "/health"},
	}

	for _, tc := range testCases {
		if got := NormalizePath(tc.path); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
