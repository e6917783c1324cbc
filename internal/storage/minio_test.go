package storage

import "testing"

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		useSSL   bool
		endpoint string
		secure   bool
	}{
		{"minio", false, "minio:9000", false},
		{"minio:9100", true, "minio:9100", true},
		{"https://objects.example.com", false, "objects.example.com:9000", true},
		{"http://localhost:9000", true, "localhost:9000", false},
	}
	for _, tt := range tests {
		endpoint, secure, err := splitEndpoint(tt.raw, tt.useSSL)
		if err != nil {
			t.Fatalf("splitEndpoint(%q): %v", tt.raw, err)
		}
		if endpoint != tt.endpoint || secure != tt.secure {
			t.Fatalf("splitEndpoint(%q) = %q, %v; want %q, %v", tt.raw, endpoint, secure, tt.endpoint, tt.secure)
		}
	}
}
