//go:build !gocv

package web

import (
	"bytes"
	"net/http"
	"testing"
)

func TestServer_StartConnectsConfiguredDevice(t *testing.T) {
	s := newTestServerWithDevice(t, 3)

	// No capture backend in this build; the refusal names the device
	// index the server was configured with.
	resp, body := doJSON(t, s, http.MethodPost, "/camera/start", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("start without backend = %d: %s", resp.StatusCode, body)
	}
	if !bytes.Contains(body, []byte("camera 3")) {
		t.Errorf("start error %s does not name device 3", body)
	}
}
