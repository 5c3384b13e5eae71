package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/logging"
)

func doRequest(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	app := NewApp(logging.Discard())

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(data)
}

func TestAppHealthz(t *testing.T) {
	code, body := doRequest(t, http.MethodGet, "/healthz", "")
	if code != http.StatusOK || body != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 \"ok\"", code, body)
	}
}

func TestAppParse(t *testing.T) {
	code, body := doRequest(t, http.MethodPost, "/webhook/parse", `{"sessionInfo":{"session":"s1"},"pageInfo":{"displayName":"Start"}}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", code, body)
	}

	got := decode(t, body).(map[string]any)
	if got["session_id"] != "s1" || got["current_page"] != "Start" {
		t.Errorf("unexpected parse reply: %s", body)
	}
}

func TestAppParseInvalid(t *testing.T) {
	code, body := doRequest(t, http.MethodPost, "/webhook/parse", "not json")
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}

	got := decode(t, body).(map[string]any)
	msg, _ := got["error"].(string)
	if !strings.HasPrefix(msg, "Error parsing webhook request: ") {
		t.Errorf("error = %q, want parse error message", msg)
	}
}

func TestAppBuild(t *testing.T) {
	code, body := doRequest(t, http.MethodPost, "/webhook/build", `{"messages":["hello"],"target_page":"p"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", code, body)
	}

	want := decode(t, `{"fulfillmentResponse":{"messages":[{"text":{"text":["hello"]}}]},"targetPage":"p"}`)
	if diff := cmp.Diff(want, decode(t, body)); diff != "" {
		t.Errorf("build reply mismatch (-want +got):\n%s", diff)
	}
}
