package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/tone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "healthy") {
			t.Errorf("GET %s body = %s", path, w.Body.String())
		}
	}
}

func TestFormats(t *testing.T) {
	w := do(t, http.MethodGet, "/api/v1/formats", "", nil)
	var body struct {
		Formats     []string `json:"formats"`
		Conversions []string `json:"conversions"`
	}
	decodeBody(t, w, &body)
	if len(body.Conversions) != len(converter.GetSupportedConversions()) {
		t.Errorf("conversions = %v", body.Conversions)
	}
}

func TestHexToJSON(t *testing.T) {
	w := do(t, http.MethodPost, "/api/v1/convert/hex2json", "text/plain", []byte("20C7087B\n"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var log converter.LogJSON
	decodeBody(t, w, &log)
	if log.EventCount != 2 || log.Events[0].Addr != "0x20" || log.Events[1].Data != "0x7B" {
		t.Errorf("log = %+v", log)
	}
}

func TestHexToJSONUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "tone.hex")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(converter.GridToHex(tone.Default())))
	mw.Close()

	w := do(t, http.MethodPost, "/api/v1/convert/hex2json", mw.FormDataContentType(), buf.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var log converter.LogJSON
	decodeBody(t, w, &log)
	if log.EventCount != converter.EventsPerTone {
		t.Errorf("event_count = %d, want %d", log.EventCount, converter.EventsPerTone)
	}
}

func TestCodecErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		kind string
	}{
		{"odd length", "/api/v1/convert/hex2json", "20C", "InvalidLength"},
		{"bad digit", "/api/v1/convert/hex2json", "20G7", "InvalidHex"},
		{"not json", "/api/v1/convert/json2hex", "{", "Malformed"},
		{"count mismatch", "/api/v1/convert/json2hex", `{"event_count": 2, "events": []}`, "Malformed"},
		{"decode bad hex", "/api/v1/tone/decode", `{"hex": "ZZZZ"}`, "InvalidHex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, http.MethodPost, tt.path, "application/json", []byte(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var body map[string]string
			decodeBody(t, w, &body)
			if body["kind"] != tt.kind {
				t.Errorf("kind = %q, want %q (error %q)", body["kind"], tt.kind, body["error"])
			}
		})
	}
}

func TestJSONToHex(t *testing.T) {
	body := `{"event_count": 1, "events": [{"time": 0, "addr": "0x28", "data": "0x3E"}]}`
	w := do(t, http.MethodPost, "/api/v1/convert/json2hex", "application/json", []byte(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp HexResponse
	decodeBody(t, w, &resp)
	if resp.Hex != "283E" || resp.EventCount != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestToneEncodeDecode(t *testing.T) {
	g := tone.Default()
	g.SetCh(tone.ChALG, 5)
	grid, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}

	w := do(t, http.MethodPost, "/api/v1/tone/encode", "application/json", grid)
	if w.Code != http.StatusOK {
		t.Fatalf("encode status = %d, body = %s", w.Code, w.Body.String())
	}
	var enc EncodeResponse
	decodeBody(t, w, &enc)
	if enc.Hex != converter.GridToHex(g) {
		t.Errorf("hex = %s, want %s", enc.Hex, converter.GridToHex(g))
	}
	if enc.Log.EventCount != converter.EventsPerTone {
		t.Errorf("event_count = %d", enc.Log.EventCount)
	}

	req, _ := json.Marshal(DecodeRequest{Hex: enc.Hex})
	w = do(t, http.MethodPost, "/api/v1/tone/decode", "application/json", req)
	if w.Code != http.StatusOK {
		t.Fatalf("decode status = %d, body = %s", w.Code, w.Body.String())
	}
	var dec struct {
		Grid tone.Grid `json:"grid"`
	}
	decodeBody(t, w, &dec)
	if dec.Grid != g {
		t.Errorf("decoded grid:\n%s\nwant\n%s", dec.Grid, g)
	}
}

func TestToneEncodeRejectsBadGrid(t *testing.T) {
	w := do(t, http.MethodPost, "/api/v1/tone/encode", "application/json", []byte(`{"operators": []}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestToneMIDI(t *testing.T) {
	grid, _ := json.Marshal(tone.Default())
	w := do(t, http.MethodPost, "/api/v1/tone/midi", "application/json", grid)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/midi" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("MThd")) {
		t.Error("body is not a Standard MIDI File")
	}
}

func TestPitch(t *testing.T) {
	tests := []struct {
		path string
		code int
		kc   string
		kf   string
	}{
		{"/api/v1/pitch/60", http.StatusOK, "0x3E", "0x00"},
		{"/api/v1/pitch/69", http.StatusOK, "0x4A", "0x00"},
		{"/api/v1/pitch/60?cents=50", http.StatusOK, "0x3E", "0x80"},
		{"/api/v1/pitch/128", http.StatusBadRequest, "", ""},
		{"/api/v1/pitch/abc", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		w := do(t, http.MethodGet, tt.path, "", nil)
		if w.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		var resp PitchResponse
		decodeBody(t, w, &resp)
		if resp.KC != tt.kc || resp.KF != tt.kf {
			t.Errorf("GET %s = %+v, want kc %s kf %s", tt.path, resp, tt.kc, tt.kf)
		}
	}
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		path string
		code int
		note int
	}{
		{"/api/v1/keycode/3E", http.StatusOK, 60},
		{"/api/v1/keycode/0x4a", http.StatusOK, 69},
		{"/api/v1/keycode/zz", http.StatusBadRequest, 0},
		{"/api/v1/keycode/100", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		w := do(t, http.MethodGet, tt.path, "", nil)
		if w.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		var resp KeyCodeResponse
		decodeBody(t, w, &resp)
		if resp.Note != tt.note {
			t.Errorf("GET %s note = %d, want %d", tt.path, resp.Note, tt.note)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, http.MethodOptions, "/api/v1/health", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d, want 204", w.Code)
	}
}

func TestDebugLogRecordsRequestsAndCodecErrors(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableWriter(&buf)
	defer debug.Disable()

	do(t, http.MethodGet, "/api/v1/health", "", nil)
	do(t, http.MethodPost, "/api/v1/convert/hex2json", "text/plain", []byte("20G7"))

	log := buf.String()
	for _, want := range []string{
		"GET /api/v1/health 200",
		"POST /api/v1/convert/hex2json 400",
		`kind="InvalidHex"`,
	} {
		if !strings.Contains(log, want) {
			t.Errorf("debug log missing %q:\n%s", want, log)
		}
	}
}
