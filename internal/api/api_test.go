package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/pipeline"
	"github.com/motifhq/motif/pkg/session"
	"github.com/motifhq/motif/pkg/store"
	"github.com/motifhq/motif/pkg/textfit"
)

const templateDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200" width="200" height="200">` +
	`<rect width="200" height="200" fill="#ffffff"/>` +
	`<g id="ct-1"><rect x="40" y="60" width="120" height="80" fill="none" stroke="#1a1a2e" stroke-width="2"/></g>` +
	`<g id="dt-1"><text font-family="Montserrat" font-size="20" fill="#1a1a2e">` +
	`<tspan x="100" dy="0">SAMPLE</tspan></text></g></svg>`

type fixedMeasurer struct{}

func (fixedMeasurer) Measure(context.Context, string, int) (textfit.LineMetrics, error) {
	return textfit.LineMetrics{Widths: []float64{50}, FontSize: 20}, nil
}

func sampleTemplate(id string) store.Template {
	return store.Template{
		ID:          id,
		Locator:     id + ".svg",
		Name:        id,
		BorderStyle: "solid",
		Palette:     []string{"c0392b", "2980b9"},
		Zones: []store.TextZone{
			{Label: "headline", Index: 0, FontSize: 20, MaxWidth: 100, Editable: true},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tpl := sampleTemplate("t1")
	runner := pipeline.NewRunner(
		&store.MemoryStore{Templates: []store.Template{tpl}},
		&store.MemoryFetcher{Templates: map[string]string{tpl.Locator: templateDoc}},
		cache.NewMemoryCache(),
		fixedMeasurer{},
		log.NewWithOptions(io.Discard, log.Options{}),
	)
	srv := NewServer(runner, session.NewMemoryStore(), log.NewWithOptions(io.Discard, log.Options{}))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("no request ID header")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request ID = %q, want req-42", got)
	}
}

func TestRenderVariant(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Text:       "hello friends",
		Descriptor: pipeline.Descriptor{TemplateID: "t1", Color: "c0392b", Frame: "double", Tilt: 10},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var v variantPayload
	decodeJSON(t, resp, &v)
	if !strings.Contains(v.Doc, "HELLO") || !strings.Contains(v.Doc, "#c0392b") {
		t.Errorf("variant document missing text or color:\n%s", v.Doc)
	}
	if v.Link == "" || !strings.Contains(v.Link, "template=t1") {
		t.Errorf("link = %q", v.Link)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Text:       "HI",
		Descriptor: pipeline.Descriptor{TemplateID: "ghost"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRenderInvalidDescriptor(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Text:       "HI",
		Descriptor: pipeline.Descriptor{TemplateID: "t1", Tilt: 720},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["code"] != "INVALID_TILT" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestCatalogEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/catalog?text=HI&seed=3")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body catalogResponse
	decodeJSON(t, resp, &body)
	if len(body.Groups) != 1 || body.Groups[0].Family != "solid" {
		t.Fatalf("groups = %+v", body.Groups)
	}
	// solid border supports single, double, and split.
	if len(body.Groups[0].Variants) != 3 {
		t.Errorf("variants = %d, want 3", len(body.Groups[0].Variants))
	}
	if body.Stats.Produced != 3 {
		t.Errorf("produced = %d", body.Stats.Produced)
	}
}

func TestCatalogRequiresText(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/catalog")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBatchPaging(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/batches", pipeline.Options{
		Text:     "HI",
		Colors:   []string{"c0392b", "2980b9"},
		PageSize: 4,
		Seed:     7,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var first pageResponse
	decodeJSON(t, resp, &first)
	// 1 template x 2 colors x 3 frames = 6 combinations, page size 4.
	if len(first.Page) != 4 || first.Done {
		t.Fatalf("first page: %d variants, done=%v", len(first.Page), first.Done)
	}
	if first.BatchID == "" {
		t.Fatal("no batch ID")
	}

	resp2, err := http.Get(ts.URL + "/v1/batches/" + first.BatchID + "/next")
	if err != nil {
		t.Fatal(err)
	}
	var second pageResponse
	decodeJSON(t, resp2, &second)
	if len(second.Page) != 2 || !second.Done {
		t.Errorf("second page: %d variants, done=%v", len(second.Page), second.Done)
	}
	if second.Stats.Produced != 6 {
		t.Errorf("produced = %d, want 6", second.Stats.Produced)
	}
}

func TestBatchNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/batches/missing/next")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeepLinkResolve(t *testing.T) {
	ts := newTestServer(t)
	link := session.DeepLink{
		Text:       "HELLO FRIENDS",
		Descriptor: pipeline.Descriptor{TemplateID: "t1", Color: "2980b9", Frame: "split", Tilt: -20},
	}
	resp, err := http.Get(ts.URL + "/v1/link?" + link.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var v variantPayload
	decodeJSON(t, resp, &v)
	if v.Descriptor != link.Descriptor {
		t.Errorf("descriptor = %+v, want %+v", v.Descriptor, link.Descriptor)
	}
	if !strings.Contains(v.Doc, "rotate(-20 ") {
		t.Error("tilt not applied on restore")
	}
}

func TestDeepLinkRequiresText(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/link?template=t1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/sessions", sessionRequest{
		Text:  "HI",
		Saved: []pipeline.Descriptor{{TemplateID: "t1", Frame: "double"}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created session.Session
	decodeJSON(t, resp, &created)
	if created.ID == "" {
		t.Fatal("no session ID")
	}

	resp2, err := http.Get(ts.URL + "/v1/sessions/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp2.StatusCode)
	}
	var restored session.Session
	decodeJSON(t, resp2, &restored)
	if restored.Text != "HI" || len(restored.Saved) != 1 || restored.Saved[0].TemplateID != "t1" {
		t.Errorf("restored session = %+v", restored)
	}
}

func TestSessionNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/sessions/ghost")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSessionRejectsInvalidDescriptor(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/sessions", sessionRequest{
		Text:  "HI",
		Saved: []pipeline.Descriptor{{TemplateID: "t1", Frame: "triple"}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
