package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/unalkalkan/Prompter/internal/deck"
	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/pipeline"
	"github.com/unalkalkan/Prompter/internal/storage"
	"github.com/unalkalkan/Prompter/pkg/types"
)

const testScript = "HOST Halo pemirsa. (SENYUM) Apa kabar?\nGUEST Baik, terima kasih.\n"

func newTestServer(t *testing.T, opts Options) (*httptest.Server, deck.Repository) {
	t.Helper()
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage adapter: %v", err)
	}
	repo := deck.NewRepository(adapter)
	handler := NewDeckHandler(repo, pipeline.NewBuilder(parser.NewScriptParser(), nil), opts, nil)

	mux := http.NewServeMux()
	handler.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	decodeJSON(t, resp, &body)
	return body["error"]
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, Options{Title: "Morning Show", Preset: "60pt"})

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`name="script"`, `value="Morning Show"`, `<option value="60pt" selected>`, `<option value="ndjson">`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected form to contain %s", want)
		}
	}

	resp, err = http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestCreateDeckJSON(t *testing.T) {
	srv, repo := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/api/v1/decks", createDeckRequest{
		Script: testScript,
		Title:  "Pagi",
		Format: FormatJSON,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	var created types.Deck
	decodeJSON(t, resp, &created)
	if created.ID == "" || created.Title != "Pagi" {
		t.Fatalf("Unexpected deck: %+v", created)
	}
	if len(created.Slides) != 2 {
		t.Fatalf("Expected 2 slides, got %d", len(created.Slides))
	}
	if created.Slides[0].Text != "Halo pemirsa / (SENYUM) Apa kabar? //" {
		t.Errorf("Unexpected first slide: %q", created.Slides[0].Text)
	}
	if created.Thresholds != (types.Thresholds{Ideal: 12, Maximum: 18}) {
		t.Errorf("Expected default thresholds, got %+v", created.Thresholds)
	}

	stored, err := repo.GetDeck(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("Deck was not stored: %v", err)
	}
	if len(stored.Formats) != 0 {
		t.Errorf("Expected no stored artifacts, got %v", stored.Formats)
	}
}

func TestCreateDeckForm(t *testing.T) {
	srv, repo := newTestServer(t, Options{})

	form := url.Values{
		"script":  {testScript},
		"title":   {"Morning Show"},
		"format":  {"txt"},
		"preset":  {"60pt"},
		"maximum": {"16"},
	}
	resp, err := http.PostForm(srv.URL+"/api/v1/decks", form)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="Morning_Show.txt"` {
		t.Errorf("Unexpected Content-Disposition: %s", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "[1] HOST: Halo pemirsa / (SENYUM) Apa kabar? //") {
		t.Errorf("Unexpected artifact: %q", body)
	}

	deckID := resp.Header.Get("X-Deck-ID")
	stored, err := repo.GetDeck(t.Context(), deckID)
	if err != nil {
		t.Fatalf("Deck was not stored: %v", err)
	}
	if stored.Thresholds != (types.Thresholds{Ideal: 10, Maximum: 16}) {
		t.Errorf("Expected 60pt ideal with form maximum, got %+v", stored.Thresholds)
	}
	if len(stored.Formats) != 1 || stored.Formats[0] != "txt" {
		t.Errorf("Expected stored txt artifact, got %v", stored.Formats)
	}
}

func TestCreateDeckMultipartUpload(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("format", "zip")
	mw.WriteField("script", "")
	fw, err := mw.CreateFormFile("file", "episode.txt")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write([]byte(testScript))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/decks", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected application/zip, got %s", ct)
	}

	data, _ := io.ReadAll(resp.Body)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Expected a zip archive: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["manifest.json"] || !names["deck.html"] {
		t.Errorf("Unexpected archive contents: %v", names)
	}
}

func TestCreateDeckErrors(t *testing.T) {
	srv, _ := newTestServer(t, Options{MaxScriptBytes: 256})

	tests := []struct {
		name string
		body createDeckRequest
		want int
	}{
		{"empty script", createDeckRequest{Script: "  \n\n"}, http.StatusBadRequest},
		{"unknown format", createDeckRequest{Script: testScript, Format: "pptx"}, http.StatusBadRequest},
		{"unknown preset", createDeckRequest{Script: testScript, Preset: "72pt"}, http.StatusBadRequest},
		{"maximum below ideal", createDeckRequest{Script: testScript, Ideal: 12, Maximum: 4}, http.StatusBadRequest},
		{"too large", createDeckRequest{Script: strings.Repeat("word ", 100)}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/decks", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
			if msg := errorMessage(t, resp); msg == "" {
				t.Error("Expected an error message")
			}
		})
	}

	t.Run("invalid form number", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/api/v1/decks", url.Values{"script": {testScript}, "ideal": {"ten"}})
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/decks", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", resp.StatusCode)
		}
		if resp.Header.Get("Allow") != "GET, POST" {
			t.Errorf("Unexpected Allow header: %s", resp.Header.Get("Allow"))
		}
	})
}

func TestDeckLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, Options{Format: "html"})

	resp := postJSON(t, srv.URL+"/api/v1/decks", createDeckRequest{Script: testScript, Title: "Pagi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	deckID := resp.Header.Get("X-Deck-ID")

	t.Run("List", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Decks []types.DeckSummary `json:"decks"`
			Total int                 `json:"total"`
		}
		decodeJSON(t, resp, &body)
		if body.Total != 1 || body.Decks[0].ID != deckID || body.Decks[0].TotalSlides != 2 {
			t.Errorf("Unexpected listing: %+v", body)
		}
	})

	t.Run("Get", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks/" + deckID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		var got types.Deck
		decodeJSON(t, resp, &got)
		if got.ID != deckID || len(got.Formats) != 1 || got.Formats[0] != "html" {
			t.Errorf("Unexpected deck: %+v", got)
		}
	})

	t.Run("DownloadStored", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks/" + deckID + "/download")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.Header.Get("Content-Type") != "text/html; charset=utf-8" {
			t.Errorf("Expected stored html artifact, got %s", resp.Header.Get("Content-Type"))
		}
	})

	t.Run("DownloadReencoded", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks/" + deckID + "/download?format=ndjson")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if lines := strings.Split(strings.TrimSpace(string(body)), "\n"); len(lines) != 2 {
			t.Errorf("Expected one JSON line per slide, got %q", body)
		}

		resp, err = http.Get(srv.URL + "/api/v1/decks/" + deckID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		var got types.Deck
		decodeJSON(t, resp, &got)
		if len(got.Formats) != 2 || got.Formats[1] != "ndjson" {
			t.Errorf("Expected ndjson to be cached, got %v", got.Formats)
		}
	})

	t.Run("StreamSlides", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks/" + deckID + "/slides?after=1")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.Header.Get("Content-Type") != "application/x-ndjson" {
			t.Errorf("Unexpected content type: %s", resp.Header.Get("Content-Type"))
		}

		var item struct {
			Number int    `json:"number"`
			Text   string `json:"text"`
			Last   bool   `json:"last"`
		}
		decodeJSON(t, resp, &item)
		if item.Number != 2 || item.Text != "Baik / terima kasih //" || !item.Last {
			t.Errorf("Unexpected stream item: %+v", item)
		}

		bad, err := http.Get(srv.URL + "/api/v1/decks/" + deckID + "/slides?after=x")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		bad.Body.Close()
		if bad.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for invalid cursor, got %d", bad.StatusCode)
		}
	})

	t.Run("DownloadUnknownFormat", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/decks/" + deckID + "/download?format=pptx")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/decks/"+deckID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", resp.StatusCode)
		}

		resp, err = http.Get(srv.URL + "/api/v1/decks/" + deckID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
		}
	})
}

func TestDeckByIDErrors(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/decks/01UNKNOWN", http.StatusNotFound},
		{"/api/v1/decks/01UNKNOWN/download", http.StatusNotFound},
		{"/api/v1/decks/01UNKNOWN/slides", http.StatusNotFound},
		{"/api/v1/decks/bad.id", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestSegment(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/api/v1/segment", segmentRequest{Text: "HOST Halo pemirsa, apa kabar?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var got segmentResponse
	decodeJSON(t, resp, &got)
	if got.Speaker != "HOST" {
		t.Errorf("Expected speaker HOST, got %q", got.Speaker)
	}
	if len(got.Fragments) != 1 || got.Fragments[0] != "Halo pemirsa / apa kabar?" {
		t.Errorf("Unexpected fragments: %q", got.Fragments)
	}

	resp = postJSON(t, srv.URL+"/api/v1/segment", segmentRequest{Text: "x", Ideal: 5, Maximum: 2})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid thresholds, got %d", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/segment")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", getResp.StatusCode)
	}
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Morning Show", "Morning_Show.zip"},
		{"  ", "deck-01ABC.zip"},
		{"Berita/Pagi!", "BeritaPagi.zip"},
	}
	for _, tt := range tests {
		if got := attachmentName(tt.title, "01ABC", "zip"); got != tt.want {
			t.Errorf("attachmentName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
