package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dwe-corp/facial-auth/internal/authapi"
	"github.com/dwe-corp/facial-auth/internal/faces"
	"github.com/dwe-corp/facial-auth/internal/imaging"
	"github.com/dwe-corp/facial-auth/internal/registry"
)

type fakeLocator struct {
	boxes []image.Rectangle
}

func (f *fakeLocator) Detect(img image.Image) []image.Rectangle {
	return f.boxes
}

type fakeEmbedder struct {
	next []float64
	err  error
}

func (f *fakeEmbedder) ComputeEmbedding(ctx context.Context, imageData []byte) ([]float64, error) {
	return f.next, f.err
}

type fakeResolver struct {
	users []authapi.User
}

func (f *fakeResolver) ListUsers(ctx context.Context) ([]authapi.User, error) {
	return f.users, nil
}

func (f *fakeResolver) GetUser(ctx context.Context, id int) (*authapi.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, authapi.ErrNotFound
}

func (f *fakeResolver) FindUserByName(ctx context.Context, name string) (*authapi.User, error) {
	want := authapi.NormalizeName(name)
	for i := range f.users {
		if authapi.NormalizeName(f.users[i].Nome) == want {
			return &f.users[i], nil
		}
	}
	return nil, authapi.ErrNotFound
}

type testEnv struct {
	handler  *FaceHandler
	locator  *fakeLocator
	embedder *fakeEmbedder
	resolver *fakeResolver
}

// newTestEnv builds a FaceHandler backed by fakes and a temp-dir store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	store := registry.NewStore(filepath.Join(dir, "encodings.json"))
	reg, err := store.Load()
	if err != nil {
		t.Fatalf("loading empty store: %v", err)
	}

	locator := &fakeLocator{boxes: []image.Rectangle{image.Rect(5, 5, 30, 30)}}
	embedder := &fakeEmbedder{next: []float64{1, 2, 3}}
	resolver := &fakeResolver{users: []authapi.User{
		{ID: 1, Nome: "alice", Email: "alice@example.com", Perfil: "ADMIN"},
		{ID: 2, Nome: "bob", Email: "bob@example.com", Perfil: "USER"},
	}}

	svc := faces.NewService(reg, store, locator, embedder, resolver,
		filepath.Join(dir, "faces"), 0.6)

	return &testEnv{
		handler:  NewFaceHandler(svc),
		locator:  locator,
		embedder: embedder,
		resolver: resolver,
	}
}

// testImagePayload returns a base64-encoded JPEG usable as a request image.
func testImagePayload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), A: 255})
		}
	}
	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// jsonRequest creates a request with a JSON-encoded body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result.Success {
		t.Error("error responses must have success=false")
	}
	if result.Error != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result.Error)
	}
}
