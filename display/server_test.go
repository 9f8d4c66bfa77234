package display

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/capture"
	"github.com/nvr-ai/go-snapshot/controller"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 30, G: 60, B: 90, A: 255}}, image.Point{}, draw.Src)
	return img
}

func newTestServer(t *testing.T, cfg ServerConfig) (*httptest.Server, *Server, *controller.Controller) {
	t.Helper()

	src := capture.NewImageSource("test", testFrame())
	det := inference.NewStatic(annotate.Detection{
		Label: "cat", Score: 0.92, Box: annotate.Box{X1: 50, Y1: 60, X2: 150, Y2: 160},
	})
	srv := NewServer(cfg, src, nil)
	ctrl := controller.New(src, det, srv)

	ts := httptest.NewServer(srv.Router(ctrl))
	t.Cleanup(ts.Close)
	return ts, srv, ctrl
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeState(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeBody(resp *http.Response) (image.Image, images.ImageFormat, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return images.Decode(data)
}

func TestServer_Health(t *testing.T) {
	ts, _, _ := newTestServer(t, ServerConfig{})

	resp := do(t, http.MethodGet, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeState(t, resp)["status"])
}

func TestServer_CaptureFlow(t *testing.T) {
	ts, srv, ctrl := newTestServer(t, ServerConfig{})

	resp := do(t, http.MethodGet, ts.URL+"/state")
	assert.Equal(t, "previewing", decodeState(t, resp)["state"])

	resp = do(t, http.MethodPost, ts.URL+"/capture")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeState(t, resp)
	assert.NotEmpty(t, body["id"])
	assert.EqualValues(t, 1, body["drawn"])
	assert.Equal(t, controller.Showing, ctrl.State())
	assert.NotNil(t, srv.Shown())

	resp = do(t, http.MethodPost, ts.URL+"/capture")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/state")
	body = decodeState(t, resp)
	assert.Equal(t, "showing", body["state"])
	assert.NotNil(t, body["last"])

	resp = do(t, http.MethodPost, ts.URL+"/reset")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "previewing", decodeState(t, resp)["state"])
	assert.Nil(t, srv.Shown())
}

func TestServer_Toggle(t *testing.T) {
	ts, _, _ := newTestServer(t, ServerConfig{})

	for _, want := range []string{"showing", "previewing", "showing"} {
		resp := do(t, http.MethodPost, ts.URL+"/toggle")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, decodeState(t, resp)["state"])
	}
}

func TestServer_Snapshot(t *testing.T) {
	ts, _, ctrl := newTestServer(t, ServerConfig{Format: images.FormatPNG})

	resp := do(t, http.MethodGet, ts.URL+"/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "preview", resp.Header.Get("X-Snapshot-Source"))

	_, err := ctrl.Capture(t.Context())
	require.NoError(t, err)

	resp = do(t, http.MethodGet, ts.URL+"/snapshot?format=webp")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))
	assert.Equal(t, "capture", resp.Header.Get("X-Snapshot-Source"))

	resp = do(t, http.MethodGet, ts.URL+"/snapshot?format=gif")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SnapshotIsAnnotatedCapture(t *testing.T) {
	ts, _, ctrl := newTestServer(t, ServerConfig{Format: images.FormatPNG})

	c, err := ctrl.Capture(t.Context())
	require.NoError(t, err)

	resp := do(t, http.MethodGet, ts.URL+"/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, format, err := decodeBody(resp)
	require.NoError(t, err)
	assert.Equal(t, images.FormatPNG, format)

	assert.Equal(t, images.Checksum(c.Annotated), images.Checksum(img))
}

func TestServer_SnapshotThumbnail(t *testing.T) {
	ts, _, _ := newTestServer(t, ServerConfig{Format: images.FormatPNG, MaxWidth: 100})

	resp := do(t, http.MethodGet, ts.URL+"/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, _, err := decodeBody(resp)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
}

func TestServer_SnapshotWithoutPreview(t *testing.T) {
	srv := NewServer(ServerConfig{}, nil, nil)
	ctrl := controller.New(capture.NewImageSource("test", testFrame()), inference.NewStatic(), srv)
	ts := httptest.NewServer(srv.Router(ctrl))
	defer ts.Close()

	resp := do(t, http.MethodGet, ts.URL+"/snapshot")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Stats(t *testing.T) {
	ts, _, ctrl := newTestServer(t, ServerConfig{})
	_, err := ctrl.Capture(t.Context())
	require.NoError(t, err)

	resp := do(t, http.MethodGet, ts.URL+"/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		Operations []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"operations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Len(t, stats.Operations, 3)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts, _, _ := newTestServer(t, ServerConfig{})

	resp := do(t, http.MethodGet, ts.URL+"/capture")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_ShowNil(t *testing.T) {
	assert.Error(t, NewServer(ServerConfig{}, nil, nil).Show(nil))
}
