package estimator

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/achilleasa/go-relight/raster"
)

func tensorBody(t *testing.T, width, height int, values []float32) []byte {
	t.Helper()
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	body, err := json.Marshal(depthResponse{
		Depth:  base64.StdEncoding.EncodeToString(raw),
		Width:  width,
		Height: height,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func testImage(w, h int) *raster.Image {
	img, _ := raster.FromBuffer(make([]uint8, w*h*4), w, h)
	return img
}

func TestRemoteSourceDecodesTensor(t *testing.T) {
	body := tensorBody(t, 2, 2, []float32{0.1, 0.2, 0.3, 0.4})
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(body)
	}))
	defer srv.Close()

	source := NewRemoteSource(srv.URL, NewMemoryCache())
	field, err := source.EstimateDepth(context.Background(), testImage(2, 2), nil)
	if err != nil {
		t.Fatalf("EstimateDepth failed: %v", err)
	}
	if field.Width != 2 || field.Height != 2 {
		t.Fatalf("expected 2x2 field; got %dx%d", field.Width, field.Height)
	}
	if field.At(1, 1) != 0.4 {
		t.Fatalf("expected sample 0.4; got %f", field.At(1, 1))
	}

	// Same image again: served from the cache, not the service.
	if _, err = source.EstimateDepth(context.Background(), testImage(2, 2), nil); err != nil {
		t.Fatalf("cached EstimateDepth failed: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected 1 service request; got %d", requests)
	}
}

func TestRemoteSourceRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	source := NewRemoteSource(srv.URL, nil)
	_, err := source.EstimateDepth(context.Background(), testImage(2, 2), nil)

	var estErr *EstimationError
	if !errors.As(err, &estErr) {
		t.Fatalf("expected EstimationError; got %v", err)
	}
}

func TestDecodeDepthResponseErrors(t *testing.T) {
	nan := []float32{0.1, float32(math.NaN()), 0.3, 0.4}

	testCases := []struct {
		descr string
		body  []byte
	}{
		{"not json", []byte("nope")},
		{"zero dims", tensorBody(t, 0, 0, nil)},
		{"negative dims", tensorBody(t, -2, 2, nil)},
		{"short tensor", tensorBody(t, 4, 4, []float32{1, 2})},
		{"non-finite sample", tensorBody(t, 2, 2, nan)},
	}

	for _, tc := range testCases {
		if _, err := decodeDepthResponse(tc.body); err == nil {
			t.Fatalf("[%s] expected decode error", tc.descr)
		}
	}
}
