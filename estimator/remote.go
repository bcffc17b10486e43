package estimator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
)

const defaultRequestTimeout = 120 * time.Second

// The wire format of the monocular depth service. The request carries a
// base64-encoded png; the response carries a base64-encoded little-endian
// float32 tensor together with its dimensions.
type depthRequest struct {
	Image string `json:"image"`
}

type depthResponse struct {
	Depth  string `json:"depth"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RemoteSource talks to an external monocular depth-estimation service
// over HTTP. Responses are cached by image content when a cache is
// attached, so a cache miss is transparently served by re-requesting.
type RemoteSource struct {
	endpoint string
	client   *http.Client
	cache    Cache
	logger   log.Logger
}

// Create a depth source backed by the service at the given endpoint. The
// cache may be nil to disable response caching.
func NewRemoteSource(endpoint string, cache Cache) *RemoteSource {
	return &RemoteSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultRequestTimeout},
		cache:    cache,
		logger:   log.New("depth service"),
	}
}

// Estimate a depth field by querying the remote service. Download
// progress is derived from the response content length; no progress is
// fabricated when the service does not announce one.
func (s *RemoteSource) EstimateDepth(ctx context.Context, img *raster.Image, progress ProgressFn) (*raster.ScalarField, error) {
	cacheKey := imageDigest(img)
	if s.cache != nil {
		if data, hit := s.cache.Get(cacheKey); hit {
			s.logger.Debugf("depth response cache hit for %s", cacheKey[:12])
			return decodeDepthResponse(data)
		}
	}

	payload, err := encodeDepthRequest(img)
	if err != nil {
		return nil, &EstimationError{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &EstimationError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &EstimationError{Op: "query depth service", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, estimationErrorf("query depth service", "unexpected status %d", res.StatusCode)
	}

	body, err := readAllWithProgress(res.Body, res.ContentLength, progress)
	if err != nil {
		return nil, &EstimationError{Op: "read response", Err: err}
	}

	field, err := decodeDepthResponse(body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err = s.cache.Set(cacheKey, body); err != nil {
			s.logger.Warningf("could not cache depth response: %v", err)
		}
	}

	return field, nil
}

func encodeDepthRequest(img *raster.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img.RGBA()); err != nil {
		return nil, err
	}
	return json.Marshal(depthRequest{
		Image: base64.StdEncoding.EncodeToString(pngBuf.Bytes()),
	})
}

func decodeDepthResponse(body []byte) (*raster.ScalarField, error) {
	var res depthResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &EstimationError{Op: "decode response", Err: err}
	}

	if res.Width <= 0 || res.Height <= 0 {
		return nil, estimationErrorf("decode response", "malformed tensor dimensions %dx%d", res.Width, res.Height)
	}

	raw, err := base64.StdEncoding.DecodeString(res.Depth)
	if err != nil {
		return nil, &EstimationError{Op: "decode tensor", Err: err}
	}

	expected := res.Width * res.Height * 4
	if len(raw) != expected {
		return nil, estimationErrorf("decode tensor", "expected %d tensor bytes for %dx%d; got %d", expected, res.Width, res.Height, len(raw))
	}

	field := raster.NewScalarField(res.Width, res.Height)
	for i := range field.Data {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		v := math.Float32frombits(bits)
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, estimationErrorf("decode tensor", "non-finite depth sample at index %d", i)
		}
		field.Data[i] = v
	}

	return field, nil
}

// Read the full body, reporting {loaded, total} derived percentages when
// the total is known. Unknown content lengths report nothing.
func readAllWithProgress(r io.Reader, total int64, progress ProgressFn) ([]byte, error) {
	if progress == nil || total <= 0 {
		return io.ReadAll(r)
	}

	var buf bytes.Buffer
	chunk := make([]byte, 64*1024)
	var loaded int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			loaded += int64(n)
			progress(int(loaded * 100 / total))
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func imageDigest(img *raster.Image) string {
	h := sha256.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(img.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(img.Height))
	h.Write(dims[:])
	h.Write(img.Pix)
	return fmt.Sprintf("%x", h.Sum(nil))
}
