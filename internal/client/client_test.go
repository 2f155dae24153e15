package client

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go/http3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/timecode/internal/api"
	"github.com/zsiec/timecode/internal/config"
	apperrors "github.com/zsiec/timecode/internal/errors"
	"github.com/zsiec/timecode/internal/logger"
	"github.com/zsiec/timecode/pkg/timecode"
	"github.com/zsiec/timecode/pkg/version"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	router := mux.NewRouter()
	api.NewHandlers(config.TimecodeConfig{MaxBatchSize: 10}, nil, nil,
		apperrors.NewErrorHandler(entry), logger.NewLogrusAdapter(entry)).RegisterRoutes(router)
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "timecode-client/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"timecode","version":"1.2.3"}`))
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientConversions(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/", WithTimeout(5*time.Second))
	defer c.Close()
	ctx := context.Background()

	off := false
	fs, err := c.FromSeconds(ctx, api.FromSecondsRequest{Seconds: 3600, FrameRate: 29.97, DropFrame: &off})
	require.NoError(t, err)
	assert.Equal(t, "01:00:00:00", fs.Timecode)
	require.Len(t, fs.Advisories, 1)
	assert.Equal(t, timecode.AdvisoryNonDropDrift, fs.Advisories[0].Code)

	ts, err := c.ToSeconds(ctx, api.ToSecondsRequest{Timecode: api.Input{Text: "00:10:00;00"}, FrameRate: 29.97})
	require.NoError(t, err)
	assert.Equal(t, 600.0, ts.Seconds)
	assert.Equal(t, timecode.FormatDropFrame, ts.Format)

	short, err := c.Short(ctx, api.ShortRequest{Input: api.Input{Seconds: 30, Numeric: true}, FrameRate: 29.97})
	require.NoError(t, err)
	assert.Equal(t, "00:00:29", short.Timecode)

	v, err := c.Validate(ctx, api.ValidateRequest{Timecode: "00:01:00;00", FrameRate: 29.97})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Len(t, v.Errors, 1)

	rg, err := c.Ranges(ctx, api.RangesRequest{Ranges: []timecode.Range{{0, 30}}, FrameRate: 25})
	require.NoError(t, err)
	assert.Equal(t, []api.RangeResult{{Start: "00:00:00:00", End: "00:00:30:00", Duration: 30}}, rg.Ranges)

	rates, err := c.Rates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, rates.Rates)

	info, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, version.Info{Name: "timecode", Version: "1.2.3"}, *info)
}

func TestClientAPIError(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)

	resp, err := c.ToSeconds(context.Background(), api.ToSecondsRequest{Timecode: api.Input{Text: "00:00:01:00"}})
	assert.Nil(t, resp)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, apperrors.CodeFrameRateRequired, apiErr.Code)
	assert.Equal(t, apperrors.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Error(), "FRAME_RATE_REQUIRED")
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Rates(context.Background())
	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway (HTTP 502)", apiErr.Error())
}

func TestClientConnectionError(t *testing.T) {
	_, err := New("http://127.0.0.1:1", WithTimeout(time.Second)).Rates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestNewOptions(t *testing.T) {
	c := New("https://localhost:8443", WithHTTP3(), WithInsecure())
	assert.IsType(t, &http3.RoundTripper{}, c.http.Transport)
	assert.NoError(t, c.Close())

	custom := &http.Client{}
	assert.Same(t, custom, New("http://x", WithHTTPClient(custom)).http)
}
