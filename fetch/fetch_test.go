package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const payload = "State\tNPA-NXX\tRateCenter\tUse\nCA\t408-535\tSNJS NORTH\tAS\n"

func zipped(t *testing.T, name, content string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

func testSource(dir, url string) Source {
	return Source{
		Country:   "US",
		File:      filepath.Join(dir, "allutlzd.zip"),
		Cache:     filepath.Join(dir, "allutlzd.txt.zst"),
		Url:       url,
		UserAgent: "test",
	}
}

func TestGetFetchesAndCaches(t *testing.T) {
	archive := zipped(t, "allutlzd.txt", payload)
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test", r.UserAgent())
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := testSource(dir, srv.URL+"/nanp1/allutlzd.zip")
	opt := Options{Fetch: true, Log: zaptest.NewLogger(t)}

	name, err := Get(context.Background(), src, opt)
	require.NoError(t, err)
	assert.Equal(t, src.Cache, name)
	assert.EqualValues(t, 1, gets.Load())

	z, err := os.ReadFile(name)
	require.NoError(t, err)
	data, err := Decompress("ZSTD", z)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	// second run is served from the cache
	name, err = Get(context.Background(), src, opt)
	require.NoError(t, err)
	assert.Equal(t, src.Cache, name)
	assert.EqualValues(t, 1, gets.Load())
}

func TestGetRefreshesStaleCache(t *testing.T) {
	archive := zipped(t, "allutlzd.txt", payload)
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := testSource(dir, srv.URL)
	require.NoError(t, os.WriteFile(src.Cache, []byte("old"), 0o644))
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(src.Cache, old, old))

	_, err := Get(context.Background(), src, Options{Fetch: true, MaxAgeDays: 14})
	require.NoError(t, err)
	assert.EqualValues(t, 1, gets.Load())
}

func TestGetConvertsLocalArchive(t *testing.T) {
	dir := t.TempDir()
	src := testSource(dir, "http://127.0.0.1:1/unused")
	require.NoError(t, os.WriteFile(src.File, zipped(t, "COCodeStatus_ALL.csv", "NPA\n"), 0o644))

	name, err := Get(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Equal(t, src.Cache, name)
}

func TestGetNotAvailable(t *testing.T) {
	src := testSource(t.TempDir(), "http://127.0.0.1:1/unused")
	_, err := Get(context.Background(), src, Options{})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestGetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	src := testSource(t.TempDir(), srv.URL)
	_, err := Get(context.Background(), src, Options{Fetch: true})
	assert.ErrorContains(t, err, "FETCH HEAD FAIL")
}

func TestGetSizeWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()
	src := testSource(t.TempDir(), srv.URL)
	src.SizeMB = 1
	_, err := Get(context.Background(), src, Options{Fetch: true})
	assert.ErrorContains(t, err, "EXPECTED DOWNLOAD SIZE")
}

func TestGetRebuildsCorruptCache(t *testing.T) {
	dir := t.TempDir()
	src := testSource(dir, "http://127.0.0.1:1/unused")
	require.NoError(t, os.WriteFile(src.File, zipped(t, "allutlzd.txt", payload), 0o644))
	z, err := Compress("ZSTD", 3, []byte(payload))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src.Cache, z[:len(z)/2], 0o644))

	name, err := Get(context.Background(), src, Options{MaxAgeDays: 14, Log: zaptest.NewLogger(t)})
	require.NoError(t, err)
	z, err = os.ReadFile(name)
	require.NoError(t, err)
	data, err := Decompress("ZSTD", z)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestGetCorruptCacheWithoutArchive(t *testing.T) {
	src := testSource(t.TempDir(), "http://127.0.0.1:1/unused")
	require.NoError(t, os.WriteFile(src.Cache, []byte("garbage"), 0o644))
	_, err := Get(context.Background(), src, Options{})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestSources(t *testing.T) {
	us := Sources("/var/cache/mmlcd", "US", Transport{})
	require.Len(t, us, 1)
	assert.Equal(t, "https://nationalnanpa.com/nanp1/allutlzd.zip", us[0].Url)
	assert.Equal(t, "/var/cache/mmlcd/allutlzd.txt.zst", us[0].Cache)
	assert.Empty(t, us[0].TLSKeyPin)
	assert.Empty(t, us[0].Proxy)

	tr := Transport{
		Proxy:   "http://proxy.local:3128",
		KeyPins: map[string][]string{"www.cnac.ca": {"pin"}},
		Agent:   "mmlcd-test",
	}
	ca := Sources("", "CA", tr)
	require.Len(t, ca, 1)
	assert.Equal(t, "COCodeStatus_ALL.csv.zst", ca[0].Cache)
	assert.Equal(t, []string{"pin"}, ca[0].TLSKeyPin)
	assert.Equal(t, "http://proxy.local:3128", ca[0].Proxy)
	assert.Equal(t, "mmlcd-test", ca[0].UserAgent)

	assert.Empty(t, Sources("", "MX", tr))
}

func TestTransportUserAgent(t *testing.T) {
	t.Setenv(_ENV_USERAGENT, "")
	assert.Equal(t, _DEFAULT_USERAGENT, Transport{}.UserAgent())
	t.Setenv(_ENV_USERAGENT, "env-agent")
	assert.Equal(t, "env-agent", Transport{}.UserAgent())
	assert.Equal(t, "set", Transport{Agent: "set"}.UserAgent())
}

func TestTransportProxy(t *testing.T) {
	c := Transport{Proxy: "http://proxy.local:3128"}.Client("example.com")
	req, err := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, err)
	u, err := c.Transport.(*http.Transport).Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)
}

func TestTransportKeyPin(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()
	roots := x509.NewCertPool()
	roots.AddCert(srv.Certificate())
	host := "127.0.0.1"

	client := func(pins ...string) *http.Client {
		c := Transport{KeyPins: map[string][]string{host: pins}}.Client(host)
		c.Transport.(*http.Transport).TLSClientConfig.RootCAs = roots
		return c
	}

	resp, err := client(KeyPin(srv.Certificate())).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	_, err = client("bogus").Get(srv.URL)
	assert.ErrorIs(t, err, ErrKeyPin)
}

func TestIsOlderThan(t *testing.T) {
	name := filepath.Join(t.TempDir(), "lata-722.csv")
	assert.True(t, IsOlderThan(name, 14))
	require.NoError(t, os.WriteFile(name, nil, 0o644))
	assert.False(t, IsOlderThan(name, 14))
	old := time.Now().Add(-15 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(name, old, old))
	assert.True(t, IsOlderThan(name, 14))
}

func TestCompressRoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte(payload), 50)
	z, err := Compress("ZSTD", 22, in)
	require.NoError(t, err)
	assert.Less(t, len(z), len(in))
	out, err := Decompress("ZSTD", z)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = Compress("GZIP", 1, in)
	assert.Error(t, err)
	_, err = Decompress("GZIP", z)
	assert.Error(t, err)
	_, err = Decompress("ZSTD", z[:len(z)/2])
	assert.Error(t, err)
}

func TestKeyPin(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()
	cert := srv.Certificate()
	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}

	conf := getTlsConf([]string{"bogus", KeyPin(cert)})
	assert.NoError(t, conf.VerifyConnection(state))

	conf = getTlsConf([]string{"bogus"})
	assert.ErrorIs(t, conf.VerifyConnection(state), ErrKeyPin)

	assert.Nil(t, getTlsConf(nil).VerifyConnection)
}
