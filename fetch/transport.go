// package fetch ...
package fetch

// import
import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrKeyPin ...
var ErrKeyPin = errors.New("fetch: tls keypin verification failed")

// getTlsConf ...
func getTlsConf(keyPins []string) *tls.Config {
	tlsConfig := &tls.Config{
		InsecureSkipVerify:     false,
		SessionTicketsDisabled: true,
		Renegotiation:          0,
		MinVersion:             tls.VersionTLS12,
	}
	if len(keyPins) > 0 {
		tlsConfig.VerifyConnection = func(state tls.ConnectionState) error {
			for _, pin := range keyPins {
				if pinVerifyState(pin, &state) {
					return nil
				}
			}
			return ErrKeyPin
		}
	}
	return tlsConfig
}

// pinVerifyState ...
func pinVerifyState(keyPin string, state *tls.ConnectionState) bool {
	if len(state.PeerCertificates) > 0 {
		if keyPin == KeyPin(state.PeerCertificates[0]) {
			return true
		}
	}
	return false
}

// KeyPin is the base64 sha256 of the certificate's public key info.
func KeyPin(cert *x509.Certificate) string {
	h := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return base64.StdEncoding.EncodeToString(h[:])
}

// getTransport ...
func getTransport(tlsconf *tls.Config, proxy string) *http.Transport {
	t := &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		TLSClientConfig:    tlsconf,
		DisableCompression: true, // pre-compressed file downloads
		ForceAttemptHTTP2:  false,
	}
	if proxy != "" {
		if u, err := url.Parse(proxy); err == nil {
			t.Proxy = http.ProxyURL(u)
		}
	}
	return t
}

// getClient ...
func getClient(transport *http.Transport) *http.Client {
	return &http.Client{
		CheckRedirect: nil,
		Jar:           nil,
		Transport:     transport,
	}
}

// getRequest ...
func getRequest(ctx context.Context, method, targetURL, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return nil, errors.New("fetch: [" + targetURL + "] -> invalid src url syntax [" + err.Error() + "]")
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// fetchSRC downloads src.Url into src.File.
func fetchSRC(ctx context.Context, src Source, log *zap.Logger) error {
	// setup transport layer
	client := getClient(getTransport(getTlsConf(src.TLSKeyPin), src.Proxy))

	// report
	log.Info("fetch source", zap.String("file", src.File))

	// fetch head
	client.Timeout = 10 * time.Second
	request, err := getRequest(ctx, http.MethodHead, src.Url, src.UserAgent)
	if err != nil {
		return err
	}
	head, err := client.Do(request)
	if err != nil {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [FETCH HEAD FAIL] [" + err.Error() + "]")
	}
	head.Body.Close()
	if head.StatusCode > 299 {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [FETCH HEAD FAIL] [" + head.Status + "]")
	}

	// setup limits
	size := src.SizeMB * 1024 * 1024
	maxsize := int64(size * 4)
	minsize := int64(size * 0.25)
	if size == 0 {
		maxsize = 1 << 30
	}

	// fetch, write file
	client.Timeout = 120 * time.Second
	request, err = getRequest(ctx, http.MethodGet, src.Url, src.UserAgent)
	if err != nil {
		return err
	}
	body, err := client.Do(request)
	if err != nil {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [FETCH BODY FAIL] [" + err.Error() + "]")
	}
	defer body.Body.Close()
	if body.StatusCode > 299 {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [FETCH BODY FAIL] [" + body.Status + "]")
	}
	data, err := io.ReadAll(io.LimitReader(body.Body, maxsize+1))
	if err != nil {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [FETCH BODY FAIL] [" + err.Error() + "]")
	}
	l := int64(len(data))
	if l > maxsize || l < minsize {
		return errors.New("fetch: unable to fetch [" + src.Url + "] [EXPECTED DOWNLOAD SIZE DO NOT MATCH] [" + strconv.FormatInt(l, 10) + " bytes]")
	}
	if err := os.WriteFile(src.File, data, 0o660); err != nil {
		return errors.New("fetch: unable to write file [" + err.Error() + "]")
	}
	log.Info("source fetched", zap.String("file", src.File), zap.Int64("bytes", l))
	return nil
}
