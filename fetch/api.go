// package fetch validates, converts and fetches missing numbering plan source files
package fetch

// import
import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"
)

// ErrNotAvailable ...
var ErrNotAvailable = errors.New("fetch: source file not available")

// Node ...
type Node struct {
	Country string // numbering administration country
	Domain  string // domain name
}

// Transport holds the outbound connection settings shared by all sources and
// the calling guide client.
type Transport struct {
	Proxy   string              // proxy url, empty = environment
	KeyPins map[string][]string // tls sha2 keypins per domain, empty = system trust only
	Agent   string              // user agent, empty = MMLCD_USERAGENT or default
}

// UserAgent ...
func (t Transport) UserAgent() string {
	if t.Agent != "" {
		return t.Agent
	}
	if env, ok := getEnv(_ENV_USERAGENT); ok {
		return env
	}
	return _DEFAULT_USERAGENT
}

// Client returns an http client for domain, pinned when keypins for domain
// are configured.
func (t Transport) Client(domain string) *http.Client {
	return getClient(getTransport(getTlsConf(t.KeyPins[domain]), t.Proxy))
}

// Source ...
type Source struct {
	Country   string   // US or CA
	File      string   // downloaded archive, local [cache] location
	Cache     string   // zstd re-compressed data file, preferred for reading
	SizeMB    float32  // archive size rough estimate in MegaByte(s), 0 = unchecked
	Domain    string   // source domain name
	TLSKeyPin []string // tls cert sha2 keypin, empty = system trust only
	Url       string   // source url
	Proxy     string   // fetch proxy url, empty = environment
	UserAgent string   // fetch user agent
}

// Options ...
type Options struct {
	Fetch      bool        // download missing or stale sources
	MaxAgeDays int         // refresh local files older than this, 0 = never
	Log        *zap.Logger // nil logs nothing
}

// Get returns a readable data file for src: the zstd cache if present and
// fresh, otherwise the archive converted to the cache, otherwise a fresh
// download.
func Get(ctx context.Context, src Source, opt Options) (string, error) {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("source", src.Url))

	fresh := func(name string) bool {
		return isReadable(name) && (opt.MaxAgeDays <= 0 || !IsOlderThan(name, opt.MaxAgeDays))
	}

	// cache hit
	if fresh(src.Cache) {
		err := verifyCache(src.Cache)
		if err == nil {
			log.Debug("source cache", zap.String("file", src.Cache))
			return src.Cache, nil
		}
		log.Warn("source cache is corrupt, rebuilding", zap.String("file", src.Cache), zap.Error(err))
	}

	// try fetch src.Url if src.File is missing or stale
	if !fresh(src.File) {
		if !opt.Fetch {
			if verifyCache(src.Cache) == nil {
				log.Warn("source cache is stale, fetch disabled", zap.String("file", src.Cache))
				return src.Cache, nil
			}
			if isReadable(src.File) {
				log.Warn("source archive is stale, fetch disabled", zap.String("file", src.File))
			} else {
				return "", errors.Join(ErrNotAvailable, errors.New("["+src.File+"] [download "+src.Url+"]"))
			}
		} else if err := fetchSRC(ctx, src, log); err != nil {
			return "", err
		}
	}

	// convert zip to zstd for faster processing
	log.Info("convert source archive", zap.String("from", src.File), zap.String("to", src.Cache))
	data, err := unzipFirst(src.File)
	if err != nil {
		return "", err
	}
	z, err := Compress("ZSTD", 19, data)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(src.Cache, z, 0o660); err != nil {
		return "", errors.New("fetch: unable to write file [" + err.Error() + "]")
	}
	runtime.GC()
	return src.Cache, nil
}
