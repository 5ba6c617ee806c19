// package fetch validates, converts and fetches missing numbering plan source files
package fetch

// import
import (
	"path/filepath"
)

// const
const (

	//
	_DEFAULT_USERAGENT = "curl" // user agent used for fetch

	//
	_ENV_USERAGENT = "MMLCD_USERAGENT"
)

// getNodes ...
func getNodes() (nodes []Node) {
	nodes = append(nodes,
		Node{Country: "US", Domain: "nationalnanpa.com"},
		Node{Country: "CA", Domain: "www.cnac.ca"},
	)
	return nodes
}

// Sources returns the numbering plan source descriptors for country (US or
// CA), cached under store and fetched through tr.
func Sources(store, country string, tr Transport) (srcdb []Source) {
	if store == "" {
		store = "."
	}
	userAgent := tr.UserAgent()
	for _, n := range getNodes() {
		if n.Country != country {
			continue
		}
		switch n.Country {
		case "US":
			srcdb = append(srcdb, Source{
				Country:   n.Country,
				File:      filepath.Join(store, "allutlzd.zip"),
				Cache:     filepath.Join(store, "allutlzd.txt.zst"),
				SizeMB:    5.0, // rough estimate
				Domain:    n.Domain,
				Url:       "https://" + n.Domain + "/nanp1/allutlzd.zip",
				TLSKeyPin: tr.KeyPins[n.Domain],
				UserAgent: userAgent,
				Proxy:     tr.Proxy,
			})
		case "CA":
			srcdb = append(srcdb, Source{
				Country:   n.Country,
				File:      filepath.Join(store, "COCodeStatus_ALL.zip"),
				Cache:     filepath.Join(store, "COCodeStatus_ALL.csv.zst"),
				SizeMB:    1.5, // rough estimate
				Domain:    n.Domain,
				Url:       "http://" + n.Domain + "/data/COCodeStatus_ALL.zip",
				TLSKeyPin: tr.KeyPins[n.Domain],
				UserAgent: userAgent,
				Proxy:     tr.Proxy,
			})
		}
	}
	return srcdb
}
