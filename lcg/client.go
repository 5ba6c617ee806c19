// Package lcg queries the Local Calling Guide XML service for exchange,
// LATA and local calling area data.
package lcg

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"mmlcd"
	"mmlcd/fetch"
)

// const
const (
	DefaultBaseURL = "https://localcallingguide.com"
	_timeout       = 30 * time.Second
)

// PrefixData describes the exchange serving one NPA-NXX.
type PrefixData struct {
	NPA  string `xml:"npa"`
	NXX  string `xml:"nxx"`
	Exch string `xml:"exch"`
	RC   string `xml:"rc"`
	LATA string `xml:"lata"`
	LIR  string `xml:"lir"`
}

// RateCenter is one exchange of a region. SeeExch is set when the exchange
// is an alias of another one.
type RateCenter struct {
	Exch    string `xml:"exch"`
	Name    string `xml:"rc"`
	SeeExch string `xml:"see-exch"`
}

// Alias reports whether the rate center only points at another exchange.
func (r RateCenter) Alias() bool {
	s := strings.TrimSpace(r.SeeExch)
	return s != "" && s != "None"
}

type prefixRoot struct {
	Data []PrefixData `xml:"prefixdata"`
}

type rcRoot struct {
	Data []RateCenter `xml:"rcdata"`
}

type prefix struct {
	NPA string `xml:"npa"`
	NXX string `xml:"nxx"`
}

type lcaRoot struct {
	Data struct {
		Prefix []prefix `xml:"prefix"`
	} `xml:"lca-data"`
}

// Client ...
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
}

// NewClient returns a client for baseURL that connects through tr, with the
// keypins tr holds for the service host.
func NewClient(baseURL string, tr fetch.Transport) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var host string
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Hostname()
	}
	hc := tr.Client(host)
	hc.Timeout = _timeout
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      hc,
		UserAgent: tr.UserAgent(),
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	u := c.BaseURL + "/" + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("lcg: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("lcg: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode > 299 {
		return fmt.Errorf("lcg: %s: %s", path, resp.Status)
	}
	dec := xml.NewDecoder(resp.Body)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("lcg: %s: decode: %w", path, err)
	}
	return nil
}

// ErrNotFound ...
var ErrNotFound = errors.New("lcg: no data")

// Prefix looks up the exchange of npa-nxx.
func (c *Client) Prefix(ctx context.Context, npa, nxx int) (PrefixData, error) {
	var root prefixRoot
	q := url.Values{"npa": {pad3(npa)}, "nxx": {pad3(nxx)}}
	if err := c.get(ctx, "xmlprefix.php", q, &root); err != nil {
		return PrefixData{}, err
	}
	if len(root.Data) == 0 {
		return PrefixData{}, fmt.Errorf("%w for %s-%s", ErrNotFound, pad3(npa), pad3(nxx))
	}
	return root.Data[0], nil
}

// RateCenters lists the exchanges of a region.
func (c *Client) RateCenters(ctx context.Context, r Region) ([]RateCenter, error) {
	var root rcRoot
	if err := c.get(ctx, "xmlrc.php", url.Values{r.Kind: {r.ID}}, &root); err != nil {
		return nil, err
	}
	return root.Data, nil
}

// LocalPrefixes lists the NPA-NXX in the local calling area of exch.
func (c *Client) LocalPrefixes(ctx context.Context, exch string) ([]mmlcd.Key, error) {
	var root lcaRoot
	if err := c.get(ctx, "xmllocalexch.php", url.Values{"exch": {exch}}, &root); err != nil {
		return nil, err
	}
	keys := make([]mmlcd.Key, 0, len(root.Data.Prefix))
	for _, p := range root.Data.Prefix {
		npa, err1 := strconv.Atoi(strings.TrimSpace(p.NPA))
		nxx, err2 := strconv.Atoi(strings.TrimSpace(p.NXX))
		if err1 != nil || err2 != nil {
			return keys, fmt.Errorf("lcg: exchange %s: bad prefix %q-%q", exch, p.NPA, p.NXX)
		}
		keys = append(keys, mmlcd.Key{NPA: npa, NXX: nxx})
	}
	return keys, nil
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
