package hlots

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/dbeal/hlots/date"
)

// contains http utils to deal with the remote quote provider

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// get from disk
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	return os.WriteFile(file, content, 0644)
}

// jwget performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// quoteClient caches provider responses on disk for a day: quotes move, but
// a lots report does not need more than daily granularity.
var quoteClient = &http.Client{Transport: &diskCache{base: http.DefaultTransport}}

// FetchQuote returns the latest market quote of a ticker from the Yahoo
// chart endpoint.
func FetchQuote(ticker string) (*Quote, error) {
	addr := "https://query1.finance.yahoo.com/v8/finance/chart/" + url.PathEscape(ticker) + "?interval=1d&range=1d"

	var jobj any
	if err := jwget(quoteClient, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error retrieving quote for %q: %w", ticker, err)
	}
	return parseQuote(ticker, jobj)
}

// parseQuote extracts the market price, currency and quote time from the
// chart payload.
func parseQuote(ticker string, jobj any) (*Quote, error) {
	price, err := jsonGetFloat("$.chart.result[0].meta.regularMarketPrice", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing quote for %q: %w", ticker, err)
	}
	when, err := jsonGetFloat("$.chart.result[0].meta.regularMarketTime", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing quote time for %q: %w", ticker, err)
	}
	jcur, err := jsonpath.Get("$.chart.result[0].meta.currency", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing quote currency for %q: %w", ticker, err)
	}
	cur, ok := jcur.(string)
	if !ok {
		return nil, fmt.Errorf("error parsing quote currency for %q: not a string: %v", ticker, jcur)
	}

	on := time.Unix(int64(when), 0).UTC()
	return &Quote{
		Date:  date.New(on.Date()),
		Price: M(price, cur),
	}, nil
}

// jsonGetFloat evaluates a jsonpath expected to yield a single number.
func jsonGetFloat(path string, jobj any) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), err
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("%q is not a number: %v", path, jval)
	}
	return val, nil
}
