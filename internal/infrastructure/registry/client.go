package registry

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/allerscan/backend/internal/domain"
)

// Client handles communication with the public data portal registries.
// Both providers share the same GET envelope: serviceKey, pageNo,
// numOfRows and bar_cd query parameters around an XML body.
type Client struct {
	httpClient  *http.Client
	serviceKey  string
	rateLimiter *rate.Limiter
}

// NewClient creates a registry client. The portal allows roughly 1000
// requests per hour per key, so requests are paced well under that.
func NewClient(serviceKey string) *Client {
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		serviceKey:  serviceKey,
		rateLimiter: limiter,
	}
}

// GetDocument fetches and parses one registry response. Transport
// failures retry up to 3 times with a linear backoff; a body that does
// not parse as XML is an error (the caller treats it as "no data").
func (c *Client) GetDocument(ctx context.Context, endpoint string, numOfRows int, barcode string) (*Document, error) {
	params := url.Values{}
	params.Add("serviceKey", c.serviceKey)
	params.Add("pageNo", "1")
	params.Add("numOfRows", strconv.Itoa(numOfRows))
	params.Add("bar_cd", barcode)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[Registry] request error (attempt %d): %v", attempt, err)
			lastErr = err
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[Registry] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRegistryFailure, resp.StatusCode)
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		doc, err := ParseDocument(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRegistryFailure, err)
		}
		return doc, nil
	}

	return nil, lastErr
}

// backoff waits out the linear retry delay, bailing early when the
// caller's context is cancelled.
func backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt*500) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "AllerScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegistryFailure, err)
	}
	return resp, nil
}

// Document is a parsed registry response: the result header plus the
// item list, with each item flattened to tag-name -> text.
type Document struct {
	ResultCode string
	ResultMsg  string
	Items      []Item
}

// OK reports whether the registry signalled success. Anything but "00"
// means "no data".
func (d *Document) OK() bool {
	return d.ResultCode == "00"
}

// Item holds one <item> element's child tags. Field names differ per
// provider, so values are indexed by tag name and looked up through
// ordered candidate lists.
type Item map[string]string

// First returns the first non-empty value among the candidate tag names.
func (it Item) First(names ...string) string {
	for _, name := range names {
		if v := it[name]; v != "" {
			return v
		}
	}
	return ""
}

// ParseDocument walks the XML token stream instead of unmarshalling into
// structs: the providers disagree on tag names and the field tables need
// arbitrary tag indexing.
func ParseDocument(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &Document{}
	var current Item
	var elem string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			elem = t.Name.Local
			if elem == "item" {
				current = Item{}
			}
		case xml.EndElement:
			if t.Name.Local == "item" && current != nil {
				doc.Items = append(doc.Items, current)
				current = nil
			}
			elem = ""
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || elem == "" {
				continue
			}
			switch {
			case current != nil && elem != "item":
				current[elem] += text
			case elem == "resultCode":
				doc.ResultCode += text
			case elem == "resultMsg":
				doc.ResultMsg += text
			}
		}
	}
	return doc, nil
}
