package snapcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/nyan-lin-tun/CNCF-people-api/apierror"
)

const (
	defaultRetryWaitMin = 250 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

type httpSource struct {
	url    *url.URL
	client *http.Client
}

// NewHTTPSource creates a Source that fetches the people document from
// srcURL using conditional GET requests. Unless WithClient supplies a
// client, a client that retries transient failures is used; WithRetryMax
// sets its retry count.
func NewHTTPSource(srcURL string, options ...Option) (Source, error) {
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(srcURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must have http or https scheme: %s", srcURL)
	}

	client := opts.httpClient
	if client == nil {
		// Instantiate retryable HTTP client.
		rclient := &retryablehttp.Client{
			HTTPClient:   &http.Client{},
			RetryWaitMin: defaultRetryWaitMin,
			RetryWaitMax: defaultRetryWaitMax,
			RetryMax:     opts.retryMax,
			CheckRetry:   retryablehttp.DefaultRetryPolicy,
			Backoff:      retryablehttp.DefaultBackoff,
		}
		client = rclient.StandardClient()
	}

	return &httpSource{
		url:    u,
		client: client,
	}, nil
}

func (s *httpSource) Fetch(ctx context.Context, upstreamETag string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if upstreamETag != "" {
		req.Header.Set("If-None-Match", upstreamETag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &FetchResult{NotModified: true}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apierror.FromResponse(resp.StatusCode, body)
	}

	return &FetchResult{
		Body: body,
		ETag: resp.Header.Get("ETag"),
	}, nil
}

func (s *httpSource) String() string {
	return s.url.String()
}
