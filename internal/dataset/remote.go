package dataset

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"convo-insights-go/internal/types"

	"github.com/cenkalti/backoff/v4"
	"github.com/rotisserie/eris"
)

// RemoteOptions point at a REST endpoint returning a JSON array of rows.
type RemoteOptions struct {
	URL    string
	APIKey string
	// Timeout bounds each attempt. MaxElapsed bounds all retries.
	Timeout    time.Duration
	MaxElapsed time.Duration
	Client     *http.Client
}

// FetchRemote GETs rows, retrying transport errors and 5xx responses with
// exponential backoff. 4xx responses fail immediately.
func FetchRemote(ctx context.Context, opts RemoteOptions) ([]types.RawRecord, error) {
	if opts.URL == "" {
		return nil, eris.New("remote url not set")
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 12 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = opts.MaxElapsed
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = 30 * time.Second
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
		if err != nil {
			return backoff.Permanent(eris.Wrap(err, "build request"))
		}
		req.Header.Set("Accept", "application/json")
		if opts.APIKey != "" {
			req.Header.Set("apikey", opts.APIKey)
			req.Header.Set("Authorization", "Bearer "+opts.APIKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return eris.Wrap(err, "fetch rows")
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "read body")
		}

		switch {
		case resp.StatusCode >= 500:
			return eris.Errorf("server error %d: %s", resp.StatusCode, snippet(data))
		case resp.StatusCode >= 400:
			return backoff.Permanent(eris.Errorf("client error %d: %s", resp.StatusCode, snippet(data)))
		}
		body = data
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return ReadJSON(bytes.NewReader(body))
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
