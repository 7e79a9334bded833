package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"interview-coach/internal/infra/audio"
)

const DefaultCoquiURL = "http://localhost:5002"

// CoquiClient talks to a Coqui tts-server instance. The server loads its model
// (tacotron2-DDC by default) at startup and answers with WAV audio.
type CoquiClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewCoquiClient(baseURL string) *CoquiClient {
	if baseURL == "" {
		baseURL = DefaultCoquiURL
	}
	return &CoquiClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

func (c *CoquiClient) Synthesize(ctx context.Context, text string) (*audio.Waveform, error) {
	endpoint := c.baseURL + "/api/tts?" + url.Values{"text": {text}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coqui API error %d: %s", resp.StatusCode, string(body))
	}

	w, err := audio.DecodeWAV(body)
	if err != nil {
		return nil, fmt.Errorf("decoding speech: %w", err)
	}
	return w, nil
}
