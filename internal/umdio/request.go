package umdio

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const userAgent = "umd-course-finder/1.0"

// doRequest sends the request and reads the whole body.
// This function encapsulates the boilerplate for logging and reading the response body.
func doRequest(client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).
		Str("query", req.URL.RawQuery).Msg("Request")

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("path", req.URL.Path).Str("duration", duration.String()).Msg("Request Error")
		return nil, nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)

	if err != nil {
		log.Err(err).Int("code", resp.StatusCode).Str("content-type", resp.Header.Get("Content-Type")).Int("content-length", len(body)).
			Str("duration", duration.String()).Msg("Response (Unable to Read Body)")
		return nil, nil, err
	}

	log.Debug().Int("code", resp.StatusCode).Str("content-type", resp.Header.Get("Content-Type")).Int("content-length", len(body)).
		Str("duration", duration.String()).Msg("Response")
	return resp, body, nil
}

// applyHeaders applies the headers sent with every UMD.io request
func applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
