// Package http provides the HTTP client shared by the provider adapters.
//
// The Client in this package handles:
//   - User-Agent and bearer authorization headers
//   - Whole-body fetches for small payloads such as cover art
//   - Streaming responses for long payloads such as PCM audio
//   - Mapping non-200 responses to *StatusError
//
// # Basic Usage
//
//	client := http.NewClient()
//	cover, err := client.Get(ctx, coverURL)
//
//	body, err := client.Stream(ctx, pcmURL, http.WithBearer(token))
//	if err != nil {
//	    var se *http.StatusError
//	    if errors.As(err, &se) && se.Code == 404 { ... }
//	}
//	defer body.Close()
package http
