package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/swooby/openai-realtime-go/realtime/session"
)

// createSession trades the API key for a short-lived client secret. The
// request body merges the model name with the caller's session config.
func (t *Transport) createSession(ctx context.Context, model string, config *session.Config) (string, error) {
	ctx, span := tracer.Start(ctx, "create realtime session")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", model))

	body := map[string]any{"model": model}
	if config != nil {
		encoded, err := json.Marshal(config)
		if err != nil {
			return "", fmt.Errorf("failed to marshal session config: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(encoded, &fields); err != nil {
			return "", fmt.Errorf("failed to merge session config: %w", err)
		}
		for key, value := range fields {
			body[key] = value
		}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	sessionsURL := strings.TrimSuffix(t.Endpoint(), "/") + "/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sessionsURL, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey())

	resp, err := t.HTTPDoer().Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("non-2xx HTTP status: %s", resp.Status)
		span.RecordError(err)
		return "", err
	}

	var payload struct {
		ClientSecret struct {
			Value string `json:"value"`
		} `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if payload.ClientSecret.Value == "" {
		err := fmt.Errorf("session response is missing client_secret.value")
		span.RecordError(err)
		return "", err
	}
	return payload.ClientSecret.Value, nil
}

// postOffer sends the local SDP offer and returns the remote answer. The
// offer goes out as raw UTF-8 bytes with content type application/sdp; a
// text content type would grow a charset parameter the remote rejects.
func (t *Transport) postOffer(ctx context.Context, model, token, offerSDP string) (string, error) {
	ctx, span := tracer.Start(ctx, "exchange sdp offer")
	defer span.End()

	offerURL, err := url.Parse(t.Endpoint())
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	queryParams := offerURL.Query()
	queryParams.Set("model", model)
	offerURL.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, offerURL.String(), bytes.NewReader([]byte(offerSDP)))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/sdp")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.HTTPDoer().Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("offer request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("non-2xx HTTP status: %s", resp.Status)
		span.RecordError(err)
		return "", err
	}

	answerSDP, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if len(answerSDP) == 0 {
		err := fmt.Errorf("empty SDP answer")
		span.RecordError(err)
		return "", err
	}
	return string(answerSDP), nil
}
