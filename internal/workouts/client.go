package workouts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	exercisesMemoKey = "exercises-list"
	exercisesMemoTTL = 5 * time.Minute
	clientMemoSize   = 1024 * 1024
	clientTimeout    = 10 * time.Second
	maxErrorBodySize = 512
)

// Client talks to the workouts API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	memo       *freecache.Cache
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   clientTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		memo:       freecache.NewCache(clientMemoSize),
	}
}

// ListExercises returns the exercise catalogue, memoised for a few minutes.
func (c *Client) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.workouts.list_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, err := c.memo.Get([]byte(exercisesMemoKey)); err == nil {
		var exercises []Exercise
		if err := json.Unmarshal(cached, &exercises); err == nil {
			span.SetAttributes(attribute.Bool("memo.hit", true))
			return exercises, nil
		}
		log.Warnf("exercises memo: dropping undecodable entry")
		c.memo.Del([]byte(exercisesMemoKey))
	}
	span.SetAttributes(attribute.Bool("memo.hit", false))

	body, err := c.do(ctx, http.MethodGet, "/exercises-list", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var exercises []Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercises: %w", err)
	}

	if err := c.memo.Set([]byte(exercisesMemoKey), body, int(exercisesMemoTTL.Seconds())); err != nil {
		log.Warnf("exercises memo set: %s", err)
	}

	return exercises, nil
}

func (c *Client) CreateWorkout(ctx context.Context, workout NewWorkout) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.name", workout.Name))

	body, err := c.do(ctx, http.MethodPost, "/workouts", workout, http.StatusCreated)
	if err != nil {
		return 0, err
	}

	var resp AddWorkoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal add workout response: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) UpdatePresence(ctx context.Context, presence Presence) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client.workouts.update_presence")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = c.do(ctx, http.MethodPost, "/community-presence", presence, http.StatusNoContent)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any, expectedStatus int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		reqBody = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("new request %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode != expectedStatus {
		if len(body) > maxErrorBodySize {
			body = body[:maxErrorBodySize]
		}
		return nil, fmt.Errorf(
			"%s %s: unexpected status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}

	return body, nil
}
