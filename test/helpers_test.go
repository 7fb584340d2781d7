package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"
)

// doRequest sends body (if any) as JSON and returns the status and raw response.
func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) getJSON(ctx context.Context, path string, dst any) {
	status, body := s.doRequest(ctx, http.MethodGet, path, nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
	require.NoError(s.T(), json.Unmarshal(body, dst))
}

// deleteAllWorkouts also drops everything kept in redis, so no cached list
// outlives the rows behind it.
func (s *IntegrationTestSuite) deleteAllWorkouts() {
	require.NoError(s.T(), s.redisClient.FlushDB(context.Background()).Err())
	_, err := s.DB.Exec("DELETE FROM workouts")
	require.NoError(s.T(), err)
	_, err = s.DB.Exec("DELETE FROM community_presence")
	require.NoError(s.T(), err)
}

func (s *IntegrationTestSuite) exerciseID(name string) int {
	var id int
	require.NoError(s.T(), s.DB.QueryRow("SELECT id FROM exercises WHERE name = $1", name).Scan(&id))
	return id
}

// tryGetJSON is getJSON for polling conditions: it reports failure instead of failing the test.
func (s *IntegrationTestSuite) tryGetJSON(ctx context.Context, path string, dst any) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+path, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, false
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(dst) == nil
}
