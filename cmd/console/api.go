package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/scene-engine/internal/handlers"
	"github.com/jwebster45206/scene-engine/pkg/engine"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/session"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// doJSON sends body (if any) and decodes a wantStatus response into out.
func doJSON(client *http.Client, method, url string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorResp.Error)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func listScenes(client *http.Client, baseURL string) ([]*scene.Scene, error) {
	var scenes []*scene.Scene
	err := doJSON(client, http.MethodGet, baseURL+"/v1/scenes", nil, http.StatusOK, &scenes)
	return scenes, err
}

func getScene(client *http.Client, baseURL string, key scene.Key) (*scene.Scene, error) {
	var s scene.Scene
	url := fmt.Sprintf("%s/v1/scenes/%d/%d", baseURL, key.SceneID, key.SubsceneID)
	if err := doJSON(client, http.MethodGet, url, nil, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func startSession(client *http.Client, baseURL string) (*session.Session, error) {
	var s session.Session
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/sessions", handlers.CreateSessionRequest{OwnerID: "console"}, http.StatusCreated, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func sendClick(client *http.Client, baseURL string, click engine.Click) (*scene.TransitionResult, error) {
	var r scene.TransitionResult
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/transitions", click, http.StatusOK, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func getInsights(client *http.Client, baseURL, sessionID string) (*session.Insights, error) {
	var in session.Insights
	if err := doJSON(client, http.MethodGet, baseURL+"/v1/sessions/"+sessionID+"/insights", nil, http.StatusOK, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func endSession(client *http.Client, baseURL, sessionID string) error {
	return doJSON(client, http.MethodDelete, baseURL+"/v1/sessions/"+sessionID, nil, http.StatusNoContent, nil)
}
