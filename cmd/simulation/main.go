package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL = "http://localhost:3000/api/qa/v1"
)

// Simplified DTOs for the script
type AskRequest struct {
	Question  string `json:"question"`
	SessionId string `json:"session_id,omitempty"`
}

type AskResponse struct {
	Data struct {
		Answer       string   `json:"answer"`
		Plan         string   `json:"plan"`
		SubQuestions []string `json:"sub_questions"`
		SessionId    string   `json:"session_id"`
		Context      []struct {
			DocumentTitle string  `json:"document_title"`
			ChunkIndex    int     `json:"chunk_index"`
			Score         float64 `json:"score"`
		} `json:"context"`
	} `json:"data"`
}

func main() {
	token := os.Getenv("SIMULATION_TOKEN")
	if token == "" {
		color.Red("SIMULATION_TOKEN is not set")
		os.Exit(1)
	}

	color.Cyan("=== Multi-Stage QA Simulation Client ===")

	questions := []string{
		"What are the main findings of the uploaded report?",
		"How do those findings compare to last year?",
	}

	sessionId := ""
	for _, question := range questions {
		color.Yellow("\nUSER: %s", question)

		start := time.Now()
		res, err := ask(token, sessionId, question)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		sessionId = res.Data.SessionId
		color.Green("AI (%v): %s", elapsed, res.Data.Answer)
		if res.Data.Plan != "" {
			fmt.Printf("  plan: %s\n", res.Data.Plan)
		}
		for _, sq := range res.Data.SubQuestions {
			fmt.Printf("  sub-question: %s\n", sq)
		}
		for _, ev := range res.Data.Context {
			fmt.Printf("  evidence: %s#%d (score %.3f)\n", ev.DocumentTitle, ev.ChunkIndex, ev.Score)
		}

		// Small delay to allow async logs to flush on server side (optional)
		time.Sleep(1 * time.Second)
	}
}

func ask(token, sessionId, question string) (*AskResponse, error) {
	reqBody := AskRequest{Question: question, SessionId: sessionId}
	jsonBody, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", baseURL+"/ask", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %s: %s", resp.Status, string(body))
	}

	var res AskResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
