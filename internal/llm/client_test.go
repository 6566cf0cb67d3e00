package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8081", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8081" {
		t.Errorf("BaseURL = %v, want http://localhost:8081", client.BaseURL)
	}
	if client.Model != "test-model" {
		t.Errorf("Model = %v, want test-model", client.Model)
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if !strings.Contains(r.Header.Get("Authorization"), "Bearer test-key") {
			t.Error("missing Authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}

		resp := ChatResponse{
			ID: "resp-1",
			Choices: []ChatChoice{
				{Message: ChatChoiceMessage{Role: "assistant", Content: "Hi there!"}, FinishReason: "stop"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	reply, err := client.ChatWithMessages(context.Background(), "system text", []Message{{Role: "user", Content: "Hello"}}, ChatParams{})
	if err != nil {
		t.Fatalf("ChatWithMessages() error = %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q, want %q", reply, "Hi there!")
	}

	if len(gotReq.Messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "system text" {
		t.Errorf("first message = %+v, want system prompt", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" {
		t.Errorf("second message role = %q, want user", gotReq.Messages[1].Role)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotReq.Model)
	}
}

func TestClient_ChatWithMessages_Errors(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
	}{
		{
			name: "server error status",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal error", http.StatusInternalServerError)
			},
		},
		{
			name: "no choices",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ChatResponse{ID: "resp-1"})
			},
		},
		{
			name: "malformed body",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient(server.URL, "key", "model")
			if _, err := client.ChatWithMessages(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, ChatParams{}); err == nil {
				t.Fatal("ChatWithMessages() error = nil, want error")
			}
		})
	}
}

func TestClient_StreamChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("stream flag not set in request")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Hello", " ", "world"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", token)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")

	var tokens []string
	err := client.StreamChat(context.Background(), "system", []Message{{Role: "user", Content: "hi"}}, ChatParams{}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if got := strings.Join(tokens, ""); got != "Hello world" {
		t.Errorf("accumulated tokens = %q, want %q", got, "Hello world")
	}
}

func TestClient_StreamChat_StopsOnFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"done\"},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")

	var tokens []string
	err := client.StreamChat(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, ChatParams{}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "done" {
		t.Errorf("tokens = %v, want [done]", tokens)
	}
}

func TestClient_StreamChat_CallbackErrorStopsStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"t%d\"}}]}\n\n", i)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")

	calls := 0
	err := client.StreamChat(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, ChatParams{}, func(string) error {
		calls++
		return fmt.Errorf("client gone")
	})
	if err == nil {
		t.Fatal("StreamChat() error = nil, want callback error")
	}
	if calls != 1 {
		t.Errorf("callback called %d times after failing, want 1", calls)
	}
}
