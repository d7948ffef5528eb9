package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Execute(t *testing.T) {
	var received ExecuteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/testnet3/execute" {
			t.Errorf("path = %s, want /testnet3/execute", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet3", 5*time.Second)
	req := ExecuteRequest{
		ProgramID:       "exchange.aleo",
		ProgramFunction: "settle_leo",
		Inputs:          []string{"7u64", "3u64"},
		PrivateKey:      "APrivateKey1test",
		Fee:             1000,
	}
	if err := client.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if received.ProgramID != "exchange.aleo" || received.ProgramFunction != "settle_leo" {
		t.Errorf("received = %s/%s, want exchange.aleo/settle_leo",
			received.ProgramID, received.ProgramFunction)
	}
	if len(received.Inputs) != 2 || received.Inputs[0] != "7u64" || received.Inputs[1] != "3u64" {
		t.Errorf("inputs = %v, want [7u64 3u64]", received.Inputs)
	}
	if received.Fee != 1000 {
		t.Errorf("fee = %d, want 1000", received.Fee)
	}
}

func TestClient_Execute_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"insufficient fee"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet3", 5*time.Second)
	err := client.Execute(context.Background(), ExecuteRequest{ProgramFunction: "settle_leo"})
	if err == nil {
		t.Fatal("Execute() error = nil, want error on 400")
	}
}
