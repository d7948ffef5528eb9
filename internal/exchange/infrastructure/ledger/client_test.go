package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseU64(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		want    int64
		wantErr bool
	}{
		{"valid", "123u64", 123, false},
		{"zero", "0u64", 0, false},
		{"missing suffix", "123", 0, true},
		{"not a number", "abcu64", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseU64(tt.literal)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseU64(%q) error = %v, wantErr %v", tt.literal, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseU64(%q) = %d, want %d", tt.literal, got, tt.want)
			}
		})
	}
}

func TestClient_LatestHeight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/testnet3/latest/height" {
			t.Errorf("path = %s, want /testnet3/latest/height", r.URL.Path)
		}
		w.Write([]byte("12345"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet3", 5*time.Second)
	height, err := client.LatestHeight(context.Background())
	if err != nil {
		t.Fatalf("LatestHeight() error = %v", err)
	}
	if height != 12345 {
		t.Errorf("LatestHeight() = %d, want 12345", height)
	}
}

func TestClient_LatestHeight_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet3", 5*time.Second)
	if _, err := client.LatestHeight(context.Background()); err == nil {
		t.Error("LatestHeight() error = nil, want error on 500")
	}
}

func TestClient_Blocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/testnet3/blocks" {
			t.Errorf("path = %s, want /testnet3/blocks", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "10" {
			t.Errorf("start = %s, want 10", got)
		}
		if got := r.URL.Query().Get("end"); got != "12" {
			t.Errorf("end = %s, want 12", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"header": {"metadata": {"height": 10, "timestamp": 1685600000}},
				"transactions": [
					{
						"status": "accepted",
						"type": "execute",
						"transaction": {
							"execution": {
								"transitions": [
									{
										"program": "exchange.aleo",
										"function": "sell_leo",
										"finalize": ["aleo1abc", "5u64", "100u64"]
									}
								]
							}
						}
					}
				]
			},
			{"header": {"metadata": {"height": 11, "timestamp": 1685600015}}, "transactions": []}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "testnet3", 5*time.Second)
	blocks, err := client.Blocks(context.Background(), 10, 12)
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].Height() != 10 {
		t.Errorf("blocks[0].Height() = %d, want 10", blocks[0].Height())
	}
	if blocks[0].Timestamp().Unix() != 1685600000 {
		t.Errorf("blocks[0].Timestamp() = %d, want 1685600000", blocks[0].Timestamp().Unix())
	}

	tx := blocks[0].Transactions[0]
	if !tx.Accepted() {
		t.Error("tx.Accepted() = false, want true")
	}
	tr := tx.Transaction.Execution.Transitions[0]
	if tr.Program != "exchange.aleo" || tr.Function != "sell_leo" {
		t.Errorf("transition = %s/%s, want exchange.aleo/sell_leo", tr.Program, tr.Function)
	}
	if len(tr.Finalize) != 3 || tr.Finalize[1] != "5u64" {
		t.Errorf("finalize = %v, want [aleo1abc 5u64 100u64]", tr.Finalize)
	}
}

func TestTransaction_Accepted(t *testing.T) {
	tests := []struct {
		name   string
		status string
		typ    string
		want   bool
	}{
		{"accepted execute", "accepted", "execute", true},
		{"rejected execute", "rejected", "execute", false},
		{"accepted deploy", "accepted", "deploy", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status, Type: tt.typ}
			if got := tx.Accepted(); got != tt.want {
				t.Errorf("Accepted() = %v, want %v", got, tt.want)
			}
		})
	}
}
