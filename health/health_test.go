package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestChecker_AllUp(t *testing.T) {
	c := NewChecker()
	c.Register("cassandra")
	c.SetStatus("cassandra", StatusUp)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, nil)

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status     Status            `json:"status"`
		Components map[string]Status `json:"components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusUp {
		t.Errorf("overall = %s, want up", resp.Status)
	}
	if resp.Components["cassandra"] != StatusUp {
		t.Errorf("cassandra = %s, want up", resp.Components["cassandra"])
	}
}

func TestChecker_RegisteredStartsDown(t *testing.T) {
	c := NewChecker()
	c.Register("cassandra")

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, nil)

	if rec.Code != 503 {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
