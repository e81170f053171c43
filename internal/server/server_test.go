package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"storyloom/internal/turn"
)

type stubPipeline struct {
	result *turn.Result
	err    error
}

func (s *stubPipeline) Run(ctx context.Context, req turn.Request) (*turn.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/dm-response", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDMResponse_Success(t *testing.T) {
	id := "msg-42"
	s := New(&stubPipeline{result: &turn.Result{Response: "The gate opens.", MessageID: &id}}, zap.NewNop())

	rec := post(t, s, `{"sessionId":"s1","playerMessage":"I push the gate"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Response  string  `json:"response"`
		MessageID *string `json:"messageId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Response != "The gate opens." || body.MessageID == nil || *body.MessageID != "msg-42" {
		t.Errorf("body = %+v", body)
	}
}

func TestDMResponse_NullMessageID(t *testing.T) {
	s := New(&stubPipeline{result: &turn.Result{Response: "The gate opens."}}, zap.NewNop())

	rec := post(t, s, `{"sessionId":"s1","playerMessage":"I push"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"messageId":null`) {
		t.Errorf("messageId should serialize as null: %s", rec.Body.String())
	}
}

func TestDMResponse_ErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: sessionId is required", turn.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: s9", turn.ErrSessionNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: provider 503", turn.ErrEmbeddingUnavailable), http.StatusInternalServerError},
		{fmt.Errorf("%w: empty completion", turn.ErrGenerationFailed), http.StatusInternalServerError},
		{fmt.Errorf("something unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		s := New(&stubPipeline{err: tc.err}, zap.NewNop())
		rec := post(t, s, `{"sessionId":"s1","playerMessage":"hi"}`)
		if rec.Code != tc.wantStatus {
			t.Errorf("err %v: status = %d, want %d", tc.err, rec.Code, tc.wantStatus)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("err %v: body missing error field: %s", tc.err, rec.Body.String())
		}
	}
}

func TestDMResponse_DoesNotLeakUpstreamDetail(t *testing.T) {
	s := New(&stubPipeline{err: fmt.Errorf("%w: provider secret-key-abc rejected", turn.ErrGenerationFailed)}, zap.NewNop())

	rec := post(t, s, `{"sessionId":"s1","playerMessage":"hi"}`)

	if strings.Contains(rec.Body.String(), "secret-key-abc") {
		t.Errorf("upstream detail leaked to client: %s", rec.Body.String())
	}
}

func TestDMResponse_BadBody(t *testing.T) {
	s := New(&stubPipeline{result: &turn.Result{Response: "x"}}, zap.NewNop())

	rec := post(t, s, `{"sessionId": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDMResponse_MethodNotAllowed(t *testing.T) {
	s := New(&stubPipeline{result: &turn.Result{Response: "x"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/dm-response", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
