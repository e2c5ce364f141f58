package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postDecision(h *Handler, eventID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/approve-event/"+eventID, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "eventId", Value: eventID}}
	c.Set("user_id", uint(1))
	h.DecideEvent(c)
	return w
}

func TestDecideEventHandlerStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService()
	h := NewHandler(svc)

	if w := postDecision(h, "10", `{"status":"Approved"}`); w.Code != http.StatusBadRequest {
		t.Errorf("non-canonical literal: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := postDecision(h, "10", `{"status":"approved"}`); w.Code != http.StatusOK {
		t.Fatalf("valid decision: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := postDecision(h, "10", `{"status":"rejected"}`); w.Code != http.StatusConflict {
		t.Errorf("second decision: status = %d, want %d", w.Code, http.StatusConflict)
	}
	if w := postDecision(h, "404", `{"status":"approved"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown event: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
