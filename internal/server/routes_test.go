package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gfxtab/gfxtab-api/internal/db"
	"github.com/gfxtab/gfxtab-api/internal/server/contact"
	"github.com/gfxtab/gfxtab-api/internal/server/email"
	"github.com/gfxtab/gfxtab-api/internal/server/events"
	"github.com/gfxtab/gfxtab-api/internal/server/status"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newTestServices(t *testing.T, sender email.Sender) *Services {
	t.Helper()

	sqlDB, err := db.NewSqliteDB(db.WithPath(":memory:"))
	require.NoError(t, err)

	svc := &Services{
		Status: status.NewStatusService(status.NewSQLiteStore(sqlDB)),
		Contact: contact.NewDispatcher(sender, &email.Config{
			SenderEmail:    email.DefaultSenderEmail,
			RecipientEmail: email.DefaultRecipientEmail,
		}),
		Events: events.Noop{},
	}
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() {
		_ = svc.Shutdown(context.Background())
	})
	return svc
}

func newTestRouter(t *testing.T, sender email.Sender) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return SetupRoutes(newTestServices(t, sender), &HTTPConfig{CORSOrigins: []string{"*"}})
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeDetailFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var resp struct {
		Detail []struct {
			Loc []string `json:"loc"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var fields []string
	for _, d := range resp.Detail {
		require.Len(t, d.Loc, 2)
		fields = append(fields, d.Loc[1])
	}
	return fields
}

func TestRoutes_Root(t *testing.T) {
	r := newTestRouter(t, new(MockSender))

	w := doRequest(r, http.MethodGet, "/api/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "gfxtab-api "))
}

func TestRoutes_StatusEmptyList(t *testing.T) {
	r := newTestRouter(t, new(MockSender))

	w := doRequest(r, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRoutes_StatusCreateThenList(t *testing.T) {
	r := newTestRouter(t, new(MockSender))

	w := doRequest(r, http.MethodPost, "/api/status", `{"client_name":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice", created["client_name"])
	assert.NotEmpty(t, created["id"])
	assert.NotEmpty(t, created["timestamp"])
	assert.NotContains(t, created, "_id")

	w = doRequest(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created, listed[0])
}

func TestRoutes_StatusCreateValidation(t *testing.T) {
	r := newTestRouter(t, new(MockSender))

	for _, body := range []string{`{}`, `{"client_name":""}`, `{"client_name":42}`, `not json`} {
		w := doRequest(r, http.MethodPost, "/api/status", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}

	w := doRequest(r, http.MethodGet, "/api/status", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRoutes_ContactSuccess(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
		return msg.Subject == "GFXTAB Contact: Bob" &&
			assert.ObjectsAreEqual([]string{email.DefaultRecipientEmail}, msg.To)
	})).Return("msg_123", nil).Once()
	r := newTestRouter(t, sender)

	w := doRequest(r, http.MethodPost, "/api/contact", `{"name":"Bob","email":"bob@example.com","message":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"Your message has been sent successfully"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "msg_123")
	sender.AssertExpectations(t)
}

func TestRoutes_ContactInvalidEmail(t *testing.T) {
	sender := new(MockSender)
	r := newTestRouter(t, sender)

	w := doRequest(r, http.MethodPost, "/api/contact", `{"name":"A","email":"invalid-email","message":"hi"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"email"}, decodeDetailFields(t, w))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRoutes_ContactMissingFields(t *testing.T) {
	sender := new(MockSender)
	r := newTestRouter(t, sender)

	w := doRequest(r, http.MethodPost, "/api/contact", `{"name":"A"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []string{"email", "message"}, decodeDetailFields(t, w))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRoutes_ContactProviderFailure(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("resend: 403 domain not verified")).Once()
	r := newTestRouter(t, sender)

	w := doRequest(r, http.MethodPost, "/api/contact", `{"name":"A","email":"a@b.co","message":"m"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Failed to send message. Please try again."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "domain not verified")
}

func TestRoutes_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, new(MockSender))

	w := doRequest(r, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/api/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, w.Body.String())
}
