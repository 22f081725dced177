package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/services"
	"github.com/afterus/afterus-backend/internal/testutil"
)

const sampleExport = "1/2/2023, 9:05 PM - Alex: I love you so much, this is the first time I feel this way about anyone\n" +
	"1/2/2023, 9:06 pm - Sam: Love you too\n" +
	"2/2/2023, 10:00:15 AM - Sam: We should not argue about work again\n"

type testServer struct {
	t     *testing.T
	app   *fiber.App
	store *testutil.Store
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewStore()
	logger, _ := testutil.Logger()

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", Issuer: "afterus-test"},
		AI:   config.AIConfig{Provider: "canned"},
	}
	svc, err := services.NewServices(cfg, services.Repositories{
		Users:         store.Users(),
		Sessions:      store.Sessions(),
		Audit:         store.Audit(),
		Chats:         store.Chats(),
		Messages:      store.Messages(),
		Memories:      store.Memories(),
		NoContact:     store.NoContact(),
		Activities:    store.Activities(),
		Personalities: store.Personalities(),
		Journal:       store.Journal(),
	}, nil, logger)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	SetupRoutes(app, svc, logger)
	return &testServer{t: t, app: app, store: store}
}

func (s *testServer) do(method, path string, body interface{}) (*http.Response, []byte) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *testServer) send(req *http.Request) (*http.Response, []byte) {
	s.t.Helper()
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, out
}

func (s *testServer) register() {
	s.t.Helper()
	resp, body := s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "sam@example.com",
		"name":     "Sam",
		"password": "s3cret-pass",
	})
	require.Equal(s.t, fiber.StatusCreated, resp.StatusCode, string(body))

	var result struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(body, &result))
	require.NotEmpty(s.t, result.AccessToken)
	s.token = result.AccessToken
}

func (s *testServer) upload(filename, content string) (*http.Response, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(s.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(req)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	health := decode[services.HealthStatus](t, body)
	assert.Equal(t, services.StatusHealthy, health.Status)
	assert.Equal(t, "canned", health.Provider)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(http.MethodGet, "/api/v1/dashboard/stats", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	s.token = "not-a-jwt"
	resp, _ = s.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := decode[map[string]interface{}](t, body)
	assert.Equal(t, "sam@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	resp, _ = s.do(http.MethodPut, "/api/v1/auth/password", map[string]string{
		"current_password": "wrong-pass1",
		"new_password":     "n3w-password",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	s.token = ""
	resp, _ = s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "sam@example.com",
		"password": "nope-nope1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "sam@example.com",
		"name":     "Sam again",
		"password": "s3cret-pass",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatUploadExportAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.upload("WhatsApp Chat.txt", sampleExport)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	session := decode[map[string]interface{}](t, body)
	id := session["id"].(string)
	assert.EqualValues(t, 3, session["total_messages"])

	resp, body = s.do(http.MethodGet, "/api/v1/chat/sessions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)

	resp, body = s.do(http.MethodGet, "/api/v1/chat/sessions/"+id+"/messages?limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 2)

	for _, query := range []string{"?limit=-1", "?limit=0", "?limit=101", "?offset=-1"} {
		resp, _ = s.do(http.MethodGet, "/api/v1/chat/sessions"+query, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "sessions"+query)
		resp, _ = s.do(http.MethodGet, "/api/v1/chat/sessions/"+id+"/messages"+query, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "messages"+query)
	}

	resp, body = s.do(http.MethodGet, "/api/v1/chat/sessions/"+id+"/export?format=yaml", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, string(body), "filename: WhatsApp Chat.txt")

	resp, _ = s.do(http.MethodGet, "/api/v1/chat/sessions/"+id+"/export?format=xml", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/api/v1/ai/insights/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, decode[map[string]interface{}](t, body), "relationship_health_score")

	resp, _ = s.do(http.MethodPost, "/api/v1/memories/extract/"+id, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/api/v1/chat/sessions/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/v1/chat/sessions/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/v1/chat/sessions/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatUploadRejectsBadFiles(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.upload("chat.csv", sampleExport)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "only .txt files are supported")

	resp, body = s.upload("chat.txt", "nothing to see here\n")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "no valid messages found")
}

func TestCompanionChat(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.do(http.MethodPost, "/api/v1/ai/chat", map[string]string{"message": "I feel so sad today"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	reply := decode[map[string]interface{}](t, body)
	assert.True(t, strings.HasPrefix(reply["response"].(string), "I understand how you're feeling. "))
	assert.Equal(t, "sad", reply["emotion"])
	assert.NotEmpty(t, reply["suggested_actions"])

	resp, _ = s.do(http.MethodPost, "/api/v1/ai/chat", map[string]string{"message": "  "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/v1/ai/chat", map[string]string{"message": "hi", "personality_mode": "sarcastic"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/api/v1/ai/healing-session", map[string]string{"session_type": "letting-go"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[map[string]interface{}](t, body)["session_id"])
}

func TestNoContactDaysAndStreak(t *testing.T) {
	s := newTestServer(t)
	s.register()

	day := map[string]interface{}{"date": "2024-03-01", "success": true, "mood": "calm"}
	resp, body := s.do(http.MethodPost, "/api/v1/healing/no-contact-days", day)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodPost, "/api/v1/healing/no-contact-days", day)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Entry already exists for this date", decode[map[string]string](t, body)["error"])

	resp, body = s.do(http.MethodGet, "/api/v1/healing/no-contact-days?start_date=2024-03-01&end_date=2024-03-31", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)

	resp, _ = s.do(http.MethodGet, "/api/v1/healing/no-contact-days?start_date=March", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/api/v1/healing/streak", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, body)["total_days_tracked"])
}

func TestClosureActivitiesAndPersonality(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.do(http.MethodGet, "/api/v1/healing/closure-activities", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	activities := decode[[]map[string]interface{}](t, body)
	require.Len(t, activities, 10)

	id := activities[0]["id"].(string)
	resp, body = s.do(http.MethodPut, "/api/v1/healing/closure-activities/"+id, map[string]bool{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	updated := decode[map[string]interface{}](t, body)
	assert.Equal(t, true, updated["completed"])
	assert.NotNil(t, updated["completed_date"])

	resp, body = s.do(http.MethodGet, "/api/v1/healing/ai-personality", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "supportive", decode[map[string]interface{}](t, body)["tone"])

	resp, _ = s.do(http.MethodPut, "/api/v1/healing/ai-personality", map[string]string{"tone": "sarcastic"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodPut, "/api/v1/healing/ai-personality", map[string]string{"tone": "challenging", "ex_name": "Alex"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "challenging", decode[map[string]interface{}](t, body)["tone"])
}

func TestMemoriesAndJournal(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.do(http.MethodPost, "/api/v1/memories", map[string]interface{}{
		"title": "First date",
		"date":  "2022-06-11",
		"type":  "first-meeting",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	memoryID := decode[map[string]interface{}](t, body)["id"].(string)

	resp, body = s.do(http.MethodGet, "/api/v1/memories?type=first-meeting", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)

	resp, _ = s.do(http.MethodGet, "/api/v1/memories?limit=500", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, "/api/v1/memories?type=bogus", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodPut, "/api/v1/memories/"+memoryID, map[string]string{"title": "Our first date"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Our first date", decode[map[string]interface{}](t, body)["title"])

	resp, _ = s.do(http.MethodDelete, "/api/v1/memories/"+memoryID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodDelete, "/api/v1/memories/"+memoryID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = s.do(http.MethodPost, "/api/v1/journal", map[string]string{"description": "Quiet day.", "date": "2024-03-02"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	entryID := decode[map[string]interface{}](t, body)["id"].(string)

	resp, _ = s.do(http.MethodPost, "/api/v1/journal", map[string]string{"date": "2024-03-02"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(http.MethodPut, "/api/v1/journal/"+entryID, map[string]string{"description": "Better day."})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Better day.", decode[map[string]interface{}](t, body)["description"])

	resp, body = s.do(http.MethodGet, "/api/v1/journal", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, body), 1)

	resp, _ = s.do(http.MethodDelete, "/api/v1/journal/"+entryID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.register()

	resp, body := s.upload("chat.txt", sampleExport)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stats := decode[map[string]interface{}](t, body)
	assert.EqualValues(t, 1, stats["sessions_count"])
	assert.EqualValues(t, 3, stats["messages_count"])

	resp, body = s.do(http.MethodGet, "/api/v1/dashboard/recent-activity?limit=3", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]map[string]interface{}](t, body))

	resp, _ = s.do(http.MethodGet, "/api/v1/dashboard/recent-activity?limit=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(http.MethodGet, "/ws/companion", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
