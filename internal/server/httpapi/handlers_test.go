package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/confidant/internal/logging"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
	"github.com/dmitrijs2005/confidant/internal/server/config"
	"github.com/dmitrijs2005/confidant/internal/server/llm"
	"github.com/dmitrijs2005/confidant/internal/server/sessions"
	"github.com/dmitrijs2005/confidant/internal/server/users"
)

// --- helpers ---

type env struct {
	ts    *httptest.Server
	users *users.Service
}

// newEnv starts the full handler stack on httptest with the given completer.
func newEnv(t *testing.T, completer llm.Completer) *env {
	t.Helper()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	repo := users.NewJSONFileRepository(filepath.Join(t.TempDir(), "users.json"))
	us := users.NewService(repo, log)
	cs := chat.NewService(llm.NewFailSoft(completer, log), log)
	ss := sessions.NewStore()

	cfg := &config.Config{
		SecretKey:       "test-secret",
		SessionValidity: time.Hour,
	}

	srv := NewServer(cfg, log, us, cs, ss)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &env{ts: ts, users: us}
}

// browser is an http.Client with a cookie jar, i.e. one browser session.
func (e *env) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func getPage(t *testing.T, c *http.Client, base, path string) string {
	t.Helper()
	resp, err := c.Get(base + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func postForm(t *testing.T, c *http.Client, base, path string, form url.Values) string {
	t.Helper()
	resp, err := c.PostForm(base+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func sendMessage(t *testing.T, c *http.Client, base, text string) string {
	t.Helper()
	return postForm(t, c, base, "/", url.Values{"message": {text}})
}

func register(t *testing.T, c *http.Client, base, username, password string) string {
	t.Helper()
	return postForm(t, c, base, "/register", url.Values{
		"username": {username},
		"password": {password},
	})
}

func login(t *testing.T, c *http.Client, base, username, password string) string {
	t.Helper()
	return postForm(t, c, base, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

type failingCompleter struct{}

func (f *failingCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	return "", errors.New("provider down")
}

// --- chat page ---

func TestIndex_GuestExchange(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	page := sendMessage(t, c, e.ts.URL, "rough week at work")

	assert.Contains(t, page, "rough week at work")
	assert.Contains(t, page, "I hear you")
}

func TestIndex_EmptyMessageIsIgnored(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	page := postForm(t, c, e.ts.URL, "/", url.Values{"message": {""}})
	assert.NotContains(t, page, "I hear you")
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	resp, err := c.Get(e.ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndex_GuestHistorySurvivesReload(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	sendMessage(t, c, e.ts.URL, "hello there")
	page := getPage(t, c, e.ts.URL, "/")

	assert.Contains(t, page, "hello there")
}

func TestIndex_SessionsAreIsolated(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	a := e.browser(t)
	b := e.browser(t)

	sendMessage(t, a, e.ts.URL, "private thought")

	page := getPage(t, b, e.ts.URL, "/")
	assert.NotContains(t, page, "private thought")
}

func TestIndex_CompletionFailureBecomesApologyTurn(t *testing.T) {
	e := newEnv(t, &failingCompleter{})
	c := e.browser(t)

	page := sendMessage(t, c, e.ts.URL, "anyone there?")

	assert.Contains(t, page, "trouble connecting right now")

	// the apology is a persisted turn, not a transient notice
	page = getPage(t, c, e.ts.URL, "/")
	assert.Contains(t, page, "trouble connecting right now")
}

// --- registration and merge ---

func TestRegister_MergesGuestHistory(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	sendMessage(t, c, e.ts.URL, "guest confession")
	page := register(t, c, e.ts.URL, "alice", "pw")

	assert.Contains(t, page, "Registration successful")

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, hist, 3, "system prompt + guest user turn + guest assistant turn")
	assert.Equal(t, chat.RoleSystem, hist[0].Role)
	assert.Equal(t, "guest confession", hist[1].Content)
	assert.Equal(t, chat.RoleAssistant, hist[2].Role)
}

func TestRegister_WithoutGuestExchange(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	register(t, c, e.ts.URL, "alice", "pw")

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, hist, 1, "history must be exactly the system prompt")
	assert.Equal(t, chat.Message{Role: chat.RoleSystem, Content: chat.SystemPrompt}, hist[0])
}

func TestRegister_Duplicate(t *testing.T) {
	e := newEnv(t, llm.NewMock())

	register(t, e.browser(t), e.ts.URL, "alice", "pw")
	page := register(t, e.browser(t), e.ts.URL, "alice", "other")

	assert.Contains(t, page, "Username already exists.")
}

func TestRegister_MissingFields(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	page := register(t, c, e.ts.URL, "", "pw")
	assert.Contains(t, page, "Username and password are required.")

	page = register(t, c, e.ts.URL, "alice", "")
	assert.Contains(t, page, "Username and password are required.")
}

// --- login and merge ---

func TestLogin_MergesGuestHistoryAndClearsGuest(t *testing.T) {
	e := newEnv(t, llm.NewMock())

	// existing account with its own history
	first := e.browser(t)
	register(t, first, e.ts.URL, "alice", "pw")
	sendMessage(t, first, e.ts.URL, "older exchange")

	// a different browser accumulates guest history, then logs in
	second := e.browser(t)
	sendMessage(t, second, e.ts.URL, "fresh guest turn")
	page := login(t, second, e.ts.URL, "alice", "pw")

	assert.Contains(t, page, "Welcome back! Your previous session has been merged.")

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, hist, 5, "system + older pair + merged guest pair")
	assert.Equal(t, "older exchange", hist[1].Content)
	assert.Equal(t, "fresh guest turn", hist[3].Content)

	// guest conversation is discarded: after logout this browser is empty
	getPage(t, second, e.ts.URL, "/logout")
	page = getPage(t, second, e.ts.URL, "/")
	assert.NotContains(t, page, "fresh guest turn")
}

func TestLogin_WithoutGuestExchangeIsNoMerge(t *testing.T) {
	e := newEnv(t, llm.NewMock())

	register(t, e.browser(t), e.ts.URL, "alice", "pw")

	c := e.browser(t)
	page := login(t, c, e.ts.URL, "alice", "pw")
	assert.NotContains(t, page, "has been merged")

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newEnv(t, llm.NewMock())

	register(t, e.browser(t), e.ts.URL, "alice", "pw")

	c := e.browser(t)
	page := login(t, c, e.ts.URL, "alice", "wrong")
	assert.Contains(t, page, "Invalid username or password.")

	page = login(t, c, e.ts.URL, "ghost", "x")
	assert.Contains(t, page, "Invalid username or password.")
}

// --- logout ---

func TestLogout_DropsIdentityOnly(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	register(t, c, e.ts.URL, "alice", "pw")
	sendMessage(t, c, e.ts.URL, "account message")

	page := getPage(t, c, e.ts.URL, "/logout")
	assert.Contains(t, page, "You have been logged out.")
	assert.Contains(t, page, "Chatting as guest")
	assert.NotContains(t, page, "account message")

	// the account history is untouched
	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, hist, 3)
}

// --- clear ---

func TestClear_Guest(t *testing.T) {
	e := newEnv(t, llm.NewMock())

	// an account exists with history; clearing a guest must not touch it
	register(t, e.browser(t), e.ts.URL, "alice", "pw")
	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)

	c := e.browser(t)
	sendMessage(t, c, e.ts.URL, "guest worry")
	page := getPage(t, c, e.ts.URL, "/clear")

	assert.NotContains(t, page, "guest worry")

	after, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, hist, after)
}

func TestClear_AccountResetsToSystemPrompt(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	register(t, c, e.ts.URL, "alice", "pw")
	sendMessage(t, c, e.ts.URL, "to be forgotten")
	getPage(t, c, e.ts.URL, "/clear")

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, chat.Message{Role: chat.RoleSystem, Content: chat.SystemPrompt}, hist[0])
}

// --- voice endpoint ---

func postVRChat(t *testing.T, c *http.Client, base string, body string) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := c.Post(base+"/vr-chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestVRChat_Exchange(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	resp, out := postVRChat(t, c, e.ts.URL, `{"message":"spoken thought"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, out["reply"], "I hear you")

	// the voice turn lands in the same history the chat page shows
	page := getPage(t, c, e.ts.URL, "/")
	assert.Contains(t, page, "spoken thought")
}

func TestVRChat_MissingMessage(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	resp, out := postVRChat(t, c, e.ts.URL, `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, out["error"])

	// no history was mutated
	page := getPage(t, c, e.ts.URL, "/")
	assert.NotContains(t, page, "msg user")
}

func TestVRChat_InvalidJSON(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	resp, out := postVRChat(t, c, e.ts.URL, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, out["error"])
}

func TestVRChat_MethodNotAllowed(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	resp, err := c.Get(e.ts.URL + "/vr-chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestVRChat_PersistsForAccount(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	register(t, c, e.ts.URL, "alice", "pw")
	resp, _ := postVRChat(t, c, e.ts.URL, `{"message":"voice note"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hist, err := e.users.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "voice note", hist[1].Content)
}

func TestVR_PageRenders(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	page := getPage(t, c, e.ts.URL, "/vr")
	assert.Contains(t, page, "Voice session")
}

// --- session cookie ---

func TestSession_TamperedCookieGetsFreshSession(t *testing.T) {
	e := newEnv(t, llm.NewMock())
	c := e.browser(t)

	sendMessage(t, c, e.ts.URL, "before tampering")

	u, err := url.Parse(e.ts.URL)
	require.NoError(t, err)
	c.Jar.SetCookies(u, []*http.Cookie{{Name: "confidant_session", Value: "garbage"}})

	page := getPage(t, c, e.ts.URL, "/")
	assert.NotContains(t, page, "before tampering")
}
