// ABOUTME: Tests for the nudge command tree
// ABOUTME: Runs commands against a temp database and an in-process chat proxy with a stub provider
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/nudge/chat"
	"github.com/harperreed/nudge/config"
	"github.com/harperreed/nudge/provider"
	"github.com/harperreed/nudge/ratelimit"
	"github.com/harperreed/nudge/web"
)

var idPattern = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

// fakeProxy runs the real proxy with a provider that records what it was sent.
type fakeProxy struct {
	mu     sync.Mutex
	answer string
	last   provider.Request
}

func (f *fakeProxy) complete(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	return f.answer, nil
}

func (f *fakeProxy) setAnswer(answer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answer = answer
}

func (f *fakeProxy) lastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func setupTestCLI(t *testing.T) *fakeProxy {
	t.Helper()

	proxy := &fakeProxy{answer: "Hi Sam, great to meet you!"}
	cfg := &config.Config{
		Port:               4000,
		CORSOrigin:         config.DefaultCORSOrigin,
		Provider:           "openai",
		Model:              config.DefaultOpenAIModel,
		AllowedModels:      []string{config.DefaultOpenAIModel},
		ProviderTimeout:    2 * time.Second,
		RateLimitMax:       100,
		RateLimitWindow:    time.Minute,
		DefaultTemperature: config.DefaultTemperature,
	}
	srv := httptest.NewServer(web.NewServer(cfg, provider.Func(proxy.complete), ratelimit.NewWindow(100, time.Minute), zap.NewNop()))
	t.Cleanup(srv.Close)

	t.Setenv("NUDGE_DB_PATH", filepath.Join(t.TempDir(), "nudge.db"))
	t.Setenv("NUDGE_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PROVIDER", "openai")
	t.Setenv("PORT", "4000")
	return proxy
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	a.isTerminal = func() bool { return false }
	defer a.close()

	var out bytes.Buffer
	cmd := newRootCommand(a, "test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCommand(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func createdIDs(t *testing.T, out string) []string {
	t.Helper()
	var ids []string
	for _, m := range idPattern.FindAllStringSubmatch(out, -1) {
		ids = append(ids, m[1])
	}
	require.NotEmpty(t, ids, out)
	return ids
}

func TestContactCommands(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "contact", "add", "--name", "Sam Rivera", "--info", "Product lead", "--status", "warm",
		"--notes", "Coffee, talked about hiring", "--date", "2025-05-02")
	assert.Contains(t, out, "✓ Contact created: Sam Rivera")
	assert.Contains(t, out, "✓ Interaction logged: 2025-05-02")
	ids := createdIDs(t, out)
	require.Len(t, ids, 2)
	contactID := ids[0]

	mustRun(t, "contact", "add", "--name", "Alex")

	out = mustRun(t, "contact", "list", "--filter", "warm")
	assert.Contains(t, out, "Sam Rivera")
	assert.NotContains(t, out, "Alex")

	out = mustRun(t, "contact", "show", contactID)
	assert.Contains(t, out, "Sam Rivera")
	assert.Contains(t, out, "Cadence:    1 Month")
	assert.Contains(t, out, "Interactions (1):")
	assert.Contains(t, out, "Coffee, talked about hiring")

	out = mustRun(t, "contact", "edit", contactID, "--frequency", "3 Months", "--tone", "casual")
	assert.Contains(t, out, "✓ Contact updated: Sam Rivera")
	out = mustRun(t, "contact", "show", contactID)
	assert.Contains(t, out, "Cadence:    3 Months")
	assert.Contains(t, out, "Tone:       casual")

	mustRun(t, "contact", "delete", contactID)
	_, err := runCommand(t, "", "contact", "show", contactID)
	assert.ErrorContains(t, err, "not found")
}

func TestContactCommandValidation(t *testing.T) {
	setupTestCLI(t)

	_, err := runCommand(t, "", "contact", "add")
	assert.ErrorContains(t, err, "--name is required")

	_, err = runCommand(t, "", "contact", "add", "--name", "Sam", "--frequency", "weekly")
	assert.ErrorContains(t, err, "invalid --frequency")

	_, err = runCommand(t, "", "contact", "show", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid contact ID")

	out := mustRun(t, "contact", "list")
	assert.Contains(t, out, "No contacts found")
}

func TestEventCommands(t *testing.T) {
	setupTestCLI(t)

	contactID := createdIDs(t, mustRun(t, "contact", "add", "--name", "Sam"))[0]

	out := mustRun(t, "event", "add", contactID, "--notes", "Lunch downtown", "--date", "2025-04-01", "--tag", "lunch")
	eventID := createdIDs(t, out)[0]

	out = mustRun(t, "event", "list", contactID)
	assert.Contains(t, out, "2025-04-01")
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "pending")

	mustRun(t, "event", "edit", eventID, "--status", "done", "--summary", "Lunch, discussed a referral")
	out = mustRun(t, "event", "list", contactID)
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Lunch, discussed a referral")

	_, err := runCommand(t, "", "event", "edit", eventID, "--status", "maybe")
	assert.Error(t, err)

	mustRun(t, "event", "delete", eventID)
	out = mustRun(t, "event", "list", contactID)
	assert.Contains(t, out, "No interactions found")
}

func TestProfileCommands(t *testing.T) {
	proxy := setupTestCLI(t)

	out := mustRun(t, "profile", "show")
	assert.Contains(t, out, "No profile yet")

	proxy.setAnswer("**Background**\n\n1. Engineer")
	mustRun(t, "profile", "set", "--name", "Ada", "--background", "I build things. ada@example.com", "--tone", "sincere", "--summarize")

	req := proxy.lastRequest()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, chat.RoleSystem, req.Messages[0].Role)
	assert.NotContains(t, req.Messages[1].Content, "ada@example.com")

	out = mustRun(t, "profile", "show")
	assert.Contains(t, out, "Name:         Ada")
	assert.Contains(t, out, "Tone:         sincere")
	assert.Contains(t, out, "**Background**")
}

func TestContextAndDraftCommands(t *testing.T) {
	proxy := setupTestCLI(t)

	mustRun(t, "profile", "set", "--name", "Ada", "--background", "Engineer exploring health tech")
	ids := createdIDs(t, mustRun(t, "contact", "add", "--name", "Sam", "--info", "Reach me at sam@example.com",
		"--notes", "Talked about AI in healthcare", "--date", "2025-05-02"))
	contactID, eventID := ids[0], ids[1]

	out := mustRun(t, "context", contactID, eventID, "--tone", "casual")
	assert.Contains(t, out, "[USER_PROFILE_SUMMARY]\nEngineer exploring health tech")
	assert.Contains(t, out, "Name: Sam")
	assert.Contains(t, out, "[TONE]\ncasual")
	assert.NotContains(t, out, "sam@example.com")

	out = mustRun(t, "draft", contactID, eventID, "-m", "Thank them and suggest a call")
	assert.Equal(t, "Hi Sam, great to meet you!\n", out)

	req := proxy.lastRequest()
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "Thank them and suggest a call", req.Messages[2].Content)
	assert.Equal(t, config.DefaultOpenAIModel, req.Model)
	assert.Equal(t, config.DefaultTemperature, req.Temperature)

	_, err := runCommand(t, "", "draft", contactID, eventID)
	assert.ErrorContains(t, err, "--message is required")

	_, err = runCommand(t, "", "draft", contactID, eventID, "--tone", "shouty", "-m", "hi")
	assert.ErrorContains(t, err, "invalid --tone")
}

func TestContextAndDraftUseContactTone(t *testing.T) {
	proxy := setupTestCLI(t)

	mustRun(t, "profile", "set", "--name", "Ada", "--tone", "sincere")
	ids := createdIDs(t, mustRun(t, "contact", "add", "--name", "Sam", "--tone", "casual", "--notes", "Coffee"))

	out := mustRun(t, "context", ids[0], ids[1])
	assert.Contains(t, out, "[TONE]\ncasual")

	mustRun(t, "draft", ids[0], ids[1], "-m", "Say thanks")
	req := proxy.lastRequest()
	require.Len(t, req.Messages, 3)
	assert.True(t, strings.HasSuffix(req.Messages[1].Content, "[TONE]\ncasual"))
}

func TestDraftOpensChatWindowInTerminal(t *testing.T) {
	setupTestCLI(t)
	ids := createdIDs(t, mustRun(t, "contact", "add", "--name", "Sam", "--notes", "Coffee"))

	var launched tea.Model
	a := newApp()
	a.isTerminal = func() bool { return true }
	a.runTUI = func(_ context.Context, m tea.Model) error {
		launched = m
		return nil
	}
	defer a.close()

	cmd := newRootCommand(a, "test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"draft", ids[0], ids[1]})
	require.NoError(t, cmd.Execute())
	require.NotNil(t, launched)
	assert.Contains(t, launched.View(), "Draft a follow-up")
}

func TestSummarizeInteractionFromStdin(t *testing.T) {
	proxy := setupTestCLI(t)

	summary, err := json.Marshal(map[string]string{
		"contact_short": "Product lead",
		"contact":       "**Background**\n\n1. Health startup",
		"event_short":   "Coffee chat",
		"event":         "**Topics**\n\n1. Hiring",
	})
	require.NoError(t, err)
	proxy.setAnswer("```json\n" + string(summary) + "\n```")

	out, err := runCommand(t, "Met Sam for coffee, call 415-555-0100", "summarize", "interaction")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact: Product lead")
	assert.Contains(t, out, "Interaction: Coffee chat")
	assert.NotContains(t, proxy.lastRequest().Messages[len(proxy.lastRequest().Messages)-1].Content, "555-0100")

	_, err = runCommand(t, "   ", "summarize", "background")
	assert.ErrorContains(t, err, "no text given")
}

func TestRootWithoutTerminalPrintsHelp(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t)
	assert.Contains(t, out, "nudge keeps a local record")
	assert.Contains(t, out, "serve")
}

func TestServeHelpDescribesModelAllowList(t *testing.T) {
	setupTestCLI(t)

	out := mustRun(t, "serve", "--help")
	assert.Contains(t, out, "ALLOWED_MODELS")
	assert.Contains(t, out, "only MODEL is\naccepted")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	setupTestCLI(t)

	a := newApp()
	require.NoError(t, a.init())
	defer a.close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.serve(ctx, ln, provider.Func(func(context.Context, provider.Request) (string, error) {
			return "ok", nil
		}))
	}()

	url := "http://" + ln.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger("loud")
	assert.Error(t, err)

	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
