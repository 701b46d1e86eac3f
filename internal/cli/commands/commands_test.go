package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/apiclient"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/session"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// mockAPIServer answers like the FinTrack services and records every request
type mockAPIServer struct {
	mu       sync.Mutex
	requests []recordedRequest

	loginStatus   int
	expenseStatus int

	// pagedExpenses, when set, serves ids pagedExpenses..1 newest first,
	// honouring limit (default 10) and offset
	pagedExpenses int
}

func (m *mockAPIServer) writePage(w http.ResponseWriter, r *http.Request) {
	limit, offset := 10, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		offset = v
	}

	list := apiclient.ExpenseList{Expenses: []apiclient.Expense{}}
	for id := m.pagedExpenses - offset; id > 0 && len(list.Expenses) < limit; id-- {
		list.Expenses = append(list.Expenses, apiclient.Expense{ID: uint(id), Amount: 1, Category: "misc"})
	}
	_ = json.NewEncoder(w).Encode(list)
}

func (m *mockAPIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := new(bytes.Buffer)
	_, _ = body.ReadFrom(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body.String(),
	})
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/healthz":
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	case r.URL.Path == "/api/v1/users/login":
		if m.loginStatus != 0 {
			w.WriteHeader(m.loginStatus)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-123","user":{"id":1,"email":"ada@example.com","name":"Ada"}}`))
	case r.URL.Path == "/api/v1/users/register":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"tok-new","user":{"id":2,"email":"new@example.com","name":"New"}}`))
	case r.URL.Path == "/api/v1/expenses" && r.Method == http.MethodGet:
		if m.expenseStatus != 0 {
			w.WriteHeader(m.expenseStatus)
			_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
			return
		}
		if m.pagedExpenses != 0 {
			m.writePage(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"expenses":[
			{"id":7,"amount":12.5,"category":"groceries","description":"market","date":"2024-01-15T00:00:00Z"},
			{"id":9,"amount":3,"category":"coffee","date":"2024-01-16T00:00:00Z"}]}`))
	case r.URL.Path == "/api/v1/expenses" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":8,"amount":9.99,"category":"coffee"}`))
	case strings.HasPrefix(r.URL.Path, "/api/v1/expenses/"):
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	case r.URL.Path == "/api/v1/reports/monthly":
		_, _ = w.Write([]byte(`{"id":3,"type":"monthly","period":"2024-01","data":"{\"total_expenses\":15.5,\"expense_count\":2,\"categories\":{\"groceries\":12.5,\"coffee\":3}}"}`))
	case r.URL.Path == "/api/v1/reports":
		_, _ = w.Write([]byte(`{"reports":[{"id":3,"type":"monthly","period":"2024-01","data":"{\"total_expenses\":15.5,\"expense_count\":2}"}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *mockAPIServer) recorded() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

func configAt(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Services.Host = u.Hostname()
	cfg.Services.UserPort, cfg.Services.ExpensePort, cfg.Services.ReportPort = port, port, port
	cfg.Health.Host = u.Hostname()
	cfg.Health.UserPort, cfg.Health.ExpensePort, cfg.Health.ReportPort = port, port, port
	cfg.Health.Timeout = time.Second
	return cfg
}

// setupTestEnvironment starts a mock API and returns an Env pointed at it
func setupTestEnvironment(t *testing.T, api *mockAPIServer, sess session.Session) (*Env, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	out := new(bytes.Buffer)
	return &Env{
		Config: configAt(t, srv.URL),
		Logger: zerolog.Nop(),
		Store:  session.NewMemoryStore(sess),
		Out:    out,
	}, out
}

func loggedIn() session.Session {
	return session.Session{Token: "tok-123", User: `{"name":"Ada","email":"ada@example.com"}`}
}

func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	return cmd.ExecuteContext(context.Background())
}

func TestLogin_Success(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, session.Session{})

	err := execute(NewLoginCmd(env), "--email", "ada@example.com", "--password", "secret1")
	require.NoError(t, err)

	sess, _ := env.Store.Load(context.Background())
	assert.Equal(t, "tok-123", sess.Token)
	assert.Equal(t, "Ada", sess.DisplayName())
	assert.Contains(t, out.String(), "Login successful")
	assert.Contains(t, out.String(), "Ada (ada@example.com)")

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/v1/users/login", reqs[0].Path)
	assert.JSONEq(t, `{"email":"ada@example.com","password":"secret1"}`, reqs[0].Body)
}

func TestLogin_FromEnvironment(t *testing.T) {
	env, _ := setupTestEnvironment(t, &mockAPIServer{}, session.Session{})
	t.Setenv("FINTRACK_EMAIL", "ada@example.com")
	t.Setenv("FINTRACK_PASSWORD", "secret1")

	require.NoError(t, execute(NewLoginCmd(env)))

	sess, _ := env.Store.Load(context.Background())
	assert.True(t, sess.Authenticated())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env, out := setupTestEnvironment(t, &mockAPIServer{loginStatus: http.StatusUnauthorized}, loggedIn())

	err := execute(NewLoginCmd(env), "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")

	sess, _ := env.Store.Load(context.Background())
	assert.False(t, sess.Authenticated(), "a rejected login clears the previous session")
	assert.NotContains(t, out.String(), "fintrack login")
}

func TestLogin_InputErrors(t *testing.T) {
	t.Setenv("FINTRACK_EMAIL", "")
	t.Setenv("FINTRACK_PASSWORD", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing email", args: []string{"--password", "x"}, wantErr: "email is required"},
		{name: "non-interactive without password", args: []string{"--email", "ada@example.com"}, wantErr: "non-interactive mode"},
		{name: "malformed email", args: []string{"--email", "ada", "--password", "x"}, wantErr: "invalid login details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPIServer{}
			env, _ := setupTestEnvironment(t, api, session.Session{})

			err := execute(NewLoginCmd(env), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, api.recorded())
		})
	}
}

func TestLogin_ServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	cfg := configAt(t, srv.URL)
	srv.Close()

	env := &Env{Config: cfg, Logger: zerolog.Nop(), Store: session.NewMemoryStore(session.Session{}), Out: new(bytes.Buffer)}

	err := execute(NewLoginCmd(env), "--email", "ada@example.com", "--password", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrServiceUnavailable)
}

func TestRegister(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, session.Session{})

	err := execute(NewRegisterCmd(env), "--name", "New", "--email", "new@example.com", "--password", "secret1")
	require.NoError(t, err)

	sess, _ := env.Store.Load(context.Background())
	assert.Equal(t, "tok-new", sess.Token)
	assert.Contains(t, out.String(), "Welcome, New!")
}

func TestRegister_ShortPassword(t *testing.T) {
	api := &mockAPIServer{}
	env, _ := setupTestEnvironment(t, api, session.Session{})

	err := execute(NewRegisterCmd(env), "--name", "New", "--email", "new@example.com", "--password", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid registration details")
	assert.Empty(t, api.recorded())
}

func TestLogout(t *testing.T) {
	env, out := setupTestEnvironment(t, &mockAPIServer{}, loggedIn())

	require.NoError(t, execute(NewLogoutCmd(env)))

	sess, _ := env.Store.Load(context.Background())
	assert.Equal(t, session.Session{}, sess)
	assert.Contains(t, out.String(), "Logged out")
}

func TestStatus(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		env, out := setupTestEnvironment(t, &mockAPIServer{}, session.Session{})

		require.NoError(t, execute(NewStatusCmd(env)))
		assert.Contains(t, out.String(), "Not logged in")
	})

	t.Run("logged in with expiring token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("not-the-server-secret"))
		require.NoError(t, err)

		env, out := setupTestEnvironment(t, &mockAPIServer{}, session.Session{Token: token, User: `{"name":"Ada"}`})

		require.NoError(t, execute(NewStatusCmd(env)))
		assert.Contains(t, out.String(), "Logged in as Ada")
		assert.Contains(t, out.String(), "Token expires at")
	})

	t.Run("opaque token", func(t *testing.T) {
		env, out := setupTestEnvironment(t, &mockAPIServer{}, loggedIn())

		require.NoError(t, execute(NewStatusCmd(env)))
		assert.Contains(t, out.String(), "Logged in as Ada")
		assert.NotContains(t, out.String(), "Token")
	})
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "future", token: sign(jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), want: "Token expires at"},
		{name: "past", token: sign(jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), want: "Token expired at"},
		{name: "no exp", token: sign(jwt.MapClaims{"sub": "1"}), want: ""},
		{name: "not a jwt", token: "tok-123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenExpiry(session.Session{Token: tt.token, User: "{}"}, now)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.True(t, strings.HasPrefix(got, tt.want), got)
		})
	}
}

func TestExpensesList(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, loggedIn())

	require.NoError(t, execute(NewExpensesCmd(env), "ls", "--limit", "10"))

	output := out.String()
	assert.Contains(t, output, "groceries")
	assert.Contains(t, output, "12.50")
	assert.Contains(t, output, "TOTAL")
	assert.Contains(t, output, "15.50")

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "limit=10", reqs[0].Query)
	assert.Equal(t, "Bearer tok-123", reqs[0].Auth)
}

func TestExpensesList_RequiresLogin(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, session.Session{Token: "tok-123"})

	err := execute(NewExpensesCmd(env), "ls")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, api.recorded())
	assert.Contains(t, out.String(), "fintrack login")
}

func TestExpensesList_SessionRejected(t *testing.T) {
	env, out := setupTestEnvironment(t, &mockAPIServer{expenseStatus: http.StatusUnauthorized}, loggedIn())

	err := execute(NewExpensesCmd(env), "ls")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrSessionExpired)

	sess, _ := env.Store.Load(context.Background())
	assert.Equal(t, session.Session{}, sess)
	assert.Contains(t, out.String(), "Run 'fintrack login' to sign in")
}

func TestExpensesAdd(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, loggedIn())

	err := execute(NewExpensesCmd(env), "add", "--amount", "9.99", "--category", "coffee", "--date", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added expense #8")

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.Equal(t, 9.99, body["amount"])
	assert.Equal(t, "coffee", body["category"])
	assert.Equal(t, "2024-02-01", body["date"])
}

func TestExpensesAdd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad date", args: []string{"add", "--amount", "5", "--category", "food", "--date", "01/02/2024"}},
		{name: "non-positive amount", args: []string{"add", "--amount", "0", "--category", "food"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPIServer{}
			env, _ := setupTestEnvironment(t, api, loggedIn())

			err := execute(NewExpensesCmd(env), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid expense")
			assert.Empty(t, api.recorded())
		})
	}
}

func TestExpensesUpdate(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, loggedIn())

	err := execute(NewExpensesCmd(env), "update", "7", "--amount", "20", "--category", "groceries", "--date", "2024-01-15")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Updated expense #7")

	reqs := api.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/api/v1/expenses/7", reqs[0].Path)
}

func TestExpensesDelete(t *testing.T) {
	t.Run("confirmed with flag", func(t *testing.T) {
		api := &mockAPIServer{}
		env, out := setupTestEnvironment(t, api, loggedIn())

		require.NoError(t, execute(NewExpensesCmd(env), "rm", "7", "--yes"))
		assert.Contains(t, out.String(), "Deleted expense #7")

		reqs := api.recorded()
		require.Len(t, reqs, 2)
		assert.Equal(t, http.MethodDelete, reqs[1].Method)
		assert.Equal(t, "/api/v1/expenses/7", reqs[1].Path)
	})

	t.Run("unknown id", func(t *testing.T) {
		env, _ := setupTestEnvironment(t, &mockAPIServer{}, loggedIn())

		err := execute(NewExpensesCmd(env), "rm", "99", "--yes")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expense #99 not found")
	})

	t.Run("id beyond the first page", func(t *testing.T) {
		api := &mockAPIServer{pagedExpenses: 250}
		env, out := setupTestEnvironment(t, api, loggedIn())

		require.NoError(t, execute(NewExpensesCmd(env), "rm", "3", "--yes"))
		assert.Contains(t, out.String(), "Deleted expense #3")

		reqs := api.recorded()
		require.Len(t, reqs, 4)
		assert.Equal(t, "limit=100&offset=0", reqs[0].Query)
		assert.Equal(t, "limit=100&offset=100", reqs[1].Query)
		assert.Equal(t, "limit=100&offset=200", reqs[2].Query)
		assert.Equal(t, http.MethodDelete, reqs[3].Method)
		assert.Equal(t, "/api/v1/expenses/3", reqs[3].Path)
	})

	t.Run("id missing after the last page", func(t *testing.T) {
		api := &mockAPIServer{pagedExpenses: 200}
		env, _ := setupTestEnvironment(t, api, loggedIn())

		err := execute(NewExpensesCmd(env), "rm", "201", "--yes")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expense #201 not found")
		for _, r := range api.recorded() {
			assert.NotEqual(t, http.MethodDelete, r.Method)
		}
	})

	t.Run("no confirmation in non-interactive mode", func(t *testing.T) {
		api := &mockAPIServer{}
		env, _ := setupTestEnvironment(t, api, loggedIn())

		err := execute(NewExpensesCmd(env), "rm", "7")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "use --yes")
		for _, r := range api.recorded() {
			assert.NotEqual(t, http.MethodDelete, r.Method)
		}
	})

	t.Run("id required in non-interactive mode", func(t *testing.T) {
		env, _ := setupTestEnvironment(t, &mockAPIServer{}, loggedIn())

		err := execute(NewExpensesCmd(env), "rm", "--yes")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expense ID is required")
	})
}

func TestReportsList(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, loggedIn())

	require.NoError(t, execute(NewReportsCmd(env), "ls"))
	assert.Contains(t, out.String(), "2024-01")
	assert.Contains(t, out.String(), "15.50")
	assert.Equal(t, "type=monthly", api.recorded()[0].Query)
}

func TestReportsMonthly(t *testing.T) {
	api := &mockAPIServer{}
	env, out := setupTestEnvironment(t, api, loggedIn())

	require.NoError(t, execute(NewReportsCmd(env), "monthly", "--year", "2024", "--month", "1"))

	output := out.String()
	assert.Contains(t, output, "Report for 2024-01")
	assert.Contains(t, output, "Expenses: 2")
	assert.Less(t, strings.Index(output, "groceries"), strings.Index(output, "coffee"), "largest category first")
	assert.Equal(t, "month=1&year=2024", api.recorded()[0].Query)
}

func TestReportsMonthly_InvalidMonth(t *testing.T) {
	env, _ := setupTestEnvironment(t, &mockAPIServer{}, loggedIn())

	err := execute(NewReportsCmd(env), "monthly", "--month", "13")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid month")
}

func TestHealth(t *testing.T) {
	env, out := setupTestEnvironment(t, &mockAPIServer{}, session.Session{})

	require.NoError(t, execute(NewHealthCmd(env), "--strict"))

	output := out.String()
	assert.Contains(t, output, "SERVICE")
	assert.Contains(t, output, "User Service")
	assert.Contains(t, output, "Report Service")
	assert.Equal(t, 3, strings.Count(output, "healthy (200)"))
}

func TestHealth_StrictFailsWhenDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	cfg := configAt(t, srv.URL)
	srv.Close()

	out := new(bytes.Buffer)
	env := &Env{Config: cfg, Logger: zerolog.Nop(), Store: session.NewMemoryStore(session.Session{}), Out: out}

	err := execute(NewHealthCmd(env), "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 services are not healthy")
	assert.Contains(t, out.String(), "unreachable")
}

func TestHealth_InvalidWatchSchedule(t *testing.T) {
	env, _ := setupTestEnvironment(t, &mockAPIServer{}, session.Session{})

	err := execute(NewHealthCmd(env), "--watch", "--schedule", "whenever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid health schedule")
}
