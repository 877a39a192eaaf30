package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/http/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/internal/session"
	"tasktracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeUsers is an in-memory UserStore mirroring the repository contract,
// including its sentinel errors.
type fakeUsers struct {
	mu      sync.Mutex
	seq     int64
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	f.seq++
	u.ID = f.seq
	u.IsActive = true
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUsers) ClearLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLoginAt = nil
	}
	return nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeTasks is an in-memory TaskStore with the owner checks the SQL
// repository folds into its WHERE clauses.
type fakeTasks struct {
	mu    sync.Mutex
	seq   int64
	tasks map[int64]*domain.Task
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: make(map[int64]*domain.Task)}
}

func (f *fakeTasks) ListByOwner(_ context.Context, ownerID int64, status string) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Task{}
	for _, t := range f.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		switch status {
		case domain.StatusCompleted:
			if !t.Completed {
				continue
			}
		case domain.StatusPending:
			if t.Completed {
				continue
			}
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTasks) Create(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = f.seq
	// distinct, monotonically increasing creation times for ordering checks
	t.CreatedAt = time.Unix(1700000000+f.seq, 0)
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTasks) GetOwned(_ context.Context, id, ownerID int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Update(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.tasks[t.ID]
	if !ok || old.OwnerID != t.OwnerID {
		return repository.ErrNotFound
	}
	cp := *t
	cp.CreatedAt = old.CreatedAt
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTasks) ToggleCompleted(_ context.Context, id, ownerID int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) Delete(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTasks) get(id int64) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// newTestServer wires the real routes and middleware over fake stores.
func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("test-secret", time.Hour)
	session.Init(false, time.Hour)

	h := &Handler{
		Users:  newFakeUsers(),
		Tasks:  newFakeTasks(),
		Events: ws.NewHub(),
	}

	r := gin.New()
	requireAuth := middleware.Auth(h.Users)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/validate", requireAuth, h.Validate)
		auth.GET("/me", requireAuth, h.Me)
		auth.POST("/logout", requireAuth, h.Logout)
		auth.POST("/refresh", requireAuth, h.Refresh)
	}

	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id/toggle", h.ToggleTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	r.GET("/ws", h.TaskEvents(h.Events))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, h
}

// newBrowser returns a client that keeps session cookies like a browser.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := client.Do(req)
	require.NoError(t, err)
	return res
}

func decodeObj(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	return m
}

func decodeList(t *testing.T, res *http.Response) []map[string]any {
	t.Helper()
	defer res.Body.Close()
	var l []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&l))
	return l
}

func registerUser(t *testing.T, client *http.Client, base, email string) map[string]any {
	t.Helper()
	res := do(t, client, http.MethodPost, base+"/auth/register", gin.H{
		"name": "Tester", "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return decodeObj(t, res)
}
