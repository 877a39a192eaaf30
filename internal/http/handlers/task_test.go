package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, client *http.Client, base, title string) map[string]any {
	t.Helper()
	res := do(t, client, http.MethodPost, base+"/tasks", gin.H{"title": title})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return decodeObj(t, res)
}

func TestTasksRequireSession(t *testing.T) {
	srv, _ := newTestServer(t)

	res := do(t, http.DefaultClient, http.MethodGet, srv.URL+"/tasks", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, "NO_TOKEN", decodeObj(t, res)["code"])

	res = do(t, http.DefaultClient, http.MethodPost, srv.URL+"/tasks", gin.H{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, "NO_TOKEN", decodeObj(t, res)["code"])
}

func TestCreateTaskValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	for _, body := range []gin.H{
		{},
		{"title": ""},
		{"title": "   "},
	} {
		res := do(t, client, http.MethodPost, srv.URL+"/tasks", body)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.Equal(t, "Title is required", decodeObj(t, res)["message"])
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	user := registerUser(t, client, srv.URL, "a@x.com")["user"].(map[string]any)

	task := createTask(t, client, srv.URL, "Buy milk")
	require.Equal(t, "Buy milk", task["title"])
	require.Equal(t, false, task["completed"])
	// owner comes from the session, not the payload
	require.Equal(t, user["id"], task["ownerId"])
}

func TestOwnerCannotBeChosenByClient(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	user := registerUser(t, client, srv.URL, "a@x.com")["user"].(map[string]any)

	res := do(t, client, http.MethodPost, srv.URL+"/tasks", gin.H{
		"title": "sneaky", "ownerId": 999,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, user["id"], decodeObj(t, res)["ownerId"])
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	srv, h := newTestServer(t)

	alice := newBrowser(t)
	registerUser(t, alice, srv.URL, "a@x.com")
	task := createTask(t, alice, srv.URL, "Alice's task")
	id := int64(task["id"].(float64))

	bob := newBrowser(t)
	registerUser(t, bob, srv.URL, "b@x.com")

	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, fmt.Sprintf("/tasks/%d", id), gin.H{"title": "hijacked"}},
		{http.MethodPatch, fmt.Sprintf("/tasks/%d/toggle", id), nil},
		{http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil},
	}
	for _, p := range paths {
		res := do(t, bob, p.method, srv.URL+p.path, p.body)
		require.Equal(t, http.StatusNotFound, res.StatusCode, "%s %s", p.method, p.path)
		decodeObj(t, res)
	}

	// the task is unmodified and still Alice's
	stored := h.Tasks.(*fakeTasks).get(id)
	require.NotNil(t, stored)
	require.Equal(t, "Alice's task", stored.Title)
	require.False(t, stored.Completed)
}

func TestUpdateIsPartial(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	res := do(t, client, http.MethodPost, srv.URL+"/tasks", gin.H{
		"title": "Original", "description": "keep me",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	task := decodeObj(t, res)
	id := int64(task["id"].(float64))

	// only the title changes; description survives
	res = do(t, client, http.MethodPut, fmt.Sprintf("%s/tasks/%d", srv.URL, id), gin.H{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	updated := decodeObj(t, res)
	require.Equal(t, "Renamed", updated["title"])
	require.Equal(t, "keep me", updated["description"])

	// a provided-but-blank title is rejected
	res = do(t, client, http.MethodPut, fmt.Sprintf("%s/tasks/%d", srv.URL, id), gin.H{
		"title": "  ",
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	decodeObj(t, res)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	task := createTask(t, client, srv.URL, "flip me")
	id := int64(task["id"].(float64))
	url := fmt.Sprintf("%s/tasks/%d/toggle", srv.URL, id)

	res := do(t, client, http.MethodPatch, url, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, decodeObj(t, res)["completed"])

	res = do(t, client, http.MethodPatch, url, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, false, decodeObj(t, res)["completed"])
}

func TestListFilterAndOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	createTask(t, client, srv.URL, "first")
	second := createTask(t, client, srv.URL, "second")
	createTask(t, client, srv.URL, "third")

	// complete the middle one
	res := do(t, client, http.MethodPatch,
		fmt.Sprintf("%s/tasks/%v/toggle", srv.URL, second["id"]), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decodeObj(t, res)

	titles := func(list []map[string]any) []string {
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = item["title"].(string)
		}
		return out
	}

	res = do(t, client, http.MethodGet, srv.URL+"/tasks?status=pending", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, []string{"third", "first"}, titles(decodeList(t, res)))

	res = do(t, client, http.MethodGet, srv.URL+"/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, []string{"second"}, titles(decodeList(t, res)))

	// no filter and status=all both return everything, newest first
	for _, q := range []string{"", "?status=all"} {
		res = do(t, client, http.MethodGet, srv.URL+"/tasks"+q, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, []string{"third", "second", "first"}, titles(decodeList(t, res)))
	}
}

func TestDeleteTask(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	task := createTask(t, client, srv.URL, "remove me")
	url := fmt.Sprintf("%s/tasks/%v", srv.URL, task["id"])

	res := do(t, client, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, decodeObj(t, res)["success"])

	// gone now
	res = do(t, client, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	decodeObj(t, res)
}

func TestInvalidTaskID(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)
	registerUser(t, client, srv.URL, "a@x.com")

	res := do(t, client, http.MethodPatch, srv.URL+"/tasks/abc/toggle", nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	decodeObj(t, res)
}

// End-to-end walk: register, create, toggle, filter.
func TestRegisterCreateToggleFilterScenario(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newBrowser(t)

	res := do(t, client, http.MethodPost, srv.URL+"/auth/register", gin.H{
		"email": "a@x.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NotNil(t, sessionCookie(res))
	decodeObj(t, res)

	task := createTask(t, client, srv.URL, "Buy milk")
	require.Equal(t, false, task["completed"])

	res = do(t, client, http.MethodPatch,
		fmt.Sprintf("%s/tasks/%v/toggle", srv.URL, task["id"]), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, decodeObj(t, res)["completed"])

	res = do(t, client, http.MethodGet, srv.URL+"/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	list := decodeList(t, res)
	require.Len(t, list, 1)
	require.Equal(t, "Buy milk", list[0]["title"])
}
