package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager/internal/auth"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testDBCounter atomic.Int64

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	files, err := service.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	server := NewServer(
		service.NewEmployeeService(employeeRepo, tokens),
		service.NewTaskService(db, taskRepo, subtaskRepo, commentRepo, employeeRepo, files),
		service.NewSubtaskService(db, subtaskRepo, taskRepo, commentRepo, files),
		service.NewCommentService(db, commentRepo, taskRepo, subtaskRepo, employeeRepo),
		files,
		tokens,
		employeeRepo,
	)
	return server.Routes()
}

// doJSON performs a JSON request and decodes the response body into out when
// out is non-nil.
func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s response: %v\nbody: %s", method, path, err, rec.Body.String())
		}
	}
	return rec
}

// registerAndLogin creates an account and returns its row id and a token.
func registerAndLogin(t *testing.T, engine *gin.Engine, employeeID, role string) (uint, string) {
	t.Helper()

	var created struct {
		ID uint `json:"id"`
	}
	rec := doJSON(t, engine, http.MethodPost, "/employees", "", gin.H{
		"employeeId": employeeID,
		"name":       "Employee " + employeeID,
		"password":   "p",
		"role":       role,
		"department": "Eng",
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", employeeID, rec.Code, rec.Body.String())
	}

	var login struct {
		Token string `json:"token"`
	}
	rec = doJSON(t, engine, http.MethodPost, "/employees/login", "", gin.H{
		"employeeId": employeeID,
		"password":   "p",
	}, &login)
	if rec.Code != http.StatusOK || login.Token == "" {
		t.Fatalf("login %s: status %d, body %s", employeeID, rec.Code, rec.Body.String())
	}
	return created.ID, login.Token
}

func TestLoginScenario(t *testing.T) {
	engine := newTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/employees", "", gin.H{
		"employeeId": "E1", "name": "E One", "password": "p", "department": "Eng",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Error("register response leaks the password field")
	}

	var login struct {
		Token string `json:"token"`
	}
	rec = doJSON(t, engine, http.MethodPost, "/employees/login", "", gin.H{
		"employeeId": "E1", "password": "p",
	}, &login)
	if rec.Code != http.StatusOK || login.Token == "" {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/employees/login", "", gin.H{
		"employeeId": "E1", "password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", rec.Code)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	engine := newTestServer(t)
	registerAndLogin(t, engine, "E1", "")

	rec := doJSON(t, engine, http.MethodPost, "/employees", "", gin.H{
		"employeeId": "E1", "name": "Again", "password": "q", "department": "Eng",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status %d, want 400", rec.Code)
	}
}

func TestAuthGate(t *testing.T) {
	engine := newTestServer(t)
	_, token := registerAndLogin(t, engine, "E1", "")

	rec := doJSON(t, engine, http.MethodGet, "/tasks", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/tasks", "garbage", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/tasks", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status %d, want 200", rec.Code)
	}
}

func TestEmployeeListRequiresAdmin(t *testing.T) {
	engine := newTestServer(t)
	_, adminToken := registerAndLogin(t, engine, "A1", "Admin")
	_, userToken := registerAndLogin(t, engine, "U1", "")

	rec := doJSON(t, engine, http.MethodGet, "/employees", userToken, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("user list: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/employees", adminToken, nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin list: status %d, want 200", rec.Code)
	}
}

func TestSubtaskUserPropagationScenario(t *testing.T) {
	engine := newTestServer(t)
	_, token := registerAndLogin(t, engine, "C1", "")
	u1, _ := registerAndLogin(t, engine, "U1", "")
	u2, _ := registerAndLogin(t, engine, "U2", "")

	var task struct {
		ID uint `json:"id"`
	}
	rec := doJSON(t, engine, http.MethodPost, "/tasks", token, gin.H{
		"title": "T1", "users": []uint{u1},
	}, &task)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/subtasks", token, gin.H{
		"taskId": task.ID, "title": "S1", "users": []uint{u2},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subtask: status %d, body %s", rec.Code, rec.Body.String())
	}

	var fetched struct {
		Users []struct {
			ID uint `json:"id"`
		} `json:"users"`
	}
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), token, nil, &fetched)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task: status %d, body %s", rec.Code, rec.Body.String())
	}
	got := map[uint]bool{}
	for _, u := range fetched.Users {
		got[u.ID] = true
	}
	if !got[u1] || !got[u2] {
		t.Errorf("task users = %v, want both %d and %d", fetched.Users, u1, u2)
	}
}

func TestCommentLifecycleScenario(t *testing.T) {
	engine := newTestServer(t)
	_, token := registerAndLogin(t, engine, "C1", "")

	var task struct {
		ID uint `json:"id"`
	}
	doJSON(t, engine, http.MethodPost, "/tasks", token, gin.H{"title": "T1"}, &task)

	var comment struct {
		ID uint `json:"id"`
	}
	rec := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/tasks/%d/comments", task.ID), token, gin.H{
		"message": "hello",
	}, &comment)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d, body %s", rec.Code, rec.Body.String())
	}

	var list []json.RawMessage
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/tasks/%d/comments", task.ID), token, nil, &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list comments: status %d, len %d, body %s", rec.Code, len(list), rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/comments/%d", comment.ID), token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete comment: status %d, body %s", rec.Code, rec.Body.String())
	}

	list = nil
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/tasks/%d/comments", task.ID), token, nil, &list)
	if rec.Code != http.StatusOK || len(list) != 0 {
		t.Errorf("after delete: status %d, len %d", rec.Code, len(list))
	}
}

func TestTaskDeleteCascadesOverHTTP(t *testing.T) {
	engine := newTestServer(t)
	_, token := registerAndLogin(t, engine, "C1", "")

	var task struct {
		ID uint `json:"id"`
	}
	doJSON(t, engine, http.MethodPost, "/tasks", token, gin.H{"title": "T1"}, &task)

	var subtask struct {
		ID uint `json:"id"`
	}
	doJSON(t, engine, http.MethodPost, "/subtasks", token, gin.H{"taskId": task.ID, "title": "S1"}, &subtask)

	rec := doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete task: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), token, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted task: status %d, want 404", rec.Code)
	}
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/subtasks/%d", subtask.ID), token, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get cascaded subtask: status %d, want 404", rec.Code)
	}
}
