package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-backend/model"
	"github.com/taskflow/taskflow-backend/store"
	"github.com/taskflow/taskflow-backend/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores standing in for mongo. Reads return copies, matching
// driver decode semantics, so handler-side mutation never leaks back.

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]model.User)}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Provider == "" {
		user.Provider = model.ProviderLocal
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ProviderID(provider) == providerID {
			copied := u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) Update(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) delete(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

type memTaskStore struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]model.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[primitive.ObjectID]model.Task)}
}

func (s *memTaskStore) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0)
	for _, task := range s.tasks {
		if task.User == owner {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *memTaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[id]; ok {
		copied := task
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *memTaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// testEnv wires the handlers against the in-memory stores with the
// production route layout.
type testEnv struct {
	router *gin.Engine
	users  *memUserStore
	tasks  *memTaskStore
	tokens *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newMemUserStore()
	tasks := newMemTaskStore()
	tokens := token.NewService("test-secret")
	gate := NewAuthGate(tokens, users)

	authHandler := NewAuthHandler(users, tokens)
	usersHandler := NewUsersHandler(users, tokens)
	tasksHandler := NewTasksHandler(tasks)

	router := gin.New()
	api := router.Group("/api")

	api.POST("/users/register", authHandler.RegisterHandler)
	api.POST("/users/login", authHandler.LoginHandler)

	me := api.Group("/users", gate.Handler())
	me.GET("/me", usersHandler.ProfileHandler)
	me.PUT("/me", usersHandler.UpdateProfileHandler)
	me.POST("/change-password", usersHandler.ChangePasswordHandler)

	taskRoutes := api.Group("/tasks", gate.Handler())
	taskRoutes.GET("", tasksHandler.ListTasksHandler)
	taskRoutes.POST("", tasksHandler.NewTaskHandler)
	taskRoutes.GET("/debug", tasksHandler.DebugHandler)
	taskRoutes.GET("/:id", tasksHandler.GetTaskHandler)
	taskRoutes.PUT("/:id", tasksHandler.UpdateTaskHandler)
	taskRoutes.DELETE("/:id", tasksHandler.DeleteTaskHandler)

	return &testEnv{router: router, users: users, tasks: tasks, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates a local account directly through the endpoint and
// returns the new user id.
func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["id"].(string)
}

// login returns the bearer token for existing credentials.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["token"].(string)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
