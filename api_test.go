package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/routes"
	"github.com/Pavitraraman/oneflow/utils"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	admin models.User
	mgr   models.User
	mem   models.User
	fin   models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	// Named shared in-memory database so gorm's pool sees one store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskEvent{},
		&models.Timesheet{},
		&models.FinancialEntry{},
		&models.FinancialDocument{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	router := routes.SetupRouter(db)

	admin := models.User{FirstName: "Ada", LastName: "Admin", WorkMail: "admin@example.com", Role: constants.RoleAdmin}
	mgr := models.User{FirstName: "Mona", LastName: "Manager", WorkMail: "manager@example.com", Role: constants.RoleProjectManager}
	mem := models.User{FirstName: "Milo", LastName: "Member", WorkMail: "member@example.com", Role: constants.RoleTeamMember}
	fin := models.User{FirstName: "Fay", LastName: "Finance", WorkMail: "finance@example.com", Role: constants.RoleFinance}

	for _, u := range []*models.User{&admin, &mgr, &mem, &fin} {
		h, err := utils.HashPassword("pass1234")
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.Password = h
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user %s: %v", u.WorkMail, err)
		}
	}

	return &testEnv{router: router, db: db, admin: admin, mgr: mgr, mem: mem, fin: fin}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, u models.User) map[string]string {
	t.Helper()
	tok, err := utils.GenerateJWT(u)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

func (env *testEnv) createProject(t *testing.T, name string) models.Project {
	t.Helper()
	w := doRequest(t, env.router, http.MethodPost, "/projects", map[string]any{"name": name}, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /projects status=%d body=%s", w.Code, w.Body.String())
	}
	var project models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	return project
}

func (env *testEnv) createTask(t *testing.T, projectID uint, title string) models.Task {
	t.Helper()
	body := map[string]any{"title": title, "project_id": projectID, "assignee_ids": []uint{env.mem.ID}}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", body, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.Status != constants.TaskStatusTodo {
		t.Fatalf("new task status=%s, want TODO", task.Status)
	}
	return task
}

type transitionResp struct {
	Outcome string      `json:"outcome"`
	Task    models.Task `json:"task"`
}

func (env *testEnv) move(t *testing.T, as models.User, taskID uint, target constants.TaskStatus) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, env.router, http.MethodPut, "/tasks/"+itoa(taskID)+"/status",
		map[string]any{"status": target}, bearerFor(t, as))
}

func TestAuth_SignupAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	signup := map[string]any{
		"first_name":       "New",
		"last_name":        "User",
		"work_mail":        "new@example.com",
		"password":         "pass1234",
		"confirm_password": "pass1234",
	}
	w := doRequest(t, env.router, http.MethodPost, "/auth/signup", signup, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup status=%d body=%s", w.Code, w.Body.String())
	}

	var created models.User
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal signup resp: %v", err)
	}
	if created.Role != constants.RoleTeamMember {
		t.Fatalf("default role=%s, want TEAM_MEMBER", created.Role)
	}

	login := map[string]any{"work_mail": "new@example.com", "password": "pass1234"}
	w = doRequest(t, env.router, http.MethodPost, "/auth/login", login, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login resp: %v", err)
	}
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Fatalf("expected access_token in response: %v", resp)
	}

	// Wrong password is a 401, not a 400.
	login["password"] = "nope"
	w = doRequest(t, env.router, http.MethodPost, "/auth/login", login, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d, want 401", w.Code)
	}
}

func TestUsers_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)

	w := doRequest(t, env.router, http.MethodGet, "/users", nil, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users as admin status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/users", nil, bearerFor(t, env.mgr))
	if w.Code != http.StatusForbidden {
		t.Fatalf("GET /users as manager expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/users", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /users unauthenticated expected 401 got=%d", w.Code)
	}

	upd := map[string]any{"role": "PROJECT_MANAGER"}
	w = doRequest(t, env.router, http.MethodPut, "/users/"+itoa(env.mem.ID), upd, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /users/:id as admin status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTransitions_PrivilegedRolesApplyDirectly(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Apollo")
	task := env.createTask(t, project.ID, "Design schema")

	for _, step := range []struct {
		as     models.User
		target constants.TaskStatus
	}{
		{env.admin, constants.TaskStatusInProgress},
		{env.mgr, constants.TaskStatusInReview},
		{env.admin, constants.TaskStatusDone},
	} {
		w := env.move(t, step.as, task.ID, step.target)
		if w.Code != http.StatusOK {
			t.Fatalf("move to %s status=%d body=%s", step.target, w.Code, w.Body.String())
		}
		var resp transitionResp
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal transition resp: %v", err)
		}
		if resp.Outcome != "applied" {
			t.Fatalf("outcome=%s, want applied", resp.Outcome)
		}
		if resp.Task.Status != step.target {
			t.Fatalf("task status=%s, want %s", resp.Task.Status, step.target)
		}
		if resp.Task.StatusRequest != nil {
			t.Fatalf("status_request=%v, want cleared", resp.Task.StatusRequest)
		}
	}

	// Each applied transition left an event row.
	var events int64
	env.db.Model(&models.TaskEvent{}).Where("task_id = ?", task.ID).Count(&events)
	if events != 3 {
		t.Fatalf("task events=%d, want 3", events)
	}
}

func TestTransitions_TeamMemberRequestAndApproval(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Borealis")
	task := env.createTask(t, project.ID, "Write docs")

	// Team member gets 202 Accepted: request recorded, status unchanged.
	w := env.move(t, env.mem, task.ID, constants.TaskStatusInProgress)
	if w.Code != http.StatusAccepted {
		t.Fatalf("member move status=%d body=%s, want 202", w.Code, w.Body.String())
	}
	var resp transitionResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome != "pending" {
		t.Fatalf("outcome=%s, want pending", resp.Outcome)
	}
	if resp.Task.Status != constants.TaskStatusTodo {
		t.Fatalf("status=%s, want TODO unchanged", resp.Task.Status)
	}
	if resp.Task.StatusRequest == nil || *resp.Task.StatusRequest != constants.TaskStatusInProgress {
		t.Fatalf("status_request=%v, want IN_PROGRESS", resp.Task.StatusRequest)
	}

	// Manager approves by attempting the recorded request.
	w = env.move(t, env.mgr, task.ID, constants.TaskStatusInProgress)
	if w.Code != http.StatusOK {
		t.Fatalf("approval status=%d body=%s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome != "applied" {
		t.Fatalf("outcome=%s, want applied", resp.Outcome)
	}
	if resp.Task.Status != constants.TaskStatusInProgress {
		t.Fatalf("status=%s, want IN_PROGRESS", resp.Task.Status)
	}
	if resp.Task.StatusRequest != nil {
		t.Fatalf("status_request=%v, want cleared by approval", resp.Task.StatusRequest)
	}
}

func TestTransitions_Rejections(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Calypso")
	task := env.createTask(t, project.ID, "Ship it")

	// Skipping a step is rejected.
	if w := env.move(t, env.admin, task.ID, constants.TaskStatusDone); w.Code != http.StatusBadRequest {
		t.Fatalf("skip status=%d, want 400", w.Code)
	}
	// Re-asserting the current status is rejected.
	if w := env.move(t, env.admin, task.ID, constants.TaskStatusTodo); w.Code != http.StatusBadRequest {
		t.Fatalf("no-op status=%d, want 400", w.Code)
	}
	// Finance is not a workflow role.
	if w := env.move(t, env.fin, task.ID, constants.TaskStatusInProgress); w.Code != http.StatusForbidden {
		t.Fatalf("finance move status=%d, want 403", w.Code)
	}
	// Unknown task.
	if w := env.move(t, env.admin, 9999, constants.TaskStatusInProgress); w.Code != http.StatusNotFound {
		t.Fatalf("unknown task status=%d, want 404", w.Code)
	}

	// March to DONE, then everything is rejected: terminal state.
	for _, target := range []constants.TaskStatus{
		constants.TaskStatusInProgress, constants.TaskStatusInReview, constants.TaskStatusDone,
	} {
		if w := env.move(t, env.admin, task.ID, target); w.Code != http.StatusOK {
			t.Fatalf("move to %s status=%d body=%s", target, w.Code, w.Body.String())
		}
	}
	for _, target := range []constants.TaskStatus{
		constants.TaskStatusTodo, constants.TaskStatusInProgress,
		constants.TaskStatusInReview, constants.TaskStatusDone,
	} {
		if w := env.move(t, env.admin, task.ID, target); w.Code != http.StatusBadRequest {
			t.Fatalf("move from DONE to %s status=%d, want 400", target, w.Code)
		}
	}
}

func TestTransitions_RepeatedCallDoesNotDoubleAdvance(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Dione")
	task := env.createTask(t, project.ID, "One step only")

	if w := env.move(t, env.admin, task.ID, constants.TaskStatusInProgress); w.Code != http.StatusOK {
		t.Fatalf("first move status=%d", w.Code)
	}
	// The identical second call is evaluated against the updated state.
	if w := env.move(t, env.admin, task.ID, constants.TaskStatusInProgress); w.Code != http.StatusBadRequest {
		t.Fatalf("second move status=%d, want 400", w.Code)
	}

	var got models.Task
	if err := env.db.First(&got, task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if got.Status != constants.TaskStatusInProgress {
		t.Fatalf("status=%s, want IN_PROGRESS (advanced exactly once)", got.Status)
	}
}

func TestTasks_ListIncludesProjectName(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Europa")
	env.createTask(t, project.ID, "A")
	env.createTask(t, project.ID, "B")

	w := doRequest(t, env.router, http.MethodGet,
		"/tasks?project_id="+itoa(project.ID)+"&include_project_name=true", nil, bearerFor(t, env.mem))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /tasks status=%d body=%s", w.Code, w.Body.String())
	}

	var tasks []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("unmarshal tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks=%d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.ProjectName != "Europa" {
			t.Fatalf("project_name=%q, want Europa", task.ProjectName)
		}
	}
	// Insertion order, not grouped by status.
	if tasks[0].Title != "A" || tasks[1].Title != "B" {
		t.Fatalf("order=%s,%s want A,B", tasks[0].Title, tasks[1].Title)
	}
}

func TestTasks_MemberCannotCreateOrDelete(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Fornax")

	body := map[string]any{"title": "nope", "project_id": project.ID}
	if w := doRequest(t, env.router, http.MethodPost, "/tasks", body, bearerFor(t, env.mem)); w.Code != http.StatusForbidden {
		t.Fatalf("member create status=%d, want 403", w.Code)
	}

	task := env.createTask(t, project.ID, "Keep me")
	if w := doRequest(t, env.router, http.MethodDelete, "/tasks/"+itoa(task.ID), nil, bearerFor(t, env.mem)); w.Code != http.StatusForbidden {
		t.Fatalf("member delete status=%d, want 403", w.Code)
	}
}

func TestTimesheets_AccumulateActualHours(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Gemini")
	task := env.createTask(t, project.ID, "Track me")

	for _, hours := range []float64{2.5, 1.5} {
		body := map[string]any{"task_id": task.ID, "hours": hours, "description": "work"}
		w := doRequest(t, env.router, http.MethodPost, "/timesheets", body, bearerFor(t, env.mem))
		if w.Code != http.StatusOK {
			t.Fatalf("POST /timesheets status=%d body=%s", w.Code, w.Body.String())
		}
	}

	var got models.Task
	if err := env.db.First(&got, task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if got.ActualHours != 4.0 {
		t.Fatalf("actual_hours=%v, want 4.0", got.ActualHours)
	}

	// Zero or negative hours are rejected.
	body := map[string]any{"task_id": task.ID, "hours": -1}
	if w := doRequest(t, env.router, http.MethodPost, "/timesheets", body, bearerFor(t, env.mem)); w.Code != http.StatusBadRequest {
		t.Fatalf("negative hours status=%d, want 400", w.Code)
	}

	// A member only sees their own entries.
	adminBody := map[string]any{"task_id": task.ID, "hours": 3}
	if w := doRequest(t, env.router, http.MethodPost, "/timesheets", adminBody, bearerFor(t, env.admin)); w.Code != http.StatusOK {
		t.Fatalf("admin timesheet status=%d", w.Code)
	}
	w := doRequest(t, env.router, http.MethodGet, "/timesheets", nil, bearerFor(t, env.mem))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /timesheets status=%d", w.Code)
	}
	var entries []models.Timesheet
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal entries: %v", err)
	}
	for _, e := range entries {
		if e.UserID != env.mem.ID {
			t.Fatalf("member sees entry of user %d", e.UserID)
		}
	}
	if len(entries) != 2 {
		t.Fatalf("member entries=%d, want 2", len(entries))
	}
}

func TestFinance_EntriesRollUpIntoProject(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Helios")

	entries := []map[string]any{
		{"entry_type": "REVENUE", "amount": 1000.0, "project_id": project.ID},
		{"entry_type": "COST", "amount": 400.0, "project_id": project.ID},
	}
	for _, body := range entries {
		w := doRequest(t, env.router, http.MethodPost, "/finance/entries", body, bearerFor(t, env.fin))
		if w.Code != http.StatusOK {
			t.Fatalf("POST /finance/entries status=%d body=%s", w.Code, w.Body.String())
		}
	}

	var got models.Project
	if err := env.db.First(&got, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if got.ActualRevenue != 1000 || got.ActualCost != 400 || got.Profit != 600 {
		t.Fatalf("revenue=%v cost=%v profit=%v, want 1000/400/600", got.ActualRevenue, got.ActualCost, got.Profit)
	}

	// Members cannot touch finance.
	body := map[string]any{"entry_type": "COST", "amount": 1.0, "project_id": project.ID}
	if w := doRequest(t, env.router, http.MethodPost, "/finance/entries", body, bearerFor(t, env.mem)); w.Code != http.StatusForbidden {
		t.Fatalf("member finance status=%d, want 403", w.Code)
	}
}

func TestStats_Dashboard(t *testing.T) {
	env := setupTestEnv(t)
	project := env.createProject(t, "Io")
	task := env.createTask(t, project.ID, "Count me")
	env.createTask(t, project.ID, "Me too")

	if w := env.move(t, env.admin, task.ID, constants.TaskStatusInProgress); w.Code != http.StatusOK {
		t.Fatalf("move status=%d", w.Code)
	}

	w := doRequest(t, env.router, http.MethodGet, "/stats/dashboard", nil, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /stats/dashboard status=%d body=%s", w.Code, w.Body.String())
	}

	var stats struct {
		TotalProjects int64            `json:"total_projects"`
		TotalTasks    int64            `json:"total_tasks"`
		TasksByStatus map[string]int64 `json:"tasks_by_status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.TotalProjects != 1 || stats.TotalTasks != 2 {
		t.Fatalf("projects=%d tasks=%d, want 1/2", stats.TotalProjects, stats.TotalTasks)
	}
	if stats.TasksByStatus["TODO"] != 1 || stats.TasksByStatus["IN_PROGRESS"] != 1 {
		t.Fatalf("tasks_by_status=%v", stats.TasksByStatus)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
