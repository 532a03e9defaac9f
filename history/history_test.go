package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: create a test run store
func createTestRunStore(t *testing.T) *RunStore {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewRunStore(dbPath)
	require.NoError(t, err, "should create run store")
	t.Cleanup(func() { store.Close() })
	return store
}

// Test helper: record a run started at the given offset from base
func recordRun(t *testing.T, store *RunStore, base time.Time, offset time.Duration, outcome string) uuid.UUID {
	started := base.Add(offset)
	id, err := store.Record(Run{
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Outcome:    outcome,
		Scraped:    10,
		Inserted:   4,
		Updated:    5,
		Skipped:    1,
	})
	require.NoError(t, err)
	return id
}

var testBase = time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC)

// TestRecord_AssignsID verifies a nil run ID is replaced
func TestRecord_AssignsID(t *testing.T) {
	store := createTestRunStore(t)

	id := recordRun(t, store, testBase, 0, "ok")
	assert.NotEqual(t, uuid.Nil, id)

	run, err := store.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, id, run.RunID)
	assert.Equal(t, "ok", run.Outcome)
	assert.Equal(t, 10, run.Scraped)
	assert.Equal(t, 4, run.Inserted)
	assert.Equal(t, 5, run.Updated)
	assert.Equal(t, 1, run.Skipped)
	assert.True(t, testBase.Equal(run.StartedAt))
	assert.Equal(t, 2*time.Second, run.Duration())
	assert.Nil(t, run.Error)
}

// TestRecord_KeepsError verifies failure messages are stored
func TestRecord_KeepsError(t *testing.T) {
	store := createTestRunStore(t)

	id, err := store.Record(Run{
		RunID:      uuid.New(),
		StartedAt:  testBase,
		FinishedAt: testBase,
		Outcome:    "insert_failed",
		Error:      ErrorString(errors.New("quota exceeded")),
	})
	require.NoError(t, err)

	run, err := store.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, run.Error)
	assert.Equal(t, "quota exceeded", *run.Error)
}

func TestRecord_DuplicateID(t *testing.T) {
	store := createTestRunStore(t)
	run := Run{RunID: uuid.New(), StartedAt: testBase, FinishedAt: testBase, Outcome: "ok"}

	_, err := store.Record(run)
	require.NoError(t, err)
	_, err = store.Record(run)
	assert.Error(t, err)
}

// TestGetRun_NotFound verifies the sentinel error
func TestGetRun_NotFound(t *testing.T) {
	store := createTestRunStore(t)

	_, err := store.GetRun(uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestListRuns verifies ordering and filtering
func TestListRuns(t *testing.T) {
	store := createTestRunStore(t)
	first := recordRun(t, store, testBase, 0, "ok")
	second := recordRun(t, store, testBase, time.Hour, "update_failed")
	third := recordRun(t, store, testBase, 2*time.Hour, "ok")

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []uuid.UUID{third, second, first}, []uuid.UUID{runs[0].RunID, runs[1].RunID, runs[2].RunID})

	outcome := "ok"
	runs, err = store.ListRuns(RunFilter{Outcome: &outcome})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = store.ListRuns(RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second, runs[0].RunID)
}

// TestListRuns_SubSecondOrder verifies runs within one second sort by
// start time, whole seconds included
func TestListRuns_SubSecondOrder(t *testing.T) {
	store := createTestRunStore(t)
	later := recordRun(t, store, testBase, 500*time.Millisecond, "ok")
	whole := recordRun(t, store, testBase, 0, "ok")
	latest := recordRun(t, store, testBase, time.Second, "ok")

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []uuid.UUID{latest, later, whole}, []uuid.UUID{runs[0].RunID, runs[1].RunID, runs[2].RunID})
	assert.True(t, testBase.Add(500*time.Millisecond).Equal(runs[1].StartedAt))
}

// TestListRuns_SameStart verifies the most recently recorded run comes
// first when start times tie
func TestListRuns_SameStart(t *testing.T) {
	store := createTestRunStore(t)
	first := recordRun(t, store, testBase, 0, "ok")
	second := recordRun(t, store, testBase, 0, "ok")

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].RunID)
	assert.Equal(t, first, runs[1].RunID)
}

func TestFormatTime_FixedWidth(t *testing.T) {
	assert.Equal(t, "2024-06-10T02:00:00.000000000Z", formatTime(testBase))
	assert.Equal(t, "2024-06-10T02:00:00.500000000Z", formatTime(testBase.Add(500*time.Millisecond)))
	assert.True(t, testBase.Equal(parseTime(formatTime(testBase))))
}

// TestCountRuns verifies counts ignore paging but honour the outcome
func TestCountRuns(t *testing.T) {
	store := createTestRunStore(t)
	recordRun(t, store, testBase, 0, "ok")
	recordRun(t, store, testBase, time.Hour, "update_failed")
	recordRun(t, store, testBase, 2*time.Hour, "ok")

	total, err := store.CountRuns(RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	outcome := "ok"
	total, err = store.CountRuns(RunFilter{Outcome: &outcome})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestListRuns_Empty(t *testing.T) {
	store := createTestRunStore(t)

	runs, err := store.ListRuns(RunFilter{})
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestErrorString(t *testing.T) {
	assert.Nil(t, ErrorString(nil))
	assert.Equal(t, "boom", *ErrorString(errors.New("boom\n")))
}

// Test helper: create a test router backed by a fresh store
func setupTestRouter(t *testing.T) (*gin.Engine, *RunStore) {
	store := createTestRunStore(t)
	return NewAPIServer(store).SetupRouter(), store
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandleListRuns verifies the list endpoint and its filters
func TestHandleListRuns(t *testing.T) {
	router, store := setupTestRouter(t)
	recordRun(t, store, testBase, 0, "ok")
	recordRun(t, store, testBase, time.Hour, "scrape_failed")

	w := serve(router, http.MethodGet, "/api/v1/runs")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "scrape_failed", resp.Runs[0].Outcome)

	w = serve(router, http.MethodGet, "/api/v1/runs?outcome=ok")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	w = serve(router, http.MethodGet, "/api/v1/runs?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	resp = ListRunsResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)
	assert.Equal(t, 2, resp.Total, "total counts every matching run, not the page")
}

func TestHandleListRuns_InvalidParams(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, path := range []string{"/api/v1/runs?limit=0", "/api/v1/runs?limit=abc", "/api/v1/runs?offset=-1"} {
		w := serve(router, http.MethodGet, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "validation_error")
	}
}

// TestHandleGetRun verifies lookup, bad IDs and unknown IDs
func TestHandleGetRun(t *testing.T) {
	router, store := setupTestRouter(t)
	id := recordRun(t, store, testBase, 0, "ok")

	w := serve(router, http.MethodGet, "/api/v1/runs/"+id.String())
	require.Equal(t, http.StatusOK, w.Code)

	var run Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, id, run.RunID)

	w = serve(router, http.MethodGet, "/api/v1/runs/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodGet, "/api/v1/runs/"+uuid.New().String())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestHealthz(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := serve(router, http.MethodOptions, "/api/v1/runs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
