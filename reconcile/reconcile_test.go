package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/banknews/classify"
	"github.com/pevans/banknews/scraper"
	"github.com/pevans/banknews/sheet"
)

var wib = time.FixedZone("WIB", 7*60*60)

// 2024-06-10 09:00:00 in UTC+7
var testNow = time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC)

// Test helper: create an engine with the default lexicon
func createTestEngine() *Engine {
	return NewEngine(classify.NewClassifier(classify.NewLexicon(classify.DefaultNegativeKeywords, nil)), wib)
}

// Test helper: create an issuer matcher
func createTestIssuers(t *testing.T) *classify.IssuerMatcher {
	m := classify.NewIssuerMap()
	m.Add("BBRI", "bri", "bank rakyat indonesia")
	m.Add("BMRI", "mandiri")
	matcher, err := classify.NewIssuerMatcher(m)
	require.NoError(t, err)
	return matcher
}

func TestBuildIndex(t *testing.T) {
	index := BuildIndex([]string{"link", "https://a", "", "  ", "https://b ", "https://a"})

	assert.Len(t, index, 3)
	assert.Equal(t, 1, index["link"], "header occupies row 1")
	assert.Equal(t, 6, index["https://a"], "last duplicate wins")
	assert.Equal(t, 5, index["https://b"])

	row, ok := index.Lookup(" https://b")
	assert.True(t, ok)
	assert.Equal(t, 5, row)

	_, ok = index.Lookup("https://c")
	assert.False(t, ok)
}

func TestBuildIndex_Empty(t *testing.T) {
	assert.Empty(t, BuildIndex(nil))
}

// TestReconcile_NewArticle verifies a fresh article becomes a complete
// insert
func TestReconcile_NewArticle(t *testing.T) {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{{
		Title:       "BRI catat kerugian",
		Link:        "https://example.com/a",
		Source:      "Kontan",
		PublishedAt: "2024-03-31T20:00:00Z",
	}}, BuildIndex(nil), createTestIssuers(t), testNow)

	require.Len(t, plan.Inserts, 1)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Skipped)

	in := plan.Inserts[0]
	assert.Equal(t, "2024-06-10 09:00:00", in.FirstSeenAt)
	assert.Equal(t, in.FirstSeenAt, in.LastSeenAt)
	assert.Equal(t, "https://example.com/a", in.Article.Link)
	assert.Equal(t, "Kontan", in.Article.Source)
	assert.True(t, in.Article.IsNegative)
	assert.Equal(t, "kerugian", in.Article.NegKeyword)
	assert.Equal(t, "BBRI", in.Article.Symbol)
	require.NotNil(t, in.Article.Published)
	assert.Equal(t, "2024-04-01 03:00:00", in.Article.Published.String())
	assert.Equal(t, 2024, in.Article.Published.Year)
	assert.Equal(t, 2, in.Article.Published.Quarter)
}

// TestReconcile_ExistingLink verifies a known link only refreshes
// last-seen, published time and symbol
func TestReconcile_ExistingLink(t *testing.T) {
	links := []string{"link", "https://x/1", "https://x/2", "https://x/3", "L1"}
	index := BuildIndex(links)
	index["https://example.com/L1"] = 5

	plan := createTestEngine().Reconcile([]scraper.RawArticle{{
		Title:       "Bank X catat kerugian",
		Link:        "https://example.com/L1",
		PublishedAt: "2024-05-01T03:30:00Z",
	}}, index, createTestIssuers(t), testNow)

	assert.Empty(t, plan.Inserts)
	require.Len(t, plan.Updates, 1)

	u := plan.Updates[0]
	assert.Equal(t, 5, u.Row)

	cells := u.Cells(sheet.DefaultColumns())
	assert.Equal(t, []sheet.CellUpdate{
		{Address: "B5", Value: "2024-06-10 09:00:00"},
		{Address: "C5", Value: "2024-05-01 10:30:00"},
		{Address: "G5", Value: ""},
	}, cells, "first_seen, title, is_negative and neg_keyword are untouched")
}

// TestReconcile_UpdateWithoutTimestamp verifies an unparseable time does
// not clear the stored published time
func TestReconcile_UpdateWithoutTimestamp(t *testing.T) {
	index := LinkIndex{"https://example.com/a": 2}

	plan := createTestEngine().Reconcile([]scraper.RawArticle{{
		Title:       "Mandiri ekspansi",
		Link:        "https://example.com/a",
		PublishedAt: "3 jam lalu",
	}}, index, createTestIssuers(t), testNow)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, []sheet.CellUpdate{
		{Address: "B2", Value: "2024-06-10 09:00:00"},
		{Address: "G2", Value: "BMRI"},
	}, plan.Updates[0].Cells(sheet.DefaultColumns()))
}

// TestReconcile_Skips verifies missing and malformed fields are skipped
// without stopping the batch
func TestReconcile_Skips(t *testing.T) {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{
		{Title: "No link"},
		{Title: "Valid", Link: "https://example.com/ok"},
		{Title: "  ", Link: "https://example.com/no-title"},
		{Title: "Relative", Link: "/read/abc"},
		{Title: "Bad scheme", Link: "javascript:alert(1)"},
	}, BuildIndex(nil), createTestIssuers(t), testNow)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "https://example.com/ok", plan.Inserts[0].Article.Link)

	require.Len(t, plan.Skipped, 4)
	assert.Equal(t, Skip{Position: 0, Reason: ReasonMissingLink}, plan.Skipped[0])
	assert.Equal(t, ReasonMissingTitle, plan.Skipped[1].Reason)
	assert.Equal(t, ReasonInvalidLink, plan.Skipped[2].Reason)
	assert.Equal(t, ReasonInvalidLink, plan.Skipped[3].Reason)
	assert.Equal(t, 4, plan.Skipped[3].Position)
}

// TestReconcile_DuplicateInBatch verifies a link is inserted at most once
func TestReconcile_DuplicateInBatch(t *testing.T) {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{
		{Title: "First", Link: "https://example.com/dup"},
		{Title: "Second", Link: "https://example.com/dup"},
		{Title: "Known", Link: "https://example.com/known"},
		{Title: "Known again", Link: "https://example.com/known "},
	}, LinkIndex{"https://example.com/known": 3}, createTestIssuers(t), testNow)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "First", plan.Inserts[0].Article.Title)
	require.Len(t, plan.Updates, 1)
	require.Len(t, plan.Skipped, 2)
	assert.Equal(t, ReasonDuplicateLink, plan.Skipped[0].Reason)
	assert.Equal(t, ReasonDuplicateLink, plan.Skipped[1].Reason)
}

// TestReconcile_NoMatches verifies absent derived fields on insert
func TestReconcile_NoMatches(t *testing.T) {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{
		{Title: "Harga emas naik", Link: "https://example.com/gold"},
	}, BuildIndex(nil), createTestIssuers(t), testNow)

	require.Len(t, plan.Inserts, 1)
	a := plan.Inserts[0].Article
	assert.False(t, a.IsNegative)
	assert.Empty(t, a.NegKeyword)
	assert.Empty(t, a.Symbol)
	assert.Nil(t, a.Published)

	row := sheet.DefaultColumns().Row(plan.Inserts[0].Values())
	assert.Equal(t, []any{
		"2024-06-10 09:00:00", "2024-06-10 09:00:00", "", "", "", "",
		"", "Harga emas naik", false, "", "https://example.com/gold",
	}, row)
}

// TestReconcile_Idempotent verifies a second run over the same batch only
// refreshes the rows the first run inserted
func TestReconcile_Idempotent(t *testing.T) {
	engine := createTestEngine()
	issuers := createTestIssuers(t)
	batch := []scraper.RawArticle{
		{Title: "BRI rugi", Link: "https://example.com/1", PublishedAt: "2024-06-01T00:00:00Z"},
		{Title: "Mandiri laba", Link: "https://example.com/2"},
	}

	links := []string{"link"}
	first := engine.Reconcile(batch, BuildIndex(links), issuers, testNow)
	require.Len(t, first.Inserts, 2)
	for _, in := range first.Inserts {
		links = append(links, in.Article.Link)
	}

	second := engine.Reconcile(batch, BuildIndex(links), issuers, testNow.Add(time.Hour))
	assert.Empty(t, second.Inserts)
	require.Len(t, second.Updates, 2)
	assert.Equal(t, 2, second.Updates[0].Row)
	assert.Equal(t, 3, second.Updates[1].Row)
	assert.Equal(t, "2024-06-10 10:00:00", second.Updates[0].LastSeenAt)
	assert.Equal(t, "BBRI", second.Updates[0].Symbol)
	assert.Equal(t, "BMRI", second.Updates[1].Symbol)
}

// TestReconcile_NilCollaborators verifies an engine without classifier or
// issuers still plans writes
func TestReconcile_NilCollaborators(t *testing.T) {
	plan := NewEngine(nil, nil).Reconcile([]scraper.RawArticle{
		{Title: "kerugian", Link: "https://example.com/a"},
	}, nil, nil, testNow)

	require.Len(t, plan.Inserts, 1)
	assert.False(t, plan.Inserts[0].Article.IsNegative)
	assert.Equal(t, "2024-06-10 02:00:00", plan.Inserts[0].FirstSeenAt)
}

func TestPlan_Empty(t *testing.T) {
	assert.True(t, (&Plan{Skipped: []Skip{{Reason: ReasonMissingLink}}}).Empty())
	assert.False(t, (&Plan{Updates: []Update{{Row: 2}}}).Empty())
}

// fakeStore records calls and fails on demand.
type fakeStore struct {
	appendErr error
	updateErr error
	appended  [][]any
	after     int
	updated   []sheet.CellUpdate
	calls     []string
}

func (f *fakeStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	f.calls = append(f.calls, "read")
	return nil, nil
}

func (f *fakeStore) AppendRows(ctx context.Context, after int, rows [][]any) error {
	f.calls = append(f.calls, "append")
	f.after = after
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeStore) BatchUpdate(ctx context.Context, updates []sheet.CellUpdate) error {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, updates...)
	return nil
}

// Test helper: build a plan with one insert, one update and one skip
func createTestPlan(t *testing.T) *Plan {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{
		{Title: "New", Link: "https://example.com/new"},
		{Title: "Known", Link: "https://example.com/known", PublishedAt: "2024-01-01T00:00:00Z"},
		{Title: "Missing link"},
	}, LinkIndex{"https://example.com/known": 4}, createTestIssuers(t), testNow)
	plan.LastRow = 6

	require.Len(t, plan.Inserts, 1)
	require.Len(t, plan.Updates, 1)
	require.Len(t, plan.Skipped, 1)
	return plan
}

// TestExecute_InsertsThenUpdates verifies one append then one batch update
func TestExecute_InsertsThenUpdates(t *testing.T) {
	store := &fakeStore{}

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), createTestPlan(t), store)

	assert.Equal(t, Summary{Inserted: 1, Updated: 1, Skipped: 1, Outcome: OutcomeOK}, summary)
	assert.False(t, summary.Failed())
	assert.Equal(t, []string{"append", "update"}, store.calls)
	assert.Equal(t, 6, store.after, "inserts go directly below the rows the plan was built from")
	require.Len(t, store.appended, 1)
	assert.Len(t, store.appended[0], 11)
	assert.Equal(t, "https://example.com/new", store.appended[0][10])
	assert.Len(t, store.updated, 3)
}

// TestExecute_InsertFailureBlocksUpdates verifies updates are never sent
// after a failed append
func TestExecute_InsertFailureBlocksUpdates(t *testing.T) {
	storeErr := errors.New("quota exceeded")
	store := &fakeStore{appendErr: storeErr}

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), createTestPlan(t), store)

	assert.True(t, summary.Failed())
	assert.Equal(t, OutcomeInsertFailed, summary.Outcome)
	assert.ErrorIs(t, summary.Err, storeErr)
	assert.Zero(t, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Equal(t, 1, summary.Skipped, "skips are reported separately from the failure")
	assert.Equal(t, []string{"append"}, store.calls)
}

// TestExecute_UpdateFailureKeepsInserts verifies inserted rows are still
// counted when the update phase fails
func TestExecute_UpdateFailureKeepsInserts(t *testing.T) {
	storeErr := errors.New("backend error")
	store := &fakeStore{updateErr: storeErr}

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), createTestPlan(t), store)

	assert.Equal(t, OutcomeUpdateFailed, summary.Outcome)
	assert.ErrorIs(t, summary.Err, storeErr)
	assert.Equal(t, 1, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Len(t, store.appended, 1)
}

// TestExecute_UpdatesOnly verifies updates run when nothing is inserted
func TestExecute_UpdatesOnly(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("must not be called")}
	plan := &Plan{Updates: []Update{{Row: 2, LastSeenAt: "2024-06-10 09:00:00"}}}

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), plan, store)

	assert.Equal(t, OutcomeOK, summary.Outcome)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"update"}, store.calls)
}

// TestExecute_EmptyPlan verifies nothing is sent for an empty plan
func TestExecute_EmptyPlan(t *testing.T) {
	store := &fakeStore{}

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), &Plan{}, store)

	assert.Equal(t, Summary{Outcome: OutcomeOK}, summary)
	assert.Empty(t, store.calls)
}

// TestExecute_NewAndMissingLink verifies the one-new, one-invalid scenario
func TestExecute_NewAndMissingLink(t *testing.T) {
	plan := createTestEngine().Reconcile([]scraper.RawArticle{
		{Title: "Bank baru", Link: "https://example.com/new"},
		{Title: "Tanpa tautan"},
	}, BuildIndex([]string{"link"}), createTestIssuers(t), testNow)

	summary := NewExecutor(sheet.DefaultColumns()).Execute(context.Background(), plan, &fakeStore{})

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Updated)
}
