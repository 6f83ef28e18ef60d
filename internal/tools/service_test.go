package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
	"canvasEdMcp/internal/render"
	"canvasEdMcp/internal/upstream"
)

// fakeBackend serves canned responses keyed by request path and records every hit.
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	hits   []*http.Request
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r)
	route, ok := f.routes[r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	route(w, r)
}

func (f *fakeBackend) requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.hits...)
}

func jsonBody(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func status(code int) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}

type harness struct {
	svc    *Service
	canvas *fakeBackend
	ed     *fakeBackend
}

func backendConfig(t *testing.T, backend config.Backend, h http.Handler, prefix, token string) *config.BackendConfig {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &config.BackendConfig{
		Backend: backend,
		BaseURL: srv.URL + prefix,
		Token:   config.SensitiveString(token),
		Timeout: 2 * time.Second,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		canvas: &fakeBackend{routes: map[string]func(http.ResponseWriter, *http.Request){}},
		ed:     &fakeBackend{routes: map[string]func(http.ResponseWriter, *http.Request){}},
	}
	h.svc = NewService(
		upstream.NewClient(backendConfig(t, config.Canvas, h.canvas, "/api/v1", "canvas-token")),
		upstream.NewClient(backendConfig(t, config.Ed, h.ed, "/api", "ed-token")),
	)
	return h
}

func intPtr(n int) *int {
	return &n
}

func testContext() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
}

func prepared[T any, P interface {
	*T
	Input
}](t *testing.T, in T) T {
	t.Helper()
	require.NoError(t, Prepare(P(&in)))
	return in
}

func TestService_ListCourses(t *testing.T) {
	t.Run("Should render a single course and forward the paging query", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses"] = jsonBody(`[{"id":1,"name":"Intro","course_code":"INFO101"}]`)

		out, err := h.svc.ListCourses(testContext(), prepared(t, ListCoursesInput{Limit: intPtr(1)}))
		require.NoError(t, err)
		assert.Equal(t, "# My Canvas Courses\n\n*Total 1 courses*\n\n## 1. Intro\n- **Course Code**: INFO101\n- **Course ID**: 1\n", out)

		reqs := h.canvas.requests()
		require.Len(t, reqs, 1)
		q := reqs[0].URL.Query()
		assert.Equal(t, "active", q.Get("enrollment_state"))
		assert.Equal(t, "1", q.Get("per_page"))
		assert.Equal(t, []string{"term"}, q["include[]"])
		assert.Equal(t, "Bearer canvas-token", reqs[0].Header.Get("Authorization"))
	})

	t.Run("Should return the upstream document unchanged in json format", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses"] = jsonBody(`[{"name":"Café","id":7,"extra":{"nested":true}}]`)

		out, err := h.svc.ListCourses(testContext(), prepared(t, ListCoursesInput{Format: render.JSON}))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"Café","id":7,"extra":{"nested":true}}]`, out)
		assert.Contains(t, out, "Café")
	})

	t.Run("Should report an empty course list", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses"] = jsonBody(`[]`)

		out, err := h.svc.ListCourses(testContext(), prepared(t, ListCoursesInput{}))
		require.NoError(t, err)
		assert.Equal(t, "No Canvas courses found.", out)
	})

	t.Run("Should turn an authentication failure into an error line", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses"] = status(http.StatusUnauthorized)

		out, err := h.svc.ListCourses(testContext(), prepared(t, ListCoursesInput{}))
		require.NoError(t, err)
		assert.Equal(t, "Error: Canvas authentication failed. Please check if API token is valid.", out)
	})
}

func TestService_GetCourse(t *testing.T) {
	t.Run("Should request all includes and render teachers and syllabus", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses/42"] = jsonBody(`{
			"id": 42, "name": "Databases", "course_code": "DB1",
			"teachers": [{"display_name": "Ada"}, {"display_name": "Bob"}],
			"syllabus_body": "<p>Read &amp; write</p>"
		}`)

		out, err := h.svc.GetCourse(testContext(), prepared(t, GetCourseInput{CourseID: " 42 "}))
		require.NoError(t, err)
		assert.Contains(t, out, "# Databases\n")
		assert.Contains(t, out, "**Teachers**: Ada, Bob")
		assert.Contains(t, out, "## Syllabus\nRead & write")

		reqs := h.canvas.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t,
			[]string{"term", "teachers", "total_students", "syllabus_body"},
			reqs[0].URL.Query()["include[]"],
		)
	})

	t.Run("Should map a missing course to the not found message", func(t *testing.T) {
		h := newHarness(t)

		out, err := h.svc.GetCourse(testContext(), prepared(t, GetCourseInput{CourseID: "999"}))
		require.NoError(t, err)
		assert.Equal(t, "Error: Canvas resource not found. Please check if the ID is correct.", out)
	})
}

func TestService_ListAnnouncements(t *testing.T) {
	t.Run("Should use the course name looked up after the listing", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/announcements"] = jsonBody(`[{
			"title": "Welcome", "posted_at": "2024-03-01T10:00:00Z",
			"author": {"display_name": "Ada"},
			"message": "<p>See <a href=\"https://example.com/a\">this</a></p>"
		}]`)
		h.canvas.routes["/api/v1/courses/42"] = jsonBody(`{"id": 42, "name": "Databases"}`)

		out, err := h.svc.ListAnnouncements(testContext(), prepared(t, ListAnnouncementsInput{CourseID: "42"}))
		require.NoError(t, err)
		assert.Contains(t, out, "# Databases - Announcements\n")
		assert.Contains(t, out, "- **Posted by**: Ada")
		assert.Contains(t, out, "- **Posted at**: 2024-03-01 10:00")
		assert.Contains(t, out, "- **Links**: https://example.com/a")
		assert.Contains(t, out, "\nSee this\n")

		reqs := h.canvas.requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, []string{"course_42"}, reqs[0].URL.Query()["context_codes[]"])
		assert.Equal(t, "10", reqs[0].URL.Query().Get("per_page"))
		assert.Equal(t, "/api/v1/courses/42", reqs[1].URL.Path)
	})

	t.Run("Should fall back to the generic heading when the name lookup fails", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/announcements"] = jsonBody(`[]`)
		h.canvas.routes["/api/v1/courses/42"] = status(http.StatusForbidden)

		out, err := h.svc.ListAnnouncements(testContext(), prepared(t, ListAnnouncementsInput{CourseID: "42"}))
		require.NoError(t, err)
		assert.Equal(t, "No announcements.", out)
	})

	t.Run("Should skip the name lookup when the listing fails", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/announcements"] = status(http.StatusTooManyRequests)
		h.canvas.routes["/api/v1/courses/42"] = jsonBody(`{"name": "Databases"}`)

		out, err := h.svc.ListAnnouncements(testContext(), prepared(t, ListAnnouncementsInput{CourseID: "42"}))
		require.NoError(t, err)
		assert.Equal(t, "Error: Canvas request rate limit exceeded. Please try again later.", out)
		assert.Len(t, h.canvas.requests(), 1)
	})

	t.Run("Should skip the name lookup in json format", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/announcements"] = jsonBody(`[]`)

		out, err := h.svc.ListAnnouncements(testContext(), prepared(t, ListAnnouncementsInput{CourseID: "42", Format: render.JSON}))
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
		assert.Len(t, h.canvas.requests(), 1)
	})
}

func TestService_ListAssignments(t *testing.T) {
	t.Run("Should include submissions only when asked", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses/42/assignments"] = jsonBody(`[{
			"id": 5, "name": "Lab 1", "due_at": null, "points_possible": 10,
			"submission": {"workflow_state": "graded", "score": 9.5, "late": true}
		}]`)
		h.canvas.routes["/api/v1/courses/42"] = jsonBody(`{"name": "Databases"}`)

		out, err := h.svc.ListAssignments(testContext(), prepared(t, ListAssignmentsInput{CourseID: "42", IncludeSubmissions: true}))
		require.NoError(t, err)
		assert.Contains(t, out, "# Databases - Assignment List\n")
		assert.Contains(t, out, "- **Due Date**: Not set")
		assert.Contains(t, out, "- **Points**: 10")
		assert.Contains(t, out, "- **Submission**: graded, score 9.5, late")

		q := h.canvas.requests()[0].URL.Query()
		assert.Equal(t, []string{"submission"}, q["include[]"])
		assert.Equal(t, "due_at", q.Get("order_by"))
		assert.Equal(t, "20", q.Get("per_page"))
	})

	t.Run("Should omit the submission include by default", func(t *testing.T) {
		h := newHarness(t)
		h.canvas.routes["/api/v1/courses/42/assignments"] = jsonBody(`[]`)
		h.canvas.routes["/api/v1/courses/42"] = jsonBody(`{"name": "Databases"}`)

		out, err := h.svc.ListAssignments(testContext(), prepared(t, ListAssignmentsInput{CourseID: "42"}))
		require.NoError(t, err)
		assert.Equal(t, "Course Databases has no assignments.", out)
		assert.Empty(t, h.canvas.requests()[0].URL.Query()["include[]"])
	})
}

func TestService_EdUser(t *testing.T) {
	t.Run("Should render the user profile", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/user"] = jsonBody(`{"user": {"id": 3, "name": "Ada", "email": "ada@uni.edu"}, "courses": []}`)

		out, err := h.svc.EdUserInfo(testContext(), prepared(t, FormatInput{}))
		require.NoError(t, err)
		assert.Equal(t, "# Ed Discussion User Information\n\n**Name**: Ada\n**Email**: ada@uni.edu\n**User ID**: 3", out)
		assert.Equal(t, "Bearer ed-token", h.ed.requests()[0].Header.Get("Authorization"))
	})

	t.Run("Should list courses and emit an empty list in json format", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/user"] = jsonBody(`{"user": {"id": 3}}`)

		out, err := h.svc.EdListCourses(testContext(), prepared(t, FormatInput{Format: render.JSON}))
		require.NoError(t, err)
		assert.Equal(t, "[]", out)

		out, err = h.svc.EdListCourses(testContext(), prepared(t, FormatInput{}))
		require.NoError(t, err)
		assert.Equal(t, "No Ed Discussion courses found.", out)
	})

	t.Run("Should unwrap nested course entries", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/user"] = jsonBody(`{"courses": [{"course": {"id": 12, "code": "COMP1", "name": "Algorithms", "year": "2024", "session": "S1"}, "role": {"role": "student"}}]}`)

		out, err := h.svc.EdListCourses(testContext(), prepared(t, FormatInput{}))
		require.NoError(t, err)
		assert.Contains(t, out, "## 1. Algorithms\n- **Course Code**: COMP1\n- **Ed Course ID**: 12\n- **Term**: 2024 S1")
	})
}

func TestService_EdThreads(t *testing.T) {
	threads := `{"threads": [
		{"id": 100, "is_question": true, "title": "Exam scope?", "is_answered": false,
		 "user": {"name": "Ada"}, "created_at": "2024-05-02T09:30:00Z", "reply_count": 0, "vote_count": 2},
		{"id": 101, "title": "Notes", "user": null}
	]}`

	t.Run("Should forward the unanswered filter and label threads", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/courses/12/threads"] = jsonBody(threads)

		out, err := h.svc.EdListThreads(testContext(), prepared(t, EdListThreadsInput{CourseID: 12, Filter: FilterUnanswered}))
		require.NoError(t, err)
		assert.Contains(t, out, "## 1. [Question] Exam scope? ❓ Unanswered")
		assert.Contains(t, out, "## 2. [Post] Notes\n")
		assert.Contains(t, out, "- **Author**: Anonymous")

		q := h.ed.requests()[0].URL.Query()
		assert.Equal(t, "unanswered", q.Get("filter"))
		assert.Equal(t, "new", q.Get("sort"))
		assert.Equal(t, "20", q.Get("limit"))
	})

	t.Run("Should not send a filter for all threads", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/courses/12/threads"] = jsonBody(`{"threads": []}`)

		out, err := h.svc.EdListThreads(testContext(), prepared(t, EdListThreadsInput{CourseID: 12}))
		require.NoError(t, err)
		assert.Equal(t, "No discussion threads.", out)
		_, sent := h.ed.requests()[0].URL.Query()["filter"]
		assert.False(t, sent)
	})

	t.Run("Should report an empty search with the query", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/courses/12/threads"] = jsonBody(`{"threads": []}`)

		out, err := h.svc.EdSearchThreads(testContext(), prepared(t, EdSearchThreadsInput{CourseID: 12, Query: " midterm "}))
		require.NoError(t, err)
		assert.Equal(t, "No threads found containing 'midterm'.", out)
		assert.Equal(t, "midterm", h.ed.requests()[0].URL.Query().Get("search"))
	})

	t.Run("Should prefix search results with the query heading", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/courses/12/threads"] = jsonBody(threads)

		out, err := h.svc.EdSearchThreads(testContext(), prepared(t, EdSearchThreadsInput{CourseID: 12, Query: "exam"}))
		require.NoError(t, err)
		assert.Contains(t, out, "# Search Results: 'exam'\n\n# Ed Discussion Threads\n")
	})

	t.Run("Should emit the unwrapped thread list in json format", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/courses/12/threads"] = jsonBody(`{"threads": [{"id": 1}], "users": []}`)

		out, err := h.svc.EdListThreads(testContext(), prepared(t, EdListThreadsInput{CourseID: 12, Format: render.JSON}))
		require.NoError(t, err)
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, []map[string]any{{"id": float64(1)}}, decoded)
	})
}

func TestService_EdGetThread(t *testing.T) {
	t.Run("Should render a thread with its answers", func(t *testing.T) {
		h := newHarness(t)
		h.ed.routes["/api/threads/100"] = jsonBody(`{"thread": {
			"id": 100, "is_question": true, "title": "Exam scope?", "is_answered": true,
			"document": "<p>Which weeks?</p>", "user": {"name": "Ada"},
			"answers": [{"user": {"name": "Tutor"}, "document": "Weeks 1-6", "is_accepted": true}]
		}}`)

		out, err := h.svc.EdGetThread(testContext(), prepared(t, EdGetThreadInput{ThreadID: 100}))
		require.NoError(t, err)
		assert.Contains(t, out, "# Exam scope?\n")
		assert.Contains(t, out, "**Type**: Question (Answered)")
		assert.Contains(t, out, "Which weeks?")
		assert.Contains(t, out, "## Answers (1)")
		assert.Contains(t, out, "### 1. Tutor ✅ Accepted Answer")
	})

	t.Run("Should use the Ed wording for a missing thread", func(t *testing.T) {
		h := newHarness(t)

		out, err := h.svc.EdGetThread(testContext(), prepared(t, EdGetThreadInput{ThreadID: 5}))
		require.NoError(t, err)
		assert.Equal(t, "Error: Ed resource not found. Please check if course ID or thread ID is correct.", out)
	})
}

func TestService_MissingCredential(t *testing.T) {
	t.Run("Should return a configuration error without calling upstream", func(t *testing.T) {
		ed := &fakeBackend{routes: map[string]func(http.ResponseWriter, *http.Request){}}
		canvas := &fakeBackend{routes: map[string]func(http.ResponseWriter, *http.Request){}}
		svc := NewService(
			upstream.NewClient(backendConfig(t, config.Canvas, canvas, "/api/v1", "")),
			upstream.NewClient(backendConfig(t, config.Ed, ed, "/api", "")),
		)

		out, err := svc.ListCourses(testContext(), prepared(t, ListCoursesInput{}))
		require.Error(t, err)
		assert.Empty(t, out)
		assert.True(t, errors.Is(err, config.ErrMissingCredential))
		assert.Contains(t, err.Error(), "CANVAS_API_TOKEN")

		_, err = svc.EdUserInfo(testContext(), prepared(t, FormatInput{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ED_API_TOKEN")

		assert.Empty(t, canvas.requests())
		assert.Empty(t, ed.requests())
	})
}

func TestPrepare(t *testing.T) {
	t.Run("Should apply defaults after validation", func(t *testing.T) {
		in := ListCoursesInput{}
		require.NoError(t, Prepare(&in))
		assert.Equal(t, EnrollmentActive, in.EnrollmentState)
		require.NotNil(t, in.Limit)
		assert.Equal(t, DefaultPageSize, *in.Limit)
		assert.Equal(t, render.Markdown, in.Format)
	})

	t.Run("Should reject out of range limits", func(t *testing.T) {
		assert.Error(t, Prepare(&ListCoursesInput{Limit: intPtr(101)}))
		assert.Error(t, Prepare(&ListAnnouncementsInput{CourseID: "1", Limit: intPtr(51)}))
		assert.Error(t, Prepare(&EdListThreadsInput{CourseID: 1, Limit: intPtr(-1)}))
	})

	t.Run("Should reject an explicit zero limit", func(t *testing.T) {
		assert.Error(t, Prepare(&ListCoursesInput{Limit: intPtr(0)}))
		assert.Error(t, Prepare(&ListAssignmentsInput{CourseID: "1", Limit: intPtr(0)}))
		assert.Error(t, Prepare(&EdSearchThreadsInput{CourseID: 1, Query: "x", Limit: intPtr(0)}))
	})

	t.Run("Should keep an explicit limit", func(t *testing.T) {
		in := ListAnnouncementsInput{CourseID: "1", Limit: intPtr(50)}
		require.NoError(t, Prepare(&in))
		assert.Equal(t, 50, *in.Limit)
	})

	t.Run("Should reject unknown enum values", func(t *testing.T) {
		assert.Error(t, Prepare(&ListCoursesInput{EnrollmentState: "invited"}))
		assert.Error(t, Prepare(&EdListThreadsInput{CourseID: 1, Filter: "mine"}))
		assert.Error(t, Prepare(&FormatInput{Format: "xml"}))
	})

	t.Run("Should reject blank identifiers and queries", func(t *testing.T) {
		assert.Error(t, Prepare(&GetCourseInput{CourseID: "   "}))
		assert.Error(t, Prepare(&EdGetThreadInput{}))
		assert.Error(t, Prepare(&EdSearchThreadsInput{CourseID: 1, Query: "  "}))
	})
}

func TestCourseRef(t *testing.T) {
	t.Run("Should accept strings and numbers", func(t *testing.T) {
		var in GetCourseInput
		require.NoError(t, json.Unmarshal([]byte(`{"course_id": 12345}`), &in))
		assert.Equal(t, CourseRef("12345"), in.CourseID)

		require.NoError(t, json.Unmarshal([]byte(`{"course_id": "abc"}`), &in))
		assert.Equal(t, CourseRef("abc"), in.CourseID)
	})

	t.Run("Should reject other JSON values", func(t *testing.T) {
		var in GetCourseInput
		assert.Error(t, json.Unmarshal([]byte(`{"course_id": {"id": 1}}`), &in))
	})
}

func TestThreadFilter_QueryValue(t *testing.T) {
	for _, f := range []ThreadFilter{FilterUnread, FilterUnanswered, FilterStarred} {
		v, ok := f.QueryValue()
		assert.True(t, ok)
		assert.Equal(t, string(f), v)
	}
	_, ok := FilterAll.QueryValue()
	assert.False(t, ok)
}

