package tools

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
	"canvasEdMcp/internal/normalize"
	"canvasEdMcp/internal/render"
	"canvasEdMcp/internal/upstream"
)

// Caller is the slice of upstream.Client the operations depend on.
type Caller interface {
	Backend() config.Backend
	Call(ctx context.Context, spec upstream.RequestSpec) (gjson.Result, error)
}

// Service runs the nine operations against Canvas and Ed.
// Every operation returns either a report or an "Error: ..." line; the error
// return is reserved for configuration faults.
type Service struct {
	canvas Caller
	ed     Caller
}

func NewService(canvas, ed Caller) *Service {
	return &Service{canvas: canvas, ed: ed}
}

// NewServiceFromConfig builds one upstream client per backend.
func NewServiceFromConfig(cfg *config.Config) *Service {
	return NewService(upstream.NewClient(&cfg.Canvas), upstream.NewClient(&cfg.Ed))
}

// ErrorPrefix starts every result that reports an upstream failure.
const ErrorPrefix = "Error: "

// failure converts a primary call failure into the text returned to the caller.
func failure(err error) (string, error) {
	if errors.Is(err, config.ErrMissingCredential) {
		return "", err
	}
	var callErr *upstream.CallError
	if errors.As(err, &callErr) {
		return ErrorPrefix + callErr.Message, nil
	}
	return ErrorPrefix + err.Error(), nil
}

func get(path string, query url.Values, params map[string]string) upstream.RequestSpec {
	return upstream.RequestSpec{Path: path, Method: upstream.GET, Query: query, PathParams: params}
}

// limitText renders a prepared limit, falling back to def when none was set.
func limitText(limit *int, def int) string {
	if limit == nil {
		return strconv.Itoa(def)
	}
	return strconv.Itoa(*limit)
}

func courseParams(id string) map[string]string {
	return map[string]string{"course_id": id}
}

// courseName looks up a Canvas course for report headings. Failures yield "".
func (s *Service) courseName(ctx context.Context, courseID CourseRef) string {
	doc, err := s.canvas.Call(ctx, get("/courses/{course_id}", nil, courseParams(string(courseID))))
	if err != nil {
		logger.FromContext(ctx).Debug("Course name lookup failed", "course_id", courseID, "error", err)
		return ""
	}
	return normalize.CourseName(doc)
}

func (s *Service) ListCourses(ctx context.Context, in ListCoursesInput) (string, error) {
	query := url.Values{}
	query.Set("enrollment_state", string(in.EnrollmentState))
	query.Set("per_page", limitText(in.Limit, DefaultPageSize))
	query.Add("include[]", "term")

	doc, err := s.canvas.Call(ctx, get("/courses", query, nil))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(doc), nil
	}
	return render.Courses(normalize.Courses(doc)), nil
}

func (s *Service) GetCourse(ctx context.Context, in GetCourseInput) (string, error) {
	query := url.Values{}
	for _, include := range []string{"term", "teachers", "total_students", "syllabus_body"} {
		query.Add("include[]", include)
	}

	doc, err := s.canvas.Call(ctx, get("/courses/{course_id}", query, courseParams(string(in.CourseID))))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(doc), nil
	}
	return render.Course(normalize.Course(doc)), nil
}

func (s *Service) ListAnnouncements(ctx context.Context, in ListAnnouncementsInput) (string, error) {
	query := url.Values{}
	query.Add("context_codes[]", "course_"+string(in.CourseID))
	query.Set("per_page", limitText(in.Limit, DefaultAnnouncementLimit))

	doc, err := s.canvas.Call(ctx, get("/announcements", query, nil))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(doc), nil
	}
	return render.Announcements(normalize.Announcements(doc), s.courseName(ctx, in.CourseID)), nil
}

func (s *Service) ListAssignments(ctx context.Context, in ListAssignmentsInput) (string, error) {
	query := url.Values{}
	query.Set("per_page", limitText(in.Limit, DefaultPageSize))
	query.Set("order_by", "due_at")
	if in.IncludeSubmissions {
		query.Add("include[]", "submission")
	}

	doc, err := s.canvas.Call(ctx, get("/courses/{course_id}/assignments", query, courseParams(string(in.CourseID))))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(doc), nil
	}
	return render.Assignments(normalize.Assignments(doc), s.courseName(ctx, in.CourseID)), nil
}

func (s *Service) EdUserInfo(ctx context.Context, in FormatInput) (string, error) {
	doc, err := s.ed.Call(ctx, get("/user", nil, nil))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(doc), nil
	}
	return render.EdUser(normalize.EdUserInfo(doc)), nil
}

func (s *Service) EdListCourses(ctx context.Context, in FormatInput) (string, error) {
	doc, err := s.ed.Call(ctx, get("/user", nil, nil))
	if err != nil {
		return failure(err)
	}
	if in.Format == render.JSON {
		return render.Structured(normalize.EdCoursesDocument(doc)), nil
	}
	return render.EdCourses(normalize.EdCourses(doc)), nil
}

func (s *Service) EdListThreads(ctx context.Context, in EdListThreadsInput) (string, error) {
	query := url.Values{}
	query.Set("limit", limitText(in.Limit, DefaultPageSize))
	query.Set("sort", "new")
	if filter, ok := in.Filter.QueryValue(); ok {
		query.Set("filter", filter)
	}

	doc, err := s.ed.Call(ctx, get("/courses/{course_id}/threads", query, courseParams(strconv.Itoa(in.CourseID))))
	if err != nil {
		return failure(err)
	}
	threads := normalize.EdThreadsDocument(doc)
	if in.Format == render.JSON {
		return render.Structured(threads), nil
	}
	return render.EdThreads(normalize.EdThreads(threads)), nil
}

func (s *Service) EdGetThread(ctx context.Context, in EdGetThreadInput) (string, error) {
	params := map[string]string{"thread_id": strconv.Itoa(in.ThreadID)}
	doc, err := s.ed.Call(ctx, get("/threads/{thread_id}", nil, params))
	if err != nil {
		return failure(err)
	}
	thread := normalize.EdThreadDocument(doc)
	if in.Format == render.JSON {
		return render.Structured(thread), nil
	}
	return render.EdThread(normalize.EdThread(thread)), nil
}

func (s *Service) EdSearchThreads(ctx context.Context, in EdSearchThreadsInput) (string, error) {
	query := url.Values{}
	query.Set("limit", limitText(in.Limit, DefaultPageSize))
	query.Set("search", in.Query)

	doc, err := s.ed.Call(ctx, get("/courses/{course_id}/threads", query, courseParams(strconv.Itoa(in.CourseID))))
	if err != nil {
		return failure(err)
	}
	threads := normalize.EdThreadsDocument(doc)
	if in.Format == render.JSON {
		return render.Structured(threads), nil
	}
	return render.EdSearchResults(in.Query, normalize.EdThreads(threads)), nil
}
