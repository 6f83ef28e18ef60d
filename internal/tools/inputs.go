package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"canvasEdMcp/internal/render"
)

const (
	DefaultPageSize          = 20
	MaxPageSize              = 100
	DefaultAnnouncementLimit = 10
	MaxAnnouncementLimit     = 50
)

type EnrollmentState string

const (
	EnrollmentActive    EnrollmentState = "active"
	EnrollmentCompleted EnrollmentState = "completed"
	EnrollmentAll       EnrollmentState = "all"
)

// ThreadFilter narrows an Ed thread listing.
type ThreadFilter string

const (
	FilterAll        ThreadFilter = "all"
	FilterUnread     ThreadFilter = "unread"
	FilterUnanswered ThreadFilter = "unanswered"
	FilterStarred    ThreadFilter = "starred"
)

// QueryValue is the upstream "filter" flag; FilterAll sends none.
func (f ThreadFilter) QueryValue() (string, bool) {
	switch f {
	case FilterUnread, FilterUnanswered, FilterStarred:
		return string(f), true
	default:
		return "", false
	}
}

// CourseRef is a Canvas course identifier. Agents send it as a string or a number.
type CourseRef string

func (c *CourseRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CourseRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("course_id must be a string or a number: %w", err)
	}
	*c = CourseRef(n.String())
	return nil
}

// validate shares gin's "binding" tags so both surfaces reject the same input.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// Input is implemented by the argument struct of every operation.
type Input interface {
	OutputFormat() render.Format
	trim()
	withDefaults()
}

// Prepare trims, validates and fills defaults, in that order.
func Prepare(in Input) error {
	in.trim()
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	in.withDefaults()
	return nil
}

func defaultFormat(f *render.Format) {
	if *f == "" {
		*f = render.Markdown
	}
}

// defaultLimit fills an absent limit. An explicit zero is rejected by validation.
func defaultLimit(limit **int, def int) {
	if *limit == nil {
		*limit = &def
	}
}

type ListCoursesInput struct {
	EnrollmentState EnrollmentState `json:"enrollment_state" form:"enrollment_state" binding:"omitempty,oneof=active completed all"`
	Limit           *int            `json:"limit"            form:"limit"            binding:"omitempty,min=1,max=100"`
	Format          render.Format   `json:"format"           form:"format"           binding:"omitempty,oneof=markdown json"`
}

func (in *ListCoursesInput) OutputFormat() render.Format { return in.Format }

func (in *ListCoursesInput) trim() {}

func (in *ListCoursesInput) withDefaults() {
	if in.EnrollmentState == "" {
		in.EnrollmentState = EnrollmentActive
	}
	defaultLimit(&in.Limit, DefaultPageSize)
	defaultFormat(&in.Format)
}

type GetCourseInput struct {
	CourseID CourseRef     `json:"course_id" uri:"course_id" form:"-"      binding:"required"`
	Format   render.Format `json:"format"                    form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *GetCourseInput) OutputFormat() render.Format { return in.Format }

func (in *GetCourseInput) trim() {
	in.CourseID = CourseRef(strings.TrimSpace(string(in.CourseID)))
}

func (in *GetCourseInput) withDefaults() {
	defaultFormat(&in.Format)
}

type ListAnnouncementsInput struct {
	CourseID CourseRef     `json:"course_id" uri:"course_id" form:"-"      binding:"required"`
	Limit    *int          `json:"limit"                     form:"limit"  binding:"omitempty,min=1,max=50"`
	Format   render.Format `json:"format"                    form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *ListAnnouncementsInput) OutputFormat() render.Format { return in.Format }

func (in *ListAnnouncementsInput) trim() {
	in.CourseID = CourseRef(strings.TrimSpace(string(in.CourseID)))
}

func (in *ListAnnouncementsInput) withDefaults() {
	defaultLimit(&in.Limit, DefaultAnnouncementLimit)
	defaultFormat(&in.Format)
}

type ListAssignmentsInput struct {
	CourseID           CourseRef     `json:"course_id"           uri:"course_id" form:"-"                   binding:"required"`
	IncludeSubmissions bool          `json:"include_submissions"                 form:"include_submissions"`
	Limit              *int          `json:"limit"                               form:"limit"               binding:"omitempty,min=1,max=100"`
	Format             render.Format `json:"format"                              form:"format"              binding:"omitempty,oneof=markdown json"`
}

func (in *ListAssignmentsInput) OutputFormat() render.Format { return in.Format }

func (in *ListAssignmentsInput) trim() {
	in.CourseID = CourseRef(strings.TrimSpace(string(in.CourseID)))
}

func (in *ListAssignmentsInput) withDefaults() {
	defaultLimit(&in.Limit, DefaultPageSize)
	defaultFormat(&in.Format)
}

// FormatInput carries only the output format (ed_user_info, ed_list_courses).
type FormatInput struct {
	Format render.Format `json:"format" form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *FormatInput) OutputFormat() render.Format { return in.Format }

func (in *FormatInput) trim() {}

func (in *FormatInput) withDefaults() {
	defaultFormat(&in.Format)
}

type EdListThreadsInput struct {
	CourseID int           `json:"course_id" uri:"course_id" form:"-"      binding:"required,gt=0"`
	Limit    *int          `json:"limit"                     form:"limit"  binding:"omitempty,min=1,max=100"`
	Filter   ThreadFilter  `json:"filter"                    form:"filter" binding:"omitempty,oneof=all unread unanswered starred"`
	Format   render.Format `json:"format"                    form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *EdListThreadsInput) OutputFormat() render.Format { return in.Format }

func (in *EdListThreadsInput) trim() {}

func (in *EdListThreadsInput) withDefaults() {
	defaultLimit(&in.Limit, DefaultPageSize)
	if in.Filter == "" {
		in.Filter = FilterAll
	}
	defaultFormat(&in.Format)
}

type EdGetThreadInput struct {
	ThreadID int           `json:"thread_id" uri:"thread_id" form:"-"      binding:"required,gt=0"`
	Format   render.Format `json:"format"                    form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *EdGetThreadInput) OutputFormat() render.Format { return in.Format }

func (in *EdGetThreadInput) trim() {}

func (in *EdGetThreadInput) withDefaults() {
	defaultFormat(&in.Format)
}

type EdSearchThreadsInput struct {
	CourseID int           `json:"course_id" uri:"course_id" form:"-"      binding:"required,gt=0"`
	Query    string        `json:"query"                     form:"query"  binding:"required"`
	Limit    *int          `json:"limit"                     form:"limit"  binding:"omitempty,min=1,max=100"`
	Format   render.Format `json:"format"                    form:"format" binding:"omitempty,oneof=markdown json"`
}

func (in *EdSearchThreadsInput) OutputFormat() render.Format { return in.Format }

func (in *EdSearchThreadsInput) trim() {
	in.Query = strings.TrimSpace(in.Query)
}

func (in *EdSearchThreadsInput) withDefaults() {
	defaultLimit(&in.Limit, DefaultPageSize)
	defaultFormat(&in.Format)
}
