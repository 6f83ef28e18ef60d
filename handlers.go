package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
	"canvasEdMcp/internal/render"
	"canvasEdMcp/internal/tools"
)

type handlers struct {
	svc *tools.Service
}

// bindInput maps query then path parameters onto in, then prepares it.
// Identifiers come from the path only.
func bindInput(c *gin.Context, in tools.Input) error {
	if err := binding.MapFormWithTag(in, c.Request.URL.Query(), "form"); err != nil {
		return err
	}
	params := make(map[string][]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = []string{p.Value}
	}
	if err := binding.MapFormWithTag(in, params, "uri"); err != nil {
		return err
	}
	return tools.Prepare(in)
}

// run binds in, executes op and writes the result.
func run(c *gin.Context, in tools.Input, op func(ctx context.Context) (string, error)) {
	log := logger.FromContext(c.Request.Context())
	if err := bindInput(c, in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	out, err := op(c.Request.Context())
	if err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			log.Warn("Backend not configured", "error", err)
		} else {
			log.Error("Operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if msg, failed := strings.CutPrefix(out, tools.ErrorPrefix); failed {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: msg})
		return
	}
	contentType := "text/markdown; charset=utf-8"
	if in.OutputFormat() == render.JSON {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}

// @Summary Lists the Canvas courses of the current user
// @Tags Canvas
// @Produce json,text/markdown
// @Param enrollment_state query string false "Enrollment state" Enums(active, completed, all) default(active)
// @Param limit query int false "Maximum number of courses" minimum(1) maximum(100) default(20)
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /canvas/courses [get]
// @Security BearerAuth
func (h *handlers) listCourses(c *gin.Context) {
	var in tools.ListCoursesInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.ListCourses(ctx, in)
	})
}

// @Summary Returns a Canvas course with teachers and syllabus
// @Tags Canvas
// @Produce json,text/markdown
// @Param course_id path string true "Canvas course ID"
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /canvas/courses/{course_id} [get]
// @Security BearerAuth
func (h *handlers) getCourse(c *gin.Context) {
	var in tools.GetCourseInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.GetCourse(ctx, in)
	})
}

// @Summary Lists the announcements of a Canvas course
// @Tags Canvas
// @Produce json,text/markdown
// @Param course_id path string true "Canvas course ID"
// @Param limit query int false "Maximum number of announcements" minimum(1) maximum(50) default(10)
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /canvas/courses/{course_id}/announcements [get]
// @Security BearerAuth
func (h *handlers) listAnnouncements(c *gin.Context) {
	var in tools.ListAnnouncementsInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.ListAnnouncements(ctx, in)
	})
}

// @Summary Lists the assignments of a Canvas course
// @Tags Canvas
// @Produce json,text/markdown
// @Param course_id path string true "Canvas course ID"
// @Param include_submissions query bool false "Include submission status" default(false)
// @Param limit query int false "Maximum number of assignments" minimum(1) maximum(100) default(20)
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /canvas/courses/{course_id}/assignments [get]
// @Security BearerAuth
func (h *handlers) listAssignments(c *gin.Context) {
	var in tools.ListAssignmentsInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.ListAssignments(ctx, in)
	})
}

// @Summary Returns the Ed Discussion profile of the current user
// @Tags Ed
// @Produce json,text/markdown
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ed/user [get]
// @Security BearerAuth
func (h *handlers) edUserInfo(c *gin.Context) {
	var in tools.FormatInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.EdUserInfo(ctx, in)
	})
}

// @Summary Lists the Ed Discussion courses of the current user
// @Tags Ed
// @Produce json,text/markdown
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ed/courses [get]
// @Security BearerAuth
func (h *handlers) edListCourses(c *gin.Context) {
	var in tools.FormatInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.EdListCourses(ctx, in)
	})
}

// @Summary Lists the threads of an Ed course, newest first
// @Tags Ed
// @Produce json,text/markdown
// @Param course_id path int true "Ed course ID"
// @Param limit query int false "Maximum number of threads" minimum(1) maximum(100) default(20)
// @Param filter query string false "Thread filter" Enums(all, unread, unanswered, starred) default(all)
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ed/courses/{course_id}/threads [get]
// @Security BearerAuth
func (h *handlers) edListThreads(c *gin.Context) {
	var in tools.EdListThreadsInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.EdListThreads(ctx, in)
	})
}

// @Summary Searches the threads of an Ed course
// @Tags Ed
// @Produce json,text/markdown
// @Param course_id path int true "Ed course ID"
// @Param query query string true "Search keywords"
// @Param limit query int false "Maximum number of threads" minimum(1) maximum(100) default(20)
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ed/courses/{course_id}/search [get]
// @Security BearerAuth
func (h *handlers) edSearchThreads(c *gin.Context) {
	var in tools.EdSearchThreadsInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.EdSearchThreads(ctx, in)
	})
}

// @Summary Returns an Ed thread with answers and comments
// @Tags Ed
// @Produce json,text/markdown
// @Param thread_id path int true "Ed thread ID"
// @Param format query string false "Output format" Enums(markdown, json) default(markdown)
// @Success 200 {string} string
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /ed/threads/{thread_id} [get]
// @Security BearerAuth
func (h *handlers) edGetThread(c *gin.Context) {
	var in tools.EdGetThreadInput
	run(c, &in, func(ctx context.Context) (string, error) {
		return h.svc.EdGetThread(ctx, in)
	})
}
