package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canvasEdMcp/internal/logger"
)

const ServerName = "canvas_ed_mcp"

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handler    server.ToolHandlerFunc
}

// NewMCPServer registers every operation of svc as an MCP tool.
func NewMCPServer(svc *Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, tool := range svc.Tools() {
		s.AddTool(tool.Definition, tool.Handler)
	}
	return s
}

// bind decodes the tool arguments into a fresh input, prepares it and runs op.
// Bad arguments become tool errors; configuration faults surface as Go errors.
func bind[T any, P interface {
	*T
	Input
}](name string, op func(context.Context, T) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logger.FromContext(ctx).With("tool", name)
		var in T
		if err := req.BindArguments(&in); err != nil {
			log.Warn("Rejected tool arguments", "error", err)
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}
		if err := Prepare(P(&in)); err != nil {
			log.Warn("Rejected tool arguments", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		log.Debug("Running tool")
		out, err := op(logger.ContextWithLogger(ctx, log), in)
		if err != nil {
			log.Error("Tool failed", "error", err)
			return nil, err
		}
		return mcp.NewToolResultText(out), nil
	}
}

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: 'markdown' for a readable report or 'json' for the raw upstream data"),
		mcp.Enum("markdown", "json"),
		mcp.DefaultString("markdown"),
	)
}

func limitOption(def, max float64, what string) mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description("Maximum number of "+what+" to return"),
		mcp.Min(1),
		mcp.Max(max),
		mcp.DefaultNumber(def),
	)
}

func readOnly(title string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
}

func newTool(name, description, title string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)
	all = append(all, readOnly(title)...)
	return mcp.NewTool(name, all...)
}

func canvasCourseOption() mcp.ToolOption {
	return mcp.WithString("course_id",
		mcp.Required(),
		mcp.Description("Canvas course ID"),
	)
}

func edCourseOption() mcp.ToolOption {
	return mcp.WithNumber("course_id",
		mcp.Required(),
		mcp.Description("Ed Discussion course ID"),
		mcp.Min(1),
	)
}

func (s *Service) Tools() []Tool {
	return []Tool{
		{
			Definition: newTool("list_courses",
				"List the Canvas courses of the current user.",
				"List Canvas Courses",
				mcp.WithString("enrollment_state",
					mcp.Description("Enrollment state to filter by"),
					mcp.Enum("active", "completed", "all"),
					mcp.DefaultString("active"),
				),
				limitOption(DefaultPageSize, MaxPageSize, "courses"),
				formatOption(),
			),
			Handler: bind[ListCoursesInput]("list_courses", s.ListCourses),
		},
		{
			Definition: newTool("get_course",
				"Get details of one Canvas course, including teachers and syllabus.",
				"Get Canvas Course",
				canvasCourseOption(),
				formatOption(),
			),
			Handler: bind[GetCourseInput]("get_course", s.GetCourse),
		},
		{
			Definition: newTool("list_announcements",
				"List the announcements of a Canvas course.",
				"List Canvas Announcements",
				canvasCourseOption(),
				limitOption(DefaultAnnouncementLimit, MaxAnnouncementLimit, "announcements"),
				formatOption(),
			),
			Handler: bind[ListAnnouncementsInput]("list_announcements", s.ListAnnouncements),
		},
		{
			Definition: newTool("list_assignments",
				"List the assignments of a Canvas course ordered by due date.",
				"List Canvas Assignments",
				canvasCourseOption(),
				mcp.WithBoolean("include_submissions",
					mcp.Description("Include the current user's submission status"),
					mcp.DefaultBool(false),
				),
				limitOption(DefaultPageSize, MaxPageSize, "assignments"),
				formatOption(),
			),
			Handler: bind[ListAssignmentsInput]("list_assignments", s.ListAssignments),
		},
		{
			Definition: newTool("ed_user_info",
				"Get the Ed Discussion profile of the current user.",
				"Ed User Info",
				formatOption(),
			),
			Handler: bind[FormatInput]("ed_user_info", s.EdUserInfo),
		},
		{
			Definition: newTool("ed_list_courses",
				"List the Ed Discussion courses of the current user.",
				"List Ed Courses",
				formatOption(),
			),
			Handler: bind[FormatInput]("ed_list_courses", s.EdListCourses),
		},
		{
			Definition: newTool("ed_list_threads",
				"List discussion threads of an Ed course, newest first.",
				"List Ed Threads",
				edCourseOption(),
				limitOption(DefaultPageSize, MaxPageSize, "threads"),
				mcp.WithString("filter",
					mcp.Description("Thread filter"),
					mcp.Enum("all", "unread", "unanswered", "starred"),
					mcp.DefaultString("all"),
				),
				formatOption(),
			),
			Handler: bind[EdListThreadsInput]("ed_list_threads", s.EdListThreads),
		},
		{
			Definition: newTool("ed_get_thread",
				"Get an Ed thread with its answers and comments.",
				"Get Ed Thread",
				mcp.WithNumber("thread_id",
					mcp.Required(),
					mcp.Description("Ed thread ID"),
					mcp.Min(1),
				),
				formatOption(),
			),
			Handler: bind[EdGetThreadInput]("ed_get_thread", s.EdGetThread),
		},
		{
			Definition: newTool("ed_search_threads",
				"Search the threads of an Ed course by keyword.",
				"Search Ed Threads",
				edCourseOption(),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("Search keywords"),
					mcp.MinLength(1),
				),
				limitOption(DefaultPageSize, MaxPageSize, "threads"),
				formatOption(),
			),
			Handler: bind[EdSearchThreadsInput]("ed_search_threads", s.EdSearchThreads),
		},
	}
}
