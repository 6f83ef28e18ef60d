package render

import (
	"fmt"
	"strings"

	"canvasEdMcp/internal/normalize"
)

func Courses(courses []normalize.CourseSummary) string {
	if len(courses) == 0 {
		return "No Canvas courses found."
	}
	lines := []string{
		heading("# My Canvas Courses"),
		heading(fmt.Sprintf("*Total %d courses*", len(courses))),
	}
	for i, c := range courses {
		lines = append(lines, fmt.Sprintf("## %d. %s", i+1, c.Name))
		if c.Code != "" {
			lines = append(lines, "- **Course Code**: "+c.Code)
		}
		lines = append(lines, "- **Course ID**: "+c.ID, "")
	}
	return strings.Join(lines, "\n")
}

func Course(c normalize.CourseDetail) string {
	lines := []string{heading("# " + c.Name)}
	if c.Code != "" {
		lines = append(lines, "**Course Code**: "+c.Code)
	}
	lines = append(lines, "**Course ID**: "+c.ID)
	if len(c.TeacherNames) > 0 {
		lines = append(lines, "**Teachers**: "+strings.Join(c.TeacherNames, ", "))
	}
	if c.Syllabus != "" {
		lines = append(lines, "\n## Syllabus\n"+c.Syllabus)
	}
	return strings.Join(lines, "\n")
}

func Announcements(items []normalize.Announcement, courseName string) string {
	if len(items) == 0 {
		if courseName != "" {
			return fmt.Sprintf("Course %s has no announcements.", courseName)
		}
		return "No announcements."
	}
	title := "# Course Announcements"
	if courseName != "" {
		title = fmt.Sprintf("# %s - Announcements", courseName)
	}
	lines := []string{
		heading(title),
		heading(fmt.Sprintf("*Total %d announcements*", len(items))),
	}
	for i, a := range items {
		lines = append(lines,
			fmt.Sprintf("## %d. %s", i+1, a.Title),
			"- **Posted by**: "+a.Author,
			"- **Posted at**: "+a.PostedAt.String(),
		)
		if len(a.Links) > 0 {
			lines = append(lines, "- **Links**: "+strings.Join(a.Links, ", "))
		}
		lines = append(lines, "\n"+a.Body+"\n", heading("---"))
	}
	return strings.Join(lines, "\n")
}

func Assignments(items []normalize.Assignment, courseName string) string {
	if len(items) == 0 {
		if courseName != "" {
			return fmt.Sprintf("Course %s has no assignments.", courseName)
		}
		return "No assignments."
	}
	title := "# Assignment List"
	if courseName != "" {
		title = fmt.Sprintf("# %s - Assignment List", courseName)
	}
	lines := []string{
		heading(title),
		heading(fmt.Sprintf("*Total %d assignments*", len(items))),
	}
	for i, a := range items {
		lines = append(lines,
			fmt.Sprintf("## %d. %s", i+1, a.Name),
			"- **Assignment ID**: "+a.ID,
			"- **Due Date**: "+a.DueAt.String(),
			"- **Points**: "+a.PointsPossible,
		)
		if a.Submission != nil {
			lines = append(lines, "- **Submission**: "+submission(a.Submission))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func submission(s *normalize.Submission) string {
	parts := []string{s.State}
	if s.Score != "" {
		parts = append(parts, "score "+s.Score)
	}
	if s.Late {
		parts = append(parts, "late")
	}
	if s.Missing {
		parts = append(parts, "missing")
	}
	return strings.Join(parts, ", ")
}
