package render

import (
	"fmt"
	"strings"

	"canvasEdMcp/internal/normalize"
)

func EdUser(u normalize.EdUser) string {
	return strings.Join([]string{
		heading("# Ed Discussion User Information"),
		"**Name**: " + u.Name,
		"**Email**: " + u.Email,
		"**User ID**: " + u.ID,
	}, "\n")
}

func EdCourses(courses []normalize.EdCourse) string {
	if len(courses) == 0 {
		return "No Ed Discussion courses found."
	}
	lines := []string{
		heading("# My Ed Discussion Courses"),
		heading(fmt.Sprintf("*Total %d courses*", len(courses))),
	}
	for i, c := range courses {
		lines = append(lines, fmt.Sprintf("## %d. %s", i+1, c.Name))
		if c.Code != "" {
			lines = append(lines, "- **Course Code**: "+c.Code)
		}
		lines = append(lines, "- **Ed Course ID**: "+c.ID)
		if c.Year != "" && c.Session != "" {
			lines = append(lines, fmt.Sprintf("- **Term**: %s %s", c.Year, c.Session))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func EdThreads(threads []normalize.EdThreadSummary) string {
	if len(threads) == 0 {
		return "No discussion threads."
	}
	lines := []string{
		heading("# Ed Discussion Threads"),
		heading(fmt.Sprintf("*Total %d threads*", len(threads))),
	}
	for i, t := range threads {
		title := fmt.Sprintf("## %d. [%s] %s", i+1, t.Label(), t.Title)
		if status := t.Status(); status != "" {
			title += " " + status
		}
		lines = append(lines,
			title,
			"- **Thread ID**: "+t.ID,
			"- **Author**: "+t.Author,
			"- **Posted at**: "+t.CreatedAt.String(),
			fmt.Sprintf("- **Replies**: %d | **Votes**: %d", t.ReplyCount, t.VoteCount),
			"",
		)
	}
	return strings.Join(lines, "\n")
}

func EdSearchResults(query string, threads []normalize.EdThreadSummary) string {
	if len(threads) == 0 {
		return fmt.Sprintf("No threads found containing '%s'.", query)
	}
	return strings.Join([]string{
		heading(fmt.Sprintf("# Search Results: '%s'", query)),
		EdThreads(threads),
	}, "\n")
}

func EdThread(t normalize.EdThreadDetail) string {
	lines := []string{heading("# " + t.Title)}
	if t.IsQuestion {
		status := "Unanswered"
		if t.IsAnswered {
			status = "Answered"
		}
		lines = append(lines, fmt.Sprintf("**Type**: %s (%s)", t.Label(), status))
	} else {
		lines = append(lines, "**Type**: "+t.Label())
	}
	lines = append(lines,
		"**Author**: "+t.Author,
		"**Posted at**: "+t.CreatedAt.String(),
		"**Thread ID**: "+t.ID,
		heading("\n---"),
	)
	if t.Body != "" {
		lines = append(lines, t.Body)
	} else {
		lines = append(lines, "*No content*")
	}

	if len(t.Answers) > 0 {
		lines = append(lines, heading(fmt.Sprintf("\n## Answers (%d)", len(t.Answers))))
		for j, a := range t.Answers {
			mark := ""
			if a.IsAccepted {
				mark = " ✅ Accepted Answer"
			}
			lines = append(lines,
				fmt.Sprintf("### %d. %s%s", j+1, a.Author, mark),
				"*"+a.CreatedAt.String()+"*",
				"\n"+a.Body+"\n",
			)
		}
	}
	if len(t.Comments) > 0 {
		lines = append(lines, heading(fmt.Sprintf("\n## Comments (%d)", len(t.Comments))))
		for j, c := range t.Comments {
			lines = append(lines,
				fmt.Sprintf("### %d. %s", j+1, c.Author),
				"*"+c.CreatedAt.String()+"*",
				"\n"+c.Body+"\n",
			)
		}
	}
	if len(t.Answers) == 0 && len(t.Comments) == 0 {
		lines = append(lines, "\n*No replies yet*")
	}
	return strings.Join(lines, "\n")
}
