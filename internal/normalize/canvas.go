package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const (
	AnnouncementBodyLimit = 500
	ellipsis              = "..."
)

type CourseSummary struct {
	ID   string
	Name string
	Code string
}

type CourseDetail struct {
	CourseSummary
	TeacherNames []string
	Syllabus     string
}

type Announcement struct {
	Title    string
	PostedAt Timestamp
	Author   string
	Body     string
	Links    []string
}

type Submission struct {
	State       string
	Score       string
	SubmittedAt Timestamp
	Late        bool
	Missing     bool
}

type Assignment struct {
	ID             string
	Name           string
	DueAt          Timestamp
	PointsPossible string
	Submission     *Submission
}

func courseSummary(doc gjson.Result) CourseSummary {
	return CourseSummary{
		ID:   stringOr(doc, "id", ""),
		Name: stringOr(doc, "name", "Unnamed Course"),
		Code: stringOr(doc, "course_code", ""),
	}
}

func Courses(doc gjson.Result) []CourseSummary {
	items := Collection(doc)
	out := make([]CourseSummary, 0, len(items))
	for _, item := range items {
		out = append(out, courseSummary(item))
	}
	return out
}

func Course(doc gjson.Result) CourseDetail {
	detail := CourseDetail{
		CourseSummary: courseSummary(doc),
		Syllabus:      StripHTML(stringOr(doc, "syllabus_body", "")),
	}
	for _, teacher := range Collection(doc.Get("teachers")) {
		detail.TeacherNames = append(detail.TeacherNames, stringOr(teacher, "display_name", ""))
	}
	return detail
}

// CourseName extracts the display name used in report headings.
func CourseName(doc gjson.Result) string {
	if !doc.IsObject() {
		return ""
	}
	return stringOr(doc, "name", "")
}

func Announcements(doc gjson.Result) []Announcement {
	items := Collection(doc)
	out := make([]Announcement, 0, len(items))
	for _, item := range items {
		message := stringOr(item, "message", "")
		out = append(out, Announcement{
			Title:    stringOr(item, "title", "No Title"),
			PostedAt: timestamp(item, "posted_at"),
			Author:   stringOr(item.Get("author"), "display_name", "Unknown"),
			Body:     Truncate(StripHTML(message), AnnouncementBodyLimit),
			Links:    Links(message),
		})
	}
	return out
}

func Assignments(doc gjson.Result) []Assignment {
	items := Collection(doc)
	out := make([]Assignment, 0, len(items))
	for _, item := range items {
		a := Assignment{
			ID:             stringOr(item, "id", ""),
			Name:           stringOr(item, "name", "Unnamed Assignment"),
			DueAt:          timestamp(item, "due_at"),
			PointsPossible: numberText(item, "points_possible", "0"),
		}
		if sub := item.Get("submission"); sub.IsObject() {
			a.Submission = submission(sub)
		}
		out = append(out, a)
	}
	return out
}

func submission(doc gjson.Result) *Submission {
	return &Submission{
		State:       stringOr(doc, "workflow_state", "unsubmitted"),
		Score:       numberText(doc, "score", ""),
		SubmittedAt: timestamp(doc, "submitted_at"),
		Late:        boolOr(doc, "late", false),
		Missing:     boolOr(doc, "missing", false),
	}
}

// Truncate cuts s to limit characters and appends "..." when it was longer.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}

// Links collects distinct anchor targets of an HTML fragment in document order.
func Links(fragment string) []string {
	if !strings.Contains(fragment, "<a") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})
	return links
}
