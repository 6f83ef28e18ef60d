package normalize

import (
	"github.com/tidwall/gjson"
)

type EdUser struct {
	ID    string
	Name  string
	Email string
}

type EdCourse struct {
	ID      string
	Name    string
	Code    string
	Year    string
	Session string
}

type EdThreadSummary struct {
	ID         string
	Title      string
	Author     string
	CreatedAt  Timestamp
	IsQuestion bool
	IsAnswered bool
	VoteCount  int64
	ReplyCount int64
}

type EdAnswer struct {
	Author     string
	CreatedAt  Timestamp
	Body       string
	IsAccepted bool
}

type EdComment struct {
	Author    string
	CreatedAt Timestamp
	Body      string
}

type EdThreadDetail struct {
	EdThreadSummary
	Body     string
	Answers  []EdAnswer
	Comments []EdComment
}

// Label is "Question" or "Post".
func (t EdThreadSummary) Label() string {
	if t.IsQuestion {
		return "Question"
	}
	return "Post"
}

// Status is empty for posts.
func (t EdThreadSummary) Status() string {
	switch {
	case !t.IsQuestion:
		return ""
	case t.IsAnswered:
		return "✅ Answered"
	default:
		return "❓ Unanswered"
	}
}

func EdUserInfo(doc gjson.Result) EdUser {
	user := Unwrap(doc, "user")
	return EdUser{
		ID:    stringOr(user, "id", ""),
		Name:  stringOr(user, "name", "Unknown"),
		Email: stringOr(user, "email", "Unknown"),
	}
}

// EdCourses reads the courses member of a /user document. Entries may wrap
// the course under a "course" key alongside the enrolment role.
func EdCourses(doc gjson.Result) []EdCourse {
	items := Collection(EdCoursesDocument(doc))
	out := make([]EdCourse, 0, len(items))
	for _, item := range items {
		course := Unwrap(item, "course")
		out = append(out, EdCourse{
			ID:      stringOr(course, "id", ""),
			Name:    stringOr(course, "name", "Unnamed Course"),
			Code:    stringOr(course, "code", ""),
			Year:    stringOr(course, "year", ""),
			Session: stringOr(course, "session", ""),
		})
	}
	return out
}

// EdCoursesDocument is the raw courses list of a /user document, "[]" when absent.
func EdCoursesDocument(doc gjson.Result) gjson.Result {
	if doc.IsObject() {
		if v := doc.Get("courses"); v.Exists() {
			return v
		}
	}
	return gjson.Parse("[]")
}

// EdThreadsDocument unwraps the thread list of a threads response.
func EdThreadsDocument(doc gjson.Result) gjson.Result {
	return Unwrap(doc, "threads")
}

// EdThreadDocument unwraps the thread of a single-thread response.
func EdThreadDocument(doc gjson.Result) gjson.Result {
	return Unwrap(doc, "thread")
}

func EdThreads(doc gjson.Result) []EdThreadSummary {
	items := Collection(doc)
	out := make([]EdThreadSummary, 0, len(items))
	for _, item := range items {
		out = append(out, threadSummary(item))
	}
	return out
}

func threadSummary(doc gjson.Result) EdThreadSummary {
	return EdThreadSummary{
		ID:         stringOr(doc, "id", ""),
		Title:      stringOr(doc, "title", "No Title"),
		Author:     authorName(doc),
		CreatedAt:  timestamp(doc, "created_at"),
		IsQuestion: boolOr(doc, "is_question", false),
		IsAnswered: boolOr(doc, "is_answered", false),
		VoteCount:  intOr(doc, "vote_count", 0),
		ReplyCount: firstInt(doc, 0, "replies_count", "num_comments"),
	}
}

func EdThread(doc gjson.Result) EdThreadDetail {
	detail := EdThreadDetail{EdThreadSummary: threadSummary(doc)}
	if document := stringOr(doc, "document", ""); document != "" {
		detail.Body = ParseDocument(document)
	} else {
		detail.Body = ParseDocument(stringOr(doc, "content", ""))
	}
	for _, a := range Collection(doc.Get("answers")) {
		detail.Answers = append(detail.Answers, EdAnswer{
			Author:     authorName(a),
			CreatedAt:  timestamp(a, "created_at"),
			Body:       ParseDocument(stringOr(a, "document", "")),
			IsAccepted: boolOr(a, "is_accepted", false),
		})
	}
	for _, c := range Collection(doc.Get("comments")) {
		detail.Comments = append(detail.Comments, EdComment{
			Author:    authorName(c),
			CreatedAt: timestamp(c, "created_at"),
			Body:      ParseDocument(stringOr(c, "document", "")),
		})
	}
	return detail
}

// authorName falls back to "Anonymous" for missing or anonymous authors.
func authorName(doc gjson.Result) string {
	user := doc.Get("user")
	if !user.IsObject() {
		return "Anonymous"
	}
	return stringOr(user, "name", "Anonymous")
}
