package models

import "time"

// Question represents a student question asked during a live lecture session.
// A question stays live until the instructor ends the session; answered and
// live move independently and never revert once set.
type Question struct {
	QuestionID      int64      `json:"question_id"`
	Text            string     `json:"text"`
	AskedByEmail    string     `json:"asked_by_email"`
	CourseName      string     `json:"course_name"`
	InstructorEmail string     `json:"instructor_email"`
	Answered        bool       `json:"answered"`
	Live            bool       `json:"live"`
	AskedAt         time.Time  `json:"asked_at"`
	AnsweredAt      *time.Time `json:"answered_at,omitempty"`
}

// QuestionView is a question joined with the asker's display name, as served
// to instructor/TA/student boards.
type QuestionView struct {
	QuestionID int64     `json:"question_id"`
	Text       string    `json:"text"`
	AskerName  string    `json:"asker_name"`
	Answered   bool      `json:"answered"`
	Live       bool      `json:"live"`
	AskedAt    time.Time `json:"asked_at"`
}
