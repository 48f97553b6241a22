package models

// CourseMapping maps a course to the people authorized on it. Email lists
// come from roster bulk import and may transiently reference accounts that
// have not registered yet.
type CourseMapping struct {
	CourseName       string   `json:"course_name"`
	CourseDesc       string   `json:"course_desc,omitempty"`
	InstructorEmails []string `json:"instructor_emails"`
	TAEmails         []string `json:"ta_emails"`
	StudentEmails    []string `json:"student_emails"`
}

// CourseInfo is a course as listed for a viewer, with instructor display
// names already resolved.
type CourseInfo struct {
	CourseName      string   `json:"course_name"`
	InstructorNames []string `json:"instructor_names"`
}
