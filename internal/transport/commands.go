package transport

// Route maps a METHOD:path endpoint to a native command name.
// Path segments starting with ':' are positional parameters.
type Route struct {
	Method  string
	Path    string
	Command string
}

// Key returns the METHOD:path lookup key.
func (r Route) Key() string {
	return r.Method + ":" + r.Path
}

// Routes is the static endpoint table shared with the backend. Order matters
// for pattern routes of equal specificity.
var Routes = []Route{
	// Auth
	{"POST", "auth/login", "login"},
	{"POST", "auth/logout", "logout"},
	{"GET", "auth/me", "get_current_user"},

	// Students
	{"GET", "students", "get_all_students"},
	{"POST", "students", "create_student"},
	{"GET", "students/:id", "get_student"},
	{"PUT", "students/:id", "update_student"},
	{"DELETE", "students/:id", "delete_student"},
	{"POST", "students/bulk", "bulk_create_students"},

	// Counseling sessions
	{"GET", "counseling-sessions", "get_all_counseling_sessions"},
	{"POST", "counseling-sessions", "create_counseling_session"},
	{"GET", "counseling-sessions/:id", "get_counseling_session"},
	{"PUT", "counseling-sessions/:id", "update_counseling_session"},
	{"DELETE", "counseling-sessions/:id", "delete_counseling_session"},

	// Exam results
	{"GET", "exams", "get_all_exam_results"},
	{"POST", "exams", "create_exam_result"},
	{"GET", "exams/:id", "get_exam_result"},
	{"PUT", "exams/:id", "update_exam_result"},
	{"DELETE", "exams/:id", "delete_exam_result"},

	// Behavior, goals, meeting notes, follow-ups
	{"GET", "behavior/:studentId", "get_student_behavior_incidents"},
	{"POST", "behavior", "create_behavior_incident"},
	{"GET", "academic/goals/:studentId", "get_student_academic_goals"},
	{"POST", "academic/goals", "create_academic_goal"},
	{"GET", "meeting-notes/:studentId", "get_student_meeting_notes"},
	{"POST", "meeting-notes", "create_meeting_note"},
	{"GET", "follow-ups/pending", "get_pending_follow_ups"},

	// AI suggestions
	{"POST", "ai-suggestions", "create_ai_suggestion"},
	{"GET", "ai-suggestions/:id", "get_ai_suggestion"},
	{"GET", "ai-suggestions/student/:studentId", "get_student_ai_suggestions"},
	{"GET", "ai-suggestions/pending", "get_pending_ai_suggestions"},
	{"POST", "ai-suggestions/:id/approve", "approve_ai_suggestion"},
	{"POST", "ai-suggestions/:id/reject", "reject_ai_suggestion"},
	{"DELETE", "ai-suggestions/:id", "delete_ai_suggestion"},

	// AI analysis
	{"POST", "ai/analyze/:studentId", "analyze_student_profile"},
	{"POST", "ai/recommendations/:studentId", "generate_counseling_recommendations"},

	// Notifications
	{"POST", "notifications", "create_notification"},
	{"GET", "notifications/user/:userId", "get_user_notifications"},
	{"GET", "notifications/student/:studentId", "get_student_notifications"},
	{"PUT", "notifications/:id/read", "mark_notification_read"},
	{"POST", "notifications/native", "send_native_notification"},

	// Surveys
	{"POST", "surveys/templates", "create_survey_template"},
	{"GET", "surveys/templates", "get_all_survey_templates"},
	{"POST", "surveys/distributions", "create_survey_distribution"},
	{"POST", "surveys/responses", "create_survey_response"},
	{"GET", "surveys/student/:studentId", "get_student_surveys"},

	// Files
	{"POST", "files/upload", "upload_file"},
	{"GET", "files/:id", "download_file"},
	{"DELETE", "files/:id", "delete_file"},
	{"GET", "files/student/:studentId", "get_student_files"},
	{"POST", "files/open", "open_file_in_explorer"},
}
