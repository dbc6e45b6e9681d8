package models

// All returns every model owned by the service, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&ApiKey{},
		&UserProfile{},
		&CustomField{},
		&UserProfileCustomField{},
		&Course{},
		&CoursePermission{},
		&Tracker{},
		&Quiz{},
		&QuizAttempt{},
		&QuizAttemptResponse{},
		&Award{},
		&SettingProperty{},
		&DataRecovery{},
		&DashboardAccessLog{},
	}
}
