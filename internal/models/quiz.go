package models

import "time"

// Quiz groups questions attempted by learners.
type Quiz struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

// QuizAttempt is one submission of a quiz by a user.
type QuizAttempt struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	UserID      uint                  `gorm:"index;not null" json:"user_id"`
	QuizID      uint                  `gorm:"index;not null" json:"quiz_id"`
	AttemptDate time.Time             `gorm:"not null" json:"attempt_date"`
	Score       float64               `json:"score"`
	MaxScore    float64               `json:"maxscore"`
	IP          string                `gorm:"size:45" json:"ip"`
	Agent       string                `gorm:"type:text" json:"agent"`
	Responses   []QuizAttemptResponse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
	User        User                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Quiz        Quiz                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ScorePercent returns the attempt score as a percentage of the maximum.
func (a QuizAttempt) ScorePercent() float64 {
	if a.MaxScore <= 0 {
		return 0
	}
	return a.Score * 100 / a.MaxScore
}

// QuizAttemptResponse is the answer given to one question in an attempt.
type QuizAttemptResponse struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	QuizAttemptID uint    `gorm:"index;not null" json:"quiz_attempt_id"`
	QuestionTitle string  `gorm:"type:text" json:"question_title"`
	Score         float64 `json:"score"`
	Text          string  `gorm:"type:text" json:"text"`
}
