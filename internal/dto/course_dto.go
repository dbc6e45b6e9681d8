package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// CourseResponse serializes a course for API clients.
type CourseResponse struct {
	ID           uint   `json:"id"`
	URL          string `json:"url"`
	ResourceURI  string `json:"resource_uri"`
	Shortname    string `json:"shortname"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Version      int64  `json:"version"`
	Author       string `json:"author"`
	Organisation string `json:"organisation"`
	IsDraft      bool   `json:"is_draft"`
}

// CourseListResponse is the body of the course collection endpoint.
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// NewCourseResponse converts a course, its owner's profile and the public base URL into a DTO.
func NewCourseResponse(course models.Course, ownerProfile models.UserProfile, baseURL string) CourseResponse {
	resource := fmt.Sprintf("/api/v3/course/%d/", course.ID)
	return CourseResponse{
		ID:           course.ID,
		URL:          baseURL + resource + "download/",
		ResourceURI:  resource,
		Shortname:    course.Shortname,
		Title:        course.Title,
		Description:  course.Description,
		Version:      course.Version,
		Author:       course.User.FullName(),
		Organisation: ownerProfile.Organisation,
		IsDraft:      course.IsDraft,
	}
}

// CourseDownloadMeta describes the client requesting a course package.
type CourseDownloadMeta struct {
	IP    string
	Agent string
}

// CoursePackage points at the zip file to stream for a download.
type CoursePackage struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// TrackerResponse serializes a tracker for the course activity endpoint.
type TrackerResponse struct {
	ID            uint                   `json:"id"`
	Type          string                 `json:"type"`
	Data          map[string]interface{} `json:"data"`
	SubmittedDate time.Time              `json:"submitted_date"`
}

// CourseActivityResponse lists the caller's trackers for a course.
type CourseActivityResponse struct {
	Course   string            `json:"course"`
	Trackers []TrackerResponse `json:"trackers"`
}

// NewTrackerResponse converts a tracker into a DTO.
func NewTrackerResponse(tracker models.Tracker) TrackerResponse {
	data := map[string]interface{}{}
	for key, value := range tracker.Data {
		data[key] = value
	}
	return TrackerResponse{
		ID:            tracker.ID,
		Type:          tracker.Type,
		Data:          data,
		SubmittedDate: tracker.SubmittedDate,
	}
}

// TrackerEvent is the message published when a tracker is recorded.
type TrackerEvent struct {
	TrackerID     uint      `json:"tracker_id"`
	UserID        uint      `json:"user_id"`
	Username      string    `json:"username"`
	CourseID      uint      `json:"course_id"`
	Shortname     string    `json:"shortname"`
	Version       int64     `json:"version"`
	Type          string    `json:"type"`
	SubmittedDate time.Time `json:"submitted_date"`
}
