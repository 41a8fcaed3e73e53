package domain

import "time"

type TrainingPlan struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	SubmissionStartTime time.Time `json:"submissionStartTime"`
	SubmissionEndTime   time.Time `json:"submissionEndTime"`
	ActiveStartTime     time.Time `json:"activeStartTime"`
	ActiveEndTime       time.Time `json:"activeEndTime"`
	TrainingTemplateID  int64     `json:"trainingTemplateID"`
	CreatedAt           time.Time `json:"createdAt"`
	Version             int32     `json:"-"`
}
