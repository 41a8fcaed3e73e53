package domain

import "time"

type AvailabilitySubmissionItem struct {
	Day       int32   `json:"day"`
	Timeslots []int32 `json:"timeslots"`
}

type AvailabilitySubmission struct {
	ID             int64                        `json:"id"`
	TrainingPlanID int64                        `json:"trainingPlanID"`
	RowerID        int64                        `json:"rowerID"`
	Items          []AvailabilitySubmissionItem `json:"items"`
	CreatedAt      time.Time                    `json:"createdAt"`
	Version        int32                        `json:"-"`
}
