package domain

import "time"

// Crew: 固定艇组，由教练预先指定成员
type Crew struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []int64   `json:"memberIDs"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
