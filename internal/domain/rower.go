package domain

import (
	"time"
)

type Role string

const (
	RoleNormalRower Role = "普通队员"
	RoleCaptain     Role = "队长"
	RoleCoach       Role = "教练"
)

type Rower struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CrewID       *int64    `json:"crewID"` // 如果 CrewID 为 nil，则表示这个队员还没有固定艇组，需要由求解器分组
	Traits       []float64 `json:"traits"` // 体征向量（如身高、体重、测功仪成绩），所有队员的维数一致
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
