package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	MyInfoCtx           ContextKey = "myInfo"
	RowerInfoCtx        ContextKey = "rowerInfo"
	CrewCtx             ContextKey = "crew"
	TrainingTemplateCtx ContextKey = "trainingTemplate"
	TrainingPlanCtx     ContextKey = "trainingPlan"
)
