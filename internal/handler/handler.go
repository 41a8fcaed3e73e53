package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/config"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/rowers", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Post("/", h.CreateRower)
			r.Get("/", h.GetAllRowerInfo) // 所有队员应该都有权限查看其他人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.rowerInfo)
				r.Get("/", h.GetRowerInfo)
				r.With(h.preventOperateInitialCoach).With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Patch("/", h.UpdateRower)
				r.With(h.preventOperateInitialCoach).With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Delete("/", h.DeleteRower)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Patch("/password", h.UpdateRowerPassword)
			})
		})

		r.Route("/crews", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleCoach, domain.RoleCaptain})).Post("/", h.CreateCrew)
			r.Get("/", h.GetAllCrews)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.crew)
				r.Get("/", h.GetCrew)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach, domain.RoleCaptain})).Patch("/", h.UpdateCrew)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach, domain.RoleCaptain})).Delete("/", h.DeleteCrew)
			})
		})

		r.Route("/training-templates", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Post("/", h.CreateTrainingTemplate)
			r.Get("/", h.GetAllTrainingTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.trainingTemplate)
				r.Get("/", h.GetTrainingTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Patch("/", h.UpdateTrainingTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Delete("/", h.DeleteTrainingTemplate)
			})
		})

		r.Route("/training-plans", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Post("/", h.CreateTrainingPlan)
			r.Get("/", h.GetAllTrainingPlans)
			r.Route("/{option}", func(r chi.Router) {
				r.Use(h.trainingPlan)
				r.Get("/", h.GetTrainingPlanByID)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Patch("/", h.UpdateTrainingPlan)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Delete("/", h.DeleteTrainingPlan)
				r.Route("/your-submission", func(r chi.Router) {
					r.Use(h.myInfo)
					r.Use(h.preventRetiredRower)
					r.Use(h.preventSubmit2unavailableTrainingPlan)
					r.Post("/", h.SubmitYourAvailability)
					r.Get("/", h.GetYourAvailabilitySubmission)
				})
				r.With(h.RequiredRole([]domain.Role{domain.RoleCoach})).Get("/submissions", h.GetTrainingPlanSubmissions) // 只有教练能够获取所有的提交情况，防止泄露信息
				r.Route("/scheduling-result", func(r chi.Router) {
					r.Get("/", h.GetSchedulingResult) // 已发布的训练安排所有队员都可以查看
					r.Group(func(r chi.Router) {
						r.Use(h.RequiredRole([]domain.Role{domain.RoleCoach}))
						r.Post("/", h.SubmitSchedulingResult)
						r.Post("/generate", h.GenerateSchedulingResult)
					})
				})
			})
		})
	})
}
