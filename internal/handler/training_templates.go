package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (h *Handler) GetAllTrainingTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetAllTrainingTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有训练模板成功", templates)
}

func (h *Handler) CreateTrainingTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name" validate:"required"`
		Description     string `json:"description"`
		NumDays         int32  `json:"numDays" validate:"required,gte=1"`
		TimeslotsPerDay int32  `json:"timeslotsPerDay" validate:"required,gte=1"`
		BoatsPerSlot    int32  `json:"boatsPerSlot" validate:"required,gte=1"`
		CoursesPerCrew  int32  `json:"coursesPerCrew" validate:"required,gte=1"`
		CrewSize        int32  `json:"crewSize" validate:"required,gte=1"`
		MinAvailable    int32  `json:"minAvailable" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := &domain.TrainingTemplate{
		Name:            req.Name,
		Description:     req.Description,
		NumDays:         req.NumDays,
		TimeslotsPerDay: req.TimeslotsPerDay,
		BoatsPerSlot:    req.BoatsPerSlot,
		CoursesPerCrew:  req.CoursesPerCrew,
		CrewSize:        req.CrewSize,
		MinAvailable:    req.MinAvailable,
	}

	// 每组人数不能少于每次训练最少到场的人数
	if template.MinAvailable > template.CrewSize {
		h.badRequest(w, r, errors.New("最少到场人数不能超过每组人数"))
		return
	}

	if err := h.repository.CreateTrainingTemplate(template); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "training_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板成功", template)
}

func (h *Handler) GetTrainingTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(TrainingTemplateCtx).(*domain.TrainingTemplate)

	h.successResponse(w, r, "获取模板成功", template)
}

func (h *Handler) UpdateTrainingTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(TrainingTemplateCtx).(*domain.TrainingTemplate)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Description != nil {
		template.Description = *req.Description
	}

	if err := h.repository.UpdateTrainingTemplate(template); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "training_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新模板成功", template)
}

func (h *Handler) DeleteTrainingTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(TrainingTemplateCtx).(*domain.TrainingTemplate)

	if err := h.repository.DeleteTrainingTemplate(template.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "training_plans_training_template_id_fkey":
				h.errorResponse(w, r, "该模板已被应用于训练计划，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}
