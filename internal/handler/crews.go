package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (h *Handler) GetAllCrews(w http.ResponseWriter, r *http.Request) {
	crews, err := h.repository.GetAllCrews()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取艇组列表成功", crews)
}

func (h *Handler) CreateCrew(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name" validate:"required"`
		MemberIDs []int64 `json:"memberIDs" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	crew := &domain.Crew{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	}

	if err := h.repository.CreateCrew(crew); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "crews_name_key":
				h.errorResponse(w, r, "艇组名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建艇组成功", crew)
}

func (h *Handler) GetCrew(w http.ResponseWriter, r *http.Request) {
	crew := r.Context().Value(CrewCtx).(*domain.Crew)

	h.successResponse(w, r, "获取艇组成功", crew)
}

func (h *Handler) UpdateCrew(w http.ResponseWriter, r *http.Request) {
	crew := r.Context().Value(CrewCtx).(*domain.Crew)

	var req struct {
		Name      *string  `json:"name"`
		MemberIDs *[]int64 `json:"memberIDs"`
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
		crew.Name = *req.Name
	}
	if req.MemberIDs != nil {
		crew.MemberIDs = *req.MemberIDs
	}

	if err := h.repository.UpdateCrew(crew); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "crews_name_key":
				h.errorResponse(w, r, "艇组名称已存在")
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

	h.successResponse(w, r, "更新艇组成功", crew)
}

func (h *Handler) DeleteCrew(w http.ResponseWriter, r *http.Request) {
	crew := r.Context().Value(CrewCtx).(*domain.Crew)

	if err := h.repository.DeleteCrew(crew.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "解散艇组成功", nil)
}
