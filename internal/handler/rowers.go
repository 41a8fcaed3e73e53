package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllRowerInfo(w http.ResponseWriter, r *http.Request) {
	rowers, err := h.repository.GetAllRowers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取队员列表成功", rowers)
}

func (h *Handler) CreateRower(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string    `json:"username" validate:"required"`
		FullName string    `json:"fullName" validate:"required"`
		Email    string    `json:"email" validate:"required,email"`
		Role     string    `json:"role" validate:"required,oneof=普通队员 队长 教练"`
		Traits   []float64 `json:"traits"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机密码
	password := utils.GenerateRandomPassword(h.config.NewRower.PasswordLength)

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 插入队员到数据库中
	rower := &domain.Rower{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		Traits:       req.Traits,
	}

	if err := h.repository.CreateRower(rower); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "rowers_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			case pgErr.ConstraintName == "rowers_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 准备邮件
	mailMessage := domain.MailMessage{
		Type: "create_rower",
		To:   rower.Email,
		Data: domain.CreateRowerMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	}

	// 对邮件进行序列化
	emailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 将邮件发送到消息队列
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        emailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 成功响应
	h.successResponse(w, r, "队员创建成功", rower)
}

func (h *Handler) GetRowerInfo(w http.ResponseWriter, r *http.Request) {
	rower := r.Context().Value(RowerInfoCtx).(*domain.Rower)
	h.successResponse(w, r, "获取队员信息成功", rower)
}

func (h *Handler) UpdateRower(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName *string    `json:"fullName"`
		Email    *string    `json:"email" validate:"omitempty,email"`
		Role     *string    `json:"role" validate:"omitempty,oneof=普通队员 队长 教练"`
		IsActive *bool      `json:"isActive"`
		Traits   *[]float64 `json:"traits"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rower := r.Context().Value(RowerInfoCtx).(*domain.Rower)

	if req.FullName != nil {
		rower.FullName = *req.FullName
	}
	if req.Email != nil {
		rower.Email = *req.Email
	}
	if req.Role != nil {
		rower.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		rower.IsActive = *req.IsActive
	}
	if req.Traits != nil {
		// 维数变了会导致后续自动排期时校验失败
		if err := utils.ValidateTraitsDimension(*req.Traits, rower.Traits); err != nil {
			h.badRequest(w, r, err)
			return
		}
		rower.Traits = *req.Traits
	}

	if err := h.repository.UpdateRower(rower); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "rowers_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			case pgErr.ConstraintName == "rowers_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新队员信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新队员信息成功", rower)
}

func (h *Handler) DeleteRower(w http.ResponseWriter, r *http.Request) {
	rower := r.Context().Value(RowerInfoCtx).(*domain.Rower)

	if err := h.repository.DeleteRower(rower.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除队员成功", nil)
}

func (h *Handler) UpdateRowerPassword(w http.ResponseWriter, r *http.Request) {
	rower := r.Context().Value(RowerInfoCtx).(*domain.Rower)

	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rower.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateRower(rower); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
