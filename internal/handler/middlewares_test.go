package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

// callRequiredRole 用指定的角色穿过一次 RequiredRole 中间件，返回是否到达了下游 handler
func callRequiredRole(t *testing.T, allowed []domain.Role, role domain.Role) (bool, *Response) {
	t.Helper()

	h := &Handler{}
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		h.successResponse(w, r, "ok", nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(role)))
	rec := httptest.NewRecorder()

	h.RequiredRole(allowed)(next).ServeHTTP(rec, req)

	resp := &Response{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("响应不是合法的 JSON: %v", err)
	}
	return reached, resp
}

func TestRequiredRoleAllowsListedRoles(t *testing.T) {
	coachOnly := []domain.Role{domain.RoleCoach}

	reached, resp := callRequiredRole(t, coachOnly, domain.RoleCoach)
	if !reached || !resp.Success {
		t.Fatal("教练应该可以通过教练专属的路由")
	}

	// 普通队员可以通过没有角色限制以外的路由，比如查看已发布的排期结果
	reached, resp = callRequiredRole(t, []domain.Role{domain.RoleCoach, domain.RoleCaptain, domain.RoleNormalRower}, domain.RoleNormalRower)
	if !reached || !resp.Success {
		t.Fatal("普通队员应该可以通过列出了普通队员的路由")
	}
}

func TestRequiredRoleBlocksUnlistedRoles(t *testing.T) {
	coachOnly := []domain.Role{domain.RoleCoach}

	for _, role := range []domain.Role{domain.RoleNormalRower, domain.RoleCaptain} {
		reached, resp := callRequiredRole(t, coachOnly, role)
		if reached {
			t.Fatalf("%s 不应该通过教练专属的路由", role)
		}
		if resp.Success || resp.Message != "权限不足" {
			t.Fatalf("期望权限不足的响应，实际 %+v", resp)
		}
	}
}
