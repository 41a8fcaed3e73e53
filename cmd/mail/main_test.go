package main

import (
	"encoding/json"
	"html/template"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

// renderMailTemplate 模拟 worker 的处理路径：邮件信息先经过消息队列的
// JSON 序列化和反序列化，再交给对应的模板渲染
func renderMailTemplate(t *testing.T, file string, mailType string, data any) string {
	t.Helper()

	body, err := json.Marshal(domain.MailMessage{Type: mailType, To: "rower@example.com", Data: data})
	if err != nil {
		t.Fatalf("序列化邮件信息失败: %v", err)
	}

	mailMessage := domain.MailMessage{}
	if err := json.Unmarshal(body, &mailMessage); err != nil {
		t.Fatalf("反序列化邮件信息失败: %v", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join("..", "..", "templates", file))
	if err != nil {
		t.Fatalf("解析邮件模板 %s 失败: %v", file, err)
	}

	rendered := strings.Builder{}
	if err := tmpl.Execute(&rendered, mailMessage.Data); err != nil {
		t.Fatalf("渲染邮件模板 %s 失败: %v", file, err)
	}
	return rendered.String()
}

func TestMailTemplatesRender(t *testing.T) {
	tests := []struct {
		file     string
		mailType string
		data     any
		want     []string
	}{
		{
			file:     "new_account_email.html",
			mailType: "create_rower",
			data:     domain.CreateRowerMailData{FullName: "张三", Username: "zhangsan1", Password: "p@ssw0rd"},
			want:     []string{"张三", "zhangsan1", "p@ssw0rd"},
		},
		{
			file:     "reset_password_otp_email.html",
			mailType: "reset_password",
			data:     domain.ResetPasswordMailData{FullName: "张三", OTP: "123456", Expiration: 900},
			want:     []string{"张三", "123456", "900"},
		},
		{
			file:     "change_email_email.html",
			mailType: "change_email",
			data:     domain.ChangeEmailMailData{FullName: "张三", OTP: "654321", Expiration: 900},
			want:     []string{"张三", "654321", "900"},
		},
		{
			file:     "schedule_published_email.html",
			mailType: "schedule_published",
			data: domain.SchedulePublishedMailData{
				FullName: "张三",
				PlanName: "2026春季学期训练计划",
				CrewName: "一队",
				Sessions: []string{"第 1 天 第 2 时段", "第 3 天 第 1 时段"},
			},
			want: []string{"张三", "2026春季学期训练计划", "一队", "第 1 天 第 2 时段", "第 3 天 第 1 时段"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.mailType, func(t *testing.T) {
			rendered := renderMailTemplate(t, tt.file, tt.mailType, tt.data)
			for _, want := range tt.want {
				if !strings.Contains(rendered, want) {
					t.Fatalf("渲染后的邮件中没有 %q:\n%s", want, rendered)
				}
			}
		})
	}
}
