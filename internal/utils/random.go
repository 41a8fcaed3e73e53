package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleNormalRower,
	domain.RoleCaptain,
	domain.RoleCoach,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomTraits 生成随机的体征向量：身高（cm）、体重（kg）、两千米测功仪成绩（秒）
func GenerateRandomTraits() []float64 {
	return []float64{
		160 + rand.Float64()*35,
		55 + rand.Float64()*40,
		360 + rand.Float64()*120,
	}
}

func GenerateRandomRower(password string, emailDomainName string) (*domain.Rower, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rower := &domain.Rower{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
		Traits:       GenerateRandomTraits(),
	}

	return rower, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomTrainingTemplate() *domain.TrainingTemplate {
	return &domain.TrainingTemplate{
		Name:            "训练模板" + GenerateRandomID(3, 3),
		Description:     "训练模板描述" + GenerateRandomID(20, 10),
		NumDays:         7,
		TimeslotsPerDay: int32(rand.Intn(3) + 2),
		BoatsPerSlot:    int32(rand.Intn(3) + 1),
		CoursesPerCrew:  int32(rand.Intn(2) + 2),
		CrewSize:        4,
		MinAvailable:    int32(rand.Intn(3) + 2),
	}
}

// 生成还没有开放提交的训练计划
func GenerateRandomNotStartedTrainingPlan(plan *domain.TrainingPlan) {
	plan.SubmissionStartTime = time.Now().Add(time.Hour * 24)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成已经开放提交的训练计划
func GenerateRandomSubmissionAvailableTrainingPlan(plan *domain.TrainingPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成正在排期的训练计划
func GenerateRandomSchedulingTrainingPlan(plan *domain.TrainingPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 8)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成正在启用的训练计划
func GenerateRandomActiveTrainingPlan(plan *domain.TrainingPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 30)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成已经结束的训练计划
func GenerateRandomEndedTrainingPlan(plan *domain.TrainingPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 30 * 7)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 随机生成一个训练计划
func GenerateRandomTrainingPlan(templateID int64) *domain.TrainingPlan {
	plan := domain.TrainingPlan{
		Name:               "训练计划" + GenerateRandomID(3, 3),
		Description:        "训练计划描述" + GenerateRandomID(20, 10),
		TrainingTemplateID: templateID,
	}

	// 随机生成一个状态，根据不同状态生成不同类型的训练计划
	randomStatus := rand.Intn(5)
	switch randomStatus {
	case 0:
		GenerateRandomNotStartedTrainingPlan(&plan)
	case 1:
		GenerateRandomSubmissionAvailableTrainingPlan(&plan)
	case 2:
		GenerateRandomSchedulingTrainingPlan(&plan)
	case 3:
		GenerateRandomActiveTrainingPlan(&plan)
	case 4:
		GenerateRandomEndedTrainingPlan(&plan)
	}

	return &plan
}

// GenerateRandomSubmission 按给定的概率为每个时段抛一次硬币，生成一份随机的空闲提交
func GenerateRandomSubmission(template *domain.TrainingTemplate, rower *domain.Rower, likelihood float64) *domain.AvailabilitySubmission {
	as := &domain.AvailabilitySubmission{
		RowerID: rower.ID,
		Items:   make([]domain.AvailabilitySubmissionItem, 0, template.NumDays),
	}

	for day := int32(1); day <= template.NumDays; day++ {
		item := domain.AvailabilitySubmissionItem{
			Day:       day,
			Timeslots: make([]int32, 0, template.TimeslotsPerDay),
		}
		for timeslot := int32(1); timeslot <= template.TimeslotsPerDay; timeslot++ {
			if rand.Float64() < likelihood {
				item.Timeslots = append(item.Timeslots, timeslot)
			}
		}
		if len(item.Timeslots) > 0 {
			as.Items = append(as.Items, item)
		}
	}

	return as
}
