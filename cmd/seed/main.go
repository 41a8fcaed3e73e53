package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/config"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/repository"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/seed"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var trainingPlanID int64
	var likelihood float64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机队员, 2: 插入随机训练模板, 3: 插入随机训练计划, 4: 插入空闲提交, 5: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&trainingPlanID, "training-plan-id", 0, "随机插入空闲提交的训练计划 ID")
	flag.Float64Var(&likelihood, "likelihood", 0.7, "随机空闲提交中每个时段被选中的概率")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的队员数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				rower, err := utils.GenerateRandomRower(cfg.Seed.Rower.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机队员", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateRower(rower); err != nil {
					slog.Error("无法插入队员", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入队员成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的训练模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				template := utils.GenerateRandomTrainingTemplate()
				if err := repo.CreateTrainingTemplate(template); err != nil {
					slog.Error("无法插入训练模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入训练模板成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的训练计划数量")
		} else {
			// 先获取所有模板
			templates, err := repo.GetAllTrainingTemplates()
			if err != nil {
				slog.Error("无法获取所有训练模板", slog.String("error", err.Error()))
				return
			}
			if len(templates) == 0 {
				slog.Error("数据库中没有训练模板，请先插入训练模板")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				// 随机选一个模板
				template := templates[rand.Intn(len(templates))]

				plan := utils.GenerateRandomTrainingPlan(template.ID)
				if err := repo.CreateTrainingPlan(plan); err != nil {
					slog.Error("无法插入训练计划", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入训练计划成功", slog.Int("count", n-cnt))
		}
	case 4:
		if trainingPlanID <= 0 {
			slog.Error("请输入合法的训练计划 ID")
			return
		}

		// 获取对应的训练计划
		plan, err := repo.GetTrainingPlanByID(trainingPlanID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的训练计划不存在", slog.Int64("training_plan_id", trainingPlanID))
			default:
				slog.Error("无法获取训练计划", slog.String("error", err.Error()))
			}
			return
		}

		// 获取对应的训练模板
		template, err := repo.GetTrainingTemplate(plan.TrainingTemplateID)
		if err != nil {
			slog.Error("无法获取训练模板", slog.String("error", err.Error()))
			return
		}

		// 获取所有的队员信息
		rowers, err := repo.GetAllRowers()
		if err != nil {
			slog.Error("无法获取所有队员", slog.String("error", err.Error()))
			return
		}

		// 为每一个队员都生成一份空闲提交并插入
		cnt := 0
		for _, rower := range rowers {
			submission := utils.GenerateRandomSubmission(template, rower, likelihood)
			submission.TrainingPlanID = plan.ID
			if err := repo.InsertAvailabilitySubmission(submission); err != nil {
				slog.Error("无法插入空闲提交", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入空闲提交成功", slog.Int("count", cnt))
	case 5:
		seed.SeedDemoData(repo, cfg.Seed.Rower.Password, cfg.Email.UserDomain)
	default:
		slog.Error("指定的操作非法")
	}
}
