package cron

import (
	"Mosaic/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const defaultOrphanCleanupSpec = "@hourly"

type Manager struct {
	engine           *cron.Cron
	orphanCleanupJob *job.OrphanCleanupJob
	orphanSpec       string
}

func NewCronManager(orphanCleanupJob *job.OrphanCleanupJob, orphanSpec string) *Manager {
	if orphanSpec == "" {
		orphanSpec = defaultOrphanCleanupSpec
	}
	return &Manager{
		engine:           cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		orphanCleanupJob: orphanCleanupJob,
		orphanSpec:       orphanSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.orphanSpec, s.orphanCleanupJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "orphan_cleanup", s.orphanSpec)
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
