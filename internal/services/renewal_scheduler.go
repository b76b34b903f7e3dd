package services

import (
	"fmt"
	"time"

	"renthub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RenewalScheduler 续租报价过期调度器
// 定时扫描超过答复时限仍为pending的续租报价，统一置为expired。
type RenewalScheduler struct {
	leaseService *LeaseService
	cron         *cron.Cron
	spec         string
	offerTTL     time.Duration
	running      bool
}

// NewRenewalScheduler 创建续租报价过期调度器
func NewRenewalScheduler(leaseService *LeaseService, spec string, offerTTLDays int) *RenewalScheduler {
	return &RenewalScheduler{
		leaseService: leaseService,
		cron:         cron.New(),
		spec:         spec,
		offerTTL:     time.Duration(offerTTLDays) * 24 * time.Hour,
	}
}

// Start 启动调度器
func (s *RenewalScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	if _, err := s.cron.AddFunc(s.spec, s.expireOnce); err != nil {
		return fmt.Errorf("添加定时任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true

	logger.GetLogger().Infof("续租报价过期调度器启动成功，cron: %s，报价有效期: %v", s.spec, s.offerTTL)
	return nil
}

// Stop 停止调度器
func (s *RenewalScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("停止续租报价过期调度器")
	s.cron.Stop()
	s.running = false
}

// expireOnce 执行一轮过期扫描
func (s *RenewalScheduler) expireOnce() {
	count, err := s.leaseService.ExpireStaleOffers(s.offerTTL)
	if err != nil {
		logger.GetLogger().Errorf("续租报价过期扫描失败: %v", err)
		return
	}
	if count > 0 {
		logger.GetLogger().Infof("续租报价过期扫描完成，处理 %d 条报价", count)
	}
}
