package saga

import (
	"time"

	"renthub/pkg/logger"
)

// Step 级联操作中的一个本地步骤
// Run 必须幂等；Compensate 为对应的补偿动作，可为nil。
type Step struct {
	Name       string
	Run        func() error
	Compensate func() error
}

// Runner 按顺序执行各步骤的协调器
// 不提供跨服务事务，只保证：失败的步骤之后的步骤不会提交，
// 已提交的步骤按逆序补偿。步骤完成情况记入StepLog（幂等键），
// 同一saga键重放时已完成的步骤被跳过。
type Runner struct {
	log        StepLog
	maxRetries int
	retryDelay time.Duration
}

// NewRunner 创建协调器
func NewRunner(log StepLog) *Runner {
	return &Runner{
		log:        log,
		maxRetries: 3,
		retryDelay: 100 * time.Millisecond,
	}
}

// Execute 执行一个saga
// sagaKey 标识一次级联操作（如 "application-approve:42"）。
func (r *Runner) Execute(sagaKey string, steps []Step) error {
	appLogger := logger.GetLogger()

	completed := make([]Step, 0, len(steps))
	for _, step := range steps {
		stepKey := sagaKey + ":" + step.Name

		done, err := r.log.IsDone(stepKey)
		if err != nil {
			// 步骤日志不可用按未完成处理，幂等性由Run自身兜底
			appLogger.Warnf("saga %s: step log unavailable: %v", sagaKey, err)
		}
		if done {
			completed = append(completed, step)
			continue
		}

		if err := r.runWithRetry(step); err != nil {
			appLogger.Errorf("saga %s: step %s failed: %v", sagaKey, step.Name, err)
			r.compensate(sagaKey, completed)
			return err
		}

		if err := r.log.MarkDone(stepKey); err != nil {
			appLogger.Warnf("saga %s: failed to mark step %s done: %v", sagaKey, step.Name, err)
		}
		completed = append(completed, step)
	}

	r.cleanup(sagaKey, steps)
	return nil
}

// 带重试执行单个步骤
func (r *Runner) runWithRetry(step Step) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(r.retryDelay * time.Duration(attempt))
		}
		if err = step.Run(); err == nil {
			return nil
		}
	}
	return err
}

// 逆序补偿已完成的步骤
func (r *Runner) compensate(sagaKey string, completed []Step) {
	appLogger := logger.GetLogger()
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(); err != nil {
			// 补偿失败只记录，系统进入部分级联状态等待人工处理
			appLogger.Errorf("saga %s: compensation for step %s failed: %v", sagaKey, step.Name, err)
			continue
		}
		if err := r.log.Clear(sagaKey + ":" + step.Name); err != nil {
			appLogger.Warnf("saga %s: failed to clear step %s: %v", sagaKey, step.Name, err)
		}
	}
}

// saga成功后清除步骤标记
func (r *Runner) cleanup(sagaKey string, steps []Step) {
	for _, step := range steps {
		_ = r.log.Clear(sagaKey + ":" + step.Name)
	}
}
