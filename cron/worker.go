package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"roaddarts/services/tasks"
	"roaddarts/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// MailWorker processes queued email tasks.
type MailWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

// NewMailWorker builds an asynq server that hands email tasks to mailer.
func NewMailWorker(redisOpts asynq.RedisClientOpt, mailer tasks.Mailer) *MailWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"mail":    2,
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	h := HandleEmailTask(mailer)
	for _, t := range []string{
		tasks.TypeVerificationEmail,
		tasks.TypeWelcomeEmail,
		tasks.TypePasswordResetEmail,
		tasks.TypeContactOwnerEmail,
	} {
		mux.HandleFunc(t, h)
	}
	return &MailWorker{srv: srv, mux: mux}
}

// Start runs the worker in the background.
func (w *MailWorker) Start() error {
	utils.GetLogger().Info("Starting mail worker")
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start mail worker: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *MailWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleEmailTask renders and delivers one email task.
func HandleEmailTask(mailer tasks.Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.EmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid email payload", zap.String("type", task.Type()), zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		msg, err := tasks.Render(task.Type(), p)
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := mailer.Send(ctx, msg); err != nil {
			logger.Warn("Email delivery failed", zap.String("type", task.Type()), zap.String("to", p.To), zap.Error(err))
			return err
		}
		logger.Info("Email sent", zap.String("type", task.Type()), zap.String("to", p.To))
		return nil
	}
}
