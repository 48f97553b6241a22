package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vidya-vichar/backend/internal/emaillogs"
	"github.com/vidya-vichar/backend/pkg/mailer"
	"github.com/vidya-vichar/backend/pkg/queue"
)

// EmailProcessor drains the email queue: deliver the message, then mark the
// audit log sent or failed.
type EmailProcessor struct {
	logs   *emaillogs.Repository
	mailer mailer.Mailer
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(logs *emaillogs.Repository, m mailer.Mailer, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, mailer: m, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.mailer.Send(ctx, payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if logErr := p.logs.MarkFailed(ctx, payload.EmailLogID, err.Error()); logErr != nil {
			p.logger.Error("mark email log failed", zap.Error(logErr), zap.String("email_log_id", payload.EmailLogID.String()))
		}
		return fmt.Errorf("send email: %w", err)
	}

	if err := p.logs.MarkSent(ctx, payload.EmailLogID, time.Now().UTC()); err != nil {
		p.logger.Error("mark email log sent", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
	p.logger.Info("email sent",
		zap.String("type", payload.EmailType),
		zap.String("to", payload.RecipientEmail),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
