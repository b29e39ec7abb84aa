package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Email task types.
const (
	TypeVerificationEmail  = "email:verification"
	TypeWelcomeEmail       = "email:welcome"
	TypePasswordResetEmail = "email:password_reset"
	TypeContactOwnerEmail  = "email:contact_owner"
)

// EmailPayload is the JSON body of every email task.
type EmailPayload struct {
	To          string `json:"to"`
	Name        string `json:"name,omitempty"`
	Link        string `json:"link,omitempty"`
	ReplyTo     string `json:"replyTo,omitempty"`
	SenderName  string `json:"senderName,omitempty"`
	Message     string `json:"message,omitempty"`
	ListingName string `json:"listingName,omitempty"`
}

// NewEmailTask wraps payload in a task of the given type.
func NewEmailTask(taskType string, payload EmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, b), nil
}

// Enqueuer is the part of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EmailQueue schedules outgoing email.
type EmailQueue interface {
	QueueVerification(ctx context.Context, to, name, link string) error
	QueueWelcome(ctx context.Context, to, name string) error
	QueuePasswordReset(ctx context.Context, to, name, link string) error
	QueueContactOwner(ctx context.Context, to string, p EmailPayload) error
}

// MailQueue enqueues email tasks on asynq.
type MailQueue struct {
	client   Enqueuer
	maxRetry int
}

func NewMailQueue(client Enqueuer) *MailQueue {
	return &MailQueue{client: client, maxRetry: 5}
}

func (q *MailQueue) enqueue(ctx context.Context, taskType string, p EmailPayload) error {
	task, err := NewEmailTask(taskType, p)
	if err != nil {
		return fmt.Errorf("failed to build %s task: %w", taskType, err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(q.maxRetry), asynq.Queue("mail")); err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}
	return nil
}

func (q *MailQueue) QueueVerification(ctx context.Context, to, name, link string) error {
	return q.enqueue(ctx, TypeVerificationEmail, EmailPayload{To: to, Name: name, Link: link})
}

func (q *MailQueue) QueueWelcome(ctx context.Context, to, name string) error {
	return q.enqueue(ctx, TypeWelcomeEmail, EmailPayload{To: to, Name: name})
}

func (q *MailQueue) QueuePasswordReset(ctx context.Context, to, name, link string) error {
	return q.enqueue(ctx, TypePasswordResetEmail, EmailPayload{To: to, Name: name, Link: link})
}

func (q *MailQueue) QueueContactOwner(ctx context.Context, to string, p EmailPayload) error {
	p.To = to
	return q.enqueue(ctx, TypeContactOwnerEmail, p)
}
