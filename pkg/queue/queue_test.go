package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueue(client, nil), mr
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	logID := uuid.New()
	payload := EmailPayload{
		EmailType:      "otp_verification",
		EmailLogID:     logID,
		RecipientEmail: "anshul@student.com",
		Subject:        "Your verification code",
		BodyHTML:       "<p>123456</p>",
	}
	if err := q.EnqueueEmail(ctx, payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if job == nil {
		t.Fatalf("expected a job")
	}
	if job.Type != JobTypeEmail || job.Attempt != 0 || job.ID == "" {
		t.Fatalf("unexpected job envelope: %+v", job)
	}

	var got EmailPayload
	if err := json.Unmarshal(job.Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.EmailLogID != logID || got.RecipientEmail != payload.RecipientEmail {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

func TestDequeuePreservesOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	for _, to := range []string{"first@s.com", "second@s.com"} {
		if err := q.EnqueueEmail(ctx, EmailPayload{EmailType: "otp_verification", EmailLogID: uuid.New(), RecipientEmail: to}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	for _, want := range []string{"first@s.com", "second@s.com"} {
		job, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		var p EmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if p.RecipientEmail != want {
			t.Fatalf("expected %s, got %s", want, p.RecipientEmail)
		}
	}
}

func TestRetryRequeuesThenDeadLetters(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	if err := q.EnqueueEmail(ctx, EmailPayload{EmailType: "otp_verification", EmailLogID: uuid.New(), RecipientEmail: "anshul@student.com"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	for attempt := 1; attempt < MaxRetries; attempt++ {
		job, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue: %v", err)
		}
		if err := q.Retry(ctx, job); err != nil {
			t.Fatalf("retry: %v", err)
		}
		if job.Attempt != attempt {
			t.Fatalf("expected attempt %d, got %d", attempt, job.Attempt)
		}
	}

	// The final retry moves the job to the dead-letter queue.
	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := q.Retry(ctx, job); err != nil {
		t.Fatalf("final retry: %v", err)
	}

	if n, err := mr.List(QueueEmails); err == nil && len(n) != 0 {
		t.Fatalf("work queue should be empty, has %d", len(n))
	}
	dlq, err := mr.List(QueueDLQ)
	if err != nil {
		t.Fatalf("dlq list: %v", err)
	}
	if len(dlq) != 1 {
		t.Fatalf("expected 1 job in DLQ, got %d", len(dlq))
	}
}
