package worker

// email_worker.go
// Processes email jobs from QueueEmail: missing-product notices sent to the
// managers' address and a copy to the reporting customer.

import (
	"context"
	"encoding/json"

	"github.com/slamora/lupanes/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxEmailAttempts bounds delivery retries before a job lands in the DLQ.
const MaxEmailAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Attempts int      `json:"attempts"`
}

// EmailWorker processes email jobs from QueueEmail via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the notice. Failed jobs are re-enqueued up to
// MaxEmailAttempts, then moved to the DLQ for manual inspection.
func (w *EmailWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: empty recipients — skipping")
		return
	}

	err := w.mailer.Send(payload.To, payload.Subject, payload.Body)
	if err == nil {
		log.Info().Strs("to", payload.To).Msg("email_worker: notice sent")
		return
	}

	payload.Attempts++
	log.Error().Err(err).Strs("to", payload.To).Int("attempts", payload.Attempts).
		Msg("email_worker: failed to send email")

	if payload.Attempts >= MaxEmailAttempts {
		SendToDLQ(ctx, rdb, QueueEmail, "email", raw, err.Error(), payload.Attempts)
		return
	}

	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return
	}
	job, marshalErr := json.Marshal(Job{Type: "email", Payload: data})
	if marshalErr != nil {
		return
	}
	if pushErr := rdb.LPush(ctx, QueueEmail, job).Err(); pushErr != nil {
		log.Error().Err(pushErr).Msg("email_worker: re-enqueue failed")
	}
}
