package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

const (
	alertDeliveryAttempts = 3
	alertDeliveryDelay    = 2 * time.Second
	alertRequestTimeout   = 10 * time.Second
)

// WebhookAlertRepository delivers alerts to the alerting collaborator over
// HTTP. The two alert kinds go to distinct endpoints so that downstream
// routing can treat "the ledger is broken" and "verification could not run"
// with different severities. With no endpoint configured, alerts degrade to
// error logs so they are never silently dropped.
type WebhookAlertRepository struct {
	httpClient           *http.Client
	integrityWebhookUrl  string
	jobFailureWebhookUrl string
}

func NewWebhookAlertRepository(integrityWebhookUrl, jobFailureWebhookUrl string) *WebhookAlertRepository {
	return &WebhookAlertRepository{
		httpClient:           &http.Client{Timeout: alertRequestTimeout},
		integrityWebhookUrl:  integrityWebhookUrl,
		jobFailureWebhookUrl: jobFailureWebhookUrl,
	}
}

func (repo *WebhookAlertRepository) SendIntegrityAlert(ctx context.Context, alert models.IntegrityAlert) error {
	payload := map[string]any{
		"alert_type":         "audit_chain_integrity_violation",
		"total_checked":      alert.TotalChecked,
		"violations_found":   alert.ViolationsFound,
		"integrity_score":    alert.IntegrityScore,
		"last_verified_hash": alert.LastVerifiedHash,
		"checked_at":         alert.CheckedAt,
	}

	if repo.integrityWebhookUrl == "" {
		utils.LoggerFromContext(ctx).ErrorContext(ctx,
			"AUDIT CHAIN INTEGRITY VIOLATION: no integrity alert webhook configured",
			"total_checked", alert.TotalChecked,
			"violations_found", alert.ViolationsFound,
			"integrity_score", alert.IntegrityScore,
			"last_verified_hash", alert.LastVerifiedHash,
		)
		return nil
	}
	return repo.post(ctx, repo.integrityWebhookUrl, payload)
}

func (repo *WebhookAlertRepository) SendJobFailureAlert(ctx context.Context, alert models.JobFailureAlert) error {
	payload := map[string]any{
		"alert_type":    "integrity_check_job_failed",
		"error_message": alert.ErrorMessage,
		"attempts":      alert.Attempts,
		"max_attempts":  alert.MaxAttempts,
		"queue_name":    alert.QueueName,
	}

	if repo.jobFailureWebhookUrl == "" {
		utils.LoggerFromContext(ctx).ErrorContext(ctx,
			"integrity check job failed permanently: no job failure alert webhook configured",
			"error_message", alert.ErrorMessage,
			"attempts", alert.Attempts,
			"max_attempts", alert.MaxAttempts,
			"queue_name", alert.QueueName,
		)
		return nil
	}
	return repo.post(ctx, repo.jobFailureWebhookUrl, payload)
}

func (repo *WebhookAlertRepository) post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "cannot marshal alert payload")
	}

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := repo.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return errors.Newf("alert webhook returned status %s", resp.Status)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(alertDeliveryAttempts),
		retry.Delay(alertDeliveryDelay),
		retry.LastErrorOnly(true),
	)
	return errors.Wrap(err, "can't deliver alert webhook")
}
