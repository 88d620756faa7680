// internal/workers/notification/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "ideaforge-workers/internal/common/errors"
	"ideaforge-workers/internal/common/logger"
	"ideaforge-workers/internal/common/metrics"
	"ideaforge-workers/internal/models"
	"ideaforge-workers/internal/repository"
)

const (
	TaskType = "send-notification"

	charset = "UTF-8"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
	ErrSendFailed   = errors.New("NOTIFICATION_SEND_FAILED")
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// EmailSender is the subset of the SES client used for email.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSPublisher is the subset of the SNS client used for SMS.
type SMSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSPublisher
	store        repository.NotificationStore
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler wires the worker. Any of email, sms and store may be nil; a nil
// sender disables its channel regardless of configuration.
func NewHandler(config *Config, email EmailSender, sms SMSPublisher, store repository.NotificationStore, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
		store:        store,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, toStandardError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RecipientID == "" {
		return nil, fmt.Errorf("%w: recipientId is required", ErrInvalidInput)
	}
	msg, err := render(input.Type, h.templateData(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := h.now().UTC()
	output := &Output{NotificationID: input.NotificationID, Channels: []ChannelResult{}}
	if output.NotificationID == "" && h.store != nil {
		output.NotificationID = h.storeInApp(ctx, input, msg, now)
	}

	var failed deliveryError
	if input.Email != "" && h.emailEnabled() {
		res, err := h.sendEmail(ctx, input.Email, msg)
		output.Channels = append(output.Channels, res)
		failed.add(ChannelEmail, err)
	}
	if input.Phone != "" && h.smsEnabled() && priorityRank(input.Priority) >= priorityRank(h.config.SMSPriorityThreshold) {
		res, err := h.sendSMS(ctx, input.Phone, msg)
		output.Channels = append(output.Channels, res)
		failed.add(ChannelSMS, err)
	}

	output.Status = summarize(output.Channels)
	switch output.Status {
	case StatusSent:
		output.SentAt = now.Format(time.RFC3339)
	case StatusFailed:
		// Only retry when nothing went out; a partial delivery is not resent.
		if failed.err != nil {
			return nil, &failed
		}
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"recipientId":    input.RecipientID,
		"type":           input.Type,
		"status":         output.Status,
		"channels":       len(output.Channels),
	})
	return output, nil
}

// templateData copies the job data and links the idea when no link was given.
func (h *Handler) templateData(input *Input) map[string]interface{} {
	data := make(map[string]interface{}, len(input.Data)+1)
	for k, v := range input.Data {
		data[k] = v
	}
	if _, ok := data["ideaUrl"]; !ok && input.IdeaID != "" {
		data["ideaUrl"] = h.config.AppURL + "/ideas/" + input.IdeaID
	}
	return data
}

func (h *Handler) emailEnabled() bool { return h.config.EmailEnabled && h.email != nil }
func (h *Handler) smsEnabled() bool   { return h.config.SMSEnabled && h.sms != nil }

// storeInApp records the notification for the in-app inbox. Delivery goes
// ahead when the store is unavailable.
func (h *Handler) storeInApp(ctx context.Context, input *Input, msg *rendered, now time.Time) string {
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Title:       msg.Subject,
		Message:     msg.Short,
		IdeaID:      input.IdeaID,
		Data:        input.Data,
		CreatedAt:   now.Format(time.RFC3339),
	}
	if err := h.store.Add(ctx, n); err != nil {
		h.logger.Warn("failed to store notification", map[string]interface{}{
			"recipientId": input.RecipientID,
			"error":       err.Error(),
		})
		return ""
	}
	return n.ID
}

func (h *Handler) sendEmail(ctx context.Context, to string, msg *rendered) (ChannelResult, error) {
	res := ChannelResult{Channel: ChannelEmail}
	if !isValidEmail(to) {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("invalid email address: %s", to)
		metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
		return res, nil
	}

	out, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(h.config.FromEmail),
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String(charset)},
				Text: &sestypes.Content{Data: aws.String(msg.Text), Charset: aws.String(charset)},
			},
		},
	})
	if err != nil {
		h.logger.Warn("email delivery failed", map[string]interface{}{"error": err.Error()})
		res.Status = StatusFailed
		res.Error = err.Error()
		metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
		return res, err
	}

	res.Status = StatusSent
	res.MessageID = aws.ToString(out.MessageId)
	metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
	return res, nil
}

func (h *Handler) sendSMS(ctx context.Context, phone string, msg *rendered) (ChannelResult, error) {
	res := ChannelResult{Channel: ChannelSMS}
	if !phonePattern.MatchString(phone) {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("phone number must be E.164: %s", phone)
		metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
		return res, nil
	}

	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if h.config.SMSSenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(h.config.SMSSenderID),
		}
	}

	out, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(msg.Short),
		MessageAttributes: attrs,
	})
	if err != nil {
		h.logger.Warn("sms delivery failed", map[string]interface{}{"error": err.Error()})
		res.Status = StatusFailed
		res.Error = err.Error()
		metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
		return res, err
	}

	res.Status = StatusSent
	res.MessageID = aws.ToString(out.MessageId)
	metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
	return res, nil
}

func summarize(results []ChannelResult) string {
	if len(results) == 0 {
		return StatusDisabled
	}
	for _, r := range results {
		if r.Status == StatusSent {
			return StatusSent
		}
	}
	return StatusFailed
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

func priorityRank(p string) int {
	switch normalizePriority(p) {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	default:
		return 1
	}
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

// deliveryError collects transport failures per channel.
type deliveryError struct {
	channels []string
	err      error
}

func (e *deliveryError) add(channel string, err error) {
	if err == nil {
		return
	}
	e.channels = append(e.channels, channel)
	e.err = errors.Join(e.err, err)
}

func (e *deliveryError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSendFailed, strings.Join(e.channels, ","), e.err)
}

func (e *deliveryError) Unwrap() error { return ErrSendFailed }

func toStandardError(err error) error {
	var de *deliveryError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.As(err, &de):
		return apperrors.NewNotificationSendFailedError(strings.Join(de.channels, ","), de.err)
	default:
		return err
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.JobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.JobFailed(TaskType, string(d.Standard.Code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
