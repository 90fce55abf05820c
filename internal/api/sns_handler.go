package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
	"github.com/everfaz/ses-compliance/internal/service/reputation"
)

// snsEnvelope is the outer SNS message wrapper.
type snsEnvelope struct {
	Type         string `json:"Type"`
	MessageID    string `json:"MessageId"`
	TopicArn     string `json:"TopicArn"`
	Message      string `json:"Message"`
	SubscribeURL string `json:"SubscribeURL"`
	Timestamp    string `json:"Timestamp"`
}

// sesNotification is the SES message carried inside the envelope.
type sesNotification struct {
	NotificationType string `json:"notificationType"`
	EventType        string `json:"eventType"`
	Bounce           *struct {
		BounceType        string `json:"bounceType"`
		BounceSubType     string `json:"bounceSubType"`
		BouncedRecipients []struct {
			EmailAddress   string `json:"emailAddress"`
			DiagnosticCode string `json:"diagnosticCode"`
		} `json:"bouncedRecipients"`
	} `json:"bounce"`
	Complaint *struct {
		ComplaintFeedbackType string `json:"complaintFeedbackType"`
		ComplainedRecipients  []struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"complainedRecipients"`
	} `json:"complaint"`
	Mail *struct {
		MessageID   string    `json:"messageId"`
		Timestamp   time.Time `json:"timestamp"`
		Destination []string  `json:"destination"`
	} `json:"mail"`
}

// HandleSNS consumes SES feedback delivered through SNS. Subscription
// confirmations are acknowledged by fetching the SubscribeURL. A failure to
// append the underlying event returns 500 so SNS redelivers.
//
//	POST /webhooks/sns
func (h *Handlers) HandleSNS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		respondError(w, http.StatusBadRequest, "invalid SNS envelope")
		return
	}

	switch env.Type {
	case "SubscriptionConfirmation":
		h.confirmSubscription(env)
		respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
	case "UnsubscribeConfirmation":
		logger.Warn("SNS topic unsubscribed", "topic", env.TopicArn)
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "Notification":
		if err := h.processNotification(r, env.Message); err != nil {
			logger.Error("processing SES notification failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "notification processing failed")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
	default:
		logger.Warn("unknown SNS message type", "type", env.Type)
		respondError(w, http.StatusBadRequest, "unrecognized message type")
	}
}

func (h *Handlers) confirmSubscription(env snsEnvelope) {
	if env.SubscribeURL == "" || !strings.HasPrefix(env.SubscribeURL, "https://") {
		logger.Warn("subscription confirmation without usable URL", "topic", env.TopicArn)
		return
	}
	resp, err := http.Get(env.SubscribeURL)
	if err != nil {
		logger.Error("confirming SNS subscription failed", "error", err.Error())
		return
	}
	resp.Body.Close()
	logger.Info("SNS subscription confirmed", "topic", env.TopicArn)
}

func (h *Handlers) processNotification(r *http.Request, raw string) error {
	var note sesNotification
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		// Malformed payloads are logged and acknowledged; SNS retrying
		// them forever helps no one.
		logger.Warn("unparseable SES notification", "error", err.Error())
		return nil
	}

	eventType := note.NotificationType
	if eventType == "" {
		eventType = note.EventType
	}

	ts := time.Now().UTC()
	messageID := ""
	if note.Mail != nil {
		if !note.Mail.Timestamp.IsZero() {
			ts = note.Mail.Timestamp
		}
		messageID = note.Mail.MessageID
	}

	switch strings.ToLower(eventType) {
	case "bounce":
		if note.Bounce == nil {
			return nil
		}
		bounceType := domain.BounceSoft
		if note.Bounce.BounceType == "Permanent" {
			bounceType = domain.BounceHard
		}
		for _, rcpt := range note.Bounce.BouncedRecipients {
			err := h.reputation.HandleBounce(r.Context(), reputation.BounceEvent{
				Email:          rcpt.EmailAddress,
				BounceType:     bounceType,
				BounceSubType:  note.Bounce.BounceSubType,
				Timestamp:      ts,
				DiagnosticCode: rcpt.DiagnosticCode,
			})
			if err != nil {
				return err
			}
		}
	case "complaint":
		if note.Complaint == nil {
			return nil
		}
		for _, rcpt := range note.Complaint.ComplainedRecipients {
			err := h.reputation.HandleComplaint(r.Context(), reputation.ComplaintEvent{
				Email:         rcpt.EmailAddress,
				ComplaintType: complaintType(note.Complaint.ComplaintFeedbackType),
				Timestamp:     ts,
			})
			if err != nil {
				return err
			}
		}
	case "delivery":
		if note.Mail == nil {
			return nil
		}
		for _, rcpt := range note.Mail.Destination {
			err := h.reputation.HandleDelivery(r.Context(), reputation.DeliveryEvent{
				Email:     rcpt,
				Timestamp: ts,
				MessageID: messageID,
			})
			if err != nil {
				return err
			}
		}
	default:
		logger.Info("ignoring SES event type", "type", eventType)
	}
	return nil
}

func complaintType(feedbackType string) domain.ComplaintType {
	switch strings.ToLower(feedbackType) {
	case "abuse":
		return domain.ComplaintAbuse
	case "fraud":
		return domain.ComplaintFraud
	case "virus":
		return domain.ComplaintVirus
	case "other":
		return domain.ComplaintOther
	default:
		return domain.ComplaintSpam
	}
}
