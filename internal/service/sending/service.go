package sending

import (
	"context"
	"net/url"
	"time"

	"github.com/everfaz/ses-compliance/internal/config"
	"github.com/everfaz/ses-compliance/internal/domain"
	"github.com/everfaz/ses-compliance/internal/pkg/logger"
	"github.com/everfaz/ses-compliance/internal/templates"
)

// SuppressionChecker answers whether an address may receive mail at all.
type SuppressionChecker interface {
	Check(ctx context.Context, email string) domain.SuppressionStatus
}

// RecipientResolver resolves consent for an address. explicitConsent selects
// the marketing rules.
type RecipientResolver interface {
	Recipient(ctx context.Context, email string, explicitConsent bool) (*domain.Recipient, error)
}

// SendRecorder appends a send event to the reputation log.
type SendRecorder interface {
	RecordSend(ctx context.Context, email, templateName, messageID string) error
}

// RateLimiter paces outbound sends. Wait blocks until a slot is available or
// the context is done.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Exclusion names a recipient dropped from a batch and why.
type Exclusion struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Result summarizes one batch send.
type Result struct {
	Success    bool        `json:"success"`
	Sent       int         `json:"sent"`
	Failed     int         `json:"failed"`
	Excluded   []Exclusion `json:"excluded,omitempty"`
	MessageIDs []string    `json:"message_ids,omitempty"`
}

// Orchestrator runs the compliance gauntlet for outbound email.
type Orchestrator struct {
	transport    Transport
	suppressions SuppressionChecker
	recipients   RecipientResolver
	recorder     SendRecorder
	limiter      RateLimiter
	compliance   config.ComplianceConfig
	now          func() time.Time
}

func NewOrchestrator(transport Transport, suppressions SuppressionChecker, recipients RecipientResolver, recorder SendRecorder, limiter RateLimiter, compliance config.ComplianceConfig) *Orchestrator {
	return &Orchestrator{
		transport:    transport,
		suppressions: suppressions,
		recipients:   recipients,
		recorder:     recorder,
		limiter:      limiter,
		compliance:   compliance,
		now:          time.Now,
	}
}

// SendTemplated sends the named template to every eligible recipient.
// Template and variable problems reject the whole call. Recipient problems
// (suppression, missing consent, transport failure) skip that recipient and
// the batch continues.
func (o *Orchestrator) SendTemplated(ctx context.Context, templateName string, recipients []string, data map[string]string) (*Result, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return nil, err
	}
	missing, err := templates.Validate(templateName, data)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingVariablesError{Template: templateName, Missing: missing}
	}
	reqs, err := templates.Compliance(templateName)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, raw := range recipients {
		email := domain.NormalizeEmail(raw)

		if status := o.suppressions.Check(ctx, email); status.Suppressed {
			result.Excluded = append(result.Excluded, Exclusion{Email: email, Reason: status.Reason})
			logger.Info("recipient excluded by suppression list",
				"email", email,
				"template", templateName,
				"reason", status.Reason)
			continue
		}

		recipient, err := o.recipients.Recipient(ctx, email, reqs.RequiresExplicitConsent)
		if err != nil {
			result.Excluded = append(result.Excluded, Exclusion{Email: email, Reason: err.Error()})
			logger.Info("recipient excluded by consent registry",
				"email", email,
				"template", templateName,
				"reason", err.Error())
			continue
		}

		if err := o.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			// A broken limiter slows nothing; the provider enforces its
			// own quota as the backstop.
			logger.Warn("rate limiter unavailable", "error", err.Error())
		}

		msgData := o.injectCompliance(tmpl, reqs, recipient, data)
		subject, err := templates.RenderSubject(templateName, msgData)
		if err != nil {
			return nil, err
		}

		msgID, err := o.transport.Send(ctx, &Message{
			To:       recipient.Email,
			From:     o.compliance.FromAddress,
			ReplyTo:  o.compliance.ReplyTo,
			Subject:  subject,
			Template: tmpl.ProviderName,
			Data:     msgData,
			Tags: map[string]string{
				"template": tmpl.Name,
				"category": string(tmpl.Category),
			},
		})
		if err != nil {
			result.Failed++
			logger.Error("send failed",
				"email", recipient.Email,
				"template", templateName,
				"kind", string(KindOf(err)),
				"error", err.Error())
			continue
		}

		result.Sent++
		result.MessageIDs = append(result.MessageIDs, msgID)
		if err := o.recorder.RecordSend(ctx, recipient.Email, tmpl.Name, msgID); err != nil {
			// The message is already out; the event log catches up later.
			logger.Error("recording send event failed",
				"email", recipient.Email,
				"message_id", msgID,
				"error", err.Error())
		}
	}

	result.Success = result.Sent > 0
	logger.Info("batch send finished",
		"template", templateName,
		"sent", result.Sent,
		"failed", result.Failed,
		"excluded", len(result.Excluded))
	return result, nil
}

// SendContactConfirmation sends the transactional acknowledgment for a
// contact-form submission.
func (o *Orchestrator) SendContactConfirmation(ctx context.Context, sub domain.ContactSubmission) (*Result, error) {
	return o.SendTemplated(ctx, "contactConfirmation", []string{sub.Email}, map[string]string{
		"name":           sub.FullName(),
		"email":          domain.NormalizeEmail(sub.Email),
		"subject":        "We received your message",
		"submissionDate": o.now().UTC().Format("January 2, 2006"),
	})
}

// SendWelcome sends the transactional welcome message to a new contact.
func (o *Orchestrator) SendWelcome(ctx context.Context, email, name string) (*Result, error) {
	return o.SendTemplated(ctx, "welcome", []string{email}, map[string]string{
		"name":  name,
		"email": domain.NormalizeEmail(email),
	})
}

// injectCompliance copies the caller's data and adds the variables the
// template's compliance rules demand. Caller data never overrides the
// injected values.
func (o *Orchestrator) injectCompliance(tmpl templates.Template, reqs templates.Requirements, recipient *domain.Recipient, data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+4)
	for k, v := range data {
		out[k] = v
	}
	if reqs.RequiresUnsubscribeLink {
		out["unsubscribeUrl"] = o.compliance.UnsubscribeBaseURL + "?email=" + url.QueryEscape(recipient.Email)
	}
	if reqs.RequiresCompanyInfo {
		out["companyName"] = o.compliance.CompanyName
		out["companyAddress"] = o.compliance.CompanyAddress
	}
	if tmpl.Category == templates.CategoryMarketing {
		out["consentReminder"] = "You are receiving this email because you opted in via " + recipient.Source + "."
	}
	return out
}
