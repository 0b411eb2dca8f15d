package assessment

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

const resultEmailTemplate = "assessment_result"

type resultEmailData struct {
	Name          string
	SubmissionID  string
	TemplateTitle string
	TopicArea     string
	FinalScore    string
	MaxScore      int
	Percentage    int
	Approved      bool
	RetryAfter    string
}

// notifyResult mails the decision on `sub` to its volunteer. Failures are logged, never returned.
func (svc *Service) notifyResult(ctx context.Context, sub Submission, detail TemplateDetail, settings Settings) {
	if svc.mailSvc == nil || svc.profiles == nil {
		return
	}
	vol, err := svc.profiles.GetByID(ctx, sub.VolunteerID)
	if err != nil {
		if svc.logger != nil {
			svc.logger.Error("could not notify assessment result", errors.Wrapf(err, "submission %s", sub.ID))
		}
		return
	}
	if vol.Email == "" {
		return
	}

	data := resultEmailData{
		Name:          vol.Name,
		SubmissionID:  sub.ID,
		TemplateTitle: detail.Title,
		TopicArea:     sub.TopicArea,
		FinalScore:    fmt.Sprintf("%g", sub.FinalScore),
		MaxScore:      sub.MaxScore,
		Percentage:    sub.Percentage,
		Approved:      sub.Status == StatusApproved,
	}
	if settings.CooldownDays > 0 {
		data.RetryAfter = sub.CompletedAt.AddDate(0, 0, settings.CooldownDays).Format("02/01/2006")
	}
	if data.Name == "" {
		data.Name = vol.Username
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: vol.Name, Address: vol.Email}},
		Subject:      fmt.Sprintf("Resultado de tu autoevaluación: %s", detail.Title),
		TemplateName: resultEmailTemplate,
		TemplateData: data,
		Categories:   []string{"assessment", string(sub.Status)},
		Metadata: map[string]string{
			"submission_id": sub.ID,
			"profile_id":    vol.ID,
			"topic_area":    sub.TopicArea,
		},
	})
}
