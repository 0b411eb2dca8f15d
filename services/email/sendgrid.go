package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"
	"sort"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"

	sendgridAPI = sendgrid.API // mockable
)

// sendgridService delivers through the SendGrid v3 API.
// Every recipient gets its own personalization: results and reset links are personal, so no recipient
// sees the others. Message tags become categories and message metadata custom args, which SendGrid
// echoes back in its delivery events.
type sendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	sandbox    bool
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		key:        conf.SendgridApiKey,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		sandbox:    conf.TestMode,
		logger:     logger,
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.TemplateName, err), err)
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	svc.send(*msg)
}

func sgAddress(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func (svc sendgridService) personalization(to mail.Address, msg core.EmailMessage) *sgmail.Personalization {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(sgAddress(to))

	keys := make([]string, 0, len(msg.Metadata))
	for k := range msg.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.SetCustomArg(k, msg.Metadata[k])
	}
	return p
}

func (svc sendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)

	for _, to := range msg.To {
		p := svc.personalization(to, msg)
		// copies go along with the first recipient only
		if len(m.Personalizations) == 0 {
			for _, cc := range msg.Cc {
				p.AddCCs(sgAddress(cc))
			}
			for _, bcc := range msg.Bcc {
				p.AddBCCs(sgAddress(bcc))
			}
		}
		m.AddPersonalizations(p)
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	if tags := msg.Tags(); len(tags) > 0 {
		m.AddCategories(tags...)
	}
	if svc.sandbox {
		m.SetMailSettings(sgmail.NewMailSettings().SetSandboxMode(sgmail.NewSetting(true)))
	}
	return m
}

func (svc sendgridService) request(msg core.EmailMessage) rest.Request {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))
	return req
}

func (svc sendgridService) send(msg core.EmailMessage) {
	res, err := sendgridAPI(svc.request(msg))
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending email %q: %v", msg.TemplateName, err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending email %q - status: %d - body: %s", msg.TemplateName, res.StatusCode, res.Body))
	}
}
