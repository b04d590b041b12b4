package attendance

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/absensi/core"
)

// Renderer renders a report into an exportable file.
type Renderer interface {
	RenderXLSX(r Report) ([]byte, error)
	RenderPDF(r Report) ([]byte, error)
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

type recapMail struct {
	Period         string
	Class          string
	PresentPercent string
	Note           string
	Summary        StatusSummary
}

// MailReport emails the xlsx and pdf exports of a recap to the recipients of mr.
// Sending happens in the background; errors are reported by the email service.
func (svc *Service) MailReport(ctx context.Context, q RecapQuery, mr MailRequest, renderer Renderer, mailer core.EmailService) error {
	if err := mr.Validate(svc.Validate); err != nil {
		return err
	}
	report, err := svc.Report(ctx, q)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		Subject:      report.Title + " - " + report.Class,
		TemplateName: "recap",
		TemplateData: recapMail{
			Period:         report.Label,
			Class:          report.Class,
			PresentPercent: report.Summary.FormatPercent(Present),
			Note:           mr.Note,
			Summary:        report.Summary,
		},
	}
	for _, to := range mr.To {
		msg.To = append(msg.To, mail.Address{Address: to})
	}

	xlsx, err := renderer.RenderXLSX(report)
	if err != nil {
		return errors.Wrap(err, "rendering xlsx")
	}
	if err := msg.AttachBytes(xlsx, report.FileName("xlsx"), ContentTypeXLSX); err != nil {
		return err
	}
	pdf, err := renderer.RenderPDF(report)
	if err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	if err := msg.AttachBytes(pdf, report.FileName("pdf"), ContentTypePDF); err != nil {
		return err
	}

	mailer.SendMessages(msg)
	return nil
}
