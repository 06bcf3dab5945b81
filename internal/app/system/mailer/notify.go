// internal/app/system/mailer/notify.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"go.uber.org/zap"
)

// Notifier tells the agency inbox about new public submissions.
// A nil Notifier, or one without a recipient, sends nothing.
type Notifier struct {
	sender Sender
	to     string
	log    *zap.Logger
}

// NewNotifier creates a Notifier delivering to the agency address to.
func NewNotifier(sender Sender, to string, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, to: strings.TrimSpace(to), log: log}
}

// Enabled reports whether new submissions are emailed to the agency.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && n.to != ""
}

// ContactReceived sends a summary of a contact form submission.
// Delivery failures are logged and otherwise ignored.
func (n *Notifier) ContactReceived(c models.Contact) {
	if !n.Enabled() {
		return
	}
	subject := "Nouveau message de contact : " + c.FirstName + " " + c.LastName
	if c.Subject != "" {
		subject += " (" + c.Subject + ")"
	}
	n.send(subject, c.Email, contactText, contactHTML, c)
}

// TravelRequestReceived sends a summary of a custom trip request.
// Delivery failures are logged and otherwise ignored.
func (n *Notifier) TravelRequestReceived(tr models.TravelRequest) {
	if !n.Enabled() {
		return
	}
	subject := "Nouvelle demande de voyage : " + tr.Name + " (" + tr.Destination + ")"
	n.send(subject, tr.Email, travelText, travelHTML, tr)
}

func (n *Notifier) send(subject, replyTo string, text *texttemplate.Template, html *template.Template, data any) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		n.log.Error("render notification", zap.String("template", text.Name()), zap.Error(err))
		return
	}
	if err := html.Execute(&hb, data); err != nil {
		n.log.Error("render notification", zap.String("template", html.Name()), zap.Error(err))
		return
	}
	if err := n.sender.Send(Email{
		To:       n.to,
		ReplyTo:  replyTo,
		Subject:  subject,
		TextBody: tb.String(),
		HTMLBody: hb.String(),
	}); err != nil {
		n.log.Warn("agency notification not delivered",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

var funcs = map[string]any{
	"join": strings.Join,
	"date": func(t interface{ Format(string) string }) string { return t.Format("02/01/2006 15:04") },
}

var contactText = texttemplate.Must(texttemplate.New("contact.txt").Funcs(funcs).Parse(
	`Nouveau message reçu le {{date .CreatedAt}}

Nom : {{.FirstName}} {{.LastName}}
Email : {{.Email}}
{{- if .Phone}}
Téléphone : {{.Phone}}{{end}}
{{- if .Subject}}
Sujet : {{.Subject}}{{end}}

{{.Message}}
`))

var contactHTML = template.Must(template.New("contact.html").Funcs(funcs).Parse(
	`<h2>Nouveau message de contact</h2>
<p><strong>{{.FirstName}} {{.LastName}}</strong> &lt;{{.Email}}&gt;{{if .Phone}}<br>Téléphone : {{.Phone}}{{end}}</p>
{{if .Subject}}<p>Sujet : {{.Subject}}</p>{{end}}
<blockquote>{{.Message}}</blockquote>
<p><small>Reçu le {{date .CreatedAt}}</small></p>
`))

var travelText = texttemplate.Must(texttemplate.New("travel.txt").Funcs(funcs).Parse(
	`Nouvelle demande de voyage sur mesure reçue le {{date .CreatedAt}}

Nom : {{.Name}}
Email : {{.Email}}
{{- if .Phone}}
Téléphone : {{.Phone}}{{end}}
Destinations : {{.Destination}}
Durée : {{.Duration}}
Départ : {{.StartDate}}
Voyageurs : {{.Travelers}}
Budget : {{.Budget}}
Centres d'intérêt : {{join .Interests ", "}}
Hébergement : {{.AccommodationType}}
Transport : {{.TransportPreference}}
{{- if .SpecialRequests}}

Demandes particulières :
{{.SpecialRequests}}{{end}}
`))

var travelHTML = template.Must(template.New("travel.html").Funcs(funcs).Parse(
	`<h2>Nouvelle demande de voyage</h2>
<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt;{{if .Phone}}<br>Téléphone : {{.Phone}}{{end}}</p>
<ul>
<li>Destinations : {{.Destination}}</li>
<li>Durée : {{.Duration}}</li>
<li>Départ : {{.StartDate}}</li>
<li>Voyageurs : {{.Travelers}}</li>
<li>Budget : {{.Budget}}</li>
<li>Centres d'intérêt : {{join .Interests ", "}}</li>
<li>Hébergement : {{.AccommodationType}}</li>
<li>Transport : {{.TransportPreference}}</li>
</ul>
{{if .SpecialRequests}}<blockquote>{{.SpecialRequests}}</blockquote>{{end}}
`))
