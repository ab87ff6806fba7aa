package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// ContactSubjectPrefix precedes the submitter's subject line.
const ContactSubjectPrefix = "New Contact Form Submission: "

// ContactEmailData holds the data for contact form emails
type ContactEmailData struct {
	Name    string
	Email   string
	Subject string
	Message string
}

const contactTextTemplate = `You have a new contact form submission:

Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}
Message: {{.Message}}
`

const contactHTMLTemplate = `<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong> {{.Message}}</p>
`

var (
	contactText = texttemplate.Must(texttemplate.New("contact_text").Parse(contactTextTemplate))
	contactHTML = htmltemplate.Must(htmltemplate.New("contact_html").Parse(contactHTMLTemplate))
)

// NewContactNotification builds the email relayed to mailbox for a submission.
// Sender and recipient are both the mailbox; replies go to the submitter.
func NewContactNotification(mailbox string, data ContactEmailData) (Message, error) {
	var text, html bytes.Buffer
	if err := contactText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute text template: %w", err)
	}
	if err := contactHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute email template: %w", err)
	}

	return Message{
		From:     mailbox,
		To:       mailbox,
		ReplyTo:  data.Email,
		Subject:  ContactSubjectPrefix + data.Subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
