package notify

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

type templateData struct {
	Name       string
	Accepted   bool
	StatusText string
	Feedback   string
}

var htmlTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Application Status</title></head>
<body style="font-family: 'Segoe UI', Tahoma, Arial, sans-serif; line-height: 1.6; color: #2b2d42; background-color: #f8f9fa; margin: 0; padding: 0;">
<table width="100%" cellspacing="0" cellpadding="0" bgcolor="#f8f9fa"><tr><td align="center" style="padding: 40px 0;">
<table width="600" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius: 8px;">
<tr><td style="background-color: {{if .Accepted}}#3a86ff{{else}}#ff595e{{end}}; padding: 40px; text-align: center; border-radius: 8px 8px 0 0;">
<h1 style="color: white; margin: 0; font-size: 28px;">Application Status</h1>
</td></tr>
<tr><td style="padding: 40px;">
<p style="margin: 0 0 25px; font-size: 16px;">Dear {{.Name}},</p>
<p style="margin: 0 0 25px; font-size: 16px;">Thank you for your interest in joining our team.</p>
<div style="background-color: {{if .Accepted}}#e8f5e9{{else}}#ffebee{{end}}; border-radius: 8px; padding: 25px; margin: 30px 0;">
<h2 style="margin: 0 0 15px; font-size: 22px;">{{.StatusText}}</h2>
<p style="margin: 0; font-size: 16px;">{{if .Accepted}}We're thrilled to inform you that your application has been <strong>accepted</strong>! Your skills and experience stood out to us, and we believe you'll be a valuable addition to our team.{{else}}After careful consideration, we regret to inform you that we won't be moving forward with your application at this time. Our hiring process is highly competitive, and this decision doesn't necessarily reflect on your qualifications or skills.{{end}}</p>
</div>
{{if .Feedback}}<div style="background-color: #f8f9fa; border-radius: 8px; padding: 25px; margin: 30px 0;">
<h3 style="margin: 0 0 15px; font-size: 18px;">Feedback from Our Team</h3>
<p style="margin: 0;">{{.Feedback}}</p>
</div>{{end}}
<p style="margin: 30px 0;">If you have any questions, please contact <a href="mailto:hr@example.com">hr@example.com</a>.</p>
</td></tr>
<tr><td style="background-color: #f1f5f9; padding: 30px; text-align: center; border-radius: 0 0 8px 8px;">
<p style="margin: 0 0 10px; font-weight: 600; font-size: 16px;">Tech Careers Portal</p>
<p style="margin: 0; color: #6c757d; font-size: 14px;">Building the future through innovation and code.</p>
</td></tr>
</table>
</td></tr></table>
</body>
</html>`))

func buildMessage(sub *submission.Submission) (Message, error) {
	accepted := sub.Status == submission.StatusAccepted
	statusText := "Application Update"
	if accepted {
		statusText = "Welcome to the Team"
	}

	data := templateData{
		Name:       sub.FullName,
		Accepted:   accepted,
		StatusText: statusText,
		Feedback:   sub.Feedback,
	}
	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return Message{}, err
	}

	lines := []string{
		"Application Status Update",
		"",
		"Dear " + sub.FullName + ",",
		"",
		"Thank you for your application.",
		"",
		"STATUS: " + statusText,
		"",
	}
	if accepted {
		lines = append(lines, "Your application has been ACCEPTED! We're excited to welcome you to the team.")
	} else {
		lines = append(lines, "We regret to inform you that your application was not selected at this time.")
	}
	if sub.Feedback != "" {
		lines = append(lines, "", "FEEDBACK:", sub.Feedback)
	}
	lines = append(lines, "", "Questions? Contact hr@example.com", "", "Tech Careers Portal")

	return Message{
		To:       sub.Email,
		Subject:  "Application Status: " + statusText,
		HTMLBody: html.String(),
		TextBody: strings.Join(lines, "\r\n"),
	}, nil
}
