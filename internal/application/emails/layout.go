package emails

import (
	"fmt"
	"html"
	"time"

	"setu-backend/internal/domain"
)

const (
	themePrimary  = "#B45309"
	themeTextMain = "#1F2937"
	themeBgBody   = "#F3F4F6"
	themeWhite    = "#FFFFFF"
)

// Layout wraps content in the shared HTML shell.
func Layout(contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Gram Pragati Setu</title>
  <style>
    body { margin: 0; padding: 0; background-color: %s; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: %s; }
    .content-body p { margin: 0 0 20px 0; font-size: 16px; line-height: 1.6; }
    .content-body h1 { font-size: 22px; margin: 0 0 18px 0; }
    .setu-button { display: inline-block; background-color: %s; color: #ffffff !important; padding: 12px 28px; border-radius: 6px; font-weight: 600; text-decoration: none; }
  </style>
</head>
<body>
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0" style="background-color: %s;">
    <tr>
      <td align="center" style="padding: 40px 0;">
        <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color: %s; border-radius: 8px;">
          <tr><td class="content-body" style="padding: 40px 48px 24px 48px;">%s</td></tr>
          <tr><td style="padding: 0 48px 32px 48px; font-size: 13px; color: #6B7280;">PM-AJAY Gram Pragati Setu &middot; %d</td></tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, themeBgBody, themeTextMain, themePrimary, themeBgBody, themeWhite, contentHTML, time.Now().Year())
}

func welcomeContent(name, role string) string {
	return fmt.Sprintf(`
    <h1>Namaste %s,</h1>
    <p>An account has been created for you on <strong>Gram Pragati Setu</strong> with the role <strong>%s</strong>.</p>
    <p>Sign in to start tracking village projects and checkpoint evidence.</p>
`, html.EscapeString(name), html.EscapeString(role))
}

func reviewHeadline(status domain.SubmissionStatus) string {
	switch status {
	case domain.SubmissionApproved:
		return "Evidence approved"
	case domain.SubmissionRejected:
		return "Evidence rejected"
	case domain.SubmissionRequiresRevision:
		return "Revision requested"
	}
	return "Evidence reviewed"
}

func reviewContent(name string, n ReviewNotice) string {
	notes := ""
	if n.ReviewNotes != "" {
		notes = fmt.Sprintf(`<p><strong>Reviewer notes:</strong><br>%s</p>`, html.EscapeString(n.ReviewNotes))
	}
	next := "No further action is needed for this checkpoint."
	if n.Status == domain.SubmissionRequiresRevision {
		next = "Please submit fresh evidence for this checkpoint."
	} else if n.Status == domain.SubmissionRejected {
		next = "Contact your block officer if you believe this decision is wrong."
	}
	return fmt.Sprintf(`
    <h1>%s</h1>
    <p>Hi %s, your evidence for <strong>%s</strong> on project <strong>%s</strong> was reviewed.</p>
    %s
    <p>%s</p>
`, reviewHeadline(n.Status), html.EscapeString(name), html.EscapeString(n.CheckpointName),
		html.EscapeString(n.ProjectTitle), notes, next)
}
