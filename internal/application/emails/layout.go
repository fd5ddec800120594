package emails

import (
	"fmt"
	"html"
	"time"
)

const (
	themePrimary   = "#221FEB"
	themeTextMain  = "#1F2937"
	themeTextMuted = "#6B7280"
	themeBgBody    = "#F3F4F6"
	themeBgPanel   = "#F8F9FA"
	themeWhite     = "#FFFFFF"
)

// EmailLayout wraps content in the LOKL transactional layout.
func EmailLayout(contentHTML string, year int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>LOKL</title>
  <style>
    body { margin: 0; padding: 0; width: 100%% !important; background-color: %s; }
    body, td, p, a, li { font-family: Arial, Helvetica, sans-serif; color: %s; }
    .content-body p { margin: 0 0 16px 0; font-size: 16px; line-height: 1.6; }
    .content-body h2 { color: %s; font-size: 22px; margin: 0 0 20px 0; }
    .panel { background-color: %s; padding: 15px; border-radius: 5px; margin: 15px 0; }
    .footer-text { color: %s; font-size: 13px; line-height: 1.5; }
  </style>
</head>
<body style="margin: 0; padding: 0; background-color: %s;">
  <table role="presentation" width="100%%" border="0" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 32px 0;">
        <table role="presentation" width="600" border="0" cellspacing="0" cellpadding="0" style="width: 600px; background-color: %s; border-radius: 8px;">
          <tr>
            <td class="content-body" style="padding: 40px 48px 24px 48px;">%s</td>
          </tr>
          <tr>
            <td align="center" style="padding: 0 48px 32px 48px;">
              <p class="footer-text" style="margin: 0;">© %d LOKL. Todos los derechos reservados.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		themeBgBody, themeTextMain, themePrimary, themeBgPanel, themeTextMuted,
		themeBgBody, themeWhite, contentHTML, year)
}

// EscapeHTML escapes HTML specials for safe interpolation.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

func layoutYear(now time.Time) int {
	if now.IsZero() {
		return time.Now().Year()
	}
	return now.Year()
}
