package email

import (
	"fmt"

	"github.com/ctfground/ctf-service/internal/models"
)

const codeBody = `<html>
<body>
<b style="font-size: 24px;">%s</b>
<div style="text-align: center">
    <span style="vertical-align: center; font-size: 24px;">%s</span>
</div>
</body>
</html>
`

var purposeMessages = map[models.ConfirmationPurpose]struct {
	subject string
	lead    string
}{
	models.PurposeLogin: {
		subject: "ctfground - New Login",
		lead:    "Enter the verification code to log in:",
	},
	models.PurposeBind: {
		subject: "ctfground - Bind Email",
		lead:    "Enter the verification code to bind your email:",
	},
	models.PurposeModify: {
		subject: "ctfground - Confirm Change",
		lead:    "Enter the verification code to confirm the change:",
	},
}

// ComposeConfirmation renders the subject and HTML body for a code.
func ComposeConfirmation(purpose models.ConfirmationPurpose, token string) (subject, body string, err error) {
	msg, ok := purposeMessages[purpose]
	if !ok {
		return "", "", fmt.Errorf("unknown confirmation purpose %q", purpose)
	}
	return msg.subject, fmt.Sprintf(codeBody, msg.lead, token), nil
}
