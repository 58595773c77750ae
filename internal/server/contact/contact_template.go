package contact

import (
	"fmt"
	"strings"
)

const subjectPrefix = "GFXTAB Contact: "

// Field values are substituted verbatim, without HTML escaping.
const bodyTemplate = `<html>
    <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
        <div style="max-width: 600px; margin: 0 auto; padding: 20px; background: #f9f9f9; border-radius: 8px;">
            <h2 style="color: #00f6ff; margin-bottom: 20px;">New Contact Form Submission - GFXTAB</h2>
            <div style="background: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
                <p><strong style="color: #555;">Name:</strong> {{name}}</p>
                <p><strong style="color: #555;">Email:</strong> {{email}}</p>
                <p><strong style="color: #555;">Message:</strong></p>
                <p style="background: #f5f5f5; padding: 15px; border-left: 4px solid #00f6ff; border-radius: 3px;">
                    {{message}}
                </p>
            </div>
            <p style="margin-top: 20px; font-size: 12px; color: #888; text-align: center;">
                Sent from GFXTAB Portfolio Contact Form
            </p>
        </div>
    </body>
</html>
`

// Subject derives the email subject from the submitter's name
func Subject(sub *Submission) string {
	return subjectPrefix + sub.Name
}

// RenderBody embeds the three submission fields into the HTML body.
// A single-pass replacer keeps placeholder-like text inside the values intact.
func RenderBody(sub *Submission) string {
	r := strings.NewReplacer(
		"{{name}}", sub.Name,
		"{{email}}", sub.Email,
		"{{message}}", sub.Message,
	)
	return r.Replace(bodyTemplate)
}

func (s *Submission) String() string {
	return fmt.Sprintf("contact{name=%q email=%q len(message)=%d}", s.Name, s.Email, len(s.Message))
}
