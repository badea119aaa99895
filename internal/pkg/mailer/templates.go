package mailer

import (
	"fmt"
	"html"
	"net/url"
)

func VerificationMail(to, clientURL, token string) Mail {
	link := fmt.Sprintf("%s/verify-email?token=%s", clientURL, url.QueryEscape(token))
	return Mail{
		To:      to,
		Subject: "Verify your Aura account",
		HTML: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to Aura!</h2>
			<p>Confirm your email address to finish setting up your account:</p>
			<a href="%s" style="background-color: #7C3AED; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 60 minutes.</p>
		</div>
	`, html.EscapeString(link), html.EscapeString(link)),
	}
}

func PasswordResetMail(to, clientURL, token string) Mail {
	link := fmt.Sprintf("%s/reset-password?token=%s", clientURL, url.QueryEscape(token))
	return Mail{
		To:      to,
		Subject: "Reset your Aura password",
		HTML: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password Reset Request</h2>
			<p>You requested to reset your password. Click the button below to proceed:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 30 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, html.EscapeString(link), html.EscapeString(link)),
	}
}
