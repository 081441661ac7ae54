package billing

import "fmt"

func welcomeMessage(displayName, resetLink string) (subject, html, text string) {
	subject = "Welcome aboard! Your subscription is active"

	accessHTML := "<p>You can sign in right away with the password you chose during registration.</p>"
	accessText := "You can sign in right away with the password you chose during registration."
	if resetLink != "" {
		accessHTML = fmt.Sprintf("<p>To set your password and sign in, use this link:</p><p><a href=%q>%s</a></p>", resetLink, resetLink)
		accessText = fmt.Sprintf("To set your password and sign in, use this link: %s", resetLink)
	}

	html = fmt.Sprintf(
		"<h2>Welcome, %s!</h2><p>Your subscription is now active.</p>%s<p>See you inside!</p>",
		displayName, accessHTML,
	)
	text = fmt.Sprintf(
		"Welcome, %s!\n\nYour subscription is now active.\n%s\n\nSee you inside!",
		displayName, accessText,
	)
	return subject, html, text
}

func farewellMessage(displayName string) (subject, html, text string) {
	subject = "Your subscription has been canceled"
	html = fmt.Sprintf(
		"<h2>Goodbye, %s</h2><p>Your subscription has been canceled. You are welcome back anytime.</p>",
		displayName,
	)
	text = fmt.Sprintf(
		"Goodbye, %s\n\nYour subscription has been canceled. You are welcome back anytime.",
		displayName,
	)
	return subject, html, text
}
