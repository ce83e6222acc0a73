package notify

// Notification templates. Placeholders are substituted by Render.
const (
	ConfirmationSubject = "Your appointment on {{date}}"
	ConfirmationBody    = `Hello {{firstName}} {{lastName}},

Your appointment at the {{center}} center is confirmed for {{date}} at {{time}}.

If you cannot make it, cancel with this link:
{{cancelUrl}}

See you soon.`

	ReminderSubject = "Reminder: appointment tomorrow at {{time}}"
	ReminderBody    = `Hello {{firstName}},

A reminder that your appointment at the {{center}} center is tomorrow, {{date}} at {{time}}.

Need to cancel? Use this link:
{{cancelUrl}}`

	TwoFactorSubject = "Your verification code"
	TwoFactorBody    = `Your verification code is {{code}}. It expires in 10 minutes.

If you did not try to sign in, you can ignore this message.`

	CancellationAlertSubject = "Appointment cancelled: {{date}} {{time}}"
	CancellationAlertBody    = `The appointment for {{firstName}} {{lastName}} on {{date}} at {{time}} ({{center}}) was cancelled. The slot is available again.`
)
