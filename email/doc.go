package email

// email is responsible for sending email to an SMTP server, including
// resolving the server address, connecting (optionally over implicit TLS),
// negotiating AUTH LOGIN, and building a MIME-formatted email body with
// binary attachments. It is not designed to represent the user-facing
// content of an email, and includes this content in email bodies regardless
// of what it contains.
