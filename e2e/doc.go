package e2e

// e2e contains integration tests that exercise the whole send pipeline
// against a real SMTP server running in the test process: implicit TLS,
// AUTH LOGIN, and multipart message transfer. Unit-level protocol tests
// live next to the email package; only the full-stack path is covered
// here.
