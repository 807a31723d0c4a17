package integration

import (
	"fmt"
	"time"
)

// TestCredentials generates unique credentials so parallel tests never
// collide on the email unique index.
func TestCredentials(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123"
	return
}

// TestSubdomain generates a unique valid subdomain.
func TestSubdomain(suffix string) string {
	return fmt.Sprintf("site-%d-%s", time.Now().UnixNano()%1000000, suffix)
}
