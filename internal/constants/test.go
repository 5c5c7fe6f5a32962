package constants

import "time"

// Test Constants
//
// IMPORTANT: These constants are for testing only. DO NOT use in production code.

// Integration Test Timeout Constants
const (
	// TestIOTimeout bounds a single network read/write in integration tests
	TestIOTimeout = 2 * time.Second

	// TestEventuallyWait is the max wait for asynchronous replication in tests
	TestEventuallyWait = 3 * time.Second

	// TestEventuallyTick is the polling interval for assert.Eventually
	TestEventuallyTick = 10 * time.Millisecond
)
