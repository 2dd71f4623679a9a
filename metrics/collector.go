// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters during a single upload session. It is a
// leaf package with no internal dependencies; failure kinds are recorded as
// plain strings to keep it free of the types package.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Session lifecycle
	SessionsStarted   int64 `json:"sessions_started"`
	SessionsSucceeded int64 `json:"sessions_succeeded"`
	SessionsFailed    int64 `json:"sessions_failed"`
	SessionsCancelled int64 `json:"sessions_cancelled"`
	// FailuresByKind counts failed sessions per error kind.
	FailuresByKind map[string]int64 `json:"failures_by_kind,omitempty"`

	// HTTP
	RequestsIssued int64 `json:"requests_issued"`
	RequestsFailed int64 `json:"requests_failed"`

	// Archive
	FilesArchived int64 `json:"files_archived"`
	FilesSkipped  int64 `json:"files_skipped"`
	ArchiveBytes  int64 `json:"archive_bytes"`

	// Upload
	PayloadBytes  int64 `json:"payload_bytes"`
	BytesUploaded int64 `json:"bytes_uploaded"`

	// Dimensions (informational, set at construction)
	SessionID    string `json:"session_id"`
	Operation    string `json:"operation"`
	CategoryMode string `json:"category_mode"`
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	sessionsStarted   int64
	sessionsSucceeded int64
	sessionsFailed    int64
	sessionsCancelled int64
	failuresByKind    map[string]int64

	requestsIssued int64
	requestsFailed int64

	filesArchived int64
	filesSkipped  int64
	archiveBytes  int64

	payloadBytes  int64
	bytesUploaded int64

	sessionID    string
	operation    string
	categoryMode string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, operation, categoryMode string) *Collector {
	return &Collector{
		failuresByKind: make(map[string]int64),
		sessionID:      sessionID,
		operation:      operation,
		categoryMode:   categoryMode,
	}
}

// --- Session lifecycle ---

// IncSessionStarted records a session start.
func (c *Collector) IncSessionStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsStarted++
	c.mu.Unlock()
}

// IncSessionSucceeded records a session that completed without error.
func (c *Collector) IncSessionSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsSucceeded++
	c.mu.Unlock()
}

// IncSessionFailed records a session that completed with an error of kind.
func (c *Collector) IncSessionFailed(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsFailed++
	if c.failuresByKind == nil {
		c.failuresByKind = make(map[string]int64)
	}
	c.failuresByKind[kind]++
	c.mu.Unlock()
}

// IncSessionCancelled records a cancelled session. Cancelled sessions are
// not counted as failed.
func (c *Collector) IncSessionCancelled() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sessionsCancelled++
	c.mu.Unlock()
}

// --- HTTP ---

// IncRequestIssued records a request handed to the transport.
func (c *Collector) IncRequestIssued() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsIssued++
	c.mu.Unlock()
}

// IncRequestFailed records a request that failed at transport or HTTP level.
func (c *Collector) IncRequestFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsFailed++
	c.mu.Unlock()
}

// --- Archive ---

// RecordArchive records the outcome of archive construction.
func (c *Collector) RecordArchive(archived, skipped int, size int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesArchived += int64(archived)
	c.filesSkipped += int64(skipped)
	c.archiveBytes += size
	c.mu.Unlock()
}

// --- Upload ---

// SetPayloadBytes records the size of the listing request body.
func (c *Collector) SetPayloadBytes(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.payloadBytes = n
	c.mu.Unlock()
}

// ObserveUploaded records cumulative bytes sent. Lower values than already
// observed are ignored.
func (c *Collector) ObserveUploaded(sent int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if sent > c.bytesUploaded {
		c.bytesUploaded = sent
	}
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	failures := make(map[string]int64, len(c.failuresByKind))
	for k, v := range c.failuresByKind {
		failures[k] = v
	}

	return Snapshot{
		SessionsStarted:   c.sessionsStarted,
		SessionsSucceeded: c.sessionsSucceeded,
		SessionsFailed:    c.sessionsFailed,
		SessionsCancelled: c.sessionsCancelled,
		FailuresByKind:    failures,

		RequestsIssued: c.requestsIssued,
		RequestsFailed: c.requestsFailed,

		FilesArchived: c.filesArchived,
		FilesSkipped:  c.filesSkipped,
		ArchiveBytes:  c.archiveBytes,

		PayloadBytes:  c.payloadBytes,
		BytesUploaded: c.bytesUploaded,

		SessionID:    c.sessionID,
		Operation:    c.operation,
		CategoryMode: c.categoryMode,
	}
}
