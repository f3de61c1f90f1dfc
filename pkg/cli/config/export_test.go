package config

import "time"

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dir, projectID, bucket string) *Repository {
	return &Repository{
		backend:   backend,
		dir:       dir,
		projectID: projectID,
		bucket:    bucket,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(webhookURL string, maxItems int) *Slack {
	return &Slack{webhookURL: webhookURL, maxItems: maxItems}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewCanonicalLogForTest creates a CanonicalLog config for testing purposes
func NewCanonicalLogForTest(path string, interval time.Duration) *CanonicalLog {
	return &CanonicalLog{path: path, interval: interval}
}
