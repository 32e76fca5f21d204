package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# rentcheck configuration
version: "1.0"

# Contradiction analysis service
service:
  # Base URL; documents are posted to <url>/upload/
  url: "http://127.0.0.1:8000"
  # Upload timeout (analysis of long agreements can be slow)
  timeout: 120s

output:
  # text | json | markdown | csv
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  # default | high-contrast | minimal
  theme: "default"
  verbose: false
  no_emoji: false

# Rotated JSON log file; leave file empty to disable
logging:
  file: ""
  max_size_mb: 10
  max_backups: 5
  max_age_days: 30
  compress: true

# OTLP/HTTP trace export
tracing:
  enabled: false
  endpoint: "localhost:4318"
  insecure: true
  service_name: "rentcheck"
  sample_ratio: 1.0

watch:
  # Minimum time between re-submissions of a changing file
  min_interval: 2s
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  url: "http://127.0.0.1:8000"
  timeout: 120s
`
}
