// Package config provides structures and utilities for loading and managing
// the auctiond configuration from an embedded YAML document, a .env file and
// environment variable overrides.
package config

import "time"

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Riyadh").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// TaskConfig holds the schedule of a single background task.
type TaskConfig struct {
	// Enabled controls whether the task is registered with a live timer.
	// A disabled task is still reported by the scheduler status endpoint.
	Enabled bool `yaml:"enabled"`
	// IntervalSeconds is the fixed tick interval of the task.
	IntervalSeconds int `yaml:"interval_seconds"`
	// BatchLimit bounds how many rows a single run may process, for tasks that
	// sweep the database.
	BatchLimit int `yaml:"batch_limit"`
}

// Interval returns the tick interval as a duration.
func (t TaskConfig) Interval() time.Duration {
	return time.Duration(t.IntervalSeconds) * time.Second
}

// SchedulerConfig holds per-task schedules keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `yaml:"tasks"`
}

// TaskFor returns the configuration for the named task, falling back to the
// given defaults when the task is absent from the configuration.
func (s SchedulerConfig) TaskFor(name string, def TaskConfig) TaskConfig {
	if t, ok := s.Tasks[name]; ok {
		if t.IntervalSeconds == 0 {
			t.IntervalSeconds = def.IntervalSeconds
		}
		if t.BatchLimit == 0 {
			t.BatchLimit = def.BatchLimit
		}
		return t
	}
	return def
}

// GovernorConfig holds the connection governor's lease bounds.
type GovernorConfig struct {
	// MaxLeases is the hard ceiling on concurrently held background leases.
	MaxLeases int `yaml:"max_leases"`
	// AcquireTimeoutSeconds bounds the wait for a lease before ConnectionTimeout.
	AcquireTimeoutSeconds int `yaml:"acquire_timeout_seconds"`
	// LeaseMaxLifetimeSeconds is the age past which a lease is considered stale
	// and force-released. Matches the acquire bound by default.
	LeaseMaxLifetimeSeconds int `yaml:"lease_max_lifetime_seconds"`
	// SweepIntervalSeconds is the cadence of the stale-lease sweep.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

// AcquireTimeout returns the acquire bound as a duration.
func (g GovernorConfig) AcquireTimeout() time.Duration {
	return time.Duration(g.AcquireTimeoutSeconds) * time.Second
}

// LeaseMaxLifetime returns the stale threshold as a duration.
func (g GovernorConfig) LeaseMaxLifetime() time.Duration {
	return time.Duration(g.LeaseMaxLifetimeSeconds) * time.Second
}

// SweepInterval returns the stale-sweep cadence as a duration.
func (g GovernorConfig) SweepInterval() time.Duration {
	return time.Duration(g.SweepIntervalSeconds) * time.Second
}

// NotificationsConfig holds the dispatch gate settings.
type NotificationsConfig struct {
	// Disabled is the global kill switch. When set, pending notifications are
	// marked handled without invoking the sender. Read once per dispatch
	// attempt so it can be flipped at runtime.
	Disabled bool `yaml:"disabled"`
	// BatchLimit bounds how many pending applications one sweep processes.
	BatchLimit int `yaml:"batch_limit"`
	// DispatchDelayMillis is the inter-item delay respecting sender rate limits.
	DispatchDelayMillis int `yaml:"dispatch_delay_millis"`
}

// DispatchDelay returns the inter-item delay as a duration.
func (n NotificationsConfig) DispatchDelay() time.Duration {
	return time.Duration(n.DispatchDelayMillis) * time.Millisecond
}

// MonitorConfig holds thresholds for the sibling monitors.
type MonitorConfig struct {
	// BacklogWarnThreshold is the expired-but-live backlog size above which the
	// auction monitor logs a warning.
	BacklogWarnThreshold int `yaml:"backlog_warn_threshold"`
	// NotificationGraceMinutes is how long a terminal application may stay
	// unnotified before reconciliation flags it as stuck.
	NotificationGraceMinutes int `yaml:"notification_grace_minutes"`
}

// NotificationGrace returns the grace period as a duration.
func (m MonitorConfig) NotificationGrace() time.Duration {
	return time.Duration(m.NotificationGraceMinutes) * time.Minute
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// InfrastructureConfig holds logical dependency settings.
type InfrastructureConfig struct {
	// DatabaseRef is the name of the database connection used by the lifecycle
	// core (a key under the "database" configuration section).
	DatabaseRef string `yaml:"database_ref"`
}

// AuctiondConfig holds all configuration under the "auctiond" top-level key.
type AuctiondConfig struct {
	System         SystemConfig           `yaml:"system"`
	Scheduler      SchedulerConfig        `yaml:"scheduler"`
	Governor       GovernorConfig         `yaml:"governor"`
	Notifications  NotificationsConfig    `yaml:"notifications"`
	Monitor        MonitorConfig          `yaml:"monitor"`
	Metrics        MetricsConfig          `yaml:"metrics"`
	Infrastructure InfrastructureConfig   `yaml:"infrastructure"`
	AdapterConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Auctiond AuctiondConfig `yaml:"auctiond"`
}

// NewConfig returns a new Config instance populated with default values.
// Defaults mirror the shipped application.yaml so a missing or partial
// configuration file still yields a runnable daemon.
func NewConfig() *Config {
	return &Config{
		Auctiond: AuctiondConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Scheduler: SchedulerConfig{
				Tasks: map[string]TaskConfig{},
			},
			Governor: GovernorConfig{
				MaxLeases:               5,
				AcquireTimeoutSeconds:   30,
				LeaseMaxLifetimeSeconds: 30,
				SweepIntervalSeconds:    300,
			},
			Notifications: NotificationsConfig{
				Disabled:            false,
				BatchLimit:          50,
				DispatchDelayMillis: 200,
			},
			Monitor: MonitorConfig{
				BacklogWarnThreshold:     100,
				NotificationGraceMinutes: 60,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Port:    9464,
			},
			Infrastructure: InfrastructureConfig{
				DatabaseRef: "marketplace",
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}
