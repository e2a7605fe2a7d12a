package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestExpandFilter(t *testing.T) {
	jan5 := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	nov23 := time.Date(2026, time.November, 23, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		pattern string
		now     time.Time
		want    string
	}{
		{`%{month}\s+%{day}`, jan5, `Jan\s+0?5`},
		{`%{month}\s+%{day}`, nov23, `Nov\s+23`},
		{`%{month}`, jan5, `Jan`},
		{`ERROR`, jan5, `ERROR`},
		{``, jan5, ``},
	}

	for _, tc := range tests {
		if got := ExpandFilter(tc.pattern, tc.now); got != tc.want {
			t.Errorf("ExpandFilter(%q, %v) = %q, want %q", tc.pattern, tc.now, got, tc.want)
		}
	}
}

func TestParseFullConfig(t *testing.T) {
	raw := `
logger:
  level: info
  type: text
notifier:
  type: stdout
recipients:
  - ops@example.com
notify_buffer_size: 50
sources:
  - name: syslog
    path: /var/log/syslog
    filter: "%{month}\\s+%{day}"
  - name: mail
    path: /var/log/mail.log
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatal(err)
	}

	engineCfg, logger, err := cfg.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if logger == nil {
		t.Fatal("Parse() returned nil logger")
	}

	if len(engineCfg.Targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(engineCfg.Targets))
	}
	if engineCfg.Targets[0].Name != "syslog" || engineCfg.Targets[0].Path != "/var/log/syslog" {
		t.Fatalf("unexpected first target: %+v", engineCfg.Targets[0])
	}
	if engineCfg.Targets[0].Filter == `%{month}\s+%{day}` {
		t.Fatal("filter tokens were not expanded")
	}
	if engineCfg.Targets[1].Filter != "" {
		t.Fatalf("second target filter = %q, want empty", engineCfg.Targets[1].Filter)
	}
	if engineCfg.Notifier == nil {
		t.Fatal("Parse() returned nil notifier")
	}
	if engineCfg.LineBufferMaxSize != 50 {
		t.Fatalf("LineBufferMaxSize = %d, want 50", engineCfg.LineBufferMaxSize)
	}
}

func TestParseCarriesFlushInterval(t *testing.T) {
	cfg := Config{
		Logger:              LoggerConfig{Level: "info", Type: "text"},
		Notifier:            NotifierConfig{Type: "stdout"},
		Sources:             []SourceConfig{{Name: "x", Path: "/var/log/x"}},
		NotifyFlushInterval: 5 * time.Second,
	}

	engineCfg, _, err := cfg.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if engineCfg.FlushInterval != 5*time.Second {
		t.Fatalf("FlushInterval = %v, want 5s", engineCfg.FlushInterval)
	}
}

func TestParseSMTPNotifier(t *testing.T) {
	cfg := Config{
		Logger: LoggerConfig{Level: "info", Type: "json"},
		Notifier: NotifierConfig{
			Type: "smtp",
			Config: map[string]any{
				"host": "smtp.example.com",
				"port": 587,
				"from": "logwarden@example.com",
			},
		},
		Recipients: []string{"ops@example.com"},
		Sources:    []SourceConfig{{Name: "x", Path: "/var/log/x"}},
	}

	engineCfg, _, err := cfg.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if engineCfg.Notifier == nil {
		t.Fatal("Parse() returned nil notifier")
	}
}

func TestParseSMTPNotifierWithoutRecipients(t *testing.T) {
	cfg := Config{
		Logger: LoggerConfig{Level: "info", Type: "json"},
		Notifier: NotifierConfig{
			Type: "smtp",
			Config: map[string]any{
				"host": "smtp.example.com",
				"port": 587,
				"from": "logwarden@example.com",
			},
		},
		Sources: []SourceConfig{{Name: "x", Path: "/var/log/x"}},
	}

	if _, _, err := cfg.Parse(); err == nil {
		t.Fatal("Parse() accepted smtp notifier without recipients")
	}
}

func TestParseInvalidLogger(t *testing.T) {
	cfg := Config{Logger: LoggerConfig{Level: "verbose", Type: "text"}}
	if _, _, err := cfg.Parse(); err == nil {
		t.Fatal("Parse() accepted invalid log level")
	}

	cfg = Config{Logger: LoggerConfig{Level: "info", Type: "xml"}}
	if _, _, err := cfg.Parse(); err == nil {
		t.Fatal("Parse() accepted invalid log type")
	}
}

func TestParseInvalidNotifierType(t *testing.T) {
	cfg := Config{
		Logger:   LoggerConfig{Level: "info", Type: "text"},
		Notifier: NotifierConfig{Type: "carrier-pigeon"},
	}

	if _, _, err := cfg.Parse(); err == nil {
		t.Fatal("Parse() accepted unknown notifier type")
	}
}

func TestParseInvalidProcessorType(t *testing.T) {
	cfg := Config{
		Logger:     LoggerConfig{Level: "info", Type: "text"},
		Notifier:   NotifierConfig{Type: "stdout"},
		Processors: []ProcessorConfig{{Name: "p", Type: "python"}},
	}

	if _, _, err := cfg.Parse(); err == nil {
		t.Fatal("Parse() accepted unknown processor type")
	}
}
