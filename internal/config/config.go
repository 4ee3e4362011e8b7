// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Company is one ATS board to pull: Slug is the board identifier in the
// ATS URL, Name is what we show when the board omits a company name.
type Company struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Pipeline struct {
		IngestMinutes int `yaml:"ingest_minutes"`
		SweepMinutes  int `yaml:"sweep_minutes"`
	} `yaml:"pipeline"`

	Sources struct {
		RemoteOK struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"remoteok"`

		Arbeitnow struct {
			Enabled  bool `yaml:"enabled"`
			MaxPages int  `yaml:"max_pages"`
		} `yaml:"arbeitnow"`

		WeWorkRemotely struct {
			Enabled    bool     `yaml:"enabled"`
			Categories []string `yaml:"categories"`
		} `yaml:"weworkremotely"`

		Greenhouse struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`

		Lever struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`

		SmartRecruiters struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"`
		} `yaml:"smartrecruiters"`

		Workday struct {
			Enabled   bool      `yaml:"enabled"`
			Companies []Company `yaml:"companies"` // Slug is the full board URL
		} `yaml:"workday"`
	} `yaml:"sources"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages"`
	} `yaml:"email"`

	LLM struct {
		GroqModel   string `yaml:"groq_model"`
		GeminiModel string `yaml:"gemini_model"`
	} `yaml:"llm"`

	Notify struct {
		Enabled        bool  `yaml:"enabled"`
		TelegramChatID int64 `yaml:"telegram_chat_id"`
	} `yaml:"notify"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
