package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"ghostcheck-engine/internal/config"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "ghostcheck"

	GroqAccount     = "ghostcheck:llm:groq"
	GeminiAccount   = "ghostcheck:llm:gemini"
	TelegramAccount = "ghostcheck:notify:telegram"
)

// Env fallbacks for environments without a keychain (CI, headless
// servers, .env during development).
var envFallback = map[string]string{
	GroqAccount:     "GROQ_API_KEY",
	GeminiAccount:   "GEMINI_API_KEY",
	TelegramAccount: "TELEGRAM_BOT_TOKEN",
}

// Get reads a secret from the keychain first and falls back to the
// matching environment variable.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		v, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}

	if env := envFallback[account]; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("secret %q not found (set it in the keychain or via env)", account)
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPAccount names the mailbox credential slot for the configured
// account, so switching mailboxes never reads a stale password.
func IMAPAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"ghostcheck:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}

// GetIMAPPassword prefers the keychain and falls back to
// GHOSTCHECK_IMAP_PASSWORD.
func GetIMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv("GHOSTCHECK_IMAP_PASSWORD")); v != "" {
		return v, nil
	}
	return "", errors.New("IMAP password not found (set it in the keychain or via env)")
}
