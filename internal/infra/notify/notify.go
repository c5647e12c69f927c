// Package notify delivers operator notifications over Telegram. Delivery
// is always best-effort: a failed send logs one warning and the monitor
// carries on.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/nodeguard/internal/core/config"
)

// Message classes. Cooldown-skip chatter is throttled; everything else
// always goes out.
const (
	ClassStartup  = "startup"
	ClassRestart  = "restart"
	ClassFailure  = "failure"
	ClassCooldown = "cooldown"
	ClassExternal = "external"
)

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, class, text string)
}

// Nop is the notifier used when no Telegram credentials are configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) {}

// Telegram sends messages through the bot sendMessage API.
type Telegram struct {
	token    string
	chatID   string
	rate     time.Duration
	baseURL  string
	client   *http.Client
	log      *slog.Logger
	hostname string

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// New builds a notifier from config. An empty token or chat id yields the
// Nop notifier.
func New(cfg config.NotifyConfig, log *slog.Logger) Notifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		log.Info("Telegram notifications disabled")
		return Nop{}
	}
	hostname, _ := os.Hostname()
	return &Telegram{
		token:    cfg.TelegramToken,
		chatID:   cfg.TelegramChatID,
		rate:     time.Duration(cfg.CooldownRateMinutes) * time.Minute,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
		hostname: hostname,
		lastSent: make(map[string]time.Time),
	}
}

// Notify sends one HTML-formatted message, prefixed with the monitor's
// hostname. Cooldown-class messages are rate-limited per class so a chain
// stuck inside its holdoff does not flood the channel every cycle.
func (t *Telegram) Notify(ctx context.Context, class, text string) {
	if class == ClassCooldown && !t.allow(class) {
		return
	}

	body := url.Values{
		"chat_id":    {t.chatID},
		"text":       {fmt.Sprintf("<b>[%s]</b>\n%s", t.hostname, text)},
		"parse_mode": {"HTML"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(body.Encode()))
	if err != nil {
		t.log.Warn("Telegram request build failed", "class", class, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("Telegram send failed", "class", class, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.log.Warn("Telegram send rejected",
			"class", class, "status", resp.StatusCode, "body", string(raw))
	}
}

// allow reports whether a throttled class may send now, and records the
// send when it may.
func (t *Telegram) allow(class string) bool {
	if t.rate <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastSent[class]; ok && time.Since(last) < t.rate {
		return false
	}
	t.lastSent[class] = time.Now()
	return true
}
