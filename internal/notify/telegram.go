// Package notify sends simulation alerts to a Telegram chat.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

// TelegramNotifier posts messages through the Telegram Bot API.
// It is an events.Publisher that forwards only terminal events.
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
	enabled    bool
	logger     *logger.Logger
}

// Option configures a TelegramNotifier.
type Option func(*TelegramNotifier)

// WithBaseURL points the notifier at another Bot API host.
func WithBaseURL(baseURL string) Option {
	return func(n *TelegramNotifier) {
		if baseURL != "" {
			n.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the default client with a 10s timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(n *TelegramNotifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// NewTelegramNotifier creates a notifier. It is enabled only when both botToken
// and chatID are set.
func NewTelegramNotifier(botToken, chatID string, log *logger.Logger, opts ...Option) *TelegramNotifier {
	if log == nil {
		log = logger.NewNopLogger()
	}

	n := &TelegramNotifier{
		botToken:   botToken,
		chatID:     chatID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		enabled:    botToken != "" && chatID != "",
		logger:     log,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Enabled reports whether the notifier is active.
func (n *TelegramNotifier) Enabled() bool { return n.enabled }

// Send posts a message to the configured chat. A disabled notifier does nothing.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !n.enabled {
		return nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	vals := url.Values{
		"chat_id":    {n.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to build telegram request", err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to send telegram message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)

		return errors.Newf(errors.ErrCodeNotificationFailed, "telegram returned %d: %s", resp.StatusCode, body.Description)
	}

	return nil
}

// Publish sends a message for completed, stopped and failed simulations and for
// finished backtests. Other events are ignored.
func (n *TelegramNotifier) Publish(ctx context.Context, event events.Event) error {
	if !n.enabled {
		return nil
	}

	text, ok := FormatEvent(event)
	if !ok {
		return nil
	}

	if err := n.Send(ctx, text); err != nil {
		n.logger.Warn("Failed to send telegram notification",
			zap.String("type", string(event.Type)),
			zap.String("simulation_id", event.SimulationID),
			zap.Error(err),
		)

		return err
	}

	return nil
}

func (n *TelegramNotifier) Close() error { return nil }

// FormatEvent renders the message for an event, and reports whether the event
// is one that is notified at all.
func FormatEvent(event events.Event) (string, bool) {
	switch event.Type {
	case events.EventSimulationCompleted:
		return formatSimulation("Simulation Completed", event), true
	case events.EventSimulationStopped:
		return formatSimulation("Simulation Stopped", event), true
	case events.EventSimulationFailed:
		return formatSimulation("Simulation Failed", event), true
	case events.EventBacktestCompleted:
		result, ok := event.Payload.(types.BacktestResult)
		if !ok {
			return "<b>Backtest Completed</b>", true
		}

		return fmt.Sprintf(
			"<b>Backtest Completed</b>\nStrategy: %s\nSymbol: <code>%s</code>\nReturn: %.2f%%\nTrades: %d\nWin Rate: %.1f%%\nMax Drawdown: %.2f%%",
			result.Strategy, result.Symbol, result.ReturnRate, result.TotalTrades, result.WinRate, result.MaxDrawdown,
		), true
	default:
		return "", false
	}
}

func formatSimulation(title string, event events.Event) string {
	sim, ok := event.Payload.(types.Simulation)
	if !ok {
		return fmt.Sprintf("<b>%s</b>\nID: <code>%s</code>", title, event.SimulationID)
	}

	msg := fmt.Sprintf(
		"<b>%s</b>\nID: <code>%s</code>\nStrategy: %s\nSymbol: <code>%s</code>\nBalance: %.0f → %.0f\nProfit: %.2f%%\nTrades: %d",
		title, sim.ID, sim.Strategy, sim.Symbol, sim.InitialBalance, sim.CurrentBalance, sim.ProfitRate(), sim.TotalTrades,
	)

	if sim.Error != "" {
		msg += fmt.Sprintf("\nError: %s", sim.Error)
	}

	return msg
}
