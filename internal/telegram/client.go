// Package telegram provides a client for sending notifications via Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/luckylogic/internal/engine"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/strategy"
	"github.com/rewired-gh/luckylogic/internal/tickets"
)

// LineGenerator produces lines for the /lines command. *engine.Engine implements it.
type LineGenerator interface {
	Generate(ctx context.Context, req engine.Request) (*engine.Result, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	send           sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	c := newClient(bot, chatIDInt, maxRetries, retryDelayBase)
	c.bot = bot
	return c, nil
}

func newClient(s sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		send:           s,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately; the goroutine stops when ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context, gen LineGenerator) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(ctx, gen, update.Message.Chat.ID, update.Message.Command(), update.Message.CommandArguments())
				}
			}
		}
	}()
}

func (c *Client) handleCommand(ctx context.Context, gen LineGenerator, chatID int64, command, args string) {
	var text string
	switch command {
	case "ping":
		reply := tgbotapi.NewMessage(chatID, "Pong")
		c.send.Send(reply) //nolint:errcheck
		return
	case "strategies":
		text = formatStrategies()
	case "lines":
		res, err := gen.Generate(ctx, engine.Request{Strategy: strings.TrimSpace(args)})
		if err != nil {
			logger.Warn("Telegram /lines failed: %v", err)
			text = fmt.Sprintf("⚠️ *Could not generate lines*\n`%s`", escapeMarkdownV2(err.Error()))
			break
		}
		text = formatLines(res)
	default:
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "MarkdownV2"
	if _, err := c.send.Send(msg); err != nil {
		logger.Warn("Failed to answer /%s: %v", command, err)
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.send.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends a scheduled job error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(jobErr error) error {
	text := fmt.Sprintf("⚠️ *Draw refresh error*\n`%s`", escapeMarkdownV2(jobErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Draw refresh recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// SendLines sends a generated set of lines.
func (c *Client) SendLines(res *engine.Result) error {
	return c.sendMarkdownV2(formatLines(res))
}

// SendCheckResults sends newly checked tickets. Nothing is sent for an empty slice.
func (c *Client) SendCheckResults(results []tickets.Result) error {
	if len(results) == 0 {
		return nil
	}
	return c.sendMarkdownV2(formatCheckResults(results))
}

func formatBalls(main, stars []int) string {
	m := make([]string, len(main))
	for i, n := range main {
		m[i] = fmt.Sprintf("%02d", n)
	}
	s := make([]string, len(stars))
	for i, n := range stars {
		s[i] = fmt.Sprintf("%02d", n)
	}
	return "`" + strings.Join(m, " ") + " ⭐ " + strings.Join(s, " ") + "`"
}

// formatLines formats a generation result into a Telegram MarkdownV2 message.
func formatLines(res *engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 *%s*\n", escapeMarkdownV2(res.Strategy))
	fmt.Fprintf(&b, "📊 %d draws analysed\n\n", res.Insights.Draws)
	for i, line := range res.Lines {
		fmt.Fprintf(&b, "%d\\. %s  score %d\n", i+1, formatBalls(line.Main, line.Stars), line.Score)
		for _, reason := range line.Reasons {
			fmt.Fprintf(&b, "   • %s\n", escapeMarkdownV2(reason))
		}
	}
	return b.String()
}

// formatCheckResults formats checked tickets into a Telegram MarkdownV2 message.
func formatCheckResults(results []tickets.Result) string {
	var b strings.Builder
	b.WriteString("🎟 *Tickets checked*\n\n")
	for _, res := range results {
		fmt.Fprintf(&b, "📅 %s  best match *%d*\n", escapeMarkdownV2(res.DrawDate), res.BestMatch)
		for i, line := range res.Lines {
			fmt.Fprintf(&b, "%d\\. %s  %d matched\n", i+1, formatBalls(line.Main, line.Stars), line.Matches)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatStrategies() string {
	var b strings.Builder
	b.WriteString("*Strategies*\n")
	for _, name := range strategy.Names() {
		fmt.Fprintf(&b, "• %s\n", escapeMarkdownV2(name))
	}
	b.WriteString("\nUse /lines <strategy\\>")
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
