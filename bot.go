package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/4O4-Not-F0und/gura-langid/detection"
	"github.com/4O4-Not-F0und/gura-langid/detection/detector"
	"github.com/4O4-Not-F0und/gura-langid/langdetect"
	"github.com/4O4-Not-F0und/gura-langid/metrics"
)

const (
	messageHandleStatePending      = "pending"
	messageHandleStateUnauthorized = "unauthorized"
	messageHandleStateFailed       = "failed"
	messageHandleStateProcessed    = "processed"
	messageHandleStateProcessing   = "processing"
)

var (
	allMessageStates = []string{
		messageHandleStatePending,
		messageHandleStateUnauthorized,
		messageHandleStateProcessing,
		messageHandleStateProcessed,
		messageHandleStateFailed,
	}

	allChatTypes = []string{
		"private",
		"group",
		"supergroup",
		"channel",
	}
)

type BotConfig struct {
	Enabled         bool               `yaml:"enabled"`
	Debug           bool               `yaml:"debug"`
	Token           string             `yaml:"token"`
	MessageSettings BotMessageSettings `yaml:"message_settings"`
	AllowedChats    []int64            `yaml:"allowed_chats"`
	WorkerPoolSize  int                `yaml:"worker_pool_size"`
}

type BotMessageSettings struct {
	DisableNotification bool `yaml:"disable_notification"`
	// Number of candidates listed in a reply, 1 for the best only.
	RankingSize int `yaml:"ranking_size"`
}

func newBotConfig() BotConfig {
	return BotConfig{
		MessageSettings: BotMessageSettings{RankingSize: 3},
		AllowedChats:    make([]int64, 0),
		WorkerPoolSize:  4,
	}
}

func (c *BotConfig) check() (err error) {
	if c.Token == "" {
		err = fmt.Errorf("telegram bot token required")
		return
	}
	if c.WorkerPoolSize <= 0 {
		err = fmt.Errorf("invalid 'worker_pool_size': %d", c.WorkerPoolSize)
		return
	}
	if c.MessageSettings.RankingSize <= 0 {
		c.MessageSettings.RankingSize = 1
	}
	return
}

type SafeSlice[T comparable] struct {
	*sync.RWMutex
	s []T
}

func newSafeSlice[T comparable](s []T) (ss *SafeSlice[T]) {
	ss = &SafeSlice[T]{
		RWMutex: new(sync.RWMutex),
	}
	ss.New(s)
	return
}

func (ss *SafeSlice[T]) Contains(elem T) bool {
	ss.RLock()
	ok := slices.Contains(ss.s, elem)
	ss.RUnlock()
	return ok
}

func (ss *SafeSlice[T]) New(s []T) {
	ss.Lock()
	ss.s = slices.Clone(s)
	ss.Unlock()
}

// Bot replies to chat messages with the detected language.
type Bot struct {
	bot             *tgbotapi.BotAPI
	detectService   *detection.DetectService
	messageSettings BotMessageSettings
	allowedChats    *SafeSlice[int64]
	workerPoolSize  int
	configMu        *sync.RWMutex
}

func newBot(config BotConfig, detectService *detection.DetectService) (bot *Bot, err error) {
	if err = config.check(); err != nil {
		return
	}
	logrus.Info("authorizing telegram bot")

	var botApi *tgbotapi.BotAPI
	botApi, err = tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return
	}
	logrus.Infof("authorized on account: %s", botApi.Self.UserName)
	botApi.Debug = config.Debug

	bot = &Bot{
		bot:            botApi,
		allowedChats:   newSafeSlice(config.AllowedChats),
		workerPoolSize: config.WorkerPoolSize,
		configMu:       &sync.RWMutex{},
	}
	err = bot.Reload(config, detectService)
	if err != nil {
		return
	}

	bot.initMessageMetrics()
	return
}

func (b *Bot) Reload(botConfig BotConfig, detectService *detection.DetectService) (err error) {
	if err = botConfig.check(); err != nil {
		return
	}

	logrus.Trace("acquiring bot.configMu")
	b.configMu.Lock()
	logrus.Trace("acquired bot.configMu")

	b.allowedChats.New(botConfig.AllowedChats)
	b.messageSettings = botConfig.MessageSettings
	b.detectService = detectService
	if b.workerPoolSize != botConfig.WorkerPoolSize {
		logrus.Warn("worker pool size changed, please restart bot to apply")
	}

	b.configMu.Unlock()
	logrus.Trace("released bot.configMu")
	return
}

// ServeBot starts the bot's main loop for receiving and processing updates.
func (b *Bot) ServeBot() {
	q := make(chan int, b.workerPoolSize)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	logrus.Infof("begin update loop, timeout: %ds, queue size: %d", u.Timeout, b.workerPoolSize)
	for update := range updates {
		var msg *Message
		if update.Message != nil {
			msg = newMessage(update.Message)
		} else if update.ChannelPost != nil {
			msg = newMessage(update.ChannelPost)
		} else {
			continue
		}

		if msg.Content == "" {
			msg.logger.Debug("message text undetected")
			continue
		}

		msg.onPending()
		logrus.Trace("acquiring queue")
		q <- 1
		msg.onProcessing()
		logrus.Trace("acquired queue")

		go func(m *Message) {
			b.handleMessage(m)
			<-q
			logrus.Trace("released queue")
		}(msg)
	}
}

// handleMessage checks that the message source is allowed, detects the
// language of its text and replies with the result.
func (b *Bot) handleMessage(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			msg.logger.Errorf("panic recovered in handleMessage: %v", r)
			msg.onMessageHandleFailed()
		}
	}()

	if !b.isAllowed(msg) {
		msg.onUnauthorized()
		return
	}

	b.configMu.RLock()
	service := b.detectService
	settings := b.messageSettings
	b.configMu.RUnlock()

	resp, name, err := service.Detect(context.Background(), detector.DetectRequest{
		Text:    msg.Content,
		TraceId: msg.TraceId,
	})
	msg.logger = msg.logger.WithField("detector_name", name)

	var text string
	switch {
	case err == nil:
		msg.logger = msg.logger.WithFields(logrus.Fields{
			"lang":            resp.Language,
			"lang_confidence": resp.Confidence,
		})
		text = formatRanking(resp.Ranking, settings.RankingSize)
	case detector.CheckWeakError(err):
		msg.logger.Infof("no language detected: %v", err)
		text = "Could not detect the language of this message."
	default:
		msg.onMessageHandleFailed()
		msg.logger.Errorf("an error occured while detecting: %v", err)
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.DisableNotification = settings.DisableNotification
	reply.ReplyToMessageID = msg.MessageID

	_, err = b.bot.Send(reply)
	if err != nil {
		msg.onMessageHandleFailed()
		msg.logger.Errorf("an error occured while replying message: %v", err)
		return
	}
	msg.logger.Info("completed")
	msg.onSuccess()
}

// formatRanking renders the first n candidates, one per line.
func formatRanking(ranking []langdetect.Result, n int) string {
	var sb strings.Builder
	for i, r := range ranking {
		if i >= n {
			break
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %.2f%%", r.Language, r.Probability*100)
	}
	return sb.String()
}

func (b *Bot) initMessageMetrics() {
	for _, ct := range allChatTypes {
		for _, state := range allMessageStates {
			metrics.MetricMessages.WithLabelValues(state, ct).Set(0)
		}
	}

	logrus.Info("all bot metrics initialized")
}

func (b *Bot) isAllowed(message *Message) bool {
	if message.Chat.Type == "private" {
		return message.From != nil && b.allowedChats.Contains(message.From.ID)
	}
	return b.allowedChats.Contains(message.Chat.ID)
}
