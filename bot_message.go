package main

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/4O4-Not-F0und/gura-langid/metrics"
)

const detectCommand = "detect"

type Message struct {
	*tgbotapi.Message
	logger   *logrus.Entry
	Content  string
	ChatId   string
	ChatType string
	TraceId  string
}

func newMessage(message *tgbotapi.Message) *Message {
	logger := logrus.WithFields(logrus.Fields{
		"chat_type": message.Chat.Type,
		"chat_id":   message.Chat.ID,
	})

	if message.From != nil {
		logger = logger.WithField("user_id", message.From.ID)
	}

	m := &Message{
		Message:  message,
		logger:   logger,
		Content:  messageContent(message),
		ChatType: message.Chat.Type,
		ChatId:   strconv.FormatInt(message.Chat.ID, 10),
	}
	m.TraceId = m.traceId()
	m.logger = m.logger.WithField("trace_id", m.TraceId)
	return m
}

// messageContent returns the text to detect. "/detect" takes its argument,
// or the text of the message it replies to; other commands are ignored.
func messageContent(message *tgbotapi.Message) string {
	if message.IsCommand() {
		if message.Command() != detectCommand {
			return ""
		}
		if args := strings.TrimSpace(message.CommandArguments()); args != "" {
			return args
		}
		if message.ReplyToMessage != nil {
			return messageContent(message.ReplyToMessage)
		}
		return ""
	}
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

func (m *Message) traceId() string {
	return fmt.Sprintf("%x", md5.Sum(fmt.Appendf(nil, "%s%d", m.ChatId, m.MessageID)))
}

func (m *Message) onMessageHandleFailed() {
	metrics.MetricMessages.WithLabelValues(messageHandleStateFailed, m.ChatType).Inc()
	m.onProcessed()
}

func (m *Message) onUnauthorized() {
	metrics.MetricMessages.WithLabelValues(messageHandleStateUnauthorized, m.ChatType).Inc()
	m.onProcessed()
	m.logger.Infoln("disallowed message source")
}

func (m *Message) onPending() {
	metrics.MetricMessages.WithLabelValues(messageHandleStatePending, m.ChatType).Inc()
}

func (m *Message) onProcessing() {
	metrics.MetricMessages.WithLabelValues(messageHandleStatePending, m.ChatType).Dec()
	metrics.MetricMessages.WithLabelValues(messageHandleStateProcessing, m.ChatType).Inc()
}

func (m *Message) onSuccess() {
	metrics.MetricMessages.WithLabelValues(messageHandleStateProcessed, m.ChatType).Inc()
	m.onProcessed()
}

func (m *Message) onProcessed() {
	metrics.MetricMessages.WithLabelValues(messageHandleStateProcessing, m.ChatType).Dec()
}
