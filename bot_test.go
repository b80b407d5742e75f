package main

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

func commandMessage(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}
}

func TestMessageContent(t *testing.T) {
	replied := &tgbotapi.Message{Text: "Guten Morgen"}
	withReply := commandMessage("/detect", 7)
	withReply.ReplyToMessage = replied

	cases := []struct {
		name string
		msg  *tgbotapi.Message
		want string
	}{
		{"text", &tgbotapi.Message{Text: "bonjour"}, "bonjour"},
		{"caption", &tgbotapi.Message{Caption: "hola"}, "hola"},
		{"detect with argument", commandMessage("/detect ciao a tutti", 7), "ciao a tutti"},
		{"detect reply", withReply, "Guten Morgen"},
		{"detect without text", commandMessage("/detect", 7), ""},
		{"other command", commandMessage("/start now", 6), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, messageContent(tc.msg))
		})
	}
}

func TestFormatRanking(t *testing.T) {
	ranking := []langdetect.Result{
		{Language: "fr", Probability: 0.9},
		{Language: "en", Probability: 0.075},
		{Language: "ja", Probability: 0.025},
	}

	assert.Equal(t, "fr 90.00%", formatRanking(ranking, 1))
	assert.Equal(t, "fr 90.00%\nen 7.50%", formatRanking(ranking, 2))
	assert.Equal(t, "fr 90.00%\nen 7.50%\nja 2.50%", formatRanking(ranking, 10))
}

func TestBotConfigCheck(t *testing.T) {
	c := newBotConfig()
	require.Error(t, c.check())

	c.Token = "123:abc"
	c.MessageSettings.RankingSize = 0
	require.NoError(t, c.check())
	assert.Equal(t, 1, c.MessageSettings.RankingSize)

	c.WorkerPoolSize = 0
	assert.Error(t, c.check())
}

func TestSafeSlice(t *testing.T) {
	src := []int64{1, 2}
	ss := newSafeSlice(src)
	src[0] = 9

	assert.True(t, ss.Contains(1))
	assert.False(t, ss.Contains(9))

	ss.New([]int64{3})
	assert.False(t, ss.Contains(1))
	assert.True(t, ss.Contains(3))
}
