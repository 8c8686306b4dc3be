package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/chart_builder/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

// texts returns the text of every plain message sent so far.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeFiles struct {
	url string
	err error
}

func (f fakeFiles) GetFileDirectURL(fileID string) (string, error) {
	return f.url, f.err
}

func newTestBot(t *testing.T) (*chatBot, *fakeSender) {
	registry, err := session.NewRegistry(16)
	require.NoError(t, err)
	api := &fakeSender{}
	return newChatBot(api, fakeFiles{}, testConfig(t), registry), api
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: 7},
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		msg.Entities = &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestHandleTextInlineDataset(t *testing.T) {
	bot, api := newTestBot(t)

	bot.handleText(textUpdate(1, "Jan 10\nFeb 20\nMar 5"))

	require.Len(t, api.sent, 3)
	texts := api.texts()
	assert.Contains(t, texts[0], "label")
	assert.Contains(t, texts[1], "Chart: bar")
	photo, ok := api.last().(tgbotapi.PhotoConfig)
	require.True(t, ok, "chart is sent as a photo")
	assert.Equal(t, "Bar chart: value by label\n3 bars.", photo.Caption)

	_, ok = bot.sessionFor(1)
	assert.True(t, ok)
}

func TestHandleTextCommands(t *testing.T) {
	bot, api := newTestBot(t)
	bot.handleText(textUpdate(1, "EU 10\nUS 20"))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"bind kind mismatch", "/bind xAxis value", "Not bound: field kind does not match channel"},
		{"bind unknown field", "/bind xAxis weekday", `Not bound: unknown field: "weekday"`},
		{"bind usage", "/bind xAxis", "Usage: /bind"},
		{"bind ok", "/bind dimension label", "dimension"},
		{"drag rejected", "/drag value dimension", "Drop rejected, chart unchanged"},
		{"drag outside", "/drag label", "Drop outside, chart unchanged"},
		{"drag unknown zone", "/drag label size", "Drop unknown_zone, chart unchanged"},
		{"drag bound", "/drag label xAxis", "Chart: bar"},
		{"chart type", "/chart pie", "Chart: pie"},
		{"bad chart type", "/chart radar", "unknown chart type"},
		{"fields", "/fields", "Chart: pie"},
		{"table without dsn", "/table sales", "ClickHouse is not configured"},
		{"unknown command", "/foo", "Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot.handleText(textUpdate(1, tt.text))
			assert.Contains(t, api.lastText(), tt.want)
		})
	}
}

func TestHandleTextRender(t *testing.T) {
	bot, api := newTestBot(t)

	bot.handleText(textUpdate(2, "/render"))
	assert.Equal(t, "Send a dataset first", api.lastText())

	bot.handleText(textUpdate(2, "EU 10\nUS 20\nEU 5"))
	bot.handleText(textUpdate(2, "/chart pie"))
	bot.handleText(textUpdate(2, "/render"))

	photo, ok := api.last().(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "Pie chart: value by label\n2 slices, value summed per label.", photo.Caption)
}

func TestHandleTextUploadLink(t *testing.T) {
	bot, api := newTestBot(t)

	bot.handleText(textUpdate(3, "hello"))
	link := api.lastText()
	assert.Contains(t, link, "https://charts.example.org/?id=")

	bot.handleText(textUpdate(3, "/start"))
	texts := api.texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Contains(t, texts[len(texts)-2], "/bind xAxis month")
	assert.Contains(t, texts[len(texts)-1], "Upload a file here: https://charts.example.org/?id=")

	bot.mu.Lock()
	assert.Len(t, bot.users, 2)
	bot.mu.Unlock()
}

func TestHandleTable(t *testing.T) {
	bot, api := newTestBot(t)
	bot.cfg.DbDsn = "tcp(localhost:9004)/default"
	bot.openDB = func(dsn string) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}

	bot.handleText(textUpdate(4, "/table sales"))
	assert.Equal(t, "Ошибка подключения к базе данных", api.lastText())

	bot.handleText(textUpdate(4, "/table"))
	assert.Equal(t, "Usage: /table <name>", api.lastText())
}

func TestHandleTableReusesPool(t *testing.T) {
	bot, api := newTestBot(t)
	bot.cfg.DbDsn = "default@tcp(127.0.0.1:1)/default"
	opened := 0
	bot.openDB = func(dsn string) (*gorm.DB, error) {
		opened++
		// no ping, so nothing connects until the first query
		return gorm.Open(mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true}),
			&gorm.Config{DisableAutomaticPing: true})
	}

	bot.handleText(textUpdate(4, "/table sales"))
	assert.Contains(t, api.lastText(), "Cannot load table")
	bot.handleText(textUpdate(4, "/table orders"))
	assert.Contains(t, api.lastText(), "Cannot load table")
	assert.Equal(t, 1, opened)

	require.NoError(t, bot.close())
	bot.dbMu.Lock()
	assert.Nil(t, bot.db)
	bot.dbMu.Unlock()
	assert.NoError(t, bot.close())
}

func TestExpireLinks(t *testing.T) {
	bot, _ := newTestBot(t)
	fresh := bot.uploadLink(1)
	stale := bot.uploadLink(2)
	staleID := strings.TrimPrefix(stale, bot.cfg.PublicURL+"/?id=")

	bot.mu.Lock()
	bot.issued[staleID] = time.Now().Add(-2 * uploadLinkTTL)
	bot.mu.Unlock()

	bot.expireLinks(time.Now())

	bot.mu.Lock()
	defer bot.mu.Unlock()
	assert.Len(t, bot.users, 1)
	_, ok := bot.users[strings.TrimPrefix(fresh, bot.cfg.PublicURL+"/?id=")]
	assert.True(t, ok)
	_, ok = bot.users[staleID]
	assert.False(t, ok)
}

func TestSessionReady(t *testing.T) {
	bot, api := newTestBot(t)
	link := bot.uploadLink(5)
	id := strings.TrimPrefix(link, bot.cfg.PublicURL+"/?id=")

	s, err := bot.registry.CreateWithID(id, salesRecords())
	require.NoError(t, err)

	bot.SessionReady("unknown", s)
	assert.Empty(t, api.sent)

	bot.SessionReady(id, s)
	attached, ok := bot.sessionFor(5)
	require.True(t, ok)
	assert.Equal(t, id, attached.ID())
	_, ok = api.last().(tgbotapi.PhotoConfig)
	assert.True(t, ok)
}

func TestHandleDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("month;sales\nJan;10\nFeb;20\n"))
	}))
	defer ts.Close()

	bot, api := newTestBot(t)
	bot.files = fakeFiles{url: ts.URL}

	msg := textUpdate(6, "").Message
	msg.Document = &tgbotapi.Document{FileID: "f1", FileName: "sales.csv"}
	bot.handleDocument(msg)

	s, ok := bot.sessionFor(6)
	require.True(t, ok)
	assert.Equal(t, 2, s.Snapshot().Records)
	_, ok = api.last().(tgbotapi.PhotoConfig)
	assert.True(t, ok)

	bot.files = fakeFiles{err: errors.New("file is too big")}
	bot.handleDocument(msg)
	assert.Contains(t, api.lastText(), "upload by this link: https://charts.example.org/?id=")
}

func TestChartCaption(t *testing.T) {
	bot, _ := newTestBot(t)
	s, err := bot.registry.CreateWithID("c", salesRecords())
	require.NoError(t, err)

	assert.Equal(t, "Bar chart: sales by month\n3 bars.", chartCaption(s.Snapshot()))
	snap, err := s.SetChartType("line")
	require.NoError(t, err)
	assert.Equal(t, "Line chart: sales by month\n3 points.", chartCaption(snap))
}
