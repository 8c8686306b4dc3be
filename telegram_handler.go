package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/chart_builder/config"
	"github.com/pivolan/chart_builder/dataset"
	"github.com/pivolan/chart_builder/session"
	uuid "github.com/satori/go.uuid"
	"gorm.io/gorm"
)

// uploadLinkTTL is how long a web upload link handed out by the bot stays valid.
const uploadLinkTTL = time.Hour

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type fileLocator interface {
	GetFileDirectURL(fileID string) (string, error)
}

// chatBot binds every chat to one session. Datasets come in as documents, as
// web uploads through a link, or from a ClickHouse table.
type chatBot struct {
	api      sender
	files    fileLocator
	cfg      *config.Config
	registry *session.Registry
	openDB   dbOpener

	dbMu sync.Mutex
	db   *gorm.DB

	mu     sync.Mutex
	chats  map[int64]string
	users  map[string]int64
	issued map[string]time.Time
}

func newChatBot(api sender, files fileLocator, cfg *config.Config, registry *session.Registry) *chatBot {
	return &chatBot{
		api:      api,
		files:    files,
		cfg:      cfg,
		registry: registry,
		openDB:   openClickHouse,
		chats:    make(map[int64]string),
		users:    make(map[string]int64),
		issued:   make(map[string]time.Time),
	}
}

func (b *chatBot) run(bot *tgbotapi.BotAPI) error {
	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("error getting updates: %w", err)
	}
	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Document != nil {
			go b.handleDocument(update.Message)
		} else if update.Message.Text != "" {
			go b.handleText(update)
		}
	}
	return nil
}

func (b *chatBot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to %d: %v", chatID, err)
	}
}

func (b *chatBot) replyPre(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+text+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to %d: %v", chatID, err)
	}
}

// uploadLink registers a one-hour upload id for the chat.
func (b *chatBot) uploadLink(chatID int64) string {
	uid := uuid.NewV4().String()
	b.mu.Lock()
	b.users[uid] = chatID
	b.issued[uid] = time.Now()
	b.mu.Unlock()
	return b.cfg.PublicURL + "/?id=" + uid
}

// expireLinks drops upload ids issued before now minus uploadLinkTTL.
func (b *chatBot) expireLinks(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for uid, date := range b.issued {
		if now.After(date.Add(uploadLinkTTL)) {
			delete(b.users, uid)
			delete(b.issued, uid)
		}
	}
}

func (b *chatBot) sessionFor(chatID int64) (*session.Session, bool) {
	b.mu.Lock()
	id, ok := b.chats[chatID]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	return b.registry.Get(id)
}

func (b *chatBot) attach(chatID int64, s *session.Session) {
	b.mu.Lock()
	b.chats[chatID] = s.ID()
	b.mu.Unlock()
}

// SessionReady attaches a web upload to the chat that requested the link.
func (b *chatBot) SessionReady(uploadID string, s *session.Session) {
	b.mu.Lock()
	chatID, ok := b.users[uploadID]
	b.mu.Unlock()
	if !ok {
		return
	}
	b.attach(chatID, s)
	b.sendOverview(chatID, s)
}

func (b *chatBot) sendOverview(chatID int64, s *session.Session) {
	snap := s.Snapshot()
	if len(snap.Fields) == 0 {
		b.reply(chatID, "Dataset is empty, nothing to chart")
		return
	}
	b.replyPre(chatID, FormatCatalog(snap.Fields))
	b.replyPre(chatID, FormatBinding(snap))
	b.sendChart(chatID, snap)
}

func (b *chatBot) handleDocument(message *tgbotapi.Message) {
	fileURL, err := b.files.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		log.Printf("Error getting file URL: %v", err)
		b.reply(message.Chat.ID, "Error on upload file, if file too big try another method, upload by this link: "+b.uploadLink(message.Chat.ID))
		return
	}

	filePath := filepath.Join(b.cfg.UploadDir, strconv.Itoa(message.From.ID), filepath.Base(message.Document.FileName))
	if err := download(fileURL, filePath); err != nil {
		log.Printf("Error downloading file: %v", err)
		b.reply(message.Chat.ID, "Error downloading file")
		return
	}
	b.loadFile(message.Chat.ID, filePath)
}

func (b *chatBot) loadFile(chatID int64, filePath string) {
	records, err := dataset.Load(filePath)
	if err != nil {
		log.Printf("Error loading %s: %v", filePath, err)
		b.reply(chatID, "Cannot read dataset: "+err.Error())
		return
	}
	s, err := b.registry.Create(records)
	if err != nil {
		log.Printf("Error creating session for %s: %v", filePath, err)
	}
	b.attach(chatID, s)
	b.sendOverview(chatID, s)
}

func download(fileURL, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}
	resp, err := http.Get(fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
