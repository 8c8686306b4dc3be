package main

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/chart_builder/dataset"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type dbOpener func(dsn string) (*gorm.DB, error)

func openClickHouse(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// database opens the ClickHouse pool on first use and reuses it afterwards.
func (b *chatBot) database() (*gorm.DB, error) {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()
	if b.db != nil {
		return b.db, nil
	}
	db, err := b.openDB(b.cfg.DbDsn)
	if err != nil {
		return nil, err
	}
	b.db = db
	return db, nil
}

func (b *chatBot) close() error {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	b.db = nil
	return sqlDB.Close()
}

const welcomeText = `Привет! 👋

I build bar, line and pie charts from your data.

1. Send a CSV, JSON or XLSX file (gzip, lz4 and zip archives work too)
2. Check the fields with /fields
3. Put fields on the chart:
   /bind xAxis month - put a dimension on the X axis
   /drag sales yAxis - drag a field onto a zone
   /chart pie - switch chart type (bar, line, pie)
4. /render draws the chart

/table name loads a ClickHouse table instead of a file.`

func (b *chatBot) handleText(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.reply(chatID, welcomeText)
		b.reply(chatID, "Upload a file here: "+b.uploadLink(chatID))
	case "fields":
		b.handleFields(chatID)
	case "bind":
		b.handleBind(chatID, args)
	case "drag":
		b.handleDrag(chatID, args)
	case "chart":
		b.handleChartType(chatID, args)
	case "render":
		b.handleRender(chatID)
	case "table":
		b.handleTable(chatID, args)
	case "":
		// "label value" lines are charted right away
		if records := ParseInlineDataset(message.Text); len(records) > 0 {
			s, _ := b.registry.Create(records)
			b.attach(chatID, s)
			b.sendOverview(chatID, s)
			return
		}
		b.reply(chatID, "Перейдите по ссылке чтобы загрузить файл: "+b.uploadLink(chatID))
	default:
		b.reply(chatID, "Unknown command. Use /fields, /bind, /drag, /chart, /render or /table")
	}
}

func (b *chatBot) handleFields(chatID int64) {
	s, ok := b.sessionFor(chatID)
	if !ok {
		b.reply(chatID, "Send a dataset first")
		return
	}
	snap := s.Snapshot()
	if len(snap.Fields) == 0 {
		b.reply(chatID, "Dataset is empty, nothing to chart")
		return
	}
	b.replyPre(chatID, FormatCatalog(snap.Fields))
	b.replyPre(chatID, FormatBinding(snap))
}

func (b *chatBot) handleBind(chatID int64, args []string) {
	if len(args) != 2 {
		b.reply(chatID, "Usage: /bind <xAxis|yAxis|dimension|measure> <field>")
		return
	}
	s, ok := b.sessionFor(chatID)
	if !ok {
		b.reply(chatID, "Send a dataset first")
		return
	}
	snap, err := s.Bind(args[0], args[1])
	if err != nil {
		b.reply(chatID, "Not bound: "+err.Error())
		return
	}
	b.replyPre(chatID, FormatBinding(snap))
}

// handleDrag replays a drag gesture; a kind mismatch leaves the chart as it was.
func (b *chatBot) handleDrag(chatID int64, args []string) {
	if len(args) < 1 || len(args) > 2 {
		b.reply(chatID, "Usage: /drag <field> <zone>")
		return
	}
	s, ok := b.sessionFor(chatID)
	if !ok {
		b.reply(chatID, "Send a dataset first")
		return
	}
	zone := ""
	if len(args) == 2 {
		zone = args[1]
	}
	s.DragStart(args[0])
	res, snap := s.DragEnd(args[0], zone)
	if !res.Changed() {
		b.reply(chatID, fmt.Sprintf("Drop %s, chart unchanged", res))
		return
	}
	b.replyPre(chatID, FormatBinding(snap))
}

func (b *chatBot) handleChartType(chatID int64, args []string) {
	if len(args) != 1 {
		b.reply(chatID, "Usage: /chart <bar|line|pie>")
		return
	}
	s, ok := b.sessionFor(chatID)
	if !ok {
		b.reply(chatID, "Send a dataset first")
		return
	}
	snap, err := s.SetChartType(args[0])
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	b.replyPre(chatID, FormatBinding(snap))
}

func (b *chatBot) handleRender(chatID int64) {
	s, ok := b.sessionFor(chatID)
	if !ok {
		b.reply(chatID, "Send a dataset first")
		return
	}
	b.sendChart(chatID, s.Snapshot())
}

func (b *chatBot) handleTable(chatID int64, args []string) {
	if len(args) != 1 {
		b.reply(chatID, "Usage: /table <name>")
		return
	}
	if b.cfg.DbDsn == "" {
		b.reply(chatID, "ClickHouse is not configured")
		return
	}
	db, err := b.database()
	if err != nil {
		log.Printf("Error connecting to ClickHouse: %v", err)
		b.reply(chatID, "Ошибка подключения к базе данных")
		return
	}
	records, err := dataset.LoadTable(db, args[0], dataset.DefaultTableLimit)
	if err != nil {
		b.reply(chatID, "Cannot load table: "+err.Error())
		return
	}
	s, _ := b.registry.Create(records)
	b.attach(chatID, s)
	b.sendOverview(chatID, s)
}
