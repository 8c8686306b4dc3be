package main

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/chart_builder/domain/models"
	"github.com/pivolan/chart_builder/plot"
	"github.com/pivolan/chart_builder/session"
)

// maxSizePhoto is the largest PNG sent as a photo; bigger charts go as documents.
const maxSizePhoto = 150000

// sendChart sends the current chart, or the placeholder text when the binding
// cannot render.
func (b *chatBot) sendChart(chatID int64, snap session.Snapshot) {
	if snap.Error != "" {
		b.reply(chatID, "Cannot build chart: "+snap.Error)
		return
	}
	if !snap.Descriptor.Renderable {
		b.reply(chatID, snap.Descriptor.Placeholder)
		return
	}

	graph, err := plot.RenderPNG(snap.Descriptor, plot.Size{Width: b.cfg.ChartWidth, Height: b.cfg.ChartHeight})
	if err != nil {
		log.Printf("Error rendering chart for %s: %v", snap.ID, err)
		b.reply(chatID, "Cannot draw chart: "+err.Error())
		return
	}
	b.sendGraph(chatID, graph, snap)
}

func (b *chatBot) sendGraph(chatID int64, graph []byte, snap session.Snapshot) {
	fileName := fmt.Sprintf("%s_%s.png", snap.ChartType, time.Now().Format("20060102-150405"))
	pngFile := tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: graph,
	}
	caption := chartCaption(snap)

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, pngFile)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, pngFile)
		doc.Caption = caption
		msg = doc
	}

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending chart %s to %d: %v", fileName, chatID, err)
		b.reply(chatID, fmt.Sprintf("Не удалось отправить график. Ошибка: %v", err))
	}
}

func chartCaption(snap session.Snapshot) string {
	d := snap.Descriptor
	switch snap.ChartType {
	case models.ChartPie:
		return fmt.Sprintf("Pie chart: %s\n%d slices, %s summed per %s.", d.Title, len(d.Values), d.YField, d.XField)
	case models.ChartLine:
		return fmt.Sprintf("Line chart: %s\n%d points.", d.Title, len(d.Values))
	default:
		return fmt.Sprintf("Bar chart: %s\n%d bars.", d.Title, len(d.Values))
	}
}
