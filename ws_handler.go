package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pivolan/chart_builder/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsInbound mirrors the JSON API: the drag collaborator sends dragStart and
// dragEnd, the chart panel sends bind and chartType.
type wsInbound struct {
	Type      string `json:"type"`
	Field     string `json:"field,omitempty"`
	Zone      string `json:"zone,omitempty"`
	Channel   string `json:"channel,omitempty"`
	ChartType string `json:"chartType,omitempty"`
}

type wsOutbound struct {
	Type     string            `json:"type"`
	Result   string            `json:"result,omitempty"`
	Message  string            `json:"message,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, strings.TrimSpace(r.URL.Query().Get("id")))
	if !ok {
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	first, snapshots, unsubscribe := sess.SubscribeCurrent(8)
	defer unsubscribe()

	// the current state goes out before the writer starts, so no later
	// snapshot can overtake it
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return
	}
	if err := conn.WriteJSON(wsOutbound{Type: "snapshot", Snapshot: &first}); err != nil {
		return
	}

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			var out wsOutbound
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				out = wsOutbound{Type: "snapshot", Snapshot: &snap}
			case out = <-writeCh:
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		handleWSMessage(sess, in, writeCh)
	}
}

// handleWSMessage applies one inbound message. Successful mutations reach the
// client through the session subscription, so only drop results and errors
// are answered directly.
func handleWSMessage(sess *session.Session, in wsInbound, writeCh chan<- wsOutbound) {
	switch strings.TrimSpace(in.Type) {
	case "ping":
		pushWS(writeCh, wsOutbound{Type: "pong"})
	case "dragStart":
		sess.DragStart(in.Field)
	case "dragEnd":
		res, _ := sess.DragEnd(in.Field, in.Zone)
		pushWS(writeCh, wsOutbound{Type: "drop", Result: res.String()})
	case "bind":
		if _, err := sess.Bind(in.Channel, in.Field); err != nil {
			pushWS(writeCh, wsOutbound{Type: "error", Message: err.Error()})
		}
	case "chartType":
		if _, err := sess.SetChartType(in.ChartType); err != nil {
			pushWS(writeCh, wsOutbound{Type: "error", Message: err.Error()})
		}
	default:
		pushWS(writeCh, wsOutbound{Type: "error", Message: "unknown message type " + in.Type})
	}
}

func pushWS(ch chan<- wsOutbound, msg wsOutbound) {
	select {
	case ch <- msg:
	default:
		log.Printf("ws write queue full, dropping %s", msg.Type)
	}
}
