// Demo script client: joins a world, sets an alarm and a timer, then walks a
// square forever, printing every RESULT and EVENT it receives.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"voxelscript.dev/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "computer name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ComputerName:    *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 64},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var callSeq int
	call := func(module, fn string, args ...any) {
		callSeq++
		msg := protocol.CallMsg{
			Type:            protocol.TypeCall,
			ProtocolVersion: protocol.Version,
			ID:              fmt.Sprintf("c%d", callSeq),
			Module:          module,
			Fn:              fn,
			Args:            args,
		}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Fatalf("send CALL: %v", err)
		}
	}

	// Walked edge by edge: RESULTs arrive in call order, so this just
	// streams the whole square and lets the server pace it tick by tick.
	queueSquare := func() {
		for side := 0; side < 4; side++ {
			for i := 0; i < 3; i++ {
				call("turtle", "forward")
			}
			call("turtle", "turnRight")
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME computer_id=%s tick_rate=%d seed=%d",
				w.ComputerID, w.WorldParams.TickRateHz, w.WorldParams.Seed)

			call("os", "clock")
			call("os", "setAlarm", 6.0)
			call("os", "startTimer", 5.0)
			call("speaker", "playNote", "harp", 1.0, 12.0)
			queueSquare()

		case protocol.TypeResult:
			var r protocol.ResultMsg
			if err := json.Unmarshal(msg, &r); err != nil {
				continue
			}
			if r.Ok {
				logger.Printf("RESULT %s ok values=%v", r.CallID, r.Values)
			} else {
				logger.Printf("RESULT %s %s %s", r.CallID, r.Code, r.Message)
			}

		case protocol.TypeEvent:
			var e protocol.EventMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("EVENT tick=%d %s args=%v", e.Tick, e.Name, e.Args)
			if e.Name == "timer" {
				// Keep walking after each timer fires.
				call("os", "startTimer", 5.0)
				queueSquare()
			}
		}
	}
}
