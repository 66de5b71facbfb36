// Command mqttc is a minimal example MQTT client: it owns a net.Conn and
// a set of time.Timers, drives an engine.Engine, and executes whatever
// Events the engine returns. It is deliberately thin — a worked example
// of wiring the engine to a real transport, not a full-featured client.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/axmq/mqttengine/engine"
	"github.com/axmq/mqttengine/internal/xerrors"
	"github.com/axmq/mqttengine/internal/xlog"
	"github.com/axmq/mqttengine/packet"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1883", "broker address")
	clientID := flag.String("id", "mqttc", "client id")
	topic := flag.String("topic", "mqttc/example", "topic to publish lines read from stdin")
	keepAlive := flag.Duration("keepalive", 60*time.Second, "keep-alive interval")
	flag.Parse()

	xlog.Init(slog.LevelInfo, nil)
	log := xlog.Logger()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Error("dial failed", "addr", *addr, "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	cfg := engine.DefaultConfig(packet.RoleClient)
	cfg.Version = packet.V5_0
	cfg.KeepAlive = *keepAlive
	eng := engine.New(cfg)

	h := &host{conn: conn, eng: eng, log: log, timers: make(map[engine.TimerKind]*time.Timer)}

	connectPkt, err := packet.NewConnect(packet.V5_0, packet.ConnectOptions{
		CleanStart: true,
		ClientID:   *clientID,
		KeepAlive:  uint16(keepAlive.Seconds()),
	})
	if err != nil {
		log.Error("build connect failed", "err", err)
		os.Exit(1)
	}
	if !h.run(eng.Send(connectPkt)) {
		return
	}

	go h.readLoop()
	h.publishStdin(*topic)
}

// host executes engine Events against a real net.Conn and a set of
// per-TimerKind time.Timers, and feeds inbound bytes and timer firings
// back into the engine. It is not safe for concurrent use from more than
// the one reader goroutine plus the main goroutine's stdin loop, matching
// the engine's own single-connection, single-threaded contract.
type host struct {
	conn   net.Conn
	eng    *engine.Engine
	log    *slog.Logger
	timers map[engine.TimerKind]*time.Timer
}

// run executes events in order and reports whether the connection is
// still usable afterward.
func (h *host) run(events []engine.Event, err error) bool {
	if err != nil {
		h.log.Error("engine rejected operation", "err", err, "reason", xerrors.ReasonCode(err))
		return true
	}
	for _, ev := range events {
		switch e := ev.(type) {
		case engine.SendBytes:
			if _, err := h.conn.Write(e.Data); err != nil {
				h.log.Error("write failed", "err", err)
				return false
			}
		case engine.ArmTimer:
			h.armTimer(e.Timer, e.Duration)
		case engine.CancelTimer:
			h.cancelTimer(e.Timer)
		case engine.CloseTransport:
			h.log.Info("closing transport", "reason", e.Reason)
			_ = h.conn.Close()
			return false
		case engine.PacketReceived:
			h.log.Info("packet received", "kind", e.Packet.Kind())
		case engine.PacketIDReleased:
			h.log.Debug("packet id released", "id", e.ID)
		case engine.ErrorEvent:
			h.log.Warn("engine error", "err", e.Err, "fatal", e.Fatal)
		}
	}
	return true
}

func (h *host) armTimer(kind engine.TimerKind, d time.Duration) {
	h.cancelTimer(kind)
	h.timers[kind] = time.AfterFunc(d, func() {
		h.run(h.eng.Fired(kind), nil)
	})
}

func (h *host) cancelTimer(kind engine.TimerKind) {
	if t, ok := h.timers[kind]; ok {
		t.Stop()
		delete(h.timers, kind)
	}
}

func (h *host) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := h.conn.Read(buf)
		if n > 0 {
			if !h.run(h.eng.Receive(buf[:n]), nil) {
				return
			}
		}
		if err != nil {
			h.log.Info("read loop ending", "err", err)
			return
		}
	}
}

// publishStdin publishes each line read from stdin as a QoS-1 PUBLISH,
// until stdin closes or the connection does.
func (h *host) publishStdin(topic string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		id, err := h.eng.NextPacketID()
		if err != nil {
			h.log.Error("no packet id available", "err", err)
			continue
		}
		pkt, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
			QoS:       packet.QoS1,
			TopicName: topic,
			ID:        id,
			Payload:   []byte(scanner.Text()),
		})
		if err != nil {
			h.log.Error("build publish failed", "err", err)
			continue
		}
		if !h.run(h.eng.Send(pkt)) {
			return
		}
	}
	fmt.Fprintln(os.Stderr, "stdin closed")
}
