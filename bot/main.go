// Command bot connects headless players to an arena server. Each bot keeps
// a client-side mirror, predicts its own movement and interpolates others.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"foodarena/client"
	"foodarena/config"
	"foodarena/logging"
	"foodarena/protocol"
	"foodarena/world"
)

const (
	frameInterval  = time.Second / 60
	reportInterval = 5 * time.Second
	// Chance per logic tick of picking a new direction
	turnChance = 0.1
)

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "Arena websocket URL")
	name := flag.String("name", "bot", "Name prefix")
	count := flag.Int("count", 1, "Number of bots")
	codecName := flag.String("codec", "json", "Frame codec: json or msgpack")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log, err := logging.New(config.LogConfig{Level: *level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	codec, err := protocol.CodecByName(*codecName)
	if err != nil {
		log.Fatalw("codec", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			botName := fmt.Sprintf("%s%d", *name, n)
			blog := log.Named(botName)
			if err := runBot(ctx, *url, botName, codec, blog); err != nil {
				blog.Warnw("bot stopped", "err", err)
			}
		}(i + 1)
	}
	wg.Wait()
}

// runBot plays until ctx is done or the server goes away. Everything the
// mirror owns is touched only from this goroutine.
func runBot(ctx context.Context, url, name string, codec protocol.Codec, log *zap.SugaredLogger) error {
	conn, err := client.Dial(ctx, url, codec)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Join(name); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	mirror := client.NewMirror()
	var logic *time.Ticker
	var logicC <-chan time.Time // nil until the snapshot tells us the tick rate
	frame := time.NewTicker(frameInterval)
	defer frame.Stop()
	report := time.NewTicker(reportInterval)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("done", "score", mirror.Score())
			return nil

		case m, ok := <-conn.Messages():
			if !ok {
				return fmt.Errorf("connection lost: %w", conn.Err())
			}
			wasJoined := mirror.Joined()
			if err := mirror.Handle(conn.Codec(), m.T, m.Payload); err != nil {
				log.Warnw("message", "type", m.T, "err", err)
				continue
			}
			if !wasJoined && mirror.Joined() {
				tick := time.Duration(mirror.Config().TickMs) * time.Millisecond
				if tick <= 0 {
					tick = 50 * time.Millisecond
				}
				logic = time.NewTicker(tick)
				defer logic.Stop()
				logicC = logic.C
				log.Infow("joined", "id", mirror.Self(), "tick", tick)
			}

		case <-logicC:
			if rand.Float64() < turnChance {
				mirror.SetInput(randomInput())
			}
			mirror.Tick()
			if err := conn.SendInput(mirror.Input()); err != nil {
				return fmt.Errorf("send input: %w", err)
			}

		case <-frame.C:
			mirror.Frame()

		case <-report.C:
			x, y := mirror.Position()
			log.Infow("status", "score", mirror.Score(), "x", x, "y", y,
				"players", mirror.PlayerCount(), "food", mirror.FoodCount(), "ignored", mirror.Ignored())
		}
	}
}

func randomInput() world.Input {
	var in world.Input
	switch rand.IntN(3) {
	case 0:
		in.Up = true
	case 1:
		in.Down = true
	}
	switch rand.IntN(3) {
	case 0:
		in.Left = true
	case 1:
		in.Right = true
	}
	return in
}
